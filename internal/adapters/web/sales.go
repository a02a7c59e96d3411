package web

import (
	"net/http"
	"time"

	"sales-register/internal/app"
	"sales-register/internal/core"
)

type saleView struct {
	ID            string `json:"id"`
	ProductID     string `json:"product_id"`
	Product       string `json:"product"`
	Category      string `json:"category"`
	Quantity      int64  `json:"quantity"`
	Unit          string `json:"unit"`
	Price         string `json:"price"`
	Total         string `json:"total"`
	Client        string `json:"client"`
	PaymentStatus string `json:"payment_status"`
	Date          string `json:"date"`
}

func toSaleView(s core.Sale) saleView {
	return saleView{
		ID:            s.ID,
		ProductID:     s.ProductID,
		Product:       s.ProductName,
		Category:      string(s.Category),
		Quantity:      s.Quantity,
		Unit:          string(s.Unit),
		Price:         s.Price.String(),
		Total:         s.Total.String(),
		Client:        s.ClientName,
		PaymentStatus: string(s.PaymentStatus),
		Date:          s.Date.UTC().Format(time.RFC3339),
	}
}

// registerSale handles POST /api/sales.
func (h *Handler) registerSale(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID     string `json:"product_id"`
		Quantity      int64  `json:"quantity"`
		Unit          string `json:"unit"`
		Client        string `json:"client"`
		PaymentStatus string `json:"payment_status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.RegisterSale(r.Context(), app.RegisterSaleRequest{
		ProductID:     req.ProductID,
		Quantity:      req.Quantity,
		Unit:          req.Unit,
		ClientName:    req.Client,
		PaymentStatus: req.PaymentStatus,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, toSaleView(*result.Sale))
}

// history handles GET /api/sales: the day-grouped sale history.
// Query parameters: q (client/product substring), debts (true keeps only
// unpaid sales).
func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetHistory(r.Context(), app.HistoryRequest{
		Term:     r.URL.Query().Get("q"),
		DebtOnly: r.URL.Query().Get("debts") == "true",
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	type dayView struct {
		Date  string     `json:"date"`
		Sales []saleView `json:"sales"`
	}
	days := make([]dayView, 0, len(result.Days))
	for _, d := range result.Days {
		sales := make([]saleView, 0, len(d.Sales))
		for _, s := range d.Sales {
			sales = append(sales, toSaleView(s))
		}
		days = append(days, dayView{Date: d.Key, Sales: sales})
	}
	writeJSON(w, map[string]any{"days": days, "total": result.Total})
}

// editSale handles PATCH /api/sales/{id}.
func (h *Handler) editSale(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Client   string `json:"client"`
		Quantity int64  `json:"quantity"`
		Price    string `json:"price"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.EditSale(r.Context(), urlID(r), app.EditSaleRequest{
		ClientName: req.Client,
		Quantity:   req.Quantity,
		Price:      req.Price,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, toSaleView(*result.Sale))
}

// setSalePayment handles PATCH /api/sales/{id}/payment-status.
func (h *Handler) setSalePayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentStatus string `json:"payment_status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.SetSalePayment(r.Context(), urlID(r), req.PaymentStatus); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// deleteSale handles DELETE /api/sales/{id}. Admin only.
func (h *Handler) deleteSale(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeError(w, r, "not authenticated", "UNAUTHORIZED", http.StatusUnauthorized)
		return
	}
	if err := h.svc.DeleteSale(r.Context(), actor, urlID(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
