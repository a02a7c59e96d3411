package web

import (
	"net/http"

	"sales-register/internal/app"
	"sales-register/internal/core"
)

type productView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Price       string `json:"price"`
	Stock       int64  `json:"stock"`
	Description string `json:"description,omitempty"`
}

func toProductView(p core.Product) productView {
	return productView{
		ID:          p.ID,
		Name:        p.Name,
		Category:    string(p.Category),
		Price:       p.Price.String(),
		Stock:       p.Stock,
		Description: p.Description,
	}
}

type clientView struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Name      string `json:"name"`
	Phone     string `json:"phone,omitempty"`
}

func toClientView(c core.Client) clientView {
	return clientView{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Name:      c.Name,
		Phone:     c.Phone,
	}
}

type productRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Price       string `json:"price"`
	Stock       int64  `json:"stock"`
	Description string `json:"description"`
}

func (req productRequest) toApp() app.ProductRequest {
	return app.ProductRequest{
		Name:        req.Name,
		Category:    req.Category,
		Price:       req.Price,
		Stock:       req.Stock,
		Description: req.Description,
	}
}

// listProducts handles GET /api/products. Query parameter q filters by
// name or category substring.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListProducts(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	products := make([]productView, 0, len(result.Products))
	for _, p := range result.Products {
		products = append(products, toProductView(p))
	}
	writeJSON(w, map[string]any{
		"products": products,
		"loading":  result.Loading,
		"stale":    result.Stale,
	})
}

// createProduct handles POST /api/products.
func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.CreateProduct(r.Context(), req.toApp())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, toProductView(*result.Product))
}

// updateProduct handles PUT /api/products/{id}.
func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.UpdateProduct(r.Context(), urlID(r), req.toApp())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, toProductView(*result.Product))
}

// deleteProduct handles DELETE /api/products/{id}.
func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteProduct(r.Context(), urlID(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listClients handles GET /api/clients. Query parameter q filters by name
// or phone substring.
func (h *Handler) listClients(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListClients(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	clients := make([]clientView, 0, len(result.Clients))
	for _, c := range result.Clients {
		clients = append(clients, toClientView(c))
	}
	writeJSON(w, map[string]any{
		"clients": clients,
		"loading": result.Loading,
		"stale":   result.Stale,
	})
}

// createClient handles POST /api/clients.
func (h *Handler) createClient(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Phone     string `json:"phone"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.CreateClient(r.Context(), app.ClientRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, toClientView(*result.Client))
}

// updateClient handles PUT /api/clients/{id}.
func (h *Handler) updateClient(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Phone     string `json:"phone"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.UpdateClient(r.Context(), urlID(r), app.ClientRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, toClientView(*result.Client))
}
