package web

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"sales-register/internal/app"
	"sales-register/internal/core"
)

type expenseView struct {
	ID          string `json:"id"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

func toExpenseView(e core.Expense) expenseView {
	return expenseView{
		ID:          e.ID,
		Amount:      e.Amount.String(),
		Category:    string(e.Category),
		Description: e.Description,
		Date:        e.Date.UTC().Format(time.RFC3339),
	}
}

// listExpenses handles GET /api/expenses.
func (h *Handler) listExpenses(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListExpenses(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	expenses := make([]expenseView, 0, len(result.Expenses))
	for _, e := range result.Expenses {
		expenses = append(expenses, toExpenseView(e))
	}
	categories := make([]string, 0, len(result.Categories))
	for _, c := range result.Categories {
		categories = append(categories, string(c))
	}
	writeJSON(w, map[string]any{"expenses": expenses, "categories": categories})
}

// recordExpense handles POST /api/expenses.
func (h *Handler) recordExpense(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount      string `json:"amount"`
		Category    string `json:"category"`
		Description string `json:"description"`
		Date        string `json:"date"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.RecordExpense(r.Context(), app.ExpenseRequest{
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		Date:        req.Date,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, toExpenseView(*result.Expense))
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// exportSales handles GET /api/export/sales.xlsx.
func (h *Handler) exportSales(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="ventas.xlsx"`)
	if err := h.svc.ExportSales(r.Context(), w); err != nil {
		// Headers are already out; all we can do is log.
		h.log.Error("sales export failed", zap.Error(err))
	}
}

// exportExpenses handles GET /api/export/expenses.xlsx.
func (h *Handler) exportExpenses(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="gastos.xlsx"`)
	if err := h.svc.ExportExpenses(r.Context(), w); err != nil {
		h.log.Error("expenses export failed", zap.Error(err))
	}
}
