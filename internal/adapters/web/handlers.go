// Package web is the HTTP adapter: a chi router over the application
// service. It owns no business rules; it decodes requests, delegates, and
// encodes results.
package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"sales-register/internal/app"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc    app.ApplicationService
	router chi.Router
	log    *zap.Logger
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins string, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	h := &Handler{svc: svc, log: log}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(h.Logger)
	r.Use(h.Recoverer)
	r.Use(CORS(allowedOrigins))

	// ── Public ────────────────────────────────────────────────────────────────
	r.Get("/api/health", h.health)
	r.Post("/api/auth/login", h.login)
	r.Post("/api/auth/logout", h.logout)

	// ── Protected API routes ──────────────────────────────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB

		r.Get("/api/auth/me", h.me)

		// Sales
		r.Post("/api/sales", h.registerSale)
		r.Get("/api/sales", h.history)
		r.Patch("/api/sales/{id}", h.editSale)
		r.Patch("/api/sales/{id}/payment-status", h.setSalePayment)
		r.Delete("/api/sales/{id}", h.deleteSale)

		// Catalog
		r.Get("/api/products", h.listProducts)
		r.Post("/api/products", h.createProduct)
		r.Put("/api/products/{id}", h.updateProduct)
		r.Delete("/api/products/{id}", h.deleteProduct)

		// Clients
		r.Get("/api/clients", h.listClients)
		r.Post("/api/clients", h.createClient)
		r.Put("/api/clients/{id}", h.updateClient)

		// Expenses
		r.Get("/api/expenses", h.listExpenses)
		r.Post("/api/expenses", h.recordExpense)

		// Exports
		r.Get("/api/export/sales.xlsx", h.exportSales)
		r.Get("/api/export/expenses.xlsx", h.exportExpenses)

		// Account administration
		r.Get("/api/admin/users", h.listAccounts)
		r.Post("/api/admin/users", h.createAccount)
		r.Patch("/api/admin/users/{id}/role", h.setAccountRole)
	})

	h.router = r
	return r
}

// health reports service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// urlID extracts the {id} URL parameter.
func urlID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
