package web

import (
	"net/http"
	"time"

	"sales-register/internal/app"
	"sales-register/internal/core"
)

type accountView struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at,omitempty"`
}

func toAccountView(a core.UserAccount) accountView {
	v := accountView{ID: a.ID, Username: a.Username, Role: string(a.Role)}
	if !a.CreatedAt.IsZero() {
		v.CreatedAt = a.CreatedAt.UTC().Format(time.RFC3339)
	}
	return v
}

// listAccounts handles GET /api/admin/users. Admin only.
func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeError(w, r, "not authenticated", "UNAUTHORIZED", http.StatusUnauthorized)
		return
	}
	result, err := h.svc.ListAccounts(r.Context(), actor)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	accounts := make([]accountView, 0, len(result.Accounts))
	for _, a := range result.Accounts {
		accounts = append(accounts, toAccountView(a))
	}
	writeJSON(w, map[string]any{"users": accounts})
}

// createAccount handles POST /api/admin/users. Admin only.
func (h *Handler) createAccount(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeError(w, r, "not authenticated", "UNAUTHORIZED", http.StatusUnauthorized)
		return
	}
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.CreateAccount(r.Context(), actor, app.AccountRequest{
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, toAccountView(*result.Account))
}

// setAccountRole handles PATCH /api/admin/users/{id}/role. Admin only.
func (h *Handler) setAccountRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeError(w, r, "not authenticated", "UNAUTHORIZED", http.StatusUnauthorized)
		return
	}
	var req struct {
		Role string `json:"role"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.SetAccountRole(r.Context(), actor, urlID(r), req.Role); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
