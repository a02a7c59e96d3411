package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"sales-register/internal/core"
	"sales-register/internal/identity"
	"sales-register/internal/store"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeServiceError maps service-layer errors to HTTP status codes. The
// branches go from most specific to least; anything unmapped is a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *core.ValidationError
	var wfErr *core.WorkflowError

	switch {
	case errors.As(err, &vErr):
		writeError(w, r, vErr.Error(), "VALIDATION", http.StatusBadRequest)
	case errors.As(err, &wfErr) && errors.Is(err, store.ErrConflict):
		writeError(w, r, "insufficient stock", "CONFLICT", http.StatusConflict)
	case errors.Is(err, store.ErrConflict):
		writeError(w, r, err.Error(), "CONFLICT", http.StatusConflict)
	case errors.Is(err, store.ErrNotFound):
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, core.ErrForbidden):
		writeError(w, r, "operation not permitted", "FORBIDDEN", http.StatusForbidden)
	case errors.Is(err, identity.ErrInvalidCredentials):
		writeError(w, r, "invalid username or password", "UNAUTHORIZED", http.StatusUnauthorized)
	case errors.Is(err, identity.ErrSessionRevoked):
		writeError(w, r, "session expired", "UNAUTHORIZED", http.StatusUnauthorized)
	case errors.Is(err, identity.ErrUserExists):
		writeError(w, r, err.Error(), "CONFLICT", http.StatusConflict)
	default:
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
