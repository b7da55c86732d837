package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"journeyd/internal/journey"
)

// APIResponse is the envelope every endpoint returns.
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Encoding the envelope cannot fail for the types we put in it; if the
	// client hangs up mid-write there is nothing useful left to do.
	_ = json.NewEncoder(w).Encode(resp)
}

func respondData(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, APIResponse{Success: true, Message: message, Data: data})
}

// respondError maps domain errors onto HTTP statuses: bad identity or invalid
// content is the client's fault, a missing journey is 404, anything else is a
// server-side failure whose details stay in the log.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var identityErr *journey.IdentityError
	var validationErr *journey.ValidationError

	switch {
	case errors.As(err, &identityErr), errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Error: err.Error()})
	case errors.Is(err, journey.ErrNotFound):
		writeJSON(w, http.StatusNotFound, APIResponse{Success: false, Error: "journey not found"})
	default:
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, APIResponse{Success: false, Error: "internal server error"})
	}
}

func respondBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Error: msg})
}
