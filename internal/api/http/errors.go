package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"rental-gateway/internal/domain"
	"rental-gateway/internal/logger"
)

type errorResponse struct {
	Message string `json:"message"`
}

// writeError maps the domain error taxonomy onto HTTP status codes. Client
// errors echo the error text; server errors get a fixed message and the detail
// goes to the log.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrDataIntegrity):
		logger.ErrorContext(r.Context(), "Inconsistent downstream data", "path", r.URL.Path, "error", err)
		writeMessage(w, http.StatusInternalServerError, "inconsistent data across services")
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		logger.ErrorContext(r.Context(), "Downstream service unavailable", "path", r.URL.Path, "error", err)
		writeMessage(w, http.StatusInternalServerError, "downstream service unavailable")
	default:
		logger.ErrorContext(r.Context(), "Unhandled error", "path", r.URL.Path, "error", err)
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}
