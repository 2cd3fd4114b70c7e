package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"finanzas/internal/core"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// respondError maps the core error taxonomy to status codes. The body only
// carries the sentinel text; wrapped details stay in the server log.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	var message string

	switch {
	case errors.Is(err, core.ErrValidation):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, core.ErrUnauthorized):
		// Uniform body: no hint about which part of the credentials failed.
		status, message = http.StatusUnauthorized, "credenciales inválidas"
	case errors.Is(err, core.ErrNotFound):
		status, message = http.StatusNotFound, "recurso no encontrado"
	case errors.Is(err, core.ErrConflict):
		status, message = http.StatusConflict, "el recurso ya existe"
	case errors.Is(err, core.ErrUnavailable):
		status, message = http.StatusServiceUnavailable, "servicio no disponible"
	default:
		status, message = http.StatusInternalServerError, "error interno"
	}

	if status >= 500 {
		slog.ErrorContext(r.Context(), "Request failed",
			"error", err, "method", r.Method, "path", r.URL.Path)
	}
	respondJSON(w, status, errorResponse{Error: message})
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return core.ErrValidation
	}
	return nil
}

func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, core.ErrValidation
	}
	return id, nil
}

// parseDateParam accepts YYYY-MM-DD or RFC 3339 timestamps.
func parseDateParam(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
