// Package handler provides the JSON REST API handlers.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/AntonioFerrao-hub/gallery-sync-palazzo-23/internal/service"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// errorBody is the flat error response shape. The client shows the error
// field verbatim.
type errorBody struct {
	Error      string `json:"error"`
	PhotoCount int64  `json:"photo_count,omitempty"`
}

// writeError writes a flat {"error": "..."} response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, errorBody{Error: message})
}

// writeServiceError maps a service-layer error onto an HTTP response.
// Unrecognized errors become a generic 500 and are logged.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *service.ValidationError
		conflictErr   *service.ConflictError
		limitErr      *service.LimitExceededError
		notFoundErr   *service.NotFoundError
	)

	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, validationErr.Message)
	case errors.As(err, &limitErr):
		writeError(w, http.StatusBadRequest, limitErr.Message)
	case errors.As(err, &conflictErr):
		writeJSON(w, http.StatusBadRequest, errorBody{
			Error:      conflictErr.Message,
			PhotoCount: conflictErr.PhotoCount,
		})
	case errors.As(err, &notFoundErr):
		writeError(w, http.StatusNotFound, notFoundErr.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
	default:
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// parseIDParam extracts the {id} URL parameter as an int64.
func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// decodeJSON decodes a JSON request body into dst. Returns false after
// writing a 400 response if the body is malformed.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}
