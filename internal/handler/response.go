package handler

import (
	"encoding/json"
	"net/http"

	"stressbox/internal/middleware"
	apperrors "stressbox/pkg/errors"
	"stressbox/pkg/logger"
)

// writeJSON writes v as a JSON response with the given status code
func writeJSON(w http.ResponseWriter, log *logger.Logger, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

// writeError sends a standardized error response. Errors that are not an
// AppError are reported as internal errors.
func writeError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	appErr := apperrors.As(err)
	writeJSON(w, log, appErr.StatusCode, appErr.Response(middleware.GetRequestID(r.Context())))
}

// NotFound returns the handler for unmatched routes
func NotFound(log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, log, apperrors.NewNotFoundError("Endpoint not found"))
	}
}
