package handler

import (
	"context"
	"net/http"
	"time"

	apperrors "stressbox/pkg/errors"
	"stressbox/pkg/logger"
)

// Pinger is implemented by the store
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests
type HealthHandler struct {
	store     Pinger
	storeName string
	version   string
	logger    *logger.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store Pinger, storeName, version string, logger *logger.Logger) *HealthHandler {
	return &HealthHandler{
		store:     store,
		storeName: storeName,
		version:   version,
		logger:    logger,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Service   string    `json:"service"`
	Store     string    `json:"store"`
	Error     string    `json:"error,omitempty"`
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   h.version,
		Service:   "stressbox",
		Store:     h.storeName,
	}
	status := http.StatusOK

	if err := h.store.Ping(ctx); err != nil {
		appErr := apperrors.NewUnavailableError("Store unreachable", err)
		h.logger.WithError(appErr).Warn("Store health check failed")
		response.Status = "unhealthy"
		response.Error = appErr.Message
		status = appErr.StatusCode
	}

	writeJSON(w, h.logger, status, response)
}
