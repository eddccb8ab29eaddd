package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"stressbox/internal/domain"
	"stressbox/internal/service"
	apperrors "stressbox/pkg/errors"
	"stressbox/pkg/logger"
)

// VisitorHandler serves the visitor statistics API
type VisitorHandler struct {
	visitorService service.VisitorService
	logger         *logger.Logger
	rankingLimit   int
}

// NewVisitorHandler creates a new visitor handler. rankingLimit caps the
// /api/ranking list; zero or less returns every IP.
func NewVisitorHandler(visitorService service.VisitorService, logger *logger.Logger, rankingLimit int) *VisitorHandler {
	return &VisitorHandler{
		visitorService: visitorService,
		logger:         logger,
		rankingLimit:   rankingLimit,
	}
}

// GetStats handles GET /api/stats
func (h *VisitorHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.visitorService.GetStats(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to get visitor stats")
		writeError(w, r, h.logger, apperrors.NewInternalError("Failed to load visitor statistics", err))
		return
	}

	writeJSON(w, h.logger, http.StatusOK, stats)
}

// GetRanking handles GET /api/ranking: the stats with IPs sorted by visit count
func (h *VisitorHandler) GetRanking(w http.ResponseWriter, r *http.Request) {
	stats, err := h.visitorService.GetStats(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to get visitor ranking")
		writeError(w, r, h.logger, apperrors.NewInternalError("Failed to load visitor statistics", err))
		return
	}

	writeJSON(w, h.logger, http.StatusOK, &domain.Stats{
		Visitors: stats.Visitors,
		Visits:   stats.Visits,
		IPs:      service.RankByCount(stats.IPs, h.rankingLimit),
	})
}

// GetCurrentVisitor handles GET /api/visitor
func (h *VisitorHandler) GetCurrentVisitor(w http.ResponseWriter, r *http.Request) {
	info := service.CurrentVisitorInfo(r)

	h.logger.WithFields(map[string]interface{}{
		"ip":       info.IP,
		"location": info.Location,
	}).Debug("Current visitor lookup")

	writeJSON(w, h.logger, http.StatusOK, info)
}

// RegisterRoutes registers visitor handler routes, relative to /api
func (h *VisitorHandler) RegisterRoutes(r chi.Router) {
	r.Get("/stats", h.GetStats)
	r.Get("/ranking", h.GetRanking)
	r.Get("/visitor", h.GetCurrentVisitor)
}
