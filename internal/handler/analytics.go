package handler

import (
	"log/slog"
	"net/http"

	"github.com/yourorg/testtrack/internal/service"
)

// AnalyticsHandler serves the dashboard snapshot
type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
	logger           *slog.Logger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsService *service.AnalyticsService, logger *slog.Logger) *AnalyticsHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &AnalyticsHandler{
		analyticsService: analyticsService,
		logger:           logger,
	}
}

// Dashboard handles GET /api/analytics
func (h *AnalyticsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.analyticsService.Dashboard(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dash)
}
