package handler

import (
	"log/slog"
	"net/http"

	"github.com/yourorg/testtrack/internal/domain"
	"github.com/yourorg/testtrack/internal/service"
)

// SuiteHandler handles test suite endpoints
type SuiteHandler struct {
	suiteService *service.SuiteService
	logger       *slog.Logger
}

// NewSuiteHandler creates a new suite handler
func NewSuiteHandler(suiteService *service.SuiteService, logger *slog.Logger) *SuiteHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &SuiteHandler{
		suiteService: suiteService,
		logger:       logger,
	}
}

// Create handles POST /api/test-suites
func (h *SuiteHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Message: "authentication required"})
		return
	}

	var req service.SuiteInput
	if !decodeBody(w, r, &req) {
		return
	}

	suite, err := h.suiteService.Create(actor, req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, suite)
}

// ListByProject handles GET /api/test-suites/project/{id}
func (h *SuiteHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	suites, err := h.suiteService.ListByProject(projectID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if suites == nil {
		suites = []*domain.TestSuite{}
	}

	writeJSON(w, http.StatusOK, suites)
}
