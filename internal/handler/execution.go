package handler

import (
	"log/slog"
	"net/http"

	"github.com/yourorg/testtrack/internal/domain"
	"github.com/yourorg/testtrack/internal/service"
)

// ExecutionHandler handles execution recording and history endpoints
type ExecutionHandler struct {
	executionService *service.ExecutionService
	logger           *slog.Logger
}

// NewExecutionHandler creates a new execution handler
func NewExecutionHandler(executionService *service.ExecutionService, logger *slog.Logger) *ExecutionHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &ExecutionHandler{
		executionService: executionService,
		logger:           logger,
	}
}

// Record handles POST /api/test-executions. The execution gate in the
// service decides whether this caller may record against this case.
func (h *ExecutionHandler) Record(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Message: "authentication required"})
		return
	}

	var req service.RecordExecutionInput
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.executionService.RecordExecution(r.Context(), actor, req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// History handles GET /api/test-executions/test-case/{id}
func (h *ExecutionHandler) History(w http.ResponseWriter, r *http.Request) {
	testCaseID, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	executions, err := h.executionService.History(testCaseID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if executions == nil {
		executions = []*domain.TestExecution{}
	}

	writeJSON(w, http.StatusOK, executions)
}
