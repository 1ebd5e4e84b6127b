package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/yourorg/testtrack/internal/domain"
	"github.com/yourorg/testtrack/internal/service"
)

// TestCaseHandler handles test case endpoints
type TestCaseHandler struct {
	testCaseService *service.TestCaseService
	logger          *slog.Logger
}

// NewTestCaseHandler creates a new test case handler
func NewTestCaseHandler(testCaseService *service.TestCaseService, logger *slog.Logger) *TestCaseHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &TestCaseHandler{
		testCaseService: testCaseService,
		logger:          logger,
	}
}

type updateTestCaseRequest struct {
	service.TestCaseInput
	// Steps shadows the embedded field so an absent array can be told apart
	// from an empty one.
	Steps *[]service.StepInput `json:"steps"`
}

// Create handles POST /api/test-cases
func (h *TestCaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Message: "authentication required"})
		return
	}

	var req service.TestCaseInput
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.testCaseService.Create(r.Context(), actor, req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// List handles GET /api/test-cases with optional project_id and suite_id
// query filters.
func (h *TestCaseHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := domain.TestCaseFilter{}
	if v := r.URL.Query().Get("project_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "project_id must be an integer"})
			return
		}
		filter.ProjectID = &id
	}
	if v := r.URL.Query().Get("suite_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "suite_id must be an integer"})
			return
		}
		filter.SuiteID = &id
	}

	cases, err := h.testCaseService.List(filter)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if cases == nil {
		cases = []*domain.TestCase{}
	}

	writeJSON(w, http.StatusOK, cases)
}

// Get handles GET /api/test-cases/{id}
func (h *TestCaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.testCaseService.Get(id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Update handles PUT /api/test-cases/{id}. The payload replaces the test
// case; a present steps array replaces the stored step set wholesale.
func (h *TestCaseHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Message: "authentication required"})
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req updateTestCaseRequest
	if !decodeBody(w, r, &req) {
		return
	}

	input := req.TestCaseInput
	replaceSteps := req.Steps != nil
	if replaceSteps {
		input.Steps = *req.Steps
	} else {
		input.Steps = nil
	}

	result, err := h.testCaseService.Update(r.Context(), actor, id, input, replaceSteps)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ListPassed handles GET /api/test-cases/passed?projectId=
func (h *TestCaseHandler) ListPassed(w http.ResponseWriter, r *http.Request) {
	projectID, err := strconv.ParseInt(r.URL.Query().Get("projectId"), 10, 64)
	if err != nil || projectID <= 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "projectId query parameter is required"})
		return
	}

	cases, err := h.testCaseService.ListPassed(projectID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if cases == nil {
		cases = []*domain.TestCase{}
	}

	writeJSON(w, http.StatusOK, cases)
}

// Reopen handles PATCH /api/test-case-status/{id}/reopen
func (h *TestCaseHandler) Reopen(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Message: "authentication required"})
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	tc, err := h.testCaseService.Reopen(r.Context(), actor, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, tc)
}
