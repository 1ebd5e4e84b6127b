package handler

import (
	"log/slog"
	"net/http"

	"github.com/yourorg/testtrack/internal/domain"
	"github.com/yourorg/testtrack/internal/service"
)

// ProjectHandler handles project endpoints
type ProjectHandler struct {
	projectService *service.ProjectService
	logger         *slog.Logger
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projectService *service.ProjectService, logger *slog.Logger) *ProjectHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &ProjectHandler{
		projectService: projectService,
		logger:         logger,
	}
}

// Create handles POST /api/projects
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Message: "authentication required"})
		return
	}

	var req service.ProjectInput
	if !decodeBody(w, r, &req) {
		return
	}

	project, err := h.projectService.Create(r.Context(), actor, req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, project)
}

// List handles GET /api/projects. The set returned depends on the caller's
// role: admins get all projects, everyone else only the ones containing test
// cases assigned to them.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Message: "authentication required"})
		return
	}

	projects, err := h.projectService.List(r.Context(), actor)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if projects == nil {
		projects = []*domain.Project{}
	}

	writeJSON(w, http.StatusOK, projects)
}

// Get handles GET /api/projects/{id}
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	project, err := h.projectService.Get(id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

// Update handles PUT /api/projects/{id}
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req service.ProjectUpdateInput
	if !decodeBody(w, r, &req) {
		return
	}

	project, err := h.projectService.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

// Delete handles DELETE /api/projects/{id}
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.projectService.Delete(r.Context(), actor, id); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "project deleted"})
}
