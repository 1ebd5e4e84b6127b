package handler

import (
	"log/slog"
	"net/http"

	"github.com/yourorg/testtrack/internal/domain"
	"github.com/yourorg/testtrack/internal/service"
)

// PermissionHandler handles execution-permission administration endpoints
type PermissionHandler struct {
	permissionService *service.PermissionService
	logger            *slog.Logger
}

// NewPermissionHandler creates a new permission handler
func NewPermissionHandler(permissionService *service.PermissionService, logger *slog.Logger) *PermissionHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &PermissionHandler{
		permissionService: permissionService,
		logger:            logger,
	}
}

// GrantRequest identifies the grantee by email.
type GrantRequest struct {
	Email string `json:"email"`
}

// Grant handles POST /api/execution-permissions/grant
func (h *PermissionHandler) Grant(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Message: "authentication required"})
		return
	}

	var req GrantRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.permissionService.Grant(r.Context(), actor, req.Email)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "execution permission granted",
		"user": map[string]any{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}

// Revoke handles DELETE /api/execution-permissions/revoke/{userId}
func (h *PermissionHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Message: "authentication required"})
		return
	}

	userID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.permissionService.Revoke(r.Context(), actor, userID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "execution permission revoked"})
}

// Check handles GET /api/execution-permissions/check and reports whether the
// caller may record executions.
func (h *PermissionHandler) Check(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Message: "authentication required"})
		return
	}

	has, err := h.permissionService.Check(actor)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	reason := "none"
	switch {
	case actor.IsAdmin():
		reason = "admin"
	case has:
		reason = "granted"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"hasPermission": has,
		"reason":        reason,
	})
}

// List handles GET /api/execution-permissions
func (h *PermissionHandler) List(w http.ResponseWriter, r *http.Request) {
	grants, err := h.permissionService.List()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if grants == nil {
		grants = []*domain.PermissionGrant{}
	}

	writeJSON(w, http.StatusOK, grants)
}
