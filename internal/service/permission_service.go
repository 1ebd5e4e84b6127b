package service

import (
	"context"
	"log/slog"

	"github.com/yourorg/testtrack/internal/apperr"
	"github.com/yourorg/testtrack/internal/domain"
	"github.com/yourorg/testtrack/internal/security/audit"
)

// PermissionService administers per-user execution permissions. Grants are
// keyed by user; admins never need one.
type PermissionService struct {
	permissions domain.PermissionRepository
	users       domain.UserRepository
	audit       *audit.Logger
	logger      *slog.Logger
}

// NewPermissionService creates a new permission service
func NewPermissionService(
	permissions domain.PermissionRepository,
	users domain.UserRepository,
	auditLog *audit.Logger,
	logger *slog.Logger,
) *PermissionService {
	if logger == nil {
		logger = slog.Default()
	}

	return &PermissionService{
		permissions: permissions,
		users:       users,
		audit:       auditLog,
		logger:      logger,
	}
}

// Grant gives the user identified by email permission to record executions.
// Granting to a user who already holds one is a conflict.
func (s *PermissionService) Grant(ctx context.Context, actor domain.Actor, email string) (*domain.User, error) {
	if email == "" {
		return nil, apperr.Invalid("invalid grant", map[string]string{"email": "email is required"})
	}

	user, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, err
	}

	has, err := s.permissions.Has(user.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if has {
		return nil, apperr.Conflict("user already has execution permission")
	}

	if err := s.permissions.Grant(user.ID, actor.ID); err != nil {
		return nil, apperr.Internal(err)
	}

	s.audit.LogPermissionGrant(ctx, actor.ID, user.ID)
	s.logger.Info("execution permission granted",
		slog.Int64("user_id", user.ID),
		slog.Int64("granted_by", actor.ID),
	)
	return user, nil
}

// Revoke removes a user's execution permission. Revoking a grant that does
// not exist is NotFound.
func (s *PermissionService) Revoke(ctx context.Context, actor domain.Actor, userID int64) error {
	removed, err := s.permissions.Revoke(userID)
	if err != nil {
		return apperr.Internal(err)
	}
	if !removed {
		return apperr.NotFound("user does not have execution permission")
	}

	s.audit.LogPermissionRevoke(ctx, actor.ID, userID)
	s.logger.Info("execution permission revoked",
		slog.Int64("user_id", userID),
		slog.Int64("revoked_by", actor.ID),
	)
	return nil
}

// Check reports whether the actor may record executions. Admins always can.
func (s *PermissionService) Check(actor domain.Actor) (bool, error) {
	if actor.IsAdmin() {
		return true, nil
	}
	has, err := s.permissions.Has(actor.ID)
	if err != nil {
		return false, apperr.Internal(err)
	}
	return has, nil
}

// List returns every active grant with user detail, newest first.
func (s *PermissionService) List() ([]*domain.PermissionGrant, error) {
	grants, err := s.permissions.List()
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return grants, nil
}
