package security

import (
	"fmt"
	"log/slog"
)

// Role represents a user role
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleTestLead Role = "test-lead"
	RoleTester   Role = "tester"
	RoleReadOnly Role = "read-only"
)

// Roles is the closed role enum.
var Roles = []Role{RoleAdmin, RoleTestLead, RoleTester, RoleReadOnly}

// ValidRole reports whether s names a known role.
func ValidRole(s string) bool {
	for _, r := range Roles {
		if string(r) == s {
			return true
		}
	}
	return false
}

// AuthorizationService handles role checks
type AuthorizationService struct {
	logger *slog.Logger
}

// NewAuthorizationService creates a new authorization service
func NewAuthorizationService(logger *slog.Logger) *AuthorizationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthorizationService{
		logger: logger,
	}
}

// HasAnyRole reports whether role is one of the allowed set.
func (as *AuthorizationService) HasAnyRole(role Role, allowed ...Role) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}

// ValidateAnyRole validates that role is in the allowed set.
func (as *AuthorizationService) ValidateAnyRole(role Role, allowed ...Role) error {
	if !as.HasAnyRole(role, allowed...) {
		as.logger.Warn("role denied",
			slog.String("role", string(role)),
		)
		return fmt.Errorf("access denied: role %s not permitted", role)
	}
	return nil
}
