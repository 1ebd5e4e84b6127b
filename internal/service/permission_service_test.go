package service

import (
	"context"
	"testing"

	"github.com/yourorg/testtrack/internal/apperr"
	"github.com/yourorg/testtrack/internal/domain"
	"github.com/yourorg/testtrack/internal/security/audit"
)

func newPermissionFixture(t *testing.T) (*PermissionService, *memUserRepo, *domain.User) {
	t.Helper()

	users := newMemUserRepo()
	grantee := &domain.User{Username: "tessa", Email: "tessa@example.com", Role: "tester"}
	if err := users.Create(grantee); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	svc := NewPermissionService(newMemPermissionRepo(), users, audit.NewLogger(nil), nil)
	return svc, users, grantee
}

func TestGrantAndRevoke(t *testing.T) {
	svc, _, grantee := newPermissionFixture(t)
	admin := domain.Actor{ID: 99, Username: "root", Role: "admin"}

	user, err := svc.Grant(context.Background(), admin, grantee.Email)
	if err != nil {
		t.Fatalf("grant failed: %v", err)
	}
	if user.ID != grantee.ID {
		t.Fatalf("expected grantee %d, got %d", grantee.ID, user.ID)
	}

	has, err := svc.Check(domain.Actor{ID: grantee.ID, Role: "tester"})
	if err != nil || !has {
		t.Fatalf("expected permission after grant, got %v %v", has, err)
	}

	// Double grant conflicts.
	if _, err := svc.Grant(context.Background(), admin, grantee.Email); !apperr.IsCode(err, apperr.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	if err := svc.Revoke(context.Background(), admin, grantee.ID); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	has, _ = svc.Check(domain.Actor{ID: grantee.ID, Role: "tester"})
	if has {
		t.Fatalf("expected permission gone after revoke")
	}

	// Revoking an absent grant is not found.
	if err := svc.Revoke(context.Background(), admin, grantee.ID); !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGrantUnknownEmail(t *testing.T) {
	svc, _, _ := newPermissionFixture(t)
	admin := domain.Actor{ID: 99, Role: "admin"}

	if _, err := svc.Grant(context.Background(), admin, "nobody@example.com"); !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.Grant(context.Background(), admin, ""); !apperr.IsCode(err, apperr.CodeInvalid) {
		t.Fatalf("expected invalid for empty email, got %v", err)
	}
}

func TestCheckAdminAlwaysAllowed(t *testing.T) {
	svc, _, _ := newPermissionFixture(t)

	has, err := svc.Check(domain.Actor{ID: 1, Role: "admin"})
	if err != nil || !has {
		t.Fatalf("expected admin allowed without a grant, got %v %v", has, err)
	}
}
