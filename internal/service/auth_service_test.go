package service

import (
	"testing"
	"time"

	"github.com/yourorg/testtrack/internal/apperr"
	"github.com/yourorg/testtrack/internal/security/auth"
)

func newTestAuthService(repo *memUserRepo) *AuthService {
	tm := auth.NewTokenManager("secret", "testtrack", time.Hour)
	return NewAuthService(repo, tm, nil)
}

func TestRegisterAndLogin(t *testing.T) {
	repo := newMemUserRepo()
	s := newTestAuthService(repo)

	user, err := s.Register("alice", "alice@example.com", "password1", "")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.ID == 0 {
		t.Fatalf("expected user id")
	}
	if user.Role != "tester" {
		t.Fatalf("expected default role tester, got %q", user.Role)
	}

	// Duplicate email
	if _, err := s.Register("alice2", "alice@example.com", "password1", ""); !apperr.IsCode(err, apperr.CodeInvalid) {
		t.Fatalf("expected invalid error for duplicate email, got %v", err)
	}
	// Duplicate username
	if _, err := s.Register("alice", "other@example.com", "password1", ""); !apperr.IsCode(err, apperr.CodeInvalid) {
		t.Fatalf("expected invalid error for duplicate username, got %v", err)
	}

	lr, err := s.Login("alice@example.com", "password1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if lr.Token == "" {
		t.Fatalf("expected token on login")
	}
	if lr.User.Username != "alice" {
		t.Fatalf("expected user summary, got %+v", lr.User)
	}
}

func TestLoginInvalidCredentialsAreGeneric(t *testing.T) {
	repo := newMemUserRepo()
	s := newTestAuthService(repo)

	if _, err := s.Register("bob", "bob@example.com", "password1", "tester"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, unknownErr := s.Login("nobody@example.com", "password1")
	_, wrongErr := s.Login("bob@example.com", "wrong-password")

	if !apperr.IsCode(unknownErr, apperr.CodeUnauthorized) || !apperr.IsCode(wrongErr, apperr.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for both failures, got %v and %v", unknownErr, wrongErr)
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Fatalf("unknown email and wrong password must be indistinguishable: %v vs %v", unknownErr, wrongErr)
	}
}

func TestRegisterValidation(t *testing.T) {
	s := newTestAuthService(newMemUserRepo())

	cases := []struct {
		name     string
		username string
		email    string
		password string
		role     string
	}{
		{"short username", "ab", "a@example.com", "password1", ""},
		{"bad email", "carol", "not-an-email", "password1", ""},
		{"short password", "carol", "carol@example.com", "12345", ""},
		{"unknown role", "carol", "carol@example.com", "password1", "superuser"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.Register(tc.username, tc.email, tc.password, tc.role); !apperr.IsCode(err, apperr.CodeInvalid) {
				t.Fatalf("expected invalid error, got %v", err)
			}
		})
	}
}

func TestRegisterAcceptsExplicitRole(t *testing.T) {
	s := newTestAuthService(newMemUserRepo())

	user, err := s.Register("dave", "dave@example.com", "password1", "test-lead")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Role != "test-lead" {
		t.Fatalf("expected test-lead role, got %q", user.Role)
	}
}
