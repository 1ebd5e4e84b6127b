package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndValidateToken(t *testing.T) {
	tm := NewTokenManager("test-secret", "testtrack", time.Hour)

	token, err := tm.GenerateToken(42, "tessa", "tester")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, err := tm.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "tessa" || claims.Role != "tester" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	tm := NewTokenManager("secret-a", "testtrack", time.Hour)
	other := NewTokenManager("secret-b", "testtrack", time.Hour)

	token, err := tm.GenerateToken(1, "root", "admin")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if _, err := other.ValidateToken(token); err == nil {
		t.Fatalf("expected validation failure with wrong secret")
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	// GenerateToken can only issue future expiries, so sign an already-expired
	// token directly with the same secret.
	tm := NewTokenManager("secret", "testtrack", time.Hour)
	now := time.Now()
	claims := Claims{
		UserID:   1,
		Username: "root",
		Role:     "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
			Issuer:    "testtrack",
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if _, err := tm.ValidateToken(token); err == nil {
		t.Fatalf("expected expired token to fail validation")
	}
}

func TestTokenManagerCoercesNonPositiveTTL(t *testing.T) {
	tm := NewTokenManager("secret", "testtrack", -time.Minute)

	if tm.TTL() != 24*time.Hour {
		t.Fatalf("expected default ttl for non-positive input, got %v", tm.TTL())
	}

	token, err := tm.GenerateToken(1, "root", "admin")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, err := tm.ValidateToken(token); err != nil {
		t.Fatalf("token issued under the default ttl must validate: %v", err)
	}
}

func TestGenerateRequiresIdentity(t *testing.T) {
	tm := NewTokenManager("secret", "testtrack", time.Hour)

	if _, err := tm.GenerateToken(0, "tessa", "tester"); err == nil {
		t.Fatalf("expected error without user id")
	}
	if _, err := tm.GenerateToken(1, "", "tester"); err == nil {
		t.Fatalf("expected error without username")
	}
}

func TestExtractToken(t *testing.T) {
	if _, err := ExtractToken("Basic abc"); err == nil {
		t.Fatalf("expected error for non-bearer header")
	}
	tok, err := ExtractToken("Bearer abc.def.ghi")
	if err != nil || tok != "abc.def.ghi" {
		t.Fatalf("unexpected extract result: %q %v", tok, err)
	}
}
