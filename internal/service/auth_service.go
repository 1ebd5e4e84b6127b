package service

import (
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/yourorg/testtrack/internal/apperr"
	"github.com/yourorg/testtrack/internal/domain"
	"github.com/yourorg/testtrack/internal/security"
	"github.com/yourorg/testtrack/internal/security/auth"
)

// AuthService handles registration and login
type AuthService struct {
	userRepo domain.UserRepository
	tokens   *auth.TokenManager
	logger   *slog.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(userRepo domain.UserRepository, tokens *auth.TokenManager, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}

	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger,
	}
}

// UserSummary is the client-facing view of a user, without the digest.
type UserSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// LoginResult is the login response: signed token plus user summary.
type LoginResult struct {
	Token string      `json:"token"`
	User  UserSummary `json:"user"`
}

func summarize(u *domain.User) UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

// Register creates a new account. Role defaults to tester and must come from
// the closed enum; duplicates on username or email are rejected.
func (s *AuthService) Register(username, email, password, role string) (*UserSummary, error) {
	fields := map[string]string{}
	if len(username) < 3 {
		fields["username"] = "username must be at least 3 characters"
	}
	if !strings.Contains(email, "@") {
		fields["email"] = "invalid email address"
	}
	if len(password) < 6 {
		fields["password"] = "password must be at least 6 characters"
	}
	if role == "" {
		role = string(security.RoleTester)
	}
	if !security.ValidRole(role) {
		fields["role"] = "unknown role"
	}
	if len(fields) > 0 {
		return nil, apperr.Invalid("invalid registration", fields)
	}

	if existing, err := s.userRepo.GetByEmail(email); err == nil && existing != nil {
		return nil, apperr.Invalid("user already exists", nil)
	}
	if existing, err := s.userRepo.GetByUsername(username); err == nil && existing != nil {
		return nil, apperr.Invalid("user already exists", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, apperr.Internal(err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}

	if err := s.userRepo.Create(user); err != nil {
		s.logger.Error("failed to create user", slog.String("error", err.Error()))
		return nil, apperr.Internal(err)
	}

	s.logger.Info("user registered",
		slog.Int64("user_id", user.ID),
		slog.String("role", user.Role),
	)

	summary := summarize(user)
	return &summary, nil
}

// Login authenticates a user and returns a signed token with a user summary.
// Unknown email and wrong password produce the same generic error.
func (s *AuthService) Login(email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, apperr.Invalid("email and password are required", nil)
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		s.logger.Info("login attempt with unknown email", slog.String("email", email))
		return nil, apperr.New(apperr.CodeUnauthorized, "invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("login failed with wrong password", slog.Int64("user_id", user.ID))
		return nil, apperr.New(apperr.CodeUnauthorized, "invalid credentials")
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		s.logger.Error("failed to sign token", slog.String("error", err.Error()))
		return nil, apperr.Internal(fmt.Errorf("failed to generate token: %w", err))
	}

	s.logger.Info("user logged in",
		slog.Int64("user_id", user.ID),
		slog.String("role", user.Role),
	)

	return &LoginResult{Token: token, User: summarize(user)}, nil
}
