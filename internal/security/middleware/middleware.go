package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yourorg/testtrack/internal/security"
	"github.com/yourorg/testtrack/internal/security/auth"
	"github.com/yourorg/testtrack/internal/security/ratelimit"
)

type ClaimsContextKey struct{}

// publicPaths require no bearer token.
var publicPaths = map[string]bool{
	"/health":            true,
	"/ready":             true,
	"/metrics":           true,
	"/api/auth/register": true,
	"/api/auth/login":    true,
}

func JWTMiddleware(tm *auth.TokenManager, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSONError(w, http.StatusUnauthorized, "access token required")
				return
			}

			tokenString, err := auth.ExtractToken(authHeader)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid authorization header")
				return
			}

			claims, err := tm.ValidateToken(tokenString)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAnyRole gates a single route on the authenticated role.
func RequireAnyRole(authz *security.AuthorizationService, log *slog.Logger, roles ...security.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaimsFromContext(r.Context())
			if claims == nil {
				writeJSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !authz.HasAnyRole(security.Role(claims.Role), roles...) {
				log.Warn("role denied",
					slog.String("role", claims.Role),
					slog.String("path", r.URL.Path),
				)
				writeJSONError(w, http.StatusForbidden, "access denied: insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitMiddleware limits authenticated users by their user id.
func RateLimitMiddleware(limiter *ratelimit.Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			key := ""
			if claims := GetClaimsFromContext(r.Context()); claims != nil {
				key = claims.Username
			}

			if !limiter.Allow(key) {
				writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	if c := ctx.Value(ClaimsContextKey{}); c != nil {
		return c.(*auth.Claims)
	}
	return nil
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
