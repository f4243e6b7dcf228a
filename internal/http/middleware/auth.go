package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/greez/greez/internal/domain"
	"github.com/greez/greez/internal/service"
)

type AuthConfig struct {
	authService domain.AuthService
}

func NewAuthMiddleware(authService domain.AuthService) *AuthConfig {
	return &AuthConfig{authService: authService}
}

// RequireAuth verifies the bearer JWT and its session, then stores the claims
// in the request context
func (ac *AuthConfig) RequireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, "Authorization header is required", http.StatusUnauthorized)
				return
			}

			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				writeError(w, "Invalid authorization header format", http.StatusUnauthorized)
				return
			}

			claims, err := ac.authService.ParseAuthToken(token)
			if err != nil {
				writeError(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			if _, err := ac.authService.VerifyUserSession(r.Context(), claims.UserID, claims.SessionID); err != nil {
				switch {
				case errors.Is(err, service.ErrSessionExpired):
					writeError(w, "Session expired", http.StatusUnauthorized)
				case errors.Is(err, domain.ErrUnauthenticated):
					writeError(w, "User not found", http.StatusUnauthorized)
				default:
					writeError(w, "Internal server error", http.StatusInternalServerError)
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(domain.WithAuthClaims(r.Context(), claims)))
		})
	}
}
