package domain

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

//go:generate mockgen -destination mocks/mock_auth_service.go -package mocks github.com/greez/greez/internal/domain AuthService

// AuthClaims are carried by session tokens
type AuthClaims struct {
	UserID    string   `json:"user_id"`
	SessionID string   `json:"session_id"`
	Role      UserRole `json:"role"`
	jwt.RegisteredClaims
}

type AuthService interface {
	// AuthenticateUserFromContext returns the user of the session stored in ctx
	AuthenticateUserFromContext(ctx context.Context) (*User, error)

	// RequireStaff authenticates the caller and fails with a PermissionError for partners
	RequireStaff(ctx context.Context) (*User, error)

	// AuthorizeSubmission authenticates the caller and checks they may act on sub
	AuthorizeSubmission(ctx context.Context, sub *Submission) (*User, error)

	// VerifyUserSession checks the session is alive and returns its user
	VerifyUserSession(ctx context.Context, userID, sessionID string) (*User, error)

	// GenerateAuthToken signs a session token
	GenerateAuthToken(user *User, sessionID string, expiresAt time.Time) (string, error)

	// ParseAuthToken verifies a session token
	ParseAuthToken(token string) (*AuthClaims, error)
}

// WithAuthClaims stores verified claims in ctx
func WithAuthClaims(ctx context.Context, claims *AuthClaims) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
	ctx = context.WithValue(ctx, SessionIDKey, claims.SessionID)
	return context.WithValue(ctx, UserRoleKey, string(claims.Role))
}
