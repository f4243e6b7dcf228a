package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/greez/greez/internal/domain"
	"github.com/greez/greez/pkg/logger"
)

var (
	ErrSessionExpired  = errors.New("session expired")
	ErrInvalidToken    = errors.New("invalid session token")
	ErrInvalidCode     = errors.New("invalid or expired code")
	ErrTooManyAttempts = errors.New("too many attempts, please try again in a few minutes")
)

const tokenIssuer = "greez"

type AuthService struct {
	repo         domain.UserRepository
	logger       logger.Logger
	getJWTSecret func() ([]byte, error)
}

type AuthServiceConfig struct {
	Repository   domain.UserRepository
	Logger       logger.Logger
	GetJWTSecret func() ([]byte, error)
}

func NewAuthService(cfg AuthServiceConfig) *AuthService {
	return &AuthService{
		repo:         cfg.Repository,
		logger:       cfg.Logger,
		getJWTSecret: cfg.GetJWTSecret,
	}
}

var _ domain.AuthService = (*AuthService)(nil)

func (s *AuthService) AuthenticateUserFromContext(ctx context.Context) (*domain.User, error) {
	userID, ok := ctx.Value(domain.UserIDKey).(string)
	if !ok || userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	sessionID, ok := ctx.Value(domain.SessionIDKey).(string)
	if !ok || sessionID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return s.VerifyUserSession(ctx, userID, sessionID)
}

func (s *AuthService) RequireStaff(ctx context.Context) (*domain.User, error) {
	user, err := s.AuthenticateUserFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !user.IsStaff() {
		return nil, domain.ErrStaffOnly
	}
	return user, nil
}

// AuthorizeSubmission lets staff through and restricts partners to the
// submission of their own invitation
func (s *AuthService) AuthorizeSubmission(ctx context.Context, sub *domain.Submission) (*domain.User, error) {
	user, err := s.AuthenticateUserFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !user.CanAccessInvitation(sub.InvitationID) {
		s.logger.WithField("user_id", user.ID).WithField("submission_id", sub.ID).Warn("Partner tried to access another submission")
		return nil, domain.NewPermissionError("submission belongs to another partner")
	}
	return user, nil
}

// VerifyUserSession checks if the user exists and the session is valid
func (s *AuthService) VerifyUserSession(ctx context.Context, userID, sessionID string) (*domain.User, error) {
	session, err := s.repo.GetSessionByID(ctx, sessionID)
	if domain.IsNotFound(err) {
		s.logger.WithField("user_id", userID).WithField("session_id", sessionID).Warn("Session not found")
		return nil, ErrSessionExpired
	}
	if err != nil {
		s.logger.WithField("user_id", userID).WithField("session_id", sessionID).WithField("error", err.Error()).Error("Failed to query session")
		return nil, err
	}

	if session.UserID != userID {
		s.logger.WithField("user_id", userID).WithField("session_id", sessionID).Warn("Session does not belong to user")
		return nil, ErrSessionExpired
	}
	// sessions waiting for their magic code are not usable yet
	if session.MagicCodeHash != nil {
		return nil, ErrSessionExpired
	}
	if time.Now().After(session.ExpiresAt) {
		s.logger.WithField("user_id", userID).WithField("session_id", sessionID).WithField("expires_at", session.ExpiresAt).Warn("Session expired")
		return nil, ErrSessionExpired
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if domain.IsNotFound(err) {
		return nil, domain.ErrUnauthenticated
	}
	if err != nil {
		s.logger.WithField("user_id", userID).WithField("error", err.Error()).Error("Failed to query user")
		return nil, err
	}
	return user, nil
}

// GenerateAuthToken signs an HS256 token bound to a session
func (s *AuthService) GenerateAuthToken(user *domain.User, sessionID string, expiresAt time.Time) (string, error) {
	secret, err := s.getJWTSecret()
	if err != nil {
		return "", fmt.Errorf("failed to get JWT secret: %w", err)
	}

	claims := domain.AuthClaims{
		UserID:    user.ID,
		SessionID: sessionID,
		Role:      user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		s.logger.WithField("user_id", user.ID).WithField("error", err.Error()).Error("Failed to sign auth token")
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *AuthService) ParseAuthToken(tokenString string) (*domain.AuthClaims, error) {
	secret, err := s.getJWTSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to get JWT secret: %w", err)
	}

	claims := &domain.AuthClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
