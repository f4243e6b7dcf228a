package service

import (
	"context"
	"time"

	"go.opencensus.io/trace"

	"github.com/greez/greez/internal/domain"
	"github.com/greez/greez/pkg/crypto"
	"github.com/greez/greez/pkg/logger"
	"github.com/greez/greez/pkg/mailer"
	"github.com/greez/greez/pkg/ratelimiter"
	"github.com/greez/greez/pkg/tracing"
)

// Rate limiter namespaces
const (
	RateLimitSignIn           = "signin"
	RateLimitVerifyCode       = "verify_code"
	RateLimitAcceptInvitation = "accept_invitation"
)

const magicCodeLength = 6

type UserService struct {
	repo          domain.UserRepository
	authService   domain.AuthService
	mailer        mailer.Mailer
	sessionExpiry time.Duration
	codeCost      int
	logger        logger.Logger
	isDevelopment bool
	rateLimiter   *ratelimiter.RateLimiter
}

type UserServiceConfig struct {
	Repository    domain.UserRepository
	AuthService   domain.AuthService
	Mailer        mailer.Mailer
	SessionExpiry time.Duration
	CodeCost      int
	Logger        logger.Logger
	IsDevelopment bool
	RateLimiter   *ratelimiter.RateLimiter
}

func NewUserService(cfg UserServiceConfig) *UserService {
	return &UserService{
		repo:          cfg.Repository,
		authService:   cfg.AuthService,
		mailer:        cfg.Mailer,
		sessionExpiry: cfg.SessionExpiry,
		codeCost:      cfg.CodeCost,
		logger:        cfg.Logger,
		isDevelopment: cfg.IsDevelopment,
		rateLimiter:   cfg.RateLimiter,
	}
}

var _ domain.UserServiceInterface = (*UserService)(nil)

// SignIn creates a session waiting for a magic code and emails the code.
// In development the code is returned instead.
func (s *UserService) SignIn(ctx context.Context, input domain.SignInInput) (string, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "UserService", "SignIn")
	defer span.End()
	span.AddAttributes(trace.StringAttribute("user.email", input.Email))

	if s.rateLimiter != nil && !s.rateLimiter.Allow(RateLimitSignIn, input.Email) {
		s.logger.WithField("email", input.Email).Warn("Sign-in rate limit exceeded")
		return "", ErrTooManyAttempts
	}

	user, err := s.repo.GetUserByEmail(ctx, input.Email)
	if err != nil {
		if !domain.IsNotFound(err) {
			s.logger.WithField("email", input.Email).WithField("error", err.Error()).Error("Failed to get user by email")
		}
		tracing.MarkSpanError(ctx, err)
		return "", err
	}

	code, err := crypto.GenerateNumericCode(magicCodeLength)
	if err != nil {
		return "", err
	}
	hash, err := crypto.HashSecret(code, s.codeCost)
	if err != nil {
		return "", err
	}

	now := time.Now()
	codeExpiresAt := now.Add(mailer.MagicCodeTTLMinutes * time.Minute)
	session := &domain.Session{
		UserID:             user.ID,
		ExpiresAt:          now.Add(s.sessionExpiry),
		MagicCodeHash:      &hash,
		MagicCodeExpiresAt: &codeExpiresAt,
	}

	if err := s.repo.CreateSession(ctx, session); err != nil {
		s.logger.WithField("user_id", user.ID).WithField("error", err.Error()).Error("Failed to create session")
		tracing.MarkSpanError(ctx, err)
		return "", err
	}

	if s.isDevelopment {
		return code, nil
	}

	if err := s.mailer.SendMagicCode(ctx, user.Email, code); err != nil {
		s.logger.WithField("user_id", user.ID).WithField("error", err.Error()).Error("Failed to send magic code")
		tracing.MarkSpanError(ctx, err)
		return "", err
	}
	return "", nil
}

func (s *UserService) VerifyCode(ctx context.Context, input domain.VerifyCodeInput) (*domain.AuthResponse, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "UserService", "VerifyCode")
	defer span.End()
	span.AddAttributes(trace.StringAttribute("user.email", input.Email))

	if s.rateLimiter != nil && !s.rateLimiter.Allow(RateLimitVerifyCode, input.Email) {
		s.logger.WithField("email", input.Email).Warn("Verify code rate limit exceeded")
		return nil, ErrTooManyAttempts
	}

	user, err := s.repo.GetUserByEmail(ctx, input.Email)
	if domain.IsNotFound(err) {
		return nil, ErrInvalidCode
	}
	if err != nil {
		s.logger.WithField("email", input.Email).WithField("error", err.Error()).Error("Failed to get user by email for code verification")
		return nil, err
	}

	session, err := s.repo.GetPendingSession(ctx, user.ID)
	if domain.IsNotFound(err) {
		return nil, ErrInvalidCode
	}
	if err != nil {
		s.logger.WithField("user_id", user.ID).WithField("error", err.Error()).Error("Failed to get pending session")
		return nil, err
	}

	if session.MagicCodeExpiresAt == nil || time.Now().After(*session.MagicCodeExpiresAt) {
		s.logger.WithField("user_id", user.ID).WithField("session_id", session.ID).Warn("Magic code expired")
		return nil, ErrInvalidCode
	}
	if !crypto.CheckSecretHash(input.Code, *session.MagicCodeHash) {
		s.logger.WithField("user_id", user.ID).Warn("Invalid magic code")
		return nil, ErrInvalidCode
	}

	session.MagicCodeHash = nil
	session.MagicCodeExpiresAt = nil
	if err := s.repo.UpdateSession(ctx, session); err != nil {
		s.logger.WithField("user_id", user.ID).WithField("session_id", session.ID).WithField("error", err.Error()).Error("Failed to update session")
		return nil, err
	}

	token, err := s.authService.GenerateAuthToken(user, session.ID, session.ExpiresAt)
	if err != nil {
		return nil, err
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Reset(RateLimitVerifyCode, input.Email)
	}

	return &domain.AuthResponse{
		Token:     token,
		User:      *user,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func (s *UserService) GetCurrentUser(ctx context.Context) (*domain.User, error) {
	return s.authService.AuthenticateUserFromContext(ctx)
}

func (s *UserService) Logout(ctx context.Context) error {
	sessionID, ok := ctx.Value(domain.SessionIDKey).(string)
	if !ok || sessionID == "" {
		return domain.ErrUnauthenticated
	}

	err := s.repo.DeleteSession(ctx, sessionID)
	if err != nil && !domain.IsNotFound(err) {
		s.logger.WithField("session_id", sessionID).WithField("error", err.Error()).Error("Failed to delete session")
		return err
	}
	return nil
}
