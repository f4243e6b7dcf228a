package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.opencensus.io/trace"

	"github.com/greez/greez/internal/domain"
	"github.com/greez/greez/pkg/cache"
	"github.com/greez/greez/pkg/crypto"
	"github.com/greez/greez/pkg/logger"
	"github.com/greez/greez/pkg/mailer"
	"github.com/greez/greez/pkg/tracing"
)

const invitationCachePrefix = "invitation:token:"

type InvitationService struct {
	repo           domain.InvitationRepository
	submissionRepo domain.SubmissionRepository
	userRepo       domain.UserRepository
	authService    domain.AuthService
	mailer         mailer.Mailer
	cache          cache.Cache
	cacheTTL       time.Duration
	sessionExpiry  time.Duration
	isDevelopment  bool
	logger         logger.Logger
}

type InvitationServiceConfig struct {
	Repository           domain.InvitationRepository
	SubmissionRepository domain.SubmissionRepository
	UserRepository       domain.UserRepository
	AuthService          domain.AuthService
	Mailer               mailer.Mailer
	Cache                cache.Cache
	CacheTTL             time.Duration
	SessionExpiry        time.Duration
	IsDevelopment        bool
	Logger               logger.Logger
}

func NewInvitationService(cfg InvitationServiceConfig) *InvitationService {
	return &InvitationService{
		repo:           cfg.Repository,
		submissionRepo: cfg.SubmissionRepository,
		userRepo:       cfg.UserRepository,
		authService:    cfg.AuthService,
		mailer:         cfg.Mailer,
		cache:          cfg.Cache,
		cacheTTL:       cfg.CacheTTL,
		sessionExpiry:  cfg.SessionExpiry,
		isDevelopment:  cfg.IsDevelopment,
		logger:         cfg.Logger,
	}
}

var _ domain.InvitationService = (*InvitationService)(nil)

// Create issues an invitation. A failed email does not undo the invitation,
// the response reports it so staff can resend.
func (s *InvitationService) Create(ctx context.Context, req *domain.CreateInvitationRequest) (*domain.CreateInvitationResponse, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "InvitationService", "Create")
	defer span.End()

	staff, err := s.authService.RequireStaff(ctx)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	token, err := crypto.GenerateToken(domain.InvitationTokenLength)
	if err != nil {
		return nil, err
	}

	invitation := &domain.Invitation{
		CompanyName: req.CompanyName,
		Email:       req.Email,
		ContactName: req.ContactName,
		Token:       token,
		InvitedBy:   staff.ID,
	}
	if err := s.repo.Create(ctx, invitation); err != nil {
		s.logger.WithField("email", req.Email).WithField("error", err.Error()).Error("Failed to create invitation")
		tracing.MarkSpanError(ctx, err)
		return nil, err
	}
	span.AddAttributes(trace.StringAttribute("invitation.id", invitation.ID))

	resp := &domain.CreateInvitationResponse{Invitation: invitation, EmailSent: true}

	err = s.mailer.SendPartnerInvitation(ctx, invitation.Email, invitation.CompanyName, invitation.ContactDisplayName(), token)
	if err != nil {
		s.logger.WithField("invitation_id", invitation.ID).WithField("error", err.Error()).Error("Failed to send invitation email")
		resp.EmailSent = false
	}

	if s.isDevelopment {
		resp.Token = token
	}
	return resp, nil
}

func (s *InvitationService) Delete(ctx context.Context, id string) error {
	if _, err := s.authService.RequireStaff(ctx); err != nil {
		return err
	}

	invitation, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		var stateErr *domain.InvalidStateError
		if !errors.As(err, &stateErr) && !domain.IsNotFound(err) {
			s.logger.WithField("invitation_id", id).WithField("error", err.Error()).Error("Failed to delete invitation")
		}
		return err
	}

	if err := s.cache.Delete(ctx, invitationCachePrefix+invitation.Token); err != nil {
		s.logger.WithField("invitation_id", id).WithField("error", err.Error()).Warn("Failed to evict invitation from cache")
	}
	return nil
}

// FindByToken reads through the token cache. Cache failures fall back to the database.
func (s *InvitationService) FindByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	key := invitationCachePrefix + token

	if data, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.WithField("error", err.Error()).Warn("Invitation cache read failed")
	} else if ok {
		var invitation domain.Invitation
		if err := json.Unmarshal(data, &invitation); err == nil {
			invitation.Token = token
			return &invitation, nil
		}
	}

	invitation, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(invitation); err == nil {
		if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
			s.logger.WithField("error", err.Error()).Warn("Invitation cache write failed")
		}
	}
	return invitation, nil
}

func (s *InvitationService) List(ctx context.Context) ([]*domain.Invitation, error) {
	if _, err := s.authService.RequireStaff(ctx); err != nil {
		return nil, err
	}
	return s.repo.List(ctx)
}

func (s *InvitationService) Resend(ctx context.Context, id string) error {
	if _, err := s.authService.RequireStaff(ctx); err != nil {
		return err
	}

	invitation, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	err = s.mailer.SendPartnerInvitation(ctx, invitation.Email, invitation.CompanyName, invitation.ContactDisplayName(), invitation.Token)
	if err != nil {
		s.logger.WithField("invitation_id", id).WithField("error", err.Error()).Error("Failed to resend invitation email")
		return err
	}
	return nil
}

// Accept exchanges an invitation token for a partner session. The partner
// user is created on first use and reused afterwards.
func (s *InvitationService) Accept(ctx context.Context, req *domain.AcceptInvitationRequest) (*domain.AcceptInvitationResponse, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "InvitationService", "Accept")
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	invitation, err := s.FindByToken(ctx, req.Token)
	if err != nil {
		return nil, err
	}
	span.AddAttributes(trace.StringAttribute("invitation.id", invitation.ID))

	user, err := s.partnerUser(ctx, invitation, req.Name)
	if err != nil {
		tracing.MarkSpanError(ctx, err)
		return nil, err
	}

	session := &domain.Session{
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.sessionExpiry),
	}
	if err := s.userRepo.CreateSession(ctx, session); err != nil {
		s.logger.WithField("user_id", user.ID).WithField("error", err.Error()).Error("Failed to create partner session")
		return nil, err
	}

	token, err := s.authService.GenerateAuthToken(user, session.ID, session.ExpiresAt)
	if err != nil {
		return nil, err
	}

	submission, err := s.submissionRepo.GetByInvitationID(ctx, invitation.ID)
	if err != nil && !domain.IsNotFound(err) {
		return nil, err
	}

	return &domain.AcceptInvitationResponse{
		Token:      token,
		ExpiresAt:  session.ExpiresAt,
		User:       *user,
		Invitation: invitation,
		Submission: submission,
	}, nil
}

func (s *InvitationService) partnerUser(ctx context.Context, invitation *domain.Invitation, name string) (*domain.User, error) {
	user, err := s.userRepo.GetUserByInvitationID(ctx, invitation.ID)
	if err == nil {
		return user, nil
	}
	if !domain.IsNotFound(err) {
		return nil, err
	}

	if name == "" {
		name = invitation.ContactDisplayName()
	}
	invitationID := invitation.ID
	user = &domain.User{
		Email:        invitation.Email,
		Name:         name,
		Role:         domain.UserRolePartner,
		InvitationID: &invitationID,
	}

	err = s.userRepo.CreateUser(ctx, user)
	var exists *domain.ErrUserExists
	if errors.As(err, &exists) {
		// lost a race with a concurrent accept of the same invitation
		existing, getErr := s.userRepo.GetUserByInvitationID(ctx, invitation.ID)
		if getErr == nil {
			return existing, nil
		}
		return nil, domain.NewInvalidStateError("invitation", invitation.ID, "email_in_use", "email already belongs to another account")
	}
	if err != nil {
		s.logger.WithField("invitation_id", invitation.ID).WithField("error", err.Error()).Error("Failed to create partner user")
		return nil, err
	}
	return user, nil
}
