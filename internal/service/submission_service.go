package service

import (
	"context"
	"errors"

	"go.opencensus.io/trace"

	"github.com/greez/greez/internal/domain"
	"github.com/greez/greez/pkg/logger"
	"github.com/greez/greez/pkg/mailer"
	"github.com/greez/greez/pkg/tracing"
)

type SubmissionService struct {
	repo           domain.SubmissionRepository
	invitationRepo domain.InvitationRepository
	authService    domain.AuthService
	mailer         mailer.Mailer
	logger         logger.Logger
}

func NewSubmissionService(
	repo domain.SubmissionRepository,
	invitationRepo domain.InvitationRepository,
	authService domain.AuthService,
	mailer mailer.Mailer,
	logger logger.Logger,
) *SubmissionService {
	return &SubmissionService{
		repo:           repo,
		invitationRepo: invitationRepo,
		authService:    authService,
		mailer:         mailer,
		logger:         logger,
	}
}

var _ domain.SubmissionService = (*SubmissionService)(nil)

func (s *SubmissionService) CreateSubmission(ctx context.Context, req *domain.CreateSubmissionRequest) (*domain.Submission, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "SubmissionService", "CreateSubmission")
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	invitation, err := s.invitationRepo.GetByID(ctx, req.InvitationID)
	if err != nil {
		return nil, err
	}

	submission := &domain.Submission{InvitationID: invitation.ID, Brand: req.Brand}
	if _, err := s.authService.AuthorizeSubmission(ctx, submission); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, submission); err != nil {
		var stateErr *domain.InvalidStateError
		if !errors.As(err, &stateErr) {
			s.logger.WithField("invitation_id", invitation.ID).WithField("error", err.Error()).Error("Failed to create submission")
		}
		tracing.MarkSpanError(ctx, err)
		return nil, err
	}

	span.AddAttributes(trace.StringAttribute("submission.id", submission.ID))
	return submission, nil
}

func (s *SubmissionService) GetSubmission(ctx context.Context, id string) (*domain.Submission, error) {
	submission, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.authService.AuthorizeSubmission(ctx, submission); err != nil {
		return nil, err
	}
	return submission, nil
}

func (s *SubmissionService) ListSubmissions(ctx context.Context, filter domain.SubmissionFilter) ([]*domain.Submission, error) {
	if _, err := s.authService.RequireStaff(ctx); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, filter)
}

// Advance only moves to the immediate successor. Confirmation goes through Confirm.
func (s *SubmissionService) Advance(ctx context.Context, id string, target domain.SubmissionStatus) (*domain.Submission, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "SubmissionService", "Advance")
	defer span.End()
	span.AddAttributes(
		trace.StringAttribute("submission.id", id),
		trace.StringAttribute("submission.target", string(target)),
	)

	submission, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user, err := s.authService.AuthorizeSubmission(ctx, submission)
	if err != nil {
		return nil, err
	}

	from := submission.Status
	if !domain.CanAdvance(from, target) {
		return nil, &domain.InvalidTransitionError{SubmissionID: id, From: from, To: target}
	}

	updated, err := s.repo.TransitionStatus(ctx, id, from, target, user.ID)
	if err != nil {
		var mismatch *domain.StatusMismatchError
		if errors.As(err, &mismatch) {
			return nil, &domain.InvalidTransitionError{
				SubmissionID: id,
				From:         domain.SubmissionStatus(mismatch.Actual),
				To:           target,
			}
		}
		tracing.MarkSpanError(ctx, err)
		return nil, err
	}

	tracing.RecordTransition(ctx, string(from), string(target))
	s.logger.WithFields(map[string]interface{}{
		"submission_id": id,
		"from":          string(from),
		"to":            string(target),
	}).Info("Submission advanced")

	return updated, nil
}

// Confirm is the staff-only last transition. Of two concurrent calls exactly
// one succeeds, so the partner is emailed once.
func (s *SubmissionService) Confirm(ctx context.Context, id string) (*domain.Submission, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "SubmissionService", "Confirm")
	defer span.End()
	span.AddAttributes(trace.StringAttribute("submission.id", id))

	staff, err := s.authService.RequireStaff(ctx)
	if err != nil {
		return nil, err
	}

	submission, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if submission.Status != domain.SubmissionStatusSubmitted {
		return nil, domain.NewInvalidStateError("submission", id, string(submission.Status), "only submitted submissions can be confirmed")
	}

	confirmed, err := s.repo.TransitionStatus(ctx, id, domain.SubmissionStatusSubmitted, domain.SubmissionStatusConfirmed, staff.ID)
	if err != nil {
		var mismatch *domain.StatusMismatchError
		if errors.As(err, &mismatch) {
			return nil, domain.NewInvalidStateError("submission", id, mismatch.Actual, "only submitted submissions can be confirmed")
		}
		tracing.MarkSpanError(ctx, err)
		return nil, err
	}

	tracing.RecordTransition(ctx, string(domain.SubmissionStatusSubmitted), string(domain.SubmissionStatusConfirmed))
	s.notifyConfirmed(ctx, confirmed)
	return confirmed, nil
}

func (s *SubmissionService) notifyConfirmed(ctx context.Context, submission *domain.Submission) {
	invitation, err := s.invitationRepo.GetByID(ctx, submission.InvitationID)
	if err != nil {
		s.logger.WithField("submission_id", submission.ID).WithField("error", err.Error()).Error("Failed to load invitation for confirmation email")
		return
	}

	err = s.mailer.SendSubmissionConfirmed(ctx, invitation.Email, invitation.CompanyName, submission.ProductCount)
	if err != nil {
		s.logger.WithField("submission_id", submission.ID).WithField("error", err.Error()).Error("Failed to send confirmation email")
	}
}

func (s *SubmissionService) UpsertBrand(ctx context.Context, req *domain.UpsertBrandRequest) (*domain.Brand, error) {
	brand, err := req.Validate()
	if err != nil {
		return nil, err
	}

	submission, err := s.repo.GetByID(ctx, req.SubmissionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authService.AuthorizeSubmission(ctx, submission); err != nil {
		return nil, err
	}
	if !submission.Status.AcceptsProducts() {
		return nil, domain.NewInvalidStateError("submission", submission.ID, string(submission.Status), "submission can no longer be edited")
	}

	if err := s.repo.UpsertBrand(ctx, brand); err != nil {
		s.logger.WithField("submission_id", submission.ID).WithField("error", err.Error()).Error("Failed to upsert brand")
		return nil, err
	}
	return brand, nil
}
