package service

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greez/greez/internal/domain"
	"github.com/greez/greez/internal/domain/mocks"
	pkgmocks "github.com/greez/greez/pkg/mocks"
)

type submissionTestDeps struct {
	repo           *mocks.MockSubmissionRepository
	invitationRepo *mocks.MockInvitationRepository
	authService    *mocks.MockAuthService
	mailer         *pkgmocks.MockMailer
}

func setupSubmissionTest(t *testing.T) (*submissionTestDeps, *SubmissionService) {
	ctrl := gomock.NewController(t)
	deps := &submissionTestDeps{
		repo:           mocks.NewMockSubmissionRepository(ctrl),
		invitationRepo: mocks.NewMockInvitationRepository(ctrl),
		authService:    mocks.NewMockAuthService(ctrl),
		mailer:         pkgmocks.NewMockMailer(ctrl),
	}
	svc := NewSubmissionService(deps.repo, deps.invitationRepo, deps.authService, deps.mailer, newQuietLogger(ctrl))
	return deps, svc
}

func TestSubmissionService_CreateSubmission(t *testing.T) {
	ctx := context.Background()
	partner := partnerUser("inv-1")

	t.Run("success", func(t *testing.T) {
		deps, svc := setupSubmissionTest(t)
		deps.invitationRepo.EXPECT().GetByID(gomock.Any(), "inv-1").Return(testInvitation(), nil)
		deps.authService.EXPECT().AuthorizeSubmission(gomock.Any(), gomock.Any()).Return(partner, nil)
		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, s *domain.Submission) error {
			assert.Equal(t, "inv-1", s.InvitationID)
			s.ID = "sub-1"
			s.Status = domain.SubmissionStatusInitial
			return nil
		})

		sub, err := svc.CreateSubmission(ctx, &domain.CreateSubmissionRequest{
			InvitationID: "inv-1",
			Brand:        &domain.Brand{Name: "Acme", ContactEmail: "jane@acme.test"},
		})
		require.NoError(t, err)
		assert.Equal(t, domain.SubmissionStatusStep1Completed, sub.Status)
	})

	t.Run("second submission for an invitation", func(t *testing.T) {
		deps, svc := setupSubmissionTest(t)
		deps.invitationRepo.EXPECT().GetByID(gomock.Any(), "inv-1").Return(testInvitation(), nil)
		deps.authService.EXPECT().AuthorizeSubmission(gomock.Any(), gomock.Any()).Return(partner, nil)
		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(domain.NewInvalidStateError("invitation", "inv-1", "in_use", "a submission already exists"))

		_, err := svc.CreateSubmission(ctx, &domain.CreateSubmissionRequest{InvitationID: "inv-1"})
		var stateErr *domain.InvalidStateError
		assert.ErrorAs(t, err, &stateErr)
	})

	t.Run("another partner's invitation", func(t *testing.T) {
		deps, svc := setupSubmissionTest(t)
		deps.invitationRepo.EXPECT().GetByID(gomock.Any(), "inv-2").Return(&domain.Invitation{ID: "inv-2"}, nil)
		deps.authService.EXPECT().AuthorizeSubmission(gomock.Any(), gomock.Any()).Return(nil, domain.NewPermissionError("submission belongs to another partner"))

		_, err := svc.CreateSubmission(ctx, &domain.CreateSubmissionRequest{InvitationID: "inv-2"})
		var permErr *domain.PermissionError
		assert.ErrorAs(t, err, &permErr)
	})

	t.Run("invalid brand", func(t *testing.T) {
		_, svc := setupSubmissionTest(t)
		_, err := svc.CreateSubmission(ctx, &domain.CreateSubmissionRequest{InvitationID: "inv-1", Brand: &domain.Brand{Name: "Acme"}})
		assert.True(t, domain.IsValidation(err))
	})
}

func TestSubmissionService_Advance(t *testing.T) {
	ctx := context.Background()
	partner := partnerUser("inv-1")

	t.Run("one step forward", func(t *testing.T) {
		deps, svc := setupSubmissionTest(t)
		deps.repo.EXPECT().GetByID(gomock.Any(), "sub-1").Return(testSubmission("sub-1", "inv-1", domain.SubmissionStatusStep1Completed), nil)
		deps.authService.EXPECT().AuthorizeSubmission(gomock.Any(), gomock.Any()).Return(partner, nil)
		deps.repo.EXPECT().TransitionStatus(gomock.Any(), "sub-1", domain.SubmissionStatusStep1Completed, domain.SubmissionStatusStep2InProgress, partner.ID).
			Return(testSubmission("sub-1", "inv-1", domain.SubmissionStatusStep2InProgress), nil)

		sub, err := svc.Advance(ctx, "sub-1", domain.SubmissionStatusStep2InProgress)
		require.NoError(t, err)
		assert.Equal(t, domain.SubmissionStatusStep2InProgress, sub.Status)
	})

	tests := []struct {
		name   string
		from   domain.SubmissionStatus
		target domain.SubmissionStatus
	}{
		{"skipping a step", domain.SubmissionStatusStep1Completed, domain.SubmissionStatusStep2Completed},
		{"going backwards", domain.SubmissionStatusStep2Completed, domain.SubmissionStatusStep1Completed},
		{"same status", domain.SubmissionStatusStep2InProgress, domain.SubmissionStatusStep2InProgress},
		{"partner confirming", domain.SubmissionStatusSubmitted, domain.SubmissionStatusConfirmed},
		{"from terminal", domain.SubmissionStatusConfirmed, domain.SubmissionStatusSubmitted},
		{"unknown target", domain.SubmissionStatusStep1Completed, domain.SubmissionStatus("archived")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps, svc := setupSubmissionTest(t)
			deps.repo.EXPECT().GetByID(gomock.Any(), "sub-1").Return(testSubmission("sub-1", "inv-1", tt.from), nil)
			deps.authService.EXPECT().AuthorizeSubmission(gomock.Any(), gomock.Any()).Return(partner, nil)

			_, err := svc.Advance(ctx, "sub-1", tt.target)
			var transErr *domain.InvalidTransitionError
			require.ErrorAs(t, err, &transErr)
			assert.Equal(t, tt.from, transErr.From)
			assert.Equal(t, tt.target, transErr.To)
		})
	}

	t.Run("concurrent change reports the actual status", func(t *testing.T) {
		deps, svc := setupSubmissionTest(t)
		deps.repo.EXPECT().GetByID(gomock.Any(), "sub-1").Return(testSubmission("sub-1", "inv-1", domain.SubmissionStatusStep1Completed), nil)
		deps.authService.EXPECT().AuthorizeSubmission(gomock.Any(), gomock.Any()).Return(partner, nil)
		deps.repo.EXPECT().TransitionStatus(gomock.Any(), "sub-1", gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, &domain.StatusMismatchError{ID: "sub-1", Expected: "step1_completed", Actual: "step2_in_progress"})

		_, err := svc.Advance(ctx, "sub-1", domain.SubmissionStatusStep2InProgress)
		var transErr *domain.InvalidTransitionError
		require.ErrorAs(t, err, &transErr)
		assert.Equal(t, domain.SubmissionStatusStep2InProgress, transErr.From)
	})
}

func TestSubmissionService_Confirm(t *testing.T) {
	ctx := context.Background()
	staff := staffUser()

	t.Run("confirms and notifies the partner", func(t *testing.T) {
		deps, svc := setupSubmissionTest(t)
		confirmed := testSubmission("sub-1", "inv-1", domain.SubmissionStatusConfirmed)
		confirmed.ProductCount = 3

		deps.authService.EXPECT().RequireStaff(gomock.Any()).Return(staff, nil)
		deps.repo.EXPECT().GetByID(gomock.Any(), "sub-1").Return(testSubmission("sub-1", "inv-1", domain.SubmissionStatusSubmitted), nil)
		deps.repo.EXPECT().TransitionStatus(gomock.Any(), "sub-1", domain.SubmissionStatusSubmitted, domain.SubmissionStatusConfirmed, staff.ID).Return(confirmed, nil)
		deps.invitationRepo.EXPECT().GetByID(gomock.Any(), "inv-1").Return(testInvitation(), nil)
		deps.mailer.EXPECT().SendSubmissionConfirmed(gomock.Any(), "jane@acme.test", "Acme", 3).Return(nil)

		sub, err := svc.Confirm(ctx, "sub-1")
		require.NoError(t, err)
		assert.Equal(t, domain.SubmissionStatusConfirmed, sub.Status)
	})

	t.Run("email failure does not fail the confirmation", func(t *testing.T) {
		deps, svc := setupSubmissionTest(t)
		deps.authService.EXPECT().RequireStaff(gomock.Any()).Return(staff, nil)
		deps.repo.EXPECT().GetByID(gomock.Any(), "sub-1").Return(testSubmission("sub-1", "inv-1", domain.SubmissionStatusSubmitted), nil)
		deps.repo.EXPECT().TransitionStatus(gomock.Any(), "sub-1", gomock.Any(), gomock.Any(), gomock.Any()).
			Return(testSubmission("sub-1", "inv-1", domain.SubmissionStatusConfirmed), nil)
		deps.invitationRepo.EXPECT().GetByID(gomock.Any(), "inv-1").Return(testInvitation(), nil)
		deps.mailer.EXPECT().SendSubmissionConfirmed(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("smtp down"))

		_, err := svc.Confirm(ctx, "sub-1")
		assert.NoError(t, err)
	})

	t.Run("not submitted yet", func(t *testing.T) {
		deps, svc := setupSubmissionTest(t)
		deps.authService.EXPECT().RequireStaff(gomock.Any()).Return(staff, nil)
		deps.repo.EXPECT().GetByID(gomock.Any(), "sub-1").Return(testSubmission("sub-1", "inv-1", domain.SubmissionStatusStep2Completed), nil)

		_, err := svc.Confirm(ctx, "sub-1")
		var stateErr *domain.InvalidStateError
		require.ErrorAs(t, err, &stateErr)
		assert.Equal(t, "step2_completed", stateErr.State)
	})

	t.Run("lost the race to another confirm", func(t *testing.T) {
		deps, svc := setupSubmissionTest(t)
		deps.authService.EXPECT().RequireStaff(gomock.Any()).Return(staff, nil)
		deps.repo.EXPECT().GetByID(gomock.Any(), "sub-1").Return(testSubmission("sub-1", "inv-1", domain.SubmissionStatusSubmitted), nil)
		deps.repo.EXPECT().TransitionStatus(gomock.Any(), "sub-1", gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, &domain.StatusMismatchError{ID: "sub-1", Expected: "submitted", Actual: "confirmed"})

		_, err := svc.Confirm(ctx, "sub-1")
		var stateErr *domain.InvalidStateError
		require.ErrorAs(t, err, &stateErr)
		assert.Equal(t, "confirmed", stateErr.State)
	})

	t.Run("partners cannot confirm", func(t *testing.T) {
		deps, svc := setupSubmissionTest(t)
		deps.authService.EXPECT().RequireStaff(gomock.Any()).Return(nil, domain.ErrStaffOnly)

		_, err := svc.Confirm(ctx, "sub-1")
		assert.ErrorIs(t, err, domain.ErrStaffOnly)
	})
}

func TestSubmissionService_UpsertBrand(t *testing.T) {
	ctx := context.Background()
	req := &domain.UpsertBrandRequest{SubmissionID: "sub-1", Name: "Acme", ContactEmail: "jane@acme.test"}

	t.Run("open submission", func(t *testing.T) {
		deps, svc := setupSubmissionTest(t)
		deps.repo.EXPECT().GetByID(gomock.Any(), "sub-1").Return(testSubmission("sub-1", "inv-1", domain.SubmissionStatusStep2InProgress), nil)
		deps.authService.EXPECT().AuthorizeSubmission(gomock.Any(), gomock.Any()).Return(partnerUser("inv-1"), nil)
		deps.repo.EXPECT().UpsertBrand(gomock.Any(), gomock.Any()).Return(nil)

		brand, err := svc.UpsertBrand(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "Acme", brand.Name)
	})

	t.Run("submitted submission", func(t *testing.T) {
		deps, svc := setupSubmissionTest(t)
		deps.repo.EXPECT().GetByID(gomock.Any(), "sub-1").Return(testSubmission("sub-1", "inv-1", domain.SubmissionStatusSubmitted), nil)
		deps.authService.EXPECT().AuthorizeSubmission(gomock.Any(), gomock.Any()).Return(partnerUser("inv-1"), nil)

		_, err := svc.UpsertBrand(ctx, req)
		var stateErr *domain.InvalidStateError
		assert.ErrorAs(t, err, &stateErr)
	})
}
