package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greez/greez/internal/domain"
	"github.com/greez/greez/internal/domain/mocks"
	"github.com/greez/greez/pkg/cache"
	pkgmocks "github.com/greez/greez/pkg/mocks"
)

// memStore backs the in-memory repositories. One mutex plays the role of the
// row lock and the single-statement updates of the postgres repositories.
type memStore struct {
	mu          sync.Mutex
	invitations map[string]*domain.Invitation
	submissions map[string]*domain.Submission
	products    []*domain.Product
}

func newMemStore() *memStore {
	return &memStore{
		invitations: map[string]*domain.Invitation{},
		submissions: map[string]*domain.Submission{},
	}
}

// Unimplemented methods come from the nil embedded interface and panic if called.
type memInvitationRepo struct {
	domain.InvitationRepository
	s *memStore
}

func (r *memInvitationRepo) Create(_ context.Context, inv *domain.Invitation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv.ID = uuid.New().String()
	inv.CreatedAt = time.Now().UTC()
	cp := *inv
	r.s.invitations[inv.ID] = &cp
	return nil
}

func (r *memInvitationRepo) GetByID(_ context.Context, id string) (*domain.Invitation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.invitations[id]
	if !ok {
		return nil, domain.NewNotFoundError("invitation", id)
	}
	cp := *inv
	return &cp, nil
}

type memSubmissionRepo struct {
	domain.SubmissionRepository
	s *memStore
}

func (r *memSubmissionRepo) Create(_ context.Context, sub *domain.Submission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.submissions {
		if existing.InvitationID == sub.InvitationID {
			return domain.NewInvalidStateError("invitation", sub.InvitationID, "submitted", "a submission already exists")
		}
	}
	now := time.Now().UTC()
	sub.ID = uuid.New().String()
	sub.Status = domain.SubmissionStatusInitial
	sub.ProductCount = 0
	sub.CreatedAt, sub.UpdatedAt = now, now
	cp := *sub
	r.s.submissions[sub.ID] = &cp
	return nil
}

func (r *memSubmissionRepo) GetByID(_ context.Context, id string) (*domain.Submission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sub, ok := r.s.submissions[id]
	if !ok {
		return nil, domain.NewNotFoundError("submission", id)
	}
	cp := *sub
	return &cp, nil
}

func (r *memSubmissionRepo) TransitionStatus(_ context.Context, id string, from, to domain.SubmissionStatus, actorID string) (*domain.Submission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sub, ok := r.s.submissions[id]
	if !ok {
		return nil, domain.NewNotFoundError("submission", id)
	}
	if sub.Status != from {
		return nil, &domain.StatusMismatchError{ID: id, Expected: string(from), Actual: string(sub.Status)}
	}
	now := time.Now().UTC()
	sub.Status = to
	sub.UpdatedAt = now
	switch to {
	case domain.SubmissionStatusSubmitted:
		sub.SubmittedAt = &now
	case domain.SubmissionStatusConfirmed:
		sub.ConfirmedAt = &now
		sub.ConfirmedBy = &actorID
	}
	cp := *sub
	return &cp, nil
}

type memProductRepo struct {
	domain.ProductRepository
	s *memStore
}

func (r *memProductRepo) AddToSubmission(_ context.Context, p *domain.Product, maxProducts int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sub, ok := r.s.submissions[p.SubmissionID]
	if !ok {
		return domain.NewNotFoundError("submission", p.SubmissionID)
	}
	if !sub.Status.AcceptsProducts() {
		return domain.NewInvalidStateError("submission", sub.ID, string(sub.Status), "no longer accepts products")
	}
	if maxProducts > 0 && sub.ProductCount >= maxProducts {
		return domain.NewInvalidStateError("submission", sub.ID, "full", fmt.Sprintf("product limit of %d reached", maxProducts))
	}
	p.ID = uuid.New().String()
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	r.s.products = append(r.s.products, &cp)
	sub.ProductCount++
	return nil
}

func (r *memProductRepo) ListBySubmission(_ context.Context, submissionID string) ([]*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Product
	for _, p := range r.s.products {
		if p.SubmissionID == submissionID {
			cp := *p
			out = append(out, &cp)
		}
	}
	// ties keep insertion order
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

type workflowHarness struct {
	mailer      *pkgmocks.MockMailer
	invitations *InvitationService
	submissions *SubmissionService
	products    *ProductService
}

func newWorkflowHarness(t *testing.T, maxProducts int) *workflowHarness {
	ctrl := gomock.NewController(t)
	store := newMemStore()
	invitationRepo := &memInvitationRepo{s: store}
	submissionRepo := &memSubmissionRepo{s: store}
	productRepo := &memProductRepo{s: store}

	auth := mocks.NewMockAuthService(ctrl)
	auth.EXPECT().RequireStaff(gomock.Any()).Return(staffUser(), nil).AnyTimes()
	auth.EXPECT().AuthorizeSubmission(gomock.Any(), gomock.Any()).Return(staffUser(), nil).AnyTimes()

	mailer := pkgmocks.NewMockMailer(ctrl)
	tokenCache := cache.NewInMemoryCache(time.Minute)
	t.Cleanup(func() { _ = tokenCache.Close() })
	log := newQuietLogger(ctrl)

	return &workflowHarness{
		mailer: mailer,
		invitations: NewInvitationService(InvitationServiceConfig{
			Repository:           invitationRepo,
			SubmissionRepository: submissionRepo,
			AuthService:          auth,
			Mailer:               mailer,
			Cache:                tokenCache,
			CacheTTL:             time.Minute,
			Logger:               log,
		}),
		submissions: NewSubmissionService(submissionRepo, invitationRepo, auth, mailer, log),
		products:    NewProductService(productRepo, submissionRepo, auth, maxProducts, log),
	}
}

func (h *workflowHarness) invite(t *testing.T, company, email string) *domain.Invitation {
	h.mailer.EXPECT().SendPartnerInvitation(gomock.Any(), email, company, gomock.Any(), gomock.Any()).Return(nil)
	resp, err := h.invitations.Create(context.Background(), &domain.CreateInvitationRequest{CompanyName: company, Email: email})
	require.NoError(t, err)
	return resp.Invitation
}

func TestWorkflow_InviteToConfirmation(t *testing.T) {
	ctx := context.Background()
	h := newWorkflowHarness(t, 0)

	inv := h.invite(t, "Acme", "a@acme.com")
	require.NotEmpty(t, inv.Token)

	sub, err := h.submissions.CreateSubmission(ctx, &domain.CreateSubmissionRequest{InvitationID: inv.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.SubmissionStatusStep1Completed, sub.Status)

	for _, name := range []string{"Widget", "Gadget"} {
		_, err := h.products.AddProduct(ctx, &domain.AddProductRequest{
			SubmissionID: sub.ID,
			ProductInput: domain.ProductInput{Name: name, Description: name + " description", Price: floatPtr(12.5)},
		})
		require.NoError(t, err)
	}

	sub, err = h.submissions.GetSubmission(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, sub.ProductCount)

	listed, err := h.products.ListBySubmission(ctx, sub.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "Widget", listed[0].Name)

	_, err = h.submissions.Confirm(ctx, sub.ID)
	var stateErr *domain.InvalidStateError
	assert.ErrorAs(t, err, &stateErr)

	_, err = h.submissions.Advance(ctx, sub.ID, domain.SubmissionStatusStep2Completed)
	var transitionErr *domain.InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, domain.SubmissionStatusStep1Completed, transitionErr.From)

	for _, target := range []domain.SubmissionStatus{
		domain.SubmissionStatusStep2InProgress,
		domain.SubmissionStatusStep2Completed,
		domain.SubmissionStatusSubmitted,
	} {
		sub, err = h.submissions.Advance(ctx, sub.ID, target)
		require.NoError(t, err)
		assert.Equal(t, target, sub.Status)
	}
	assert.NotNil(t, sub.SubmittedAt)

	_, err = h.products.AddProduct(ctx, &domain.AddProductRequest{
		SubmissionID: sub.ID,
		ProductInput: domain.ProductInput{Name: "Late", Price: floatPtr(1)},
	})
	assert.ErrorAs(t, err, &stateErr)

	_, err = h.submissions.Advance(ctx, sub.ID, domain.SubmissionStatusConfirmed)
	assert.ErrorAs(t, err, &transitionErr)

	h.mailer.EXPECT().SendSubmissionConfirmed(gomock.Any(), "a@acme.com", "Acme", 2).Return(nil).Times(1)
	sub, err = h.submissions.Confirm(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SubmissionStatusConfirmed, sub.Status)
	require.NotNil(t, sub.ConfirmedBy)
	assert.Equal(t, "staff-1", *sub.ConfirmedBy)
}

func TestWorkflow_ConcurrentAddsKeepProductCount(t *testing.T) {
	ctx := context.Background()
	h := newWorkflowHarness(t, 0)

	inv := h.invite(t, "Acme", "a@acme.com")
	sub, err := h.submissions.CreateSubmission(ctx, &domain.CreateSubmissionRequest{InvitationID: inv.ID})
	require.NoError(t, err)

	const adds = 25
	var wg sync.WaitGroup
	errs := make(chan error, adds)
	for i := 0; i < adds; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := h.products.AddProduct(ctx, &domain.AddProductRequest{
				SubmissionID: sub.ID,
				ProductInput: domain.ProductInput{Name: fmt.Sprintf("Product %d", i), Price: floatPtr(5)},
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	sub, err = h.submissions.GetSubmission(ctx, sub.ID)
	require.NoError(t, err)
	listed, err := h.products.ListBySubmission(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, adds, sub.ProductCount)
	assert.Len(t, listed, sub.ProductCount)
}

func TestWorkflow_ConcurrentConfirmEmailsOnce(t *testing.T) {
	ctx := context.Background()
	h := newWorkflowHarness(t, 0)

	inv := h.invite(t, "Acme", "a@acme.com")
	sub, err := h.submissions.CreateSubmission(ctx, &domain.CreateSubmissionRequest{InvitationID: inv.ID})
	require.NoError(t, err)
	for _, target := range []domain.SubmissionStatus{
		domain.SubmissionStatusStep2InProgress,
		domain.SubmissionStatusStep2Completed,
		domain.SubmissionStatusSubmitted,
	} {
		_, err = h.submissions.Advance(ctx, sub.ID, target)
		require.NoError(t, err)
	}

	h.mailer.EXPECT().SendSubmissionConfirmed(gomock.Any(), "a@acme.com", "Acme", 0).Return(nil).Times(1)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = h.submissions.Confirm(ctx, sub.ID)
		}(i)
	}
	wg.Wait()

	failures := 0
	for _, err := range results {
		if err != nil {
			failures++
			var stateErr *domain.InvalidStateError
			assert.ErrorAs(t, err, &stateErr)
		}
	}
	assert.Equal(t, 1, failures)
}
