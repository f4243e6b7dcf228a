package service

import (
	"context"

	"go.opencensus.io/trace"
	"golang.org/x/sync/errgroup"

	"github.com/greez/greez/internal/domain"
	"github.com/greez/greez/pkg/logger"
	"github.com/greez/greez/pkg/tracing"
)

const defaultBulkConcurrency = 4

type ApprovalService struct {
	productRepo     domain.ProductRepository
	submissionRepo  domain.SubmissionRepository
	publication     domain.PublicationService
	authService     domain.AuthService
	bulkConcurrency int
	logger          logger.Logger
}

type ApprovalServiceConfig struct {
	ProductRepository    domain.ProductRepository
	SubmissionRepository domain.SubmissionRepository
	PublicationService   domain.PublicationService
	AuthService          domain.AuthService
	BulkConcurrency      int
	Logger               logger.Logger
}

func NewApprovalService(cfg ApprovalServiceConfig) *ApprovalService {
	concurrency := cfg.BulkConcurrency
	if concurrency <= 0 {
		concurrency = defaultBulkConcurrency
	}
	return &ApprovalService{
		productRepo:     cfg.ProductRepository,
		submissionRepo:  cfg.SubmissionRepository,
		publication:     cfg.PublicationService,
		authService:     cfg.AuthService,
		bulkConcurrency: concurrency,
		logger:          cfg.Logger,
	}
}

var _ domain.ApprovalService = (*ApprovalService)(nil)

// Approve is idempotent
func (s *ApprovalService) Approve(ctx context.Context, productID string) (*domain.Product, error) {
	return s.setApproval(ctx, productID, domain.ApprovalStatusApproved)
}

// Reject is idempotent. Exported products cannot be rejected.
func (s *ApprovalService) Reject(ctx context.Context, productID string) (*domain.Product, error) {
	return s.setApproval(ctx, productID, domain.ApprovalStatusRejected)
}

func (s *ApprovalService) setApproval(ctx context.Context, productID string, status domain.ApprovalStatus) (*domain.Product, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "ApprovalService", "SetApproval")
	defer span.End()
	span.AddAttributes(
		trace.StringAttribute("product.id", productID),
		trace.StringAttribute("approval.status", string(status)),
	)

	product, err := s.reviewableProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.ApprovalStatus == status {
		return product, nil
	}

	updated, err := s.productRepo.SetApprovalStatus(ctx, productID, status)
	if err != nil {
		tracing.MarkSpanError(ctx, err)
		return nil, err
	}

	s.logger.WithField("product_id", productID).WithField("approval_status", string(status)).Info("Product approval updated")
	return updated, nil
}

func (s *ApprovalService) Publish(ctx context.Context, productID string) (*domain.Product, error) {
	product, err := s.reviewableProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.ApprovalStatus != domain.ApprovalStatusApproved {
		return nil, domain.NewInvalidStateError("product", productID, string(product.ApprovalStatus), "product must be approved before publishing")
	}
	return s.publication.PublishToStore(ctx, product)
}

// PublishSubmission publishes the approved, unexported products of a
// submission with bounded concurrency. Individual failures are reported in
// the results and do not stop the others.
func (s *ApprovalService) PublishSubmission(ctx context.Context, submissionID string) ([]domain.PublishResult, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "ApprovalService", "PublishSubmission")
	defer span.End()
	span.AddAttributes(trace.StringAttribute("submission.id", submissionID))

	if _, err := s.authService.RequireStaff(ctx); err != nil {
		return nil, err
	}

	submission, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if !submission.Status.IsReviewable() {
		return nil, domain.NewInvalidStateError("submission", submissionID, string(submission.Status), "submission has not been submitted")
	}

	products, err := s.productRepo.ListBySubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	var pending []*domain.Product
	for _, p := range products {
		if p.ApprovalStatus == domain.ApprovalStatusApproved && !p.Publication.Exported &&
			p.Publication.State != domain.PublicationStatePublishing {
			pending = append(pending, p)
		}
	}

	results := make([]domain.PublishResult, len(pending))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.bulkConcurrency)

	for i, product := range pending {
		g.Go(func() error {
			result := domain.PublishResult{ProductID: product.ID}

			published, err := s.publication.PublishToStore(gctx, product)
			if err != nil {
				result.Error = err.Error()
				result.ErrorKind = domain.PublicationErrorKindOf(err)
			} else if published.Publication.ExternalID != nil {
				result.ExternalID = *published.Publication.ExternalID
			}

			results[i] = result
			return nil
		})
	}

	// workers never return errors
	_ = g.Wait()

	s.logger.WithField("submission_id", submissionID).WithField("count", len(results)).Info("Bulk publication finished")
	return results, nil
}

// reviewableProduct loads a product for a staff decision. The parent
// submission must have been submitted.
func (s *ApprovalService) reviewableProduct(ctx context.Context, productID string) (*domain.Product, error) {
	if _, err := s.authService.RequireStaff(ctx); err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	submission, err := s.submissionRepo.GetByID(ctx, product.SubmissionID)
	if err != nil {
		return nil, err
	}
	if !submission.Status.IsReviewable() {
		return nil, domain.NewInvalidStateError("submission", submission.ID, string(submission.Status), "submission has not been submitted")
	}
	return product, nil
}
