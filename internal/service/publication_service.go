package service

import (
	"context"
	"errors"
	"net"
	"time"

	"go.opencensus.io/trace"

	"github.com/greez/greez/internal/domain"
	"github.com/greez/greez/pkg/logger"
	"github.com/greez/greez/pkg/tracing"
)

const (
	// recordTimeout bounds the bookkeeping writes that follow a storefront call.
	// They run detached from the request so a timed-out call is still recorded.
	recordTimeout = 10 * time.Second

	recordAttempts       = 3
	defaultClaimTTL      = 5 * time.Minute
	defaultRecordBackoff = 200 * time.Millisecond
)

type PublicationService struct {
	productRepo    domain.ProductRepository
	submissionRepo domain.SubmissionRepository
	storefront     domain.Storefront
	claimTTL       time.Duration
	recordBackoff  time.Duration
	logger         logger.Logger
}

// NewPublicationService creates the publication adapter. claimTTL is how long
// a publishing claim is honoured before another caller may take it over.
func NewPublicationService(
	productRepo domain.ProductRepository,
	submissionRepo domain.SubmissionRepository,
	storefront domain.Storefront,
	claimTTL time.Duration,
	logger logger.Logger,
) *PublicationService {
	if claimTTL <= 0 {
		claimTTL = defaultClaimTTL
	}
	return &PublicationService{
		productRepo:    productRepo,
		submissionRepo: submissionRepo,
		storefront:     storefront,
		claimTTL:       claimTTL,
		recordBackoff:  defaultRecordBackoff,
		logger:         logger,
	}
}

var _ domain.PublicationService = (*PublicationService)(nil)

// PublishToStore claims the product, creates it in the storefront (or updates
// it when a storefront id is already known) and records the outcome. Errors
// from the storefront are returned as *domain.PublicationError and never
// retried here.
func (s *PublicationService) PublishToStore(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "PublicationService", "PublishToStore")
	defer span.End()
	span.AddAttributes(trace.StringAttribute("product.id", product.ID))

	if s.storefront == nil {
		return nil, &domain.PublicationError{Kind: domain.PublicationErrorPermanent, Message: "storefront is not configured"}
	}

	claimed, err := s.productRepo.ClaimPublication(ctx, product.ID, time.Now().UTC().Add(-s.claimTTL))
	if err != nil {
		return nil, err
	}

	start := time.Now()
	externalID, err := s.push(ctx, claimed)
	elapsed := time.Since(start)

	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	if err != nil {
		pubErr := asPublicationError(err)
		tracing.RecordPublication(ctx, string(pubErr.Kind), elapsed)
		tracing.MarkSpanError(ctx, pubErr)

		s.logger.WithFields(map[string]interface{}{
			"product_id": claimed.ID,
			"kind":       string(pubErr.Kind),
			"status":     pubErr.StatusCode,
			"error":      pubErr.Error(),
		}).Warn("Storefront publication failed")

		markErr := s.record(recordCtx, func(ctx context.Context) error {
			_, err := s.productRepo.MarkPublicationFailed(ctx, claimed.ID, pubErr.Error())
			return err
		})
		if markErr != nil {
			s.logger.WithField("product_id", claimed.ID).WithField("error", markErr.Error()).Error("Failed to record publication failure")
		}
		return nil, pubErr
	}

	tracing.RecordPublication(ctx, "", elapsed)

	// The id goes in first so a claim taken over later updates this storefront
	// product instead of creating a second one.
	if claimed.Publication.ExternalID == nil {
		err := s.record(recordCtx, func(ctx context.Context) error {
			return s.productRepo.RecordExternalID(ctx, claimed.ID, externalID)
		})
		if err != nil {
			s.logger.WithField("product_id", claimed.ID).WithField("external_id", externalID).WithField("error", err.Error()).Error("Failed to record storefront id")
		}
	}

	var published *domain.Product
	err = s.record(recordCtx, func(ctx context.Context) error {
		var markErr error
		published, markErr = s.productRepo.MarkPublished(ctx, claimed.ID, externalID, time.Now().UTC())
		return markErr
	})
	if err != nil {
		s.logger.WithField("product_id", claimed.ID).WithField("external_id", externalID).WithField("error", err.Error()).Error("Storefront accepted the product but recording it failed")
		return nil, err
	}

	s.logger.WithField("product_id", published.ID).WithField("external_id", externalID).Info("Product published")
	return published, nil
}

// record retries a bookkeeping write. Domain errors mean the claim was lost
// and are returned at once.
func (s *PublicationService) record(ctx context.Context, write func(ctx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= recordAttempts; attempt++ {
		err = write(ctx)
		if err == nil {
			return nil
		}
		var stateErr *domain.InvalidStateError
		if errors.As(err, &stateErr) || attempt == recordAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(time.Duration(attempt) * s.recordBackoff):
		}
	}
	return err
}

func (s *PublicationService) push(ctx context.Context, product *domain.Product) (string, error) {
	submission, err := s.submissionRepo.GetByID(ctx, product.SubmissionID)
	if err != nil {
		return "", err
	}

	sp := domain.NewStorefrontProduct(product, submission.Brand)

	if product.Publication.ExternalID != nil {
		externalID := *product.Publication.ExternalID
		if err := s.storefront.UpdateProduct(ctx, externalID, sp); err != nil {
			return "", err
		}
		return externalID, nil
	}
	return s.storefront.CreateProduct(ctx, sp)
}

// asPublicationError keeps storefront classifications and treats timeouts
// and network failures as transient
func asPublicationError(err error) *domain.PublicationError {
	var pubErr *domain.PublicationError
	if errors.As(err, &pubErr) {
		return pubErr
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || errors.As(err, &netErr) {
		return &domain.PublicationError{Kind: domain.PublicationErrorTransient, Message: "storefront unreachable", Err: err}
	}
	return &domain.PublicationError{Kind: domain.PublicationErrorPermanent, Message: "unexpected error", Err: err}
}
