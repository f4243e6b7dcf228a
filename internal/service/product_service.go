package service

import (
	"context"
	"errors"

	"go.opencensus.io/trace"

	"github.com/greez/greez/internal/domain"
	"github.com/greez/greez/pkg/logger"
	"github.com/greez/greez/pkg/tracing"
)

type ProductService struct {
	repo           domain.ProductRepository
	submissionRepo domain.SubmissionRepository
	authService    domain.AuthService
	maxProducts    int
	logger         logger.Logger
}

func NewProductService(
	repo domain.ProductRepository,
	submissionRepo domain.SubmissionRepository,
	authService domain.AuthService,
	maxProducts int,
	logger logger.Logger,
) *ProductService {
	return &ProductService{
		repo:           repo,
		submissionRepo: submissionRepo,
		authService:    authService,
		maxProducts:    maxProducts,
		logger:         logger,
	}
}

var _ domain.ProductService = (*ProductService)(nil)

// AddProduct validates the input, then leaves the status check and the
// counter increment to a single locked transaction in the repository
func (s *ProductService) AddProduct(ctx context.Context, req *domain.AddProductRequest) (*domain.Product, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "ProductService", "AddProduct")
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.authorizedSubmission(ctx, req.SubmissionID); err != nil {
		return nil, err
	}

	product := domain.NewProduct("", req.SubmissionID, req.ProductInput)
	if err := s.repo.AddToSubmission(ctx, product, s.maxProducts); err != nil {
		var stateErr *domain.InvalidStateError
		if !errors.As(err, &stateErr) && !domain.IsNotFound(err) {
			s.logger.WithField("submission_id", req.SubmissionID).WithField("error", err.Error()).Error("Failed to add product")
		}
		tracing.MarkSpanError(ctx, err)
		return nil, err
	}

	span.AddAttributes(trace.StringAttribute("product.id", product.ID))
	return product, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, req *domain.UpdateProductRequest) (*domain.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	product, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorizedSubmission(ctx, product.SubmissionID); err != nil {
		return nil, err
	}

	edited := domain.NewProduct(product.ID, product.SubmissionID, req.ProductInput)
	product.Name = edited.Name
	product.Description = edited.Description
	product.Price = edited.Price
	product.SKU = edited.SKU
	product.Images = edited.Images
	product.RawData = edited.RawData

	if err := s.repo.UpdateContent(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorizedSubmission(ctx, product.SubmissionID); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) ListBySubmission(ctx context.Context, submissionID string) ([]*domain.Product, error) {
	if _, err := s.authorizedSubmission(ctx, submissionID); err != nil {
		return nil, err
	}
	return s.repo.ListBySubmission(ctx, submissionID)
}

func (s *ProductService) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	if _, err := s.authService.RequireStaff(ctx); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, filter)
}

func (s *ProductService) authorizedSubmission(ctx context.Context, submissionID string) (*domain.Submission, error) {
	submission, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authService.AuthorizeSubmission(ctx, submission); err != nil {
		return nil, err
	}
	return submission, nil
}
