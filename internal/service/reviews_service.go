package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	svix "github.com/standard-webhooks/standard-webhooks/libraries/go"
	"github.com/tidwall/gjson"
	"go.opencensus.io/trace"

	"github.com/greez/greez/internal/domain"
	"github.com/greez/greez/pkg/logger"
	"github.com/greez/greez/pkg/tracing"
)

const defaultReviewsProvider = "judgeme"

var (
	ErrReviewsNotConfigured = errors.New("reviews integration is not configured")
	ErrInvalidWebhook       = errors.New("invalid webhook signature")
)

type ReviewsService struct {
	repo        domain.ReviewRepository
	productRepo domain.ProductRepository
	authService domain.AuthService
	apiEndpoint string
	apiKey      string
	webhook     *svix.Webhook
	httpClient  *http.Client
	logger      logger.Logger
}

type ReviewsServiceConfig struct {
	Repository        domain.ReviewRepository
	ProductRepository domain.ProductRepository
	AuthService       domain.AuthService
	APIEndpoint       string
	APIKey            string
	// WebhookSecret is a standard-webhooks secret (whsec_...)
	WebhookSecret string
	HTTPClient    *http.Client
	Logger        logger.Logger
}

func NewReviewsService(cfg ReviewsServiceConfig) (*ReviewsService, error) {
	s := &ReviewsService{
		repo:        cfg.Repository,
		productRepo: cfg.ProductRepository,
		authService: cfg.AuthService,
		apiEndpoint: strings.TrimRight(cfg.APIEndpoint, "/"),
		apiKey:      cfg.APIKey,
		httpClient:  tracing.WrapHTTPClient(cfg.HTTPClient),
		logger:      cfg.Logger,
	}
	if cfg.WebhookSecret != "" {
		wh, err := svix.NewWebhook(cfg.WebhookSecret)
		if err != nil {
			return nil, fmt.Errorf("failed to create webhook verifier: %w", err)
		}
		s.webhook = wh
	}
	return s, nil
}

var _ domain.ReviewsService = (*ReviewsService)(nil)

// Status pings the provider's shop endpoint with the configured key
func (s *ReviewsService) Status(ctx context.Context) (*domain.ReviewsIntegrationStatus, error) {
	if _, err := s.authService.RequireStaff(ctx); err != nil {
		return nil, err
	}

	status := &domain.ReviewsIntegrationStatus{
		Configured: s.apiEndpoint != "" && s.apiKey != "",
		Provider:   defaultReviewsProvider,
	}
	if !status.Configured {
		return status, nil
	}

	ctx, span := tracing.StartServiceSpan(ctx, "ReviewsService", "Status")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiEndpoint+"/shop", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		tracing.MarkSpanError(ctx, err)
		status.Error = err.Error()
		return status, nil
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		status.Error = err.Error()
		return status, nil
	}

	if resp.StatusCode != http.StatusOK {
		status.Error = fmt.Sprintf("provider returned status %d", resp.StatusCode)
		if msg := gjson.GetBytes(raw, "error"); msg.Exists() {
			status.Error += ": " + msg.String()
		}
		return status, nil
	}

	status.Connected = true
	status.ShopName = gjson.GetBytes(raw, "shop.name").String()
	if p := gjson.GetBytes(raw, "shop.provider").String(); p != "" {
		status.Provider = p
	}
	span.AddAttributes(trace.BoolAttribute("connected", true))
	return status, nil
}

// HandleWebhook verifies the event signature and stores the review summary it
// carries. Events for products that were never published are acknowledged and
// dropped.
func (s *ReviewsService) HandleWebhook(ctx context.Context, payload []byte, headers http.Header) error {
	if s.webhook == nil {
		return ErrReviewsNotConfigured
	}
	if err := s.webhook.Verify(payload, headers); err != nil {
		s.logger.WithField("error", err.Error()).Warn("Rejected reviews webhook")
		return ErrInvalidWebhook
	}

	if !gjson.ValidBytes(payload) {
		return domain.NewValidationError("webhook payload is not valid JSON")
	}

	data := gjson.GetBytes(payload, "data")
	externalID := data.Get("product_external_id").String()
	if externalID == "" {
		return domain.NewValidationError("product_external_id is required")
	}
	rating := data.Get("rating").Float()
	if rating < 0 || rating > 5 {
		return domain.NewValidationError("rating must be between 0 and 5")
	}
	count := data.Get("count").Int()
	if count < 0 {
		return domain.NewValidationError("count must not be negative")
	}
	provider := data.Get("provider").String()
	if provider == "" {
		provider = defaultReviewsProvider
	}

	product, err := s.productRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		if domain.IsNotFound(err) {
			s.logger.WithField("external_id", externalID).Info("Ignoring review event for unknown product")
			return nil
		}
		return err
	}

	summary := &domain.ReviewSummary{
		ProductID: product.ID,
		Provider:  provider,
		Rating:    rating,
		Count:     int(count),
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.repo.Upsert(ctx, summary); err != nil {
		s.logger.WithField("product_id", product.ID).WithField("error", err.Error()).Error("Failed to store review summary")
		return err
	}
	return nil
}

func (s *ReviewsService) ListForProduct(ctx context.Context, productID string) ([]*domain.ReviewSummary, error) {
	if _, err := s.authService.AuthenticateUserFromContext(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListByProductID(ctx, productID)
}
