package domain

import (
	"context"
	"net/http"
	"time"
)

//go:generate mockgen -destination mocks/mock_review_repository.go -package mocks github.com/greez/greez/internal/domain ReviewRepository
//go:generate mockgen -destination mocks/mock_reviews_service.go -package mocks github.com/greez/greez/internal/domain ReviewsService

// ReviewSummary aggregates storefront reviews of a published product
type ReviewSummary struct {
	ProductID string    `json:"product_id"`
	Provider  string    `json:"provider"`
	Rating    float64   `json:"rating"`
	Count     int       `json:"count"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReviewsIntegrationStatus describes the reviews provider connection
type ReviewsIntegrationStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Provider   string `json:"provider,omitempty"`
	ShopName   string `json:"shop_name,omitempty"`
	Error      string `json:"error,omitempty"`
}

type ReviewsService interface {
	// Status checks the reviews provider credentials. Staff only.
	Status(ctx context.Context) (*ReviewsIntegrationStatus, error)

	// HandleWebhook verifies a signed provider event and upserts the summary
	HandleWebhook(ctx context.Context, payload []byte, headers http.Header) error

	// ListForProduct returns the review summaries of a product
	ListForProduct(ctx context.Context, productID string) ([]*ReviewSummary, error)
}

type ReviewRepository interface {
	Upsert(ctx context.Context, summary *ReviewSummary) error
	ListByProductID(ctx context.Context, productID string) ([]*ReviewSummary, error)
}
