package domain

import (
	"context"
	"errors"
	"fmt"
)

//go:generate mockgen -destination mocks/mock_storefront.go -package mocks github.com/greez/greez/internal/domain Storefront
//go:generate mockgen -destination mocks/mock_approval_service.go -package mocks github.com/greez/greez/internal/domain ApprovalService
//go:generate mockgen -destination mocks/mock_publication_service.go -package mocks github.com/greez/greez/internal/domain PublicationService

type PublicationErrorKind string

const (
	PublicationErrorTransient PublicationErrorKind = "transient"
	PublicationErrorPermanent PublicationErrorKind = "permanent"
)

// PublicationError is returned when the storefront rejects or cannot be
// reached for a publication
type PublicationError struct {
	Kind       PublicationErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *PublicationError) Error() string {
	msg := e.Message
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg += ": " + e.Err.Error()
		}
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("publication failed (%s, status %d): %s", e.Kind, e.StatusCode, msg)
	}
	return fmt.Sprintf("publication failed (%s): %s", e.Kind, msg)
}

func (e *PublicationError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether retrying later may succeed
func (e *PublicationError) IsTransient() bool {
	return e.Kind == PublicationErrorTransient
}

// PublicationErrorKindOf returns the kind of a wrapped PublicationError, or ""
func PublicationErrorKindOf(err error) PublicationErrorKind {
	var pe *PublicationError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// PublicationErrorForStatus classifies a storefront HTTP status
func PublicationErrorForStatus(status int, message string) *PublicationError {
	kind := PublicationErrorPermanent
	if status == 429 || status >= 500 {
		kind = PublicationErrorTransient
	}
	return &PublicationError{Kind: kind, StatusCode: status, Message: message}
}

// StorefrontProduct is the storefront-facing projection of a product
type StorefrontProduct struct {
	Title       string
	BodyHTML    string
	Vendor      string
	ProductType string
	SKU         string
	Price       float64
	Images      []string
	Tags        []string
}

// NewStorefrontProduct projects a product and its brand for the storefront
func NewStorefrontProduct(p *Product, brand *Brand) *StorefrontProduct {
	body := p.Description
	if p.GeneratedContent != nil && *p.GeneratedContent != "" {
		body = *p.GeneratedContent
	}
	sp := &StorefrontProduct{
		Title:    p.Name,
		BodyHTML: body,
		Price:    p.Price,
		Images:   append([]string(nil), p.Images...),
		Tags:     []string{"greez"},
	}
	if p.SKU != nil {
		sp.SKU = *p.SKU
	}
	if brand != nil {
		sp.Vendor = brand.Name
	}
	if v, ok := p.RawData["product_type"].(string); ok {
		sp.ProductType = v
	}
	return sp
}

// Storefront is the external commerce platform products are published to
type Storefront interface {
	// CreateProduct creates a product and returns its storefront id
	CreateProduct(ctx context.Context, product *StorefrontProduct) (string, error)

	// UpdateProduct replaces the storefront product identified by externalID
	UpdateProduct(ctx context.Context, externalID string, product *StorefrontProduct) error
}

// PublicationService is the Publication Adapter
type PublicationService interface {
	// PublishToStore claims an approved product, pushes it to the storefront
	// and records the outcome
	PublishToStore(ctx context.Context, product *Product) (*Product, error)
}

// PublishResult is the per-product outcome of a bulk publish
type PublishResult struct {
	ProductID  string               `json:"product_id"`
	ExternalID string               `json:"external_id,omitempty"`
	Error      string               `json:"error,omitempty"`
	ErrorKind  PublicationErrorKind `json:"error_kind,omitempty"`
}

// ApprovalService is the Approval Gate
type ApprovalService interface {
	Approve(ctx context.Context, productID string) (*Product, error)
	Reject(ctx context.Context, productID string) (*Product, error)
	Publish(ctx context.Context, productID string) (*Product, error)

	// PublishSubmission publishes every approved, unexported product of a submission
	PublishSubmission(ctx context.Context, submissionID string) ([]PublishResult, error)
}
