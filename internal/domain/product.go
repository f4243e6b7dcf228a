package domain

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
)

//go:generate mockgen -destination mocks/mock_product_repository.go -package mocks github.com/greez/greez/internal/domain ProductRepository
//go:generate mockgen -destination mocks/mock_product_service.go -package mocks github.com/greez/greez/internal/domain ProductService

const (
	MaxProductImages = 10
	MaxSKULength     = 64
)

type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusRejected ApprovalStatus = "rejected"
)

func (s ApprovalStatus) IsValid() bool {
	switch s {
	case ApprovalStatusPending, ApprovalStatusApproved, ApprovalStatusRejected:
		return true
	}
	return false
}

type PublicationState string

const (
	PublicationStateUnpublished PublicationState = "unpublished"
	PublicationStatePublishing  PublicationState = "publishing"
	PublicationStatePublished   PublicationState = "published"
	PublicationStateFailed      PublicationState = "failed"
)

// ClaimablePublicationStates are the states a publication may be claimed from
var ClaimablePublicationStates = []PublicationState{
	PublicationStateUnpublished,
	PublicationStateFailed,
	PublicationStatePublished,
}

// Publication tracks the storefront export of a product
type Publication struct {
	State      PublicationState `json:"state"`
	Exported   bool             `json:"exported"`
	ExportedAt *time.Time       `json:"exported_at,omitempty"`
	ExternalID *string          `json:"external_id,omitempty"`
	LastError  *string          `json:"last_error,omitempty"`
}

// Product is a partner product awaiting review or publication
type Product struct {
	ID               string         `json:"id"`
	SubmissionID     string         `json:"submission_id"`
	Name             string         `json:"name"`
	Description      string         `json:"description"`
	Price            float64        `json:"price"`
	SKU              *string        `json:"sku,omitempty"`
	Images           StringList     `json:"images"`
	GeneratedContent *string        `json:"generated_content,omitempty"`
	RawData          MapOfAny       `json:"raw_data,omitempty"`
	ApprovalStatus   ApprovalStatus `json:"approval_status"`
	Publication      Publication    `json:"publication"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// ProductColumns is the column order expected by ScanProduct
var ProductColumns = []string{
	"id", "submission_id", "name", "description", "price", "sku", "images",
	"generated_content", "raw_data", "approval_status", "publication_state",
	"exported", "exported_at", "external_id", "last_error", "created_at", "updated_at",
}

// ScanProduct scans a product row selected with ProductColumns
func ScanProduct(scanner interface {
	Scan(dest ...interface{}) error
}) (*Product, error) {
	var (
		p                Product
		sku              sql.NullString
		generatedContent sql.NullString
		approval         string
		state            string
		exportedAt       sql.NullTime
		externalID       sql.NullString
		lastError        sql.NullString
	)

	if err := scanner.Scan(
		&p.ID,
		&p.SubmissionID,
		&p.Name,
		&p.Description,
		&p.Price,
		&sku,
		&p.Images,
		&generatedContent,
		&p.RawData,
		&approval,
		&state,
		&p.Publication.Exported,
		&exportedAt,
		&externalID,
		&lastError,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	p.ApprovalStatus = ApprovalStatus(approval)
	p.Publication.State = PublicationState(state)
	if sku.Valid {
		p.SKU = &sku.String
	}
	if generatedContent.Valid {
		p.GeneratedContent = &generatedContent.String
	}
	if exportedAt.Valid {
		p.Publication.ExportedAt = &exportedAt.Time
	}
	if externalID.Valid {
		p.Publication.ExternalID = &externalID.String
	}
	if lastError.Valid {
		p.Publication.LastError = &lastError.String
	}

	return &p, nil
}

// ReservedRawDataPrefix marks raw_data keys written by publication only
const ReservedRawDataPrefix = "shopify_"

// ProductInput is the partner-editable part of a product
type ProductInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	SKU         *string  `json:"sku,omitempty"`
	Images      []string `json:"images,omitempty"`
	RawData     MapOfAny `json:"raw_data,omitempty"`
}

// Validate normalizes and validates the input
func (in *ProductInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)

	if in.Name == "" {
		return NewValidationError("name is required")
	}
	if len(in.Name) > 255 {
		return NewValidationError("name length must be between 1 and 255")
	}
	if in.Price == nil {
		return NewValidationError("price is required")
	}
	if math.IsNaN(*in.Price) || math.IsInf(*in.Price, 0) || *in.Price <= 0 {
		return NewValidationError("price must be greater than 0")
	}
	if in.SKU != nil {
		sku := strings.TrimSpace(*in.SKU)
		switch {
		case sku == "":
			in.SKU = nil
		case len(sku) > MaxSKULength:
			return NewValidationError(fmt.Sprintf("sku must be at most %d characters", MaxSKULength))
		default:
			in.SKU = &sku
		}
	}
	if len(in.Images) > MaxProductImages {
		return NewValidationError(fmt.Sprintf("a product has at most %d images", MaxProductImages))
	}
	for i, img := range in.Images {
		if !IsImageURL(img) {
			return NewValidationError(fmt.Sprintf("images[%d] is not a valid URL", i))
		}
	}
	for key := range in.RawData {
		if strings.HasPrefix(strings.ToLower(key), ReservedRawDataPrefix) {
			delete(in.RawData, key)
		}
	}
	return nil
}

// IsImageURL reports whether s is an absolute http(s) URL
func IsImageURL(s string) bool {
	if !govalidator.IsURL(s) {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// NewProduct builds a pending, unpublished product from validated input
func NewProduct(id, submissionID string, in ProductInput) *Product {
	images := StringList(in.Images)
	if images == nil {
		images = StringList{}
	}
	rawData := in.RawData
	if rawData == nil {
		rawData = MapOfAny{}
	}
	return &Product{
		ID:             id,
		SubmissionID:   submissionID,
		Name:           in.Name,
		Description:    in.Description,
		Price:          *in.Price,
		SKU:            in.SKU,
		Images:         images,
		RawData:        rawData,
		ApprovalStatus: ApprovalStatusPending,
		Publication:    Publication{State: PublicationStateUnpublished},
	}
}

type AddProductRequest struct {
	SubmissionID string `json:"submission_id"`
	ProductInput
}

func (r *AddProductRequest) Validate() error {
	if r.SubmissionID == "" {
		return NewValidationError("submission_id is required")
	}
	return r.ProductInput.Validate()
}

type UpdateProductRequest struct {
	ID string `json:"id"`
	ProductInput
}

func (r *UpdateProductRequest) Validate() error {
	if r.ID == "" {
		return NewValidationError("id is required")
	}
	return r.ProductInput.Validate()
}

// ProductIDRequest is the body of single-product staff actions
type ProductIDRequest struct {
	ID string `json:"id"`
}

func (r *ProductIDRequest) Validate() error {
	if r.ID == "" {
		return NewValidationError("id is required")
	}
	return nil
}

// ProductFilter narrows List
type ProductFilter struct {
	SubmissionID   string
	ApprovalStatus ApprovalStatus
	State          PublicationState
	Exported       *bool
	Limit          int
	Offset         int
}

func (f *ProductFilter) FromURLParams(queryParams url.Values) error {
	f.SubmissionID = queryParams.Get("submission_id")

	if v := queryParams.Get("approval_status"); v != "" {
		f.ApprovalStatus = ApprovalStatus(v)
		if !f.ApprovalStatus.IsValid() {
			return NewValidationError(fmt.Sprintf("unknown approval_status %q", v))
		}
	}
	if v := queryParams.Get("state"); v != "" {
		switch PublicationState(v) {
		case PublicationStateUnpublished, PublicationStatePublishing, PublicationStatePublished, PublicationStateFailed:
			f.State = PublicationState(v)
		default:
			return NewValidationError(fmt.Sprintf("unknown state %q", v))
		}
	}
	if v := queryParams.Get("exported"); v != "" {
		exported := v == "true"
		if !exported && v != "false" {
			return NewValidationError("exported must be true or false")
		}
		f.Exported = &exported
	}

	limit, offset, err := parsePagination(queryParams)
	if err != nil {
		return err
	}
	f.Limit = limit
	f.Offset = offset
	return nil
}

// ProductService is the Product Collection
type ProductService interface {
	// AddProduct adds a product to a submission that still accepts products
	AddProduct(ctx context.Context, req *AddProductRequest) (*Product, error)

	// UpdateProduct edits a product while its submission still accepts products
	UpdateProduct(ctx context.Context, req *UpdateProductRequest) (*Product, error)

	// GetProduct returns a product
	GetProduct(ctx context.Context, id string) (*Product, error)

	// ListBySubmission returns the products of a submission in creation order
	ListBySubmission(ctx context.Context, submissionID string) ([]*Product, error)

	// ListProducts returns products across submissions. Staff only.
	ListProducts(ctx context.Context, filter ProductFilter) ([]*Product, error)
}

type ProductRepository interface {
	// AddToSubmission locks the submission, checks it accepts products and the
	// product limit, inserts the product and increments product_count
	AddToSubmission(ctx context.Context, product *Product, maxProducts int) error

	// UpdateContent replaces the partner-editable fields while the submission accepts products
	UpdateContent(ctx context.Context, product *Product) error

	// GetByID retrieves a product
	GetByID(ctx context.Context, id string) (*Product, error)

	// GetByExternalID retrieves a product by its storefront id
	GetByExternalID(ctx context.Context, externalID string) (*Product, error)

	// ListBySubmission retrieves the products of a submission ordered by created_at, id
	ListBySubmission(ctx context.Context, submissionID string) ([]*Product, error)

	// List retrieves products matching filter
	List(ctx context.Context, filter ProductFilter) ([]*Product, error)

	// SetApprovalStatus changes the approval status. Rejecting an exported
	// product returns *InvalidStateError.
	SetApprovalStatus(ctx context.Context, id string, status ApprovalStatus) (*Product, error)

	// SetGeneratedContent stores AI-generated marketing copy
	SetGeneratedContent(ctx context.Context, id string, content string) error

	// AppendImage adds an image URL to the product while the submission accepts products
	AppendImage(ctx context.Context, id string, imageURL string) (*Product, error)

	// ClaimPublication moves an approved product to publishing. A publishing
	// claim taken before staleBefore is abandoned and may be taken over.
	// Returns *InvalidStateError when a live claim exists or the product is
	// not approved.
	ClaimPublication(ctx context.Context, id string, staleBefore time.Time) (*Product, error)

	// RecordExternalID stores the storefront id of a product still publishing
	RecordExternalID(ctx context.Context, id string, externalID string) error

	// MarkPublished records a confirmed storefront success
	MarkPublished(ctx context.Context, id string, externalID string, exportedAt time.Time) (*Product, error)

	// MarkPublicationFailed records a failed attempt. Exported flags are untouched.
	MarkPublicationFailed(ctx context.Context, id string, message string) (*Product, error)
}
