package domain

import (
	"context"
	"io"
	"path"
	"strings"
)

//go:generate mockgen -destination mocks/mock_content_generator.go -package mocks github.com/greez/greez/internal/domain ContentGenerator
//go:generate mockgen -destination mocks/mock_image_store.go -package mocks github.com/greez/greez/internal/domain ImageStore
//go:generate mockgen -destination mocks/mock_catalog_service.go -package mocks github.com/greez/greez/internal/domain CatalogService

// ContentGenerator writes storefront marketing copy for a product
type ContentGenerator interface {
	GenerateProductContent(ctx context.Context, product *Product, brand *Brand) (string, error)
}

// ImageStore persists product images and returns their public URL
type ImageStore interface {
	Upload(ctx context.Context, key string, contentType string, body io.Reader) (string, error)
}

// AllowedImageTypes maps accepted image content types to file extensions
var AllowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ImageExtension returns the extension for contentType, falling back to the filename's
func ImageExtension(contentType, filename string) (string, bool) {
	if ext, ok := AllowedImageTypes[strings.ToLower(contentType)]; ok {
		return ext, true
	}
	ext := strings.ToLower(path.Ext(filename))
	for _, allowed := range AllowedImageTypes {
		if allowed == ext || (ext == ".jpeg" && allowed == ".jpg") {
			return allowed, true
		}
	}
	return "", false
}

type UploadImageRequest struct {
	ProductID   string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

func (r *UploadImageRequest) Validate(maxBytes int64) error {
	if r.ProductID == "" {
		return NewValidationError("product_id is required")
	}
	if r.Body == nil || r.Size == 0 {
		return NewValidationError("file is required")
	}
	if maxBytes > 0 && r.Size > maxBytes {
		return NewValidationError("file is too large")
	}
	if _, ok := ImageExtension(r.ContentType, r.Filename); !ok {
		return NewValidationError("unsupported image type")
	}
	return nil
}

// ImportRowResult is the outcome of one spreadsheet row
type ImportRowResult struct {
	Row       int    `json:"row"`
	ProductID string `json:"product_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ImportResult summarizes a spreadsheet import
type ImportResult struct {
	SubmissionID string            `json:"submission_id"`
	Imported     int               `json:"imported"`
	Failed       int               `json:"failed"`
	Rows         []ImportRowResult `json:"rows"`
}

// CatalogService groups the product features built on external services
type CatalogService interface {
	// GenerateContent asks the content generator for copy and stores it
	GenerateContent(ctx context.Context, productID string) (*Product, error)

	// UploadImage stores an image and appends its URL to the product
	UploadImage(ctx context.Context, req *UploadImageRequest) (*Product, error)

	// ImportProducts adds one product per spreadsheet row
	ImportProducts(ctx context.Context, submissionID string, body io.Reader) (*ImportResult, error)

	// ExportSubmission renders the products of a submission as a spreadsheet
	ExportSubmission(ctx context.Context, submissionID string) ([]byte, error)
}
