package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/greez/greez/internal/domain"
	"github.com/greez/greez/pkg/logger"
)

// Spreadsheet columns understood by ImportProducts and written by ExportSubmission
var catalogColumns = []string{"name", "description", "price", "sku", "product_type", "images"}

const maxImportRows = 1000

type CatalogService struct {
	productRepo    domain.ProductRepository
	submissionRepo domain.SubmissionRepository
	products       domain.ProductService
	authService    domain.AuthService
	generator      domain.ContentGenerator
	images         domain.ImageStore
	maxImageBytes  int64
	logger         logger.Logger
}

type CatalogServiceConfig struct {
	ProductRepository    domain.ProductRepository
	SubmissionRepository domain.SubmissionRepository
	ProductService       domain.ProductService
	AuthService          domain.AuthService
	ContentGenerator     domain.ContentGenerator
	ImageStore           domain.ImageStore
	MaxImageBytes        int64
	Logger               logger.Logger
}

func NewCatalogService(cfg CatalogServiceConfig) *CatalogService {
	return &CatalogService{
		productRepo:    cfg.ProductRepository,
		submissionRepo: cfg.SubmissionRepository,
		products:       cfg.ProductService,
		authService:    cfg.AuthService,
		generator:      cfg.ContentGenerator,
		images:         cfg.ImageStore,
		maxImageBytes:  cfg.MaxImageBytes,
		logger:         cfg.Logger,
	}
}

var _ domain.CatalogService = (*CatalogService)(nil)

func (s *CatalogService) GenerateContent(ctx context.Context, productID string) (*domain.Product, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	submission, err := s.authorizedSubmission(ctx, product.SubmissionID)
	if err != nil {
		return nil, err
	}

	content, err := s.generator.GenerateProductContent(ctx, product, submission.Brand)
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.SetGeneratedContent(ctx, productID, content); err != nil {
		return nil, err
	}
	product.GeneratedContent = &content
	return product, nil
}

func (s *CatalogService) UploadImage(ctx context.Context, req *domain.UploadImageRequest) (*domain.Product, error) {
	if s.images == nil {
		return nil, ErrImageStorageDisabled
	}
	if err := req.Validate(s.maxImageBytes); err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	submission, err := s.authorizedSubmission(ctx, product.SubmissionID)
	if err != nil {
		return nil, err
	}
	if !submission.Status.AcceptsProducts() {
		return nil, domain.NewInvalidStateError("submission", submission.ID, string(submission.Status), "submission no longer accepts products")
	}
	if len(product.Images) >= domain.MaxProductImages {
		return nil, domain.NewValidationError(fmt.Sprintf("a product can have at most %d images", domain.MaxProductImages))
	}

	ext, _ := domain.ImageExtension(req.ContentType, req.Filename)
	key := fmt.Sprintf("products/%s/%s%s", product.ID, uuid.New().String(), ext)

	url, err := s.images.Upload(ctx, key, req.ContentType, io.LimitReader(req.Body, req.Size))
	if err != nil {
		return nil, err
	}

	return s.productRepo.AppendImage(ctx, product.ID, url)
}

// ImportProducts reads the first sheet of an xlsx workbook. The first row is
// a header naming the columns; every other non-empty row becomes a product.
func (s *CatalogService) ImportProducts(ctx context.Context, submissionID string, body io.Reader) (*domain.ImportResult, error) {
	if _, err := s.authorizedSubmission(ctx, submissionID); err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(body)
	if err != nil {
		return nil, domain.NewValidationError("file is not a valid xlsx workbook")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, domain.NewValidationError("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, domain.NewValidationError("workbook has no product rows")
	}
	if len(rows)-1 > maxImportRows {
		return nil, domain.NewValidationError(fmt.Sprintf("workbook has more than %d product rows", maxImportRows))
	}

	header := make(map[string]int)
	for i, cell := range rows[0] {
		header[strings.ToLower(strings.TrimSpace(cell))] = i
	}
	if _, ok := header["name"]; !ok {
		return nil, domain.NewValidationError("header row must contain a name column")
	}
	if _, ok := header["price"]; !ok {
		return nil, domain.NewValidationError("header row must contain a price column")
	}

	result := &domain.ImportResult{SubmissionID: submissionID, Rows: []domain.ImportRowResult{}}

	for i, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		rowResult := domain.ImportRowResult{Row: i + 2}

		input, err := productInputFromRow(header, row)
		if err == nil {
			var product *domain.Product
			product, err = s.products.AddProduct(ctx, &domain.AddProductRequest{SubmissionID: submissionID, ProductInput: input})
			if err == nil {
				rowResult.ProductID = product.ID
			}
		}

		if err != nil {
			rowResult.Error = err.Error()
			result.Failed++
		} else {
			result.Imported++
		}
		result.Rows = append(result.Rows, rowResult)
	}

	s.logger.WithFields(map[string]interface{}{
		"submission_id": submissionID,
		"imported":      result.Imported,
		"failed":        result.Failed,
	}).Info("Product import finished")

	return result, nil
}

func (s *CatalogService) ExportSubmission(ctx context.Context, submissionID string) ([]byte, error) {
	if _, err := s.authorizedSubmission(ctx, submissionID); err != nil {
		return nil, err
	}

	products, err := s.productRepo.ListBySubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	header := append(append([]string{}, catalogColumns...), "approval_status", "publication_state", "external_id")
	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, p := range products {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}

		var sku, productType, externalID string
		if p.SKU != nil {
			sku = *p.SKU
		}
		if v, ok := p.RawData["product_type"].(string); ok {
			productType = v
		}
		if p.Publication.ExternalID != nil {
			externalID = *p.Publication.ExternalID
		}

		row := []interface{}{
			p.Name,
			p.Description,
			p.Price,
			sku,
			productType,
			strings.Join(p.Images, " "),
			string(p.ApprovalStatus),
			string(p.Publication.State),
			externalID,
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *CatalogService) authorizedSubmission(ctx context.Context, submissionID string) (*domain.Submission, error) {
	submission, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authService.AuthorizeSubmission(ctx, submission); err != nil {
		return nil, err
	}
	return submission, nil
}

func productInputFromRow(header map[string]int, row []string) (domain.ProductInput, error) {
	cell := func(name string) string {
		i, ok := header[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	input := domain.ProductInput{
		Name:        cell("name"),
		Description: cell("description"),
		RawData:     domain.MapOfAny{"source": "import"},
	}

	if raw := cell("price"); raw != "" {
		price, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
		if err != nil {
			return input, domain.NewValidationError(fmt.Sprintf("price %q is not a number", raw))
		}
		input.Price = &price
	}
	if sku := cell("sku"); sku != "" {
		input.SKU = &sku
	}
	if t := cell("product_type"); t != "" {
		input.RawData["product_type"] = t
	}
	if images := cell("images"); images != "" {
		input.Images = strings.FieldsFunc(images, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\n'
		})
	}
	return input, nil
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
