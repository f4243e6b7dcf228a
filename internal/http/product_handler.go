package http

import (
	"context"
	"net/http"
	"time"

	"github.com/greez/greez/internal/domain"
	"github.com/greez/greez/pkg/logger"
)

// multipartMemory is the part of an upload kept in memory before spilling to disk
const multipartMemory = 4 << 20

type ProductHandler struct {
	productService  domain.ProductService
	approvalService domain.ApprovalService
	catalogService  domain.CatalogService
	requireAuth     func(http.Handler) http.Handler
	publishTimeout  time.Duration
	maxUploadBytes  int64
	logger          logger.Logger
}

type ProductHandlerConfig struct {
	ProductService  domain.ProductService
	ApprovalService domain.ApprovalService
	CatalogService  domain.CatalogService
	RequireAuth     func(http.Handler) http.Handler
	// PublishTimeout bounds a single product publication, 0 disables it
	PublishTimeout time.Duration
	// MaxUploadBytes bounds multipart request bodies
	MaxUploadBytes int64
	Logger         logger.Logger
}

func NewProductHandler(cfg ProductHandlerConfig) *ProductHandler {
	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}
	return &ProductHandler{
		productService:  cfg.ProductService,
		approvalService: cfg.ApprovalService,
		catalogService:  cfg.CatalogService,
		requireAuth:     cfg.RequireAuth,
		publishTimeout:  cfg.PublishTimeout,
		maxUploadBytes:  maxUpload,
		logger:          cfg.Logger,
	}
}

func (h *ProductHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("/api/products.add", h.requireAuth(http.HandlerFunc(h.handleAdd)))
	mux.Handle("/api/products.update", h.requireAuth(http.HandlerFunc(h.handleUpdate)))
	mux.Handle("/api/products.get", h.requireAuth(http.HandlerFunc(h.handleGet)))
	mux.Handle("/api/products.list", h.requireAuth(http.HandlerFunc(h.handleList)))
	mux.Handle("/api/products.listBySubmission", h.requireAuth(http.HandlerFunc(h.handleListBySubmission)))
	mux.Handle("/api/products.approve", h.requireAuth(http.HandlerFunc(h.handleApprove)))
	mux.Handle("/api/products.reject", h.requireAuth(http.HandlerFunc(h.handleReject)))
	mux.Handle("/api/products.publish", h.requireAuth(http.HandlerFunc(h.handlePublish)))
	mux.Handle("/api/products.uploadImage", h.requireAuth(http.HandlerFunc(h.handleUploadImage)))
	mux.Handle("/api/products.generateContent", h.requireAuth(http.HandlerFunc(h.handleGenerateContent)))
	mux.Handle("/api/products.import", h.requireAuth(http.HandlerFunc(h.handleImport)))
}

func (h *ProductHandler) handleAdd(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.AddProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.productService.AddProduct(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.logger, "products.add", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"product": product})
}

func (h *ProductHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.UpdateProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.productService.UpdateProduct(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.logger, "products.update", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"product": product})
}

func (h *ProductHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		WriteJSONError(w, "id is required", http.StatusBadRequest)
		return
	}

	product, err := h.productService.GetProduct(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, "products.get", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"product": product})
}

func (h *ProductHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var filter domain.ProductFilter
	if err := filter.FromURLParams(r.URL.Query()); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	products, err := h.productService.ListProducts(r.Context(), filter)
	if err != nil {
		writeServiceError(w, h.logger, "products.list", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"products": products})
}

func (h *ProductHandler) handleListBySubmission(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	submissionID := r.URL.Query().Get("submission_id")
	if submissionID == "" {
		WriteJSONError(w, "submission_id is required", http.StatusBadRequest)
		return
	}

	products, err := h.productService.ListBySubmission(r.Context(), submissionID)
	if err != nil {
		writeServiceError(w, h.logger, "products.listBySubmission", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"products": products})
}

// productAction handles the single-product staff actions that take {"id": ...}
func (h *ProductHandler) productAction(
	operation string,
	action func(ctx context.Context, id string) (*domain.Product, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req domain.ProductIDRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := req.Validate(); err != nil {
			WriteJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}

		product, err := action(r.Context(), req.ID)
		if err != nil {
			writeServiceError(w, h.logger, operation, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{"product": product})
	}
}

func (h *ProductHandler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.productAction("products.approve", h.approvalService.Approve)(w, r)
}

func (h *ProductHandler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.productAction("products.reject", h.approvalService.Reject)(w, r)
}

func (h *ProductHandler) handlePublish(w http.ResponseWriter, r *http.Request) {
	h.productAction("products.publish", func(ctx context.Context, id string) (*domain.Product, error) {
		if h.publishTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, h.publishTimeout)
			defer cancel()
		}
		return h.approvalService.Publish(ctx, id)
	})(w, r)
}

func (h *ProductHandler) handleGenerateContent(w http.ResponseWriter, r *http.Request) {
	h.productAction("products.generateContent", h.catalogService.GenerateContent)(w, r)
}

func (h *ProductHandler) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		WriteJSONError(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteJSONError(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	req := &domain.UploadImageRequest{
		ProductID:   r.FormValue("product_id"),
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}

	product, err := h.catalogService.UploadImage(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, "products.uploadImage", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"product": product})
}

func (h *ProductHandler) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		WriteJSONError(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	submissionID := r.FormValue("submission_id")
	if submissionID == "" {
		WriteJSONError(w, "submission_id is required", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		WriteJSONError(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	result, err := h.catalogService.ImportProducts(r.Context(), submissionID, file)
	if err != nil {
		writeServiceError(w, h.logger, "products.import", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
