package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/greez/greez/internal/domain"
	"github.com/greez/greez/pkg/logger"
	"github.com/greez/greez/pkg/tracing"
)

const (
	defaultShopifyAPIVersion = "2024-10"
	maxShopifyErrorBody      = 2048
)

// maxShopifyResponseBody caps how much of an Admin API response is read
var maxShopifyResponseBody int64 = 4 << 20

// ShopifyService is the storefront adapter for the Shopify Admin API
type ShopifyService struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
	limiter     *rate.Limiter
	logger      logger.Logger
}

type ShopifyServiceConfig struct {
	ShopDomain        string
	AccessToken       string
	APIVersion        string
	RequestsPerSecond float64
	Burst             int
	// BaseURL overrides https://<shop>/admin/api/<version>
	BaseURL    string
	HTTPClient *http.Client
	Logger     logger.Logger
}

func NewShopifyService(cfg ShopifyServiceConfig) *ShopifyService {
	version := cfg.APIVersion
	if version == "" {
		version = defaultShopifyAPIVersion
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s/admin/api/%s", cfg.ShopDomain, version)
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &ShopifyService{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: cfg.AccessToken,
		httpClient:  tracing.WrapHTTPClient(cfg.HTTPClient),
		limiter:     rate.NewLimiter(limit, burst),
		logger:      cfg.Logger,
	}
}

var _ domain.Storefront = (*ShopifyService)(nil)

type shopifyVariant struct {
	Price string `json:"price"`
	SKU   string `json:"sku,omitempty"`
}

type shopifyImage struct {
	Src string `json:"src"`
}

type shopifyProduct struct {
	ID          int64            `json:"id,omitempty"`
	Title       string           `json:"title"`
	BodyHTML    string           `json:"body_html"`
	Vendor      string           `json:"vendor,omitempty"`
	ProductType string           `json:"product_type,omitempty"`
	Tags        string           `json:"tags,omitempty"`
	Variants    []shopifyVariant `json:"variants"`
	Images      []shopifyImage   `json:"images,omitempty"`
}

func toShopifyProduct(sp *domain.StorefrontProduct) shopifyProduct {
	images := make([]shopifyImage, 0, len(sp.Images))
	for _, src := range sp.Images {
		images = append(images, shopifyImage{Src: src})
	}
	return shopifyProduct{
		Title:       sp.Title,
		BodyHTML:    sp.BodyHTML,
		Vendor:      sp.Vendor,
		ProductType: sp.ProductType,
		Tags:        strings.Join(sp.Tags, ", "),
		Variants:    []shopifyVariant{{Price: strconv.FormatFloat(sp.Price, 'f', 2, 64), SKU: sp.SKU}},
		Images:      images,
	}
}

// CreateProduct refuses SKUs that already exist in the shop, then creates the
// product and returns its numeric id
func (s *ShopifyService) CreateProduct(ctx context.Context, sp *domain.StorefrontProduct) (string, error) {
	if sp.SKU != "" {
		exists, err := s.skuExists(ctx, sp.SKU)
		if err != nil {
			return "", err
		}
		if exists {
			return "", &domain.PublicationError{
				Kind:       domain.PublicationErrorPermanent,
				StatusCode: http.StatusUnprocessableEntity,
				Message:    fmt.Sprintf("sku %q already exists in the storefront", sp.SKU),
			}
		}
	}

	body, err := json.Marshal(map[string]interface{}{"product": toShopifyProduct(sp)})
	if err != nil {
		return "", fmt.Errorf("failed to encode product: %w", err)
	}

	raw, err := s.do(ctx, http.MethodPost, "/products.json", body)
	if err != nil {
		return "", err
	}

	id := gjson.GetBytes(raw, "product.id")
	if !id.Exists() {
		return "", &domain.PublicationError{Kind: domain.PublicationErrorPermanent, Message: "storefront response has no product id"}
	}
	return id.String(), nil
}

func (s *ShopifyService) UpdateProduct(ctx context.Context, externalID string, sp *domain.StorefrontProduct) error {
	return tracing.TraceMethod(ctx, "Storefront", "UpdateProduct", func(ctx context.Context) error {
		tracing.AddAttribute(ctx, "storefront.product_id", externalID)
		return s.updateProduct(ctx, externalID, sp)
	})
}

func (s *ShopifyService) updateProduct(ctx context.Context, externalID string, sp *domain.StorefrontProduct) error {
	id, err := strconv.ParseInt(externalID, 10, 64)
	if err != nil {
		return &domain.PublicationError{Kind: domain.PublicationErrorPermanent, Message: fmt.Sprintf("invalid storefront id %q", externalID)}
	}

	product := toShopifyProduct(sp)
	product.ID = id

	body, err := json.Marshal(map[string]interface{}{"product": product})
	if err != nil {
		return fmt.Errorf("failed to encode product: %w", err)
	}

	_, err = s.do(ctx, http.MethodPut, fmt.Sprintf("/products/%d.json", id), body)
	return err
}

func (s *ShopifyService) skuExists(ctx context.Context, sku string) (bool, error) {
	query := map[string]interface{}{
		"query": `query($q: String!) { productVariants(first: 1, query: $q) { edges { node { id } } } }`,
		"variables": map[string]string{
			"q": fmt.Sprintf("sku:%q", sku),
		},
	}
	body, err := json.Marshal(query)
	if err != nil {
		return false, fmt.Errorf("failed to encode sku query: %w", err)
	}

	raw, err := s.do(ctx, http.MethodPost, "/graphql.json", body)
	if err != nil {
		return false, err
	}

	if errs := gjson.GetBytes(raw, "errors"); errs.Exists() {
		return false, &domain.PublicationError{Kind: graphQLErrorKind(errs), Message: "sku lookup failed: " + errs.Raw}
	}
	return gjson.GetBytes(raw, "data.productVariants.edges.#").Int() > 0, nil
}

// do sends one Admin API request and classifies failures
func (s *ShopifyService) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, &domain.PublicationError{Kind: domain.PublicationErrorTransient, Message: "rate limiter", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Shopify-Access-Token", s.accessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &domain.PublicationError{Kind: domain.PublicationErrorTransient, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxShopifyResponseBody))
	if err != nil {
		return nil, &domain.PublicationError{Kind: domain.PublicationErrorTransient, Message: "failed to read response", Err: err}
	}

	if resp.StatusCode >= 300 {
		msg := shopifyErrorMessage(raw)
		s.logger.WithFields(map[string]interface{}{
			"method": method,
			"path":   path,
			"status": resp.StatusCode,
			"error":  msg,
		}).Warn("Shopify request failed")
		return nil, domain.PublicationErrorForStatus(resp.StatusCode, msg)
	}
	return raw, nil
}

func shopifyErrorMessage(raw []byte) string {
	if errs := gjson.GetBytes(raw, "errors"); errs.Exists() {
		if errs.Type == gjson.String {
			return errs.String()
		}
		return errs.Raw
	}
	if len(raw) > maxShopifyErrorBody {
		raw = raw[:maxShopifyErrorBody]
	}
	return strings.TrimSpace(string(raw))
}

// graphQLErrorKind reports throttling and Shopify-side failures, which arrive
// as a 200 with an errors payload, as transient
func graphQLErrorKind(errs gjson.Result) domain.PublicationErrorKind {
	for _, code := range errs.Get("#.extensions.code").Array() {
		switch code.String() {
		case "THROTTLED", "INTERNAL_SERVER_ERROR":
			return domain.PublicationErrorTransient
		}
	}
	return domain.PublicationErrorPermanent
}
