package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/greez/greez/internal/domain"
	"github.com/greez/greez/pkg/logger"
	"github.com/greez/greez/pkg/tracing"
)

const (
	defaultContentModel     = "claude-sonnet-4-5-20250929"
	defaultContentMaxTokens = 1024
)

var ErrContentGeneratorDisabled = errors.New("content generation is not configured")

const contentSystemPrompt = `You write product descriptions for an online grocery and lifestyle storefront.
Answer with a short HTML fragment using only <p>, <ul>, <li>, <strong> and <em> tags.
Do not invent certifications, prices or claims that are not in the product data.`

// AnthropicContentGenerator generates storefront copy with the Anthropic Messages API
type AnthropicContentGenerator struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	enabled   bool
	logger    logger.Logger
}

type ContentGeneratorConfig struct {
	APIKey    string
	Model     string
	MaxTokens int64
	// Options are appended to the client options, e.g. a test base URL
	Options []option.RequestOption
	Logger  logger.Logger
}

func NewAnthropicContentGenerator(cfg ContentGeneratorConfig) *AnthropicContentGenerator {
	model := cfg.Model
	if model == "" {
		model = defaultContentModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultContentMaxTokens
	}

	opts := append([]option.RequestOption{option.WithAPIKey(cfg.APIKey)}, cfg.Options...)

	return &AnthropicContentGenerator{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens,
		enabled:   cfg.APIKey != "",
		logger:    cfg.Logger,
	}
}

var _ domain.ContentGenerator = (*AnthropicContentGenerator)(nil)

func (g *AnthropicContentGenerator) GenerateProductContent(ctx context.Context, product *domain.Product, brand *domain.Brand) (string, error) {
	if !g.enabled {
		return "", ErrContentGeneratorDisabled
	}

	return tracing.TraceMethodWithResult(ctx, "ContentGenerator", "GenerateProductContent", func(ctx context.Context) (string, error) {
		tracing.AddAttribute(ctx, "product.id", product.ID)
		return g.generate(ctx, product, brand)
	})
}

func (g *AnthropicContentGenerator) generate(ctx context.Context, product *domain.Product, brand *domain.Brand) (string, error) {

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: g.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: contentSystemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(productPrompt(product, brand))),
		},
	}

	message, err := g.client.Messages.New(ctx, params)
	if err != nil {
		g.logger.WithField("product_id", product.ID).WithField("error", err.Error()).Error("Content generation failed")
		return "", fmt.Errorf("content generation failed: %w", err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	content, err := sanitizeGeneratedHTML(sb.String())
	if err != nil {
		return "", err
	}
	if content == "" {
		return "", fmt.Errorf("content generation returned no text")
	}
	return content, nil
}

func productPrompt(product *domain.Product, brand *domain.Brand) string {
	var sb strings.Builder
	sb.WriteString("Write the storefront description for this product.\n\n")
	fmt.Fprintf(&sb, "Name: %s\n", product.Name)
	if brand != nil {
		fmt.Fprintf(&sb, "Brand: %s\n", brand.Name)
		if brand.Description != nil {
			fmt.Fprintf(&sb, "About the brand: %s\n", PlainText(*brand.Description))
		}
	}
	fmt.Fprintf(&sb, "Price: %.2f\n", product.Price)
	if product.Description != "" {
		fmt.Fprintf(&sb, "Partner description: %s\n", PlainText(product.Description))
	}
	if t, ok := product.RawData["product_type"].(string); ok && t != "" {
		fmt.Fprintf(&sb, "Category: %s\n", t)
	}
	return sb.String()
}

// PlainText strips markup from partner supplied HTML
func PlainText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// sanitizeGeneratedHTML drops active content from model output and returns the body fragment
func sanitizeGeneratedHTML(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse generated content: %w", err)
	}

	doc.Find("script, style, iframe, object, embed, link, meta").Remove()
	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		for _, node := range s.Nodes {
			attrs := node.Attr[:0]
			for _, a := range node.Attr {
				if strings.HasPrefix(strings.ToLower(a.Key), "on") {
					continue
				}
				if strings.HasPrefix(strings.ToLower(strings.TrimSpace(a.Val)), "javascript:") {
					continue
				}
				attrs = append(attrs, a)
			}
			node.Attr = attrs
		}
	})

	out, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("failed to render generated content: %w", err)
	}
	return strings.TrimSpace(out), nil
}
