package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicationErrorForStatus(t *testing.T) {
	tests := []struct {
		status int
		kind   PublicationErrorKind
	}{
		{400, PublicationErrorPermanent},
		{401, PublicationErrorPermanent},
		{404, PublicationErrorPermanent},
		{422, PublicationErrorPermanent},
		{429, PublicationErrorTransient},
		{500, PublicationErrorTransient},
		{503, PublicationErrorTransient},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			err := PublicationErrorForStatus(tt.status, "boom")
			assert.Equal(t, tt.kind, err.Kind)
			assert.Equal(t, tt.status, err.StatusCode)
			assert.Equal(t, tt.kind == PublicationErrorTransient, err.IsTransient())
		})
	}
}

func TestPublicationError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("publish: %w", &PublicationError{Kind: PublicationErrorTransient, Err: cause})

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, PublicationErrorTransient, PublicationErrorKindOf(err))
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, PublicationErrorKind(""), PublicationErrorKindOf(cause))
}

func TestNewStorefrontProduct(t *testing.T) {
	generated := "<p>Great widget</p>"
	p := &Product{
		Name:             "Widget",
		Description:      "plain",
		Price:            19.99,
		SKU:              strPtr("W-1"),
		Images:           StringList{"https://cdn.test/a.png"},
		GeneratedContent: &generated,
		RawData:          MapOfAny{"product_type": "Gadgets"},
	}

	sp := NewStorefrontProduct(p, &Brand{Name: "Acme"})
	require.NotNil(t, sp)
	assert.Equal(t, "Widget", sp.Title)
	assert.Equal(t, generated, sp.BodyHTML)
	assert.Equal(t, "Acme", sp.Vendor)
	assert.Equal(t, "W-1", sp.SKU)
	assert.Equal(t, "Gadgets", sp.ProductType)
	assert.Equal(t, []string{"https://cdn.test/a.png"}, sp.Images)

	sp = NewStorefrontProduct(&Product{Name: "Bare", Description: "plain", Price: 1}, nil)
	assert.Equal(t, "plain", sp.BodyHTML)
	assert.Empty(t, sp.Vendor)
	assert.Empty(t, sp.SKU)
}
