package service

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	svix "github.com/standard-webhooks/standard-webhooks/libraries/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greez/greez/internal/domain"
	"github.com/greez/greez/internal/domain/mocks"
)

var testWebhookSecret = "whsec_" + base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))

type reviewsTestDeps struct {
	repo        *mocks.MockReviewRepository
	productRepo *mocks.MockProductRepository
	authService *mocks.MockAuthService
}

func setupReviewsTest(t *testing.T, endpoint string) (*reviewsTestDeps, *ReviewsService) {
	ctrl := gomock.NewController(t)
	deps := &reviewsTestDeps{
		repo:        mocks.NewMockReviewRepository(ctrl),
		productRepo: mocks.NewMockProductRepository(ctrl),
		authService: mocks.NewMockAuthService(ctrl),
	}
	svc, err := NewReviewsService(ReviewsServiceConfig{
		Repository:        deps.repo,
		ProductRepository: deps.productRepo,
		AuthService:       deps.authService,
		APIEndpoint:       endpoint,
		APIKey:            "reviews-key",
		WebhookSecret:     testWebhookSecret,
		Logger:            newQuietLogger(ctrl),
	})
	require.NoError(t, err)
	return deps, svc
}

func signedHeaders(t *testing.T, payload []byte, ts time.Time) http.Header {
	wh, err := svix.NewWebhook(testWebhookSecret)
	require.NoError(t, err)
	signature, err := wh.Sign("msg_1", ts, payload)
	require.NoError(t, err)

	headers := http.Header{}
	headers.Set("Webhook-Id", "msg_1")
	headers.Set("Webhook-Timestamp", strconv.FormatInt(ts.Unix(), 10))
	headers.Set("Webhook-Signature", signature)
	return headers
}

func TestReviewsService_HandleWebhook(t *testing.T) {
	ctx := context.Background()
	payload := []byte(`{"type":"product.reviews_updated","data":{"product_external_id":"101","rating":4.6,"count":12}}`)

	t.Run("stores the summary", func(t *testing.T) {
		deps, svc := setupReviewsTest(t, "")
		deps.productRepo.EXPECT().GetByExternalID(gomock.Any(), "101").Return(approvedProduct("p-1"), nil)
		deps.repo.EXPECT().Upsert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, s *domain.ReviewSummary) error {
			assert.Equal(t, "p-1", s.ProductID)
			assert.Equal(t, defaultReviewsProvider, s.Provider)
			assert.Equal(t, 4.6, s.Rating)
			assert.Equal(t, 12, s.Count)
			return nil
		})

		require.NoError(t, svc.HandleWebhook(ctx, payload, signedHeaders(t, payload, time.Now())))
	})

	t.Run("bad signature", func(t *testing.T) {
		_, svc := setupReviewsTest(t, "")
		headers := signedHeaders(t, payload, time.Now())
		tampered := []byte(`{"data":{"product_external_id":"101","rating":1,"count":1}}`)

		assert.ErrorIs(t, svc.HandleWebhook(ctx, tampered, headers), ErrInvalidWebhook)
	})

	t.Run("stale timestamp", func(t *testing.T) {
		_, svc := setupReviewsTest(t, "")
		headers := signedHeaders(t, payload, time.Now().Add(-10*time.Minute))

		assert.ErrorIs(t, svc.HandleWebhook(ctx, payload, headers), ErrInvalidWebhook)
	})

	t.Run("unknown product is acknowledged", func(t *testing.T) {
		deps, svc := setupReviewsTest(t, "")
		deps.productRepo.EXPECT().GetByExternalID(gomock.Any(), "101").Return(nil, domain.NewNotFoundError("product", "101"))

		assert.NoError(t, svc.HandleWebhook(ctx, payload, signedHeaders(t, payload, time.Now())))
	})

	t.Run("rating out of range", func(t *testing.T) {
		_, svc := setupReviewsTest(t, "")
		bad := []byte(`{"data":{"product_external_id":"101","rating":7,"count":1}}`)

		err := svc.HandleWebhook(ctx, bad, signedHeaders(t, bad, time.Now()))
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("not configured", func(t *testing.T) {
		svc, err := NewReviewsService(ReviewsServiceConfig{})
		require.NoError(t, err)
		assert.ErrorIs(t, svc.HandleWebhook(ctx, payload, http.Header{}), ErrReviewsNotConfigured)
	})
}

func TestReviewsService_Status(t *testing.T) {
	ctx := context.Background()

	t.Run("connected", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/shop", r.URL.Path)
			assert.Equal(t, "Bearer reviews-key", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"shop":{"name":"Greez Market","provider":"judgeme"}}`))
		}))
		defer srv.Close()

		deps, svc := setupReviewsTest(t, srv.URL)
		deps.authService.EXPECT().RequireStaff(gomock.Any()).Return(staffUser(), nil)

		status, err := svc.Status(ctx)
		require.NoError(t, err)
		assert.True(t, status.Configured)
		assert.True(t, status.Connected)
		assert.Equal(t, "Greez Market", status.ShopName)
	})

	t.Run("rejected credentials", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid api token"}`))
		}))
		defer srv.Close()

		deps, svc := setupReviewsTest(t, srv.URL)
		deps.authService.EXPECT().RequireStaff(gomock.Any()).Return(staffUser(), nil)

		status, err := svc.Status(ctx)
		require.NoError(t, err)
		assert.False(t, status.Connected)
		assert.Contains(t, status.Error, "invalid api token")
	})

	t.Run("not configured", func(t *testing.T) {
		deps, svc := setupReviewsTest(t, "")
		deps.authService.EXPECT().RequireStaff(gomock.Any()).Return(staffUser(), nil)

		status, err := svc.Status(ctx)
		require.NoError(t, err)
		assert.False(t, status.Configured)
	})
}

func TestReviewsService_ListForProduct(t *testing.T) {
	deps, svc := setupReviewsTest(t, "")
	deps.authService.EXPECT().AuthenticateUserFromContext(gomock.Any()).Return(staffUser(), nil)
	deps.repo.EXPECT().ListByProductID(gomock.Any(), "p-1").Return([]*domain.ReviewSummary{{ProductID: "p-1", Provider: "judgeme", Rating: 4}}, nil)

	summaries, err := svc.ListForProduct(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Len(t, summaries, 1)
}
