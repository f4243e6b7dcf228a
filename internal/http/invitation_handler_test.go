package http

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/greez/greez/internal/domain"
	"github.com/greez/greez/internal/domain/mocks"
	"github.com/greez/greez/internal/http/middleware"
	"github.com/greez/greez/internal/service"
	"github.com/greez/greez/pkg/logger"
	"github.com/greez/greez/pkg/ratelimiter"
)

func setupInvitationHandlerTest(t *testing.T, acceptLimit func(http.Handler) http.Handler) (*http.ServeMux, *mocks.MockInvitationService) {
	ctrl := gomock.NewController(t)
	mockSvc := mocks.NewMockInvitationService(ctrl)
	if acceptLimit == nil {
		acceptLimit = passthroughAuth
	}

	mux := http.NewServeMux()
	NewInvitationHandler(mockSvc, passthroughAuth, acceptLimit, logger.NewTestLogger(t)).RegisterRoutes(mux)
	return mux, mockSvc
}

func TestInvitationHandler_Create(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		mux, mockSvc := setupInvitationHandlerTest(t, nil)
		mockSvc.EXPECT().
			Create(gomock.Any(), &domain.CreateInvitationRequest{CompanyName: "Acme", Email: "jane@acme.test"}).
			Return(&domain.CreateInvitationResponse{
				Invitation: &domain.Invitation{ID: "inv-1", CompanyName: "Acme", Email: "jane@acme.test"},
				EmailSent:  true,
			}, nil)

		rec := serve(mux, http.MethodPost, "/api/invitations.create", jsonBody(t, map[string]string{"company_name": "Acme", "email": "jane@acme.test"}))

		assert.Equal(t, http.StatusCreated, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, true, body["email_sent"])
		assert.Equal(t, "inv-1", body["invitation"].(map[string]interface{})["id"])
	})

	t.Run("partner forbidden", func(t *testing.T) {
		mux, mockSvc := setupInvitationHandlerTest(t, nil)
		mockSvc.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, domain.ErrStaffOnly)

		rec := serve(mux, http.MethodPost, "/api/invitations.create", jsonBody(t, map[string]string{"company_name": "Acme", "email": "jane@acme.test"}))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("invalid email", func(t *testing.T) {
		mux, mockSvc := setupInvitationHandlerTest(t, nil)
		mockSvc.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, domain.NewValidationError("invalid email format"))

		rec := serve(mux, http.MethodPost, "/api/invitations.create", jsonBody(t, map[string]string{"company_name": "Acme", "email": "nope"}))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"validation error: invalid email format"}`, rec.Body.String())
	})
}

func TestInvitationHandler_List(t *testing.T) {
	mux, mockSvc := setupInvitationHandlerTest(t, nil)
	mockSvc.EXPECT().List(gomock.Any()).Return([]*domain.Invitation{
		{ID: "inv-2", CompanyName: "Beta", Email: "b@beta.test", CreatedAt: time.Now()},
		{ID: "inv-1", CompanyName: "Acme", Email: "jane@acme.test", CreatedAt: time.Now().Add(-time.Hour)},
	}, nil)

	rec := serve(mux, http.MethodGet, "/api/invitations.list", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	invitations := decodeBody(t, rec)["invitations"].([]interface{})
	assert.Len(t, invitations, 2)
	_, hasToken := invitations[0].(map[string]interface{})["token"]
	assert.False(t, hasToken)
}

func TestInvitationHandler_Delete(t *testing.T) {
	t.Run("missing id", func(t *testing.T) {
		mux, _ := setupInvitationHandlerTest(t, nil)

		rec := serve(mux, http.MethodPost, "/api/invitations.delete", jsonBody(t, map[string]string{}))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("has submission", func(t *testing.T) {
		mux, mockSvc := setupInvitationHandlerTest(t, nil)
		mockSvc.EXPECT().Delete(gomock.Any(), "inv-1").
			Return(domain.NewInvalidStateError("invitation", "inv-1", "in_use", "a submission exists for this invitation"))

		rec := serve(mux, http.MethodPost, "/api/invitations.delete", jsonBody(t, map[string]string{"id": "inv-1"}))

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("deleted", func(t *testing.T) {
		mux, mockSvc := setupInvitationHandlerTest(t, nil)
		mockSvc.EXPECT().Delete(gomock.Any(), "inv-1").Return(nil)

		rec := serve(mux, http.MethodPost, "/api/invitations.delete", jsonBody(t, map[string]string{"id": "inv-1"}))

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestInvitationHandler_Resend(t *testing.T) {
	mux, mockSvc := setupInvitationHandlerTest(t, nil)
	mockSvc.EXPECT().Resend(gomock.Any(), "missing").Return(domain.NewNotFoundError("invitation", "missing"))

	rec := serve(mux, http.MethodPost, "/api/invitations.resend", jsonBody(t, map[string]string{"id": "missing"}))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInvitationHandler_Accept(t *testing.T) {
	t.Run("signs the partner in", func(t *testing.T) {
		mux, mockSvc := setupInvitationHandlerTest(t, nil)
		mockSvc.EXPECT().
			Accept(gomock.Any(), &domain.AcceptInvitationRequest{Token: "tok-1"}).
			Return(&domain.AcceptInvitationResponse{
				Token:      "jwt",
				User:       domain.User{ID: "partner-1", Role: domain.UserRolePartner},
				Invitation: &domain.Invitation{ID: "inv-1"},
			}, nil)

		rec := serve(mux, http.MethodPost, "/api/invitations.accept", jsonBody(t, map[string]string{"token": "tok-1"}))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "jwt", decodeBody(t, rec)["token"])
	})

	t.Run("unknown token", func(t *testing.T) {
		mux, mockSvc := setupInvitationHandlerTest(t, nil)
		mockSvc.EXPECT().Accept(gomock.Any(), gomock.Any()).Return(nil, domain.NewNotFoundError("invitation", "nope"))

		rec := serve(mux, http.MethodPost, "/api/invitations.accept", jsonBody(t, map[string]string{"token": "nope"}))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("rate limited per client address", func(t *testing.T) {
		limiter := ratelimiter.NewRateLimiter()
		defer limiter.Stop()
		limiter.SetPolicy(service.RateLimitAcceptInvitation, 1, time.Minute)

		mux, mockSvc := setupInvitationHandlerTest(t, middleware.RateLimitByIP(limiter, service.RateLimitAcceptInvitation))
		mockSvc.EXPECT().Accept(gomock.Any(), gomock.Any()).Return(nil, domain.NewNotFoundError("invitation", "guess-1")).Times(1)

		first := serve(mux, http.MethodPost, "/api/invitations.accept", jsonBody(t, map[string]string{"token": "guess-1"}))
		second := serve(mux, http.MethodPost, "/api/invitations.accept", jsonBody(t, map[string]string{"token": "guess-2"}))

		assert.Equal(t, http.StatusNotFound, first.Code)
		assert.Equal(t, http.StatusTooManyRequests, second.Code)
		assert.NotEmpty(t, second.Header().Get("Retry-After"))
	})
}
