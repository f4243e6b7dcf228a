package http

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/greez/greez/internal/domain"
	"github.com/greez/greez/internal/domain/mocks"
	"github.com/greez/greez/internal/service"
	"github.com/greez/greez/pkg/logger"
)

func setupUserHandlerTest(t *testing.T) (*http.ServeMux, *mocks.MockUserServiceInterface) {
	ctrl := gomock.NewController(t)
	mockUserSvc := mocks.NewMockUserServiceInterface(ctrl)

	mux := http.NewServeMux()
	NewUserHandler(mockUserSvc, passthroughAuth, logger.NewTestLogger(t)).RegisterRoutes(mux)
	return mux, mockUserSvc
}

func TestUserHandler_SignIn(t *testing.T) {
	tests := []struct {
		name         string
		body         interface{}
		setupMock    func(m *mocks.MockUserServiceInterface)
		expectedCode int
		expectedBody string
	}{
		{
			name: "production does not return the code",
			body: domain.SignInInput{Email: "ops@greez.test"},
			setupMock: func(m *mocks.MockUserServiceInterface) {
				m.EXPECT().SignIn(gomock.Any(), domain.SignInInput{Email: "ops@greez.test"}).Return("", nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"message":"Magic code sent to your email"}`,
		},
		{
			name: "development returns the code",
			body: domain.SignInInput{Email: "ops@greez.test"},
			setupMock: func(m *mocks.MockUserServiceInterface) {
				m.EXPECT().SignIn(gomock.Any(), gomock.Any()).Return("123456", nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"message":"Magic code sent to your email","code":"123456"}`,
		},
		{
			name: "rate limited",
			body: domain.SignInInput{Email: "ops@greez.test"},
			setupMock: func(m *mocks.MockUserServiceInterface) {
				m.EXPECT().SignIn(gomock.Any(), gomock.Any()).Return("", service.ErrTooManyAttempts)
			},
			expectedCode: http.StatusTooManyRequests,
		},
		{
			name:         "invalid body",
			body:         `{"email":`,
			setupMock:    func(m *mocks.MockUserServiceInterface) {},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux, mockUserSvc := setupUserHandlerTest(t)
			tt.setupMock(mockUserSvc)

			rec := serve(mux, http.MethodPost, "/api/user.signin", jsonBody(t, tt.body))

			assert.Equal(t, tt.expectedCode, rec.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, rec.Body.String())
			}
		})
	}
}

func TestUserHandler_SignIn_MethodNotAllowed(t *testing.T) {
	mux, _ := setupUserHandlerTest(t)

	rec := serve(mux, http.MethodGet, "/api/user.signin", nil)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestUserHandler_VerifyCode(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mux, mockUserSvc := setupUserHandlerTest(t)
		expiresAt := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
		mockUserSvc.EXPECT().
			VerifyCode(gomock.Any(), domain.VerifyCodeInput{Email: "ops@greez.test", Code: "123456"}).
			Return(&domain.AuthResponse{
				Token:     "jwt",
				User:      domain.User{ID: "staff-1", Email: "ops@greez.test", Role: domain.UserRoleStaff},
				ExpiresAt: expiresAt,
			}, nil)

		rec := serve(mux, http.MethodPost, "/api/user.verify", jsonBody(t, domain.VerifyCodeInput{Email: "ops@greez.test", Code: "123456"}))

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "jwt", body["token"])
	})

	t.Run("invalid code", func(t *testing.T) {
		mux, mockUserSvc := setupUserHandlerTest(t)
		mockUserSvc.EXPECT().VerifyCode(gomock.Any(), gomock.Any()).Return(nil, service.ErrInvalidCode)

		rec := serve(mux, http.MethodPost, "/api/user.verify", jsonBody(t, domain.VerifyCodeInput{Email: "ops@greez.test", Code: "000000"}))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"invalid or expired code"}`, rec.Body.String())
	})
}

func TestUserHandler_GetCurrentUser(t *testing.T) {
	mux, mockUserSvc := setupUserHandlerTest(t)
	mockUserSvc.EXPECT().GetCurrentUser(gomock.Any()).Return(&domain.User{ID: "staff-1", Email: "ops@greez.test", Role: domain.UserRoleStaff}, nil)

	rec := serve(mux, http.MethodGet, "/api/user.me", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	user := decodeBody(t, rec)["user"].(map[string]interface{})
	assert.Equal(t, "staff-1", user["id"])
	assert.Equal(t, "staff", user["role"])
}

func TestUserHandler_Logout(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mux, mockUserSvc := setupUserHandlerTest(t)
		mockUserSvc.EXPECT().Logout(gomock.Any()).Return(nil)

		rec := serve(mux, http.MethodPost, "/api/user.logout", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		mux, mockUserSvc := setupUserHandlerTest(t)
		mockUserSvc.EXPECT().Logout(gomock.Any()).Return(domain.ErrUnauthenticated)

		rec := serve(mux, http.MethodPost, "/api/user.logout", nil)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
