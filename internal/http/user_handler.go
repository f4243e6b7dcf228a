package http

import (
	"net/http"

	"github.com/greez/greez/internal/domain"
	"github.com/greez/greez/pkg/logger"
)

type UserHandler struct {
	userService domain.UserServiceInterface
	requireAuth func(http.Handler) http.Handler
	logger      logger.Logger
}

func NewUserHandler(userService domain.UserServiceInterface, requireAuth func(http.Handler) http.Handler, logger logger.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		requireAuth: requireAuth,
		logger:      logger,
	}
}

func (h *UserHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var input domain.SignInInput
	if !decodeJSON(w, r, &input) {
		return
	}

	code, err := h.userService.SignIn(r.Context(), input)
	if err != nil {
		writeServiceError(w, h.logger, "user.signin", err)
		return
	}

	// The code is only returned in development
	response := map[string]string{
		"message": "Magic code sent to your email",
	}
	if code != "" {
		response["code"] = code
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *UserHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var input domain.VerifyCodeInput
	if !decodeJSON(w, r, &input) {
		return
	}

	response, err := h.userService.VerifyCode(r.Context(), input)
	if err != nil {
		writeServiceError(w, h.logger, "user.verify", err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// GetCurrentUser returns the authenticated user
func (h *UserHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user, err := h.userService.GetCurrentUser(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, "user.me", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.userService.Logout(r.Context()); err != nil {
		writeServiceError(w, h.logger, "user.logout", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *UserHandler) RegisterRoutes(mux *http.ServeMux) {
	// Public routes
	mux.HandleFunc("/api/user.signin", h.SignIn)
	mux.HandleFunc("/api/user.verify", h.VerifyCode)

	// Protected routes
	mux.Handle("/api/user.me", h.requireAuth(http.HandlerFunc(h.GetCurrentUser)))
	mux.Handle("/api/user.logout", h.requireAuth(http.HandlerFunc(h.Logout)))
}
