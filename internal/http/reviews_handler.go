package http

import (
	"io"
	"net/http"

	"github.com/greez/greez/internal/domain"
	"github.com/greez/greez/pkg/logger"
)

// maxWebhookBodyBytes bounds provider webhook payloads
const maxWebhookBodyBytes = 256 << 10

type ReviewsHandler struct {
	reviewsService domain.ReviewsService
	requireAuth    func(http.Handler) http.Handler
	logger         logger.Logger
}

func NewReviewsHandler(reviewsService domain.ReviewsService, requireAuth func(http.Handler) http.Handler, logger logger.Logger) *ReviewsHandler {
	return &ReviewsHandler{
		reviewsService: reviewsService,
		requireAuth:    requireAuth,
		logger:         logger,
	}
}

func (h *ReviewsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/webhooks/reviews", h.handleWebhook)

	mux.Handle("/api/reviews.status", h.requireAuth(http.HandlerFunc(h.handleStatus)))
	mux.Handle("/api/reviews.list", h.requireAuth(http.HandlerFunc(h.handleList)))
}

func (h *ReviewsHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status, err := h.reviewsService.Status(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, "reviews.status", err)
		return
	}

	writeJSON(w, http.StatusOK, status)
}

func (h *ReviewsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	productID := r.URL.Query().Get("product_id")
	if productID == "" {
		WriteJSONError(w, "product_id is required", http.StatusBadRequest)
		return
	}

	summaries, err := h.reviewsService.ListForProduct(r.Context(), productID)
	if err != nil {
		writeServiceError(w, h.logger, "reviews.list", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"reviews": summaries})
}

func (h *ReviewsHandler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodyBytes+1))
	if err != nil {
		WriteJSONError(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	if len(payload) > maxWebhookBodyBytes {
		WriteJSONError(w, "Payload too large", http.StatusRequestEntityTooLarge)
		return
	}

	if err := h.reviewsService.HandleWebhook(r.Context(), payload, r.Header); err != nil {
		writeServiceError(w, h.logger, "webhooks.reviews", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
