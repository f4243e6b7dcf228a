package http

import (
	"net/http"

	"github.com/greez/greez/internal/domain"
	"github.com/greez/greez/pkg/logger"
)

type InvitationHandler struct {
	invitationService domain.InvitationService
	requireAuth       func(http.Handler) http.Handler
	acceptLimit       func(http.Handler) http.Handler
	logger            logger.Logger
}

// NewInvitationHandler creates the invitation handler. acceptLimit throttles
// the public accept endpoint.
func NewInvitationHandler(
	invitationService domain.InvitationService,
	requireAuth func(http.Handler) http.Handler,
	acceptLimit func(http.Handler) http.Handler,
	logger logger.Logger,
) *InvitationHandler {
	return &InvitationHandler{
		invitationService: invitationService,
		requireAuth:       requireAuth,
		acceptLimit:       acceptLimit,
		logger:            logger,
	}
}

func (h *InvitationHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("/api/invitations.accept", h.acceptLimit(http.HandlerFunc(h.handleAccept)))

	mux.Handle("/api/invitations.create", h.requireAuth(http.HandlerFunc(h.handleCreate)))
	mux.Handle("/api/invitations.list", h.requireAuth(http.HandlerFunc(h.handleList)))
	mux.Handle("/api/invitations.delete", h.requireAuth(http.HandlerFunc(h.handleDelete)))
	mux.Handle("/api/invitations.resend", h.requireAuth(http.HandlerFunc(h.handleResend)))
}

func (h *InvitationHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.CreateInvitationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	response, err := h.invitationService.Create(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.logger, "invitations.create", err)
		return
	}

	writeJSON(w, http.StatusCreated, response)
}

func (h *InvitationHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	invitations, err := h.invitationService.List(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, "invitations.list", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"invitations": invitations})
}

func (h *InvitationHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.DeleteInvitationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.invitationService.Delete(r.Context(), req.ID); err != nil {
		writeServiceError(w, h.logger, "invitations.delete", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *InvitationHandler) handleResend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.DeleteInvitationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.invitationService.Resend(r.Context(), req.ID); err != nil {
		writeServiceError(w, h.logger, "invitations.resend", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *InvitationHandler) handleAccept(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.AcceptInvitationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	response, err := h.invitationService.Accept(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.logger, "invitations.accept", err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}
