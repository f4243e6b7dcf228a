package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/greez/greez/internal/domain"
	"github.com/greez/greez/pkg/logger"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type SubmissionHandler struct {
	submissionService domain.SubmissionService
	approvalService   domain.ApprovalService
	catalogService    domain.CatalogService
	requireAuth       func(http.Handler) http.Handler
	logger            logger.Logger
}

func NewSubmissionHandler(
	submissionService domain.SubmissionService,
	approvalService domain.ApprovalService,
	catalogService domain.CatalogService,
	requireAuth func(http.Handler) http.Handler,
	logger logger.Logger,
) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService: submissionService,
		approvalService:   approvalService,
		catalogService:    catalogService,
		requireAuth:       requireAuth,
		logger:            logger,
	}
}

func (h *SubmissionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("/api/submissions.create", h.requireAuth(http.HandlerFunc(h.handleCreate)))
	mux.Handle("/api/submissions.get", h.requireAuth(http.HandlerFunc(h.handleGet)))
	mux.Handle("/api/submissions.list", h.requireAuth(http.HandlerFunc(h.handleList)))
	mux.Handle("/api/submissions.advance", h.requireAuth(http.HandlerFunc(h.handleAdvance)))
	mux.Handle("/api/submissions.confirm", h.requireAuth(http.HandlerFunc(h.handleConfirm)))
	mux.Handle("/api/submissions.upsertBrand", h.requireAuth(http.HandlerFunc(h.handleUpsertBrand)))
	mux.Handle("/api/submissions.publish", h.requireAuth(http.HandlerFunc(h.handlePublish)))
	mux.Handle("/api/submissions.export", h.requireAuth(http.HandlerFunc(h.handleExport)))
}

func (h *SubmissionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.CreateSubmissionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	submission, err := h.submissionService.CreateSubmission(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.logger, "submissions.create", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"submission": submission})
}

func (h *SubmissionHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		WriteJSONError(w, "id is required", http.StatusBadRequest)
		return
	}

	submission, err := h.submissionService.GetSubmission(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, "submissions.get", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"submission": submission})
}

func (h *SubmissionHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var filter domain.SubmissionFilter
	if err := filter.FromURLParams(r.URL.Query()); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	submissions, err := h.submissionService.ListSubmissions(r.Context(), filter)
	if err != nil {
		writeServiceError(w, h.logger, "submissions.list", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"submissions": submissions})
}

func (h *SubmissionHandler) handleAdvance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.AdvanceSubmissionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	submission, err := h.submissionService.Advance(r.Context(), req.ID, req.Status)
	if err != nil {
		writeServiceError(w, h.logger, "submissions.advance", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"submission": submission})
}

func (h *SubmissionHandler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.ConfirmSubmissionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	submission, err := h.submissionService.Confirm(r.Context(), req.ID)
	if err != nil {
		writeServiceError(w, h.logger, "submissions.confirm", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"submission": submission})
}

func (h *SubmissionHandler) handleUpsertBrand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.UpsertBrandRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	brand, err := h.submissionService.UpsertBrand(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.logger, "submissions.upsertBrand", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"brand": brand})
}

func (h *SubmissionHandler) handlePublish(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.ConfirmSubmissionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	results, err := h.approvalService.PublishSubmission(r.Context(), req.ID)
	if err != nil {
		writeServiceError(w, h.logger, "submissions.publish", err)
		return
	}

	published := 0
	for _, result := range results {
		if result.Error == "" {
			published++
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"results":   results,
		"published": published,
		"failed":    len(results) - published,
	})
}

func (h *SubmissionHandler) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		WriteJSONError(w, "id is required", http.StatusBadRequest)
		return
	}

	data, err := h.catalogService.ExportSubmission(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, "submissions.export", err)
		return
	}

	filename := fmt.Sprintf("submission-%s-%s.xlsx", id, time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
