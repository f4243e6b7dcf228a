package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/greez/greez/internal/domain"
	"github.com/greez/greez/internal/service"
	"github.com/greez/greez/pkg/logger"
)

// maxJSONBodyBytes bounds JSON request bodies
const maxJSONBodyBytes = 1 << 20

// WriteJSONError writes a JSON error response with the given message and status code.
// It sets the Content-Type header to application/json and automatically formats
// the response as {"error": "message"}.
func WriteJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// writeJSON writes a JSON response with the given status code and data.
// It sets the Content-Type header to application/json.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a bounded JSON body into v and writes a 400 on failure
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)).Decode(v); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// statusForError maps service errors to HTTP status codes
func statusForError(err error) int {
	var (
		validationErr domain.ValidationError
		notFoundErr   *domain.ErrNotFound
		transitionErr *domain.InvalidTransitionError
		stateErr      *domain.InvalidStateError
		publishErr    *domain.PublicationError
		permissionErr *domain.PermissionError
	)

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.As(err, &transitionErr), errors.As(err, &stateErr):
		return http.StatusConflict
	case errors.As(err, &publishErr):
		if publishErr.IsTransient() {
			return http.StatusServiceUnavailable
		}
		return http.StatusBadGateway
	case errors.As(err, &permissionErr):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, service.ErrSessionExpired),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrInvalidCode),
		errors.Is(err, service.ErrInvalidWebhook):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrTooManyAttempts):
		return http.StatusTooManyRequests
	case errors.Is(err, service.ErrContentGeneratorDisabled),
		errors.Is(err, service.ErrReviewsNotConfigured),
		errors.Is(err, service.ErrImageStorageDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError writes err with its mapped status. Unexpected errors are
// logged and hidden from the client.
func writeServiceError(w http.ResponseWriter, log logger.Logger, operation string, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		log.WithField("operation", operation).WithField("error", err.Error()).Error("Request failed")
		WriteJSONError(w, "Internal server error", status)
		return
	}
	WriteJSONError(w, err.Error(), status)
}
