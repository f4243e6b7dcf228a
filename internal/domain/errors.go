package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an entity does not exist
type ErrNotFound struct {
	Entity string
	ID     string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found with ID: %s", e.Entity, e.ID)
}

// NewNotFoundError creates a not found error for entity/id
func NewNotFoundError(entity, id string) error {
	return &ErrNotFound{Entity: entity, ID: id}
}

// ValidationError represents an error that occurs due to invalid input or parameters
type ValidationError struct {
	Message string
}

// Error implements the error interface
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Message)
}

// NewValidationError creates a new validation error with the given message
func NewValidationError(message string) error {
	return ValidationError{
		Message: message,
	}
}

// InvalidTransitionError is returned when a submission is asked to move to a
// status that is not the immediate successor of its current status
type InvalidTransitionError struct {
	SubmissionID string
	From         SubmissionStatus
	To           SubmissionStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition for submission %s: %s -> %s", e.SubmissionID, e.From, e.To)
}

// InvalidStateError is returned when a workflow precondition does not hold
type InvalidStateError struct {
	Entity string
	ID     string
	State  string
	Reason string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s %s is in state %q: %s", e.Entity, e.ID, e.State, e.Reason)
}

// NewInvalidStateError creates an invalid state error
func NewInvalidStateError(entity, id, state, reason string) error {
	return &InvalidStateError{Entity: entity, ID: id, State: state, Reason: reason}
}

// StatusMismatchError is returned by repositories when an optimistic status
// update finds the row in a different status than expected
type StatusMismatchError struct {
	ID       string
	Expected string
	Actual   string
}

func (e *StatusMismatchError) Error() string {
	return fmt.Sprintf("status of %s is %q, expected %q", e.ID, e.Actual, e.Expected)
}

// PermissionError represents insufficient permissions for an operation
type PermissionError struct {
	Message string `json:"message"`
}

// Error implements the error interface
func (e *PermissionError) Error() string {
	return e.Message
}

// NewPermissionError creates a new permission error
func NewPermissionError(message string) *PermissionError {
	return &PermissionError{Message: message}
}

// ErrStaffOnly is returned when a partner calls a staff operation
var ErrStaffOnly = NewPermissionError("operation restricted to staff")

// ErrUnauthenticated is returned when no valid session is attached to the context
var ErrUnauthenticated = errors.New("user not authenticated")

// IsNotFound reports whether err wraps an *ErrNotFound
func IsNotFound(err error) bool {
	var nf *ErrNotFound
	return errors.As(err, &nf)
}

// IsValidation reports whether err wraps a ValidationError
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}
