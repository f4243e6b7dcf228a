package domain

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
)

//go:generate mockgen -destination mocks/mock_submission_repository.go -package mocks github.com/greez/greez/internal/domain SubmissionRepository
//go:generate mockgen -destination mocks/mock_submission_service.go -package mocks github.com/greez/greez/internal/domain SubmissionService

// SubmissionStatus is the position of a partner submission in the onboarding workflow
type SubmissionStatus string

const (
	SubmissionStatusStep1Completed  SubmissionStatus = "step1_completed"
	SubmissionStatusStep2InProgress SubmissionStatus = "step2_in_progress"
	SubmissionStatusStep2Completed  SubmissionStatus = "step2_completed"
	SubmissionStatusSubmitted       SubmissionStatus = "submitted"
	SubmissionStatusConfirmed       SubmissionStatus = "confirmed"
	SubmissionStatusInitial                          = SubmissionStatusStep1Completed
)

// SubmissionStatuses lists every status in workflow order
var SubmissionStatuses = []SubmissionStatus{
	SubmissionStatusStep1Completed,
	SubmissionStatusStep2InProgress,
	SubmissionStatusStep2Completed,
	SubmissionStatusSubmitted,
	SubmissionStatusConfirmed,
}

// SubmissionTransition is one allowed (current, target) pair
type SubmissionTransition struct {
	From SubmissionStatus
	To   SubmissionStatus
	// StaffOnly transitions are only reachable through Confirm
	StaffOnly bool
}

// SubmissionTransitions is the complete transition table. The workflow is
// forward only and every pair moves exactly one step.
var SubmissionTransitions = []SubmissionTransition{
	{From: SubmissionStatusStep1Completed, To: SubmissionStatusStep2InProgress},
	{From: SubmissionStatusStep2InProgress, To: SubmissionStatusStep2Completed},
	{From: SubmissionStatusStep2Completed, To: SubmissionStatusSubmitted},
	{From: SubmissionStatusSubmitted, To: SubmissionStatusConfirmed, StaffOnly: true},
}

// IsValid reports whether s is a known status
func (s SubmissionStatus) IsValid() bool {
	for _, status := range SubmissionStatuses {
		if status == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s
func (s SubmissionStatus) IsTerminal() bool {
	_, ok := s.Next()
	return !ok
}

// Next returns the immediate successor of s
func (s SubmissionStatus) Next() (SubmissionStatus, bool) {
	for _, t := range SubmissionTransitions {
		if t.From == s {
			return t.To, true
		}
	}
	return "", false
}

// AcceptsProducts reports whether partners may still add or edit products
func (s SubmissionStatus) AcceptsProducts() bool {
	return s != SubmissionStatusSubmitted && s != SubmissionStatusConfirmed
}

// IsReviewable reports whether staff may approve, reject or publish products
func (s SubmissionStatus) IsReviewable() bool {
	return s == SubmissionStatusSubmitted || s == SubmissionStatusConfirmed
}

// LookupTransition returns the table entry for from -> to
func LookupTransition(from, to SubmissionStatus) (SubmissionTransition, bool) {
	for _, t := range SubmissionTransitions {
		if t.From == from && t.To == to {
			return t, true
		}
	}
	return SubmissionTransition{}, false
}

// CanAdvance reports whether Advance may move a submission from -> to
func CanAdvance(from, to SubmissionStatus) bool {
	t, ok := LookupTransition(from, to)
	return ok && !t.StaffOnly
}

// Brand describes the partner company's brand, captured in the first step
type Brand struct {
	ID           string    `json:"id"`
	SubmissionID string    `json:"submission_id"`
	Name         string    `json:"name"`
	ContactEmail string    `json:"contact_email"`
	LogoURL      *string   `json:"logo_url,omitempty"`
	Description  *string   `json:"description,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Validate performs validation on the brand fields
func (b *Brand) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return NewValidationError("brand name is required")
	}
	if len(b.Name) > 255 {
		return NewValidationError("brand name length must be between 1 and 255")
	}
	if b.ContactEmail == "" {
		return NewValidationError("brand contact_email is required")
	}
	if !govalidator.IsEmail(b.ContactEmail) {
		return NewValidationError("brand contact_email is invalid")
	}
	if b.LogoURL != nil && *b.LogoURL != "" && !govalidator.IsURL(*b.LogoURL) {
		return NewValidationError("brand logo_url is invalid")
	}
	return nil
}

// Submission is the per-partner onboarding record
type Submission struct {
	ID           string           `json:"id"`
	InvitationID string           `json:"invitation_id"`
	Status       SubmissionStatus `json:"status"`
	ProductCount int              `json:"product_count"`
	Brand        *Brand           `json:"brand,omitempty"`
	SubmittedAt  *time.Time       `json:"submitted_at,omitempty"`
	ConfirmedAt  *time.Time       `json:"confirmed_at,omitempty"`
	ConfirmedBy  *string          `json:"confirmed_by,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// ScanSubmission scans a submission row, without its brand
func ScanSubmission(scanner interface {
	Scan(dest ...interface{}) error
}) (*Submission, error) {
	var (
		s           Submission
		status      string
		submittedAt sql.NullTime
		confirmedAt sql.NullTime
		confirmedBy sql.NullString
	)

	if err := scanner.Scan(
		&s.ID,
		&s.InvitationID,
		&status,
		&s.ProductCount,
		&submittedAt,
		&confirmedAt,
		&confirmedBy,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}

	s.Status = SubmissionStatus(status)
	if submittedAt.Valid {
		s.SubmittedAt = &submittedAt.Time
	}
	if confirmedAt.Valid {
		s.ConfirmedAt = &confirmedAt.Time
	}
	if confirmedBy.Valid {
		s.ConfirmedBy = &confirmedBy.String
	}

	return &s, nil
}

// Request/Response types

type CreateSubmissionRequest struct {
	InvitationID string `json:"invitation_id"`
	Brand        *Brand `json:"brand,omitempty"`
}

func (r *CreateSubmissionRequest) Validate() error {
	if r.InvitationID == "" {
		return NewValidationError("invitation_id is required")
	}
	if r.Brand != nil {
		if err := r.Brand.Validate(); err != nil {
			return err
		}
	}
	return nil
}

type AdvanceSubmissionRequest struct {
	ID     string           `json:"id"`
	Status SubmissionStatus `json:"status"`
}

func (r *AdvanceSubmissionRequest) Validate() error {
	if r.ID == "" {
		return NewValidationError("id is required")
	}
	if !r.Status.IsValid() {
		return NewValidationError(fmt.Sprintf("unknown status %q", r.Status))
	}
	return nil
}

type ConfirmSubmissionRequest struct {
	ID string `json:"id"`
}

func (r *ConfirmSubmissionRequest) Validate() error {
	if r.ID == "" {
		return NewValidationError("id is required")
	}
	return nil
}

type UpsertBrandRequest struct {
	SubmissionID string  `json:"submission_id"`
	Name         string  `json:"name"`
	ContactEmail string  `json:"contact_email"`
	LogoURL      *string `json:"logo_url,omitempty"`
	Description  *string `json:"description,omitempty"`
}

func (r *UpsertBrandRequest) Validate() (*Brand, error) {
	if r.SubmissionID == "" {
		return nil, NewValidationError("submission_id is required")
	}
	brand := &Brand{
		SubmissionID: r.SubmissionID,
		Name:         strings.TrimSpace(r.Name),
		ContactEmail: strings.TrimSpace(r.ContactEmail),
		LogoURL:      r.LogoURL,
		Description:  r.Description,
	}
	if err := brand.Validate(); err != nil {
		return nil, err
	}
	return brand, nil
}

// SubmissionFilter narrows ListSubmissions
type SubmissionFilter struct {
	Status SubmissionStatus
	Limit  int
	Offset int
}

func (f *SubmissionFilter) FromURLParams(queryParams url.Values) error {
	if status := queryParams.Get("status"); status != "" {
		f.Status = SubmissionStatus(status)
		if !f.Status.IsValid() {
			return NewValidationError(fmt.Sprintf("unknown status %q", status))
		}
	}

	limit, offset, err := parsePagination(queryParams)
	if err != nil {
		return err
	}
	f.Limit = limit
	f.Offset = offset
	return nil
}

func parsePagination(queryParams url.Values) (limit, offset int, err error) {
	limit = 50
	if v := queryParams.Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 1 || limit > 200 {
			return 0, 0, NewValidationError("limit must be between 1 and 200")
		}
	}
	if v := queryParams.Get("offset"); v != "" {
		offset, err = strconv.Atoi(v)
		if err != nil || offset < 0 {
			return 0, 0, NewValidationError("offset must be a positive integer")
		}
	}
	return limit, offset, nil
}

// SubmissionService is the Submission State Tracker
type SubmissionService interface {
	// CreateSubmission opens the submission of an invitation at step1_completed
	CreateSubmission(ctx context.Context, req *CreateSubmissionRequest) (*Submission, error)

	// GetSubmission returns a submission with its brand
	GetSubmission(ctx context.Context, id string) (*Submission, error)

	// ListSubmissions returns submissions for staff review
	ListSubmissions(ctx context.Context, filter SubmissionFilter) ([]*Submission, error)

	// Advance moves a submission to the immediate successor of its status
	Advance(ctx context.Context, id string, target SubmissionStatus) (*Submission, error)

	// Confirm moves a submitted submission to confirmed. Staff only.
	Confirm(ctx context.Context, id string) (*Submission, error)

	// UpsertBrand creates or replaces the brand of a submission
	UpsertBrand(ctx context.Context, req *UpsertBrandRequest) (*Brand, error)
}

type SubmissionRepository interface {
	// Create inserts a submission and its optional brand in one transaction
	Create(ctx context.Context, submission *Submission) error

	// GetByID retrieves a submission with its brand
	GetByID(ctx context.Context, id string) (*Submission, error)

	// GetByInvitationID retrieves the submission of an invitation
	GetByInvitationID(ctx context.Context, invitationID string) (*Submission, error)

	// List retrieves submissions ordered by creation time, newest first
	List(ctx context.Context, filter SubmissionFilter) ([]*Submission, error)

	// TransitionStatus sets status to `to` only if it is currently `from`.
	// Returns *StatusMismatchError when the row is in another status.
	TransitionStatus(ctx context.Context, id string, from, to SubmissionStatus, actorID string) (*Submission, error)

	// UpsertBrand creates or replaces the brand of a submission
	UpsertBrand(ctx context.Context, brand *Brand) error
}
