package domain

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
)

//go:generate mockgen -destination mocks/mock_invitation_repository.go -package mocks github.com/greez/greez/internal/domain InvitationRepository
//go:generate mockgen -destination mocks/mock_invitation_service.go -package mocks github.com/greez/greez/internal/domain InvitationService

// InvitationTokenLength is the length of generated invitation tokens
const InvitationTokenLength = 32

// Invitation is a staff-issued grant allowing a partner company to submit products
type Invitation struct {
	ID          string    `json:"id"`
	CompanyName string    `json:"company_name"`
	Email       string    `json:"email"`
	ContactName *string   `json:"contact_name,omitempty"`
	Token       string    `json:"-"`
	InvitedBy   string    `json:"invited_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// ScanInvitation scans an invitation row
func ScanInvitation(scanner interface {
	Scan(dest ...interface{}) error
}) (*Invitation, error) {
	var (
		inv         Invitation
		contactName sql.NullString
	)

	if err := scanner.Scan(
		&inv.ID,
		&inv.CompanyName,
		&inv.Email,
		&contactName,
		&inv.Token,
		&inv.InvitedBy,
		&inv.CreatedAt,
	); err != nil {
		return nil, err
	}

	if contactName.Valid {
		inv.ContactName = &contactName.String
	}

	return &inv, nil
}

// ContactDisplayName returns the contact name, or an empty string
func (i *Invitation) ContactDisplayName() string {
	if i.ContactName == nil {
		return ""
	}
	return *i.ContactName
}

type CreateInvitationRequest struct {
	CompanyName string  `json:"company_name"`
	Email       string  `json:"email"`
	ContactName *string `json:"contact_name,omitempty"`
}

// Validate normalizes and validates the request
func (r *CreateInvitationRequest) Validate() error {
	r.CompanyName = strings.TrimSpace(r.CompanyName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))

	if r.CompanyName == "" {
		return NewValidationError("company_name is required")
	}
	if len(r.CompanyName) > 255 {
		return NewValidationError("company_name length must be between 1 and 255")
	}
	if r.Email == "" {
		return NewValidationError("email is required")
	}
	if !govalidator.IsEmail(r.Email) {
		return NewValidationError("invalid email format")
	}
	if r.ContactName != nil {
		name := strings.TrimSpace(*r.ContactName)
		if name == "" {
			r.ContactName = nil
		} else if len(name) > 255 {
			return NewValidationError("contact_name length must be between 1 and 255")
		} else {
			r.ContactName = &name
		}
	}
	return nil
}

type DeleteInvitationRequest struct {
	ID string `json:"id"`
}

func (r *DeleteInvitationRequest) Validate() error {
	if r.ID == "" {
		return NewValidationError("id is required")
	}
	return nil
}

type AcceptInvitationRequest struct {
	Token string `json:"token"`
	Name  string `json:"name,omitempty"`
}

func (r *AcceptInvitationRequest) Validate() error {
	r.Token = strings.TrimSpace(r.Token)
	if r.Token == "" {
		return NewValidationError("token is required")
	}
	if len(r.Token) > 128 {
		return NewValidationError("token is too long")
	}
	return nil
}

// CreateInvitationResponse carries the invitation and whether the email went out.
// Token is only populated in development.
type CreateInvitationResponse struct {
	Invitation *Invitation `json:"invitation"`
	EmailSent  bool        `json:"email_sent"`
	Token      string      `json:"token,omitempty"`
}

// AcceptInvitationResponse is returned to a partner opening their invitation
type AcceptInvitationResponse struct {
	Token      string      `json:"token"`
	ExpiresAt  time.Time   `json:"expires_at"`
	User       User        `json:"user"`
	Invitation *Invitation `json:"invitation"`
	Submission *Submission `json:"submission,omitempty"`
}

// InvitationService is the Invitation Registry
type InvitationService interface {
	// Create issues an invitation and emails it to the partner. Staff only.
	Create(ctx context.Context, req *CreateInvitationRequest) (*CreateInvitationResponse, error)

	// Delete removes an invitation that has no submission. Staff only.
	Delete(ctx context.Context, id string) error

	// FindByToken resolves an invitation token
	FindByToken(ctx context.Context, token string) (*Invitation, error)

	// List returns every invitation, newest first. Staff only.
	List(ctx context.Context) ([]*Invitation, error)

	// Resend emails the invitation again. Staff only.
	Resend(ctx context.Context, id string) error

	// Accept signs the partner in through their invitation token
	Accept(ctx context.Context, req *AcceptInvitationRequest) (*AcceptInvitationResponse, error)
}

type InvitationRepository interface {
	// Create inserts a new invitation
	Create(ctx context.Context, invitation *Invitation) error

	// GetByID retrieves an invitation by ID
	GetByID(ctx context.Context, id string) (*Invitation, error)

	// GetByToken retrieves an invitation by its token
	GetByToken(ctx context.Context, token string) (*Invitation, error)

	// List retrieves every invitation, newest first
	List(ctx context.Context) ([]*Invitation, error)

	// Delete removes an invitation. Returns *InvalidStateError when a
	// submission references it.
	Delete(ctx context.Context, id string) error
}
