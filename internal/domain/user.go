package domain

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
)

//go:generate mockgen -destination mocks/mock_user_repository.go -package mocks github.com/greez/greez/internal/domain UserRepository
//go:generate mockgen -destination mocks/mock_user_service.go -package mocks github.com/greez/greez/internal/domain UserServiceInterface

// Key for storing user ID and session ID in context
type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	SessionIDKey contextKey = "session_id"
	UserRoleKey  contextKey = "role"
)

type UserRole string

const (
	UserRoleStaff   UserRole = "staff"
	UserRolePartner UserRole = "partner"
)

// User represents a staff member or a partner contact
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name,omitempty" db:"name"`
	Role         UserRole  `json:"role" db:"role"`
	InvitationID *string   `json:"invitation_id,omitempty" db:"invitation_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// IsStaff reports whether u is a staff member
func (u *User) IsStaff() bool {
	return u != nil && u.Role == UserRoleStaff
}

// CanAccessInvitation reports whether u may act on the given invitation's submission
func (u *User) CanAccessInvitation(invitationID string) bool {
	if u == nil {
		return false
	}
	if u.IsStaff() {
		return true
	}
	return u.InvitationID != nil && *u.InvitationID == invitationID
}

// ScanUser scans a user row
func ScanUser(scanner interface {
	Scan(dest ...interface{}) error
}) (*User, error) {
	var (
		u            User
		role         string
		invitationID sql.NullString
	)
	if err := scanner.Scan(&u.ID, &u.Email, &u.Name, &role, &invitationID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Role = UserRole(role)
	if invitationID.Valid {
		u.InvitationID = &invitationID.String
	}
	return &u, nil
}

// Session represents a user session
type Session struct {
	ID                 string     `json:"id" db:"id"`
	UserID             string     `json:"user_id" db:"user_id"`
	ExpiresAt          time.Time  `json:"expires_at" db:"expires_at"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	MagicCodeHash      *string    `json:"-" db:"magic_code_hash"`
	MagicCodeExpiresAt *time.Time `json:"-" db:"magic_code_expires_at"`
}

type SignInInput struct {
	Email string `json:"email"`
}

func (i *SignInInput) Validate() error {
	i.Email = strings.ToLower(strings.TrimSpace(i.Email))
	if i.Email == "" {
		return NewValidationError("email is required")
	}
	if !govalidator.IsEmail(i.Email) {
		return NewValidationError("invalid email format")
	}
	return nil
}

type VerifyCodeInput struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (i *VerifyCodeInput) Validate() error {
	i.Email = strings.ToLower(strings.TrimSpace(i.Email))
	i.Code = strings.TrimSpace(i.Code)
	if i.Email == "" || i.Code == "" {
		return NewValidationError("email and code are required")
	}
	return nil
}

type AuthResponse struct {
	Token     string    `json:"token"`
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserServiceInterface defines the interface for user operations
type UserServiceInterface interface {
	// SignIn emails a magic code to a staff member. Returns the code in development.
	SignIn(ctx context.Context, input SignInInput) (string, error)
	VerifyCode(ctx context.Context, input VerifyCodeInput) (*AuthResponse, error)
	GetCurrentUser(ctx context.Context) (*User, error)
	Logout(ctx context.Context) error
}

type UserRepository interface {
	// CreateUser creates a new user in the database
	CreateUser(ctx context.Context, user *User) error

	// GetUserByEmail retrieves a user by their email address
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// GetUserByID retrieves a user by their ID
	GetUserByID(ctx context.Context, id string) (*User, error)

	// GetUserByInvitationID retrieves the partner user of an invitation
	GetUserByInvitationID(ctx context.Context, invitationID string) (*User, error)

	// CreateSession creates a new session for a user
	CreateSession(ctx context.Context, session *Session) error

	// GetSessionByID retrieves a session by its ID
	GetSessionByID(ctx context.Context, id string) (*Session, error)

	// GetPendingSession retrieves the newest session of a user still waiting for a magic code
	GetPendingSession(ctx context.Context, userID string) (*Session, error)

	// UpdateSession updates an existing session
	UpdateSession(ctx context.Context, session *Session) error

	// DeleteSession deletes a session by its ID
	DeleteSession(ctx context.Context, id string) error
}

// ErrUserExists is returned when trying to create a user that already exists
type ErrUserExists struct {
	Message string
}

func (e *ErrUserExists) Error() string {
	return e.Message
}
