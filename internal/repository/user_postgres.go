package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opencensus.io/trace"

	"github.com/greez/greez/internal/domain"
	"github.com/greez/greez/pkg/tracing"
)

const userColumns = `id, email, name, role, invitation_id, created_at, updated_at`

const sessionColumns = `id, user_id, expires_at, created_at, magic_code_hash, magic_code_expires_at`

type userRepository struct {
	systemDB *sql.DB
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{systemDB: db}
}

func (r *userRepository) CreateUser(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = domain.UserRolePartner
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (id, email, name, role, invitation_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.systemDB.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		string(user.Role),
		user.InvitationID,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.ErrUserExists{Message: "user already exists"}
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := domain.ScanUser(r.systemDB.QueryRowContext(ctx, query, email))
	if isNoRows(err) {
		return nil, domain.NewNotFoundError("user", email)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *userRepository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "UserRepository", "GetUserByID")
	defer span.End()
	span.AddAttributes(trace.StringAttribute("user.id", id))

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := domain.ScanUser(r.systemDB.QueryRowContext(ctx, query, id))
	if isNoRows(err) {
		return nil, domain.NewNotFoundError("user", id)
	}
	if err != nil {
		tracing.MarkSpanError(ctx, err)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *userRepository) GetUserByInvitationID(ctx context.Context, invitationID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE invitation_id = $1`

	user, err := domain.ScanUser(r.systemDB.QueryRowContext(ctx, query, invitationID))
	if isNoRows(err) {
		return nil, domain.NewNotFoundError("user", invitationID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by invitation: %w", err)
	}
	return user, nil
}

func (r *userRepository) CreateSession(ctx context.Context, session *domain.Session) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	session.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO user_sessions (id, user_id, expires_at, created_at, magic_code_hash, magic_code_expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.systemDB.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		session.ExpiresAt,
		session.CreatedAt,
		session.MagicCodeHash,
		session.MagicCodeExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *userRepository) GetSessionByID(ctx context.Context, id string) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM user_sessions WHERE id = $1`

	session, err := scanSession(r.systemDB.QueryRowContext(ctx, query, id))
	if isNoRows(err) {
		return nil, domain.NewNotFoundError("session", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

func (r *userRepository) GetPendingSession(ctx context.Context, userID string) (*domain.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM user_sessions
		WHERE user_id = $1 AND magic_code_hash IS NOT NULL
		ORDER BY created_at DESC
		LIMIT 1
	`
	session, err := scanSession(r.systemDB.QueryRowContext(ctx, query, userID))
	if isNoRows(err) {
		return nil, domain.NewNotFoundError("session", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending session: %w", err)
	}
	return session, nil
}

func (r *userRepository) UpdateSession(ctx context.Context, session *domain.Session) error {
	query := `
		UPDATE user_sessions
		SET expires_at = $2, magic_code_hash = $3, magic_code_expires_at = $4
		WHERE id = $1
	`
	result, err := r.systemDB.ExecContext(ctx, query,
		session.ID,
		session.ExpiresAt,
		session.MagicCodeHash,
		session.MagicCodeExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.NewNotFoundError("session", session.ID)
	}
	return nil
}

func (r *userRepository) DeleteSession(ctx context.Context, id string) error {
	result, err := r.systemDB.ExecContext(ctx, `DELETE FROM user_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.NewNotFoundError("session", id)
	}
	return nil
}

func scanSession(scanner interface {
	Scan(dest ...interface{}) error
}) (*domain.Session, error) {
	var (
		session   domain.Session
		codeHash  sql.NullString
		codeUntil sql.NullTime
	)
	err := scanner.Scan(
		&session.ID,
		&session.UserID,
		&session.ExpiresAt,
		&session.CreatedAt,
		&codeHash,
		&codeUntil,
	)
	if err != nil {
		return nil, err
	}
	if codeHash.Valid {
		session.MagicCodeHash = &codeHash.String
	}
	if codeUntil.Valid {
		session.MagicCodeExpiresAt = &codeUntil.Time
	}
	return &session, nil
}
