package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/greez/greez/internal/domain"
)

var invitationColumns = []string{
	"id", "company_name", "email", "contact_name", "token", "invited_by", "created_at",
}

type invitationRepository struct {
	systemDB *sql.DB
}

// NewInvitationRepository creates a new PostgreSQL invitation repository
func NewInvitationRepository(db *sql.DB) domain.InvitationRepository {
	return &invitationRepository{systemDB: db}
}

func (r *invitationRepository) Create(ctx context.Context, invitation *domain.Invitation) error {
	if invitation.ID == "" {
		invitation.ID = uuid.New().String()
	}
	invitation.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO invitations (id, company_name, email, contact_name, token, invited_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.systemDB.ExecContext(ctx, query,
		invitation.ID,
		invitation.CompanyName,
		invitation.Email,
		invitation.ContactName,
		invitation.Token,
		invitation.InvitedBy,
		invitation.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("invitation token already in use: %w", err)
		}
		return fmt.Errorf("failed to create invitation: %w", err)
	}
	return nil
}

func (r *invitationRepository) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	query := fmt.Sprintf(`SELECT %s FROM invitations WHERE id = $1`, columns(invitationColumns))

	invitation, err := domain.ScanInvitation(r.systemDB.QueryRowContext(ctx, query, id))
	if isNoRows(err) {
		return nil, domain.NewNotFoundError("invitation", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	return invitation, nil
}

func (r *invitationRepository) GetByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	query := fmt.Sprintf(`SELECT %s FROM invitations WHERE token = $1`, columns(invitationColumns))

	invitation, err := domain.ScanInvitation(r.systemDB.QueryRowContext(ctx, query, token))
	if isNoRows(err) {
		// the token itself is a credential and stays out of error messages
		return nil, domain.NewNotFoundError("invitation", "token")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation by token: %w", err)
	}
	return invitation, nil
}

func (r *invitationRepository) List(ctx context.Context) ([]*domain.Invitation, error) {
	query := fmt.Sprintf(`SELECT %s FROM invitations ORDER BY created_at DESC, id`, columns(invitationColumns))

	rows, err := r.systemDB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()

	invitations := []*domain.Invitation{}
	for rows.Next() {
		invitation, err := domain.ScanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		invitations = append(invitations, invitation)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invitations: %w", err)
	}
	return invitations, nil
}

// Delete removes an invitation only when no submission references it
func (r *invitationRepository) Delete(ctx context.Context, id string) error {
	query := `
		DELETE FROM invitations
		WHERE id = $1
		AND NOT EXISTS (SELECT 1 FROM submissions WHERE invitation_id = $1)
	`
	result, err := r.systemDB.ExecContext(ctx, query, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return invitationHasSubmission(id)
		}
		if isNoRows(err) {
			return domain.NewNotFoundError("invitation", id)
		}
		return fmt.Errorf("failed to delete invitation: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}

	var exists bool
	err = r.systemDB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM invitations WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check invitation existence: %w", err)
	}
	if !exists {
		return domain.NewNotFoundError("invitation", id)
	}
	return invitationHasSubmission(id)
}

func invitationHasSubmission(id string) error {
	return domain.NewInvalidStateError("invitation", id, "in_use", "a submission exists for this invitation")
}
