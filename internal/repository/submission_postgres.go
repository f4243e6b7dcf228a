package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"go.opencensus.io/trace"

	"github.com/greez/greez/internal/domain"
	"github.com/greez/greez/pkg/tracing"
)

var submissionColumns = []string{
	"id", "invitation_id", "status", "product_count", "submitted_at",
	"confirmed_at", "confirmed_by", "created_at", "updated_at",
}

var brandColumns = []string{
	"id", "submission_id", "name", "contact_email", "logo_url", "description", "created_at", "updated_at",
}

type submissionRepository struct {
	systemDB *sql.DB
}

// NewSubmissionRepository creates a new PostgreSQL submission repository
func NewSubmissionRepository(db *sql.DB) domain.SubmissionRepository {
	return &submissionRepository{systemDB: db}
}

func (r *submissionRepository) Create(ctx context.Context, submission *domain.Submission) error {
	if submission.ID == "" {
		submission.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	submission.Status = domain.SubmissionStatusInitial
	submission.ProductCount = 0
	submission.CreatedAt = now
	submission.UpdatedAt = now

	return withTransaction(ctx, r.systemDB, func(tx *sql.Tx) error {
		query := `
			INSERT INTO submissions (id, invitation_id, status, product_count, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		_, err := tx.ExecContext(ctx, query,
			submission.ID,
			submission.InvitationID,
			submission.Status,
			submission.ProductCount,
			submission.CreatedAt,
			submission.UpdatedAt,
		)
		if err != nil {
			switch {
			case isUniqueViolation(err):
				return domain.NewInvalidStateError("invitation", submission.InvitationID, "in_use", "invitation already has a submission")
			case isForeignKeyViolation(err), isNoRows(err):
				return domain.NewNotFoundError("invitation", submission.InvitationID)
			}
			return fmt.Errorf("failed to create submission: %w", err)
		}

		if submission.Brand == nil {
			return nil
		}
		submission.Brand.SubmissionID = submission.ID
		return upsertBrand(ctx, tx, submission.Brand)
	})
}

func (r *submissionRepository) GetByID(ctx context.Context, id string) (*domain.Submission, error) {
	query := fmt.Sprintf(`SELECT %s FROM submissions WHERE id = $1`, columns(submissionColumns))

	submission, err := domain.ScanSubmission(r.systemDB.QueryRowContext(ctx, query, id))
	if isNoRows(err) {
		return nil, domain.NewNotFoundError("submission", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	if err := r.loadBrand(ctx, submission); err != nil {
		return nil, err
	}
	return submission, nil
}

func (r *submissionRepository) GetByInvitationID(ctx context.Context, invitationID string) (*domain.Submission, error) {
	query := fmt.Sprintf(`SELECT %s FROM submissions WHERE invitation_id = $1`, columns(submissionColumns))

	submission, err := domain.ScanSubmission(r.systemDB.QueryRowContext(ctx, query, invitationID))
	if isNoRows(err) {
		return nil, domain.NewNotFoundError("submission", invitationID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission by invitation: %w", err)
	}

	if err := r.loadBrand(ctx, submission); err != nil {
		return nil, err
	}
	return submission, nil
}

func (r *submissionRepository) List(ctx context.Context, filter domain.SubmissionFilter) ([]*domain.Submission, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	query := psql.Select(submissionColumns...).
		From("submissions").
		OrderBy("created_at DESC", "id")

	if filter.Status != "" {
		query = query.Where(sq.Eq{"status": string(filter.Status)})
	}
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.systemDB.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	submissions := []*domain.Submission{}
	for rows.Next() {
		submission, err := domain.ScanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		submissions = append(submissions, submission)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate submissions: %w", err)
	}
	return submissions, nil
}

// TransitionStatus is a single optimistic UPDATE guarded by the expected
// status. Zero affected rows are re-read to tell a missing row from a stale one.
func (r *submissionRepository) TransitionStatus(ctx context.Context, id string, from, to domain.SubmissionStatus, actorID string) (*domain.Submission, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "SubmissionRepository", "TransitionStatus")
	defer span.End()
	span.AddAttributes(
		trace.StringAttribute("submission.id", id),
		trace.StringAttribute("submission.from", string(from)),
		trace.StringAttribute("submission.to", string(to)),
	)

	now := time.Now().UTC()
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	query := psql.Update("submissions").
		Set("status", string(to)).
		Set("updated_at", now)

	switch to {
	case domain.SubmissionStatusSubmitted:
		query = query.Set("submitted_at", now)
	case domain.SubmissionStatusConfirmed:
		query = query.Set("confirmed_at", now)
		if actorID != "" {
			query = query.Set("confirmed_by", actorID)
		}
	}

	query = query.
		Where(sq.Eq{"id": id, "status": string(from)}).
		Suffix("RETURNING " + columns(submissionColumns))

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update query: %w", err)
	}

	submission, err := domain.ScanSubmission(r.systemDB.QueryRowContext(ctx, sqlQuery, args...))
	if err == nil {
		if err := r.loadBrand(ctx, submission); err != nil {
			return nil, err
		}
		return submission, nil
	}
	if !isNoRows(err) {
		tracing.MarkSpanError(ctx, err)
		return nil, fmt.Errorf("failed to update submission status: %w", err)
	}

	var current string
	err = r.systemDB.QueryRowContext(ctx, `SELECT status FROM submissions WHERE id = $1`, id).Scan(&current)
	if isNoRows(err) {
		return nil, domain.NewNotFoundError("submission", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read submission status: %w", err)
	}

	return nil, &domain.StatusMismatchError{ID: id, Expected: string(from), Actual: current}
}

func (r *submissionRepository) UpsertBrand(ctx context.Context, brand *domain.Brand) error {
	return withTransaction(ctx, r.systemDB, func(tx *sql.Tx) error {
		return upsertBrand(ctx, tx, brand)
	})
}

func upsertBrand(ctx context.Context, tx *sql.Tx, brand *domain.Brand) error {
	if brand.ID == "" {
		brand.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	brand.CreatedAt = now
	brand.UpdatedAt = now

	query := `
		INSERT INTO brands (id, submission_id, name, contact_email, logo_url, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (submission_id) DO UPDATE SET
			name = EXCLUDED.name,
			contact_email = EXCLUDED.contact_email,
			logo_url = EXCLUDED.logo_url,
			description = EXCLUDED.description,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`
	err := tx.QueryRowContext(ctx, query,
		brand.ID,
		brand.SubmissionID,
		brand.Name,
		brand.ContactEmail,
		brand.LogoURL,
		brand.Description,
		brand.CreatedAt,
		brand.UpdatedAt,
	).Scan(&brand.ID, &brand.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert brand: %w", err)
	}
	return nil
}

func (r *submissionRepository) loadBrand(ctx context.Context, submission *domain.Submission) error {
	query := fmt.Sprintf(`SELECT %s FROM brands WHERE submission_id = $1`, columns(brandColumns))

	var (
		brand       domain.Brand
		logoURL     sql.NullString
		description sql.NullString
	)
	err := r.systemDB.QueryRowContext(ctx, query, submission.ID).Scan(
		&brand.ID,
		&brand.SubmissionID,
		&brand.Name,
		&brand.ContactEmail,
		&logoURL,
		&description,
		&brand.CreatedAt,
		&brand.UpdatedAt,
	)
	if isNoRows(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get brand: %w", err)
	}

	if logoURL.Valid {
		brand.LogoURL = &logoURL.String
	}
	if description.Valid {
		brand.Description = &description.String
	}
	submission.Brand = &brand
	return nil
}
