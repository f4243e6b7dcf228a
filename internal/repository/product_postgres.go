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

type productRepository struct {
	systemDB *sql.DB
}

// NewProductRepository creates a new PostgreSQL product repository
func NewProductRepository(db *sql.DB) domain.ProductRepository {
	return &productRepository{systemDB: db}
}

// lockOpenSubmission locks the submission row for the rest of tx and fails
// when the submission no longer accepts products. Returns the product count.
func lockOpenSubmission(ctx context.Context, tx *sql.Tx, submissionID string) (int, error) {
	var (
		status string
		count  int
	)
	err := tx.QueryRowContext(ctx,
		`SELECT status, product_count FROM submissions WHERE id = $1 FOR UPDATE`,
		submissionID,
	).Scan(&status, &count)
	if isNoRows(err) {
		return 0, domain.NewNotFoundError("submission", submissionID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to lock submission: %w", err)
	}

	if !domain.SubmissionStatus(status).AcceptsProducts() {
		return 0, domain.NewInvalidStateError("submission", submissionID, status, "submission no longer accepts products")
	}
	return count, nil
}

func (r *productRepository) AddToSubmission(ctx context.Context, product *domain.Product, maxProducts int) error {
	ctx, span := tracing.StartServiceSpan(ctx, "ProductRepository", "AddToSubmission")
	defer span.End()
	span.AddAttributes(trace.StringAttribute("submission.id", product.SubmissionID))

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	err := withTransaction(ctx, r.systemDB, func(tx *sql.Tx) error {
		count, err := lockOpenSubmission(ctx, tx, product.SubmissionID)
		if err != nil {
			return err
		}
		if maxProducts > 0 && count >= maxProducts {
			return domain.NewInvalidStateError("submission", product.SubmissionID, "full",
				fmt.Sprintf("product limit of %d reached", maxProducts))
		}

		query := `
			INSERT INTO products (
				id, submission_id, name, description, price, sku, images, generated_content,
				raw_data, approval_status, publication_state, exported, created_at, updated_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		`
		_, err = tx.ExecContext(ctx, query,
			product.ID,
			product.SubmissionID,
			product.Name,
			product.Description,
			product.Price,
			product.SKU,
			product.Images,
			product.GeneratedContent,
			product.RawData,
			string(product.ApprovalStatus),
			string(product.Publication.State),
			product.Publication.Exported,
			product.CreatedAt,
			product.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert product: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE submissions SET product_count = product_count + 1, updated_at = $2 WHERE id = $1`,
			product.SubmissionID, now,
		)
		if err != nil {
			return fmt.Errorf("failed to update product count: %w", err)
		}
		return nil
	})
	if err != nil {
		tracing.MarkSpanError(ctx, err)
	}
	return err
}

func (r *productRepository) UpdateContent(ctx context.Context, product *domain.Product) error {
	product.UpdatedAt = time.Now().UTC()

	return withTransaction(ctx, r.systemDB, func(tx *sql.Tx) error {
		if _, err := lockOpenSubmission(ctx, tx, product.SubmissionID); err != nil {
			return err
		}

		query := `
			UPDATE products
			SET name = $3, description = $4, price = $5, sku = $6, images = $7, raw_data = $8, updated_at = $9
			WHERE id = $1 AND submission_id = $2
		`
		result, err := tx.ExecContext(ctx, query,
			product.ID,
			product.SubmissionID,
			product.Name,
			product.Description,
			product.Price,
			product.SKU,
			product.Images,
			product.RawData,
			product.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return domain.NewNotFoundError("product", product.ID)
		}
		return nil
	})
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, columns(domain.ProductColumns))

	product, err := domain.ScanProduct(r.systemDB.QueryRowContext(ctx, query, id))
	if isNoRows(err) {
		return nil, domain.NewNotFoundError("product", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

func (r *productRepository) GetByExternalID(ctx context.Context, externalID string) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE external_id = $1`, columns(domain.ProductColumns))

	product, err := domain.ScanProduct(r.systemDB.QueryRowContext(ctx, query, externalID))
	if isNoRows(err) {
		return nil, domain.NewNotFoundError("product", externalID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product by external id: %w", err)
	}
	return product, nil
}

func (r *productRepository) ListBySubmission(ctx context.Context, submissionID string) ([]*domain.Product, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM products WHERE submission_id = $1 ORDER BY created_at, id`,
		columns(domain.ProductColumns),
	)

	rows, err := r.systemDB.QueryContext(ctx, query, submissionID)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NewNotFoundError("submission", submissionID)
		}
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

func (r *productRepository) List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	query := psql.Select(domain.ProductColumns...).
		From("products").
		OrderBy("created_at DESC", "id")

	if filter.SubmissionID != "" {
		query = query.Where(sq.Eq{"submission_id": filter.SubmissionID})
	}
	if filter.ApprovalStatus != "" {
		query = query.Where(sq.Eq{"approval_status": string(filter.ApprovalStatus)})
	}
	if filter.State != "" {
		query = query.Where(sq.Eq{"publication_state": string(filter.State)})
	}
	if filter.Exported != nil {
		query = query.Where(sq.Eq{"exported": *filter.Exported})
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
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

func (r *productRepository) SetApprovalStatus(ctx context.Context, id string, status domain.ApprovalStatus) (*domain.Product, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	query := psql.Update("products").
		Set("approval_status", string(status)).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id}).
		Where(sq.NotEq{"approval_status": string(status)})

	if status == domain.ApprovalStatusRejected {
		query = query.
			Where(sq.Eq{"exported": false}).
			Where(sq.NotEq{"publication_state": string(domain.PublicationStatePublishing)})
	}

	product, err := r.updateReturning(ctx, query)
	if err == nil {
		return product, nil
	}
	if !isNoRows(err) {
		return nil, fmt.Errorf("failed to set approval status: %w", err)
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case current.ApprovalStatus == status:
		return current, nil
	case current.Publication.Exported:
		return nil, domain.NewInvalidStateError("product", id, "exported", "an exported product cannot be rejected")
	default:
		return nil, domain.NewInvalidStateError("product", id, string(current.Publication.State), "publication in progress")
	}
}

func (r *productRepository) SetGeneratedContent(ctx context.Context, id string, content string) error {
	result, err := r.systemDB.ExecContext(ctx,
		`UPDATE products SET generated_content = $2, updated_at = $3 WHERE id = $1`,
		id, content, time.Now().UTC(),
	)
	if err != nil {
		if isNoRows(err) {
			return domain.NewNotFoundError("product", id)
		}
		return fmt.Errorf("failed to store generated content: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.NewNotFoundError("product", id)
	}
	return nil
}

func (r *productRepository) AppendImage(ctx context.Context, id string, imageURL string) (*domain.Product, error) {
	var product *domain.Product

	err := withTransaction(ctx, r.systemDB, func(tx *sql.Tx) error {
		var submissionID string
		err := tx.QueryRowContext(ctx, `SELECT submission_id FROM products WHERE id = $1`, id).Scan(&submissionID)
		if isNoRows(err) {
			return domain.NewNotFoundError("product", id)
		}
		if err != nil {
			return fmt.Errorf("failed to get product: %w", err)
		}

		if _, err := lockOpenSubmission(ctx, tx, submissionID); err != nil {
			return err
		}

		query := fmt.Sprintf(`
			UPDATE products
			SET images = images || jsonb_build_array($2::text), updated_at = $3
			WHERE id = $1 AND jsonb_array_length(images) < $4
			RETURNING %s
		`, columns(domain.ProductColumns))

		product, err = domain.ScanProduct(tx.QueryRowContext(ctx, query, id, imageURL, time.Now().UTC(), domain.MaxProductImages))
		if isNoRows(err) {
			return domain.NewInvalidStateError("product", id, "full",
				fmt.Sprintf("a product can have at most %d images", domain.MaxProductImages))
		}
		if err != nil {
			return fmt.Errorf("failed to append image: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// ClaimPublication is the only way into the publishing state. The guarded
// UPDATE lets exactly one concurrent caller win. A claim older than
// staleBefore belongs to a caller that never recorded an outcome.
func (r *productRepository) ClaimPublication(ctx context.Context, id string, staleBefore time.Time) (*domain.Product, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "ProductRepository", "ClaimPublication")
	defer span.End()
	span.AddAttributes(trace.StringAttribute("product.id", id))

	claimable := make([]string, len(domain.ClaimablePublicationStates))
	for i, s := range domain.ClaimablePublicationStates {
		claimable[i] = string(s)
	}

	now := time.Now().UTC()
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query := psql.Update("products").
		Set("publication_state", string(domain.PublicationStatePublishing)).
		Set("publication_claimed_at", now).
		Set("updated_at", now).
		Where(sq.Eq{
			"id":              id,
			"approval_status": string(domain.ApprovalStatusApproved),
		}).
		Where(sq.Or{
			sq.Eq{"publication_state": claimable},
			sq.And{
				sq.Eq{"publication_state": string(domain.PublicationStatePublishing)},
				sq.Lt{"publication_claimed_at": staleBefore},
			},
		})

	product, err := r.updateReturning(ctx, query)
	if err == nil {
		return product, nil
	}
	if !isNoRows(err) {
		tracing.MarkSpanError(ctx, err)
		return nil, fmt.Errorf("failed to claim publication: %w", err)
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.ApprovalStatus != domain.ApprovalStatusApproved {
		return nil, domain.NewInvalidStateError("product", id, string(current.ApprovalStatus), "product must be approved before publishing")
	}
	return nil, domain.NewInvalidStateError("product", id, string(current.Publication.State), "publication already in progress")
}

func (r *productRepository) RecordExternalID(ctx context.Context, id string, externalID string) error {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	sqlQuery, args, err := psql.Update("products").
		Set("external_id", externalID).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id, "publication_state": string(domain.PublicationStatePublishing)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	result, err := r.systemDB.ExecContext(ctx, sqlQuery, args...)
	if err != nil {
		return fmt.Errorf("failed to record external id: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return domain.NewInvalidStateError("product", id, "not_publishing", "no publication in progress")
	}
	return nil
}

func (r *productRepository) MarkPublished(ctx context.Context, id string, externalID string, exportedAt time.Time) (*domain.Product, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query := psql.Update("products").
		Set("publication_state", string(domain.PublicationStatePublished)).
		Set("exported", true).
		Set("exported_at", exportedAt).
		Set("external_id", externalID).
		Set("last_error", nil).
		Set("raw_data", sq.Expr("raw_data || jsonb_build_object('shopify_exported', true, 'shopify_product_id', ?::text)", externalID)).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id, "publication_state": string(domain.PublicationStatePublishing)})

	product, err := r.updateReturning(ctx, query)
	if isNoRows(err) {
		return nil, domain.NewInvalidStateError("product", id, "not_publishing", "no publication in progress")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to mark product published: %w", err)
	}
	return product, nil
}

func (r *productRepository) MarkPublicationFailed(ctx context.Context, id string, message string) (*domain.Product, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query := psql.Update("products").
		Set("publication_state", string(domain.PublicationStateFailed)).
		Set("last_error", message).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id, "publication_state": string(domain.PublicationStatePublishing)})

	product, err := r.updateReturning(ctx, query)
	if isNoRows(err) {
		return nil, domain.NewInvalidStateError("product", id, "not_publishing", "no publication in progress")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to mark publication failed: %w", err)
	}
	return product, nil
}

func (r *productRepository) updateReturning(ctx context.Context, query sq.UpdateBuilder) (*domain.Product, error) {
	sqlQuery, args, err := query.Suffix("RETURNING " + columns(domain.ProductColumns)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update query: %w", err)
	}
	return domain.ScanProduct(r.systemDB.QueryRowContext(ctx, sqlQuery, args...))
}

func scanProducts(rows *sql.Rows) ([]*domain.Product, error) {
	products := []*domain.Product{}
	for rows.Next() {
		product, err := domain.ScanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return products, nil
}
