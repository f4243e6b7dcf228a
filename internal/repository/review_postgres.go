package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/greez/greez/internal/domain"
)

type reviewRepository struct {
	systemDB *sql.DB
}

// NewReviewRepository creates a new PostgreSQL review summary repository
func NewReviewRepository(db *sql.DB) domain.ReviewRepository {
	return &reviewRepository{systemDB: db}
}

func (r *reviewRepository) Upsert(ctx context.Context, summary *domain.ReviewSummary) error {
	if summary.UpdatedAt.IsZero() {
		summary.UpdatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO product_reviews (product_id, provider, rating, review_count, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (product_id, provider) DO UPDATE SET
			rating = EXCLUDED.rating,
			review_count = EXCLUDED.review_count,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.systemDB.ExecContext(ctx, query,
		summary.ProductID,
		summary.Provider,
		summary.Rating,
		summary.Count,
		summary.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.NewNotFoundError("product", summary.ProductID)
		}
		return fmt.Errorf("failed to upsert review summary: %w", err)
	}
	return nil
}

func (r *reviewRepository) ListByProductID(ctx context.Context, productID string) ([]*domain.ReviewSummary, error) {
	query := `
		SELECT product_id, provider, rating, review_count, updated_at
		FROM product_reviews
		WHERE product_id = $1
		ORDER BY provider
	`
	rows, err := r.systemDB.QueryContext(ctx, query, productID)
	if err != nil {
		if isNoRows(err) {
			return []*domain.ReviewSummary{}, nil
		}
		return nil, fmt.Errorf("failed to list review summaries: %w", err)
	}
	defer rows.Close()

	summaries := []*domain.ReviewSummary{}
	for rows.Next() {
		var s domain.ReviewSummary
		if err := rows.Scan(&s.ProductID, &s.Provider, &s.Rating, &s.Count, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review summary: %w", err)
		}
		summaries = append(summaries, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate review summaries: %w", err)
	}
	return summaries, nil
}
