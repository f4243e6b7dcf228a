package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greez/greez/internal/domain"
	"github.com/greez/greez/internal/repository/testutil"
)

func TestReviewRepository_Upsert(t *testing.T) {
	db, mock, cleanup := testutil.SetupMockDB(t)
	defer cleanup()

	repo := NewReviewRepository(db)
	summary := &domain.ReviewSummary{ProductID: "prod-1", Provider: "judgeme", Rating: 4.5, Count: 12}

	mock.ExpectExec(`INSERT INTO product_reviews .* ON CONFLICT \(product_id, provider\) DO UPDATE SET`).
		WithArgs("prod-1", "judgeme", 4.5, 12, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Upsert(context.Background(), summary))
	assert.False(t, summary.UpdatedAt.IsZero())

	mock.ExpectExec(`INSERT INTO product_reviews`).WillReturnError(testutil.ForeignKeyViolation())
	err := repo.Upsert(context.Background(), &domain.ReviewSummary{ProductID: "gone", Provider: "judgeme"})
	assert.True(t, domain.IsNotFound(err))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_ListByProductID(t *testing.T) {
	db, mock, cleanup := testutil.SetupMockDB(t)
	defer cleanup()

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT product_id, provider, rating, review_count, updated_at FROM product_reviews WHERE product_id = \$1 ORDER BY provider`).
		WithArgs("prod-1").
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "provider", "rating", "review_count", "updated_at"}).
			AddRow("prod-1", "judgeme", 4.5, 12, now))

	summaries, err := NewReviewRepository(db).ListByProductID(context.Background(), "prod-1")
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 12, summaries[0].Count)
}
