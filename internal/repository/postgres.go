package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// PostgreSQL error codes mapped to domain errors
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqInvalidTextInput    = "22P02"
)

// withTransaction executes fn within a transaction. The transaction is
// rolled back when fn returns an error.
func withTransaction(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// no-op once committed
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func pqErrorCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pqErrorCode(err) == pqUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return pqErrorCode(err) == pqForeignKeyViolation
}

// isNoRows reports whether a lookup found nothing. Malformed UUIDs are
// rejected by PostgreSQL and count as missing rows.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || pqErrorCode(err) == pqInvalidTextInput
}

func columns(cols []string) string {
	return strings.Join(cols, ", ")
}
