package testutil

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

// SetupMockDB creates a mock database connection for testing
func SetupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
	}

	return db, mock, cleanup
}

// PqError builds a PostgreSQL error with the given SQLSTATE code
func PqError(code string) error {
	return &pq.Error{Code: pq.ErrorCode(code), Message: "mock " + code}
}

// UniqueViolation is the error PostgreSQL returns for a duplicate key
func UniqueViolation() error {
	return PqError("23505")
}

// ForeignKeyViolation is the error PostgreSQL returns for a dangling reference
func ForeignKeyViolation() error {
	return PqError("23503")
}
