package database

import (
	"errors"
	"testing"

	"github.com/greez/greez/internal/database/schema"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expectSchema(mock sqlmock.Sqlmock) {
	for range schema.TableDefinitions {
		mock.ExpectExec("").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	for range schema.GetMigrationStatements() {
		mock.ExpectExec("").WillReturnResult(sqlmock.NewResult(0, 0))
	}
}

func TestInitializeDatabase(t *testing.T) {
	t.Run("creates tables successfully", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		expectSchema(mock)

		err = InitializeDatabase(db, "")
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("creates root staff user if not exists", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		expectSchema(mock)
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs("admin@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectExec("INSERT INTO users").
			WithArgs(sqlmock.AnyArg(), "admin@example.com", "Root User", "staff", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err = InitializeDatabase(db, " Admin@Example.com ")
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("skips existing root user", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		expectSchema(mock)
		mock.ExpectQuery("SELECT EXISTS").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		err = InitializeDatabase(db, "admin@example.com")
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("table creation failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec("").WillReturnError(errors.New("permission denied"))

		err = InitializeDatabase(db, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create table")
	})
}

func TestCleanDatabase(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for i := len(schema.TableNames) - 1; i >= 0; i-- {
		mock.ExpectExec("DROP TABLE IF EXISTS " + schema.TableNames[i]).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}

	assert.NoError(t, CleanDatabase(db))
	assert.NoError(t, mock.ExpectationsWereMet())
}
