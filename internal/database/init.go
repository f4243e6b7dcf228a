package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/greez/greez/internal/database/schema"
	"github.com/greez/greez/internal/domain"
)

// InitializeDatabase creates all necessary database tables if they don't exist
// and bootstraps the root staff user
func InitializeDatabase(db *sql.DB, rootEmail string) error {
	for _, query := range schema.TableDefinitions {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	for _, query := range schema.GetMigrationStatements() {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to run migration statement: %w", err)
		}
	}

	rootEmail = strings.ToLower(strings.TrimSpace(rootEmail))
	if rootEmail == "" {
		return nil
	}

	var exists bool
	err := db.QueryRow("SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", rootEmail).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check root user existence: %w", err)
	}
	if exists {
		return nil
	}

	now := time.Now().UTC()
	rootUser := &domain.User{
		ID:        uuid.New().String(),
		Email:     rootEmail,
		Name:      "Root User",
		Role:      domain.UserRoleStaff,
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := `
		INSERT INTO users (id, email, name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = db.Exec(query,
		rootUser.ID,
		rootUser.Email,
		rootUser.Name,
		rootUser.Role,
		rootUser.CreatedAt,
		rootUser.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create root user: %w", err)
	}

	return nil
}

// CleanDatabase drops all tables in reverse order
func CleanDatabase(db *sql.DB) error {
	for i := len(schema.TableNames) - 1; i >= 0; i-- {
		query := fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", schema.TableNames[i])
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", schema.TableNames[i], err)
		}
	}
	return nil
}
