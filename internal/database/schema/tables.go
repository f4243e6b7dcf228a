// Package schema defines the database schema.
package schema

// TableDefinitions contains all the SQL statements to create the database tables
var TableDefinitions = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email VARCHAR(255) UNIQUE NOT NULL,
		name VARCHAR(255) NOT NULL DEFAULT '',
		role VARCHAR(20) NOT NULL,
		invitation_id UUID UNIQUE,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS user_sessions (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL,
		expires_at TIMESTAMP NOT NULL,
		created_at TIMESTAMP NOT NULL,
		magic_code_hash VARCHAR(255),  -- bcrypt hash of the sign-in code
		magic_code_expires_at TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS invitations (
		id UUID PRIMARY KEY,
		company_name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL,
		contact_name VARCHAR(255),
		token VARCHAR(128) UNIQUE NOT NULL,
		invited_by UUID NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	// invitation deletion is restricted while a submission exists
	`CREATE TABLE IF NOT EXISTS submissions (
		id UUID PRIMARY KEY,
		invitation_id UUID UNIQUE NOT NULL REFERENCES invitations(id) ON DELETE RESTRICT,
		status VARCHAR(32) NOT NULL,
		product_count INTEGER NOT NULL DEFAULT 0,
		submitted_at TIMESTAMP,
		confirmed_at TIMESTAMP,
		confirmed_by UUID,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS brands (
		id UUID PRIMARY KEY,
		submission_id UUID UNIQUE NOT NULL,
		name VARCHAR(255) NOT NULL,
		contact_email VARCHAR(255) NOT NULL,
		logo_url TEXT,
		description TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id UUID PRIMARY KEY,
		submission_id UUID NOT NULL,
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price NUMERIC(12, 2) NOT NULL,
		sku VARCHAR(64),
		images JSONB NOT NULL DEFAULT '[]'::jsonb,
		generated_content TEXT,
		raw_data JSONB NOT NULL DEFAULT '{}'::jsonb,
		approval_status VARCHAR(20) NOT NULL DEFAULT 'pending',
		publication_state VARCHAR(20) NOT NULL DEFAULT 'unpublished',
		exported BOOLEAN NOT NULL DEFAULT FALSE,
		exported_at TIMESTAMP,
		external_id VARCHAR(255),
		publication_claimed_at TIMESTAMP,
		last_error TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS product_reviews (
		product_id UUID NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		provider VARCHAR(50) NOT NULL,
		rating DOUBLE PRECISION NOT NULL DEFAULT 0,
		review_count INTEGER NOT NULL DEFAULT 0,
		updated_at TIMESTAMP NOT NULL,
		PRIMARY KEY (product_id, provider)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_user_sessions_user_id ON user_sessions (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_submissions_status ON submissions (status)`,
	`CREATE INDEX IF NOT EXISTS idx_products_submission_id ON products (submission_id, created_at, id)`,
	`CREATE INDEX IF NOT EXISTS idx_products_approval_status ON products (approval_status)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_products_external_id ON products (external_id) WHERE external_id IS NOT NULL`,
}

// MigrationStatements contains SQL statements to be run after table creation
// These are for schema changes that need to be applied to existing databases
var MigrationStatements = []string{
	`ALTER TABLE products ADD COLUMN IF NOT EXISTS last_error TEXT`,
	`ALTER TABLE products ADD COLUMN IF NOT EXISTS generated_content TEXT`,
	`ALTER TABLE products ADD COLUMN IF NOT EXISTS publication_claimed_at TIMESTAMP`,
}

// GetMigrationStatements returns migration statements for database schema setup
func GetMigrationStatements() []string {
	return MigrationStatements
}

// TableNames returns a list of all table names in creation order
var TableNames = []string{
	"users",
	"user_sessions",
	"invitations",
	"submissions",
	"brands",
	"products",
	"product_reviews",
}
