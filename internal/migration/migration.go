package migration

import (
	"context"

	"edahub/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Statements lists the schema statements in the order Run applies them
func (r *MigrationRunner) Statements() []string {
	return []string{createHubSessions, createHubSessionsIndex}
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, createHubSessions); err != nil {
		return errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to create hub_sessions table"))
	}

	if _, err := db.ExecContext(ctx, createHubSessionsIndex); err != nil {
		return errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to create indexes"))
	}

	return nil
}

const createHubSessions = `
	CREATE TABLE IF NOT EXISTS hub_sessions (
		session_id UUID PRIMARY KEY,
		state JSONB NOT NULL DEFAULT '{}'::jsonb,
		version INTEGER NOT NULL DEFAULT 1,
		last_updated TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	)
`

const createHubSessionsIndex = `
	CREATE INDEX IF NOT EXISTS idx_hub_sessions_last_updated ON hub_sessions(last_updated)
`
