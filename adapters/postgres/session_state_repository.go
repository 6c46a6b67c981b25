package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"edahub/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// SessionStateRepository keeps explorer state in the hub_sessions table so
// that sessions survive a restart. Uploaded tables are never stored here.
type SessionStateRepository struct {
	db *sqlx.DB
}

// NewSessionStateRepository creates a new session state repository
func NewSessionStateRepository(db *sqlx.DB) *SessionStateRepository {
	return &SessionStateRepository{db: db}
}

// Save inserts or replaces the state of a session
func (r *SessionStateRepository) Save(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO hub_sessions (session_id, state, version, last_updated)
		VALUES (:session_id, :state, :version, :last_updated)
		ON CONFLICT (session_id) DO UPDATE SET
			state = EXCLUDED.state,
			version = EXCLUDED.version,
			last_updated = EXCLUDED.last_updated`

	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("failed to save session state: %w", err)
	}
	return nil
}

// Load retrieves the state of a session, or a fresh state when none is stored
func (r *SessionStateRepository) Load(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	query := `
		SELECT session_id, state, version, last_updated
		FROM hub_sessions
		WHERE session_id = $1`

	var session models.Session
	err := r.db.GetContext(ctx, &session, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.NewSession(id), nil
		}
		return nil, fmt.Errorf("failed to load session state: %w", err)
	}
	return &session, nil
}

// Delete removes the state of a session
func (r *SessionStateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM hub_sessions WHERE session_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session state: %w", err)
	}

	if n, _ := result.RowsAffected(); n > 0 {
		log.Printf("[SessionStateRepository] deleted state for session %s", id)
	}
	return nil
}

// Prune removes sessions that have not been updated since cutoff
func (r *SessionStateRepository) Prune(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.SelectContext(ctx, &ids, `
		DELETE FROM hub_sessions
		WHERE last_updated < $1
		RETURNING session_id`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to prune session state: %w", err)
	}
	return ids, nil
}
