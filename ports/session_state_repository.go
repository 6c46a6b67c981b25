package ports

import (
	"context"
	"time"

	"edahub/models"

	"github.com/google/uuid"
)

// SessionStateRepository persists the per-session state between runs
type SessionStateRepository interface {
	// Load returns the stored session, or a fresh one when none exists
	Load(ctx context.Context, id uuid.UUID) (*models.Session, error)

	// Save stores the session, replacing any previous version
	Save(ctx context.Context, session *models.Session) error

	// Delete removes the session; deleting an unknown session is not an error
	Delete(ctx context.Context, id uuid.UUID) error

	// Prune removes sessions not updated since cutoff and returns their ids
	Prune(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error)
}
