package session

import (
	"context"
	"log"
	"time"

	"edahub/internal/errors"
	"edahub/models"
	"edahub/ports"

	"github.com/google/uuid"
)

// Manager ties the persisted session state to the in-memory upload cache
type Manager struct {
	states ports.SessionStateRepository
	tables *TableCache
}

// NewManager creates a manager over the given state store
func NewManager(states ports.SessionStateRepository, tables *TableCache) *Manager {
	if tables == nil {
		tables = NewTableCache()
	}
	return &Manager{states: states, tables: tables}
}

// Tables exposes the upload cache to the apps
func (m *Manager) Tables() *TableCache {
	return m.tables
}

// Load returns the state of session id, creating it when unknown
func (m *Manager) Load(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	s, err := m.states.Load(ctx, id)
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, errors.Wrapf(err, "failed to load session %s", id))
	}
	return s, nil
}

// Save stores the state returned by a run
func (m *Manager) Save(ctx context.Context, s *models.Session) error {
	s.Touch()
	if err := m.states.Save(ctx, s); err != nil {
		return errors.WithCode(errors.CodeDatabaseError, errors.Wrapf(err, "failed to save session %s", s.ID))
	}
	return nil
}

// Reset forgets everything about a session
func (m *Manager) Reset(ctx context.Context, id uuid.UUID) error {
	m.tables.Delete(id)
	if err := m.states.Delete(ctx, id); err != nil {
		return errors.WithCode(errors.CodeDatabaseError, errors.Wrapf(err, "failed to reset session %s", id))
	}
	return nil
}

// Prune evicts sessions idle for longer than ttl together with their uploads
func (m *Manager) Prune(ctx context.Context, ttl time.Duration) (int, error) {
	pruned, err := m.states.Prune(ctx, time.Now().Add(-ttl))
	if err != nil {
		return 0, errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to prune sessions"))
	}
	for _, id := range pruned {
		m.tables.Delete(id)
	}
	if len(pruned) > 0 {
		log.Printf("[SessionManager] pruned %d idle sessions", len(pruned))
	}
	return len(pruned), nil
}
