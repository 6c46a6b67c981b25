// Package session keeps per-session explorer state and uploaded tables.
package session

import (
	"context"
	"sync"
	"time"

	"edahub/models"

	"github.com/google/uuid"
)

// MemoryStore is an in-process SessionStateRepository. Sessions are copied
// on the way in and out so concurrent requests never share state.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*models.Session
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[uuid.UUID]*models.Session)}
}

func (s *MemoryStore) Load(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if stored, ok := s.sessions[id]; ok {
		return stored.Clone(), nil
	}
	return models.NewSession(id), nil
}

func (s *MemoryStore) Save(ctx context.Context, session *models.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.ID] = session.Clone()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

func (s *MemoryStore) Prune(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pruned []uuid.UUID
	for id, stored := range s.sessions {
		if stored.LastUpdated.Before(cutoff) {
			delete(s.sessions, id)
			pruned = append(pruned, id)
		}
	}
	return pruned, nil
}

// Len reports how many sessions are held
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
