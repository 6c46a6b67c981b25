package session

import (
	"sync"
	"time"

	"edahub/domain/table"

	"github.com/google/uuid"
)

// Dataset is an uploaded table and the file it came from
type Dataset struct {
	Name     string
	Table    *table.Table
	LoadedAt time.Time
}

// TableCache holds the uploaded table of each session in memory only.
// Tables are immutable, so a cached pointer is safe to share.
type TableCache struct {
	mu       sync.RWMutex
	datasets map[uuid.UUID]Dataset
	now      func() time.Time
}

// NewTableCache creates an empty cache
func NewTableCache() *TableCache {
	return &TableCache{
		datasets: make(map[uuid.UUID]Dataset),
		now:      time.Now,
	}
}

// Get returns the session's dataset, if one was uploaded
func (c *TableCache) Get(id uuid.UUID) (Dataset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.datasets[id]
	return d, ok
}

// Put replaces the session's dataset
func (c *TableCache) Put(id uuid.UUID, name string, t *table.Table) Dataset {
	d := Dataset{Name: name, Table: t, LoadedAt: c.now()}
	c.mu.Lock()
	c.datasets[id] = d
	c.mu.Unlock()
	return d
}

// Delete drops the session's dataset
func (c *TableCache) Delete(id uuid.UUID) {
	c.mu.Lock()
	delete(c.datasets, id)
	c.mu.Unlock()
}
