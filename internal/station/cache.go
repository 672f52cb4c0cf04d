package station

import (
	"context"
	"sync"
	"time"

	"github.com/02loveslollipop/plantstation-viewer/internal/models"
)

// Cache keeps the newest successfully fetched snapshot of a Source. Whatever
// fetch finishes last wins, even if it was started earlier.
type Cache struct {
	src Source

	mu        sync.RWMutex
	snap      models.Snapshot
	fetchedAt time.Time
	loaded    bool
}

// NewCache wraps src.
func NewCache(src Source) *Cache {
	return &Cache{src: src}
}

// Refresh fetches a new snapshot and stores it on success. A failed fetch
// keeps the previous snapshot.
func (c *Cache) Refresh(ctx context.Context) error {
	snap, err := c.src.Snapshot(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.snap = snap
	c.fetchedAt = time.Now()
	c.loaded = true
	c.mu.Unlock()
	return nil
}

// Snapshot returns the cached snapshot, fetching it first when nothing has
// been loaded yet.
func (c *Cache) Snapshot(ctx context.Context) (models.Snapshot, error) {
	c.mu.RLock()
	snap, loaded := c.snap, c.loaded
	c.mu.RUnlock()
	if loaded {
		return snap, nil
	}
	if err := c.Refresh(ctx); err != nil {
		return models.Snapshot{}, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap, nil
}

// FetchedAt reports when the cached snapshot was fetched; zero when empty.
func (c *Cache) FetchedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetchedAt
}
