package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/bobmcallan/networth/internal/models"
)

// MemoryCache keeps snapshots in process memory.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]models.SheetSnapshot
}

// NewMemoryCache creates an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]models.SheetSnapshot)}
}

// Get returns a copy of the cached snapshot, or nil.
func (c *MemoryCache) Get(_ context.Context, sourceID string) (*models.SheetSnapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap, ok := c.entries[sourceID]
	if !ok {
		return nil, nil
	}
	snap.Body = append([]byte(nil), snap.Body...)
	return &snap, nil
}

func (c *MemoryCache) Put(_ context.Context, snap *models.SheetSnapshot) error {
	if snap == nil {
		return fmt.Errorf("nil snapshot")
	}
	stored := *snap
	stored.Body = append([]byte(nil), snap.Body...)

	c.mu.Lock()
	c.entries[snap.SourceID] = stored
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, sourceID string) error {
	c.mu.Lock()
	delete(c.entries, sourceID)
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Close() error { return nil }
