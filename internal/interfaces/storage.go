// Package interfaces defines service contracts for the net-worth tracker
package interfaces

import (
	"context"

	"github.com/bobmcallan/networth/internal/models"
)

// SnapshotCache stores the last fetched export per source. Freshness is
// decided by the caller from FetchedAt; the cache never expires entries on
// its own, so a stale copy stays available when a fetch fails.
type SnapshotCache interface {
	// Get returns the cached snapshot, or nil when there is none
	Get(ctx context.Context, sourceID string) (*models.SheetSnapshot, error)

	// Put stores a snapshot under its SourceID
	Put(ctx context.Context, snap *models.SheetSnapshot) error

	// Delete removes the snapshot for a source
	Delete(ctx context.Context, sourceID string) error

	// Lifecycle
	Close() error
}
