package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/networth/internal/common"
	"github.com/bobmcallan/networth/internal/models"
)

// SnapshotEntry is the persisted form of a sheet snapshot.
type SnapshotEntry struct {
	SourceID  string `badgerhold:"key"`
	Body      []byte
	FetchedAt time.Time
}

// SnapshotStorage implements interfaces.SnapshotCache on a Store.
type SnapshotStorage struct {
	store  *Store
	logger *common.Logger
}

// NewSnapshotStorage creates snapshot storage on an open store.
func NewSnapshotStorage(store *Store, logger *common.Logger) *SnapshotStorage {
	return &SnapshotStorage{store: store, logger: logger}
}

// Get returns nil, nil when nothing is cached for sourceID.
func (s *SnapshotStorage) Get(_ context.Context, sourceID string) (*models.SheetSnapshot, error) {
	var entry SnapshotEntry
	if err := s.store.db.Get(sourceID, &entry); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return &models.SheetSnapshot{
		SourceID:  sourceID,
		Body:      entry.Body,
		FetchedAt: entry.FetchedAt,
	}, nil
}

func (s *SnapshotStorage) Put(_ context.Context, snap *models.SheetSnapshot) error {
	if snap == nil {
		return fmt.Errorf("nil snapshot")
	}
	entry := SnapshotEntry{SourceID: snap.SourceID, Body: snap.Body, FetchedAt: snap.FetchedAt}
	if err := s.store.db.Upsert(snap.SourceID, &entry); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	s.logger.Debug().Int("bytes", len(snap.Body)).Time("fetched_at", snap.FetchedAt).Msg("Snapshot persisted")
	return nil
}

func (s *SnapshotStorage) Delete(_ context.Context, sourceID string) error {
	err := s.store.db.Delete(sourceID, SnapshotEntry{})
	if err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

// Close closes the underlying store.
func (s *SnapshotStorage) Close() error {
	return s.store.Close()
}
