// Package ingest loads the sheet export through the snapshot cache
package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bobmcallan/networth/internal/common"
	"github.com/bobmcallan/networth/internal/interfaces"
	"github.com/bobmcallan/networth/internal/models"
)

// Service implements IngestService
type Service struct {
	source interfaces.SheetSource
	cache  interfaces.SnapshotCache
	ttl    time.Duration
	logger *common.Logger
	mu     sync.Mutex // one fetch at a time
}

// NewService creates a new ingest service
func NewService(source interfaces.SheetSource, cache interfaces.SnapshotCache, ttl time.Duration, logger *common.Logger) *Service {
	return &Service{
		source: source,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// Load returns the cached snapshot while it is fresh, otherwise fetches and
// stores a new one. When the fetch fails and any cached copy exists, that copy
// is served with a stale_cache diagnostic.
func (s *Service) Load(ctx context.Context, force bool) (*models.SheetSnapshot, []models.Diagnostic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.source.SourceID()

	cached, err := s.cache.Get(ctx, id)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Snapshot cache read failed")
		cached = nil
	}

	if !force && cached != nil && common.IsFresh(cached.FetchedAt, s.ttl) {
		s.logger.Debug().Time("fetched_at", cached.FetchedAt).Msg("Serving cached snapshot")
		cached.Cached = true
		return cached, nil, nil
	}

	snap, err := s.source.Fetch(ctx)
	if err != nil {
		if cached != nil {
			s.logger.Warn().Err(err).
				Time("fetched_at", cached.FetchedAt).
				Str("correlation_id", common.CorrelationIDFromContext(ctx)).
				Msg("Fetch failed, serving stale snapshot")
			cached.Cached = true
			return cached, []models.Diagnostic{{
				Kind:    models.DiagStaleCache,
				Row:     -1,
				Message: fmt.Sprintf("source unavailable, showing data fetched at %s", cached.FetchedAt.Format(time.RFC3339)),
			}}, nil
		}
		return nil, nil, fmt.Errorf("%w: %w", models.ErrSourceUnavailable, err)
	}

	if err := s.cache.Put(ctx, snap); err != nil {
		s.logger.Warn().Err(err).Msg("Snapshot cache write failed")
	}

	s.logger.Info().Int("bytes", len(snap.Body)).Bool("force", force).Msg("Sheet fetched")
	return snap, nil, nil
}
