package app

import (
	"context"
	"time"

	"github.com/bobmcallan/networth/internal/common"
	"github.com/bobmcallan/networth/internal/interfaces"
)

// startRefreshScheduler re-fetches the export on a fixed interval so the
// snapshot cache stays warm between requests.
func startRefreshScheduler(ctx context.Context, ingest interfaces.IngestService, logger *common.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Refresh scheduler: stopped")
			return
		case <-ticker.C:
			refreshSnapshot(ctx, ingest, logger)
		}
	}
}

func refreshSnapshot(ctx context.Context, ingest interfaces.IngestService, logger *common.Logger) {
	start := time.Now()

	// force=false: a copy fetched inside the TTL by a request is kept
	_, diags, err := ingest.Load(ctx, false)
	if err != nil {
		logger.Warn().Err(err).Msg("Refresh scheduler: fetch failed")
		return
	}

	logger.Debug().
		Int("diagnostics", len(diags)).
		Dur("elapsed", time.Since(start)).
		Msg("Refresh scheduler: complete")
}
