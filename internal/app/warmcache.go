package app

import (
	"context"
	"os"
	"time"

	"github.com/bobmcallan/networth/internal/common"
	"github.com/bobmcallan/networth/internal/interfaces"
)

// warmCache fetches the export on startup so the first dashboard request is fast.
func warmCache(ctx context.Context, ingest interfaces.IngestService, logger *common.Logger) {
	if os.Getenv("NETWORTH_WARM_CACHE") == "off" {
		logger.Info().Msg("Warm cache: disabled via NETWORTH_WARM_CACHE=off")
		return
	}

	start := time.Now()

	snap, diags, err := ingest.Load(ctx, false)
	if err != nil {
		// The source may be offline at boot; requests retry on their own.
		logger.Warn().Err(err).Msg("Warm cache: initial fetch failed")
		return
	}

	logger.Info().
		Int("bytes", len(snap.Body)).
		Int("diagnostics", len(diags)).
		Dur("elapsed", time.Since(start)).
		Msg("Warm cache: complete")
}
