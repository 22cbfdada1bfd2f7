package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/networth/internal/common"
	"github.com/bobmcallan/networth/internal/models"
)

type countingIngest struct {
	loads atomic.Int32
	err   error
}

func (c *countingIngest) Load(ctx context.Context, force bool) (*models.SheetSnapshot, []models.Diagnostic, error) {
	c.loads.Add(1)
	if c.err != nil {
		return nil, nil, c.err
	}
	return &models.SheetSnapshot{SourceID: "file:test.csv", Body: []byte(testSheet), FetchedAt: time.Now()}, nil, nil
}

func TestWarmCache_LoadsOnce(t *testing.T) {
	ingest := &countingIngest{}
	warmCache(context.Background(), ingest, common.NewSilentLogger())
	assert.Equal(t, int32(1), ingest.loads.Load())
}

func TestWarmCache_FetchErrorIsNotFatal(t *testing.T) {
	ingest := &countingIngest{err: errors.New("offline")}
	warmCache(context.Background(), ingest, common.NewSilentLogger())
	assert.Equal(t, int32(1), ingest.loads.Load())
}

func TestWarmCache_DisabledByEnv(t *testing.T) {
	t.Setenv("NETWORTH_WARM_CACHE", "off")
	ingest := &countingIngest{}
	warmCache(context.Background(), ingest, common.NewSilentLogger())
	assert.Equal(t, int32(0), ingest.loads.Load())
}

func TestRefreshScheduler_TicksUntilCancelled(t *testing.T) {
	ingest := &countingIngest{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		startRefreshScheduler(ctx, ingest, common.NewSilentLogger(), 10*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return ingest.loads.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}

func TestApp_StartRefreshSchedulerDisabledByDefault(t *testing.T) {
	a, err := NewApp(writeTestConfig(t, ""))
	require.NoError(t, err)
	defer a.Close()

	a.StartRefreshScheduler()
	assert.Nil(t, a.schedulerCancel)
}

func TestApp_StartWarmCacheFillsCache(t *testing.T) {
	a, err := NewApp(writeTestConfig(t, ""))
	require.NoError(t, err)
	defer a.Close()

	a.StartWarmCache()
	require.Eventually(t, func() bool {
		snap, err := a.Cache.Get(context.Background(), a.Source.SourceID())
		return err == nil && snap != nil
	}, 2*time.Second, 10*time.Millisecond)
}

// blockingIngest holds Load until its context is cancelled, then reports
// whether the cache had already been closed underneath it.
type blockingIngest struct {
	cache        *closeTrackingCache
	started      chan struct{}
	sawClosed    atomic.Bool
	loadReturned atomic.Bool
}

func (b *blockingIngest) Load(ctx context.Context, force bool) (*models.SheetSnapshot, []models.Diagnostic, error) {
	close(b.started)
	<-ctx.Done()
	time.Sleep(20 * time.Millisecond)
	b.sawClosed.Store(b.cache.closed.Load())
	b.loadReturned.Store(true)
	return nil, nil, ctx.Err()
}

type closeTrackingCache struct {
	closed atomic.Bool
}

func (c *closeTrackingCache) Get(ctx context.Context, sourceID string) (*models.SheetSnapshot, error) {
	return nil, nil
}

func (c *closeTrackingCache) Put(ctx context.Context, snap *models.SheetSnapshot) error { return nil }

func (c *closeTrackingCache) Delete(ctx context.Context, sourceID string) error { return nil }

func (c *closeTrackingCache) Close() error {
	c.closed.Store(true)
	return nil
}

func TestApp_CloseWaitsForWarmCache(t *testing.T) {
	cache := &closeTrackingCache{}
	ingest := &blockingIngest{cache: cache, started: make(chan struct{})}
	a := &App{
		Config:        common.NewDefaultConfig(),
		Logger:        common.NewSilentLogger(),
		Cache:         cache,
		IngestService: ingest,
	}

	a.StartWarmCache()
	<-ingest.started

	a.Close()

	assert.True(t, ingest.loadReturned.Load(), "Close returned before the warm cache finished")
	assert.False(t, ingest.sawClosed.Load(), "cache closed while a load was running")
	assert.True(t, cache.closed.Load())
}
