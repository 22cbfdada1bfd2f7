package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/networth/internal/clients/sheets"
	"github.com/bobmcallan/networth/internal/common"
	"github.com/bobmcallan/networth/internal/interfaces"
	"github.com/bobmcallan/networth/internal/services/dashboard"
	"github.com/bobmcallan/networth/internal/services/ingest"
	"github.com/bobmcallan/networth/internal/storage"
)

// App holds all initialized services, the sheet source and the MCP server.
// It is the shared core used by cmd/networth-server.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Cache            interfaces.SnapshotCache
	Source           interfaces.SheetSource
	IngestService    interfaces.IngestService
	DashboardService interfaces.DashboardService
	MCPServer        *server.MCPServer
	StartupTime      time.Time

	schedulerCancel context.CancelFunc
	warmCacheCancel context.CancelFunc
	background      sync.WaitGroup
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp loads configuration and initializes all services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	// Load version from .version file (fallback if ldflags not set)
	common.LoadVersionFromFile()

	binDir := getBinaryDir()

	// Load configuration - check provided path, NETWORTH_CONFIG, then binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("NETWORTH_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "networth.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/networth.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative paths to the binary directory
	if config.Storage.Backend == storage.BackendBadger && config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
	}
	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(binDir, config.Logging.FilePath)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	return NewAppWithConfig(config, logger)
}

// NewAppWithConfig wires the services for an already loaded config.
func NewAppWithConfig(config *common.Config, logger *common.Logger) (*App, error) {
	startupStart := time.Now()

	if logger == nil {
		logger = common.NewSilentLogger()
	}

	source, err := newSheetSource(config, logger)
	if err != nil {
		return nil, err
	}

	cache, err := storage.NewSnapshotCache(logger, config.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize snapshot cache: %w", err)
	}

	ingestService := ingest.NewService(source, cache, config.Source.GetCacheTTL(), logger)
	dashboardService := dashboard.NewService(ingestService, config, logger)

	mcpServer := server.NewMCPServer(
		"networth",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	a := &App{
		Config:           config,
		Logger:           logger,
		Cache:            cache,
		Source:           source,
		IngestService:    ingestService,
		DashboardService: dashboardService,
		MCPServer:        mcpServer,
		StartupTime:      startupStart,
	}

	a.registerTools()

	logger.Info().
		Str("source", redactedSource(config)).
		Str("storage", config.Storage.Backend).
		Dur("startup", time.Since(startupStart)).
		Msg("App initialized")

	return a, nil
}

// newSheetSource picks the export URL when configured, otherwise the local file.
func newSheetSource(config *common.Config, logger *common.Logger) (interfaces.SheetSource, error) {
	switch {
	case config.Source.URL != "":
		return sheets.NewClient(config.Source.URL,
			sheets.WithLogger(logger),
			sheets.WithRateLimit(config.Source.RateLimit),
			sheets.WithTimeout(config.Source.GetTimeout()),
		), nil
	case config.Source.Path != "":
		return sheets.NewFileSource(config.Source.Path), nil
	default:
		return nil, fmt.Errorf("no sheet source configured: set source.url (or NETWORTH_SHEET_URL) or source.path")
	}
}

// redactedSource never logs the export URL itself.
func redactedSource(config *common.Config) string {
	if config.Source.URL != "" {
		return "url"
	}
	return "file:" + config.Source.Path
}

// Close releases all resources held by the App.
// Shutdown order: cancel scheduler, cancel warm cache, wait for both to
// return, close the cache.
func (a *App) Close() {
	if a.schedulerCancel != nil {
		a.schedulerCancel()
		a.schedulerCancel = nil
	}
	if a.warmCacheCancel != nil {
		a.warmCacheCancel()
		a.warmCacheCancel = nil
	}
	a.background.Wait()
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close snapshot cache")
		}
		a.Cache = nil
	}
}

// StartWarmCache launches the background cache warming goroutine.
func (a *App) StartWarmCache() {
	warmCtx, warmCancel := context.WithTimeout(context.Background(), 2*a.Config.Source.GetTimeout())
	a.warmCacheCancel = warmCancel
	a.background.Add(1)
	go func() {
		defer a.background.Done()
		defer warmCancel()
		warmCache(warmCtx, a.IngestService, a.Logger)
	}()
}

// StartRefreshScheduler launches the background refresh goroutine when
// source.refresh_interval is set.
func (a *App) StartRefreshScheduler() {
	interval := a.Config.Source.GetRefreshInterval()
	if interval <= 0 {
		return
	}
	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	a.schedulerCancel = schedulerCancel
	a.background.Add(1)
	go func() {
		defer a.background.Done()
		startRefreshScheduler(schedulerCtx, a.IngestService, a.Logger, interval)
	}()
}

// registerTools registers all MCP tools on the App's MCPServer.
func (a *App) registerTools() {
	s := a.MCPServer
	svc := a.DashboardService
	base := a.Config.Currency.Base
	logger := a.Logger

	s.AddTool(createGetVersionTool(), handleGetVersion())
	s.AddTool(createGetDashboardTool(), handleGetDashboard(svc, logger))
	s.AddTool(createGetProjectionTool(), handleGetProjection(svc, base, logger))
	s.AddTool(createGetHistoryTool(), handleGetHistory(svc, a.Config.Reconcile.HistoryWindow, base, logger))
	s.AddTool(createGetExposureTool(), handleGetExposure(svc, base, logger))
	s.AddTool(createListPresetsTool(), handleListPresets())
	s.AddTool(createRefreshDataTool(), handleRefreshData(svc, logger))
}
