// Package interfaces defines service contracts for the net-worth tracker
package interfaces

import (
	"context"

	"github.com/bobmcallan/networth/internal/models"
)

// IngestService loads the export through the snapshot cache
type IngestService interface {
	// Load returns a snapshot, fetching when the cached one is stale or force is set.
	// Diagnostics report degraded loads such as a stale copy served after a fetch error.
	Load(ctx context.Context, force bool) (*models.SheetSnapshot, []models.Diagnostic, error)
}

// DashboardService runs the reconcile/metrics/projection pipeline
type DashboardService interface {
	// GetDashboard builds the full result for one goal configuration
	GetDashboard(ctx context.Context, goal models.GoalConfig) (*models.Dashboard, error)

	// GetProjection returns only the forecast series and the contribution used
	GetProjection(ctx context.Context, goal models.GoalConfig) (*ProjectionResult, error)

	// GetHistory returns the last window periods (all when window <= 0)
	GetHistory(ctx context.Context, window int) (*HistoryResult, error)

	// GetExposure returns the latest allocation and currency exposure
	GetExposure(ctx context.Context) (*ExposureResult, error)

	// Refresh forces a reload from the source
	Refresh(ctx context.Context) (*RefreshResult, error)

	// RenderChart draws history and forecast as PNG
	RenderChart(ctx context.Context, goal models.GoalConfig) ([]byte, error)

	// BuildGoal resolves the configured goal, preset and request overrides
	BuildGoal(overrides models.GoalOverrides) (models.GoalConfig, error)
}

// ProjectionResult is the forecast for one goal configuration
type ProjectionResult struct {
	Start          models.SeriesPoint       `json:"start"`
	Points         []models.ProjectionPoint `json:"points"`
	Contribution   float64                  `json:"monthly_contribution"`
	WeightedCAGR   float64                  `json:"weighted_cagr"`
	MonthsToTarget int                      `json:"months_to_target"` // 0 = not reached within the horizon
	Goal           models.GoalConfig        `json:"goal"`
}

// HistoryResult is a window of reconciled periods
type HistoryResult struct {
	Periods     []models.Period      `json:"periods"`
	Points      []models.SeriesPoint `json:"points"`
	Total       int                  `json:"total"`
	Diagnostics []models.Diagnostic  `json:"diagnostics,omitempty"`
}

// ExposureResult is the allocation of the latest period
type ExposureResult struct {
	AsOf       string                  `json:"as_of"`
	Allocation []models.Allocation     `json:"allocation"`
	Exposure   models.CurrencyExposure `json:"exposure"`
}

// RefreshResult summarises a forced reload
type RefreshResult struct {
	FetchedAt   string                        `json:"fetched_at"`
	Periods     int                           `json:"periods"`
	Diagnostics map[models.DiagnosticKind]int `json:"diagnostics"`
}
