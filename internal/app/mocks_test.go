package app

import (
	"context"
	"fmt"
	"time"

	"github.com/bobmcallan/networth/internal/common"
	"github.com/bobmcallan/networth/internal/interfaces"
	"github.com/bobmcallan/networth/internal/models"
	"github.com/bobmcallan/networth/internal/services/dashboard"
)

// --- mockDashboardService ---

type mockDashboardService struct {
	dashboardFn  func(ctx context.Context, goal models.GoalConfig) (*models.Dashboard, error)
	projectionFn func(ctx context.Context, goal models.GoalConfig) (*interfaces.ProjectionResult, error)
	historyFn    func(ctx context.Context, window int) (*interfaces.HistoryResult, error)
	refreshErr   error

	lastGoal   models.GoalConfig
	lastWindow int
	refreshed  int
}

func (m *mockDashboardService) GetDashboard(ctx context.Context, goal models.GoalConfig) (*models.Dashboard, error) {
	m.lastGoal = goal
	if m.dashboardFn != nil {
		return m.dashboardFn(ctx, goal)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockDashboardService) GetProjection(ctx context.Context, goal models.GoalConfig) (*interfaces.ProjectionResult, error) {
	m.lastGoal = goal
	if m.projectionFn != nil {
		return m.projectionFn(ctx, goal)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockDashboardService) GetHistory(ctx context.Context, window int) (*interfaces.HistoryResult, error) {
	m.lastWindow = window
	if m.historyFn != nil {
		return m.historyFn(ctx, window)
	}
	return &interfaces.HistoryResult{}, nil
}

func (m *mockDashboardService) GetExposure(ctx context.Context) (*interfaces.ExposureResult, error) {
	return &interfaces.ExposureResult{
		AsOf: "2024-02-01",
		Allocation: []models.Allocation{
			{Class: models.ClassStocks, Label: "Stocks", Currency: "USD", NativeValue: 11000, Rate: 31, BaseValue: 341000, Weight: 0.31},
		},
		Exposure: models.CurrencyExposure{"USD": 341000},
	}, nil
}

func (m *mockDashboardService) Refresh(ctx context.Context) (*interfaces.RefreshResult, error) {
	m.refreshed++
	if m.refreshErr != nil {
		return nil, m.refreshErr
	}
	return &interfaces.RefreshResult{
		FetchedAt:   time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC).Format(time.RFC3339),
		Periods:     2,
		Diagnostics: map[models.DiagnosticKind]int{models.DiagFallbackRate: 2},
	}, nil
}

func (m *mockDashboardService) RenderChart(ctx context.Context, goal models.GoalConfig) ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}

// BuildGoal uses the real goal layering over default config.
func (m *mockDashboardService) BuildGoal(o models.GoalOverrides) (models.GoalConfig, error) {
	return dashboard.BuildGoal(common.NewDefaultConfig().Goal, o)
}
