// Package dashboard runs the reconcile, metrics and projection pipeline
package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bobmcallan/networth/internal/allocation"
	"github.com/bobmcallan/networth/internal/common"
	"github.com/bobmcallan/networth/internal/interfaces"
	"github.com/bobmcallan/networth/internal/metrics"
	"github.com/bobmcallan/networth/internal/models"
	"github.com/bobmcallan/networth/internal/projection"
	"github.com/bobmcallan/networth/internal/reconcile"
	"github.com/bobmcallan/networth/internal/sheet"
	"github.com/bobmcallan/networth/internal/timeseries"
)

// Service implements DashboardService
type Service struct {
	ingest     interfaces.IngestService
	config     *common.Config
	reconciler *reconcile.Reconciler
	vocabulary sheet.Vocabulary
	allocOpts  allocation.Options
	logger     *common.Logger
}

// NewService creates a new dashboard service
func NewService(ingest interfaces.IngestService, config *common.Config, logger *common.Logger) *Service {
	return &Service{
		ingest:     ingest,
		config:     config,
		reconciler: reconcile.NewReconciler(reconcile.OptionsFromConfig(config), logger),
		vocabulary: sheet.DefaultVocabulary().With(config.Columns),
		allocOpts: allocation.Options{
			BaseCurrency:    config.Currency.Base,
			ClassCurrencies: config.ClassCurrencies(),
		},
		logger: logger,
	}
}

// pipeline is one rebuilt view of the source. Nothing is shared between loads.
type pipeline struct {
	snapshot    *models.SheetSnapshot
	series      *timeseries.Series
	diagnostics []models.Diagnostic
}

func (s *Service) load(ctx context.Context, force bool) (*pipeline, error) {
	snap, diags, err := s.ingest.Load(ctx, force)
	if err != nil {
		return nil, err
	}

	parsed, err := sheet.Parse(bytes.NewReader(snap.Body), sheet.ParseOptions{
		HeaderRow:  s.config.Source.HeaderRow,
		Vocabulary: s.vocabulary,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrNoData, err)
	}
	if len(parsed.Unknown) > 0 {
		s.logger.Debug().Strs("headers", parsed.Unknown).Msg("Ignoring unknown sheet columns")
	}

	periods, rdiags := s.reconciler.ReconcileAll(parsed.Records)
	diags = append(diags, rdiags...)

	series, tdiags, err := timeseries.Build(periods)
	diags = append(diags, tdiags...)
	if err != nil {
		if errors.Is(err, timeseries.ErrEmptySeries) {
			return nil, fmt.Errorf("%w: %d rows, none with a date and a positive total", models.ErrNoData, len(parsed.Records))
		}
		return nil, err
	}

	if counts := models.CountDiagnostics(diags); len(counts) > 0 {
		ev := s.logger.Debug()
		for _, kind := range []models.DiagnosticKind{
			models.DiagDroppedRecord,
			models.DiagFallbackRate,
			models.DiagDuplicateDate,
			models.DiagCostBasisFallback,
			models.DiagStaleCache,
		} {
			if n := counts[kind]; n > 0 {
				ev = ev.Int(string(kind), n)
			}
		}
		ev.Int("periods", series.Len()).
			Str("correlation_id", common.CorrelationIDFromContext(ctx)).
			Msg("Sheet reconciled with diagnostics")
	}

	return &pipeline{snapshot: snap, series: series, diagnostics: diags}, nil
}

// contribution returns the explicit monthly contribution, or the historical
// average positive gain when none is set.
func contribution(goal models.GoalConfig, series *timeseries.Series) float64 {
	if goal.MonthlyContribution != nil {
		return *goal.MonthlyContribution
	}
	return series.AverageContribution()
}

func (s *Service) project(p *pipeline, alloc allocation.Result, goal models.GoalConfig, monthly float64) ([]models.ProjectionPoint, error) {
	latest := p.series.Latest()
	if goal.ProjectionMode == models.ProjectionSeasonal {
		return projection.ProjectSeasonal(latest.Date, p.series.Values(), goal.HorizonMonths(), projection.DefaultSeasonalParams)
	}
	return projection.Project(projection.NewInput(latest.Date, latest.EffectiveValue, alloc.Items, goal, monthly))
}

// GetDashboard builds the full result for one goal configuration
func (s *Service) GetDashboard(ctx context.Context, goal models.GoalConfig) (*models.Dashboard, error) {
	if err := goal.Validate(); err != nil {
		return nil, err
	}
	if err := goal.ValidateProjection(); err != nil {
		return nil, err
	}

	p, err := s.load(ctx, false)
	if err != nil {
		return nil, err
	}

	latest, previous := p.series.Latest(), p.series.Previous()
	alloc := allocation.Calculate(latest, s.allocOpts)
	cagr := allocation.WeightedRate(alloc.Weights(), goal.GrowthRates)

	kpis, err := metrics.Compute(latest, previous, goal, cagr, metrics.Display{
		Currency: s.config.Currency.Display,
		Base:     s.config.Currency.Base,
	})
	if err != nil {
		return nil, err
	}

	monthly := contribution(goal, p.series)
	forecast, err := s.project(p, alloc, goal, monthly)
	if err != nil {
		return nil, err
	}

	return &models.Dashboard{
		AsOf:         latest.Date,
		FetchedAt:    p.snapshot.FetchedAt,
		Cached:       p.snapshot.Cached,
		BaseCurrency: s.config.Currency.Base,
		Latest:       latest,
		History:      p.series.Points(),
		KPIs:         kpis,
		Allocation:   alloc.NonZero(),
		Exposure:     alloc.Exposure,
		Projection:   forecast,
		Contribution: monthly,
		Goal:         goal,
		Diagnostics:  p.diagnostics,
	}, nil
}

// GetProjection returns the forecast series for one goal configuration
func (s *Service) GetProjection(ctx context.Context, goal models.GoalConfig) (*interfaces.ProjectionResult, error) {
	if err := goal.Validate(); err != nil {
		return nil, err
	}
	if err := goal.ValidateProjection(); err != nil {
		return nil, err
	}

	p, err := s.load(ctx, false)
	if err != nil {
		return nil, err
	}

	latest := p.series.Latest()
	alloc := allocation.Calculate(latest, s.allocOpts)
	monthly := contribution(goal, p.series)
	forecast, err := s.project(p, alloc, goal, monthly)
	if err != nil {
		return nil, err
	}

	return &interfaces.ProjectionResult{
		Start:          models.SeriesPoint{Date: latest.Date, Value: latest.EffectiveValue},
		Points:         forecast,
		Contribution:   monthly,
		WeightedCAGR:   allocation.WeightedRate(alloc.Weights(), goal.GrowthRates),
		MonthsToTarget: projection.MonthsToTarget(forecast, goal.Target),
		Goal:           goal,
	}, nil
}

// GetHistory returns the most recent window periods
func (s *Service) GetHistory(ctx context.Context, window int) (*interfaces.HistoryResult, error) {
	p, err := s.load(ctx, false)
	if err != nil {
		return nil, err
	}

	periods := p.series.Window(window)
	points := make([]models.SeriesPoint, len(periods))
	for i, period := range periods {
		points[i] = models.SeriesPoint{Date: period.Date, Value: period.EffectiveValue}
	}

	return &interfaces.HistoryResult{
		Periods:     periods,
		Points:      points,
		Total:       p.series.Len(),
		Diagnostics: p.diagnostics,
	}, nil
}

// GetExposure returns the latest allocation and currency exposure
func (s *Service) GetExposure(ctx context.Context) (*interfaces.ExposureResult, error) {
	p, err := s.load(ctx, false)
	if err != nil {
		return nil, err
	}

	latest := p.series.Latest()
	alloc := allocation.Calculate(latest, s.allocOpts)
	return &interfaces.ExposureResult{
		AsOf:       latest.Date.Format("2006-01-02"),
		Allocation: alloc.Items,
		Exposure:   alloc.Exposure,
	}, nil
}

// Refresh reloads from the source, bypassing the cache TTL. The cached
// snapshot is only replaced by a successful fetch, so a refresh during an
// outage still serves the stale copy with a stale_cache diagnostic.
func (s *Service) Refresh(ctx context.Context) (*interfaces.RefreshResult, error) {
	p, err := s.load(ctx, true)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int("periods", p.series.Len()).Msg("Data refreshed")

	return &interfaces.RefreshResult{
		FetchedAt:   p.snapshot.FetchedAt.Format(time.RFC3339),
		Periods:     p.series.Len(),
		Diagnostics: models.CountDiagnostics(p.diagnostics),
	}, nil
}

// RenderChart draws the history and forecast as a PNG
func (s *Service) RenderChart(ctx context.Context, goal models.GoalConfig) ([]byte, error) {
	d, err := s.GetDashboard(ctx, goal)
	if err != nil {
		return nil, err
	}
	return RenderNetWorthChart(d.History, d.Projection, goal.Target)
}
