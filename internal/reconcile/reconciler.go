package reconcile

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bobmcallan/networth/internal/common"
	"github.com/bobmcallan/networth/internal/models"
)

// CostBasisPolicy decides when a class falls back from market value to cost basis.
type CostBasisPolicy string

const (
	// FallbackWhenNotPositive uses market value only when it is > 0.
	FallbackWhenNotPositive CostBasisPolicy = "positive"
	// FallbackWhenBlank uses market value whenever the cell is filled, so an
	// explicit 0 means the holding is really empty.
	FallbackWhenBlank CostBasisPolicy = "blank"
)

// DefaultDateLayouts are tried in order when parsing the date column.
var DefaultDateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006/1/2",
	"2006-1-2",
	"2006.01.02",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"2006-01",
	"2006/01",
	"2006/1",
	"Jan 2006",
	"January 2006",
	time.RFC3339,
}

// Options configures a Reconciler.
type Options struct {
	BaseCurrency    string
	TotalPriority   []models.Column
	ClassCurrencies map[models.AssetClass]string
	RateFloor       float64
	DefaultRates    map[string]float64 // keyed by upper-case currency
	CostBasis       CostBasisPolicy
	DateLayouts     []string
}

// OptionsFromConfig derives reconciler options from the loaded config.
func OptionsFromConfig(cfg *common.Config) Options {
	return Options{
		BaseCurrency:    cfg.Currency.Base,
		TotalPriority:   cfg.TotalPriority(),
		ClassCurrencies: cfg.ClassCurrencies(),
		RateFloor:       cfg.Currency.RateFloor,
		DefaultRates:    cfg.Currency.DefaultRates,
		CostBasis:       CostBasisPolicy(cfg.Reconcile.CostBasisFallback),
		DateLayouts:     cfg.Reconcile.DateLayouts,
	}
}

// Reconciler resolves competing columns of one row into a Period.
// It is stateless between calls.
type Reconciler struct {
	opts       Options
	totals     []Candidate[models.RawRecord]
	currencies []string // sorted foreign currencies needing a rate
	logger     *common.Logger
}

// NewReconciler builds a reconciler. A nil logger is replaced by a silent one.
func NewReconciler(opts Options, logger *common.Logger) *Reconciler {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	if len(opts.TotalPriority) == 0 {
		opts.TotalPriority = models.DefaultTotalPriority
	}
	if opts.ClassCurrencies == nil {
		opts.ClassCurrencies = models.DefaultClassCurrencies()
	}
	if len(opts.DateLayouts) == 0 {
		opts.DateLayouts = DefaultDateLayouts
	}
	if opts.CostBasis == "" {
		opts.CostBasis = FallbackWhenNotPositive
	}
	opts.BaseCurrency = strings.ToUpper(opts.BaseCurrency)

	totals := make([]Candidate[models.RawRecord], 0, len(opts.TotalPriority))
	for _, col := range opts.TotalPriority {
		totals = append(totals, cellCandidate(col, Positive))
	}

	seen := make(map[string]bool)
	var currencies []string
	for _, ccy := range opts.ClassCurrencies {
		ccy = strings.ToUpper(ccy)
		if ccy == opts.BaseCurrency || seen[ccy] {
			continue
		}
		seen[ccy] = true
		currencies = append(currencies, ccy)
	}
	sort.Strings(currencies)

	return &Reconciler{opts: opts, totals: totals, currencies: currencies, logger: logger}
}

// cellCandidate reads a column as a normalized amount. A missing column reads
// as 0, which no predicate used here accepts for totals.
func cellCandidate(col models.Column, valid func(float64) bool) Candidate[models.RawRecord] {
	return Candidate[models.RawRecord]{
		Name: string(col),
		Extract: func(r models.RawRecord) (float64, bool) {
			return ParseAmount(r.Cell(col)), true
		},
		Valid: valid,
	}
}

// presentCandidate only offers a value when the cell is non-blank.
func presentCandidate(col models.Column, valid func(float64) bool) Candidate[models.RawRecord] {
	return Candidate[models.RawRecord]{
		Name: string(col),
		Extract: func(r models.RawRecord) (float64, bool) {
			raw := r.Cell(col)
			if IsBlank(raw) {
				return 0, false
			}
			return ParseAmount(raw), true
		},
		Valid: valid,
	}
}

func (r *Reconciler) classCandidates(c models.AssetClass) []Candidate[models.RawRecord] {
	market := models.MarketColumn(c)
	if !c.HasCostBasis() {
		return []Candidate[models.RawRecord]{cellCandidate(market, NonNegative)}
	}
	cost := models.CostColumn(c)
	if r.opts.CostBasis == FallbackWhenBlank {
		return []Candidate[models.RawRecord]{
			presentCandidate(market, NonNegative),
			presentCandidate(cost, NonNegative),
		}
	}
	return []Candidate[models.RawRecord]{
		cellCandidate(market, Positive),
		cellCandidate(cost, Positive),
	}
}

// ParseDate tries each configured layout in order.
func (r *Reconciler) ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range r.opts.DateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// Reconcile resolves one row. ok is false when the row must be dropped
// (unparseable date or no positive total candidate); the returned diagnostics
// explain why. It never fails on a single bad cell.
func (r *Reconciler) Reconcile(rec models.RawRecord) (models.Period, []models.Diagnostic, bool) {
	var diags []models.Diagnostic

	date, ok := r.ParseDate(rec.Cell(models.ColumnDate))
	if !ok {
		diags = append(diags, models.Diagnostic{
			Kind:    models.DiagDroppedRecord,
			Row:     rec.Row,
			Column:  models.ColumnDate,
			Message: fmt.Sprintf("missing or unparseable date %q", strings.TrimSpace(rec.Cell(models.ColumnDate))),
		})
		return models.Period{}, diags, false
	}

	effective, col, ok := FirstValid(rec, r.totals)
	if !ok {
		diags = append(diags, models.Diagnostic{
			Kind:    models.DiagDroppedRecord,
			Row:     rec.Row,
			Message: fmt.Sprintf("no positive total in %v", r.opts.TotalPriority),
		})
		return models.Period{}, diags, false
	}

	p := models.Period{
		Date:            date,
		Assets:          make(map[models.AssetClass]float64, len(models.AllAssetClasses)),
		Sources:         make(map[models.AssetClass]models.ValueSource, len(models.AllAssetClasses)),
		Rates:           make(map[string]models.Rate, len(r.currencies)),
		EffectiveValue:  effective,
		EffectiveColumn: models.Column(col),
		Row:             rec.Row,
	}

	for _, class := range models.AllAssetClasses {
		v, name, found := FirstValid(rec, r.classCandidates(class))
		switch {
		case !found:
			p.Sources[class] = models.SourceNone
		case name == string(models.CostColumn(class)):
			p.Sources[class] = models.SourceCost
			if !IsBlank(rec.Cell(models.MarketColumn(class))) {
				diags = append(diags, models.Diagnostic{
					Kind:    models.DiagCostBasisFallback,
					Row:     rec.Row,
					Column:  models.MarketColumn(class),
					Message: fmt.Sprintf("%s valued at cost basis", class),
				})
			}
		default:
			p.Sources[class] = models.SourceMarket
		}
		if v < 0 {
			v = 0
		}
		p.Assets[class] = v
	}

	for _, ccy := range r.currencies {
		rate, diag := r.guardRate(rec, ccy)
		p.Rates[ccy] = rate
		if diag != nil {
			diags = append(diags, *diag)
		}
	}

	if raw := rec.Cell(models.ColumnPeriodGain); !IsBlank(raw) {
		p.PeriodGain = ParseAmount(raw)
		p.HasPeriodGain = true
	}

	return p, diags, true
}

// guardRate accepts a parsed rate only above the plausibility floor; anything
// else (blank, zero, garbage) is replaced by the configured default.
func (r *Reconciler) guardRate(rec models.RawRecord, ccy string) (models.Rate, *models.Diagnostic) {
	col := models.RateColumn(ccy)
	v := ParseAmount(rec.Cell(col))
	if v > r.opts.RateFloor {
		return models.Rate{Value: v}, nil
	}
	def := r.opts.DefaultRates[ccy]
	return models.Rate{Value: def, Fallback: true}, &models.Diagnostic{
		Kind:    models.DiagFallbackRate,
		Row:     rec.Row,
		Column:  col,
		Message: fmt.Sprintf("%s rate %v not above floor %v, using default %v", ccy, v, r.opts.RateFloor, def),
	}
}

// ReconcileAll reconciles every row, dropping the ones that cannot be used.
// Output keeps source order.
func (r *Reconciler) ReconcileAll(records []models.RawRecord) ([]models.Period, []models.Diagnostic) {
	periods := make([]models.Period, 0, len(records))
	var diags []models.Diagnostic
	dropped := 0
	for _, rec := range records {
		p, d, ok := r.Reconcile(rec)
		diags = append(diags, d...)
		if !ok {
			dropped++
			continue
		}
		periods = append(periods, p)
	}
	r.logger.Debug().
		Int("rows", len(records)).
		Int("kept", len(periods)).
		Int("dropped", dropped).
		Msg("Records reconciled")
	return periods, diags
}
