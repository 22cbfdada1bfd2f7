package reconcile

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/networth/internal/models"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1,234,567", 1234567},
		{"$1,234.50", 1234.5},
		{"NT$ 50,000", 50000},
		{"  42  ", 42},
		{"-3,000", -3000},
		{"€-12.5", -12.5},
		{"", 0},
		{"   ", 0},
		{"N/A", 0},
		{"-", 0},
		{".", 0},
		{"1.2.3", 0}, // second decimal point is not a number
		{"12-34", 0}, // minus only allowed leading
		{"0.0001", 0.0001},
		{"31.25", 31.25},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAmount(tt.in))
		})
	}
}

func TestParseAmount_Idempotent(t *testing.T) {
	for _, v := range []float64{0, 1, 1234567.89, 0.1, 32.5, -17.25, 1e-7, 123456789012.5} {
		s := strconv.FormatFloat(v, 'f', -1, 64)
		first := ParseAmount(s)
		second := ParseAmount(strconv.FormatFloat(first, 'f', -1, 64))
		assert.Equal(t, v, first, "parse %q", s)
		assert.Equal(t, first, second, "re-parse %q", s)
	}
}

func TestFirstValid_Order(t *testing.T) {
	values := map[string]float64{"a": 0, "b": 5, "c": 7}
	cand := func(name string) Candidate[map[string]float64] {
		return Candidate[map[string]float64]{
			Name:    name,
			Extract: func(m map[string]float64) (float64, bool) { v, ok := m[name]; return v, ok },
			Valid:   Positive,
		}
	}

	v, name, ok := FirstValid(values, []Candidate[map[string]float64]{cand("a"), cand("b"), cand("c")})
	require.True(t, ok)
	assert.Equal(t, 5.0, v)
	assert.Equal(t, "b", name)

	_, _, ok = FirstValid(values, []Candidate[map[string]float64]{cand("a"), cand("missing")})
	assert.False(t, ok)
}

func newTestReconciler(policy CostBasisPolicy) *Reconciler {
	return NewReconciler(Options{
		BaseCurrency:    "TWD",
		ClassCurrencies: models.DefaultClassCurrencies(),
		RateFloor:       0.01,
		DefaultRates:    map[string]float64{"USD": 32.5, "EUR": 35.0},
		CostBasis:       policy,
	}, nil)
}

func record(row int, cells map[models.Column]string) models.RawRecord {
	return models.RawRecord{Row: row, Cells: cells}
}

func TestReconcile_TotalPriority(t *testing.T) {
	r := newTestReconciler(FallbackWhenNotPositive)

	p, _, ok := r.Reconcile(record(0, map[models.Column]string{
		models.ColumnDate:                 "2024-01-31",
		models.ColumnTrueTotal:            "0",
		models.ColumnTotalPlusVehicleDepr: "1,200,000",
		models.ColumnTotal:                "1,100,000",
	}))
	require.True(t, ok)
	assert.Equal(t, 1200000.0, p.EffectiveValue)
	assert.Equal(t, models.ColumnTotalPlusVehicleDepr, p.EffectiveColumn)

	p, _, ok = r.Reconcile(record(1, map[models.Column]string{
		models.ColumnDate:                 "2024-02-29",
		models.ColumnTrueTotal:            "1,300,000",
		models.ColumnTotalPlusVehicleDepr: "1,200,000",
		models.ColumnTotal:                "1,100,000",
	}))
	require.True(t, ok)
	assert.Equal(t, 1300000.0, p.EffectiveValue)

	p, _, ok = r.Reconcile(record(2, map[models.Column]string{
		models.ColumnDate:  "2024-03-31",
		models.ColumnTotal: "900000",
	}))
	require.True(t, ok)
	assert.Equal(t, 900000.0, p.EffectiveValue)
	assert.Equal(t, models.ColumnTotal, p.EffectiveColumn)
}

func TestReconcile_DropsRecordWithoutPositiveTotal(t *testing.T) {
	r := newTestReconciler(FallbackWhenNotPositive)

	for i, cells := range []map[models.Column]string{
		{models.ColumnDate: "2030-01-01"},
		{models.ColumnDate: "2030-02-01", models.ColumnTotal: "0"},
		{models.ColumnDate: "2030-03-01", models.ColumnTotal: "-5", models.ColumnTrueTotal: "n/a"},
	} {
		_, diags, ok := r.Reconcile(record(i, cells))
		assert.False(t, ok, "row %d", i)
		require.Len(t, diags, 1)
		assert.Equal(t, models.DiagDroppedRecord, diags[0].Kind)
	}
}

func TestReconcile_DropsUnparseableDate(t *testing.T) {
	r := newTestReconciler(FallbackWhenNotPositive)

	_, diags, ok := r.Reconcile(record(4, map[models.Column]string{
		models.ColumnDate:  "someday",
		models.ColumnTotal: "100",
	}))
	assert.False(t, ok)
	require.Len(t, diags, 1)
	assert.Equal(t, models.ColumnDate, diags[0].Column)
	assert.Equal(t, 4, diags[0].Row)
}

func TestReconcile_DateLayouts(t *testing.T) {
	r := newTestReconciler(FallbackWhenNotPositive)
	want := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	for _, raw := range []string{"2024-03-05", "2024/03/05", "2024/3/5", "2024.03.05", " 2024-03-05 "} {
		got, ok := r.ParseDate(raw)
		require.True(t, ok, raw)
		assert.True(t, got.Equal(want), "%s -> %v", raw, got)
	}

	got, ok := r.ParseDate("2024-07")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestReconcile_MarketValuePreferredOverCost(t *testing.T) {
	r := newTestReconciler(FallbackWhenNotPositive)

	p, diags, ok := r.Reconcile(record(0, map[models.Column]string{
		models.ColumnDate:                         "2024-01-01",
		models.ColumnTotal:                        "1000000",
		models.MarketColumn(models.ClassStocks):   "12,000",
		models.CostColumn(models.ClassStocks):     "10,000",
		models.MarketColumn(models.ClassFunds):    "0",
		models.CostColumn(models.ClassFunds):      "5,000",
		models.CostColumn(models.ClassCrypto):     "700",
		models.MarketColumn(models.ClassCashBase): "300000",
	}))
	require.True(t, ok)

	assert.Equal(t, 12000.0, p.Asset(models.ClassStocks))
	assert.Equal(t, models.SourceMarket, p.Sources[models.ClassStocks])

	// market 0 -> cost under the "positive" policy, and flagged
	assert.Equal(t, 5000.0, p.Asset(models.ClassFunds))
	assert.Equal(t, models.SourceCost, p.Sources[models.ClassFunds])

	// cost-only column, no market column at all: silent fallback
	assert.Equal(t, 700.0, p.Asset(models.ClassCrypto))
	assert.Equal(t, models.SourceCost, p.Sources[models.ClassCrypto])

	assert.Equal(t, 300000.0, p.Asset(models.ClassCashBase))
	assert.Equal(t, 0.0, p.Asset(models.ClassVehicle))
	assert.Equal(t, models.SourceNone, p.Sources[models.ClassVehicle])

	counts := models.CountDiagnostics(diags)
	assert.Equal(t, 1, counts[models.DiagCostBasisFallback])
}

func TestReconcile_BlankPolicyKeepsExplicitZero(t *testing.T) {
	r := newTestReconciler(FallbackWhenBlank)

	p, _, ok := r.Reconcile(record(0, map[models.Column]string{
		models.ColumnDate:                      "2024-01-01",
		models.ColumnTotal:                     "1000000",
		models.MarketColumn(models.ClassFunds): "0",
		models.CostColumn(models.ClassFunds):   "5,000",
		models.CostColumn(models.ClassStocks):  "8,000",
	}))
	require.True(t, ok)
	assert.Equal(t, 0.0, p.Asset(models.ClassFunds))
	assert.Equal(t, models.SourceMarket, p.Sources[models.ClassFunds])
	assert.Equal(t, 8000.0, p.Asset(models.ClassStocks))
}

func TestReconcile_RateGuard(t *testing.T) {
	r := newTestReconciler(FallbackWhenNotPositive)

	p, diags, ok := r.Reconcile(record(3, map[models.Column]string{
		models.ColumnDate:             "2024-01-01",
		models.ColumnTotal:            "1000000",
		models.RateColumn("USD"):      "31.2",
		models.RateColumn("EUR"):      "",
		models.MarketColumn("stocks"): "100",
		models.MarketColumn("funds"):  "100",
	}))
	require.True(t, ok)

	assert.Equal(t, models.Rate{Value: 31.2}, p.Rates["USD"])
	assert.Equal(t, models.Rate{Value: 35.0, Fallback: true}, p.Rates["EUR"])

	counts := models.CountDiagnostics(diags)
	assert.Equal(t, 1, counts[models.DiagFallbackRate])
	assert.NotContains(t, p.Rates, "TWD")
}

func TestReconcile_ZeroRateNeverUsed(t *testing.T) {
	r := newTestReconciler(FallbackWhenNotPositive)

	p, _, ok := r.Reconcile(record(0, map[models.Column]string{
		models.ColumnDate:        "2024-01-01",
		models.ColumnTotal:       "1000000",
		models.RateColumn("USD"): "0",
	}))
	require.True(t, ok)
	assert.Greater(t, p.Rates["USD"].Value, 0.0)
	assert.True(t, p.Rates["USD"].Fallback)
}

func TestReconcile_NegativeAssetClamped(t *testing.T) {
	r := newTestReconciler(FallbackWhenNotPositive)

	p, _, ok := r.Reconcile(record(0, map[models.Column]string{
		models.ColumnDate:                      "2024-01-01",
		models.ColumnTotal:                     "1000",
		models.MarketColumn(models.ClassOther): "-250",
	}))
	require.True(t, ok)
	assert.Equal(t, 0.0, p.Asset(models.ClassOther))
}

func TestReconcile_PeriodGain(t *testing.T) {
	r := newTestReconciler(FallbackWhenNotPositive)

	p, _, _ := r.Reconcile(record(0, map[models.Column]string{
		models.ColumnDate:       "2024-01-01",
		models.ColumnTotal:      "1000",
		models.ColumnPeriodGain: "-1,500",
	}))
	assert.True(t, p.HasPeriodGain)
	assert.Equal(t, -1500.0, p.PeriodGain)

	p, _, _ = r.Reconcile(record(1, map[models.Column]string{
		models.ColumnDate:  "2024-02-01",
		models.ColumnTotal: "1000",
	}))
	assert.False(t, p.HasPeriodGain)
}

func TestReconcileAll_NeverIncludesDroppedRows(t *testing.T) {
	r := newTestReconciler(FallbackWhenNotPositive)

	var records []models.RawRecord
	for i := 0; i < 50; i++ {
		total := "0"
		if i%3 == 0 {
			total = strconv.Itoa(1000 + i)
		}
		records = append(records, record(i, map[models.Column]string{
			models.ColumnDate:  time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, i, 0).Format("2006-01-02"),
			models.ColumnTotal: total,
		}))
	}

	periods, diags := r.ReconcileAll(records)
	assert.Len(t, periods, 17)
	assert.Equal(t, 33, models.CountDiagnostics(diags)[models.DiagDroppedRecord])
	for _, p := range periods {
		assert.Greater(t, p.EffectiveValue, 0.0)
		assert.Equal(t, 0, p.Row%3)
	}
}
