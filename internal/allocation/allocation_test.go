package allocation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/networth/internal/models"
)

func testPeriod(effective float64, assets map[models.AssetClass]float64, rates map[string]models.Rate) models.Period {
	return models.Period{
		Date:           time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Assets:         assets,
		Rates:          rates,
		EffectiveValue: effective,
	}
}

var opts = Options{BaseCurrency: "TWD", ClassCurrencies: models.DefaultClassCurrencies()}

func TestCalculate_StockBaseValue(t *testing.T) {
	p := testPeriod(1100000,
		map[models.AssetClass]float64{models.ClassStocks: 11000},
		map[string]models.Rate{"USD": {Value: 31}, "EUR": {Value: 35}},
	)

	res := Calculate(p, opts)
	stocks, ok := res.Item(models.ClassStocks)
	require.True(t, ok)
	assert.Equal(t, 341000.0, stocks.BaseValue)
	assert.Equal(t, "USD", stocks.Currency)
	assert.InDelta(t, 1.0, res.WeightSum(), 1e-9)
}

func TestCalculate_WeightsSumToOne(t *testing.T) {
	cases := []map[models.AssetClass]float64{
		{models.ClassCashBase: 100000, models.ClassStocks: 1000, models.ClassFunds: 500, models.ClassCrypto: 3},
		{models.ClassRealEstate: 9000000},
		{models.ClassCashBase: 1, models.ClassCashForeign: 1, models.ClassVehicle: 1, models.ClassOther: 1},
	}
	rates := map[string]models.Rate{"USD": {Value: 32.5}, "EUR": {Value: 35}}
	for _, effective := range []float64{1, 123456, 9000000, 5e9} {
		for _, assets := range cases {
			res := Calculate(testPeriod(effective, assets, rates), opts)
			assert.InDelta(t, 1.0, res.WeightSum(), 1e-9)
			for _, it := range res.Items {
				assert.GreaterOrEqual(t, it.Weight, 0.0)
				assert.LessOrEqual(t, it.Weight, 1.0)
			}
		}
	}
}

func TestCalculate_ExactSumNotRenormalized(t *testing.T) {
	p := testPeriod(1000,
		map[models.AssetClass]float64{models.ClassCashBase: 250, models.ClassRealEstate: 750},
		nil,
	)
	res := Calculate(p, opts)
	w := res.Weights()
	assert.Equal(t, 0.25, w[models.ClassCashBase])
	assert.Equal(t, 0.75, w[models.ClassRealEstate])
}

func TestCalculate_DegenerateTotal(t *testing.T) {
	p := testPeriod(0, map[models.AssetClass]float64{models.ClassCashBase: 100}, nil)
	res := Calculate(p, opts)
	assert.Equal(t, 1.0, res.Total)
	assert.Equal(t, 0.0, res.WeightSum())
	assert.False(t, res.Unallocated)
}

func TestCalculate_TotalWithoutClassData(t *testing.T) {
	p := testPeriod(1000000, nil, map[string]models.Rate{"USD": {Value: 32.5}})
	res := Calculate(p, opts)

	assert.True(t, res.Unallocated)
	assert.InDelta(t, 1.0, res.WeightSum(), 1e-12)
	assert.Equal(t, 1.0, res.Weights()[models.ClassOther])
	assert.Empty(t, res.Exposure)
	assert.Empty(t, res.NonZero())

	// explicit zeros behave like absent columns
	zeros := map[models.AssetClass]float64{models.ClassStocks: 0, models.ClassCashBase: 0}
	res = Calculate(testPeriod(1000000, zeros, nil), opts)
	assert.Equal(t, 1.0, res.Weights()[models.ClassOther])

	custom := opts
	custom.UnallocatedClass = models.ClassCashBase
	res = Calculate(p, custom)
	assert.Equal(t, 1.0, res.Weights()[models.ClassCashBase])
	assert.Equal(t, 0.0, res.Weights()[models.ClassOther])
}

func TestCalculate_ZeroRateGuard(t *testing.T) {
	// the reconciler always hands over a guarded rate; a fallback-flagged one
	// still values the balance
	p := testPeriod(500000,
		map[models.AssetClass]float64{models.ClassStocks: 10000},
		map[string]models.Rate{"USD": {Value: 32.5, Fallback: true}},
	)
	res := Calculate(p, opts)
	stocks, _ := res.Item(models.ClassStocks)
	assert.Equal(t, 325000.0, stocks.BaseValue)
}

func TestCalculate_CurrencyExposure(t *testing.T) {
	p := testPeriod(1000000,
		map[models.AssetClass]float64{
			models.ClassCashBase:    200000,
			models.ClassStocks:      10000,
			models.ClassCrypto:      2000,
			models.ClassCashForeign: 1000,
			models.ClassFunds:       3000,
		},
		map[string]models.Rate{"USD": {Value: 30}, "EUR": {Value: 35}},
	)
	res := Calculate(p, opts)
	assert.Equal(t, 200000.0, res.Exposure["TWD"])
	assert.Equal(t, 360000.0, res.Exposure["USD"])
	assert.Equal(t, 140000.0, res.Exposure["EUR"])
	assert.NotContains(t, res.Exposure, "JPY")
}

func TestResult_NonZero(t *testing.T) {
	p := testPeriod(1000, map[models.AssetClass]float64{models.ClassCashBase: 1000}, nil)
	res := Calculate(p, opts)
	assert.Len(t, res.Items, len(models.AllAssetClasses))
	nz := res.NonZero()
	require.Len(t, nz, 1)
	assert.Equal(t, models.ClassCashBase, nz[0].Class)
}

func TestWeightedRate(t *testing.T) {
	weights := map[models.AssetClass]float64{models.ClassStocks: 0.5, models.ClassCashBase: 0.5}
	rates := map[models.AssetClass]float64{models.ClassStocks: 8, models.ClassCashBase: 1, models.ClassCrypto: 50}
	assert.InDelta(t, 4.5, WeightedRate(weights, rates), 1e-12)
}

func TestConvertTo(t *testing.T) {
	p := testPeriod(3500000, nil, map[string]models.Rate{"EUR": {Value: 35}})
	v, rate, ok := ConvertTo(3500000, "eur", "TWD", p)
	require.True(t, ok)
	assert.Equal(t, 100000.0, v)
	assert.Equal(t, 35.0, rate)

	_, _, ok = ConvertTo(1, "JPY", "TWD", p)
	assert.False(t, ok)

	v, _, ok = ConvertTo(42, "TWD", "TWD", p)
	require.True(t, ok)
	assert.Equal(t, 42.0, v)
}
