package projection

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/networth/internal/models"
)

var start = time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

func TestProject_SingleClassScenario(t *testing.T) {
	in := Input{
		Start:               start,
		Classes:             []ClassInput{{Class: models.ClassStocks, Balance: 1000000, AnnualRate: 12}},
		MonthlyContribution: 10000,
		Months:              12,
	}

	points, err := Project(in)
	require.NoError(t, err)
	require.Len(t, points, 12)

	assert.InDelta(t, 1020000.0, points[0].Value, 1e-6)

	rate, balance := 12.0, 1000000.0
	for i, p := range points {
		balance = balance*(1+rate/100/12) + 10000
		assert.InDelta(t, balance, p.Value, 1e-6, "month %d", i+1)
		assert.Equal(t, models.SeriesForecast, p.Series)
	}
}

func TestProject_HorizonLength(t *testing.T) {
	in := Input{
		Start:   start,
		Classes: []ClassInput{{Class: models.ClassCashBase, Balance: 100, AnnualRate: 1}},
	}
	for _, n := range []int{0, 1, 7, 120, 600} {
		in.Months = n
		points, err := Project(in)
		require.NoError(t, err)
		assert.Len(t, points, n)
	}
}

func TestProject_NegativeHorizon(t *testing.T) {
	_, err := Project(Input{Months: -1})
	assert.ErrorIs(t, err, models.ErrInvalidHorizon)
}

func TestProject_Deterministic(t *testing.T) {
	in := Input{
		Start: start,
		Classes: []ClassInput{
			{Class: models.ClassCashBase, Balance: 300000, AnnualRate: 1},
			{Class: models.ClassStocks, Balance: 341000, AnnualRate: 7.3},
			{Class: models.ClassCrypto, Balance: 12345.67, AnnualRate: -20},
			{Class: models.ClassVehicle, Balance: 800000, Consumption: true},
		},
		MonthlyContribution: 23456.78,
		DepreciationRate:    15,
		Months:              240,
	}
	a, err := Project(in)
	require.NoError(t, err)
	b, err := Project(in)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestProject_DepreciationScenario(t *testing.T) {
	in := Input{
		Start:            start,
		Classes:          []ClassInput{{Class: models.ClassVehicle, Balance: 1000000, Consumption: true}},
		DepreciationRate: 12,
		Months:           12,
	}
	points, err := Project(in)
	require.NoError(t, err)
	require.Len(t, points, 12)

	prev := 1000000.0
	for _, p := range points {
		assert.Less(t, p.Value, prev)
		assert.GreaterOrEqual(t, p.Value, 0.0)
		prev = p.Value
	}
	assert.InDelta(t, 1000000*math.Pow(0.99, 12), points[11].Value, 1e-6)
}

func TestProject_DepreciationFlooredAtZero(t *testing.T) {
	in := Input{
		Start:            start,
		Classes:          []ClassInput{{Class: models.ClassVehicle, Balance: 1000, Consumption: true}},
		DepreciationRate: 2400,
		Months:           3,
	}
	points, err := Project(in)
	require.NoError(t, err)
	for _, p := range points {
		assert.Equal(t, 0.0, p.Value)
	}
}

func TestProject_ConsumptionGetsNoContribution(t *testing.T) {
	in := Input{
		Start: start,
		Classes: []ClassInput{
			{Class: models.ClassCashBase, Balance: 0},
			{Class: models.ClassVehicle, Balance: 0, Consumption: true},
		},
		MonthlyContribution: 1000,
		DepreciationRate:    10,
		Months:              2,
	}
	points, err := Project(in)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, points[0].Value)
	assert.Equal(t, 2000.0, points[1].Value)
}

func TestProject_ZeroBalanceCompoundsFromContributions(t *testing.T) {
	in := Input{
		Start:               start,
		Classes:             []ClassInput{{Class: models.ClassFunds, Balance: 0, AnnualRate: 12}},
		MonthlyContribution: 1000,
		Months:              3,
	}
	points, err := Project(in)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, points[0].Value)
	assert.InDelta(t, 1000*1.01+1000, points[1].Value, 1e-9)
	assert.Greater(t, points[2].Value, 3000.0)
}

func TestProject_NegativeRateNotClamped(t *testing.T) {
	in := Input{
		Start:   start,
		Classes: []ClassInput{{Class: models.ClassStocks, Balance: 1200, AnnualRate: -12}},
		Months:  1,
	}
	points, err := Project(in)
	require.NoError(t, err)
	assert.InDelta(t, 1188.0, points[0].Value, 1e-9)
}

func TestContributionWeights(t *testing.T) {
	w := ContributionWeights([]ClassInput{
		{Class: models.ClassCashBase, Balance: 300},
		{Class: models.ClassStocks, Balance: 100},
		{Class: models.ClassVehicle, Balance: 600, Consumption: true},
	})
	assert.Equal(t, []float64{0.75, 0.25, 0}, w)

	w = ContributionWeights([]ClassInput{
		{Class: models.ClassCashBase},
		{Class: models.ClassStocks},
		{Class: models.ClassVehicle, Consumption: true},
	})
	assert.Equal(t, []float64{0.5, 0.5, 0}, w)
}

func TestProject_Dates(t *testing.T) {
	points, err := Project(Input{
		Start:   start,
		Classes: []ClassInput{{Class: models.ClassCashBase, Balance: 1}},
		Months:  3,
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), points[0].Date)
	assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), points[1].Date)
	assert.Equal(t, time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC), points[2].Date)
}

func TestNewInput(t *testing.T) {
	goal := models.GoalConfig{
		GrowthRates:        map[models.AssetClass]float64{models.ClassStocks: 7},
		DepreciationRate:   15,
		ConsumptionClasses: []models.AssetClass{models.ClassVehicle},
		HorizonYears:       2,
	}
	items := []models.Allocation{
		{Class: models.ClassStocks, BaseValue: 341000, Weight: 0.4},
		{Class: models.ClassVehicle, BaseValue: 500000, Weight: 0.6},
	}
	in := NewInput(start, 1000000, items, goal, 5000)
	assert.Equal(t, 24, in.Months)
	assert.Equal(t, 400000.0, in.Classes[0].Balance)
	assert.Equal(t, 600000.0, in.Classes[1].Balance)
	assert.Equal(t, 7.0, in.Classes[0].AnnualRate)
	assert.False(t, in.Classes[0].Consumption)
	assert.True(t, in.Classes[1].Consumption)
	assert.Equal(t, 5000.0, in.MonthlyContribution)
}

func TestMonthsToTarget(t *testing.T) {
	points := []models.ProjectionPoint{{Value: 10}, {Value: 20}, {Value: 30}}
	assert.Equal(t, 2, MonthsToTarget(points, 15))
	assert.Equal(t, 0, MonthsToTarget(points, 100))
}

func TestResolve_Presets(t *testing.T) {
	baseline := map[models.AssetClass]float64{models.ClassStocks: 5, models.ClassCashBase: 1}

	custom, err := Resolve(PresetCustom, baseline, nil)
	require.NoError(t, err)
	assert.Equal(t, 5.0, custom[models.ClassStocks])
	assert.Equal(t, 0.0, custom[models.ClassCrypto])
	assert.Len(t, custom, len(models.AllAssetClasses))

	empty, err := Resolve("", baseline, nil)
	require.NoError(t, err)
	assert.Equal(t, custom, empty)

	bal, err := Resolve("balanced", baseline, map[models.AssetClass]float64{models.ClassCrypto: 4})
	require.NoError(t, err)
	assert.Equal(t, 7.0, bal[models.ClassStocks])
	assert.Equal(t, 4.0, bal[models.ClassCrypto])

	down, err := Resolve("downturn", nil, nil)
	require.NoError(t, err)
	assert.Less(t, down[models.ClassStocks], 0.0)

	// the input maps are never modified
	assert.Equal(t, 5.0, baseline[models.ClassStocks])
}

func TestResolve_Unknown(t *testing.T) {
	_, err := Resolve("moonshot", nil, nil)
	assert.ErrorIs(t, err, models.ErrUnknownPreset)
	assert.True(t, models.IsConfigError(err))
}

func TestPresets_Sorted(t *testing.T) {
	ps := Presets()
	require.NotEmpty(t, ps)
	for i := 1; i < len(ps); i++ {
		assert.Less(t, ps[i-1].ID, ps[i].ID)
	}
	_, ok := LookupPreset(PresetCustom)
	assert.True(t, ok)
}

func TestProjectSeasonal_Length(t *testing.T) {
	history := make([]float64, 30)
	for i := range history {
		history[i] = 1000000 + float64(i)*10000 + 5000*math.Sin(float64(i)*math.Pi/6)
	}
	for _, n := range []int{0, 1, 24} {
		points, err := ProjectSeasonal(start, history, n, DefaultSeasonalParams)
		require.NoError(t, err)
		assert.Len(t, points, n)
	}

	a, _ := ProjectSeasonal(start, history, 36, DefaultSeasonalParams)
	b, _ := ProjectSeasonal(start, history, 36, DefaultSeasonalParams)
	assert.Equal(t, a, b)
	for _, p := range a {
		assert.GreaterOrEqual(t, p.Value, 0.0)
	}
}

func TestProjectSeasonal_LinearHistoryUsesTrend(t *testing.T) {
	history := []float64{100, 200, 300, 400, 500}
	points, err := ProjectSeasonal(start, history, 3, DefaultSeasonalParams)
	require.NoError(t, err)
	assert.InDelta(t, 600.0, points[0].Value, 1e-6)
	assert.InDelta(t, 800.0, points[2].Value, 1e-6)
}

func TestProjectSeasonal_SinglePointIsFlat(t *testing.T) {
	points, err := ProjectSeasonal(start, []float64{42}, 4, DefaultSeasonalParams)
	require.NoError(t, err)
	for _, p := range points {
		assert.Equal(t, 42.0, p.Value)
	}
}

func TestProjectSeasonal_NegativeHorizon(t *testing.T) {
	_, err := ProjectSeasonal(start, []float64{1, 2}, -3, DefaultSeasonalParams)
	assert.ErrorIs(t, err, models.ErrInvalidHorizon)
}

func TestProjectSeasonal_FloorsAtZero(t *testing.T) {
	points, err := ProjectSeasonal(start, []float64{500, 400, 300, 200, 100}, 10, DefaultSeasonalParams)
	require.NoError(t, err)
	assert.Equal(t, 0.0, points[9].Value)
}
