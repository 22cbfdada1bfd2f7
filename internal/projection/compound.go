// Package projection forecasts future net worth from the latest balances.
// Everything here is a pure function of its inputs.
package projection

import (
	"fmt"
	"time"

	"github.com/bobmcallan/networth/internal/models"
)

// ClassInput is the starting state of one class. Balance is in base currency.
type ClassInput struct {
	Class       models.AssetClass
	Balance     float64
	AnnualRate  float64 // percent; negative allowed
	Consumption bool    // depreciates instead of compounding, receives no contribution
}

// Input drives Project.
type Input struct {
	Start               time.Time // date of the latest period; month 1 is one month later
	Classes             []ClassInput
	MonthlyContribution float64
	DepreciationRate    float64 // annual percent applied to consumption classes
	Months              int
}

// NewInput builds an Input from a period's allocation and a goal. Starting
// balances are weight * effective, so month 0 sums to the reported net worth
// even when the class values drift from it. Classes keep allocation order.
func NewInput(start time.Time, effective float64, items []models.Allocation, goal models.GoalConfig, contribution float64) Input {
	classes := make([]ClassInput, 0, len(items))
	for _, it := range items {
		classes = append(classes, ClassInput{
			Class:       it.Class,
			Balance:     it.Weight * effective,
			AnnualRate:  goal.GrowthRates[it.Class],
			Consumption: goal.IsConsumption(it.Class),
		})
	}
	return Input{
		Start:               start,
		Classes:             classes,
		MonthlyContribution: contribution,
		DepreciationRate:    goal.DepreciationRate,
		Months:              goal.HorizonMonths(),
	}
}

// ContributionWeights splits the monthly contribution across the
// contributing (non-consumption) classes by their starting balance. When
// every contributing balance is zero the split is equal. Computed once per
// projection.
func ContributionWeights(classes []ClassInput) []float64 {
	weights := make([]float64, len(classes))
	var sum float64
	var n int
	for _, c := range classes {
		if c.Consumption {
			continue
		}
		n++
		if c.Balance > 0 {
			sum += c.Balance
		}
	}
	if n == 0 {
		return weights
	}
	for i, c := range classes {
		if c.Consumption {
			continue
		}
		if sum > 0 {
			if c.Balance > 0 {
				weights[i] = c.Balance / sum
			}
		} else {
			weights[i] = 1 / float64(n)
		}
	}
	return weights
}

// Project runs the monthly compounding recurrence and returns one forecast
// point per month. Months == 0 yields an empty slice.
func Project(in Input) ([]models.ProjectionPoint, error) {
	if in.Months < 0 {
		return nil, fmt.Errorf("%w: %d months", models.ErrInvalidHorizon, in.Months)
	}

	balances := make([]float64, len(in.Classes))
	monthly := make([]float64, len(in.Classes))
	for i, c := range in.Classes {
		balances[i] = c.Balance
		monthly[i] = c.AnnualRate / 100 / 12
	}
	weights := ContributionWeights(in.Classes)
	depr := in.DepreciationRate / 100 / 12

	points := make([]models.ProjectionPoint, 0, in.Months)
	for m := 1; m <= in.Months; m++ {
		var total float64
		for i, c := range in.Classes {
			if c.Consumption {
				balances[i] = balances[i] * (1 - depr)
				if balances[i] < 0 {
					balances[i] = 0
				}
			} else {
				balances[i] = balances[i]*(1+monthly[i]) + in.MonthlyContribution*weights[i]
			}
			total += balances[i]
		}
		points = append(points, models.ProjectionPoint{
			Date:   AddMonths(in.Start, m),
			Value:  total,
			Series: models.SeriesForecast,
		})
	}
	return points, nil
}

// AddMonths adds n calendar months, clamping the day to the end of the
// target month (Jan 31 + 1 month = Feb 28/29).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, t.Location())
}

// MonthsToTarget returns the first forecast month whose value reaches target,
// or 0 when the horizon never gets there.
func MonthsToTarget(points []models.ProjectionPoint, target float64) int {
	for i, p := range points {
		if p.Value >= target {
			return i + 1
		}
	}
	return 0
}
