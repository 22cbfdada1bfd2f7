// Package metrics computes the point-in-time KPIs of the latest period.
package metrics

import (
	"github.com/bobmcallan/networth/internal/allocation"
	"github.com/bobmcallan/networth/internal/models"
)

// WithdrawalRate is the annual safe-withdrawal assumption behind passive income.
const WithdrawalRate = 0.04

// Display selects an extra currency for the headline net worth.
type Display struct {
	Currency string
	Base     string
}

// Compute derives the KPI set. previous may equal latest, in which case the
// period delta and growth are zero. The goal target must be positive.
func Compute(latest, previous models.Period, goal models.GoalConfig, weightedCAGR float64, display Display) (models.KPISet, error) {
	if err := goal.Validate(); err != nil {
		return models.KPISet{}, err
	}

	value := latest.EffectiveValue
	kpi := models.KPISet{
		NetWorth:             value,
		ProgressPct:          100 * value / goal.Target,
		RemainingToGoal:      goal.Target - value,
		PeriodDelta:          value - previous.EffectiveValue,
		PassiveIncomeMonthly: value * WithdrawalRate / 12,
		WeightedCAGR:         weightedCAGR,
	}
	if kpi.RemainingToGoal < 0 {
		kpi.RemainingToGoal = 0
	}
	if previous.EffectiveValue != 0 {
		kpi.GrowthPct = 100 * kpi.PeriodDelta / previous.EffectiveValue
	}
	if goal.MonthlyExpense > 0 {
		kpi.RunwayYears = value / (goal.MonthlyExpense * 12)
	}

	if display.Currency != "" {
		if v, rate, ok := allocation.ConvertTo(value, display.Currency, display.Base, latest); ok {
			kpi.DisplayCurrency = display.Currency
			kpi.NetWorthDisplay = v
			kpi.DisplayRate = rate
		}
	}

	return kpi, nil
}
