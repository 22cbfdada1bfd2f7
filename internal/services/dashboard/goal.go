package dashboard

import (
	"fmt"

	"github.com/bobmcallan/networth/internal/common"
	"github.com/bobmcallan/networth/internal/models"
	"github.com/bobmcallan/networth/internal/projection"
)

// BuildGoal starts from the configured goal and applies request overrides.
// Growth rates are resolved as preset, then configured rates, then request
// rates. The result is validated only when it is used.
func (s *Service) BuildGoal(o models.GoalOverrides) (models.GoalConfig, error) {
	return BuildGoal(s.config.Goal, o)
}

// BuildGoal is the config-only form of Service.BuildGoal.
func BuildGoal(defaults common.GoalDefaults, o models.GoalOverrides) (models.GoalConfig, error) {
	goal := models.GoalConfig{
		Target:           defaults.Target,
		MonthlyExpense:   defaults.MonthlyExpense,
		Preset:           defaults.Preset,
		DepreciationRate: defaults.DepreciationRate,
		HorizonYears:     defaults.HorizonYears,
		ProjectionMode:   defaults.ProjectionMode,
	}
	if defaults.MonthlyContribution != nil {
		v := *defaults.MonthlyContribution
		goal.MonthlyContribution = &v
	}
	for _, name := range defaults.ConsumptionClasses {
		class, ok := models.ParseAssetClass(name)
		if !ok {
			return models.GoalConfig{}, fmt.Errorf("%w: unknown consumption class %q", models.ErrInvalidRate, name)
		}
		goal.ConsumptionClasses = append(goal.ConsumptionClasses, class)
	}

	rates := make(map[models.AssetClass]float64)
	for name, v := range defaults.GrowthRates {
		class, ok := models.ParseAssetClass(name)
		if !ok {
			return models.GoalConfig{}, fmt.Errorf("%w: unknown asset class %q in growth rates", models.ErrInvalidRate, name)
		}
		rates[class] = v
	}

	if o.Target != nil {
		goal.Target = *o.Target
	}
	if o.MonthlyExpense != nil {
		goal.MonthlyExpense = *o.MonthlyExpense
	}
	if o.Preset != nil {
		goal.Preset = *o.Preset
	}
	for class, v := range o.GrowthRates {
		rates[class] = v
	}
	if o.MonthlyContribution != nil {
		v := *o.MonthlyContribution
		goal.MonthlyContribution = &v
	}
	if o.DepreciationRate != nil {
		goal.DepreciationRate = *o.DepreciationRate
	}
	if o.HorizonYears != nil {
		goal.HorizonYears = *o.HorizonYears
	}
	if o.ProjectionMode != nil {
		goal.ProjectionMode = *o.ProjectionMode
	}

	resolved, err := projection.Resolve(goal.Preset, nil, rates)
	if err != nil {
		return models.GoalConfig{}, err
	}
	goal.GrowthRates = resolved
	if goal.Preset == "" {
		goal.Preset = projection.PresetCustom
	}

	return goal, nil
}
