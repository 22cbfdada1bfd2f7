package models

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Configuration errors surfaced synchronously to the caller.
var (
	ErrInvalidGoal    = errors.New("goal amount must be positive")
	ErrInvalidHorizon = errors.New("projection horizon must be positive")
	ErrInvalidRate    = errors.New("invalid rate")
)

// IsConfigError reports whether err is a configuration error rather than a
// data or transport failure.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidGoal) ||
		errors.Is(err, ErrInvalidHorizon) ||
		errors.Is(err, ErrInvalidRate) ||
		errors.Is(err, ErrUnknownPreset)
}

// ErrUnknownPreset is returned when a scenario preset id is not registered.
var ErrUnknownPreset = errors.New("unknown scenario preset")

// Projection modes.
const (
	ProjectionCompound = "compound"
	ProjectionSeasonal = "seasonal"
)

// GoalConfig holds the caller's assumptions for one request. Created fresh per
// request, never persisted, and passed by value into the projection.
type GoalConfig struct {
	Target              float64                `json:"target"`
	MonthlyExpense      float64                `json:"monthly_expense"`
	Preset              string                 `json:"preset"`
	GrowthRates         map[AssetClass]float64 `json:"growth_rates"`                   // annual %, after preset + overrides
	MonthlyContribution *float64               `json:"monthly_contribution,omitempty"` // nil = historical average
	DepreciationRate    float64                `json:"depreciation_rate"`              // annual % for consumption classes
	ConsumptionClasses  []AssetClass           `json:"consumption_classes"`
	HorizonYears        int                    `json:"horizon_years"`
	ProjectionMode      string                 `json:"projection_mode"`
}

// HorizonMonths converts the horizon to months.
func (g GoalConfig) HorizonMonths() int {
	return g.HorizonYears * 12
}

// IsConsumption reports whether c depreciates instead of compounding.
func (g GoalConfig) IsConsumption(c AssetClass) bool {
	for _, k := range g.ConsumptionClasses {
		if k == c {
			return true
		}
	}
	return false
}

// Validate checks the fields needed for point-in-time metrics.
func (g GoalConfig) Validate() error {
	if !(g.Target > 0) || math.IsInf(g.Target, 1) {
		return fmt.Errorf("%w: got %.2f", ErrInvalidGoal, g.Target)
	}
	return nil
}

// ValidateProjection checks the fields needed to run a projection.
func (g GoalConfig) ValidateProjection() error {
	if g.HorizonYears <= 0 {
		return fmt.Errorf("%w: got %d years", ErrInvalidHorizon, g.HorizonYears)
	}
	if !(g.DepreciationRate >= 0 && g.DepreciationRate <= 100) {
		return fmt.Errorf("%w: depreciation %.2f%% outside [0, 100]", ErrInvalidRate, g.DepreciationRate)
	}
	if c := g.MonthlyContribution; c != nil && (*c < 0 || !isFinite(*c)) {
		return fmt.Errorf("%w: monthly contribution %.2f must be a non-negative number", ErrInvalidRate, *c)
	}
	for class, r := range g.GrowthRates {
		if !isFinite(r) {
			return fmt.Errorf("%w: growth rate %v for %s", ErrInvalidRate, r, class)
		}
	}
	switch g.ProjectionMode {
	case "", ProjectionCompound, ProjectionSeasonal:
	default:
		return fmt.Errorf("%w: projection mode %q", ErrInvalidRate, g.ProjectionMode)
	}
	return nil
}

// Clone returns a deep copy so callers can derive variants without aliasing.
func (g GoalConfig) Clone() GoalConfig {
	out := g
	if g.GrowthRates != nil {
		out.GrowthRates = make(map[AssetClass]float64, len(g.GrowthRates))
		for k, v := range g.GrowthRates {
			out.GrowthRates[k] = v
		}
	}
	if g.MonthlyContribution != nil {
		v := *g.MonthlyContribution
		out.MonthlyContribution = &v
	}
	if g.ConsumptionClasses != nil {
		out.ConsumptionClasses = append([]AssetClass(nil), g.ConsumptionClasses...)
	}
	return out
}

// GoalOverrides are per-request changes applied on top of the configured
// goal. Nil fields keep the configured value.
type GoalOverrides struct {
	Target              *float64
	MonthlyExpense      *float64
	Preset              *string
	GrowthRates         map[AssetClass]float64 // merged over configured rates
	MonthlyContribution *float64
	DepreciationRate    *float64
	HorizonYears        *int
	ProjectionMode      *string
}

// ParseGrowthRates parses "class=pct" pairs separated by commas, e.g.
// "stocks=8,crypto=-20".
func ParseGrowthRates(s string) (map[AssetClass]float64, error) {
	out := make(map[AssetClass]float64)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("%w: %q is not class=rate", ErrInvalidRate, part)
		}
		class, ok := ParseAssetClass(strings.TrimSpace(name))
		if !ok {
			return nil, fmt.Errorf("%w: unknown asset class %q", ErrInvalidRate, name)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || !isFinite(v) {
			return nil, fmt.Errorf("%w: %q for %s", ErrInvalidRate, value, class)
		}
		out[class] = v
	}
	return out, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
