package projection

import (
	"fmt"
	"time"

	"github.com/bobmcallan/networth/internal/models"
)

// SeasonalParams are the Holt-Winters smoothing factors.
type SeasonalParams struct {
	Alpha  float64 // level
	Beta   float64 // trend
	Gamma  float64 // seasonal
	Season int     // periods per season
}

// DefaultSeasonalParams suit monthly net-worth data.
var DefaultSeasonalParams = SeasonalParams{Alpha: 0.3, Beta: 0.1, Gamma: 0.2, Season: 12}

// ProjectSeasonal extrapolates the effective-value history with additive
// Holt-Winters. With fewer than two full seasons it falls back to Holt's
// linear trend, and with a single point it projects a flat line. Values are
// floored at zero.
func ProjectSeasonal(start time.Time, history []float64, months int, params SeasonalParams) ([]models.ProjectionPoint, error) {
	if months < 0 {
		return nil, fmt.Errorf("%w: %d months", models.ErrInvalidHorizon, months)
	}
	if params.Season <= 0 {
		params.Season = DefaultSeasonalParams.Season
	}

	var forecast []float64
	switch {
	case len(history) == 0:
		return []models.ProjectionPoint{}, nil
	case len(history) >= 2*params.Season:
		forecast = holtWinters(history, months, params)
	case len(history) >= 2:
		forecast = holt(history, months, params)
	default:
		forecast = make([]float64, months)
		for i := range forecast {
			forecast[i] = history[0]
		}
	}

	points := make([]models.ProjectionPoint, months)
	for i, v := range forecast {
		if v < 0 {
			v = 0
		}
		points[i] = models.ProjectionPoint{
			Date:   AddMonths(start, i+1),
			Value:  v,
			Series: models.SeriesForecast,
		}
	}
	return points, nil
}

func holt(x []float64, h int, p SeasonalParams) []float64 {
	level, trend := x[0], x[1]-x[0]
	for t := 1; t < len(x); t++ {
		prev := level
		level = p.Alpha*x[t] + (1-p.Alpha)*(level+trend)
		trend = p.Beta*(level-prev) + (1-p.Beta)*trend
	}
	out := make([]float64, h)
	for i := range out {
		out[i] = level + float64(i+1)*trend
	}
	return out
}

func holtWinters(x []float64, h int, p SeasonalParams) []float64 {
	m := p.Season
	first, second := mean(x[:m]), mean(x[m:2*m])
	level := first
	trend := (second - first) / float64(m)
	seasonal := make([]float64, m)
	for i := 0; i < m; i++ {
		seasonal[i] = x[i] - first
	}

	for t := m; t < len(x); t++ {
		s := seasonal[t%m]
		prev := level
		level = p.Alpha*(x[t]-s) + (1-p.Alpha)*(level+trend)
		trend = p.Beta*(level-prev) + (1-p.Beta)*trend
		seasonal[t%m] = p.Gamma*(x[t]-level) + (1-p.Gamma)*s
	}

	n := len(x)
	out := make([]float64, h)
	for i := range out {
		out[i] = level + float64(i+1)*trend + seasonal[(n+i)%m]
	}
	return out
}

func mean(xs []float64) float64 {
	var s float64
	for _, v := range xs {
		s += v
	}
	return s / float64(len(xs))
}
