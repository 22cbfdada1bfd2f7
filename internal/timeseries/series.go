// Package timeseries orders reconciled periods into the history series.
package timeseries

import (
	"errors"
	"fmt"
	"sort"

	"github.com/bobmcallan/networth/internal/models"
)

// ErrEmptySeries means no period survived reconciliation.
var ErrEmptySeries = errors.New("no valid periods")

// Series is an ascending, date-unique sequence of periods. Immutable once built.
type Series struct {
	periods []models.Period
}

// Build orders periods by date ascending. Periods without a date are
// discarded; when two periods share a date the one from the later source row
// wins and a duplicate_date diagnostic is emitted.
func Build(periods []models.Period) (*Series, []models.Diagnostic, error) {
	var diags []models.Diagnostic

	kept := make([]models.Period, 0, len(periods))
	for _, p := range periods {
		if p.Date.IsZero() {
			continue
		}
		kept = append(kept, p)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Date.Equal(kept[j].Date) {
			return kept[i].Row < kept[j].Row
		}
		return kept[i].Date.Before(kept[j].Date)
	})

	out := make([]models.Period, 0, len(kept))
	for _, p := range kept {
		if n := len(out); n > 0 && out[n-1].Date.Equal(p.Date) {
			diags = append(diags, models.Diagnostic{
				Kind:    models.DiagDuplicateDate,
				Row:     out[n-1].Row,
				Message: fmt.Sprintf("date %s repeated at row %d, keeping the later row", p.Date.Format("2006-01-02"), p.Row),
			})
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}

	if len(out) == 0 {
		return nil, diags, ErrEmptySeries
	}
	return &Series{periods: out}, diags, nil
}

// Len returns the number of periods.
func (s *Series) Len() int { return len(s.periods) }

// Latest is the last period.
func (s *Series) Latest() models.Period { return s.periods[len(s.periods)-1] }

// Previous is the period before Latest. With a single period it returns
// Latest, so period deltas come out as zero.
func (s *Series) Previous() models.Period {
	if len(s.periods) < 2 {
		return s.Latest()
	}
	return s.periods[len(s.periods)-2]
}

// Periods returns a copy of all periods.
func (s *Series) Periods() []models.Period {
	return append([]models.Period(nil), s.periods...)
}

// Window returns the most recent k periods, or all when k <= 0 or k >= Len.
func (s *Series) Window(k int) []models.Period {
	if k <= 0 || k >= len(s.periods) {
		return s.Periods()
	}
	return append([]models.Period(nil), s.periods[len(s.periods)-k:]...)
}

// Points is the (date, effective value) view used for charts.
func (s *Series) Points() []models.SeriesPoint {
	pts := make([]models.SeriesPoint, len(s.periods))
	for i, p := range s.periods {
		pts[i] = models.SeriesPoint{Date: p.Date, Value: p.EffectiveValue}
	}
	return pts
}

// Values returns the effective values in date order.
func (s *Series) Values() []float64 {
	vals := make([]float64, len(s.periods))
	for i, p := range s.periods {
		vals[i] = p.EffectiveValue
	}
	return vals
}

// AverageContribution estimates the monthly amount being added to savings:
// the mean of the positive period gains. A period's reported gain is used when
// the sheet carries one, otherwise the change in effective value since the
// previous period. Returns 0 when there are no positive gains.
func (s *Series) AverageContribution() float64 {
	var sum float64
	var n int
	for i, p := range s.periods {
		var gain float64
		switch {
		case p.HasPeriodGain:
			gain = p.PeriodGain
		case i > 0:
			gain = p.EffectiveValue - s.periods[i-1].EffectiveValue
		default:
			continue
		}
		if gain > 0 {
			sum += gain
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
