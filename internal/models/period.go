package models

import "time"

// ValueSource records which column a class value was taken from.
type ValueSource string

const (
	SourceMarket ValueSource = "market"
	SourceCost   ValueSource = "cost"
	SourceNone   ValueSource = "none"
)

// Rate is a base-currency exchange rate for one period.
type Rate struct {
	Value    float64 `json:"value"`
	Fallback bool    `json:"fallback"` // true when the configured default replaced an implausible cell
}

// Period is the reconciled, authoritative representation of one reporting date.
type Period struct {
	Date            time.Time                  `json:"date"`
	Assets          map[AssetClass]float64     `json:"assets"`  // native-currency amounts, non-negative
	Sources         map[AssetClass]ValueSource `json:"sources"` // market/cost resolution per class
	Rates           map[string]Rate            `json:"rates"`   // keyed by upper-case currency code
	EffectiveValue  float64                    `json:"effective_value"`
	EffectiveColumn Column                     `json:"effective_column"`
	PeriodGain      float64                    `json:"period_gain,omitempty"`
	HasPeriodGain   bool                       `json:"has_period_gain"`
	Row             int                        `json:"row"` // source row, used for last-wins tie-break
}

// Asset returns the native amount of a class, zero when absent.
func (p Period) Asset(c AssetClass) float64 {
	return p.Assets[c]
}

// RateFor returns the rate for a currency. The base currency always has rate 1.
func (p Period) RateFor(currency, base string) Rate {
	if currency == base {
		return Rate{Value: 1}
	}
	return p.Rates[currency]
}

// SeriesPoint is a (date, value) pair of the history series.
type SeriesPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Series labels for presentation.
const (
	SeriesHistory  = "history"
	SeriesForecast = "forecast"
)

// ProjectionPoint is a synthetic projected total. Never mixed into the
// reconciled history.
type ProjectionPoint struct {
	Date   time.Time `json:"date"`
	Value  float64   `json:"value"`
	Series string    `json:"series"`
}
