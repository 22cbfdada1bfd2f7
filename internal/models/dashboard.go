package models

import (
	"errors"
	"time"
)

// Pipeline failures that end a refresh.
var (
	ErrNoData            = errors.New("no usable data")
	ErrSourceUnavailable = errors.New("sheet source unavailable")
)

// KPISet is the named point-in-time metrics for the latest period.
type KPISet struct {
	NetWorth             float64 `json:"net_worth"`
	ProgressPct          float64 `json:"progress_pct"`
	RemainingToGoal      float64 `json:"remaining_to_goal"`
	PeriodDelta          float64 `json:"period_delta"`
	GrowthPct            float64 `json:"growth_pct"`
	PassiveIncomeMonthly float64 `json:"passive_income_monthly"`
	RunwayYears          float64 `json:"runway_years"`
	WeightedCAGR         float64 `json:"weighted_cagr"`
	DisplayCurrency      string  `json:"display_currency,omitempty"`
	NetWorthDisplay      float64 `json:"net_worth_display,omitempty"` // net worth in the display currency
	DisplayRate          float64 `json:"display_rate,omitempty"`
}

// Allocation is one class's share of net worth for a period.
type Allocation struct {
	Class       AssetClass `json:"class"`
	Label       string     `json:"label"`
	Currency    string     `json:"currency"`
	NativeValue float64    `json:"native_value"`
	Rate        float64    `json:"rate"`
	BaseValue   float64    `json:"base_value"`
	Weight      float64    `json:"weight"`
}

// CurrencyExposure maps a settlement currency to its aggregate base-currency value.
type CurrencyExposure map[string]float64

// Dashboard is the full result handed to the presentation layer.
type Dashboard struct {
	AsOf         time.Time         `json:"as_of"`
	FetchedAt    time.Time         `json:"fetched_at"`
	Cached       bool              `json:"cached"`
	BaseCurrency string            `json:"base_currency"`
	Latest       Period            `json:"latest"`
	History      []SeriesPoint     `json:"history"`
	KPIs         KPISet            `json:"kpis"`
	Allocation   []Allocation      `json:"allocation"`
	Exposure     CurrencyExposure  `json:"exposure"`
	Projection   []ProjectionPoint `json:"projection,omitempty"`
	Contribution float64           `json:"monthly_contribution"` // contribution the projection used
	Goal         GoalConfig        `json:"goal"`
	Diagnostics  []Diagnostic      `json:"diagnostics,omitempty"`
}

// SheetSnapshot is a fetched copy of the spreadsheet export.
type SheetSnapshot struct {
	SourceID  string    `json:"source_id"`
	Body      []byte    `json:"body"`
	FetchedAt time.Time `json:"fetched_at"`
	Cached    bool      `json:"cached"` // served from the snapshot cache rather than a fresh fetch
}
