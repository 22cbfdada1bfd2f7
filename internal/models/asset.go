// Package models defines data structures for the net-worth tracker
package models

import "strings"

// AssetClass identifies a category of holding tracked as a distinct balance.
type AssetClass string

const (
	ClassCashBase    AssetClass = "cash_base"    // cash held in the base currency
	ClassCashForeign AssetClass = "cash_foreign" // foreign-currency cash
	ClassStocks      AssetClass = "stocks"
	ClassFunds       AssetClass = "funds" // fund / ETF holdings
	ClassRealEstate  AssetClass = "real_estate"
	ClassCrypto      AssetClass = "crypto"
	ClassVehicle     AssetClass = "vehicle" // consumption asset, depreciates
	ClassOther       AssetClass = "other"
)

// AllAssetClasses lists every class in canonical order. Iteration over
// classes always follows this order so float sums are reproducible.
var AllAssetClasses = []AssetClass{
	ClassCashBase,
	ClassCashForeign,
	ClassStocks,
	ClassFunds,
	ClassRealEstate,
	ClassCrypto,
	ClassVehicle,
	ClassOther,
}

// Label returns a human-readable name for the class.
func (c AssetClass) Label() string {
	switch c {
	case ClassCashBase:
		return "Cash"
	case ClassCashForeign:
		return "Foreign Cash"
	case ClassStocks:
		return "Stocks"
	case ClassFunds:
		return "Funds / ETF"
	case ClassRealEstate:
		return "Real Estate"
	case ClassCrypto:
		return "Crypto"
	case ClassVehicle:
		return "Vehicle"
	case ClassOther:
		return "Other"
	}
	return string(c)
}

// Valid reports whether c is one of the known asset classes.
func (c AssetClass) Valid() bool {
	for _, k := range AllAssetClasses {
		if k == c {
			return true
		}
	}
	return false
}

// ParseAssetClass resolves a class identifier, case-insensitively.
func ParseAssetClass(s string) (AssetClass, bool) {
	c := AssetClass(strings.ToLower(strings.TrimSpace(s)))
	return c, c.Valid()
}

// HasCostBasis reports whether the class may report either a market value or
// an original cost basis.
func (c AssetClass) HasCostBasis() bool {
	return c == ClassStocks || c == ClassFunds || c == ClassCrypto
}

// DefaultClassCurrencies maps each class to its settlement currency for the
// default sheet layout (base TWD, equities and crypto in USD, funds and
// foreign cash in EUR).
func DefaultClassCurrencies() map[AssetClass]string {
	return map[AssetClass]string{
		ClassCashBase:    "TWD",
		ClassCashForeign: "EUR",
		ClassStocks:      "USD",
		ClassFunds:       "EUR",
		ClassRealEstate:  "TWD",
		ClassCrypto:      "USD",
		ClassVehicle:     "TWD",
		ClassOther:       "TWD",
	}
}

// Column is a logical spreadsheet column, resolved from one of its header
// synonyms at ingestion time.
type Column string

const (
	ColumnDate                 Column = "date"
	ColumnTrueTotal            Column = "true_total"
	ColumnTotalPlusVehicleDepr Column = "total_plus_vehicle_depreciation"
	ColumnTotal                Column = "total"
	ColumnPeriodGain           Column = "period_gain"
)

// DefaultTotalPriority is the candidate order for the effective value,
// most authoritative first.
var DefaultTotalPriority = []Column{ColumnTrueTotal, ColumnTotalPlusVehicleDepr, ColumnTotal}

// MarketColumn is the column carrying the current value of a class.
func MarketColumn(c AssetClass) Column {
	return Column(string(c) + "_market")
}

// CostColumn is the column carrying the cost basis of a class.
func CostColumn(c AssetClass) Column {
	return Column(string(c) + "_cost")
}

// RateColumn is the column carrying the base-currency rate for a currency.
func RateColumn(currency string) Column {
	return Column("rate_" + strings.ToLower(currency))
}

// RawRecord is one spreadsheet row keyed by logical column.
type RawRecord struct {
	Row   int               // 0-based data row index in source order
	Cells map[Column]string // raw cell text; absent columns are absent keys
}

// Cell returns the raw text of a column, empty when the column is absent.
func (r RawRecord) Cell(c Column) string {
	if r.Cells == nil {
		return ""
	}
	return r.Cells[c]
}
