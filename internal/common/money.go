package common

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatMoney renders an amount with the currency's symbol, separators and
// minor units, rounding half away from zero. Codes unknown to go-money fall
// back to "<amount> <CODE>".
func FormatMoney(amount float64, currency string) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	value := decimal.NewFromFloat(amount)

	if money.GetCurrency(code) == nil {
		return value.StringFixed(2) + " " + code
	}

	cur := money.New(0, code).Currency()
	minor := value.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(minor.IntPart())
}

// FormatPercent renders a percentage with two decimals.
func FormatPercent(pct float64) string {
	return decimal.NewFromFloat(pct).StringFixed(2) + "%"
}
