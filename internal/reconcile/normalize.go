// Package reconcile turns raw spreadsheet rows into authoritative periods.
package reconcile

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount normalizes a hand-edited numeric cell. Everything except digits,
// '.' and '-' is stripped (thousands separators, currency symbols, spaces).
// Blank or unparsable text yields 0: a malformed cell means "no data".
func ParseAmount(raw string) float64 {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0
	}
	// Rejects a second decimal point and any minus that is not leading.
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	return f
}

// IsBlank reports whether a cell carries no data at all.
func IsBlank(raw string) bool {
	return strings.TrimSpace(raw) == ""
}
