package models

import "fmt"

// DiagnosticKind classifies a degraded-but-continuable condition.
type DiagnosticKind string

const (
	DiagDroppedRecord     DiagnosticKind = "dropped_record"      // missing date or no positive total
	DiagFallbackRate      DiagnosticKind = "fallback_rate"       // implausible rate replaced by default
	DiagDuplicateDate     DiagnosticKind = "duplicate_date"      // earlier row replaced by a later one
	DiagCostBasisFallback DiagnosticKind = "cost_basis_fallback" // class valued at cost, not market
	DiagStaleCache        DiagnosticKind = "stale_cache"         // fetch failed, previous snapshot served
)

// Diagnostic is an annotation the caller may display. It never halts processing.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Row     int            `json:"row"`
	Column  Column         `json:"column,omitempty"`
	Message string         `json:"message"`
}

func (d Diagnostic) String() string {
	if d.Column != "" {
		return fmt.Sprintf("%s row=%d column=%s: %s", d.Kind, d.Row, d.Column, d.Message)
	}
	return fmt.Sprintf("%s row=%d: %s", d.Kind, d.Row, d.Message)
}

// CountDiagnostics tallies diagnostics by kind.
func CountDiagnostics(diags []Diagnostic) map[DiagnosticKind]int {
	out := make(map[DiagnosticKind]int)
	for _, d := range diags {
		out[d.Kind]++
	}
	return out
}
