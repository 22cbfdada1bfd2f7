package reconcile

// Candidate is one source in an ordered fallback chain: an extractor paired
// with a validity predicate.
type Candidate[T any] struct {
	Name    string
	Extract func(T) (value float64, ok bool) // ok=false when the source has no data
	Valid   func(float64) bool
}

// FirstValid evaluates candidates in order and returns the first value that is
// both present and valid, with the candidate's name.
func FirstValid[T any](in T, candidates []Candidate[T]) (float64, string, bool) {
	for _, c := range candidates {
		v, ok := c.Extract(in)
		if !ok {
			continue
		}
		if c.Valid == nil || c.Valid(v) {
			return v, c.Name, true
		}
	}
	return 0, "", false
}

// Positive is the strictly-greater-than-zero predicate.
func Positive(v float64) bool { return v > 0 }

// NonNegative accepts zero as a real value.
func NonNegative(v float64) bool { return v >= 0 }
