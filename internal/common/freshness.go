package common

import "time"

// IsFresh returns true if the given timestamp is within the TTL.
// A zero TTL means nothing is ever fresh.
func IsFresh(updated time.Time, ttl time.Duration) bool {
	if updated.IsZero() || ttl <= 0 {
		return false
	}
	return time.Since(updated) < ttl
}
