package common

import "time"

// FreshnessHistory is how long cached daily bars are reused before refetching
const FreshnessHistory = 12 * time.Hour

// IsFresh returns true if the given timestamp is within the TTL
func IsFresh(updated time.Time, ttl time.Duration) bool {
	return IsFreshAt(updated, ttl, time.Now())
}

// IsFreshAt is IsFresh measured against a caller-supplied clock
func IsFreshAt(updated time.Time, ttl time.Duration, now time.Time) bool {
	if updated.IsZero() {
		return false
	}
	return now.Sub(updated) < ttl
}
