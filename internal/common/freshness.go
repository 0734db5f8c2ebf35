package common

import "time"

// Freshness TTLs for polled data. A snapshot older than its TTL is
// flagged stale in rendered views but still displayed.
const (
	FreshnessLedger   = 2 * time.Minute // holdings, orders, wallet
	FreshnessQuotes   = 1 * time.Minute // quotes and chart series
	FreshnessSecurity = 5 * time.Minute // 2FA status, sessions, activity
)

// IsFresh returns true if the given timestamp is within the TTL
func IsFresh(updated time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return time.Since(updated) < ttl
}
