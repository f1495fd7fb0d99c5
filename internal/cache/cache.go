// Package cache provides the TTL key-value store shared by the proxy
// cookie jar and the TMDB response cache.
package cache

import "time"

// Store is a key-value cache with per-entry expiry. Keys are independent;
// concurrent writes to the same key are last-writer-wins.
type Store interface {
	// Get returns the value for key, or false if absent or expired.
	Get(key string) ([]byte, bool)

	// Set stores value under key with the given time-to-live. A new Set
	// for an existing key replaces the value and refreshes its expiry.
	Set(key string, value []byte, ttl time.Duration)

	// Delete removes key if present.
	Delete(key string)
}
