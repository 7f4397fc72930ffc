package cache

import (
	"time"
)

// CacheService is a generic expiring key-value cache. The fetcher uses it to
// remember cross-run rate-limit blocks, so the state must survive process
// restarts (the monitor itself runs once per cron invocation and exits).
type CacheService interface {
	// Get retrieves a value from the cache
	Get(key string) ([]byte, error)

	// Set stores a value in the cache with an expiration time
	Set(key string, value []byte, expiration time.Duration) error

	// Delete removes a value from the cache
	Delete(key string) error
}
