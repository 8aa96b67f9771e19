package ports

import "time"

// KeyValueStore persists assignments for one storage scope.
type KeyValueStore interface {
	// Get returns the stored value and whether it exists.
	Get(key string) (string, bool, error)
	// Set stores the value. A zero ttl means no expiry.
	Set(key, value string, ttl time.Duration) error
}
