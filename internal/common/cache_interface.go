package common

import "time"

// CacheInterface defines the contract for cache implementations
type CacheInterface interface {
	// Set stores a value in cache with the given key and duration
	Set(key string, value interface{}, duration time.Duration)

	// Get retrieves a value by key. Redis returns values decoded from JSON,
	// so callers should use GetInto for typed reads.
	Get(key string) (interface{}, bool)

	// GetInto decodes a cached value into dst; false on miss or type mismatch
	GetInto(key string, dst interface{}) bool

	Delete(key string)

	Close() error
}
