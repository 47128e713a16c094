package cache

import "time"

// CacheService defines the interface for cache operations
type CacheService interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Exists(key string) bool
	Clear() error
	ItemCount() int
}

// CacheConfig holds configuration for cache implementations
type CacheConfig struct {
	// RefreshInterval is the staleness window shared by every tier.
	// Zero means cached values never expire.
	RefreshInterval time.Duration
	CleanupInterval time.Duration
}

// DefaultCacheConfig returns a sensible default configuration
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		RefreshInterval: 10 * time.Minute,
		CleanupInterval: 10 * time.Minute,
	}
}
