package cache

import (
	"encoding/json"
	"time"

	"workitem-resolver-backend/internal/logger"
)

// Entry wraps every cached value with its fetch time. Absent lookups are
// cached too (Found=false) so repeated failed lookups for the same key do
// not re-query the service within the refresh window.
type Entry[T any] struct {
	Value     T         `json:"value"`
	Found     bool      `json:"found"`
	FetchedAt time.Time `json:"fetched_at"`
}

// TierCache is a typed view over a shared CacheService for one cache tier
// (items, attachments, statuses, ...). All tiers share the session's
// refresh interval; staleness is enforced by the underlying store's TTL.
type TierCache[T any] struct {
	store CacheService
	ttl   time.Duration
}

// NewTierCache creates a typed tier over the given store
func NewTierCache[T any](store CacheService, ttl time.Duration) *TierCache[T] {
	return &TierCache[T]{store: store, ttl: ttl}
}

// Lookup returns the cached entry for key. The second return value reports
// whether a live (non-stale) entry exists at all; Entry.Found distinguishes
// a cached value from a cached absent marker.
func (t *TierCache[T]) Lookup(key string) (Entry[T], bool) {
	var entry Entry[T]

	data, err := t.store.Get(key)
	if err != nil {
		return entry, false
	}

	if err := json.Unmarshal(data, &entry); err != nil {
		logger.New().WithField("cache_key", key).WithError(err).Warn("Cached data is corrupted, treating as cache miss")
		return Entry[T]{}, false
	}

	logger.New().WithField("cache_key", key).Debug("Cache hit")
	return entry, true
}

// StoreValue caches a resolved value under key with a fresh timestamp
func (t *TierCache[T]) StoreValue(key string, value T) {
	t.put(key, Entry[T]{Value: value, Found: true, FetchedAt: time.Now()})
}

// StoreAbsent caches an absent marker under key with a fresh timestamp
func (t *TierCache[T]) StoreAbsent(key string) {
	t.put(key, Entry[T]{Found: false, FetchedAt: time.Now()})
}

func (t *TierCache[T]) put(key string, entry Entry[T]) {
	data, err := json.Marshal(entry)
	if err != nil {
		logger.New().WithField("cache_key", key).WithError(err).Error("Failed to marshal for cache")
		return
	}

	if err := t.store.Set(key, data, t.ttl); err != nil {
		logger.New().WithField("cache_key", key).WithError(err).Warn("Failed to cache response")
		return
	}

	logger.New().WithField("cache_key", key).Debug("Cached response")
}
