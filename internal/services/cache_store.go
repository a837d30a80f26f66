package services

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"sds/internal/providers"
)

// cachedEntity is one cached response stamped with its write time.
// A nil ttl means the entity never expires (strictly historical data);
// expiration is evaluated lazily on read.
type cachedEntity[T any] struct {
	data      T
	timestamp time.Time
	ttl       *time.Duration
}

func (e cachedEntity[T]) isExpired(now time.Time) bool {
	if e.ttl == nil {
		return false
	}
	return now.Sub(e.timestamp) > *e.ttl
}

// cacheStore is a keyed, TTL-aware store for one metric family. Each
// family owns its own store so key collision across families is
// structurally impossible. Reads and writes are serialized through the
// mutex; identical concurrent misses share a single gateway fetch via
// singleflight, keeping at most one outstanding fetch per cache key.
type cacheStore[K comparable, T any] struct {
	family  string
	mu      sync.Mutex
	entries map[K]cachedEntity[T]
	group   singleflight.Group
	metrics providers.MetricsProviderInterface
	now     func() time.Time
}

func newCacheStore[K comparable, T any](family string, metrics providers.MetricsProviderInterface, now func() time.Time) *cacheStore[K, T] {
	return &cacheStore[K, T]{
		family:  family,
		entries: make(map[K]cachedEntity[T]),
		metrics: metrics,
		now:     now,
	}
}

// get returns the cached entity if present and not expired. A stale
// entry is not deleted, but it is never returned.
func (s *cacheStore[K, T]) get(key K) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok || entry.isExpired(s.now()) {
		var zero T
		return zero, false
	}
	return entry.data, true
}

func (s *cacheStore[K, T]) put(key K, data T, ttl *time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = cachedEntity[T]{data: data, timestamp: s.now(), ttl: ttl}
}

func (s *cacheStore[K, T]) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// getOrFetch runs the read-then-maybe-write sequence for one request.
// fetch returns the data together with the TTL the caller computed for
// it. A fetch completing after its caller went away still writes to the
// cache (idempotent overwrite).
func (s *cacheStore[K, T]) getOrFetch(ctx context.Context, key K, keyString string, fetch func(ctx context.Context) (T, *time.Duration, error)) (T, error) {
	if data, ok := s.get(key); ok {
		s.metrics.IncStatsCacheHits(s.family)
		return data, nil
	}
	s.metrics.IncStatsCacheMisses(s.family)

	result, err, shared := s.group.Do(keyString, func() (any, error) {
		data, ttl, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		s.put(key, data, ttl)
		return data, nil
	})
	if shared {
		s.metrics.IncCoalescedFetches(s.family)
	}
	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}
