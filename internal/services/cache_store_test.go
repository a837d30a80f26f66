package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sds/internal/testutil"
)

func newTestStore(clock *testutil.Clock) (*cacheStore[string, int], *testutil.MockMetrics) {
	metrics := &testutil.MockMetrics{}
	return newCacheStore[string, int]("test", metrics, clock.Now), metrics
}

func TestCacheStore_PutAndGet(t *testing.T) {
	store, _ := newTestStore(testutil.NewClock(time.Unix(0, 0)))

	store.put("a", 42, nil)
	val, ok := store.get("a")
	require.True(t, ok)
	assert.Equal(t, 42, val)
	assert.Equal(t, 1, store.len())
}

func TestCacheStore_NilTTLNeverExpires(t *testing.T) {
	clock := testutil.NewClock(time.Unix(0, 0))
	store, _ := newTestStore(clock)

	store.put("a", 1, nil)
	clock.Advance(1000 * time.Hour)

	_, ok := store.get("a")
	assert.True(t, ok)
}

func TestCacheStore_TTLBoundary(t *testing.T) {
	clock := testutil.NewClock(time.Unix(0, 0))
	store, _ := newTestStore(clock)

	ttl := 30 * time.Second
	store.put("a", 1, &ttl)

	// Exactly at the TTL the entry is still fresh.
	clock.Advance(30 * time.Second)
	_, ok := store.get("a")
	assert.True(t, ok)

	// One tick past it is stale.
	clock.Advance(time.Nanosecond)
	_, ok = store.get("a")
	assert.False(t, ok)
}

func TestCacheStore_GetOrFetch_CachesResult(t *testing.T) {
	clock := testutil.NewClock(time.Unix(0, 0))
	store, metrics := newTestStore(clock)

	calls := 0
	fetch := func(ctx context.Context) (int, *time.Duration, error) {
		calls++
		return 7, nil, nil
	}

	for i := 0; i < 3; i++ {
		val, err := store.getOrFetch(context.Background(), "k", "k", fetch)
		require.NoError(t, err)
		assert.Equal(t, 7, val)
	}

	assert.Equal(t, 1, calls)
	assert.Equal(t, int64(2), metrics.StatsCacheHits.Load())
	assert.Equal(t, int64(1), metrics.StatsCacheMisses.Load())
}

func TestCacheStore_GetOrFetch_ErrorNotCached(t *testing.T) {
	store, _ := newTestStore(testutil.NewClock(time.Unix(0, 0)))

	boom := errors.New("boom")
	calls := 0
	fetch := func(ctx context.Context) (int, *time.Duration, error) {
		calls++
		if calls == 1 {
			return 0, nil, boom
		}
		return 9, nil, nil
	}

	_, err := store.getOrFetch(context.Background(), "k", "k", fetch)
	assert.ErrorIs(t, err, boom)

	val, err := store.getOrFetch(context.Background(), "k", "k", fetch)
	require.NoError(t, err)
	assert.Equal(t, 9, val)
	assert.Equal(t, 2, calls)
}

func TestCacheStore_GetOrFetch_RefetchesAfterExpiry(t *testing.T) {
	clock := testutil.NewClock(time.Unix(0, 0))
	store, _ := newTestStore(clock)

	ttl := 30 * time.Second
	calls := 0
	fetch := func(ctx context.Context) (int, *time.Duration, error) {
		calls++
		return calls, &ttl, nil
	}

	val, err := store.getOrFetch(context.Background(), "k", "k", fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, val)

	clock.Advance(31 * time.Second)

	val, err = store.getOrFetch(context.Background(), "k", "k", fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, val)
}

func TestCacheStore_ConcurrentMissesCoalesce(t *testing.T) {
	store, _ := newTestStore(testutil.NewClock(time.Unix(0, 0)))

	release := make(chan struct{})
	calls := 0
	var callsMu sync.Mutex
	fetch := func(ctx context.Context) (int, *time.Duration, error) {
		callsMu.Lock()
		calls++
		callsMu.Unlock()
		<-release
		return 5, nil, nil
	}

	const workers = 8
	var wg sync.WaitGroup
	results := make([]int, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = store.getOrFetch(context.Background(), "k", "k", fetch)
		}(i)
	}

	// Give the goroutines a moment to pile onto the same flight.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, 5, results[i])
	}
	assert.Equal(t, 1, calls)
}
