package scheduling_test

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterly/rosterly/modules/scheduling"
)

// fakeClock is a manually advanced time source for deterministic sweeps.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func TestHandleCache(t *testing.T) {
	t.Parallel()

	t.Run("constructs once and reuses", func(t *testing.T) {
		t.Parallel()

		cache := scheduling.NewHandleCache(&fakeDB{})
		defer cache.Close()

		first := cache.Get("biz-123")
		second := cache.Get("biz-123")
		assert.Same(t, first, second)
		assert.Equal(t, 1, cache.Len())
		assert.Equal(t, "business_biz_123", first.Schema())
	})

	t.Run("separate tenants get separate stores", func(t *testing.T) {
		t.Parallel()

		cache := scheduling.NewHandleCache(&fakeDB{})
		defer cache.Close()

		a := cache.Get("biz-a")
		b := cache.Get("biz-b")
		assert.NotSame(t, a, b)
		assert.Equal(t, 2, cache.Len())
	})

	t.Run("sweep evicts idle entries only", func(t *testing.T) {
		t.Parallel()

		clock := newFakeClock()
		cache := scheduling.NewHandleCache(&fakeDB{},
			scheduling.WithTTL(30*time.Minute),
			scheduling.WithClock(clock.Now),
		)
		defer cache.Close()

		cache.Get("idle")
		cache.Get("busy")

		// "busy" is touched again inside the TTL window; "idle" is not.
		clock.Advance(20 * time.Minute)
		cache.Get("busy")

		clock.Advance(11 * time.Minute)
		cache.Sweep()

		assert.Equal(t, 1, cache.Len())

		// The idle tenant's next lookup silently rebuilds a fresh handle.
		rebuilt := cache.Get("idle")
		require.NotNil(t, rebuilt)
		assert.Equal(t, "business_idle", rebuilt.Schema())
		assert.Equal(t, 2, cache.Len())
	})

	t.Run("entry accessed within ttl survives sweep", func(t *testing.T) {
		t.Parallel()

		clock := newFakeClock()
		cache := scheduling.NewHandleCache(&fakeDB{},
			scheduling.WithTTL(30*time.Minute),
			scheduling.WithClock(clock.Now),
		)
		defer cache.Close()

		before := cache.Get("biz-1")
		clock.Advance(29 * time.Minute)
		cache.Sweep()

		assert.Same(t, before, cache.Get("biz-1"))
	})

	t.Run("eviction does not invalidate handed-out stores", func(t *testing.T) {
		t.Parallel()

		clock := newFakeClock()
		db := &fakeDB{}
		cache := scheduling.NewHandleCache(db,
			scheduling.WithTTL(time.Minute),
			scheduling.WithClock(clock.Now),
		)
		defer cache.Close()

		inFlight := cache.Get("biz-1")
		clock.Advance(2 * time.Minute)
		cache.Sweep()
		require.Zero(t, cache.Len())

		// The evicted instance still works; only the map entry is gone.
		err := inFlight.DeleteAvailabilityEntry(t.Context(), uuid.New())
		require.NoError(t, err)
		assert.Contains(t, db.lastCall().sql, `"business_biz_1"."availability_entries"`)
	})

	t.Run("concurrent first lookups yield one entry", func(t *testing.T) {
		t.Parallel()

		cache := scheduling.NewHandleCache(&fakeDB{})
		defer cache.Close()

		const n = 32
		stores := make([]*scheduling.Store, n)
		var wg sync.WaitGroup
		for i := range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				stores[i] = cache.Get("biz-999")
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, cache.Len())
		for _, s := range stores {
			require.NotNil(t, s)
			assert.Same(t, stores[0], s)
		}
	})

	t.Run("invalidate removes entry immediately", func(t *testing.T) {
		t.Parallel()

		cache := scheduling.NewHandleCache(&fakeDB{})
		defer cache.Close()

		first := cache.Get("biz-1")
		cache.Invalidate("biz-1")
		assert.Zero(t, cache.Len())
		assert.NotSame(t, first, cache.Get("biz-1"))
	})

	t.Run("background sweep runs without manual trigger", func(t *testing.T) {
		t.Parallel()

		cache := scheduling.NewHandleCache(&fakeDB{},
			scheduling.WithTTL(time.Millisecond),
			scheduling.WithSweepInterval(5*time.Millisecond),
		)
		defer cache.Close()

		cache.Get("biz-1")
		assert.Eventually(t, func() bool { return cache.Len() == 0 },
			time.Second, 5*time.Millisecond)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		t.Parallel()

		cache := scheduling.NewHandleCache(&fakeDB{})
		require.NoError(t, cache.Close())
		require.NoError(t, cache.Close())
	})
}
