package scheduling

import (
	"sync"
	"time"
)

// HandleCache memoizes one Store per tenant so request handling does not
// rebuild accessors on every call. Entries idle longer than the TTL are
// removed by a background sweep; the next lookup for that tenant silently
// constructs a fresh, equally functional Store. Eviction never invalidates
// instances already handed out.
type HandleCache struct {
	db DB

	mu      sync.Mutex
	entries map[string]*handle

	ttl        time.Duration
	sweepEvery time.Duration
	now        func() time.Time
	metrics    *Metrics

	stop   chan struct{}
	done   chan struct{}
	closed bool
}

type handle struct {
	store    *Store
	lastUsed time.Time
}

const (
	// DefaultHandleTTL is how long an unused handle stays cached.
	DefaultHandleTTL = 30 * time.Minute
	// DefaultSweepInterval is how often the eviction sweep runs.
	DefaultSweepInterval = 5 * time.Minute
)

// CacheOption configures a HandleCache.
type CacheOption func(*HandleCache)

// WithTTL sets the idle duration after which a handle is evicted.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *HandleCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithSweepInterval sets the cadence of the background eviction sweep.
func WithSweepInterval(d time.Duration) CacheOption {
	return func(c *HandleCache) {
		if d > 0 {
			c.sweepEvery = d
		}
	}
}

// WithClock injects the time source, letting tests drive eviction
// deterministically instead of sleeping through real TTLs.
func WithClock(now func() time.Time) CacheOption {
	return func(c *HandleCache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithCacheMetrics wires hit/miss/eviction counters.
func WithCacheMetrics(m *Metrics) CacheOption {
	return func(c *HandleCache) {
		c.metrics = m
	}
}

// NewHandleCache creates the cache and starts its sweep goroutine.
// Call Close to stop it.
func NewHandleCache(db DB, opts ...CacheOption) *HandleCache {
	c := &HandleCache{
		db:         db,
		entries:    make(map[string]*handle),
		ttl:        DefaultHandleTTL,
		sweepEvery: DefaultSweepInterval,
		now:        time.Now,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	go c.sweepLoop()

	return c
}

// Get returns the tenant's Store, constructing and caching it on first
// use and refreshing the entry's last-used time on every call. Store
// construction is pure computation, so holding the lock across it is safe
// and prevents two racing first-lookups from building duplicate entries.
func (c *HandleCache) Get(tenantID string) *Store {
	c.mu.Lock()
	defer c.mu.Unlock()

	if h, ok := c.entries[tenantID]; ok {
		h.lastUsed = c.now()
		c.metrics.cacheHit()
		return h.store
	}

	store := NewStore(c.db, tenantID)
	c.entries[tenantID] = &handle{store: store, lastUsed: c.now()}
	c.metrics.cacheMiss()
	return store
}

// Invalidate drops a tenant's cache entry immediately, e.g. after its
// schema was dropped. In-flight Store instances are unaffected.
func (c *HandleCache) Invalidate(tenantID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, tenantID)
}

// Len returns the number of cached handles.
func (c *HandleCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Sweep runs one eviction pass, removing every entry idle longer than the
// TTL. It only mutates the map under a short-lived lock and performs no
// I/O, so it can never block request serving.
func (c *HandleCache) Sweep() {
	cutoff := c.now().Add(-c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	for id, h := range c.entries {
		if h.lastUsed.Before(cutoff) {
			delete(c.entries, id)
			c.metrics.cacheEviction()
		}
	}
}

func (c *HandleCache) sweepLoop() {
	ticker := time.NewTicker(c.sweepEvery)
	defer ticker.Stop()
	defer close(c.done)

	for {
		select {
		case <-ticker.C:
			c.Sweep()
		case <-c.stop:
			return
		}
	}
}

// Close stops the sweep goroutine and waits for it to finish. Safe to call
// more than once.
func (c *HandleCache) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	close(c.stop)
	<-c.done
	return nil
}
