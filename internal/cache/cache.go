package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/JTHCode/salesdash/internal/infrastructure"
)

// Key identifies a cached computation. Op names the computation and ID
// encodes its inputs.
type Key struct {
	Op string
	ID string
}

// NewKey builds a key from an operation name, the fingerprint of the view it
// reads and any further parameters.
func NewKey(op, fingerprint string, params ...any) Key {
	parts := make([]string, 0, len(params)+1)
	parts = append(parts, fingerprint)
	for _, p := range params {
		parts = append(parts, fmt.Sprint(p))
	}
	return Key{Op: op, ID: strings.Join(parts, "|")}
}

func (k Key) String() string { return k.Op + ":" + k.ID }

type entry struct {
	value     any
	cachedAt  time.Time
	expiresAt time.Time // zero means no expiry
	hits      int
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Stats is a snapshot of cache usage.
type Stats struct {
	Entries    int     `json:"entries"`
	MaxEntries int     `json:"max_entries"`
	Hits       int64   `json:"hits"`
	Misses     int64   `json:"misses"`
	HitRatio   float64 `json:"hit_ratio"`
}

// Cache memoizes results of pure computations for the lifetime of the
// process. It is safe for concurrent use; at most one computation per key
// runs at a time and failed computations are not stored.
type Cache struct {
	mu         sync.RWMutex
	entries    map[Key]entry
	maxEntries int
	hits       int64
	misses     int64

	group   singleflight.Group
	metrics *infrastructure.AnalyticsMetrics

	cleanupInterval time.Duration
	stopChan        chan struct{}
	stopOnce        sync.Once
	now             func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithMetrics records hits and misses on m.
func WithMetrics(m *infrastructure.AnalyticsMetrics) Option {
	return func(c *Cache) { c.metrics = m }
}

// WithCleanupInterval starts a goroutine removing expired entries every d.
// Call Stop to end it.
func WithCleanupInterval(d time.Duration) Option {
	return func(c *Cache) { c.cleanupInterval = d }
}

// New creates a cache holding at most maxEntries results. A non-positive
// maxEntries disables the size bound.
func New(maxEntries int, opts ...Option) *Cache {
	c := &Cache{
		entries:    make(map[Key]entry),
		maxEntries: maxEntries,
		stopChan:   make(chan struct{}),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.cleanupInterval > 0 {
		go c.cleanup()
	}

	return c
}

// Get returns the cached value for key if present and not expired.
func (c *Cache) Get(ctx context.Context, key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || e.expired(c.now()) {
		c.misses++
		c.metrics.RecordCacheLookup(ctx, key.Op, false)
		return nil, false
	}

	e.hits++
	c.entries[key] = e
	c.hits++
	c.metrics.RecordCacheLookup(ctx, key.Op, true)

	return e.value, true
}

// Set stores value under key. A ttl of zero keeps it until evicted.
func (c *Cache) Set(key Key, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.evictOldest()
	}

	now := c.now()
	e := entry{value: value, cachedAt: now}
	if ttl > 0 {
		e.expiresAt = now.Add(ttl)
	}
	c.entries[key] = e
}

// GetOrCompute returns the cached value for key, or runs compute and stores
// its result. Concurrent callers with the same key share one computation.
// Errors are returned to every waiting caller and nothing is stored.
func (c *Cache) GetOrCompute(ctx context.Context, key Key, ttl time.Duration, compute func() (any, error)) (any, error) {
	if v, ok := c.Get(ctx, key); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(key.String(), func() (any, error) {
		if v, ok := c.peek(key); ok {
			return v, nil
		}

		start := time.Now()
		v, err := compute()
		c.metrics.RecordCompute(ctx, key.Op, time.Since(start), err)
		if err != nil {
			return nil, err
		}

		c.Set(key, v, ttl)
		return v, nil
	})

	return v, err
}

// Do is the typed form of GetOrCompute.
func Do[T any](ctx context.Context, c *Cache, key Key, ttl time.Duration, compute func() (T, error)) (T, error) {
	v, err := c.GetOrCompute(ctx, key, ttl, func() (any, error) {
		result, err := compute()
		return result, err
	})
	if err != nil {
		var zero T
		return zero, err
	}

	typed, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("cached value for %s has type %T", key, v)
	}
	return typed, nil
}

// peek reads an entry without touching the statistics.
func (c *Cache) peek(key Key) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || e.expired(c.now()) {
		return nil, false
	}
	return e.value, true
}

// Invalidate removes key from the cache.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Purge removes every entry. Statistics are kept.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[Key]entry)
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns cache statistics.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := Stats{
		Entries:    len(c.entries),
		MaxEntries: c.maxEntries,
		Hits:       c.hits,
		Misses:     c.misses,
	}
	if total := c.hits + c.misses; total > 0 {
		stats.HitRatio = float64(c.hits) / float64(total)
	}
	return stats
}

// Stop ends the cleanup goroutine, if any. It is safe to call more than once.
func (c *Cache) Stop() {
	c.stopOnce.Do(func() { close(c.stopChan) })
}

func (c *Cache) evictOldest() {
	var oldestKey Key
	var oldestTime time.Time
	found := false

	for key, e := range c.entries {
		if !found || e.cachedAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = e.cachedAt
			found = true
		}
	}

	if found {
		delete(c.entries, oldestKey)
	}
}

func (c *Cache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
		}
	}
}

func (c *Cache) cleanup() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stopChan:
			return
		}
	}
}
