// Package cache provides a small bounded in-memory cache with TTL expiry and
// LRU eviction. It is constructor-injected wherever memoized lookups are
// needed so tests can swap it out, and it exposes an explicit Invalidate call
// instead of relying on expiry alone.
package cache

import (
	"sync"
	"time"
)

type entry struct {
	value      any
	expiresAt  time.Time
	accessedAt time.Time
}

// Config holds cache settings. Zero values fall back to defaults.
type Config struct {
	// MaxSize is the maximum number of entries before LRU eviction kicks in.
	MaxSize int
	// TTL is how long an entry stays valid after Set.
	TTL time.Duration
}

const (
	defaultMaxSize = 256
	defaultTTL     = 5 * time.Minute
)

// Cache is a thread-safe bounded key/value store. Expired entries are dropped
// lazily on read; there is no background goroutine, matching the engine's
// pull-based model.
type Cache struct {
	mu     sync.Mutex
	data   map[string]*entry
	config Config
	now    func() time.Time
}

func New(config Config) *Cache {
	if config.MaxSize <= 0 {
		config.MaxSize = defaultMaxSize
	}
	if config.TTL <= 0 {
		config.TTL = defaultTTL
	}
	return &Cache{
		data:   make(map[string]*entry),
		config: config,
		now:    time.Now,
	}
}

// Get returns the cached value for key, or false when absent or expired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.data[key]
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.data, key)
		return nil, false
	}
	e.accessedAt = c.now()
	return e.value, true
}

// Set stores a value, evicting the least recently used entry when full.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.data[key]; !exists && len(c.data) >= c.config.MaxSize {
		var lruKey string
		var lruTime time.Time
		for k, e := range c.data {
			if lruKey == "" || e.accessedAt.Before(lruTime) {
				lruKey = k
				lruTime = e.accessedAt
			}
		}
		delete(c.data, lruKey)
	}

	now := c.now()
	c.data[key] = &entry{
		value:      value,
		expiresAt:  now.Add(c.config.TTL),
		accessedAt: now,
	}
}

// Invalidate drops a single key. Missing keys are a no-op.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.data, key)
	c.mu.Unlock()
}

// Len returns the current number of entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}
