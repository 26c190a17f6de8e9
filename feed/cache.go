package feed

import (
	"sync"
	"time"
)

// CacheState classifies a lookup: a fresh hit is served as-is, a stale hit
// is served while a background revalidation runs, a miss forces a fetch.
type CacheState int

const (
	CacheMiss CacheState = iota
	CacheFresh
	CacheStale
)

type cacheEntry struct {
	data any
	ts   time.Time
}

// Cache is the in-memory response cache with a stale-while-revalidate
// window. Entries older than the stale TTL are evicted on read. It is
// owned by the orchestrator and guarded by a mutex; losing it on restart
// is acceptable.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]cacheEntry
	freshTTL time.Duration
	staleTTL time.Duration
	now      func() time.Time
}

// NewCache creates a cache with the given fresh and stale windows.
func NewCache(freshTTL, staleTTL time.Duration) *Cache {
	return &Cache{
		entries:  make(map[string]cacheEntry),
		freshTTL: freshTTL,
		staleTTL: staleTTL,
		now:      time.Now,
	}
}

// Get returns the cached value and its state for key.
func (c *Cache) Get(key string) (any, CacheState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, CacheMiss
	}
	age := c.now().Sub(entry.ts)
	switch {
	case age < c.freshTTL:
		return entry.data, CacheFresh
	case age < c.staleTTL:
		return entry.data, CacheStale
	default:
		delete(c.entries, key)
		return nil, CacheMiss
	}
}

// Set stores data under key with the current timestamp.
func (c *Cache) Set(key string, data any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{data: data, ts: c.now()}
}

// Len reports the number of live entries, for the health endpoint.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
