package cache

import (
	"context"
	"sync"
	"time"

	"github.com/comarapa/catalog-desk/internal/domain"
)

// cacheItem represents a single item in the cache with staleness and expiration
type cacheItem struct {
	Value      interface{}
	StaleAt    time.Time
	Expiration time.Time
}

// MemoryCache is a thread-safe in-memory cache with a staleness window and
// a hard TTL. Between StaleAt and Expiration an entry is still served, but
// flagged stale so callers can refetch in the background.
type MemoryCache struct {
	data  map[string]cacheItem
	mutex sync.RWMutex
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache() *MemoryCache {
	cache := &MemoryCache{
		data: make(map[string]cacheItem),
	}

	// Cleanup goroutine removes expired entries periodically
	go cache.cleanupExpired()

	return cache
}

// Get retrieves a fresh value from the cache. Stale-but-retained entries
// count as misses here; use GetStale for stale-while-revalidate reads.
func (c *MemoryCache) Get(ctx context.Context, key string) (interface{}, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.data[key]
	if !exists {
		return nil, domain.ErrCacheMiss
	}

	now := time.Now()
	if now.After(item.Expiration) || now.After(item.StaleAt) {
		return nil, domain.ErrCacheMiss
	}

	return item.Value, nil
}

// GetStale retrieves a value that is still within retention, reporting
// whether it has passed its staleness window.
func (c *MemoryCache) GetStale(ctx context.Context, key string) (interface{}, bool, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.data[key]
	if !exists {
		return nil, false, domain.ErrCacheMiss
	}

	now := time.Now()
	if now.After(item.Expiration) {
		return nil, false, domain.ErrCacheMiss
	}

	return item.Value, now.After(item.StaleAt), nil
}

// Set stores a value with a staleness window and a retention TTL.
// staleAfter longer than ttl is clamped to ttl.
func (c *MemoryCache) Set(ctx context.Context, key string, value interface{}, staleAfter, ttl time.Duration) error {
	if staleAfter > ttl {
		staleAfter = ttl
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	c.data[key] = cacheItem{
		Value:      value,
		StaleAt:    now.Add(staleAfter),
		Expiration: now.Add(ttl),
	}

	return nil
}

// Delete removes a value from the cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, key)
	return nil
}

// cleanupExpired removes expired entries from the cache periodically
func (c *MemoryCache) cleanupExpired() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mutex.Lock()
		now := time.Now()
		for key, item := range c.data {
			if now.After(item.Expiration) {
				delete(c.data, key)
			}
		}
		c.mutex.Unlock()
	}
}

// Size returns the current number of items in the cache (for debugging/monitoring)
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

// Clear removes all items from the cache
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.data = make(map[string]cacheItem)
}
