package cache

import (
	"context"
	"sync"
	"time"
)

// Cache is a byte-oriented key/value store with expiration.
// Implementations can be in-memory or Redis backed.
type Cache interface {
	// Get returns the value and true if the key is present and not expired
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the specified TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a specific key
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache
	Close() error
}

type cacheItem struct {
	value      []byte
	expiration time.Time
}

func (item *cacheItem) isExpired(now time.Time) bool {
	return now.After(item.expiration)
}

// InMemoryCache is a thread-safe in-memory cache implementation
type InMemoryCache struct {
	items           map[string]*cacheItem
	mu              sync.RWMutex
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once
}

// NewInMemoryCache creates a new in-memory cache with automatic cleanup
// cleanupInterval determines how often expired items are removed
func NewInMemoryCache(cleanupInterval time.Duration) *InMemoryCache {
	cache := &InMemoryCache{
		items:           make(map[string]*cacheItem),
		cleanupInterval: cleanupInterval,
		stopCleanup:     make(chan struct{}),
	}

	go cache.startCleanup()

	return cache
}

// Get retrieves a value from the cache
func (c *InMemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, found := c.items[key]
	if !found || item.isExpired(time.Now()) {
		return nil, false, nil
	}

	return item.value, true, nil
}

// Set stores a value in the cache with the specified TTL
func (c *InMemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = &cacheItem{
		value:      value,
		expiration: time.Now().Add(ttl),
	}
	return nil
}

// Delete removes a specific key from the cache
func (c *InMemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
	return nil
}

// Size returns the number of items currently in the cache
// Note: This includes expired items that haven't been cleaned up yet
func (c *InMemoryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (c *InMemoryCache) Close() error {
	c.stopOnce.Do(func() {
		close(c.stopCleanup)
	})
	return nil
}

func (c *InMemoryCache) startCleanup() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stopCleanup:
			return
		}
	}
}

func (c *InMemoryCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, item := range c.items {
		if item.isExpired(now) {
			delete(c.items, key)
		}
	}
}
