package cache

import (
	"context"
	"sync"
	"time"

	"github.com/marketplace/storefront/internal/domain/cart"
)

const defaultCleanupInterval = time.Minute

// cartEntry holds a cached remote cart with expiration
type cartEntry struct {
	items     []cart.RemoteCartItem
	expiresAt time.Time
}

// InMemoryCartCache implements cart.RemoteCartCache using an in-memory map.
// Entries are copied on the way in and out so callers never share slices.
type InMemoryCartCache struct {
	mu        sync.RWMutex
	entries   map[string]cartEntry
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// InMemoryOption configures an InMemoryCartCache
type InMemoryOption func(*inMemoryOptions)

type inMemoryOptions struct {
	cleanupInterval time.Duration
	now             func() time.Time
}

// WithCleanupInterval sets how often expired entries are purged
func WithCleanupInterval(d time.Duration) InMemoryOption {
	return func(o *inMemoryOptions) {
		if d > 0 {
			o.cleanupInterval = d
		}
	}
}

// WithClock overrides the time source (for testing)
func WithClock(now func() time.Time) InMemoryOption {
	return func(o *inMemoryOptions) {
		o.now = now
	}
}

// NewInMemoryCartCache creates a new in-memory cart cache.
// It starts a background goroutine to clean up expired entries; call Close to stop it.
func NewInMemoryCartCache(opts ...InMemoryOption) *InMemoryCartCache {
	o := inMemoryOptions{
		cleanupInterval: defaultCleanupInterval,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	c := &InMemoryCartCache{
		entries:  make(map[string]cartEntry),
		now:      o.now,
		stopChan: make(chan struct{}),
	}

	c.wg.Add(1)
	go c.cleanupLoop(o.cleanupInterval)

	return c
}

// Get returns the cached items for key or cart.ErrCacheMiss
func (c *InMemoryCartCache) Get(ctx context.Context, key string) ([]cart.RemoteCartItem, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.entries[key]
	if !exists || !c.now().Before(e.expiresAt) {
		return nil, cart.ErrCacheMiss
	}
	return cloneItems(e.items), nil
}

// Set caches items under key for ttl; a non-positive ttl drops the entry
func (c *InMemoryCartCache) Set(ctx context.Context, key string, items []cart.RemoteCartItem, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ttl <= 0 {
		delete(c.entries, key)
		return nil
	}
	c.entries[key] = cartEntry{
		items:     cloneItems(items),
		expiresAt: c.now().Add(ttl),
	}
	return nil
}

// Invalidate drops the cached entry for key
func (c *InMemoryCartCache) Invalidate(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// Close stops the cleanup goroutine and releases resources.
// Safe to call multiple times.
func (c *InMemoryCartCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

// cleanupLoop periodically removes expired entries
func (c *InMemoryCartCache) cleanupLoop(interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

// cleanup removes expired entries from the cache
func (c *InMemoryCartCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// Size returns the number of entries in the cache (for testing/monitoring)
func (c *InMemoryCartCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func cloneItems(items []cart.RemoteCartItem) []cart.RemoteCartItem {
	if items == nil {
		return []cart.RemoteCartItem{}
	}
	out := make([]cart.RemoteCartItem, len(items))
	copy(out, items)
	return out
}

var _ cart.RemoteCartCache = (*InMemoryCartCache)(nil)
