package cache

import (
	"context"
	"time"

	"github.com/marketplace/storefront/internal/domain/cart"
)

// NopCartCache never stores anything; every read is a miss
type NopCartCache struct{}

// Get always misses
func (NopCartCache) Get(ctx context.Context, key string) ([]cart.RemoteCartItem, error) {
	return nil, cart.ErrCacheMiss
}

// Set discards items
func (NopCartCache) Set(ctx context.Context, key string, items []cart.RemoteCartItem, ttl time.Duration) error {
	return nil
}

// Invalidate does nothing
func (NopCartCache) Invalidate(ctx context.Context, key string) error {
	return nil
}

var _ cart.RemoteCartCache = NopCartCache{}
