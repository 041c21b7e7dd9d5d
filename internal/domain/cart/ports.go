package cart

import (
	"context"
	"time"
)

// Storage is a string key/value slot that survives restarts, the
// equivalent of browser local storage
type Storage interface {
	// Get returns the stored value and whether the key exists
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// RemoteCart is the backend cart API. Every call requires a bearer token.
type RemoteCart interface {
	GetCart(ctx context.Context, token string) ([]RemoteCartItem, error)
	AddItems(ctx context.Context, token string, items []CartItemPayload) error
	UpdateQuantity(ctx context.Context, token string, update QuantityUpdate) error
	DeleteItem(ctx context.Context, token string, itemID int64) error
}

// ProductLookup resolves product display data by id
type ProductLookup interface {
	GetProduct(ctx context.Context, productID int64) (*ProductSnapshot, error)
}

// RemoteCartCache caches remote cart reads per user
type RemoteCartCache interface {
	// Get returns ErrCacheMiss when nothing is cached for key
	Get(ctx context.Context, key string) ([]RemoteCartItem, error)
	Set(ctx context.Context, key string, items []RemoteCartItem, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// TokenSource exposes the current auth token
type TokenSource interface {
	// Token returns the bearer token, empty for guests
	Token() string
	// CacheKey returns a stable per-user key for remote cart reads
	CacheKey() string
}
