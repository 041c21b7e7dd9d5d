package cart

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/marketplace/storefront/internal/domain/cart"
)

// DefaultCartCacheTTL is how long a remote cart read is reused
const DefaultCartCacheTTL = 30 * time.Second

// RemoteStrategy serves cart operations from the backend cart of the
// current token. Reads go through the read cache; every mutation
// invalidates it.
type RemoteStrategy struct {
	client cart.RemoteCart
	cache  cart.RemoteCartCache
	tokens cart.TokenSource
	ttl    time.Duration
	logger *zap.Logger

	inflight atomic.Int32
}

// RemoteStrategyOption configures a RemoteStrategy
type RemoteStrategyOption func(*RemoteStrategy)

// WithCartCache sets the read cache. Without one every read hits the backend.
func WithCartCache(cache cart.RemoteCartCache, ttl time.Duration) RemoteStrategyOption {
	return func(r *RemoteStrategy) {
		r.cache = cache
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithRemoteLogger sets the strategy logger
func WithRemoteLogger(logger *zap.Logger) RemoteStrategyOption {
	return func(r *RemoteStrategy) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRemoteStrategy creates a remote strategy
func NewRemoteStrategy(client cart.RemoteCart, tokens cart.TokenSource, opts ...RemoteStrategyOption) *RemoteStrategy {
	r := &RemoteStrategy{
		client: client,
		tokens: tokens,
		ttl:    DefaultCartCacheTTL,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Source returns cart.SourceRemote
func (r *RemoteStrategy) Source() cart.ItemSource {
	return cart.SourceRemote
}

// IsLoading reports whether a remote cart fetch is in flight
func (r *RemoteStrategy) IsLoading() bool {
	return r.inflight.Load() > 0
}

// List returns the backend cart items
func (r *RemoteStrategy) List(ctx context.Context) ([]cart.CartItemView, error) {
	items, err := r.items(ctx)
	if err != nil {
		return nil, err
	}
	return cart.RemoteViews(items), nil
}

// items returns the cached remote cart, fetching it on a miss
func (r *RemoteStrategy) items(ctx context.Context) ([]cart.RemoteCartItem, error) {
	token := r.tokens.Token()
	if token == "" {
		return nil, cart.ErrMissingToken
	}
	key := r.tokens.CacheKey()

	if r.cache != nil && key != "" {
		items, err := r.cache.Get(ctx, key)
		if err == nil {
			return items, nil
		}
		if !errors.Is(err, cart.ErrCacheMiss) {
			r.logger.Warn("remote cart cache read failed", zap.Error(err))
		}
	}

	r.inflight.Add(1)
	items, err := r.client.GetCart(ctx, token)
	r.inflight.Add(-1)
	if err != nil {
		return nil, fmt.Errorf("fetch remote cart: %w", err)
	}

	if r.cache != nil && key != "" {
		if err := r.cache.Set(ctx, key, items, r.ttl); err != nil {
			r.logger.Warn("remote cart cache write failed", zap.Error(err))
		}
	}
	return items, nil
}

// Add submits item as a single-element batch
func (r *RemoteStrategy) Add(ctx context.Context, item cart.CartLineItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	return r.AddItems(ctx, []cart.CartItemPayload{item.Payload()})
}

// AddItems submits payloads as one batch request
func (r *RemoteStrategy) AddItems(ctx context.Context, payloads []cart.CartItemPayload) error {
	token := r.tokens.Token()
	if token == "" {
		return cart.ErrMissingToken
	}
	defer r.Invalidate(ctx)
	return r.client.AddItems(ctx, token, payloads)
}

// UpdateQuantity resolves the product and variant of remote item id from
// the current cart and sends the new quantity unmodified
func (r *RemoteStrategy) UpdateQuantity(ctx context.Context, id int64, quantity int) error {
	items, err := r.items(ctx)
	if err != nil {
		return err
	}
	item, ok := cart.FindRemoteItem(items, id)
	if !ok {
		return fmt.Errorf("%w: id %d", cart.ErrCartItemNotFound, id)
	}
	defer r.Invalidate(ctx)
	return r.client.UpdateQuantity(ctx, r.tokens.Token(), cart.QuantityUpdateFor(item, quantity))
}

// Remove deletes remote item id
func (r *RemoteStrategy) Remove(ctx context.Context, id int64) error {
	token := r.tokens.Token()
	if token == "" {
		return cart.ErrMissingToken
	}
	defer r.Invalidate(ctx)
	return r.client.DeleteItem(ctx, token, id)
}

// Clear issues one delete per current remote item. It keeps going past
// failures and returns them joined.
func (r *RemoteStrategy) Clear(ctx context.Context) error {
	items, err := r.items(ctx)
	if err != nil {
		return err
	}
	defer r.Invalidate(ctx)

	token := r.tokens.Token()
	var errs []error
	for _, item := range items {
		if err := r.client.DeleteItem(ctx, token, item.ID); err != nil {
			errs = append(errs, fmt.Errorf("delete item %d: %w", item.ID, err))
		}
	}
	return errors.Join(errs...)
}

// Invalidate drops the cached read for the current user
func (r *RemoteStrategy) Invalidate(ctx context.Context) {
	if r.cache == nil {
		return
	}
	key := r.tokens.CacheKey()
	if key == "" {
		return
	}
	if err := r.cache.Invalidate(ctx, key); err != nil {
		r.logger.Warn("remote cart cache invalidation failed", zap.Error(err))
	}
}

var _ cart.Strategy = (*RemoteStrategy)(nil)
