package cart

import (
	"context"

	"github.com/marketplace/storefront/internal/domain/cart"
)

// GuestStrategy serves cart operations from the local store.
// Item ids are list positions.
type GuestStrategy struct {
	store *LocalStore
}

// NewGuestStrategy creates a guest strategy over store
func NewGuestStrategy(store *LocalStore) *GuestStrategy {
	return &GuestStrategy{store: store}
}

// Source returns cart.SourceGuest
func (g *GuestStrategy) Source() cart.ItemSource {
	return cart.SourceGuest
}

// List returns the positional projection of the local items
func (g *GuestStrategy) List(_ context.Context) ([]cart.CartItemView, error) {
	return cart.GuestViews(g.store.Items()), nil
}

// Add appends item to the local cart
func (g *GuestStrategy) Add(ctx context.Context, item cart.CartLineItem) error {
	return g.store.Add(ctx, item)
}

// UpdateQuantity rewrites the quantity at position id
func (g *GuestStrategy) UpdateQuantity(ctx context.Context, id int64, quantity int) error {
	return g.store.UpdateQuantity(ctx, int(id), quantity)
}

// Remove deletes the item at position id
func (g *GuestStrategy) Remove(ctx context.Context, id int64) error {
	return g.store.Remove(ctx, int(id))
}

// Clear empties the local cart
func (g *GuestStrategy) Clear(ctx context.Context) error {
	return g.store.Clear(ctx)
}

var _ cart.Strategy = (*GuestStrategy)(nil)
