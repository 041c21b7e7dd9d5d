package cart

import "context"

// Strategy is one way of storing a cart. The guest strategy works on the
// local storage slot, the remote strategy on the backend cart. Item ids are
// positions for the guest strategy and server ids for the remote one.
type Strategy interface {
	Source() ItemSource
	List(ctx context.Context) ([]CartItemView, error)
	Add(ctx context.Context, item CartLineItem) error
	UpdateQuantity(ctx context.Context, id int64, quantity int) error
	Remove(ctx context.Context, id int64) error
	Clear(ctx context.Context) error
}
