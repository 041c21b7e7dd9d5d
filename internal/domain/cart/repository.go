package cart

import "context"

// ItemRepository persists backend cart lines per user. It backs the
// sandbox backend, not the client.
type ItemRepository interface {
	ListByUser(ctx context.Context, userID int64) ([]RemoteCartItem, error)
	// AddItems merges each payload into the line with the same product and
	// variant, creating lines as needed
	AddItems(ctx context.Context, userID int64, items []CartItemPayload) error
	// UpdateQuantity sets the quantity of the matching line; zero or less
	// deletes it
	UpdateQuantity(ctx context.Context, userID int64, update QuantityUpdate) error
	Delete(ctx context.Context, userID, itemID int64) error
}

// ProductRepository stores the sandbox product catalog
type ProductRepository interface {
	FindByID(ctx context.Context, id int64) (*ProductSnapshot, error)
	List(ctx context.Context) ([]ProductSnapshot, error)
	Save(ctx context.Context, product *ProductSnapshot) error
}
