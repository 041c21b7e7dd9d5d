package cart

import "time"

// RemoteCartItem is a cart entry owned by the backend for an authenticated user
type RemoteCartItem struct {
	ID        int64            `json:"id"`
	ProductID int64            `json:"product_id"`
	Quantity  int              `json:"quantity"`
	ColorID   *int64           `json:"color_id,omitempty"`
	SizeID    *int64           `json:"size_id,omitempty"`
	Product   *ProductSnapshot `json:"product,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// CartItemPayload is the minimal shape submitted to the bulk-add endpoint
type CartItemPayload struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	ColorID   *int64 `json:"color_id,omitempty"`
	SizeID    *int64 `json:"size_id,omitempty"`
}

// QuantityUpdate identifies a remote cart line by product and variant and
// carries the new quantity. Quantity is sent as-is; zero or negative values
// are the backend's to interpret.
type QuantityUpdate struct {
	ProductID int64  `json:"product_id"`
	SizeID    *int64 `json:"size_id,omitempty"`
	ColorID   *int64 `json:"color_id,omitempty"`
	Quantity  int    `json:"quantity"`
}

// QuantityUpdateFor builds the update request for an existing remote item
func QuantityUpdateFor(item RemoteCartItem, quantity int) QuantityUpdate {
	return QuantityUpdate{
		ProductID: item.ProductID,
		SizeID:    cloneID(item.SizeID),
		ColorID:   cloneID(item.ColorID),
		Quantity:  quantity,
	}
}

// FindRemoteItem returns the remote item with the given id
func FindRemoteItem(items []RemoteCartItem, id int64) (RemoteCartItem, bool) {
	for _, item := range items {
		if item.ID == id {
			return item, true
		}
	}
	return RemoteCartItem{}, false
}

// SameVariant reports whether two optional variant selectors are equal
func SameVariant(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
