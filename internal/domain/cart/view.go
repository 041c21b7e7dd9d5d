package cart

// ItemSource tells which store a cart item view came from
type ItemSource string

const (
	// SourceGuest marks items from the local storage slot
	SourceGuest ItemSource = "guest"
	// SourceRemote marks items from the backend cart
	SourceRemote ItemSource = "remote"
)

// String returns the string representation of ItemSource
func (s ItemSource) String() string {
	return string(s)
}

// CartItemView is the unified read model for cart items.
// ID is the server id for remote items and the list position for guest items.
type CartItemView struct {
	ID        int64            `json:"id"`
	Source    ItemSource       `json:"source"`
	ProductID int64            `json:"product_id"`
	Quantity  int              `json:"quantity"`
	ColorID   *int64           `json:"color_id,omitempty"`
	SizeID    *int64           `json:"size_id,omitempty"`
	Product   *ProductSnapshot `json:"product,omitempty"`
}

// GuestViews projects local line items, using each position as the identifier
func GuestViews(items []CartLineItem) []CartItemView {
	views := make([]CartItemView, len(items))
	for idx, item := range items {
		views[idx] = CartItemView{
			ID:        int64(idx),
			Source:    SourceGuest,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			ColorID:   cloneID(item.ColorID),
			SizeID:    cloneID(item.SizeID),
			Product:   item.Product.Clone(),
		}
	}
	return views
}

// RemoteViews projects backend cart items
func RemoteViews(items []RemoteCartItem) []CartItemView {
	views := make([]CartItemView, len(items))
	for idx, item := range items {
		views[idx] = CartItemView{
			ID:        item.ID,
			Source:    SourceRemote,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			ColorID:   cloneID(item.ColorID),
			SizeID:    cloneID(item.SizeID),
			Product:   item.Product.Clone(),
		}
	}
	return views
}
