package models

import "github.com/marketplace/storefront/internal/domain/cart"

// CartItemModel is one backend cart line. A user has at most one line per
// product and variant.
type CartItemModel struct {
	BaseModel
	UserID    int64         `gorm:"not null;index"`
	ProductID int64         `gorm:"not null;index"`
	Quantity  int           `gorm:"not null"`
	ColorID   *int64
	SizeID    *int64
	Product   *ProductModel `gorm:"foreignKey:ProductID"`
}

// TableName returns the table name for GORM
func (CartItemModel) TableName() string {
	return "cart_items"
}

// ToDomain converts the persistence model to a remote cart item
func (m *CartItemModel) ToDomain() cart.RemoteCartItem {
	item := cart.RemoteCartItem{
		ID:        m.ID,
		ProductID: m.ProductID,
		Quantity:  m.Quantity,
		ColorID:   cloneID(m.ColorID),
		SizeID:    cloneID(m.SizeID),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.Product != nil {
		item.Product = m.Product.ToDomain()
	}
	return item
}

func cloneID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
