package models

import (
	"github.com/shopspring/decimal"

	"github.com/marketplace/storefront/internal/domain/cart"
)

// ProductModel is the persistence model for sandbox products
type ProductModel struct {
	BaseModel
	Title    string          `gorm:"type:varchar(200);not null"`
	Images   []string        `gorm:"type:text;serializer:json"`
	Price    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	VendorID *int64          `gorm:"index"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a product snapshot
func (m *ProductModel) ToDomain() *cart.ProductSnapshot {
	p := &cart.ProductSnapshot{
		ID:     m.ID,
		Title:  m.Title,
		Images: append([]string(nil), m.Images...),
		Price:  m.Price,
	}
	if m.VendorID != nil {
		v := *m.VendorID
		p.VendorID = &v
	}
	return p
}

// FromDomain populates the persistence model from a product snapshot
func (m *ProductModel) FromDomain(p *cart.ProductSnapshot) {
	m.ID = p.ID
	m.Title = p.Title
	m.Images = append([]string(nil), p.Images...)
	m.Price = p.Price
	m.VendorID = p.VendorID
}
