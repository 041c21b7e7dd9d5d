package cart

import "github.com/shopspring/decimal"

// ProductSnapshot is the display data of a product captured when it was
// added to a guest cart.
type ProductSnapshot struct {
	ID       int64           `json:"id"`
	Title    string          `json:"title"`
	Images   []string        `json:"images,omitempty"`
	Price    decimal.Decimal `json:"price"`
	VendorID *int64          `json:"vendor_id,omitempty"`
}

// Clone returns a deep copy of the snapshot
func (p *ProductSnapshot) Clone() *ProductSnapshot {
	if p == nil {
		return nil
	}
	c := *p
	if p.Images != nil {
		c.Images = append([]string(nil), p.Images...)
	}
	if p.VendorID != nil {
		v := *p.VendorID
		c.VendorID = &v
	}
	return &c
}
