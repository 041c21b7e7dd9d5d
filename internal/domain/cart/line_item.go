package cart

import (
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// CartLineItem is a guest cart entry persisted in the local storage slot
type CartLineItem struct {
	ProductID int64            `json:"product_id" validate:"gt=0"`
	Quantity  int              `json:"quantity" validate:"gt=0"`
	ColorID   *int64           `json:"color_id,omitempty"`
	SizeID    *int64           `json:"size_id,omitempty"`
	Product   *ProductSnapshot `json:"product,omitempty"`
	AddedAt   time.Time        `json:"added_at"`
}

// Validate checks the line item invariants
func (i CartLineItem) Validate() error {
	err := getValidator().Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		switch fe.StructField() {
		case "ProductID":
			return ErrInvalidProductID
		case "Quantity":
			return ErrInvalidQuantity
		}
	}
	return err
}

// Payload projects the line item to the minimal remote shape, dropping the
// product snapshot
func (i CartLineItem) Payload() CartItemPayload {
	return CartItemPayload{
		ProductID: i.ProductID,
		Quantity:  i.Quantity,
		ColorID:   cloneID(i.ColorID),
		SizeID:    cloneID(i.SizeID),
	}
}

// Clone returns a deep copy of the line item
func (i CartLineItem) Clone() CartLineItem {
	c := i
	c.ColorID = cloneID(i.ColorID)
	c.SizeID = cloneID(i.SizeID)
	c.Product = i.Product.Clone()
	return c
}

// Payloads projects a list of line items to remote payloads
func Payloads(items []CartLineItem) []CartItemPayload {
	payloads := make([]CartItemPayload, len(items))
	for idx, item := range items {
		payloads[idx] = item.Payload()
	}
	return payloads
}

// Orderable returns the items with a positive quantity. Lines edited down
// to zero or less are not sent to the remote cart.
func Orderable(items []CartLineItem) []CartLineItem {
	out := make([]CartLineItem, 0, len(items))
	for _, item := range items {
		if item.Quantity > 0 {
			out = append(out, item)
		}
	}
	return out
}

// SameLine reports whether a and b are the same stored line
func SameLine(a, b CartLineItem) bool {
	return a.ProductID == b.ProductID &&
		a.Quantity == b.Quantity &&
		SameVariant(a.ColorID, b.ColorID) &&
		SameVariant(a.SizeID, b.SizeID) &&
		a.AddedAt.Equal(b.AddedAt)
}

func cloneID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
