package cart

import "errors"

var (
	// Line item errors
	ErrInvalidProductID       = errors.New("cart: product id must be positive")
	ErrInvalidQuantity        = errors.New("cart: quantity must be positive")
	ErrProductInfoUnavailable = errors.New("cart: product information unavailable")
	ErrLineItemNotFound       = errors.New("cart: line item not found")
	ErrCartItemNotFound       = errors.New("cart: cart item not found")

	// Remote errors
	ErrMissingToken = errors.New("cart: auth token is required")

	// Cache errors
	ErrCacheMiss = errors.New("cart: cache miss")

	// Reconciliation errors
	ErrInvalidSyncTransition = errors.New("cart: invalid sync state transition")
)
