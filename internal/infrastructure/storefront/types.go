package storefront

import (
	"encoding/json"

	"github.com/marketplace/storefront/internal/domain/cart"
)

// envelope is the uniform backend response wrapper
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *errorInfo      `json:"error,omitempty"`
}

type errorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// addItemsRequest is the bulk-add body
type addItemsRequest struct {
	CartItems []cart.CartItemPayload `json:"cart_items"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult is an issued bearer token
type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Username    string `json:"username"`
}
