package dto

// Response is the envelope every sandbox endpoint answers with
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data any) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}

// NewErrorResponseWithRequestID creates an error response tagged with the request ID
func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	resp := NewErrorResponse(code, message)
	resp.Error.RequestID = requestID
	return resp
}

// AddCartItemsRequest is the body of POST /cart/items
type AddCartItemsRequest struct {
	CartItems []CartItemRequest `json:"cart_items" binding:"required,min=1,dive"`
}

// CartItemRequest is one line of AddCartItemsRequest
type CartItemRequest struct {
	ProductID int64  `json:"product_id" binding:"required,gt=0"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
	ColorID   *int64 `json:"color_id,omitempty"`
	SizeID    *int64 `json:"size_id,omitempty"`
}

// UpdateCartItemRequest is the body of PUT /cart/items. Quantity is not
// range checked; zero or below removes the line.
type UpdateCartItemRequest struct {
	ProductID int64  `json:"product_id" binding:"required,gt=0"`
	ColorID   *int64 `json:"color_id,omitempty"`
	SizeID    *int64 `json:"size_id,omitempty"`
	Quantity  int    `json:"quantity"`
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginResponse carries the issued bearer token
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Username    string `json:"username"`
}

// ValidationDetail describes one rejected request field
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrorResponse is an error response listing the rejected fields
type ValidationErrorResponse struct {
	Response
	Details []ValidationDetail `json:"details,omitempty"`
}

// NewValidationErrorResponse creates a validation error response
func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) ValidationErrorResponse {
	return ValidationErrorResponse{
		Response: NewErrorResponseWithRequestID(ErrCodeValidation, message, requestID),
		Details:  details,
	}
}
