package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/marketplace/storefront/internal/domain/cart"
	"github.com/marketplace/storefront/internal/infrastructure/logger"
	"github.com/marketplace/storefront/internal/interfaces/http/dto"
	"github.com/marketplace/storefront/internal/interfaces/http/middleware"
)

// CartHandler serves the authenticated user's cart
type CartHandler struct {
	BaseHandler
	items cart.ItemRepository
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(items cart.ItemRepository) *CartHandler {
	return &CartHandler{items: items}
}

// List godoc
// @Summary      List cart items
// @Tags         cart
// @Produce      json
// @Success      200 {object} dto.Response{data=[]cart.RemoteCartItem}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cart [get]
func (h *CartHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	items, err := h.items.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// AddItems godoc
// @Summary      Add items to the cart
// @Description  Lines with the same product and variant are merged. Unknown products reject the whole batch.
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body dto.AddCartItemsRequest true "Items to add"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cart/items [post]
func (h *CartHandler) AddItems(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req dto.AddCartItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	payloads := make([]cart.CartItemPayload, len(req.CartItems))
	for i, item := range req.CartItems {
		payloads[i] = cart.CartItemPayload{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			ColorID:   item.ColorID,
			SizeID:    item.SizeID,
		}
	}
	if err := h.items.AddItems(c.Request.Context(), userID, payloads); err != nil {
		h.HandleError(c, err)
		return
	}

	logger.GetGinLogger(c).Info("Cart items added",
		zap.Int64("user_id", userID),
		zap.Int("lines", len(payloads)))
	h.Created(c, nil)
}

// UpdateQuantity godoc
// @Summary      Set the quantity of a cart line
// @Description  The line is found by product and variant. A quantity of zero or less removes it.
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body dto.UpdateCartItemRequest true "New quantity"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cart/items [put]
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req dto.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	err = h.items.UpdateQuantity(c.Request.Context(), userID, cart.QuantityUpdate{
		ProductID: req.ProductID,
		ColorID:   req.ColorID,
		SizeID:    req.SizeID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, nil)
}

// Delete godoc
// @Summary      Remove a cart line
// @Tags         cart
// @Produce      json
// @Param        id path int true "Cart item ID"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cart/items/{id} [delete]
func (h *CartHandler) Delete(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || itemID <= 0 {
		h.BadRequest(c, "Invalid cart item ID")
		return
	}

	if err := h.items.Delete(c.Request.Context(), userID, itemID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, nil)
}
