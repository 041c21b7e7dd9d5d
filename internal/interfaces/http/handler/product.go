package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/marketplace/storefront/internal/domain/cart"
)

// ProductHandler serves the public catalog
type ProductHandler struct {
	BaseHandler
	products cart.ProductRepository
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(products cart.ProductRepository) *ProductHandler {
	return &ProductHandler{products: products}
}

// List godoc
// @Summary      List products
// @Tags         products
// @Produce      json
// @Success      200 {object} dto.Response{data=[]cart.ProductSnapshot}
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	products, err := h.products.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// GetByID godoc
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Param        id path int true "Product ID"
// @Success      200 {object} dto.Response{data=cart.ProductSnapshot}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /products/{id} [get]
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	product, err := h.products.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}
