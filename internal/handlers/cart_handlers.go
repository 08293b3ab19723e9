package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AddToCartInput is the body of POST /carts/:username.
type AddToCartInput struct {
	ProductID int64 `json:"product_id" binding:"required,gt=0"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

// AddToCart puts a new product in the cart. A product already in the cart
// is a conflict; use UpdateCartItem to change its quantity.
func (h *Handlers) AddToCart(c *gin.Context) {
	var input AddToCartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid input: "+err.Error())
		return
	}

	err := h.Store.AddCartItem(c.Request.Context(), c.Param("username"), input.ProductID, input.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Item added to cart"})
}

// GetCart returns the cart with line totals and subtotal.
func (h *Handlers) GetCart(c *gin.Context) {
	cart, err := h.Store.GetCart(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// UpdateCartInput is the body of PUT /carts/:username.
type UpdateCartInput struct {
	ProductID   int64 `json:"product_id" binding:"required,gt=0"`
	NewQuantity int   `json:"new_quantity" binding:"required,gt=0"`
}

// UpdateCartItem sets the quantity of a product already in the cart.
func (h *Handlers) UpdateCartItem(c *gin.Context) {
	var input UpdateCartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid input: "+err.Error())
		return
	}

	err := h.Store.UpdateCartItem(c.Request.Context(), c.Param("username"), input.ProductID, input.NewQuantity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart updated"})
}

// DeleteFromCartInput is the body of DELETE /carts/:username: either one
// product_id or deleteAll set to true.
type DeleteFromCartInput struct {
	ProductID int64 `json:"product_id" binding:"omitempty,gt=0"`
	DeleteAll bool  `json:"deleteAll"`
}

// DeleteFromCart removes one product or empties the whole cart.
func (h *Handlers) DeleteFromCart(c *gin.Context) {
	var input DeleteFromCartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid input: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	username := c.Param("username")

	var err error
	switch {
	case input.DeleteAll:
		err = h.Store.ClearCart(ctx, username)
	case input.ProductID > 0:
		err = h.Store.RemoveCartItem(ctx, username, input.ProductID)
	default:
		badRequest(c, "Either product_id or deleteAll is required")
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
