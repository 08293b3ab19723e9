package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PlaceOrder converts the user's cart into an order. The body is ignored:
// prices and quantities always come from the cart and the catalog.
func (h *Handlers) PlaceOrder(c *gin.Context) {
	ctx := c.Request.Context()
	username := c.Param("username")

	order, err := h.Store.PlaceOrder(ctx, username)
	if err != nil {
		h.respondError(c, err)
		return
	}

	// The order is committed; a failed notification does not undo it.
	if err := h.Events.PublishOrderPlaced(ctx, order); err != nil {
		h.Log.Warn("order event not published",
			zap.Int64("order_id", order.OrderID),
			zap.String("request_id", c.GetString("request_id")),
			zap.Error(err))
	}

	h.Log.Info("order placed",
		zap.Int64("order_id", order.OrderID),
		zap.String("username", username),
		zap.String("total", order.Total.StringFixed(2)))
	c.JSON(http.StatusCreated, order)
}

// GetOrder returns one of the user's orders with its items.
func (h *Handlers) GetOrder(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	order, err := h.Store.GetOrder(c.Request.Context(), c.Param("username"), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// GetUserOrders lists the user's orders, newest first.
func (h *Handlers) GetUserOrders(c *gin.Context) {
	orders, err := h.Store.ListUserOrders(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GetAllOrders lists every order, newest first.
func (h *Handlers) GetAllOrders(c *gin.Context) {
	orders, err := h.Store.ListOrders(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// DeleteOrdersInput is the body of DELETE /orders/:username.
type DeleteOrdersInput struct {
	DeleteAll bool `json:"deleteAll"`
}

// DeleteUserOrders removes all of the user's orders. The caller must say so
// explicitly with deleteAll.
func (h *Handlers) DeleteUserOrders(c *gin.Context) {
	var input DeleteOrdersInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid input: "+err.Error())
		return
	}
	if !input.DeleteAll {
		badRequest(c, "deleteAll must be true")
		return
	}

	username := c.Param("username")
	n, err := h.Store.DeleteUserOrders(c.Request.Context(), username)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.Log.Info("orders deleted", zap.String("username", username), zap.Int64("count", n))
	c.Status(http.StatusNoContent)
}

// DeleteOrder removes one of the user's orders.
func (h *Handlers) DeleteOrder(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.Store.DeleteOrder(c.Request.Context(), c.Param("username"), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
