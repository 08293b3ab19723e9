package handlers

import (
	"net/http"

	"github.com/01moynul/ecommerce-api/internal/models"
	"github.com/gin-gonic/gin"
)

// CreateProduct adds a product to the catalog.
func (h *Handlers) CreateProduct(c *gin.Context) {
	var input models.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid input: "+err.Error())
		return
	}
	input.Normalize()
	if err := input.Validate(); err != nil {
		h.respondError(c, err)
		return
	}

	product, err := h.Store.CreateProduct(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// GetProducts lists the catalog.
func (h *Handlers) GetProducts(c *gin.Context) {
	products, err := h.Store.ListProducts(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// GetProduct returns one product, from the cache when possible.
func (h *Handlers) GetProduct(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if product, hit := h.Products.Get(ctx, id); hit {
		c.JSON(http.StatusOK, product)
		return
	}

	// Taken before the read so an update landing during it voids the Set.
	version, cacheable := h.Products.Version(ctx, id)
	product, err := h.Store.GetProduct(ctx, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if cacheable {
		h.Products.Set(ctx, product, version)
	}
	c.JSON(http.StatusOK, product)
}

// UpdateProduct applies a partial update. Orders already placed keep the
// price they were placed at.
func (h *Handlers) UpdateProduct(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var patch models.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "Invalid input: "+err.Error())
		return
	}
	patch.Normalize()
	if err := patch.Validate(); err != nil {
		h.respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	product, err := h.Store.UpdateProduct(ctx, id, patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.Products.Invalidate(ctx, id)
	c.JSON(http.StatusOK, product)
}

// DeleteProduct removes a product from the catalog.
func (h *Handlers) DeleteProduct(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := h.Store.DeleteProduct(ctx, id); err != nil {
		h.respondError(c, err)
		return
	}
	h.Products.Invalidate(ctx, id)
	c.Status(http.StatusNoContent)
}
