package handlers

import (
	"net/http"
	"strconv"

	"github.com/01moynul/ecommerce-api/internal/apperr"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError writes err as {"error": msg} with the status of its kind.
// Server errors are logged in full and reach the client only as a generic
// message.
func (h *Handlers) respondError(c *gin.Context, err error) {
	status := apperr.StatusCode(err)
	if status >= http.StatusInternalServerError {
		h.Log.Error("request failed",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("route", c.FullPath()),
			zap.Error(err))
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": apperr.PublicMessage(err)})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// idParam parses a positive integer path parameter.
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}
