package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/01moynul/ecommerce-api/internal/apperr"
	"github.com/01moynul/ecommerce-api/internal/auth"
	"github.com/01moynul/ecommerce-api/internal/models"
	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware.
const (
	ContextUserID   = "userID"
	ContextUsername = "username"
)

// UserLookup resolves a token subject to the account as it is now.
type UserLookup interface {
	GetUserByID(ctx context.Context, id int64) (models.User, error)
}

// AuthMiddleware checks the Bearer token, loads the user it was issued to and
// stores that user's id and current username in the context. A token whose
// user no longer exists is rejected, even if it has not expired.
func AuthMiddleware(tokens *auth.TokenManager, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		scheme, tokenString, ok := strings.Cut(authHeader, " ")
		if !ok || scheme != "Bearer" || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format (must be Bearer)"})
			return
		}

		claims, err := tokens.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		// The username in the token is only what it was at login; usernames
		// can be changed or freed and taken by someone else.
		user, err := users.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
				return
			}
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": apperr.PublicMessage(err)})
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextUsername, user.Username)
		c.Next()
	}
}

// RequireSelf only lets the request through when the authenticated username
// equals the path parameter named param. It must run after AuthMiddleware.
func RequireSelf(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.GetString(ContextUsername)
		if username == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		if username != c.Param(param) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}
		c.Next()
	}
}
