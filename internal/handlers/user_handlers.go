package handlers

import (
	"errors"
	"net/http"

	"github.com/01moynul/ecommerce-api/internal/apperr"
	"github.com/01moynul/ecommerce-api/internal/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// --- Registration & Login ---

// RegisterInput is the body of POST /register. bcrypt ignores everything
// past 72 bytes, so longer passwords are refused.
type RegisterInput struct {
	Username string `json:"username" binding:"required,max=20"`
	Password string `json:"password" binding:"required,max=72"`
}

// Register creates a user with a hashed password.
func (h *Handlers) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid input: "+err.Error())
		return
	}

	var password models.Password
	if err := password.Set(input.Password); err != nil {
		h.respondError(c, err)
		return
	}

	user, err := h.Store.CreateUser(c.Request.Context(), input.Username, password.Hash)
	if err != nil {
		// Registration reports a taken username as a plain bad request.
		if errors.Is(err, apperr.ErrConflict) {
			badRequest(c, apperr.PublicMessage(err))
			return
		}
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    user,
	})
}

// LoginInput is the body of POST /login.
type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login checks the credentials and returns a signed token.
func (h *Handlers) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid input: "+err.Error())
		return
	}

	invalid := gin.H{"error": "Invalid username or password"}

	user, err := h.Store.GetUser(c.Request.Context(), input.Username)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, invalid)
			return
		}
		h.respondError(c, err)
		return
	}

	password := models.Password{Hash: user.PasswordHash}
	match, err := password.Matches(input.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !match {
		c.JSON(http.StatusUnauthorized, invalid)
		return
	}

	token, err := h.Tokens.GenerateToken(user.ID, user.Username)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.Log.Info("user logged in", zap.Int64("user_id", user.ID))
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// --- User CRUD ---

// GetUsers lists every user.
func (h *Handlers) GetUsers(c *gin.Context) {
	users, err := h.Store.ListUsers(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUser returns one user by username.
func (h *Handlers) GetUser(c *gin.Context) {
	user, err := h.Store.GetUser(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateUser applies a partial update. Fields that are absent or empty keep
// their stored value.
func (h *Handlers) UpdateUser(c *gin.Context) {
	var patch models.UserPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "Invalid input: "+err.Error())
		return
	}
	if err := patch.Validate(); err != nil {
		h.respondError(c, err)
		return
	}

	user, err := h.Store.UpdateUser(c.Request.Context(), c.Param("username"), patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser removes the user together with their cart and orders.
func (h *Handlers) DeleteUser(c *gin.Context) {
	if err := h.Store.DeleteUser(c.Request.Context(), c.Param("username")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
