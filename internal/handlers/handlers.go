package handlers

import (
	"context"

	"github.com/01moynul/ecommerce-api/internal/auth"
	"github.com/01moynul/ecommerce-api/internal/cache"
	"github.com/01moynul/ecommerce-api/internal/events"
	"github.com/01moynul/ecommerce-api/internal/models"
	"go.uber.org/zap"
)

// Store is the persistence the handlers need. *store.Store implements it.
type Store interface {
	CreateUser(ctx context.Context, username, passwordHash string) (models.User, error)
	GetUser(ctx context.Context, username string) (models.User, error)
	GetUserByID(ctx context.Context, id int64) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, username string, patch models.UserPatch) (models.User, error)
	DeleteUser(ctx context.Context, username string) error

	CreateProduct(ctx context.Context, in models.ProductInput) (models.Product, error)
	GetProduct(ctx context.Context, id int64) (models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	UpdateProduct(ctx context.Context, id int64, patch models.ProductPatch) (models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error

	AddCartItem(ctx context.Context, username string, productID int64, quantity int) error
	GetCart(ctx context.Context, username string) (models.Cart, error)
	UpdateCartItem(ctx context.Context, username string, productID int64, quantity int) error
	RemoveCartItem(ctx context.Context, username string, productID int64) error
	ClearCart(ctx context.Context, username string) error

	PlaceOrder(ctx context.Context, username string) (models.OrderDetail, error)
	GetOrder(ctx context.Context, username string, orderID int64) (models.OrderDetail, error)
	ListUserOrders(ctx context.Context, username string) ([]models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	DeleteUserOrders(ctx context.Context, username string) (int64, error)
	DeleteOrder(ctx context.Context, username string, orderID int64) error
}

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	Store    Store
	Products cache.ProductCache    // Read-through cache for GET /products/:id
	Events   events.OrderPublisher // Notified after an order commits
	Tokens   *auth.TokenManager
	Log      *zap.Logger
}
