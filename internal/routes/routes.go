package routes

import (
	"net/http"
	"time"

	"github.com/01moynul/ecommerce-api/internal/handlers"
	"github.com/01moynul/ecommerce-api/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Options configures the router around the handlers.
type Options struct {
	Logger          *zap.Logger
	CORSOrigins     []string
	LoginRatePerMin int  // per client IP, applied to /login and /register
	AuthRequired    bool // per-user routes need a token for that user
}

// SetupRouter wires every route to its handler.
func SetupRouter(h *handlers.Handlers, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(opts.Logger))

	// --- CORS ---
	// Only the configured frontends may call us from a browser.
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// --- Ping Route ---
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong!"})
	})

	// --- Auth Routes (rate limited) ---
	limiter := middleware.NewRateLimiter(opts.LoginRatePerMin)
	router.POST("/register", limiter.Middleware(), h.Register)
	router.POST("/login", limiter.Middleware(), h.Login)

	// Routes scoped to one user only admit that user when auth is on.
	var self []gin.HandlerFunc
	if opts.AuthRequired {
		self = []gin.HandlerFunc{middleware.AuthMiddleware(h.Tokens, h.Store), middleware.RequireSelf("username")}
	}

	// --- User Routes ---
	router.GET("/users", h.GetUsers)
	users := router.Group("/users/:username", self...)
	{
		users.GET("", h.GetUser)
		users.PUT("", h.UpdateUser)
		users.DELETE("", h.DeleteUser)
	}

	// --- Product Routes ---
	products := router.Group("/products")
	{
		products.POST("", h.CreateProduct)
		products.GET("", h.GetProducts)
		products.GET("/:id", h.GetProduct)
		products.PUT("/:id", h.UpdateProduct)
		products.DELETE("/:id", h.DeleteProduct)
	}

	// --- Cart Routes ---
	carts := router.Group("/carts/:username", self...)
	{
		carts.POST("", h.AddToCart)
		carts.GET("", h.GetCart)
		carts.PUT("", h.UpdateCartItem)
		carts.DELETE("", h.DeleteFromCart)
	}

	// --- Order Routes ---
	router.GET("/orders", h.GetAllOrders)
	orders := router.Group("/orders/:username", self...)
	{
		orders.POST("", h.PlaceOrder)
		orders.GET("", h.GetUserOrders)
		orders.DELETE("", h.DeleteUserOrders)
		orders.GET("/:id", h.GetOrder)
		orders.DELETE("/:id", h.DeleteOrder)
	}

	return router
}
