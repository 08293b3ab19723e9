package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/01moynul/ecommerce-api/internal/auth"
	"github.com/01moynul/ecommerce-api/internal/cache"
	"github.com/01moynul/ecommerce-api/internal/config"
	"github.com/01moynul/ecommerce-api/internal/database"
	"github.com/01moynul/ecommerce-api/internal/events"
	"github.com/01moynul/ecommerce-api/internal/handlers"
	"github.com/01moynul/ecommerce-api/internal/logger"
	"github.com/01moynul/ecommerce-api/internal/routes"
	"github.com/01moynul/ecommerce-api/internal/store"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// 0. --- Configuration (.env + environment) ---
	cfg, loaded, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("invalid configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		os.Stderr.WriteString("failed to build logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	if !loaded {
		log.Warn("no .env file found, relying on system environment variables")
	}
	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. --- Database ---
	db, err := database.OpenDB(ctx, database.Options{DSN: cfg.DSN, MaxOpenConns: cfg.MaxOpenConns})
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		return err
	}
	log.Info("database ready")

	// 2. --- Optional product cache ---
	var products cache.ProductCache = cache.NopProductCache{}
	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		products = cache.NewRedisProductCache(client, cfg.ProductCacheTTL, log)
		log.Info("product cache enabled", zap.Duration("ttl", cfg.ProductCacheTTL))
	}

	// 3. --- Optional order events ---
	var publisher events.OrderPublisher = events.NopPublisher{}
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.OrderQueue)
		if err != nil {
			return err
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
		log.Info("order events enabled", zap.String("queue", cfg.OrderQueue))
	}

	// --- Application Setup ---
	app := &handlers.Handlers{
		Store:    store.New(db),
		Products: products,
		Events:   publisher,
		Tokens:   auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL),
		Log:      log,
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := routes.SetupRouter(app, routes.Options{
		Logger:          log,
		CORSOrigins:     cfg.CORSOrigins,
		LoginRatePerMin: cfg.LoginRatePerMin,
		AuthRequired:    cfg.AuthRequired,
	})

	// --- Start Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting API server", zap.String("addr", srv.Addr), zap.Bool("auth_required", cfg.AuthRequired))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
