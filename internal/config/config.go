package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// defaultDSN points at a local MySQL instance. database.OpenDB forces the
// driver flags the store needs onto any DSN, this one included.
const defaultDSN = "root:root@tcp(127.0.0.1:3306)/ecommerce?parseTime=true&loc=UTC&clientFoundRows=true"

// Config holds everything the API reads from the environment.
type Config struct {
	Port            string
	Env             string
	DSN             string
	MaxOpenConns    int
	JWTSecret       string
	JWTTTL          time.Duration
	AuthRequired    bool
	CORSOrigins     []string
	LoginRatePerMin int
	RedisURL        string
	ProductCacheTTL time.Duration
	AMQPURL         string
	OrderQueue      string
	ShutdownTimeout time.Duration
}

// IsProduction reports whether the API runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads a .env file when present and builds the Config from the
// environment. A missing .env file is not an error; loaded reports whether one
// was found so the caller can log it.
func Load() (cfg *Config, loaded bool, err error) {
	loaded = godotenv.Load() == nil

	cfg = &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("APP_ENV", "development"),
		DSN:         getEnv("DB_DSN_PRIMARY", defaultDSN),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		RedisURL:    os.Getenv("REDIS_URL"),
		AMQPURL:     os.Getenv("AMQP_URL"),
		OrderQueue:  getEnv("ORDER_EVENTS_QUEUE", "orders.placed"),
		CORSOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
	}

	if cfg.MaxOpenConns, err = getInt("DB_MAX_OPEN_CONNS", 25); err != nil {
		return nil, loaded, err
	}
	if cfg.LoginRatePerMin, err = getInt("LOGIN_RATE_PER_MIN", 20); err != nil {
		return nil, loaded, err
	}
	if cfg.AuthRequired, err = getBool("AUTH_REQUIRED", false); err != nil {
		return nil, loaded, err
	}
	if cfg.JWTTTL, err = getDuration("JWT_TTL", 72*time.Hour); err != nil {
		return nil, loaded, err
	}
	if cfg.ProductCacheTTL, err = getDuration("PRODUCT_CACHE_TTL", 5*time.Minute); err != nil {
		return nil, loaded, err
	}
	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, loaded, err
	}

	if err := cfg.validate(); err != nil {
		return nil, loaded, err
	}
	return cfg, loaded, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		if c.IsProduction() {
			return errors.New("JWT_SECRET is required in production")
		}
		c.JWTSecret = "dev-only-secret-change-me"
	}
	if c.MaxOpenConns <= 0 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be positive, got %d", c.MaxOpenConns)
	}
	if c.LoginRatePerMin <= 0 {
		return fmt.Errorf("LOGIN_RATE_PER_MIN must be positive, got %d", c.LoginRatePerMin)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
