package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Options configures the connection pool.
type Options struct {
	DSN          string
	MaxOpenConns int
}

// OpenDB creates and configures the primary connection pool and verifies it
// with a ping. The caller owns the pool and must Close it on shutdown.
func OpenDB(ctx context.Context, opts Options) (*sql.DB, error) {
	dsn, err := NormalizeDSN(opts.DSN)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxOpenConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// NormalizeDSN forces the driver settings the store relies on, whatever the
// operator supplied:
//
//   - parseTime, so DATETIME columns scan into time.Time
//   - loc=UTC, so order timestamps round-trip unchanged
//   - clientFoundRows, so UPDATE reports matched rows and setting a quantity
//     to its current value is not mistaken for a missing row
func NormalizeDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid DB_DSN_PRIMARY: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.ClientFoundRows = true
	return cfg.FormatDSN(), nil
}
