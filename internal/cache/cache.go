package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/01moynul/ecommerce-api/internal/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ProductCache is a best-effort cache in front of product reads. Failures are
// logged and reported as misses; they never fail the request.
//
// Every Invalidate bumps the product's version. A reader takes the version
// before loading from the store and passes it to Set, which writes nothing if
// an Invalidate happened in between, so a slow read cannot put a stale row
// back after an update.
type ProductCache interface {
	Get(ctx context.Context, id int64) (models.Product, bool)
	// Version reports the current version of id. ok is false when the cache
	// cannot tell, and the caller should then skip Set.
	Version(ctx context.Context, id int64) (version int64, ok bool)
	Set(ctx context.Context, p models.Product, version int64)
	Invalidate(ctx context.Context, id int64)
}

// NopProductCache caches nothing. It is used when no Redis URL is configured.
type NopProductCache struct{}

func (NopProductCache) Get(context.Context, int64) (models.Product, bool) { return models.Product{}, false }
func (NopProductCache) Version(context.Context, int64) (int64, bool) { return 0, false }
func (NopProductCache) Set(context.Context, models.Product, int64) {}
func (NopProductCache) Invalidate(context.Context, int64) {}

// NewRedisClient parses redisURL and checks the server answers.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// versionTTL bounds how long a version counter outlives its last Invalidate.
// It only has to outlast an in-flight store read.
const versionTTL = 24 * time.Hour

var errStaleVersion = errors.New("product cache version changed")

// RedisProductCache stores products as JSON under product:<id> and their
// versions under product:<id>:ver.
type RedisProductCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisProductCache returns a cache whose entries expire after ttl.
func NewRedisProductCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisProductCache {
	return &RedisProductCache{client: client, ttl: ttl, log: log}
}

func productKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

func versionKey(id int64) string {
	return fmt.Sprintf("product:%d:ver", id)
}

func (r *RedisProductCache) Get(ctx context.Context, id int64) (models.Product, bool) {
	data, err := r.client.Get(ctx, productKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.Warn("product cache get failed", zap.Int64("product_id", id), zap.Error(err))
		}
		return models.Product{}, false
	}

	var p models.Product
	if err := json.Unmarshal(data, &p); err != nil {
		r.log.Warn("product cache entry unreadable", zap.Int64("product_id", id), zap.Error(err))
		return models.Product{}, false
	}
	return p, true
}

func (r *RedisProductCache) Version(ctx context.Context, id int64) (int64, bool) {
	v, err := r.client.Get(ctx, versionKey(id)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, true
	}
	if err != nil {
		r.log.Warn("product cache version read failed", zap.Int64("product_id", id), zap.Error(err))
		return 0, false
	}
	return v, true
}

// Set stores p only while its version is still version. The check and the
// write run under WATCH, so an Invalidate racing with Set aborts the write.
func (r *RedisProductCache) Set(ctx context.Context, p models.Product, version int64) {
	data, err := json.Marshal(p)
	if err != nil {
		r.log.Warn("product cache encode failed", zap.Int64("product_id", p.ID), zap.Error(err))
		return
	}

	verKey := versionKey(p.ID)
	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, verKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return errStaleVersion
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, productKey(p.ID), data, r.ttl)
			return nil
		})
		return err
	}, verKey)

	switch {
	case err == nil, errors.Is(err, errStaleVersion), errors.Is(err, redis.TxFailedErr):
		// Skipped writes are expected under concurrent updates.
	default:
		r.log.Warn("product cache set failed", zap.Int64("product_id", p.ID), zap.Error(err))
	}
}

func (r *RedisProductCache) Invalidate(ctx context.Context, id int64) {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey(id))
		pipe.Expire(ctx, versionKey(id), versionTTL)
		pipe.Del(ctx, productKey(id))
		return nil
	})
	if err != nil {
		r.log.Warn("product cache invalidate failed", zap.Int64("product_id", id), zap.Error(err))
	}
}
