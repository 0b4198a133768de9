package country

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/serfi-platform/user-management/pkg/logger"
)

// Cache is a thin read-through JSON cache over Redis. A nil client degrades
// to calling the loader on every request so the service works without Redis.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Cache{client: client, ttl: ttl, logger: lg}
}

// FetchJSON loads a cached value or populates it using the loader. Redis
// failures are not fatal: a broken read or write degrades to the loader so
// the caller only sees an error when the upstream itself fails.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	if loader == nil {
		return errors.New("cache: loader required")
	}
	if c == nil || c.client == nil {
		return c.loadInto(ctx, "", dest, loader)
	}

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return json.Unmarshal(payload, dest)
	}
	if err != redis.Nil {
		c.logger.Warn("cache read failed, falling back to loader", "key", key, "error", err)
		return c.loadInto(ctx, "", dest, loader)
	}

	return c.loadInto(ctx, key, dest, loader)
}

// loadInto runs the loader and copies the result into dest. A non-empty key
// also writes the value back to Redis; a failed write is logged and dropped.
func (c *Cache) loadInto(ctx context.Context, key string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if key != "" {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.logger.Warn("cache write failed, serving uncached result", "key", key, "error", err)
		}
	}
	return json.Unmarshal(raw, dest)
}
