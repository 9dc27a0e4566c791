// Package cache keeps evaluated kiosk statuses in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultPrefix = "kiosk:status:"

// StatusCache stores JSON values per kiosk. A cache built on a nil client is
// disabled: reads miss and writes are dropped.
type StatusCache struct {
	client *redis.Client
	prefix string
}

func NewStatusCache(client *redis.Client, prefix string) *StatusCache {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &StatusCache{client: client, prefix: prefix}
}

// Enabled reports whether a Redis client is configured.
func (c *StatusCache) Enabled() bool {
	return c != nil && c.client != nil
}

func (c *StatusCache) key(kioskID int64) string {
	return c.prefix + strconv.FormatInt(kioskID, 10)
}

// Get decodes the cached value into out. It reports false on a miss.
func (c *StatusCache) Get(ctx context.Context, kioskID int64, out any) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}
	val, err := c.client.Get(ctx, c.key(kioskID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get cached status %d: %w", kioskID, err)
	}
	if err := json.Unmarshal(val, out); err != nil {
		return false, fmt.Errorf("decode cached status %d: %w", kioskID, err)
	}
	return true, nil
}

// Set stores val for ttl. Non-positive ttl stores nothing.
func (c *StatusCache) Set(ctx context.Context, kioskID int64, val any, ttl time.Duration) error {
	if !c.Enabled() || ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("encode status %d: %w", kioskID, err)
	}
	if err := c.client.Set(ctx, c.key(kioskID), data, ttl).Err(); err != nil {
		return fmt.Errorf("cache status %d: %w", kioskID, err)
	}
	return nil
}

func (c *StatusCache) Delete(ctx context.Context, kioskID int64) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Del(ctx, c.key(kioskID)).Err()
}

// DeleteAll drops every key under the cache prefix.
func (c *StatusCache) DeleteAll(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	keys := make([]string, 0)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan cached statuses: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// Ping checks the Redis connection; a disabled cache is always healthy.
func (c *StatusCache) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Ping(ctx).Err()
}
