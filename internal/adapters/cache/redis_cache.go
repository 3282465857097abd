package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"tanker-dispatch-service/internal/platform/obs"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultPrefix = "tds:"

// RedisCache is a Redis-backed JSON cache for computed views.
type RedisCache struct {
	Client *redis.Client
	Prefix string
}

func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &RedisCache{Client: client, Prefix: prefix}
}

// Connect opens a client for addr and verifies it with a bounded ping.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis cache: ping %s: %w", addr, err)
	}
	return client, nil
}

// Get decodes the cached value into dst. A missing key is (false, nil).
func (c *RedisCache) Get(ctx context.Context, key string, dst any) (_ bool, err error) {
	defer obs.Time(ctx, "cache.Get")(&err)

	if c.Client == nil {
		return false, errors.New("redis cache: client is nil")
	}

	raw, err := c.Client.Get(ctx, c.Prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis cache: get %q: %w", key, err)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("redis cache: decode %q: %w", key, err)
	}
	return true, nil
}

// Set stores value as JSON. A zero ttl keeps the key until it is deleted.
func (c *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if c.Client == nil {
		return errors.New("redis cache: client is nil")
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("redis cache: encode %q: %w", key, err)
	}

	if err := c.Client.Set(ctx, c.Prefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis cache: set %q: %w", key, err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if c.Client == nil {
		return errors.New("redis cache: client is nil")
	}
	if len(keys) == 0 {
		return nil
	}

	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, c.Prefix+k)
	}

	if err := c.Client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("redis cache: delete: %w", err)
	}
	return nil
}
