// Package cache provides a small JSON cache used for catalog reference reads.
// The engine works without it: every constructor accepts a nil Redis client
// and degrades to a no-op cache, so Redis stays an optional dependency.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores JSON-serializable values under string keys with a TTL.
// Implementations must treat failures as cache misses where possible —
// reference data is always recoverable from Postgres.
type Cache interface {
	// GetJSON unmarshals the value stored under key into dest.
	// Returns false with a nil error on a miss.
	GetJSON(ctx context.Context, key string, dest any) (bool, error)

	// SetJSON marshals v and stores it under key for ttl.
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// redisCache is the go-redis implementation of Cache.
type redisCache struct {
	client *redis.Client
}

// NewRedis constructs a Cache backed by the provided Redis client.
// A nil client yields a no-op cache.
func NewRedis(client *redis.Client) Cache {
	if client == nil {
		return noopCache{}
	}
	return &redisCache{client: client}
}

func (c *redisCache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("cache.GetJSON: %w", err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("cache.GetJSON: unmarshal: %w", err)
	}
	return true, nil
}

func (c *redisCache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache.SetJSON: marshal: %w", err)
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache.SetJSON: %w", err)
	}
	return nil
}

func (c *redisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("cache.Delete: %w", err)
	}
	return nil
}

// noopCache misses every read and discards every write.
type noopCache struct{}

func (noopCache) GetJSON(context.Context, string, any) (bool, error)        { return false, nil }
func (noopCache) SetJSON(context.Context, string, any, time.Duration) error { return nil }
func (noopCache) Delete(context.Context, string) error                      { return nil }
