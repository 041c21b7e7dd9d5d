package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marketplace/storefront/internal/domain/cart"
)

const defaultRedisKeyPrefix = "storefront:cart:"

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisCartCache implements cart.RemoteCartCache using Redis.
// Items are stored as JSON with the entry TTL set on the key.
type RedisCartCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisCartCache connects to Redis and verifies the connection
func NewRedisCartCache(cfg RedisConfig, keyPrefix string) (*RedisCartCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisCartCacheWithClient(client, keyPrefix), nil
}

// NewRedisCartCacheWithClient creates a cache with an existing Redis client.
// This is useful for testing or when sharing a client across components.
func NewRedisCartCacheWithClient(client *redis.Client, keyPrefix string) *RedisCartCache {
	if keyPrefix == "" {
		keyPrefix = defaultRedisKeyPrefix
	}
	return &RedisCartCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get returns the cached items for key or cart.ErrCacheMiss
func (c *RedisCartCache) Get(ctx context.Context, key string) ([]cart.RemoteCartItem, error) {
	raw, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, cart.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to read cart cache: %w", err)
	}

	var items []cart.RemoteCartItem
	if err := json.Unmarshal(raw, &items); err != nil {
		// A corrupt entry is dropped and treated as a miss
		_ = c.client.Del(ctx, c.keyPrefix+key).Err()
		return nil, cart.ErrCacheMiss
	}
	if items == nil {
		items = []cart.RemoteCartItem{}
	}
	return items, nil
}

// Set caches items under key for ttl; a non-positive ttl drops the entry
func (c *RedisCartCache) Set(ctx context.Context, key string, items []cart.RemoteCartItem, ttl time.Duration) error {
	if ttl <= 0 {
		return c.Invalidate(ctx, key)
	}
	if items == nil {
		items = []cart.RemoteCartItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode cart cache entry: %w", err)
	}
	if err := c.client.Set(ctx, c.keyPrefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cart cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached entry for key
func (c *RedisCartCache) Invalidate(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cart cache: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisCartCache) Close() error {
	return c.client.Close()
}

var _ cart.RemoteCartCache = (*RedisCartCache)(nil)
