package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marketplace/storefront/internal/domain/cart"
)

const defaultRedisKeyPrefix = "storefront:slot:"

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisStorage keeps the storage slot in Redis under a key prefix.
// Values never expire; the slot persists until removed.
type RedisStorage struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStorage connects to Redis and verifies the connection
func NewRedisStorage(cfg RedisConfig, keyPrefix string) (*RedisStorage, error) {
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

	return NewRedisStorageWithClient(client, keyPrefix), nil
}

// NewRedisStorageWithClient creates a storage slot on an existing client
func NewRedisStorageWithClient(client *redis.Client, keyPrefix string) *RedisStorage {
	if keyPrefix == "" {
		keyPrefix = defaultRedisKeyPrefix
	}
	return &RedisStorage{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get returns the value stored under key
func (s *RedisStorage) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.keyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("storage: redis get %q: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key
func (s *RedisStorage) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.keyPrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("storage: redis set %q: %w", key, err)
	}
	return nil
}

// Remove deletes key
func (s *RedisStorage) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("storage: redis del %q: %w", key, err)
	}
	return nil
}

// Close closes the Redis client
func (s *RedisStorage) Close() error {
	return s.client.Close()
}

// GetClient returns the underlying Redis client (for sharing with the cart cache)
func (s *RedisStorage) GetClient() *redis.Client {
	return s.client
}

var _ cart.Storage = (*RedisStorage)(nil)
