package cache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/marketplace/storefront/internal/domain/cart"
	"github.com/marketplace/storefront/internal/infrastructure/config"
)

// CartCacheFactory creates remote cart caches based on configuration
type CartCacheFactory struct {
	cacheConfig           config.CacheConfig
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// CartCacheFactoryOption is a functional option for configuring the factory
type CartCacheFactoryOption func(*CartCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) CartCacheFactoryOption {
	return func(f *CartCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory cache when Redis is unavailable.
// Default is true (allow fallback).
func WithInMemoryFallback(allow bool) CartCacheFactoryOption {
	return func(f *CartCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewCartCacheFactory creates a new factory
func NewCartCacheFactory(cacheCfg config.CacheConfig, redisCfg config.RedisConfig, opts ...CartCacheFactoryOption) *CartCacheFactory {
	f := &CartCacheFactory{
		cacheConfig:           cacheCfg,
		redisConfig:           redisCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisCache creates a Redis-based cart cache
func (f *CartCacheFactory) CreateRedisCache() (*RedisCartCache, error) {
	c, err := NewRedisCartCache(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}, f.cacheConfig.KeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis cart cache: %w", err)
	}
	return c, nil
}

// CreateInMemoryCache creates an in-memory cart cache.
// The caller owns it and must Close it to stop the cleanup goroutine.
func (f *CartCacheFactory) CreateInMemoryCache() *InMemoryCartCache {
	return NewInMemoryCartCache(WithCleanupInterval(f.cacheConfig.CleanupInterval))
}

// CreateCache creates the configured cart cache.
// For the redis driver it falls back to in-memory when Redis is not reachable
// and fallback is allowed.
func (f *CartCacheFactory) CreateCache() (cart.RemoteCartCache, error) {
	switch f.cacheConfig.Driver {
	case config.CacheDriverNone:
		return NopCartCache{}, nil
	case config.CacheDriverMemory, "":
		return f.CreateInMemoryCache(), nil
	case config.CacheDriverRedis:
	default:
		return nil, fmt.Errorf("unknown cache driver %q", f.cacheConfig.Driver)
	}

	c, err := f.CreateRedisCache()
	if err == nil {
		f.logger.Info("using Redis cart cache")
		return c, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for cart cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory cart cache",
		zap.Error(err),
	)
	return f.CreateInMemoryCache(), nil
}
