package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	"github.com/marketplace/storefront/internal/domain/cart"
	"github.com/marketplace/storefront/internal/infrastructure/config"
	"github.com/marketplace/storefront/internal/infrastructure/logger"
	"github.com/marketplace/storefront/internal/infrastructure/persistence"
)

const (
	sqliteFileName  = "storefront.db"
	sqliteMemoryDSN = ":memory:"
)

// Factory creates the storage slot selected by configuration
type Factory struct {
	storageConfig config.StorageConfig
	redisConfig   config.RedisConfig
	logger        *zap.Logger
	closers       []func() error
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// NewFactory creates a new storage factory
func NewFactory(storageCfg config.StorageConfig, redisCfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		storageConfig: storageCfg,
		redisConfig:   redisCfg,
		logger:        zap.NewNop(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateStorage creates the configured storage slot.
// When the driver cannot be reached and AllowFallback is set, an in-memory
// slot is returned instead; the cart then lives only for this process.
func (f *Factory) CreateStorage() (cart.Storage, error) {
	store, err := f.createConfigured()
	if err == nil {
		f.logger.Info("using storage slot", zap.String("driver", f.storageConfig.Driver))
		return store, nil
	}

	if !f.storageConfig.AllowFallback {
		return nil, err
	}

	f.logger.Warn("storage slot unavailable, falling back to in-memory storage. "+
		"The guest cart will not survive a restart.",
		zap.String("driver", f.storageConfig.Driver),
		zap.Error(err),
	)
	return NewMemoryStorage(), nil
}

func (f *Factory) createConfigured() (cart.Storage, error) {
	switch f.storageConfig.Driver {
	case config.StorageDriverMemory:
		return NewMemoryStorage(), nil
	case config.StorageDriverFile:
		store, err := NewOSFileStorage(f.storageConfig.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to create file storage: %w", err)
		}
		return store, nil
	case config.StorageDriverRedis:
		store, err := NewRedisStorage(RedisConfig{
			Host:     f.redisConfig.Host,
			Port:     f.redisConfig.Port,
			Password: f.redisConfig.Password,
			DB:       f.redisConfig.DB,
		}, f.storageConfig.KeyPrefix)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis storage: %w", err)
		}
		f.closers = append(f.closers, store.Close)
		return store, nil
	case config.StorageDriverSQLite:
		return f.createSQLite()
	default:
		return nil, fmt.Errorf("unknown storage driver %q", f.storageConfig.Driver)
	}
}

func (f *Factory) createSQLite() (cart.Storage, error) {
	dsn := f.storageConfig.Path
	if dsn != sqliteMemoryDSN {
		if filepath.Ext(dsn) == "" {
			dsn = filepath.Join(dsn, sqliteFileName)
		}
		if err := os.MkdirAll(filepath.Dir(dsn), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create sqlite dir: %w", err)
		}
	}

	db, err := persistence.NewDatabaseWithLogger(dsn, logger.NewGormLogger(f.logger, gormlogger.Warn))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite storage: %w", err)
	}
	store, err := NewSQLStorage(db.DB)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	f.closers = append(f.closers, db.Close)
	return store, nil
}

// Close releases connections opened by the factory
func (f *Factory) Close() error {
	var firstErr error
	for _, closeFn := range f.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	f.closers = nil
	return firstErr
}
