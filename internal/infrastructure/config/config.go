package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage drivers for the local cart slot
const (
	StorageDriverMemory = "memory"
	StorageDriverFile   = "file"
	StorageDriverRedis  = "redis"
	StorageDriverSQLite = "sqlite"
)

// Cache drivers for the remote cart read cache
const (
	CacheDriverMemory = "memory"
	CacheDriverRedis  = "redis"
	CacheDriverNone   = "none"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Log       LogConfig
	Backend   BackendConfig
	Storage   StorageConfig
	Redis     RedisConfig
	Cache     CacheConfig
	JWT       JWTConfig
	Sandbox   SandboxConfig
	Telemetry TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
}

// BackendConfig holds the storefront backend the cart client talks to
type BackendConfig struct {
	BaseURL         string
	Timeout         time.Duration
	MaxResponseSize int64
}

// StorageConfig holds the local storage slot settings
type StorageConfig struct {
	Driver        string // memory, file, redis, sqlite
	Path          string // directory for file, database file for sqlite
	KeyPrefix     string // redis key prefix
	AllowFallback bool   // fall back to memory when the configured driver is unavailable
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig holds the remote cart read cache settings
type CacheConfig struct {
	Driver          string // memory, redis, none
	TTL             time.Duration
	CleanupInterval time.Duration
	KeyPrefix       string
}

// JWTConfig holds JWT settings used by the sandbox backend
type JWTConfig struct {
	Secret                string
	AccessTokenExpiration time.Duration
	Issuer                string
}

// SandboxConfig holds the local sandbox backend settings
type SandboxConfig struct {
	Port         string
	DSN          string // sqlite file or ":memory:"
	Seed         bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxBodySize  int64
	CORSOrigins  []string
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
}

// Load loads configuration from the default search path.
// Priority (highest to lowest):
// 1. Environment variables with STOREFRONT_ prefix (e.g., STOREFRONT_BACKEND_BASE_URL)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile loads configuration from an explicit file; an empty path searches
// ., ./config and /etc/storefront for config.toml
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/storefront")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("sandbox.seed", true)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Backend: BackendConfig{
			BaseURL:         v.GetString("backend.base_url"),
			Timeout:         v.GetDuration("backend.timeout"),
			MaxResponseSize: v.GetInt64("backend.max_response_size"),
		},
		Storage: StorageConfig{
			Driver:        v.GetString("storage.driver"),
			Path:          v.GetString("storage.path"),
			KeyPrefix:     v.GetString("storage.key_prefix"),
			AllowFallback: v.GetBool("storage.allow_fallback"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Cache: CacheConfig{
			Driver:          v.GetString("cache.driver"),
			TTL:             v.GetDuration("cache.ttl"),
			CleanupInterval: v.GetDuration("cache.cleanup_interval"),
			KeyPrefix:       v.GetString("cache.key_prefix"),
		},
		JWT: JWTConfig{
			Secret:                v.GetString("jwt.secret"),
			AccessTokenExpiration: v.GetDuration("jwt.access_token_expiration"),
			Issuer:                v.GetString("jwt.issuer"),
		},
		Sandbox: SandboxConfig{
			Port:         v.GetString("sandbox.port"),
			DSN:          v.GetString("sandbox.dsn"),
			Seed:         v.GetBool("sandbox.seed"),
			ReadTimeout:  v.GetDuration("sandbox.read_timeout"),
			WriteTimeout: v.GetDuration("sandbox.write_timeout"),
			MaxBodySize:  v.GetInt64("sandbox.max_body_size"),
			CORSOrigins:  v.GetStringSlice("sandbox.cors_origins"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "storefront"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stderr"
	}
	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = "http://localhost:8080/api/v1"
	}
	if cfg.Backend.Timeout == 0 {
		cfg.Backend.Timeout = 30 * time.Second
	}
	if cfg.Backend.MaxResponseSize == 0 {
		cfg.Backend.MaxResponseSize = 10 << 20 // 10MB
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = StorageDriverFile
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = ".storefront"
	}
	if cfg.Storage.KeyPrefix == "" {
		cfg.Storage.KeyPrefix = "storefront:slot:"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Cache.Driver == "" {
		cfg.Cache.Driver = CacheDriverMemory
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 30 * time.Second
	}
	if cfg.Cache.CleanupInterval == 0 {
		cfg.Cache.CleanupInterval = time.Minute
	}
	if cfg.Cache.KeyPrefix == "" {
		cfg.Cache.KeyPrefix = "storefront:cart:"
	}
	if cfg.JWT.AccessTokenExpiration == 0 {
		cfg.JWT.AccessTokenExpiration = 24 * time.Hour
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "storefront-sandbox"
	}
	if cfg.Sandbox.Port == "" {
		cfg.Sandbox.Port = "8080"
	}
	if cfg.Sandbox.DSN == "" {
		cfg.Sandbox.DSN = "file:sandbox.db?cache=shared"
	}
	if cfg.Sandbox.ReadTimeout == 0 {
		cfg.Sandbox.ReadTimeout = 15 * time.Second
	}
	if cfg.Sandbox.WriteTimeout == 0 {
		cfg.Sandbox.WriteTimeout = 15 * time.Second
	}
	if cfg.Sandbox.MaxBodySize == 0 {
		cfg.Sandbox.MaxBodySize = 1 << 20 // 1MB
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317" // Default gRPC endpoint
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend.base_url must be an absolute URL, got %q", c.Backend.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend.base_url scheme must be http or https, got %q", u.Scheme)
	}
	if c.Backend.Timeout < 0 {
		return fmt.Errorf("backend.timeout cannot be negative")
	}

	switch c.Storage.Driver {
	case StorageDriverMemory, StorageDriverFile, StorageDriverRedis, StorageDriverSQLite:
	default:
		return fmt.Errorf("storage.driver must be one of memory, file, redis, sqlite, got %q", c.Storage.Driver)
	}

	switch c.Cache.Driver {
	case CacheDriverMemory, CacheDriverRedis, CacheDriverNone:
	default:
		return fmt.Errorf("cache.driver must be one of memory, redis, none, got %q", c.Cache.Driver)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl cannot be negative")
	}

	if c.App.Env == "production" {
		if c.JWT.Secret != "" && len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if u.Scheme != "https" {
			return fmt.Errorf("backend.base_url must use https in production")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// RedisAddr returns host:port for the Redis connection
func (r *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
