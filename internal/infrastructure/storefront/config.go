package storefront

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/marketplace/storefront/internal/infrastructure/config"
)

const (
	// DefaultTimeout is the HTTP request timeout used when none is configured
	DefaultTimeout = 30 * time.Second
	// DefaultMaxResponseSize caps the bytes read from one response (10MB)
	DefaultMaxResponseSize int64 = 10 * 1024 * 1024
)

// Errors for client configuration
var (
	ErrConfigMissingBaseURL = errors.New("storefront: base URL is required")
	ErrConfigInvalidBaseURL = errors.New("storefront: base URL must be an absolute http(s) URL")
)

// Config holds the storefront backend connection settings
type Config struct {
	// BaseURL is the API root, e.g. https://shop.example.com/api/v1
	BaseURL string
	// Timeout is the per-request HTTP timeout
	Timeout time.Duration
	// MaxResponseSize caps the body bytes read from one response
	MaxResponseSize int64
}

// NewConfig creates a configuration with defaults for the given base URL
func NewConfig(baseURL string) *Config {
	return &Config{
		BaseURL:         baseURL,
		Timeout:         DefaultTimeout,
		MaxResponseSize: DefaultMaxResponseSize,
	}
}

// FromAppConfig builds a client configuration from the application config
func FromAppConfig(cfg config.BackendConfig) *Config {
	return &Config{
		BaseURL:         cfg.BaseURL,
		Timeout:         cfg.Timeout,
		MaxResponseSize: cfg.MaxResponseSize,
	}
}

// Validate checks the configuration and fills in defaults
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrConfigMissingBaseURL
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrConfigInvalidBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxResponseSize <= 0 {
		c.MaxResponseSize = DefaultMaxResponseSize
	}
	return nil
}
