package app

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the service and CLI.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"60s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	// RedisAddr selects the Redis filter options cache. Empty keeps it in memory.
	RedisAddr      string        `envconfig:"REDIS_ADDR"`
	FilterCacheTTL time.Duration `envconfig:"FILTER_CACHE_TTL" default:"5m"`

	MaxDatasets          int   `envconfig:"MAX_DATASETS" default:"8"`
	MaxUploadBytes       int64 `envconfig:"MAX_UPLOAD_BYTES" default:"268435456"`
	ExportRatePerMinute  int   `envconfig:"EXPORT_RATE_PER_MINUTE" default:"30"`
	RequestRatePerMinute int   `envconfig:"REQUEST_RATE_PER_MINUTE" default:"600"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects limits that would make the service unusable.
func (c *Config) Validate() error {
	if c.MaxDatasets < 1 {
		return errors.New("max datasets must be at least 1")
	}
	if c.MaxUploadBytes < 1 {
		return errors.New("max upload bytes must be positive")
	}
	if c.ExportRatePerMinute < 1 || c.RequestRatePerMinute < 1 {
		return errors.New("rate limits must be positive")
	}
	if c.FilterCacheTTL <= 0 {
		return errors.New("filter cache ttl must be positive")
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
