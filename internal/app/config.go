package app

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Backend names for the purchase-order store.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// StoreBackend selects the persistence layer: "file" keeps everything in
	// a local JSON file, "redis" uses a remote document store.
	StoreBackend string `envconfig:"STORE_BACKEND" default:"file"`
	StoreFile    string `envconfig:"STORE_FILE" default:"data/procura.json"`
	RedisAddr    string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`

	SeedData bool `envconfig:"SEED_DATA" default:"true"`

	RateLimit int `envconfig:"RATE_LIMIT" default:"200"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.StoreBackend != BackendFile && cfg.StoreBackend != BackendRedis {
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
