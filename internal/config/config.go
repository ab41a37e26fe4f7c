// Package config loads the service configuration.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// environment variables. The result is validated once and treated as
// read-only afterwards.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/koustreak/bucketlink/internal/cache/redis"
	"github.com/koustreak/bucketlink/internal/filestore"
	"github.com/koustreak/bucketlink/internal/links"
	"github.com/koustreak/bucketlink/internal/logger"
	"go.yaml.in/yaml/v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Storage   StorageConfig   `yaml:"storage"`
	Cache     CacheConfig     `yaml:"cache"`
	Validator ValidatorConfig `yaml:"validator"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" env:"BUCKETLINK_ADDR"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"BUCKETLINK_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"BUCKETLINK_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"BUCKETLINK_SHUTDOWN_TIMEOUT"`
	AllowedOrigins  []string      `yaml:"allowed_origins" env:"BUCKETLINK_ALLOWED_ORIGINS" envSeparator:","`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"BUCKETLINK_LOG_LEVEL"`
	Format string `yaml:"format" env:"BUCKETLINK_LOG_FORMAT"`
}

// StorageConfig uses the object-store variable names of the original
// deployment (ENDPOINT_URL, ACCESS_KEY, ...).
type StorageConfig struct {
	Provider       string `yaml:"provider" env:"BUCKETLINK_STORAGE_PROVIDER"`
	Endpoint       string `yaml:"endpoint" env:"ENDPOINT_URL"`
	PublicEndpoint string `yaml:"public_endpoint" env:"BUCKETLINK_PUBLIC_ENDPOINT"`
	AccessKey      string `yaml:"access_key" env:"ACCESS_KEY"`
	SecretKey      string `yaml:"secret_key" env:"SECRET_KEY"`
	Region         string `yaml:"region" env:"REGION"`
	UseSSL         bool   `yaml:"use_ssl" env:"SECURE"`
}

type CacheConfig struct {
	URL      string        `yaml:"url" env:"REDIS_URL"`
	PoolSize int           `yaml:"pool_size" env:"BUCKETLINK_REDIS_POOL_SIZE"`
	LinkTTL  time.Duration `yaml:"link_ttl" env:"BUCKETLINK_LINK_TTL"`
}

type ValidatorConfig struct {
	Workers         int           `yaml:"workers" env:"BUCKETLINK_VALIDATOR_WORKERS"`
	QueueSize       int           `yaml:"queue_size" env:"BUCKETLINK_VALIDATOR_QUEUE_SIZE"`
	ProbeTimeout    time.Duration `yaml:"probe_timeout" env:"BUCKETLINK_VALIDATOR_PROBE_TIMEOUT"`
	ProbesPerSecond float64       `yaml:"probes_per_second" env:"BUCKETLINK_VALIDATOR_PROBES_PER_SECOND"`
}

// Default returns the configuration used for anything not set by the
// file or the environment.
func Default() *Config {
	v := links.DefaultValidatorConfig()
	return &Config{
		Server: ServerConfig{
			Addr:            ":8000",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			AllowedOrigins:  []string{"*"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Storage: StorageConfig{
			Provider: string(filestore.ProviderMinIO),
			Region:   "us-east-1",
			UseSSL:   true,
		},
		Cache: CacheConfig{
			URL:     "redis://localhost:6379/0",
			LinkTTL: filestore.DefaultLinkTTL,
		},
		Validator: ValidatorConfig{
			Workers:         v.Workers,
			QueueSize:       v.QueueSize,
			ProbeTimeout:    v.ProbeTimeout,
			ProbesPerSecond: v.ProbesPerSecond,
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (if
// path is non-empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first setting the service cannot start with.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("config: server.addr is required")
	}
	if !logger.ValidLevel(c.Log.Level) {
		return fmt.Errorf("config: unknown log level %q", c.Log.Level)
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	if err := c.FileStore().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Cache.URL == "" {
		return fmt.Errorf("config: cache.url is required")
	}
	if c.Cache.LinkTTL <= 0 {
		return fmt.Errorf("config: cache.link_ttl must be positive")
	}
	if c.Validator.Workers <= 0 || c.Validator.QueueSize <= 0 {
		return fmt.Errorf("config: validator workers and queue_size must be positive")
	}
	if c.Validator.ProbeTimeout <= 0 {
		return fmt.Errorf("config: validator.probe_timeout must be positive")
	}
	if c.Validator.ProbesPerSecond < 0 {
		return fmt.Errorf("config: validator.probes_per_second cannot be negative")
	}
	return nil
}

// FileStore returns the object-store driver settings.
func (c *Config) FileStore() *filestore.Config {
	return &filestore.Config{
		Provider:       filestore.Provider(c.Storage.Provider),
		Endpoint:       c.Storage.Endpoint,
		PublicEndpoint: c.Storage.PublicEndpoint,
		AccessKey:      c.Storage.AccessKey,
		SecretKey:      c.Storage.SecretKey,
		UseSSL:         c.Storage.UseSSL,
		Region:         c.Storage.Region,
	}
}

// Redis returns the cache driver settings.
func (c *Config) Redis() redis.Config {
	return redis.Config{URL: c.Cache.URL, PoolSize: c.Cache.PoolSize}
}

// Links returns the validator pool settings.
func (c *Config) Links() links.ValidatorConfig {
	return links.ValidatorConfig{
		Workers:         c.Validator.Workers,
		QueueSize:       c.Validator.QueueSize,
		ProbeTimeout:    c.Validator.ProbeTimeout,
		ProbesPerSecond: c.Validator.ProbesPerSecond,
	}
}

// Logger returns the logger settings.
func (c *Config) Logger() *logger.Config {
	return &logger.Config{Level: c.Log.Level, Format: c.Log.Format, Output: os.Stdout}
}
