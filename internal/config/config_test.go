package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/koustreak/bucketlink/internal/filestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bucketlink.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "us-east-1", cfg.Storage.Region)
	assert.True(t, cfg.Storage.UseSSL)
	assert.Equal(t, time.Hour, cfg.Cache.LinkTTL)
	assert.Equal(t, 4, cfg.Validator.Workers)
}

func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv("ENDPOINT_URL", "minio:9000")
	t.Setenv("ACCESS_KEY", "minioadmin")
	t.Setenv("SECRET_KEY", "minioadmin")
	t.Setenv("REDIS_URL", "redis://cache:6379/1")
	t.Setenv("SECURE", "false")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "minio:9000", cfg.Storage.Endpoint)
	assert.Equal(t, "minioadmin", cfg.Storage.AccessKey)
	assert.False(t, cfg.Storage.UseSSL)
	assert.Equal(t, "redis://cache:6379/1", cfg.Cache.URL)
	assert.Equal(t, "us-east-1", cfg.Storage.Region, "default kept")
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeFile(t, `
server:
  addr: ":9090"
  shutdown_timeout: 5s
  allowed_origins: ["https://app.example.com"]
log:
  level: debug
  format: console
storage:
  provider: s3
  region: eu-west-1
  public_endpoint: https://cdn.example.com
cache:
  url: redis://file:6379/0
  link_ttl: 30m
validator:
  workers: 8
  probes_per_second: 0
`)
	t.Setenv("REDIS_URL", "redis://env:6379/0")
	t.Setenv("BUCKETLINK_VALIDATOR_QUEUE_SIZE", "32")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "eu-west-1", cfg.Storage.Region)
	assert.Equal(t, 30*time.Minute, cfg.Cache.LinkTTL)
	assert.Equal(t, "redis://env:6379/0", cfg.Cache.URL, "env overrides file")
	assert.Equal(t, 8, cfg.Validator.Workers)
	assert.Equal(t, 32, cfg.Validator.QueueSize)
	assert.Zero(t, cfg.Validator.ProbesPerSecond)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout, "unset keys keep defaults")
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorContains(t, err, "read")
	})

	t.Run("bad yaml", func(t *testing.T) {
		_, err := Load(writeFile(t, "server: [unclosed"))
		assert.ErrorContains(t, err, "parse")
	})

	t.Run("bad env value", func(t *testing.T) {
		t.Setenv("ENDPOINT_URL", "minio:9000")
		t.Setenv("SECURE", "maybe")
		_, err := Load("")
		assert.ErrorContains(t, err, "environment")
	})

	t.Run("minio without endpoint", func(t *testing.T) {
		t.Setenv("ENDPOINT_URL", "")
		_, err := Load("")
		assert.ErrorContains(t, err, "endpoint is required")
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := Default()
		c.Storage.Endpoint = "localhost:9000"
		return c
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no addr", func(c *Config) { c.Server.Addr = "" }, "server.addr"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log format"},
		{"bad provider", func(c *Config) { c.Storage.Provider = "gcs" }, "unknown provider"},
		{"half credentials", func(c *Config) { c.Storage.AccessKey = "k" }, "together"},
		{"no cache url", func(c *Config) { c.Cache.URL = "" }, "cache.url"},
		{"zero ttl", func(c *Config) { c.Cache.LinkTTL = 0 }, "link_ttl"},
		{"zero workers", func(c *Config) { c.Validator.Workers = 0 }, "workers"},
		{"zero probe timeout", func(c *Config) { c.Validator.ProbeTimeout = 0 }, "probe_timeout"},
		{"negative rate", func(c *Config) { c.Validator.ProbesPerSecond = -1 }, "probes_per_second"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.ErrorContains(t, c.Validate(), tt.want)
		})
	}
}

func TestConversions(t *testing.T) {
	c := Default()
	c.Storage.Endpoint = "minio:9000"
	c.Storage.PublicEndpoint = "https://files.example.com"

	fs := c.FileStore()
	assert.Equal(t, filestore.ProviderMinIO, fs.Provider)
	assert.Equal(t, "https://files.example.com", fs.PublicEndpoint)
	assert.True(t, fs.UseSSL)

	assert.Equal(t, c.Cache.URL, c.Redis().URL)
	assert.Equal(t, c.Validator.QueueSize, c.Links().QueueSize)
	assert.Equal(t, "json", c.Logger().Format)
}
