package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
app:
  name: magick-test
storage:
  driver: memory
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "magick-test", cfg.App.Name)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, DefaultKeyPrefix, cfg.Storage.KeyPrefix)
	assert.Equal(t, 3000, cfg.Storage.Timeout)
	assert.Equal(t, DefaultFallbackLatitude, cfg.Location.FallbackLatitude)
	assert.Equal(t, DefaultFallbackLongitude, cfg.Location.FallbackLongitude)
	assert.Equal(t, DefaultFallbackCity, cfg.Location.FallbackCity)
	assert.Equal(t, LocationSourceStatic, cfg.Location.Source)
	assert.Equal(t, "magick-test", cfg.Observability.ServiceName)
	assert.Equal(t, "stderr", cfg.Logging.Output)
}

func TestLoadFromFile_EnvOverride(t *testing.T) {
	path := writeConfig(t, `
storage:
  driver: sqlite
`)
	t.Setenv("MAGICK_STORAGE_DRIVER", "memory")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
}

func TestLoadFromFile_ExpandsPlaceholders(t *testing.T) {
	t.Setenv("TEST_REDIS_ADDR", "127.0.0.1:6390")
	path := writeConfig(t, `
storage:
  driver: redis
  redis:
    address: ${TEST_REDIS_ADDR}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:6390", cfg.Storage.Redis.Address)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "memory ok",
			mutate: func(c *Config) { c.Storage.Driver = DriverMemory },
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Storage.Driver = "dynamo" },
			wantErr: "not supported",
		},
		{
			name:    "redis without address",
			mutate:  func(c *Config) { c.Storage.Driver = DriverRedis },
			wantErr: "storage.redis.address",
		},
		{
			name: "postgres without user",
			mutate: func(c *Config) {
				c.Storage.Driver = DriverPostgres
				c.Storage.Postgres.Host = "db"
				c.Storage.Postgres.Database = "magick"
			},
			wantErr: "storage.postgres.user",
		},
		{
			name: "geoip without lookup url",
			mutate: func(c *Config) {
				c.Storage.Driver = DriverMemory
				c.Location.Source = LocationSourceGeoIP
				c.Location.Enabled = true
			},
			wantErr: "location.lookup_url",
		},
		{
			name: "unknown location source",
			mutate: func(c *Config) {
				c.Storage.Driver = DriverMemory
				c.Location.Source = "gps"
			},
			wantErr: "location.source",
		},
		{
			name: "fallback latitude out of range",
			mutate: func(c *Config) {
				c.Storage.Driver = DriverMemory
				c.Location.FallbackLatitude = 120
			},
			wantErr: "fallback_latitude",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			applyDefaults(cfg)
			tt.mutate(cfg)

			err := validateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPostgresConfig_GetDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "magick", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=magick sslmode=disable", p.GetDSN())
}
