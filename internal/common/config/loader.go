// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultKeyPrefix         = "@magick_"
	DefaultFallbackLatitude  = 30.3322
	DefaultFallbackLongitude = -81.6557
	DefaultFallbackCity      = "Jacksonville, FL"
)

// Load reads config.yaml (and config.<env>.yaml when present) from the usual
// locations, applies MAGICK_* environment overrides and validates the result.
// A missing config file is not an error; defaults cover every field.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	env := os.Getenv("MAGICK_APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("MAGICK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about.
	v.SetDefault("storage.driver", DriverSQLite)
	v.SetDefault("storage.key_prefix", DefaultKeyPrefix)
	v.SetDefault("storage.redis.address", "")
	v.SetDefault("storage.postgres.host", "")
	v.SetDefault("storage.sqlite.path", "")
	v.SetDefault("location.source", LocationSourceStatic)
	v.SetDefault("location.lookup_url", "")
	v.SetDefault("location.enabled", false)
	v.SetDefault("location.latitude", 0.0)
	v.SetDefault("location.longitude", 0.0)
	v.SetDefault("location.city", "")
	v.SetDefault("catalog.cards_path", "")
	v.SetDefault("catalog.businesses_path", "")
	v.SetDefault("observability.jaeger_endpoint", "")
	v.SetDefault("logging.level", "info")
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{".env", "../.env", "../../.env"}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "magick"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = DriverSQLite
	}
	if cfg.Storage.KeyPrefix == "" {
		cfg.Storage.KeyPrefix = DefaultKeyPrefix
	}
	if cfg.Storage.Timeout == 0 {
		cfg.Storage.Timeout = 3000
	}
	if cfg.Storage.Postgres.Port == 0 {
		cfg.Storage.Postgres.Port = 5432
	}
	if cfg.Storage.Postgres.MaxConnections == 0 {
		cfg.Storage.Postgres.MaxConnections = 5
	}
	if cfg.Storage.Postgres.MaxIdle == 0 {
		cfg.Storage.Postgres.MaxIdle = 2
	}
	if cfg.Storage.Postgres.SSLMode == "" {
		cfg.Storage.Postgres.SSLMode = "disable"
	}
	if cfg.Storage.Postgres.Table == "" {
		cfg.Storage.Postgres.Table = "kv_store"
	}
	if cfg.Storage.SQLite.Path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.Storage.SQLite.Path = filepath.Join(home, ".local", "share", "magick", "state.db")
		} else {
			cfg.Storage.SQLite.Path = "magick-state.db"
		}
	}

	if cfg.Location.FallbackLatitude == 0 && cfg.Location.FallbackLongitude == 0 {
		cfg.Location.FallbackLatitude = DefaultFallbackLatitude
		cfg.Location.FallbackLongitude = DefaultFallbackLongitude
	}
	if cfg.Location.FallbackCity == "" {
		cfg.Location.FallbackCity = DefaultFallbackCity
	}
	if cfg.Location.Source == "" {
		cfg.Location.Source = LocationSourceStatic
	}
	if cfg.Location.Timeout == 0 {
		cfg.Location.Timeout = 5000
	}

	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = cfg.App.Name
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	switch cfg.Storage.Driver {
	case DriverMemory, DriverSQLite:
	case DriverRedis:
		if cfg.Storage.Redis.Address == "" {
			return fmt.Errorf("storage.redis.address is required for the redis driver")
		}
	case DriverPostgres:
		if cfg.Storage.Postgres.Host == "" {
			return fmt.Errorf("storage.postgres.host is required for the postgres driver")
		}
		if cfg.Storage.Postgres.Database == "" {
			return fmt.Errorf("storage.postgres.database is required for the postgres driver")
		}
		if cfg.Storage.Postgres.User == "" {
			return fmt.Errorf("storage.postgres.user is required for the postgres driver")
		}
	default:
		return fmt.Errorf("storage.driver %q is not supported", cfg.Storage.Driver)
	}

	switch cfg.Location.Source {
	case LocationSourceStatic:
	case LocationSourceGeoIP:
		if cfg.Location.Enabled && cfg.Location.LookupURL == "" {
			return fmt.Errorf("location.lookup_url is required for the geoip source")
		}
	default:
		return fmt.Errorf("location.source %q is not supported", cfg.Location.Source)
	}

	if cfg.Location.FallbackLatitude < -90 || cfg.Location.FallbackLatitude > 90 {
		return fmt.Errorf("location.fallback_latitude out of range: %v", cfg.Location.FallbackLatitude)
	}
	if cfg.Location.FallbackLongitude < -180 || cfg.Location.FallbackLongitude > 180 {
		return fmt.Errorf("location.fallback_longitude out of range: %v", cfg.Location.FallbackLongitude)
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
