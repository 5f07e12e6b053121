// Package config loads pagemeta configuration from pagemeta.yaml and
// PAGEMETA_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the pagemeta configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Metadata  MetadataConfig  `mapstructure:"metadata"`
	Store     StoreConfig     `mapstructure:"store"`
	Log       LogConfig       `mapstructure:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// RateLimit is the number of document requests a client may make per
	// RateWindow; zero disables throttling
	RateLimit  int           `mapstructure:"rate_limit"`
	RateWindow time.Duration `mapstructure:"rate_window"`
}

// MetadataConfig represents metadata rendering configuration
type MetadataConfig struct {
	BaseURL          string `mapstructure:"base_url"`
	SiteName         string `mapstructure:"site_name"`
	TrailingSlash    bool   `mapstructure:"trailing_slash"`
	StandaloneOutput bool   `mapstructure:"standalone_output"`
	SizeAdjust       bool   `mapstructure:"size_adjust"`
	Static           bool   `mapstructure:"static"`
}

// StoreConfig selects the content store backend
type StoreConfig struct {
	Backend   string        `mapstructure:"backend"`
	RedisAddr string        `mapstructure:"redis_addr"`
	RedisDB   int           `mapstructure:"redis_db"`
	DSN       string        `mapstructure:"dsn"`
	TTL       time.Duration `mapstructure:"ttl"`
}

// LogConfig represents logger configuration
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// TelemetryConfig toggles OpenTelemetry instrumentation
type TelemetryConfig struct {
	Enabled  bool    `mapstructure:"enabled"`
	Endpoint string  `mapstructure:"endpoint"`
	Insecure bool    `mapstructure:"insecure"`
	Sampling float64 `mapstructure:"sampling"`
}

// Store backends
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Load loads the configuration. An empty path searches the working directory
// for pagemeta.yaml; a missing file means defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.address", ":3000")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.request_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.rate_limit", 0)
	v.SetDefault("server.rate_window", time.Minute)
	v.SetDefault("metadata.base_url", "http://localhost:3000")
	v.SetDefault("metadata.site_name", "pagemeta")
	v.SetDefault("metadata.trailing_slash", false)
	v.SetDefault("metadata.standalone_output", false)
	v.SetDefault("metadata.size_adjust", false)
	v.SetDefault("metadata.static", false)
	v.SetDefault("store.backend", BackendMemory)
	v.SetDefault("store.redis_addr", "localhost:6379")
	v.SetDefault("store.redis_db", 0)
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.ttl", time.Duration(0))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", "localhost:4318")
	v.SetDefault("telemetry.insecure", false)
	v.SetDefault("telemetry.sampling", 0.05)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("pagemeta")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("PAGEMETA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// BaseURL parses metadata.base_url
func (c *Config) BaseURL() (*url.URL, error) {
	if c.Metadata.BaseURL == "" {
		return nil, nil
	}
	return url.Parse(c.Metadata.BaseURL)
}

func validate(cfg *Config) error {
	switch cfg.Store.Backend {
	case BackendMemory, BackendRedis:
	case BackendSQLite, BackendPostgres:
		if cfg.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for the %s backend", cfg.Store.Backend)
		}
	default:
		return fmt.Errorf("store.backend must be one of memory, redis, sqlite, postgres, got: %s", cfg.Store.Backend)
	}

	if cfg.Metadata.BaseURL != "" {
		u, err := url.Parse(cfg.Metadata.BaseURL)
		if err != nil {
			return fmt.Errorf("metadata.base_url is invalid: %w", err)
		}
		if !u.IsAbs() {
			return fmt.Errorf("metadata.base_url must be absolute, got: %s", cfg.Metadata.BaseURL)
		}
	}

	if cfg.Telemetry.Sampling < 0 || cfg.Telemetry.Sampling > 1 {
		return fmt.Errorf("telemetry.sampling must be between 0 and 1, got: %v", cfg.Telemetry.Sampling)
	}

	if cfg.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit cannot be negative, got: %d", cfg.Server.RateLimit)
	}
	if cfg.Server.RateLimit > 0 && cfg.Server.RateWindow <= 0 {
		return fmt.Errorf("server.rate_window must be positive, got: %s", cfg.Server.RateWindow)
	}

	if cfg.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server.request_timeout must be positive, got: %s", cfg.Server.RequestTimeout)
	}
	return nil
}
