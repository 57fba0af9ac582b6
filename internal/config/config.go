package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Server   ServerConfig
	Routing  RoutingConfig
	Database DatabaseConfig
	Errors   ErrorsConfig
	Log      LogConfig
	Metrics  MetricsConfig
	Static   StaticConfig
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr            string
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// RoutingConfig selects where the dispatched path is taken from: "path"
// (the URL path) or "query" (the raw query string).
type RoutingConfig struct {
	Source string
}

// DatabaseConfig holds store settings. Host, Name, Username and Password
// are used by mysql; Path by sqlite3.
type DatabaseConfig struct {
	Driver       string
	Host         string
	Name         string
	Username     string
	Password     string
	Path         string
	MaxOpenConns int `mapstructure:"max_open_conns"`
}

// ErrorsConfig controls how unhandled errors are reported.
type ErrorsConfig struct {
	Show   bool
	LogDir string `mapstructure:"log_dir"`
}

// LogConfig holds structured logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig holds prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// StaticConfig holds the directory served under /static/. Empty disables it.
type StaticConfig struct {
	Dir string
}

// Load reads configuration from .env, file and env. Env var overrides use
// prefix USERMANAGER_, e.g. USERMANAGER_DATABASE_DRIVER.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("routing.source", "path")
	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.name", "db_usermanager")
	v.SetDefault("database.username", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.path", "usermanager.db")
	v.SetDefault("database.max_open_conns", 1)
	v.SetDefault("errors.show", false)
	v.SetDefault("errors.log_dir", "logs")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("static.dir", "")

	v.SetConfigType("yaml")

	cfgPath := os.Getenv("USERMANAGER_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("USERMANAGER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgPath != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	switch c.Routing.Source {
	case "path", "query":
	default:
		return fmt.Errorf("routing.source: unknown value %q (want path or query)", c.Routing.Source)
	}
	switch c.Database.Driver {
	case "mysql", "sqlite3":
	default:
		return fmt.Errorf("database.driver: unknown value %q (want mysql or sqlite3)", c.Database.Driver)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format: unknown value %q (want text or json)", c.Log.Format)
	}
	return nil
}
