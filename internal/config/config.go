// Package config loads process configuration from the environment.
package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/KirkDiggler/rpg-pirateborg/internal/errors"
)

// Chat message store backends
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// Config is the process configuration shared by every command
type Config struct {
	Store string `env:"PIRATEBORG_STORE" envDefault:"sqlite"`

	SQLitePath string `env:"PIRATEBORG_SQLITE_PATH" envDefault:"pirateborg.db"`

	RedisEndpoints []string      `env:"PIRATEBORG_REDIS_ENDPOINTS" envSeparator:"," envDefault:"localhost:6379"`
	RedisTLS       bool          `env:"PIRATEBORG_REDIS_TLS"`
	RedisPoolSize  int           `env:"PIRATEBORG_REDIS_POOL_SIZE" envDefault:"10"`
	RedisIdleTime  time.Duration `env:"PIRATEBORG_REDIS_IDLE_TIME" envDefault:"5m"`

	// RosterPath is the YAML actor roster; hp changes are written back to it
	RosterPath string `env:"PIRATEBORG_ROSTER" envDefault:"roster.yaml"`

	LogLevel         string `env:"PIRATEBORG_LOG_LEVEL" envDefault:"info"`
	MetricsNamespace string `env:"PIRATEBORG_METRICS_NAMESPACE" envDefault:"pirateborg"`
}

// Load parses the environment and validates the result
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "parse env")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the store selection and the settings it needs
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	switch c.Store {
	case StoreMemory:
	case StoreSQLite:
		errors.ValidateRequired("SQLitePath", c.SQLitePath, vb)
	case StoreRedis:
		if len(c.RedisEndpoints) == 0 {
			vb.RequiredField("RedisEndpoints")
		}
	default:
		vb.InvalidField("Store", "must be one of memory, redis, sqlite")
	}

	errors.ValidateRequired("RosterPath", c.RosterPath, vb)
	errors.ValidateRequired("MetricsNamespace", c.MetricsNamespace, vb)
	if _, ok := parseLevel(c.LogLevel); !ok {
		vb.InvalidField("LogLevel", "must be one of debug, info, warn, error")
	}
	return vb.Build()
}

// SlogLevel returns the configured log level
func (c *Config) SlogLevel() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	return level
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
