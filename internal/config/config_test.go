package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-pirateborg/internal/config"
	"github.com/KirkDiggler/rpg-pirateborg/internal/errors"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.StoreSQLite, cfg.Store)
	assert.Equal(t, "pirateborg.db", cfg.SQLitePath)
	assert.Equal(t, []string{"localhost:6379"}, cfg.RedisEndpoints)
	assert.Equal(t, 5*time.Minute, cfg.RedisIdleTime)
	assert.Equal(t, "roster.yaml", cfg.RosterPath)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PIRATEBORG_STORE", "redis")
	t.Setenv("PIRATEBORG_REDIS_ENDPOINTS", "a:6379,b:6379")
	t.Setenv("PIRATEBORG_LOG_LEVEL", "DEBUG")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.StoreRedis, cfg.Store)
	assert.Equal(t, []string{"a:6379", "b:6379"}, cfg.RedisEndpoints)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoadParseError(t *testing.T) {
	t.Setenv("PIRATEBORG_REDIS_POOL_SIZE", "lots")

	_, err := config.Load()
	require.Error(t, err)
	assert.True(t, errors.IsInvalidArgument(err))
	assert.Contains(t, err.Error(), "parse env")
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr string
	}{
		{name: "valid memory", mutate: func(c *config.Config) { c.Store = config.StoreMemory }},
		{name: "unknown store", mutate: func(c *config.Config) { c.Store = "postgres" }, wantErr: "Store"},
		{name: "sqlite without path", mutate: func(c *config.Config) { c.SQLitePath = " " }, wantErr: "SQLitePath"},
		{
			name: "redis without endpoints",
			mutate: func(c *config.Config) {
				c.Store = config.StoreRedis
				c.RedisEndpoints = nil
			},
			wantErr: "RedisEndpoints",
		},
		{name: "bad log level", mutate: func(c *config.Config) { c.LogLevel = "loud" }, wantErr: "LogLevel"},
		{name: "no roster", mutate: func(c *config.Config) { c.RosterPath = "" }, wantErr: "RosterPath"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &config.Config{
				Store:            config.StoreSQLite,
				SQLitePath:       "test.db",
				RedisEndpoints:   []string{"localhost:6379"},
				RosterPath:       "roster.yaml",
				LogLevel:         "info",
				MetricsNamespace: "pirateborg",
			}
			tc.mutate(cfg)

			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsInvalidArgument(err))
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
