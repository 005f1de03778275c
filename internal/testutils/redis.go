// Package testutils provides shared test helpers: an in-memory redis, a
// temporary sqlite file and a scripted dice roller.
package testutils

import (
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-pirateborg/internal/redis"
)

// CreateTestRedisClient creates an in-memory Redis client for testing
func CreateTestRedisClient(t *testing.T) (redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	client, err := redis.NewClient(mr.Addr(), nil)
	require.NoError(t, err, "failed to create redis client")
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

// TempSQLitePath returns a database path inside the test's temp dir
func TempSQLitePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "pirateborg.db")
}
