package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRoster = `
actors:
  - id: pc_anne
    name: Anne
    kind: character
    token: tok_anne
    hp: {value: 5, max: 12}
    abilities: {strength: 1, agility: 2, presence: 0, toughness: -1, spirit: 1}
`

func execute(t *testing.T, args ...string) string {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestActionsCommand(t *testing.T) {
	out := execute(t, "actions")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Contains(t, lines, "attack")
	assert.Contains(t, lines, "draw-table")
}

func TestActionShowProcess(t *testing.T) {
	dir := t.TempDir()
	roster := filepath.Join(dir, "roster.yaml")
	require.NoError(t, os.WriteFile(roster, []byte(testRoster), 0o600))

	t.Setenv("PIRATEBORG_STORE", "sqlite")
	t.Setenv("PIRATEBORG_SQLITE_PATH", filepath.Join(dir, "chat.db"))
	t.Setenv("PIRATEBORG_ROSTER", roster)
	t.Setenv("PIRATEBORG_LOG_LEVEL", "error")

	out := execute(t, "action", "reaction")
	require.True(t, strings.HasPrefix(out, "message msg_"), out)
	messageID := strings.Fields(out)[1]
	assert.Contains(t, out, "reaction Reaction")

	listed := execute(t, "show")
	assert.Contains(t, listed, messageID)
	assert.Contains(t, listed, "Game Master")

	processed := execute(t, "process", messageID)
	assert.Equal(t, "processed 0, skipped 1, written false\n", processed)
}
