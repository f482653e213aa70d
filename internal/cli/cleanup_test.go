package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLedgerFile(t *testing.T, dir string, records map[string]any) {
	t.Helper()
	path := filepath.Join(dir, ".github", "data", "vote_tracker.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	data, err := json.Marshal(records)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))
}

func runCleanupCmd(t *testing.T, format string, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: format, ConfigPath: "mealbot.cue"}
	cmd := NewCleanupCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	return buf, cmd.Execute()
}

func TestCleanupRemovesStaleRecords(t *testing.T) {
	tmpDir := t.TempDir()
	old := time.Now().UTC().AddDate(0, 0, -120).Format(time.RFC3339)
	fresh := time.Now().UTC().Format(time.RFC3339)
	writeLedgerFile(t, tmpDir, map[string]any{
		"stale-build": map[string]any{
			"first_vote_at": old,
			"last_vote_at":  old,
			"voted_recipes": []string{"paella"},
			"total_votes":   1,
		},
		"fresh-build": map[string]any{
			"first_vote_at": fresh,
			"last_vote_at":  fresh,
			"voted_recipes": []string{"paella"},
			"total_votes":   1,
		},
	})

	buf, err := runCleanupCmd(t, "text", "--dir", tmpDir)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "removed 1 stale vote records")
	assert.Contains(t, buf.String(), "retention 90 days")

	data, err := os.ReadFile(filepath.Join(tmpDir, ".github", "data", "vote_tracker.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "fresh-build")
	assert.NotContains(t, string(data), "stale-build")
}

func TestCleanupDaysFlagOverridesConfig(t *testing.T) {
	tmpDir := t.TempDir()
	recent := time.Now().UTC().AddDate(0, 0, -10).Format(time.RFC3339)
	writeLedgerFile(t, tmpDir, map[string]any{
		"some-build": map[string]any{
			"first_vote_at": recent,
			"last_vote_at":  recent,
			"voted_recipes": []string{"paella"},
			"total_votes":   1,
		},
	})

	buf, err := runCleanupCmd(t, "text", "--dir", tmpDir, "--days", "5")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "removed 1 stale vote records")
	assert.Contains(t, buf.String(), "retention 5 days")
}

func TestCleanupEmptyLedger(t *testing.T) {
	tmpDir := t.TempDir()

	buf, err := runCleanupCmd(t, "text", "--dir", tmpDir)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "removed 0 stale vote records")
}

func TestCleanupJSONOutput(t *testing.T) {
	tmpDir := t.TempDir()

	buf, err := runCleanupCmd(t, "json", "--dir", tmpDir)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	payload, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"retention_days":90`)
}
