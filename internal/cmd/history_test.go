package cmd

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/harrison/deaccent/internal/history"
	"github.com/harrison/deaccent/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedHistory(t *testing.T, dbPath string, runs ...*models.RunResult) {
	t.Helper()
	store, err := history.NewStore(dbPath)
	require.NoError(t, err)
	defer store.Close()
	for _, r := range runs {
		require.NoError(t, store.RecordRun(context.Background(), r))
	}
}

func TestHistory_NoDatabase(t *testing.T) {
	dir := t.TempDir()

	output, err := executeCommand(t, dir, "history")
	require.NoError(t, err)
	assert.Contains(t, output, "No runs recorded yet")
	assert.Contains(t, output, filepath.Join(".deaccent", "history.db"))
}

func TestHistory_ListsNewestFirstWithLimit(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "h.db")
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	seedHistory(t, dbPath,
		&models.RunResult{RunID: "11111111-aaaa", Root: "old-root", StartedAt: base, Scanned: 1},
		&models.RunResult{RunID: "22222222-bbbb", Root: "new-root", StartedAt: base.Add(time.Hour), Scanned: 4, Modified: 2, Replacements: 5},
	)

	output, err := executeCommand(t, dir, "history", "--db", dbPath, "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, output, "22222222")
	assert.Contains(t, output, "new-root")
	assert.Contains(t, output, "5 characters replaced")
	assert.NotContains(t, output, "old-root")
}

func TestHistory_RunFiles(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "h.db")
	run := &models.RunResult{RunID: "abcdef12-3456", Root: ".", StartedAt: time.Now()}
	run.Add(models.FileResult{Path: "a.md", Status: models.StatusModified, Replacements: 2})
	run.Add(models.FileResult{Path: "b.js", Status: models.StatusFailed, Error: assert.AnError})
	seedHistory(t, dbPath, run)

	output, err := executeCommand(t, dir, "history", "--db", dbPath, "abcdef")
	require.NoError(t, err)
	assert.Contains(t, output, "✓ a.md (2 replacements)")
	assert.Contains(t, output, "✗ b.js: "+assert.AnError.Error())
}

func TestHistory_UnknownRun(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "h.db")
	seedHistory(t, dbPath, &models.RunResult{RunID: "abc", Root: ".", StartedAt: time.Now()})

	_, err := executeCommand(t, dir, "history", "--db", dbPath, "zzz")
	require.ErrorIs(t, err, history.ErrRunNotFound)
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "abc", shortID("abc"))
	assert.Equal(t, "12345678", shortID("1234567890"))
}
