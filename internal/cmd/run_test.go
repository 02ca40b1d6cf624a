package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_DefaultsRewriteCurrentDirectory(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"README.md":              `"café" déjà vu`,
		"src/app.jsx":            "const s = 'Élève';",
		"notes.txt":              "été",
		"node_modules/x/a.js":    "ça",
		"project/dist/bundle.js": "très",
	})

	output, err := executeCommand(t, dir)
	require.NoError(t, err)

	assert.Equal(t, `"cafe" deja vu`, readFile(t, filepath.Join(dir, "README.md")))
	assert.Equal(t, "const s = 'Eleve';", readFile(t, filepath.Join(dir, "src/app.jsx")))
	assert.Equal(t, "été", readFile(t, filepath.Join(dir, "notes.txt")))
	assert.Equal(t, "ça", readFile(t, filepath.Join(dir, "node_modules/x/a.js")))
	assert.Equal(t, "très", readFile(t, filepath.Join(dir, "project/dist/bundle.js")))

	assert.Contains(t, output, "✓ README.md")
	assert.Contains(t, output, "✓ "+filepath.Join("src", "app.jsx"))
	assert.Contains(t, output, "✨ Done! 2 files modified")

	_, err = os.Stat(filepath.Join(dir, ".deaccent"))
	assert.True(t, os.IsNotExist(err), "no state directory without log dir or history")
}

func TestRun_ExplicitPath(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "client")
	writeTree(t, target, map[string]string{"doc.md": "à"})

	output, err := executeCommand(t, dir, target)
	require.NoError(t, err)
	assert.Equal(t, "a", readFile(t, filepath.Join(target, "doc.md")))
	assert.Contains(t, output, "✨ Done! 1 file modified")
}

func TestRun_DryRunLeavesFiles(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"doc.md": "ôté"})

	output, err := executeCommand(t, dir, "--dry-run")
	require.NoError(t, err)
	assert.Equal(t, "ôté", readFile(t, filepath.Join(dir, "doc.md")))
	assert.Contains(t, output, "✓ doc.md (dry run)")
	assert.Contains(t, output, "would be modified")
}

func TestRun_ExtAndExcludeFlags(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"a.txt":        "é",
		"a.md":         "é",
		"vendor/b.txt": "é",
		"dist/c.txt":   "é",
	})

	_, err := executeCommand(t, dir, "--ext", "txt", "--exclude", "vendor")
	require.NoError(t, err)

	assert.Equal(t, "e", readFile(t, filepath.Join(dir, "a.txt")))
	assert.Equal(t, "é", readFile(t, filepath.Join(dir, "a.md")))
	assert.Equal(t, "é", readFile(t, filepath.Join(dir, "vendor/b.txt")))
	// --exclude replaces the default set
	assert.Equal(t, "e", readFile(t, filepath.Join(dir, "dist/c.txt")))
}

func TestRun_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		".deaccent/config.yaml": "extensions: [\".md\"]\ndry_run: true\n",
		"a.md":                  "é",
		"b.js":                  "é",
	})

	output, err := executeCommand(t, dir)
	require.NoError(t, err)
	assert.Equal(t, "é", readFile(t, filepath.Join(dir, "a.md")))
	assert.Equal(t, "é", readFile(t, filepath.Join(dir, "b.js")))
	assert.Contains(t, output, "✓ a.md (dry run)")
	assert.NotContains(t, output, "b.js")
}

func TestRun_FlagOverridesConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"custom.yaml": "dry_run: true\n",
		"a.md":        "é",
	})

	_, err := executeCommand(t, dir, "--config", filepath.Join(dir, "custom.yaml"), "--dry-run=false")
	require.NoError(t, err)
	assert.Equal(t, "e", readFile(t, filepath.Join(dir, "a.md")))
}

func TestRun_EnvOverride(t *testing.T) {
	t.Setenv("DEACCENT_DRY_RUN", "true")
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.md": "é"})

	_, err := executeCommand(t, dir)
	require.NoError(t, err)
	assert.Equal(t, "é", readFile(t, filepath.Join(dir, "a.md")))
}

func TestRun_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		".deaccent/.env": "DEACCENT_EXTENSIONS=.txt\n",
		"a.txt":          "é",
		"a.md":           "é",
	})

	_, err := executeCommand(t, dir)
	require.NoError(t, err)
	assert.Equal(t, "e", readFile(t, filepath.Join(dir, "a.txt")))
	assert.Equal(t, "é", readFile(t, filepath.Join(dir, "a.md")))
}

func TestRun_InvalidLogLevel(t *testing.T) {
	_, err := executeCommand(t, t.TempDir(), "--log-level", "loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestRun_MissingRoot(t *testing.T) {
	dir := t.TempDir()
	_, err := executeCommand(t, dir, filepath.Join(dir, "missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "walk")
}

func TestRun_PerFileFailureIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"good.md": "é"})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.md"), []byte{0xff, 0xfe, 'x'}, 0644))

	output, err := executeCommand(t, dir)
	require.NoError(t, err)
	assert.Equal(t, "e", readFile(t, filepath.Join(dir, "good.md")))
	assert.Contains(t, output, "✗ bad.md")
	assert.Contains(t, output, "1 failed")
	assert.Contains(t, output, "[WARN] 1 file(s) could not be processed")
}

func TestRun_LogDirWritesRunLog(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.md": "é"})
	logDir := filepath.Join(dir, "logs")

	_, err := executeCommand(t, dir, "--log-dir", logDir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(logDir, "latest.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "a.md")
	assert.Contains(t, string(data), "RUN SUMMARY")

	_, err = os.Stat(filepath.Join(dir, ".deaccent", "run.lock"))
	assert.NoError(t, err, "state lock file should exist")
}

func TestRun_HistoryThenListRuns(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.md": "éé", "b.js": "ç"})

	_, err := executeCommand(t, dir, "--history")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, ".deaccent", "history.db"))
	require.NoError(t, err)

	output, err := executeCommand(t, dir, "history")
	require.NoError(t, err)
	assert.Contains(t, output, "Recent runs")
	assert.Contains(t, output, "scanned 2")
	assert.Contains(t, output, "3 characters replaced")
}
