package logger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harrison/deaccent/internal/models"
)

func readRunLog(t *testing.T, fl *FileLogger) string {
	t.Helper()
	data, err := os.ReadFile(fl.RunLogPath())
	if err != nil {
		t.Fatalf("Failed to read run log: %v", err)
	}
	return string(data)
}

// TestFileLoggerCreatesDirectoryAndRunLog verifies the log directory, the
// timestamped run log and the latest.log symlink.
func TestFileLoggerCreatesDirectoryAndRunLog(t *testing.T) {
	logDir := filepath.Join(t.TempDir(), ".deaccent", "logs")

	logger, err := NewFileLogger(logDir, "info")
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	defer logger.Close()

	base := filepath.Base(logger.RunLogPath())
	if !strings.HasPrefix(base, "run-") || !strings.HasSuffix(base, ".log") {
		t.Errorf("Expected run-YYYYMMDD-HHMMSS.log, got %s", base)
	}

	target, err := os.Readlink(filepath.Join(logDir, "latest.log"))
	if err != nil {
		t.Fatalf("Expected latest.log symlink: %v", err)
	}
	if target != base {
		t.Errorf("latest.log points to %s, want %s", target, base)
	}

	if !strings.Contains(readRunLog(t, logger), "=== deaccent run log ===") {
		t.Error("Expected header in run log")
	}
}

// TestFileLoggerReplacesLatestSymlink verifies a second run repoints latest.log
func TestFileLoggerReplacesLatestSymlink(t *testing.T) {
	logDir := t.TempDir()

	if err := os.Symlink("run-old.log", filepath.Join(logDir, "latest.log")); err != nil {
		t.Fatalf("Failed to create stale symlink: %v", err)
	}

	logger, err := NewFileLogger(logDir, "info")
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	defer logger.Close()

	target, err := os.Readlink(filepath.Join(logDir, "latest.log"))
	if err != nil {
		t.Fatalf("Readlink error = %v", err)
	}
	if target == "run-old.log" {
		t.Error("latest.log still points at the stale run")
	}
}

func TestFileLoggerRecordsRun(t *testing.T) {
	logger, err := NewFileLogger(t.TempDir(), "debug")
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}

	logger.LogRunStart("/srv/app", false)
	logger.LogFileResult(models.FileResult{Path: "a.md", Status: models.StatusModified, Replacements: 3})
	logger.LogFileResult(models.FileResult{Path: "b.md", Status: models.StatusUnchanged})
	logger.LogFileResult(models.FileResult{Path: "c.md", Status: models.StatusFailed, Error: errors.New("read: denied")})
	logger.LogSummary(&models.RunResult{RunID: "run-1", Scanned: 3, Modified: 1, Failed: 1, Replacements: 3})

	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	content := readRunLog(t, logger)
	for _, want := range []string{
		"[INFO] Root: /srv/app (mode: write)",
		"[INFO] ✓ a.md (3 replacements)",
		"[DEBUG] unchanged b.md",
		"[ERROR] ✗ c.md: read: denied",
		"=== RUN SUMMARY ===",
		"Run ID:       run-1",
		"✨ Done! 1 file modified, 1 failed",
		"Finished at:",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("Expected run log to contain %q, got:\n%s", want, content)
		}
	}
}

func TestFileLoggerLevelFiltering(t *testing.T) {
	logger, err := NewFileLogger(t.TempDir(), "info")
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	defer logger.Close()

	logger.LogFileResult(models.FileResult{Path: "quiet.md", Status: models.StatusUnchanged})

	if strings.Contains(readRunLog(t, logger), "quiet.md") {
		t.Error("Unchanged files must not be logged at info level")
	}
}

func TestFileLoggerCloseTwice(t *testing.T) {
	logger, err := NewFileLogger(t.TempDir(), "info")
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}

	if err := logger.Close(); err != nil {
		t.Fatalf("first Close() error = %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}

	// Writes after close are dropped
	logger.LogInfo("late")
}
