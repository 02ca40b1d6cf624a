package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/harrison/deaccent/internal/models"
)

// FileLogger writes a timestamped per-run log file into a log directory and
// keeps a latest.log symlink pointing at the most recent run.
type FileLogger struct {
	logDir   string
	runLog   *os.File
	runFile  string
	logLevel string
	mu       sync.Mutex
}

// NewFileLogger creates a FileLogger writing to logDir at the given level.
// The directory is created if it doesn't exist.
func NewFileLogger(logDir string, logLevel string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// run-YYYYMMDD-HHMMSS.log
	runFile := filepath.Join(logDir, fmt.Sprintf("run-%s.log", time.Now().Format("20060102-150405")))

	file, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log file: %w", err)
	}

	symlinkPath := filepath.Join(logDir, "latest.log")
	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to remove old symlink: %w", err)
		}
	}
	if err := os.Symlink(filepath.Base(runFile), symlinkPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create symlink: %w", err)
	}

	fl := &FileLogger{
		logDir:   logDir,
		runLog:   file,
		runFile:  runFile,
		logLevel: normalizeLogLevel(logLevel),
	}

	fl.writeRunLog("=== deaccent run log ===\n")
	fl.writeRunLog(fmt.Sprintf("Started at: %s\n\n", time.Now().Format(time.RFC3339)))

	return fl, nil
}

// RunLogPath returns the path of the current run log file.
func (fl *FileLogger) RunLogPath() string {
	return fl.runFile
}

func (fl *FileLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(fl.logLevel)
}

// LogDebug logs a debug-level message.
func (fl *FileLogger) LogDebug(message string) {
	fl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (fl *FileLogger) LogInfo(message string) {
	fl.logWithLevel("INFO", message)
}

// LogError logs an error-level message.
func (fl *FileLogger) LogError(message string) {
	fl.logWithLevel("ERROR", message)
}

func (fl *FileLogger) logWithLevel(level string, message string) {
	if !fl.shouldLog(strings.ToLower(level)) {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] [%s] %s\n", timestamp(), level, message))
}

// LogRunStart records the root and mode of the run at INFO level.
func (fl *FileLogger) LogRunStart(root string, dryRun bool) {
	mode := "write"
	if dryRun {
		mode = "dry-run"
	}
	fl.LogInfo(fmt.Sprintf("Root: %s (mode: %s)", root, mode))
}

// LogFileResult records the outcome of a single file.
// Unchanged files are recorded at DEBUG level only.
func (fl *FileLogger) LogFileResult(result models.FileResult) {
	switch result.Status {
	case models.StatusModified, models.StatusWouldModify:
		fl.LogInfo(fmt.Sprintf("%s (%d replacements)", formatChangedLine(result), result.Replacements))
	case models.StatusFailed:
		fl.LogError(formatFailedLine(result))
	default:
		fl.LogDebug(fmt.Sprintf("unchanged %s", result.Path))
	}
}

// LogSummary records the run totals at INFO level.
func (fl *FileLogger) LogSummary(result *models.RunResult) {
	if !fl.shouldLog("info") {
		return
	}

	ts := timestamp()
	message := fmt.Sprintf(
		"\n[%s] === RUN SUMMARY ===\n"+
			"[%s] Run ID:       %s\n"+
			"[%s] Scanned:      %d\n"+
			"[%s] Modified:     %d\n"+
			"[%s] Failed:       %d\n"+
			"[%s] Replacements: %d\n"+
			"[%s] Total time:   %.1fs\n"+
			"[%s] %s\n",
		ts,
		ts, result.RunID,
		ts, result.Scanned,
		ts, result.Modified,
		ts, result.Failed,
		ts, result.Replacements,
		ts, result.Duration.Seconds(),
		ts, formatSummary(result),
	)

	fl.writeRunLog(message)
}

// Close closes the run log file.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog == nil {
		return nil
	}
	fl.runLog.WriteString(fmt.Sprintf("\nFinished at: %s\n", time.Now().Format(time.RFC3339)))
	err := fl.runLog.Close()
	fl.runLog = nil
	return err
}

func (fl *FileLogger) writeRunLog(message string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		fl.runLog.WriteString(message)
		fl.runLog.Sync()
	}
}
