// Package logger provides console and file logging for deaccent runs.
//
// Loggers filter messages by level (trace, debug, info, warn, error) and
// are safe for concurrent use. Per-file results are printed as glyph lines
// ("✓ path", "✗ path: error") and a run ends with a single summary line.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/harrison/deaccent/internal/models"
	"github.com/mattn/go-isatty"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// Glyphs used for per-file and summary lines
const (
	glyphModified = "✓"
	glyphFailed   = "✗"
	glyphDone     = "✨"
)

// ConsoleLogger writes run progress to a writer.
// Per-file lines and the summary are printed without timestamps; level
// messages are prefixed with [HH:MM:SS] [LEVEL].
// Color output is enabled automatically when writing to a terminal.
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
// Valid levels: trace, debug, info, warn, error (case-insensitive).
// If logLevel is empty or invalid, defaults to "info".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// isTerminal checks if the writer is a terminal that supports colors.
// Honors NO_COLOR through fatih/color.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	if color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// normalizeLogLevel converts a log level string to lowercase and validates it.
// Returns "info" as default for empty or invalid levels.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))
	if IsValidLevel(normalized) {
		return normalized
	}
	return "info"
}

// IsValidLevel reports whether level is one of trace, debug, info, warn, error.
func IsValidLevel(level string) bool {
	switch level {
	case "trace", "debug", "info", "warn", "error":
		return true
	}
	return false
}

// logLevelToInt converts a log level string to its numeric value.
func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// shouldLog checks if a message at the given level should be logged.
func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

// LogTrace logs a trace-level message (most verbose).
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil || !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	ts := timestamp()
	var formatted string
	if cl.colorOutput {
		formatted = fmt.Sprintf("[%s] [%s] %s\n", ts, levelColor(level).Sprint(level), message)
	} else {
		formatted = fmt.Sprintf("[%s] [%s] %s\n", ts, level, message)
	}

	cl.write(formatted)
}

func levelColor(level string) *color.Color {
	switch level {
	case "TRACE":
		return color.New(color.FgHiBlack)
	case "DEBUG":
		return color.New(color.FgCyan)
	case "WARN":
		return color.New(color.FgYellow)
	case "ERROR":
		return color.New(color.FgRed)
	default:
		return color.New(color.FgBlue)
	}
}

// LogRunStart logs the root being processed at DEBUG level.
func (cl *ConsoleLogger) LogRunStart(root string, dryRun bool) {
	if dryRun {
		cl.LogDebug(fmt.Sprintf("Scanning %s (dry run, no file will be written)", root))
		return
	}
	cl.LogDebug(fmt.Sprintf("Scanning %s", root))
}

// LogFileResult logs the outcome of a single file.
// Modified files print "✓ <path>" at INFO, failures print "✗ <path>: <error>"
// at ERROR, unchanged files are only mentioned at TRACE.
func (cl *ConsoleLogger) LogFileResult(result models.FileResult) {
	if cl.writer == nil {
		return
	}

	switch result.Status {
	case models.StatusModified, models.StatusWouldModify:
		if !cl.shouldLog("info") {
			return
		}
		line := formatChangedLine(result)
		if cl.colorOutput {
			line = color.New(color.FgGreen).Sprint(glyphModified) + strings.TrimPrefix(line, glyphModified)
		}
		cl.write(line + "\n")
	case models.StatusFailed:
		if !cl.shouldLog("error") {
			return
		}
		line := formatFailedLine(result)
		if cl.colorOutput {
			line = color.New(color.FgRed).Sprint(glyphFailed) + strings.TrimPrefix(line, glyphFailed)
		}
		cl.write(line + "\n")
	default:
		cl.LogTrace(fmt.Sprintf("unchanged %s", result.Path))
	}
}

// LogSummary logs the final count of modified files at INFO level.
// Format: "\n✨ Done! <n> files modified"
func (cl *ConsoleLogger) LogSummary(result *models.RunResult) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	summary := formatSummary(result)
	if cl.colorOutput {
		summary = color.New(color.Bold).Sprint(summary)
	}

	cl.write("\n" + summary + "\n")
	cl.LogDebug(fmt.Sprintf("%d files scanned, %d characters replaced in %s",
		result.Scanned, result.Replacements, formatDuration(result.Duration)))
}

func (cl *ConsoleLogger) write(s string) {
	cl.mutex.Lock()
	defer cl.mutex.Unlock()
	cl.writer.Write([]byte(s))
}

// formatChangedLine renders "✓ path" with the dry-run marker when needed.
func formatChangedLine(result models.FileResult) string {
	if result.Status == models.StatusWouldModify {
		return fmt.Sprintf("%s %s (dry run)", glyphModified, result.Path)
	}
	return fmt.Sprintf("%s %s", glyphModified, result.Path)
}

// formatFailedLine renders "✗ path: error".
func formatFailedLine(result models.FileResult) string {
	return fmt.Sprintf("%s %s: %v", glyphFailed, result.Path, result.Error)
}

// formatSummary renders the single summary line of a run.
func formatSummary(result *models.RunResult) string {
	verb := "modified"
	if result.DryRun {
		verb = "would be modified"
	}
	summary := fmt.Sprintf("%s Done! %d %s %s", glyphDone, result.Modified, pluralFiles(result.Modified), verb)
	if result.Failed > 0 {
		summary += fmt.Sprintf(", %d failed", result.Failed)
	}
	return summary
}

func pluralFiles(n int) string {
	if n == 1 {
		return "file"
	}
	return "files"
}

// timestamp returns the current time formatted as "15:04:05" (HH:MM:SS).
func timestamp() string {
	return time.Now().Format("15:04:05")
}

// formatDuration converts a time.Duration to a human-readable string.
// Examples: "120ms", "5s", "1m30s"
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		minutes := d / time.Minute
		seconds := (d % time.Minute) / time.Second
		if seconds == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	case d >= time.Second:
		return fmt.Sprintf("%ds", int64(d.Seconds()))
	default:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
}

// NoOpLogger discards all log messages.
// Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// NewNoOpLogger creates a NoOpLogger instance.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

// LogRunStart is a no-op implementation.
func (n *NoOpLogger) LogRunStart(root string, dryRun bool) {}

// LogFileResult is a no-op implementation.
func (n *NoOpLogger) LogFileResult(result models.FileResult) {}

// LogSummary is a no-op implementation.
func (n *NoOpLogger) LogSummary(result *models.RunResult) {}
