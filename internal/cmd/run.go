package cmd

import (
	"context"
	"fmt"

	"github.com/harrison/deaccent/internal/config"
	"github.com/harrison/deaccent/internal/filelock"
	"github.com/harrison/deaccent/internal/history"
	"github.com/harrison/deaccent/internal/logger"
	"github.com/harrison/deaccent/internal/models"
	"github.com/harrison/deaccent/internal/runner"
	"github.com/spf13/cobra"
)

// addRunFlags registers the flags shared by the root command and check.
func addRunFlags(cmd *cobra.Command, withDryRun bool) {
	cmd.Flags().String("config", "", "Path to config file (default: .deaccent/config.yaml)")
	if withDryRun {
		cmd.Flags().Bool("dry-run", false, "Report files that would change without writing them")
	}
	cmd.Flags().Bool("atomic", false, "Rewrite files through a temp file and rename")
	cmd.Flags().String("log-level", "", "Log level: trace, debug, info, warn, error")
	cmd.Flags().String("log-dir", "", "Directory for per-run log files")
	cmd.Flags().Bool("verbose", false, "Show debug output (same as --log-level debug)")
	cmd.Flags().StringSlice("ext", nil, "File extension to process (repeatable, replaces the default set)")
	cmd.Flags().StringSlice("exclude", nil, "Directory name to skip (repeatable, replaces the default set)")
	cmd.Flags().Bool("history", false, "Record this run in the history journal")
	cmd.Flags().Bool("wait", false, "Wait for another run to release the state lock instead of failing")
}

// loadRunConfig resolves configuration: file, then environment, then flags.
func loadRunConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg, err = config.LoadConfigFromDir(".")
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	var flags config.FlagOverrides
	if cmd.Flags().Changed("ext") {
		flags.Extensions, _ = cmd.Flags().GetStringSlice("ext")
	}
	if cmd.Flags().Changed("exclude") {
		flags.ExcludeDirs, _ = cmd.Flags().GetStringSlice("exclude")
	}
	if cmd.Flags().Changed("log-level") {
		level, _ := cmd.Flags().GetString("log-level")
		flags.LogLevel = &level
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose && flags.LogLevel == nil {
		level := "debug"
		flags.LogLevel = &level
	}
	if cmd.Flags().Changed("log-dir") {
		logDir, _ := cmd.Flags().GetString("log-dir")
		flags.LogDir = &logDir
	}
	if cmd.Flags().Lookup("dry-run") != nil && cmd.Flags().Changed("dry-run") {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		flags.DryRun = &dryRun
	}
	if cmd.Flags().Changed("atomic") {
		atomic, _ := cmd.Flags().GetBool("atomic")
		flags.AtomicWrite = &atomic
	}
	if cmd.Flags().Changed("history") {
		enabled, _ := cmd.Flags().GetBool("history")
		flags.HistoryEnabled = &enabled
	}

	cfg.MergeWithFlags(flags)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// runCommand implements the default rewrite
func runCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}

	_, err = executeRun(cmd, args, cfg)
	return err
}

// executeRun wires loggers, the state lock and the journal around a Runner.
func executeRun(cmd *cobra.Command, args []string, cfg *config.Config) (*models.RunResult, error) {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	if cfg.UsesStateDir() {
		wait, _ := cmd.Flags().GetBool("wait")
		lock, err := filelock.AcquireStateLock(config.StateDirName, wait)
		if err != nil {
			return nil, err
		}
		defer lock.Unlock()
	}

	console := logger.NewConsoleLogger(cmd.OutOrStdout(), cfg.LogLevel)
	loggers := []runner.Logger{console}

	if cfg.LogDir != "" {
		fileLog, err := logger.NewFileLogger(cfg.LogDir, cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("failed to create file logger: %w", err)
		}
		defer fileLog.Close()
		loggers = append(loggers, fileLog)
	}

	r := runner.New(runner.Options{
		Extensions:  cfg.Extensions,
		ExcludeDirs: cfg.ExcludeDirs,
		DryRun:      cfg.DryRun,
		Atomic:      cfg.AtomicWrite,
	}, &multiLogger{loggers: loggers})

	if cfg.History.Enabled {
		store, err := history.NewStore(cfg.History.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open history: %w", err)
		}
		defer store.Close()
		r.WithRecorder(store)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := r.Run(ctx, root)
	if err != nil {
		return result, err
	}

	if result.Failed > 0 {
		console.LogWarn(fmt.Sprintf("%d file(s) could not be processed", result.Failed))
	}

	return result, nil
}

// multiLogger implements runner.Logger by delegating to multiple loggers
type multiLogger struct {
	loggers []runner.Logger
}

// LogRunStart forwards to all loggers
func (ml *multiLogger) LogRunStart(root string, dryRun bool) {
	for _, l := range ml.loggers {
		l.LogRunStart(root, dryRun)
	}
}

// LogFileResult forwards to all loggers
func (ml *multiLogger) LogFileResult(result models.FileResult) {
	for _, l := range ml.loggers {
		l.LogFileResult(result)
	}
}

// LogSummary forwards to all loggers
func (ml *multiLogger) LogSummary(result *models.RunResult) {
	for _, l := range ml.loggers {
		l.LogSummary(result)
	}
}
