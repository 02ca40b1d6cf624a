package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/harrison/deaccent/internal/config"
	"github.com/harrison/deaccent/internal/history"
	"github.com/harrison/deaccent/internal/models"
	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the 'deaccent history' command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List journaled runs",
		Long: `Without arguments, list the most recent runs recorded in the history
journal (newest first). With a run id (or a unique prefix of one), list the
files that run modified or failed on.

Runs are only journaled when history is enabled (--history, history.enabled
in the config file, or DEACCENT_HISTORY=true).`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistory,
	}

	cmd.Flags().String("config", "", "Path to config file (default: .deaccent/config.yaml)")
	cmd.Flags().String("db", "", "Path to the history database (overrides config)")
	cmd.Flags().Int("limit", 20, "Maximum number of runs to list (0 = all)")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	output := cmd.OutOrStdout()

	dbPath, err := resolveHistoryDB(cmd)
	if err != nil {
		return err
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Fprintf(output, "No runs recorded yet\n")
		fmt.Fprintf(output, "Database path: %s\n", dbPath)
		return nil
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()

	ctx := cmd.Context()

	if len(args) == 1 {
		files, err := store.GetRunFiles(ctx, args[0])
		if err != nil {
			return err
		}
		displayRunFiles(output, args[0], files)
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintf(output, "No runs recorded yet\n")
		return nil
	}
	displayRuns(output, runs)
	return nil
}

// resolveHistoryDB picks the database path: --db, then config file and environment.
func resolveHistoryDB(cmd *cobra.Command) (string, error) {
	if cmd.Flags().Changed("db") {
		dbPath, _ := cmd.Flags().GetString("db")
		return dbPath, nil
	}

	configPath, _ := cmd.Flags().GetString("config")
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
	} else {
		cfg, err = config.LoadConfigFromDir(".")
	}
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return "", err
	}
	return cfg.History.DBPath, nil
}

func displayRuns(w io.Writer, runs []history.Run) {
	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	cyan.Fprintf(w, "=== Recent runs ===\n\n")
	for _, r := range runs {
		mode := ""
		if r.DryRun {
			mode = " (dry run)"
		}
		fmt.Fprintf(w, "%s  %s  %s%s\n", shortID(r.ID), r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Root, mode)
		fmt.Fprintf(w, "    scanned %d, modified ", r.Scanned)
		green.Fprintf(w, "%d", r.Modified)
		fmt.Fprintf(w, ", failed ")
		if r.Failed > 0 {
			red.Fprintf(w, "%d", r.Failed)
		} else {
			fmt.Fprintf(w, "0")
		}
		fmt.Fprintf(w, ", %d characters replaced\n", r.Replacements)
	}
}

func displayRunFiles(w io.Writer, runID string, files []history.FileEntry) {
	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	cyan.Fprintf(w, "=== Files for run %s ===\n\n", runID)
	if len(files) == 0 {
		fmt.Fprintf(w, "No files were modified\n")
		return
	}
	for _, f := range files {
		switch f.Status {
		case models.StatusFailed:
			red.Fprintf(w, "✗ ")
			fmt.Fprintf(w, "%s: %s\n", f.Path, f.ErrorMessage)
		default:
			green.Fprintf(w, "✓ ")
			fmt.Fprintf(w, "%s (%d replacements)\n", f.Path, f.Replacements)
		}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
