package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for deaccent.
// Invoked without a subcommand it rewrites the tree rooted at the given
// path (default: current directory).
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deaccent [path]",
		Short: "Strip French accents from source and Markdown files",
		Long: `deaccent walks a directory tree and rewrites accented Latin characters
(é, è, à, ç, ...) to their plain ASCII equivalents in .js, .jsx and .md files.

Directories named node_modules, .git, dist, build and uploads are never
entered. Files are only written when their content changes; a file that
cannot be read, decoded as UTF-8 or written is reported and skipped.

Configuration is loaded from .deaccent/config.yaml if present, then from
DEACCENT_* environment variables. CLI flags override both.

Examples:
  deaccent                      # Rewrite the current directory
  deaccent ./client             # Rewrite another tree
  deaccent --dry-run            # Show what would change
  deaccent --ext .md --ext .mdx # Only Markdown files
  deaccent check                # Exit 1 if any file still has accents
  deaccent history              # List journaled runs`,
		Version: Version,
		Args:    cobra.MaximumNArgs(1),
		RunE:    runCommand,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
		// main prints the returned error
		SilenceErrors: true,
	}

	addRunFlags(cmd, true)

	cmd.AddCommand(NewCheckCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
