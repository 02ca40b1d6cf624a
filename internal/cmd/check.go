package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// ErrPendingChanges is returned by check when files still contain accents.
type ErrPendingChanges struct {
	Modified    int
	Failed      int
	FailedPaths []string
}

func (e *ErrPendingChanges) Error() string {
	if e.Failed > 0 {
		return fmt.Sprintf("%d file(s) contain accented characters, %d file(s) could not be checked: %s",
			e.Modified, e.Failed, strings.Join(e.FailedPaths, ", "))
	}
	return fmt.Sprintf("%d file(s) contain accented characters", e.Modified)
}

// NewCheckCommand creates the 'deaccent check' command
func NewCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [path]",
		Short: "Report files that still contain accented characters",
		Long: `Scan the tree exactly like a normal run but never write any file.
Exits with a non-zero status when at least one file would be modified or
could not be checked, which makes it usable as a CI gate.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCheck,
	}

	addRunFlags(cmd, false)

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}
	cfg.DryRun = true
	cfg.AtomicWrite = false

	result, err := executeRun(cmd, args, cfg)
	if err != nil {
		return err
	}

	if result.Modified > 0 || result.Failed > 0 {
		pending := &ErrPendingChanges{Modified: result.Modified, Failed: result.Failed}
		for _, fr := range result.FailedFiles() {
			pending.FailedPaths = append(pending.FailedPaths, fr.Path)
		}
		return pending
	}
	return nil
}
