package models

import "time"

// FileStatus describes what happened to a single file during a run.
type FileStatus string

// File status constants
const (
	StatusModified    FileStatus = "modified"     // Content changed and was written back
	StatusUnchanged   FileStatus = "unchanged"    // No accented characters, file left alone
	StatusWouldModify FileStatus = "would_modify" // Dry-run: content would change
	StatusFailed      FileStatus = "failed"       // Read, decode or write failure
)

// FileResult represents the outcome of processing a single file
type FileResult struct {
	Path         string     // Path as visited by the walker
	Status       FileStatus // Outcome of processing
	Replacements int        // Number of characters substituted
	Error        error      // Set when Status is StatusFailed
}

// Changed reports whether the file's content differs after substitution,
// whether or not it was written.
func (r FileResult) Changed() bool {
	return r.Status == StatusModified || r.Status == StatusWouldModify
}

// RunResult accumulates the outcome of a whole run
type RunResult struct {
	RunID        string        // Unique identifier of the run
	Root         string        // Directory the walk started from
	DryRun       bool          // True when no file was written
	StartedAt    time.Time     // Wall-clock start
	Duration     time.Duration // Total run time
	Scanned      int           // Files that passed the filter
	Modified     int           // Files whose content changed (written, or would be in dry-run)
	Failed       int           // Files that could not be processed
	Replacements int           // Total characters substituted
	Files        []FileResult  // Changed and failed files, in visit order
}

// Add folds a file result into the run totals.
// Unchanged files are counted but not retained.
func (r *RunResult) Add(fr FileResult) {
	r.Scanned++
	switch {
	case fr.Changed():
		r.Modified++
		r.Replacements += fr.Replacements
		r.Files = append(r.Files, fr)
	case fr.Status == StatusFailed:
		r.Failed++
		r.Files = append(r.Files, fr)
	}
}

// FailedFiles returns the results of files that could not be processed.
func (r *RunResult) FailedFiles() []FileResult {
	var failed []FileResult
	for _, fr := range r.Files {
		if fr.Status == StatusFailed {
			failed = append(failed, fr)
		}
	}
	return failed
}
