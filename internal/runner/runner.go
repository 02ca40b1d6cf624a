// Package runner drives a deaccent run: walk the tree, filter paths, rewrite
// each accepted file and report the totals.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harrison/deaccent/internal/fileutil"
	"github.com/harrison/deaccent/internal/models"
	"github.com/harrison/deaccent/internal/rewriter"
)

// Logger receives run progress.
type Logger interface {
	LogRunStart(root string, dryRun bool)
	LogFileResult(result models.FileResult)
	LogSummary(result *models.RunResult)
}

// Processor rewrites a single file.
type Processor interface {
	Process(path string) models.FileResult
}

// Recorder persists a finished run.
type Recorder interface {
	RecordRun(ctx context.Context, run *models.RunResult) error
}

// Options configures a Runner.
type Options struct {
	Extensions  []string
	ExcludeDirs []string
	DryRun      bool
	Atomic      bool
}

// Runner walks a tree and processes files one at a time.
type Runner struct {
	filter    *fileutil.Filter
	processor Processor
	logger    Logger
	recorder  Recorder
	dryRun    bool
	newID     func() string
}

// New creates a Runner using the file rewriter configured from opts.
func New(opts Options, logger Logger) *Runner {
	return NewWithProcessor(opts, rewriter.New(rewriter.Options{
		DryRun: opts.DryRun,
		Atomic: opts.Atomic,
	}), logger)
}

// NewWithProcessor creates a Runner with a custom Processor.
func NewWithProcessor(opts Options, processor Processor, logger Logger) *Runner {
	return &Runner{
		filter:    fileutil.NewFilter(opts.Extensions, opts.ExcludeDirs),
		processor: processor,
		logger:    logger,
		dryRun:    opts.DryRun,
		newID:     uuid.NewString,
	}
}

// WithRecorder journals every completed run through rec.
func (r *Runner) WithRecorder(rec Recorder) *Runner {
	r.recorder = rec
	return r
}

// Run processes every eligible file under root and returns the totals.
// Per-file failures are part of the result; only a traversal failure is
// returned as an error, together with the partial result.
func (r *Runner) Run(ctx context.Context, root string) (*models.RunResult, error) {
	result := &models.RunResult{
		RunID:     r.newID(),
		Root:      root,
		DryRun:    r.dryRun,
		StartedAt: time.Now(),
	}

	r.logger.LogRunStart(root, r.dryRun)

	walkErr := fileutil.WalkFiles(root, r.filter, func(path string) error {
		fr := r.processor.Process(path)
		result.Add(fr)
		r.logger.LogFileResult(fr)
		return nil
	})
	result.Duration = time.Since(result.StartedAt)

	if walkErr != nil {
		return result, fmt.Errorf("walk %s: %w", root, walkErr)
	}

	r.logger.LogSummary(result)

	if r.recorder != nil {
		if err := r.recorder.RecordRun(ctx, result); err != nil {
			return result, fmt.Errorf("record run: %w", err)
		}
	}

	return result, nil
}
