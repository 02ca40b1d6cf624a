// Package rewriter applies the accent substitution to individual files.
//
// A failure on one file is reported in its FileResult and never returned as
// an error, so the caller can keep going with the next file.
package rewriter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/harrison/deaccent/internal/accent"
	"github.com/harrison/deaccent/internal/filelock"
	"github.com/harrison/deaccent/internal/models"
)

// ErrDecode is wrapped by errors for files whose content is not valid UTF-8.
var ErrDecode = errors.New("content is not valid UTF-8")

// File operation names used in FileError.
const (
	OpRead   = "read"
	OpDecode = "decode"
	OpWrite  = "write"
)

// FileError records which step failed for a file.
type FileError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Options configures a Rewriter.
type Options struct {
	// DryRun reports files that would change without writing them
	DryRun bool
	// Atomic writes through a temp file and rename instead of truncating in place
	Atomic bool
}

// Rewriter processes files one at a time.
type Rewriter struct {
	opts Options
}

// New creates a Rewriter with the given options.
func New(opts Options) *Rewriter {
	return &Rewriter{opts: opts}
}

// Process reads path, strips accented characters and writes the file back
// only when its content changed. Unchanged files are never opened for writing.
func (rw *Rewriter) Process(path string) models.FileResult {
	result := models.FileResult{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		return failed(result, OpRead, err)
	}

	if !utf8.Valid(data) {
		return failed(result, OpDecode, fmt.Errorf("%w (invalid byte at offset %d)", ErrDecode, invalidOffset(data)))
	}

	content := string(data)
	stripped := accent.Strip(content)
	if stripped == content {
		result.Status = models.StatusUnchanged
		return result
	}
	result.Replacements = accent.Count(content)

	if rw.opts.DryRun {
		result.Status = models.StatusWouldModify
		return result
	}

	if err := rw.write(path, []byte(stripped)); err != nil {
		return failed(result, OpWrite, err)
	}

	result.Status = models.StatusModified
	return result
}

// write replaces the content of an existing file, keeping its permission bits.
func (rw *Rewriter) write(path string, data []byte) error {
	if rw.opts.Atomic {
		// Rename replaces a symlink itself, so write to the file it points at
		target, err := filepath.EvalSymlinks(path)
		if err != nil {
			return err
		}
		info, err := os.Stat(target)
		if err != nil {
			return err
		}
		return filelock.AtomicWrite(target, data, info.Mode().Perm())
	}

	// The file exists, so the mode argument is ignored
	return os.WriteFile(path, data, 0644)
}

func failed(result models.FileResult, op string, err error) models.FileResult {
	result.Status = models.StatusFailed
	result.Replacements = 0
	result.Error = &FileError{Op: op, Path: result.Path, Err: err}
	return result
}

// invalidOffset returns the byte offset of the first invalid UTF-8 sequence.
func invalidOffset(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return len(data)
}
