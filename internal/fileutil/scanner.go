package fileutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultExtensions are the file extensions eligible for rewriting.
var DefaultExtensions = []string{".js", ".jsx", ".md"}

// DefaultExcludeDirs are directory names never descended into.
var DefaultExcludeDirs = []string{"node_modules", ".git", "dist", "build", "uploads"}

// Filter decides which directories are pruned and which files are processed.
type Filter struct {
	extensions  map[string]bool
	excludeDirs map[string]bool
}

// NewFilter creates a Filter from extension and excluded directory lists.
// Extensions are matched case-sensitively; a missing leading dot is added.
func NewFilter(extensions, excludeDirs []string) *Filter {
	extMap := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		if ext == "" {
			continue
		}
		// Ensure extensions start with a dot
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extMap[ext] = true
	}

	excludeMap := make(map[string]bool, len(excludeDirs))
	for _, dir := range excludeDirs {
		excludeMap[dir] = true
	}

	return &Filter{
		extensions:  extMap,
		excludeDirs: excludeMap,
	}
}

// DefaultFilter returns the Filter built from DefaultExtensions and DefaultExcludeDirs.
func DefaultFilter() *Filter {
	return NewFilter(DefaultExtensions, DefaultExcludeDirs)
}

// IsExcludedDir reports whether a directory with this name is pruned.
func (f *Filter) IsExcludedDir(name string) bool {
	return f.excludeDirs[name]
}

// ShouldProcess reports whether the file at path is eligible for rewriting.
// The path's final extension must be allowed and none of its segments may be
// an excluded directory name. Callers pass paths relative to the walk root so
// that directories above the root do not take part in the check.
func (f *Filter) ShouldProcess(path string) bool {
	if !f.extensions[filepath.Ext(path)] {
		return false
	}

	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if f.excludeDirs[part] {
			return false
		}
	}

	return true
}

// VisitFunc is called for every file accepted by the Filter. path is the walk
// path (root joined with the relative path). A non-nil error stops the walk
// and is returned from WalkFiles.
type VisitFunc func(path string) error

// WalkFiles walks root depth-first in lexical order, pruning excluded
// directories before they are entered, and calls visit for every accepted
// file. Any error raised by the traversal itself (unreadable root or
// subdirectory) aborts the walk.
func WalkFiles(root string, filter *Filter, visit VisitFunc) error {
	// Validate directory exists
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("failed to access directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", root)
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			// The root itself is never pruned, whatever its name
			if path != root && filter.IsExcludedDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		// Symlinked directories are listed but never followed
		if d.Type()&fs.ModeSymlink != 0 {
			if target, statErr := os.Stat(path); statErr == nil && target.IsDir() {
				return nil
			}
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("failed to resolve path %s: %w", path, err)
		}
		if !filter.ShouldProcess(rel) {
			return nil
		}

		return visit(path)
	})
	if err != nil {
		return fmt.Errorf("failed to walk directory %s: %w", root, err)
	}

	return nil
}
