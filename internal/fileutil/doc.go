// Package fileutil walks a directory tree and selects the files that are
// eligible for accent rewriting.
//
// # Main Components
//
// Filter - holds the allowed extensions and the excluded directory names:
//   - IsExcludedDir: directory names pruned before the walker descends into them
//   - ShouldProcess: extension check plus a per-segment exclusion check on the
//     path relative to the walk root
//
// WalkFiles - depth-first traversal in lexical order that calls a visitor for
// every accepted file.
//
// # Usage
//
//	filter := fileutil.NewFilter([]string{".js", ".md"}, []string{"node_modules", ".git"})
//	err := fileutil.WalkFiles(".", filter, func(path string) error {
//	    fmt.Println(path)
//	    return nil
//	})
//
// # Pruning
//
// Excluded directories are skipped with filepath.SkipDir, so nothing beneath
// them is ever read, at any depth. The segment check in ShouldProcess repeats
// the exclusion at the file level and also covers callers that hand in paths
// directly.
//
// Hidden directories are not skipped unless they are listed: ".github" is
// walked, ".git" is pruned because it is in the default exclusion set.
//
// # Errors
//
// Unlike per-file processing errors, a traversal error (missing root,
// unreadable subdirectory) is fatal to the walk and is returned wrapped.
// Errors returned by the visitor stop the walk the same way.
//
// # Matching Rules
//
// Extensions are compared with filepath.Ext and are case-sensitive: "notes.MD"
// is not a Markdown file for this package. Only the final extension counts,
// so "bundle.min.js" matches ".js".
package fileutil
