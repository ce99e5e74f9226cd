package models

import (
	"fmt"
	"strings"
	"time"
)

// Disposition describes how a discovered file appears in the final artifact
type Disposition int

// File dispositions, in the order the classifier considers them
const (
	Full     Disposition = iota // Listed in the tree and content included
	TreeOnly                    // Listed in the tree, content never loaded
	Excluded                    // Not listed at all
)

// String returns the name used in logs and structured output
func (d Disposition) String() string {
	switch d {
	case Full:
		return "Full"
	case TreeOnly:
		return "TreeOnly"
	case Excluded:
		return "Excluded"
	default:
		return fmt.Sprintf("Disposition(%d)", int(d))
	}
}

// FileEntry is one file found under the scan root.
// Entries are values: WithDisposition returns a copy, so a classified entry can be
// shared between goroutines without locking.
type FileEntry struct {
	AbsolutePath string      // Absolute path on disk
	RelativePath string      // Forward-slash path relative to the scan root, never starting with "./" or "/"
	SizeBytes    int64       // File size at discovery time
	ModifiedAt   time.Time   // Last modification time (UTC)
	Disposition  Disposition // Full until classified
}

// WithDisposition returns a copy of the entry carrying the given disposition
func (e FileEntry) WithDisposition(d Disposition) FileEntry {
	e.Disposition = d
	return e
}

// NormalizeRelativePath converts a platform relative path to the canonical
// forward-slash form used throughout the pipeline.
func NormalizeRelativePath(rel string) string {
	rel = strings.ReplaceAll(rel, "\\", "/")
	for strings.HasPrefix(rel, "./") {
		rel = rel[2:]
	}
	return strings.TrimLeft(rel, "/")
}

// FileContent pairs a Full entry with its decoded text
type FileContent struct {
	Entry   FileEntry
	Content string
}

// FileError records a per-file failure during loading. It never aborts a run.
type FileError struct {
	Path    string // Relative path of the offending file
	Message string // Human-readable reason
}

// Error implements the error interface
func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}
