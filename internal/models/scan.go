package models

import (
	"time"

	"github.com/hashicorp/go-multierror"
)

// Output formats understood by the formatter package
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// Patterns holds the three user-configured glob lists consumed by the classifier.
// Order within a list does not matter.
type Patterns struct {
	Include  []string // When non-empty, only matching files are Full
	Exclude  []string // Highest priority: matching files are dropped entirely
	TreeOnly []string // Matching files are listed without content
}

// ScanConfig is the immutable configuration of a single pipeline run
type ScanConfig struct {
	RootPath            string   // Directory to scan
	Patterns            Patterns // Classification patterns
	HonorIgnore         bool     // Apply ignore files found under the root
	IgnoreFileNames     []string // Ignore file names to look for (default .gitignore)
	StripComments       bool     // Apply the comment stripping transform
	NormalizeWhitespace bool     // Apply the whitespace normalization transform
	Format              string   // One of the Format* constants
	SkipPaths           []string // Relative paths dropped at discovery, matched exactly
}

// HasTransforms reports whether any content transform is configured
func (c ScanConfig) HasTransforms() bool {
	return c.StripComments || c.NormalizeWhitespace
}

// Result is the outcome of a completed (not cancelled) run
type Result struct {
	RunID         string        // Unique identifier of the run
	Output        string        // Formatted artifact
	TotalFiles    int           // Full + TreeOnly files
	FullFiles     int           // Files with content included
	TreeOnlyFiles int           // Files listed without content
	TotalBytes    int64         // Sum of sizes of all listed files
	Files         []FileEntry   // Non-excluded entries sorted by relative path
	Contents      []FileContent // Loaded (and transformed) content of Full files, same order
	Errors        []FileError   // Per-file failures collected during loading
	StartedAt     time.Time     // When the run began
	Duration      time.Duration // Wall time of the run
}

// Err folds the per-file errors into a single error, or nil when there are none
func (r *Result) Err() error {
	if r == nil || len(r.Errors) == 0 {
		return nil
	}
	var result *multierror.Error
	for i := range r.Errors {
		result = multierror.Append(result, &r.Errors[i])
	}
	return result.ErrorOrNil()
}
