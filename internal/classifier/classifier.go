// Package classifier decides the disposition of each discovered file.
package classifier

import (
	"github.com/harrison/repoquill/internal/fileutil"
	"github.com/harrison/repoquill/internal/glob"
	"github.com/harrison/repoquill/internal/models"
)

// Classifier assigns a disposition to a discovered entry
type Classifier interface {
	Classify(entry models.FileEntry, patterns models.Patterns) models.FileEntry
}

// PatternClassifier classifies entries with glob patterns and binary detection.
// It holds no mutable state and is safe for concurrent use.
type PatternClassifier struct {
	isBinary func(absPath string) bool
}

// NewPatternClassifier creates a classifier using fileutil.IsBinary
func NewPatternClassifier() *PatternClassifier {
	return &PatternClassifier{isBinary: fileutil.IsBinary}
}

// NewPatternClassifierWithDetector creates a classifier with a custom binary detector
func NewPatternClassifierWithDetector(isBinary func(absPath string) bool) *PatternClassifier {
	return &PatternClassifier{isBinary: isBinary}
}

// Classify returns a copy of entry with its disposition set. The first matching
// rule wins:
//
//  1. exclude pattern match -> Excluded
//  2. tree-only pattern match -> TreeOnly
//  3. binary file -> TreeOnly
//  4. include patterns configured -> Full on match, Excluded otherwise
//  5. otherwise -> Full
func (c *PatternClassifier) Classify(entry models.FileEntry, patterns models.Patterns) models.FileEntry {
	rel := entry.RelativePath

	if glob.MatchAny(rel, patterns.Exclude) {
		return entry.WithDisposition(models.Excluded)
	}

	if glob.MatchAny(rel, patterns.TreeOnly) {
		return entry.WithDisposition(models.TreeOnly)
	}

	if c.isBinary != nil && c.isBinary(entry.AbsolutePath) {
		return entry.WithDisposition(models.TreeOnly)
	}

	if len(patterns.Include) > 0 {
		if glob.MatchAny(rel, patterns.Include) {
			return entry.WithDisposition(models.Full)
		}
		return entry.WithDisposition(models.Excluded)
	}

	return entry.WithDisposition(models.Full)
}
