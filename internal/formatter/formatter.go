// Package formatter turns classified entries and loaded content into the final
// text artifact.
package formatter

import (
	"fmt"
	"strings"

	"github.com/harrison/repoquill/internal/models"
)

// Formatter renders an artifact. files holds every Full and TreeOnly entry in
// ordinal path order; contents holds the loaded Full files in the same order.
type Formatter interface {
	Format(files []models.FileEntry, contents []models.FileContent) (string, error)
}

// New returns the formatter registered for format. An empty format selects
// plain text.
func New(format string) (Formatter, error) {
	switch strings.ToLower(format) {
	case "", models.FormatText:
		return NewPlainText(), nil
	case models.FormatJSON:
		return NewJSON(), nil
	case models.FormatMarkdown:
		return NewMarkdown(), nil
	case models.FormatHTML:
		return NewHTML(), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// FormatSize renders a byte count as B, KB or MB with one decimal
func FormatSize(bytes int64) string {
	const (
		kb = 1024
		mb = kb * 1024
	)
	switch {
	case bytes < kb:
		return fmt.Sprintf("%d B", bytes)
	case bytes < mb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/kb)
	default:
		return fmt.Sprintf("%.1f MB", float64(bytes)/mb)
	}
}
