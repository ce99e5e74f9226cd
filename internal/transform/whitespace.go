package transform

import (
	"regexp"
	"strings"

	"github.com/harrison/repoquill/internal/models"
)

var (
	trailingSpace = regexp.MustCompile(`(?m)[ \t]+$`)
	blankRun      = regexp.MustCompile(`\n{3,}`)
)

// WhitespaceNormalizer converts line endings to LF, trims trailing blanks from
// every line, collapses runs of blank lines and ends the text with exactly one
// newline.
type WhitespaceNormalizer struct{}

// NewWhitespaceNormalizer creates a WhitespaceNormalizer
func NewWhitespaceNormalizer() *WhitespaceNormalizer {
	return &WhitespaceNormalizer{}
}

// Name identifies the transform in logs
func (n *WhitespaceNormalizer) Name() string {
	return "normalize-whitespace"
}

// Apply returns content with normalized whitespace
func (n *WhitespaceNormalizer) Apply(content models.FileContent) models.FileContent {
	content.Content = NormalizeWhitespace(content.Content)
	return content
}

// NormalizeWhitespace applies the normalization to a string
func NormalizeWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = trailingSpace.ReplaceAllString(text, "")
	text = blankRun.ReplaceAllString(text, "\n\n")
	return strings.TrimRightFunc(text, isSpace) + "\n"
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\v' || r == '\f' || r == '\r'
}
