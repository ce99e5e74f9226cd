// Package transform rewrites loaded file content before formatting.
package transform

import "github.com/harrison/repoquill/internal/models"

// Transform rewrites one file's content. Implementations must be safe for
// concurrent use.
type Transform interface {
	Name() string
	Apply(content models.FileContent) models.FileContent
}

// Chain returns the enabled transforms in their fixed order: comment stripping
// always runs before whitespace normalization.
func Chain(stripComments, normalizeWhitespace bool) []Transform {
	var chain []Transform
	if stripComments {
		chain = append(chain, NewCommentStripper())
	}
	if normalizeWhitespace {
		chain = append(chain, NewWhitespaceNormalizer())
	}
	return chain
}

// ApplyAll runs every transform in order
func ApplyAll(content models.FileContent, chain []Transform) models.FileContent {
	for _, t := range chain {
		content = t.Apply(content)
	}
	return content
}
