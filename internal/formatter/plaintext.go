package formatter

import (
	"strings"

	"github.com/harrison/repoquill/internal/models"
)

var (
	sectionSeparator = strings.Repeat("=", 80)
	fileSeparator    = strings.Repeat("─", 80)
)

// PlainText renders a PROJECT STRUCTURE section followed by a FILES section
type PlainText struct{}

// NewPlainText creates a plain text formatter
func NewPlainText() *PlainText {
	return &PlainText{}
}

// Format implements Formatter
func (f *PlainText) Format(files []models.FileEntry, contents []models.FileContent) (string, error) {
	var sb strings.Builder

	sb.WriteString(sectionSeparator + "\n")
	sb.WriteString(strings.Repeat(" ", 30) + "PROJECT STRUCTURE\n")
	sb.WriteString(sectionSeparator + "\n\n")
	sb.WriteString(RenderTree(files))
	sb.WriteString("\n")

	if len(contents) == 0 {
		return sb.String(), nil
	}

	sb.WriteString("\n")
	sb.WriteString(sectionSeparator + "\n")
	sb.WriteString(strings.Repeat(" ", 35) + "FILES\n")
	sb.WriteString(sectionSeparator + "\n")

	for _, c := range contents {
		sb.WriteString("\n")
		sb.WriteString(fileSeparator + "\n")
		sb.WriteString("File: " + c.Entry.RelativePath + " (" + FormatSize(c.Entry.SizeBytes) + ")\n")
		sb.WriteString(fileSeparator + "\n\n")
		sb.WriteString(c.Content)
		sb.WriteString("\n")
	}

	return sb.String(), nil
}
