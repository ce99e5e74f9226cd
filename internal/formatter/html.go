package formatter

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"

	"github.com/harrison/repoquill/internal/models"
)

const htmlHeader = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Project Snapshot</title>
</head>
<body>
`

const htmlFooter = `</body>
</html>
`

// HTML renders the Markdown artifact into a standalone HTML page
type HTML struct {
	markdown goldmark.Markdown
	source   *Markdown
}

// NewHTML creates an HTML formatter
func NewHTML() *HTML {
	return &HTML{
		markdown: goldmark.New(),
		source:   NewMarkdown(),
	}
}

// Format implements Formatter
func (f *HTML) Format(files []models.FileEntry, contents []models.FileContent) (string, error) {
	md, err := f.source.Format(files, contents)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	buf.WriteString(htmlHeader)
	if err := f.markdown.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("failed to render html: %w", err)
	}
	buf.WriteString(htmlFooter)
	return buf.String(), nil
}
