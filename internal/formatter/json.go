package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/harrison/repoquill/internal/models"
)

type jsonOutput struct {
	Tree    string      `json:"tree"`
	Files   []jsonFile  `json:"files"`
	Summary jsonSummary `json:"summary"`
}

type jsonFile struct {
	Path      string  `json:"path"`
	State     string  `json:"state"`
	SizeBytes int64   `json:"sizeBytes"`
	Content   *string `json:"content,omitempty"`
}

type jsonSummary struct {
	TotalFiles     int   `json:"totalFiles"`
	FullFiles      int   `json:"fullFiles"`
	TreeOnlyFiles  int   `json:"treeOnlyFiles"`
	TotalSizeBytes int64 `json:"totalSizeBytes"`
}

// JSON renders the tree, every listed file and a summary as an indented object.
// Content appears only for files that were loaded.
type JSON struct{}

// NewJSON creates a JSON formatter
func NewJSON() *JSON {
	return &JSON{}
}

// Format implements Formatter
func (f *JSON) Format(files []models.FileEntry, contents []models.FileContent) (string, error) {
	byPath := make(map[string]string, len(contents))
	for _, c := range contents {
		byPath[c.Entry.RelativePath] = c.Content
	}

	out := jsonOutput{
		Tree:  RenderTree(files),
		Files: make([]jsonFile, 0, len(files)),
	}
	for _, e := range files {
		jf := jsonFile{Path: e.RelativePath, State: e.Disposition.String(), SizeBytes: e.SizeBytes}
		if text, ok := byPath[e.RelativePath]; ok {
			jf.Content = &text
		}
		out.Files = append(out.Files, jf)

		out.Summary.TotalFiles++
		out.Summary.TotalSizeBytes += e.SizeBytes
		switch e.Disposition {
		case models.Full:
			out.Summary.FullFiles++
		case models.TreeOnly:
			out.Summary.TreeOnlyFiles++
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return "", fmt.Errorf("failed to encode json output: %w", err)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
