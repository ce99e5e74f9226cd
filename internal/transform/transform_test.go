package transform

import (
	"testing"

	"github.com/harrison/repoquill/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func content(rel, text string) models.FileContent {
	return models.FileContent{
		Entry:   models.FileEntry{AbsolutePath: "/test/" + rel, RelativePath: rel, SizeBytes: int64(len(text))},
		Content: text,
	}
}

func TestCommentStripper(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		input      string
		absent     []string
		present    []string
		wantOutput string
	}{
		{
			name:    "c-style line comment",
			path:    "test.cs",
			input:   "var x = 1; // comment\nvar y = 2;",
			absent:  []string{"comment"},
			present: []string{"var x = 1;", "var y = 2;"},
		},
		{
			name:    "c-style block comment",
			path:    "main.go",
			input:   "x := 1 /* block\ncomment */ y := 2",
			absent:  []string{"block", "comment"},
			present: []string{"x := 1", "y := 2"},
		},
		{
			name:    "urls survive",
			path:    "test.ts",
			input:   `const url = "https://example.com";`,
			present: []string{"https://example.com"},
		},
		{
			name:       "line starting with comment",
			path:       "a.go",
			input:      "// header\npackage a",
			wantOutput: "\npackage a",
		},
		{
			name:    "python hash comment",
			path:    "test.py",
			input:   "x = 1 # comment\ny = 2",
			absent:  []string{"comment"},
			present: []string{"x = 1", "y = 2"},
		},
		{
			name:    "shebang kept",
			path:    "run.sh",
			input:   "#!/usr/bin/env bash\n# note\necho hi",
			absent:  []string{"note"},
			present: []string{"#!/usr/bin/env bash", "echo hi"},
		},
		{
			name:    "hash inside string kept",
			path:    "cfg.yaml",
			input:   `color: "#fff`,
			present: []string{`"#fff`},
		},
		{
			name:    "xml comment",
			path:    "index.html",
			input:   "<div><!-- comment --><span>text</span></div>",
			absent:  []string{"comment"},
			present: []string{"<div>", "<span>text</span>"},
		},
		{
			name:    "sql comments",
			path:    "q.SQL",
			input:   "SELECT 1; -- trailing\n/* block */SELECT 2;",
			absent:  []string{"trailing", "block"},
			present: []string{"SELECT 1;", "SELECT 2;"},
		},
		{
			name:    "lua comments",
			path:    "init.lua",
			input:   "--[[ long\ncomment ]]\nlocal x = 1 -- short",
			absent:  []string{"long", "short"},
			present: []string{"local x = 1"},
		},
		{
			name:    "css comment",
			path:    "site.css",
			input:   "body { /* reset */ margin: 0; }",
			absent:  []string{"reset"},
			present: []string{"margin: 0;"},
		},
		{
			name:       "unknown extension untouched",
			path:       "notes.xyz",
			input:      "some content // with slashes",
			wantOutput: "some content // with slashes",
		},
	}

	s := NewCommentStripper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := content(tt.path, tt.input)
			got := s.Apply(in)

			assert.Equal(t, in.Entry, got.Entry)
			for _, a := range tt.absent {
				assert.NotContains(t, got.Content, a)
			}
			for _, p := range tt.present {
				assert.Contains(t, got.Content, p)
			}
			if tt.wantOutput != "" {
				assert.Equal(t, tt.wantOutput, got.Content)
			}
		})
	}
}

func TestNormalizeWhitespace(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"crlf", "a\r\nb\r\n", "a\nb\n"},
		{"bare cr", "a\rb", "a\nb\n"},
		{"trailing blanks", "a  \t\nb ", "a\nb\n"},
		{"collapse blank lines", "a\n\n\n\n\nb", "a\n\nb\n"},
		{"trailing newlines trimmed", "a\n\n\n", "a\n"},
		{"empty", "", "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeWhitespace(tt.input))
		})
	}
}

func TestChainOrder(t *testing.T) {
	assert.Empty(t, Chain(false, false))

	chain := Chain(true, true)
	require.Len(t, chain, 2)
	assert.Equal(t, "strip-comments", chain[0].Name())
	assert.Equal(t, "normalize-whitespace", chain[1].Name())

	got := ApplyAll(content("a.go", "x := 1 // note   \r\n\r\n\r\n\r\ny := 2"), chain)
	assert.Equal(t, "x := 1\n\ny := 2\n", got.Content)
}
