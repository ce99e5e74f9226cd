package formatter

import (
	"path"
	"strings"

	"github.com/harrison/repoquill/internal/models"
)

var languageHints = map[string]string{
	".go":    "go",
	".cs":    "csharp",
	".java":  "java",
	".js":    "javascript",
	".jsx":   "jsx",
	".ts":    "typescript",
	".tsx":   "tsx",
	".py":    "python",
	".rb":    "ruby",
	".rs":    "rust",
	".c":     "c",
	".h":     "c",
	".cpp":   "cpp",
	".cc":    "cpp",
	".hpp":   "cpp",
	".swift": "swift",
	".kt":    "kotlin",
	".scala": "scala",
	".sh":    "bash",
	".bash":  "bash",
	".ps1":   "powershell",
	".sql":   "sql",
	".lua":   "lua",
	".html":  "html",
	".htm":   "html",
	".xml":   "xml",
	".css":   "css",
	".scss":  "scss",
	".json":  "json",
	".yaml":  "yaml",
	".yml":   "yaml",
	".toml":  "toml",
	".md":    "markdown",
}

// LanguageHint returns the fenced code block language for a path, or "" when
// the extension is unknown.
func LanguageHint(rel string) string {
	return languageHints[strings.ToLower(path.Ext(rel))]
}

// Markdown renders the tree and every file as fenced code blocks
type Markdown struct{}

// NewMarkdown creates a Markdown formatter
func NewMarkdown() *Markdown {
	return &Markdown{}
}

// Format implements Formatter
func (f *Markdown) Format(files []models.FileEntry, contents []models.FileContent) (string, error) {
	var sb strings.Builder

	tree := RenderTree(files)
	sb.WriteString("# Project Structure\n\n")
	writeFence(&sb, "text", tree)

	if len(contents) == 0 {
		return sb.String(), nil
	}

	sb.WriteString("\n## Files\n")
	for _, c := range contents {
		sb.WriteString("\n### " + codeSpan(c.Entry.RelativePath) + " (" + FormatSize(c.Entry.SizeBytes) + ")\n\n")
		writeFence(&sb, LanguageHint(c.Entry.RelativePath), c.Content)
	}
	return sb.String(), nil
}

// codeSpan wraps s in an inline code span whose delimiter is longer than any
// backtick run in s. Content containing backticks is padded with one space on
// each side, which Markdown strips again.
func codeSpan(s string) string {
	run := longestRun(s, '`')
	if run == 0 {
		return "`" + s + "`"
	}
	delim := strings.Repeat("`", run+1)
	return delim + " " + s + " " + delim
}

// writeFence writes body inside a backtick fence longer than any backtick run
// the body contains.
func writeFence(sb *strings.Builder, lang, body string) {
	fence := strings.Repeat("`", max(3, longestRun(body, '`')+1))
	sb.WriteString(fence + lang + "\n")
	sb.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString(fence + "\n")
}

func longestRun(s string, ch byte) int {
	longest, cur := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] == ch {
			cur++
			longest = max(longest, cur)
		} else {
			cur = 0
		}
	}
	return longest
}
