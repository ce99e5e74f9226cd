package transform

import (
	"path"
	"regexp"
	"strings"

	"github.com/harrison/repoquill/internal/models"
)

type commentStyle int

const (
	styleNone commentStyle = iota
	styleC
	styleHash
	styleXML
	styleSQL
	styleLua
	styleCSS
)

var extensionStyles = map[string]commentStyle{}

func init() {
	register := func(style commentStyle, exts ...string) {
		for _, ext := range exts {
			extensionStyles[ext] = style
		}
	}
	register(styleC, ".cs", ".java", ".js", ".ts", ".tsx", ".jsx",
		".c", ".cpp", ".cc", ".cxx", ".h", ".hpp",
		".go", ".swift", ".kt", ".kts", ".scala", ".rs", ".m", ".mm")
	register(styleHash, ".py", ".rb", ".pl", ".pm", ".sh", ".bash",
		".zsh", ".fish", ".ps1", ".psm1", ".r",
		".yaml", ".yml", ".toml", ".conf", ".ini",
		".dockerfile", ".makefile", ".mk")
	register(styleXML, ".html", ".htm", ".xml", ".xaml", ".axaml",
		".svg", ".xsl", ".xslt", ".xsd", ".wsdl",
		".csproj", ".fsproj", ".vbproj", ".props", ".targets")
	register(styleSQL, ".sql")
	register(styleLua, ".lua")
	register(styleCSS, ".css", ".scss", ".sass", ".less")
}

var (
	blockComment    = regexp.MustCompile(`/\*[\s\S]*?\*/`)
	xmlComment      = regexp.MustCompile(`<!--[\s\S]*?-->`)
	luaBlockComment = regexp.MustCompile(`--\[\[[\s\S]*?\]\]`)
	dashComment     = regexp.MustCompile(`(?m)--.*$`)
	// Go's regexp has no lookbehind, so the character before "//" is captured and
	// put back. A preceding ':' keeps URLs like https://example.com intact.
	slashComment = regexp.MustCompile(`(?m)(^|[^:])//.*$`)
)

// CommentStripper removes comments using a heuristic chosen by file extension.
// Unknown extensions pass through unchanged.
type CommentStripper struct{}

// NewCommentStripper creates a CommentStripper
func NewCommentStripper() *CommentStripper {
	return &CommentStripper{}
}

// Name identifies the transform in logs
func (s *CommentStripper) Name() string {
	return "strip-comments"
}

// Apply returns content with comments removed
func (s *CommentStripper) Apply(content models.FileContent) models.FileContent {
	ext := strings.ToLower(path.Ext(content.Entry.RelativePath))
	content.Content = StripComments(content.Content, ext)
	return content
}

// StripComments removes comments from text written in the language implied by
// ext (lower-case, with leading dot).
func StripComments(text, ext string) string {
	switch extensionStyles[ext] {
	case styleC:
		text = blockComment.ReplaceAllString(text, "")
		return slashComment.ReplaceAllString(text, "${1}")
	case styleHash:
		return stripHashComments(text)
	case styleXML:
		return xmlComment.ReplaceAllString(text, "")
	case styleSQL:
		text = blockComment.ReplaceAllString(text, "")
		return dashComment.ReplaceAllString(text, "")
	case styleLua:
		text = luaBlockComment.ReplaceAllString(text, "")
		return dashComment.ReplaceAllString(text, "")
	case styleCSS:
		return blockComment.ReplaceAllString(text, "")
	default:
		return text
	}
}

// stripHashComments cuts each line at its first '#' unless the quote counts
// before it suggest the '#' sits inside a string. A shebang on the first line is
// kept.
func stripHashComments(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if i == 0 && strings.HasPrefix(strings.TrimLeft(line, " \t"), "#!") {
			continue
		}
		idx := strings.IndexByte(line, '#')
		if idx < 0 {
			continue
		}
		before := line[:idx]
		if strings.Count(before, "'")%2 == 0 && strings.Count(before, `"`)%2 == 0 {
			lines[i] = before
		}
	}
	return strings.Join(lines, "\n")
}
