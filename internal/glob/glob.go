// Package glob compiles the limited glob syntax used by repoquill patterns.
//
// Supported wildcards:
//   - "*" matches any run of characters except "/"
//   - "?" matches exactly one character except "/"
//   - "**" matches any run of characters including "/"
//   - a leading "**/" matches zero or more leading directories
//
// Every other character is literal. A pattern without "/" is matched against the
// final path segment only, so "*.log" matches "logs/app.log". A pattern containing
// "/" must match the whole path. Matching is case-insensitive and never fails:
// a pattern that makes no sense as a glob simply matches itself literally.
//
// Compiled patterns are cached and safe for concurrent use.
package glob

import (
	"path"
	"regexp"
	"strings"
	"unicode/utf8"

	xsync "github.com/puzpuzpuz/xsync/v3"
)

// Pattern is a compiled glob
type Pattern struct {
	source   string
	nameOnly bool
	re       *regexp.Regexp
}

var (
	cache         = xsync.NewMapOf[string, *Pattern]()
	anchoredCache = xsync.NewMapOf[string, *Pattern]()
	escapedCache  = xsync.NewMapOf[escapedKey, *Pattern]()
)

type escapedKey struct {
	pattern  string
	anchored bool
}

// Compile returns the matcher for pattern. Patterns without a "/" match the file
// name only.
func Compile(pattern string) *Pattern {
	p, _ := cache.LoadOrCompute(pattern, func() *Pattern {
		normalized := Normalize(pattern)
		return &Pattern{
			source:   pattern,
			nameOnly: !strings.Contains(normalized, "/"),
			re:       toRegexp(normalized, false),
		}
	})
	return p
}

// CompileAnchored returns a matcher that always matches against the full path,
// even when the pattern has no "/".
func CompileAnchored(pattern string) *Pattern {
	p, _ := anchoredCache.LoadOrCompute(pattern, func() *Pattern {
		return &Pattern{
			source: pattern,
			re:     toRegexp(Normalize(pattern), false),
		}
	})
	return p
}

// CompileEscaped compiles a pattern in which a backslash makes the next
// character literal, as in ignore files. Backslashes are therefore never read
// as path separators. Unless anchored, a pattern without "/" matches the file
// name only.
func CompileEscaped(pattern string, anchored bool) *Pattern {
	p, _ := escapedCache.LoadOrCompute(escapedKey{pattern, anchored}, func() *Pattern {
		trimmed := pattern
		for strings.HasPrefix(trimmed, "./") {
			trimmed = trimmed[2:]
		}
		trimmed = strings.TrimRight(trimmed, "/")
		return &Pattern{
			source:   pattern,
			nameOnly: !anchored && !strings.Contains(trimmed, "/"),
			re:       toRegexp(trimmed, true),
		}
	})
	return p
}

// String returns the pattern as written
func (p *Pattern) String() string {
	return p.source
}

// Match reports whether path matches the pattern
func (p *Pattern) Match(name string) bool {
	name = Normalize(name)
	if p.nameOnly {
		name = path.Base(name)
	}
	return p.re.MatchString(name)
}

// Match reports whether path matches pattern
func Match(name, pattern string) bool {
	return Compile(pattern).Match(name)
}

// MatchAny reports whether path matches at least one of patterns
func MatchAny(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if Match(name, pattern) {
			return true
		}
	}
	return false
}

// Normalize converts backslashes to forward slashes, strips a leading "./" and
// removes trailing slashes.
func Normalize(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}
	return strings.TrimRight(p, "/")
}

// toRegexp translates a normalized glob into an anchored, case-insensitive
// regular expression. The regexp never escapes this package. With escapes set,
// "\\x" stands for a literal x.
func toRegexp(pattern string, escapes bool) *regexp.Regexp {
	var sb strings.Builder
	sb.WriteString("(?is)^")

	if strings.HasPrefix(pattern, "**/") {
		sb.WriteString("(?:.*/)?")
		pattern = pattern[3:]
	}

	for i := 0; i < len(pattern); {
		switch c := pattern[i]; c {
		case '*':
			if i+1 < len(pattern) && pattern[i+1] == '*' {
				if i+2 < len(pattern) && pattern[i+2] == '/' {
					sb.WriteString("(?:.*/)?")
					i += 3
				} else {
					sb.WriteString(".*")
					i += 2
				}
				continue
			}
			sb.WriteString("[^/]*")
			i++
		case '?':
			sb.WriteString("[^/]")
			i++
		case '\\':
			if !escapes {
				sb.WriteString(regexp.QuoteMeta("\\"))
				i++
				continue
			}
			_, size := utf8.DecodeRuneInString(pattern[i+1:])
			if size == 0 {
				// trailing backslash stays literal
				sb.WriteString(regexp.QuoteMeta("\\"))
				i++
				continue
			}
			sb.WriteString(regexp.QuoteMeta(pattern[i+1 : i+1+size]))
			i += 1 + size
		default:
			// Copy the literal run up to the next wildcard in one go.
			j := i
			for j < len(pattern) && pattern[j] != '*' && pattern[j] != '?' && pattern[j] != '\\' {
				j++
			}
			sb.WriteString(regexp.QuoteMeta(pattern[i:j]))
			i = j
		}
	}

	sb.WriteString("$")
	return regexp.MustCompile(sb.String())
}
