// Package ignore aggregates ignore files found under a scan root into one
// ordered rule set.
//
// Rules from every ignore file are merged into a flat list ordered by the length
// of the containing directory's path, so rules from deeper directories come after
// (and override) rules from their ancestors. The last matching rule wins: a
// matching negated rule ("!pattern") un-ignores the path.
//
// This is an approximation of hierarchical ignore semantics. In particular a
// negated rule cannot re-include a file that lives inside a directory already
// ignored by a whole-directory rule, because that directory is never descended.
package ignore

import (
	"bufio"
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/harrison/repoquill/internal/glob"
)

// DefaultFileName is the ignore file looked for when no names are configured
const DefaultFileName = ".gitignore"

// VCSDirRule is always present and keeps version-control metadata out of scans
const VCSDirRule = ".git/"

// Rule is a single parsed ignore line scoped to the directory that contained it
type Rule struct {
	Pattern  string // Full rule as applied, prefixed with Base for nested files (e.g. "src/*.tmp")
	Base     string // Forward-slash directory of the ignore file relative to the root, "" at the root
	Depth    int    // Number of path segments in Base
	Negate   bool   // Rule started with "!"
	DirOnly  bool   // Rule ended with "/" and matches directories only
	anchored bool   // Rule contains a "/" other than a trailing one
	body     string // Glob relative to Base
}

// RuleSet is an ordered, read-only list of rules
type RuleSet struct {
	rules   []Rule
	sources []string
	skipped []string
}

// Options configures Build
type Options struct {
	// FileNames lists the ignore file names to collect. Empty means DefaultFileName.
	FileNames []string
}

// ParseLine parses one ignore file line relative to base. Blank lines and lines
// starting with "#" yield ok == false.
func ParseLine(line, base string) (Rule, bool) {
	line = trimUnescaped(strings.TrimLeft(line, " \t"))
	if line == "" || strings.HasPrefix(line, "#") {
		return Rule{}, false
	}

	var r Rule
	if strings.HasPrefix(line, "!") {
		r.Negate = true
		line = line[1:]
	} else if strings.HasPrefix(line, `\!`) || strings.HasPrefix(line, `\#`) {
		line = line[1:]
	}

	if strings.HasSuffix(line, "/") {
		r.DirOnly = true
		line = strings.TrimRight(line, "/")
	}
	if line == "" {
		return Rule{}, false
	}

	r.anchored = strings.Contains(line, "/")
	r.body = strings.TrimPrefix(line, "/")
	r.Base = strings.Trim(base, "/")
	if r.Base != "" {
		r.Depth = strings.Count(r.Base, "/") + 1
	}

	r.Pattern = r.body
	if r.Base != "" {
		r.Pattern = r.Base + "/" + r.body
	}
	if r.DirOnly {
		r.Pattern += "/"
	}
	if r.Negate {
		r.Pattern = "!" + r.Pattern
	}
	return r, true
}

// trimUnescaped removes trailing whitespace, keeping a final space or tab
// escaped with a backslash.
func trimUnescaped(line string) string {
	line = strings.TrimRight(line, "\r\n")
	for len(line) > 0 {
		last := line[len(line)-1]
		if last != ' ' && last != '\t' {
			break
		}
		if len(line) > 1 && line[len(line)-2] == '\\' {
			break
		}
		line = line[:len(line)-1]
	}
	return line
}

// matches reports whether the rule applies to rel, which must be normalized
func (r Rule) matches(rel string, isDir bool) bool {
	if r.DirOnly && !isDir {
		return false
	}

	sub := rel
	if r.Base != "" {
		if !strings.HasPrefix(rel, r.Base+"/") {
			return false
		}
		sub = rel[len(r.Base)+1:]
	}

	return glob.CompileEscaped(r.body, r.anchored).Match(sub)
}

// New returns a rule set containing the VCS rule followed by rules parsed from
// lines, all scoped to the root.
func New(lines ...string) *RuleSet {
	rs := &RuleSet{}
	rs.addLines("", append([]string{VCSDirRule}, lines...))
	return rs
}

func (rs *RuleSet) addLines(base string, lines []string) {
	for _, line := range lines {
		if rule, ok := ParseLine(line, base); ok {
			rs.rules = append(rs.rules, rule)
		}
	}
}

// Build walks root, collects every ignore file (never descending into hidden
// directories), and merges their rules root-first. Unreadable ignore files are
// skipped; the only error returned is ctx's.
func Build(ctx context.Context, root string, opts Options) (*RuleSet, error) {
	names := opts.FileNames
	if len(names) == 0 {
		names = []string{DefaultFileName}
	}

	rs := New()

	files, err := collectFiles(ctx, root, names)
	if err != nil {
		return nil, err
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		lines, err := readLines(file.path)
		if err != nil {
			rs.skipped = append(rs.skipped, file.path)
			continue
		}
		rs.sources = append(rs.sources, file.path)
		rs.addLines(file.base, lines)
	}

	return rs, nil
}

type ruleFile struct {
	path string
	base string
}

func collectFiles(ctx context.Context, root string, names []string) ([]ruleFile, error) {
	var files []ruleFile

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable directory: skip its subtree, keep walking elsewhere
			if d != nil && d.IsDir() && p != root {
				return filepath.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}

		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return nil
		}
		base := filepath.ToSlash(rel)
		if base == "." {
			base = ""
		}

		for _, name := range names {
			candidate := filepath.Join(p, name)
			if info, statErr := os.Stat(candidate); statErr == nil && !info.IsDir() {
				files = append(files, ruleFile{path: candidate, base: base})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Shallower directories first; ties broken by path for a stable order.
	sort.SliceStable(files, func(i, j int) bool {
		if len(files[i].base) != len(files[j].base) {
			return len(files[i].base) < len(files[j].base)
		}
		return files[i].base < files[j].base
	})
	return files, nil
}

func readLines(p string) ([]string, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// Rules returns a copy of the ordered rules
func (rs *RuleSet) Rules() []Rule {
	out := make([]Rule, len(rs.rules))
	copy(out, rs.rules)
	return out
}

// Sources returns the ignore files whose rules were loaded, in merge order
func (rs *RuleSet) Sources() []string {
	return append([]string(nil), rs.sources...)
}

// Skipped returns ignore files that could not be read
func (rs *RuleSet) Skipped() []string {
	return append([]string(nil), rs.skipped...)
}

// Matches applies the rules to rel alone, without looking at its parent
// directories. The last matching rule decides. The walker uses this while it
// descends, since ignored parents are never entered.
func (rs *RuleSet) Matches(rel string, isDir bool) bool {
	if rs == nil {
		return false
	}
	rel = glob.Normalize(rel)
	if rel == "" {
		return false
	}

	ignored := false
	for i := len(rs.rules) - 1; i >= 0; i-- {
		if rs.rules[i].matches(rel, isDir) {
			ignored = !rs.rules[i].Negate
			break
		}
	}
	return ignored
}

// Ignored reports whether rel is ignored, either directly or because one of its
// parent directories is.
func (rs *RuleSet) Ignored(rel string, isDir bool) bool {
	if rs == nil {
		return false
	}
	rel = glob.Normalize(rel)

	dir := path.Dir(rel)
	if dir != "." && dir != "/" && rs.Ignored(dir, true) {
		return true
	}
	return rs.Matches(rel, isDir)
}
