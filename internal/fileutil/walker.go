package fileutil

import (
	"context"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/harrison/repoquill/internal/ignore"
	"github.com/harrison/repoquill/internal/models"
)

// DiscoverOptions configures Discover
type DiscoverOptions struct {
	// HonorIgnore enables ignore file processing
	HonorIgnore bool
	// IgnoreFileNames lists the ignore file names to collect (default .gitignore)
	IgnoreFileNames []string
	// Rules, when set together with HonorIgnore, is used instead of reading ignore files
	Rules *ignore.RuleSet
	// OnSkip is called for every path skipped because of an I/O error. Optional.
	OnSkip func(path string, err error)
}

// Discover streams the files under root depth-first: the files of a directory
// are yielded before any of its subdirectories are entered. Hidden files and
// directories are never yielded. When HonorIgnore is set, paths matched by the
// ignore rule set are skipped, and ignored directories are not descended into.
//
// The sequence is single-pass. Directories that cannot be read are skipped. If
// ctx is cancelled the sequence yields a zero entry with ctx.Err() and stops.
// A root that does not exist or is not a directory yields nothing.
func Discover(ctx context.Context, root string, opts DiscoverOptions) iter.Seq2[models.FileEntry, error] {
	return func(yield func(models.FileEntry, error) bool) {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			return
		}
		if info, err := os.Stat(absRoot); err != nil || !info.IsDir() {
			return
		}

		rules := opts.Rules
		if rules == nil && opts.HonorIgnore {
			rules, err = ignore.Build(ctx, absRoot, ignore.Options{FileNames: opts.IgnoreFileNames})
			if err != nil {
				yield(models.FileEntry{}, err)
				return
			}
		}
		if !opts.HonorIgnore {
			rules = nil
		}

		w := &walker{root: absRoot, rules: rules, onSkip: opts.OnSkip}
		w.walk(ctx, yield)
	}
}

type walker struct {
	root   string
	rules  *ignore.RuleSet
	onSkip func(string, error)
}

func (w *walker) skip(path string, err error) {
	if w.onSkip != nil {
		w.onSkip(path, err)
	}
}

// walk drives the traversal with an explicit stack. Subdirectories are pushed in
// reverse so they are popped in directory order, matching a recursive walk.
func (w *walker) walk(ctx context.Context, yield func(models.FileEntry, error) bool) {
	stack := []string{w.root}

	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if err := ctx.Err(); err != nil {
			yield(models.FileEntry{}, err)
			return
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			w.skip(dir, err)
			continue
		}

		var subdirs []string
		for _, d := range entries {
			if err := ctx.Err(); err != nil {
				yield(models.FileEntry{}, err)
				return
			}

			name := d.Name()
			if strings.HasPrefix(name, ".") {
				continue
			}

			full := filepath.Join(dir, name)
			rel := w.relative(full)

			isDir, ok := w.resolveDir(full, d)
			if !ok {
				continue
			}

			if w.rules != nil && w.rules.Matches(rel, isDir) {
				continue
			}

			if isDir {
				subdirs = append(subdirs, full)
				continue
			}

			info, err := os.Stat(full)
			if err != nil {
				w.skip(full, err)
				continue
			}

			entry := models.FileEntry{
				AbsolutePath: full,
				RelativePath: rel,
				SizeBytes:    info.Size(),
				ModifiedAt:   info.ModTime().UTC(),
				Disposition:  models.Full,
			}
			if !yield(entry, nil) {
				return
			}
		}

		for i := len(subdirs) - 1; i >= 0; i-- {
			stack = append(stack, subdirs[i])
		}
	}
}

// resolveDir classifies an entry as a regular file or directory. Symlinks to
// files are followed; symlinked directories and special files are skipped so a
// link cycle can never trap the walk.
func (w *walker) resolveDir(full string, d os.DirEntry) (isDir bool, ok bool) {
	switch {
	case d.IsDir():
		return true, true
	case d.Type().IsRegular():
		return false, true
	case d.Type()&os.ModeSymlink != 0:
		info, err := os.Stat(full)
		if err != nil {
			w.skip(full, err)
			return false, false
		}
		return false, info.Mode().IsRegular()
	default:
		return false, false
	}
}

func (w *walker) relative(full string) string {
	rel, err := filepath.Rel(w.root, full)
	if err != nil {
		rel = full
	}
	return models.NormalizeRelativePath(rel)
}
