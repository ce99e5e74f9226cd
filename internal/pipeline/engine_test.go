package pipeline

import (
	"context"
	"errors"
	"iter"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/repoquill/internal/models"
)

// writeTree creates files under a temp root from a path -> content map
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
	return root
}

func scanConfig(root string) models.ScanConfig {
	return models.ScanConfig{
		RootPath:    root,
		HonorIgnore: true,
		Format:      models.FormatText,
	}
}

func paths(entries []models.FileEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.RelativePath
	}
	return out
}

func contentPaths(contents []models.FileContent) []string {
	out := make([]string, len(contents))
	for i, c := range contents {
		out[i] = c.Entry.RelativePath
	}
	return out
}

type recorder struct {
	mu      sync.Mutex
	reports []models.ProgressReport
}

func (r *recorder) Report(report models.ProgressReport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, report)
}

func TestRunHonorsIgnoreFile(t *testing.T) {
	root := writeTree(t, map[string]string{
		"file1.txt":    "one",
		"src/file2.cs": "class A {}",
		"ignored.log":  "noise",
		".gitignore":   "*.log\n",
	})

	result, err := NewEngine().Run(context.Background(), scanConfig(root), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"file1.txt", "src/file2.cs"}, paths(result.Files))
	assert.Equal(t, 2, result.TotalFiles)
	assert.Equal(t, 2, result.FullFiles)
	assert.NotContains(t, result.Output, "ignored.log")
	assert.NotEmpty(t, result.RunID)
}

func TestRunSkipPathsAreExact(t *testing.T) {
	root := writeTree(t, map[string]string{
		"snapshot.txt":      "old artifact",
		"docs/snapshot.txt": "kept",
		"main.go":           "package main",
	})

	cfg := scanConfig(root)
	cfg.SkipPaths = []string{"./snapshot.txt"}
	result, err := NewEngine().Run(context.Background(), cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"docs/snapshot.txt", "main.go"}, paths(result.Files))
	assert.NotContains(t, result.Output, "old artifact")
}

func TestRunWithoutIgnore(t *testing.T) {
	root := writeTree(t, map[string]string{
		"file1.txt":   "one",
		"ignored.log": "noise",
		".gitignore":  "*.log\n",
	})
	cfg := scanConfig(root)
	cfg.HonorIgnore = false

	result, err := NewEngine().Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"file1.txt", "ignored.log"}, paths(result.Files))
}

func TestRunBinaryIsTreeOnly(t *testing.T) {
	root := writeTree(t, map[string]string{
		"image.bin": "abc\x00def",
		"notes.txt": "hello",
	})

	result, err := NewEngine().Run(context.Background(), scanConfig(root), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"image.bin", "notes.txt"}, paths(result.Files))
	assert.Equal(t, models.TreeOnly, result.Files[0].Disposition)
	assert.Equal(t, 1, result.TreeOnlyFiles)
	assert.Equal(t, []string{"notes.txt"}, contentPaths(result.Contents))
	assert.Contains(t, result.Output, "image.bin  [tree-only]")
}

func TestRunIncludePatterns(t *testing.T) {
	root := writeTree(t, map[string]string{
		"app.cs":    "class App {}",
		"script.js": "let x = 1;",
	})
	cfg := scanConfig(root)
	cfg.Patterns.Include = []string{"*.cs"}

	result, err := NewEngine().Run(context.Background(), cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, result.FullFiles)
	assert.Equal(t, []string{"app.cs"}, paths(result.Files))
	assert.Equal(t, []string{"app.cs"}, contentPaths(result.Contents))
}

func TestRunExcludeBeatsInclude(t *testing.T) {
	root := writeTree(t, map[string]string{
		"temp.cs": "class Temp {}",
		"main.cs": "class Main {}",
	})
	cfg := scanConfig(root)
	cfg.Patterns.Include = []string{"*.cs"}
	cfg.Patterns.Exclude = []string{"temp.*"}

	result, err := NewEngine().Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"main.cs"}, paths(result.Files))
}

func TestRunEmptyRoot(t *testing.T) {
	result, err := NewEngine().Run(context.Background(), scanConfig(t.TempDir()), nil)
	require.NoError(t, err)

	assert.Zero(t, result.TotalFiles)
	assert.Empty(t, result.Files)
	assert.Empty(t, result.Errors)
	assert.NoError(t, result.Err())
}

func TestRunRoundTrip(t *testing.T) {
	raw := "line one  \r\n\r\n\r\n\r\n// comment\nline two"
	root := writeTree(t, map[string]string{"a.go": raw})

	result, err := NewEngine().Run(context.Background(), scanConfig(root), nil)
	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, raw, result.Contents[0].Content)
}

func TestRunAppliesTransforms(t *testing.T) {
	root := writeTree(t, map[string]string{"a.go": "x := 1 // note\r\n\r\n\r\n\r\ny := 2"})
	cfg := scanConfig(root)
	cfg.StripComments = true
	cfg.NormalizeWhitespace = true
	rec := &recorder{}

	result, err := NewEngine().Run(context.Background(), cfg, rec)
	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, "x := 1\n\ny := 2\n", result.Contents[0].Content)

	var sawTransforming bool
	for _, r := range rec.reports {
		if r.Phase == models.PhaseTransforming {
			sawTransforming = true
		}
	}
	assert.True(t, sawTransforming)
}

func TestRunOrderingIsOrdinal(t *testing.T) {
	root := writeTree(t, map[string]string{
		"b.txt":     "b",
		"B.txt":     "B",
		"a/z.txt":   "z",
		"a.txt":     "a",
		"a/b/c.txt": "c",
	})

	result, err := NewEngine(WithWorkers(8)).Run(context.Background(), scanConfig(root), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"B.txt", "a.txt", "a/b/c.txt", "a/z.txt", "b.txt"}, paths(result.Files))
	assert.Equal(t, paths(result.Files), contentPaths(result.Contents))
}

func TestRunProgressIsMonotonic(t *testing.T) {
	files := map[string]string{}
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		files["dir/"+name+".txt"] = name
	}
	files["img.png"] = "png"
	root := writeTree(t, files)
	rec := &recorder{}

	_, err := NewEngine(WithWorkers(4)).Run(context.Background(), scanConfig(root), rec)
	require.NoError(t, err)

	var phases []models.Phase
	last := map[models.Phase]int{}
	for _, r := range rec.reports {
		if len(phases) == 0 || phases[len(phases)-1] != r.Phase {
			phases = append(phases, r.Phase)
			assert.Zero(t, r.Processed, "first report of %s should start at zero", r.Phase)
		} else {
			assert.Equal(t, last[r.Phase]+1, r.Processed, "phase %s", r.Phase)
		}
		last[r.Phase] = r.Processed

		switch r.Phase {
		case models.PhaseDiscovering:
			assert.Equal(t, models.UnknownTotal, r.Total)
			assert.Equal(t, models.UnknownPercent, r.Percent())
		default:
			assert.LessOrEqual(t, r.Processed, r.Total)
		}
	}

	assert.Equal(t, []models.Phase{
		models.PhaseDiscovering,
		models.PhaseClassifying,
		models.PhaseLoading,
		models.PhaseFormatting,
	}, phases)
	assert.Equal(t, 9, last[models.PhaseDiscovering])
	assert.Equal(t, 9, last[models.PhaseClassifying])
	assert.Equal(t, 8, last[models.PhaseLoading])
	assert.Equal(t, 1, last[models.PhaseFormatting])
}

func TestRunCancelledBeforeStart(t *testing.T) {
	root := writeTree(t, map[string]string{"a.txt": "a"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := NewEngine().Run(ctx, scanConfig(root), nil)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunCancelledDuringLoading(t *testing.T) {
	root := writeTree(t, map[string]string{"a.txt": "a", "b.txt": "b", "c.txt": "c"})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	progress := ProgressFunc(func(r models.ProgressReport) {
		if r.Phase == models.PhaseLoading && r.Processed == 1 {
			cancel()
		}
	})

	result, err := NewEngine(WithWorkers(1)).Run(ctx, scanConfig(root), progress)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)
}

// failingLoader fails for one path and delegates to a fixed content otherwise
type failingLoader struct {
	failPath string
	err      error
}

func (l *failingLoader) Load(ctx context.Context, entry models.FileEntry) (models.FileContent, error) {
	if entry.RelativePath == l.failPath {
		return models.FileContent{}, l.err
	}
	return models.FileContent{Entry: entry, Content: "ok"}, nil
}

func TestRunCollectsFileErrors(t *testing.T) {
	root := writeTree(t, map[string]string{"a.txt": "a", "b.txt": "b", "c.txt": "c"})

	tests := []struct {
		name        string
		err         error
		wantMessage string
	}{
		{"file error", &models.FileError{Path: "b.txt", Message: "Access denied"}, "Access denied"},
		{"other error", errors.New("boom"), "Unexpected error: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(WithLoader(&failingLoader{failPath: "b.txt", err: tt.err}))

			result, err := engine.Run(context.Background(), scanConfig(root), nil)
			require.NoError(t, err)

			assert.Equal(t, 3, result.TotalFiles)
			assert.Equal(t, []string{"a.txt", "c.txt"}, contentPaths(result.Contents))
			require.Len(t, result.Errors, 1)
			assert.Equal(t, "b.txt", result.Errors[0].Path)
			assert.Equal(t, tt.wantMessage, result.Errors[0].Message)
			assert.Error(t, result.Err())
		})
	}
}

func TestRunMissingFileBecomesFileError(t *testing.T) {
	root := writeTree(t, map[string]string{"a.txt": "a"})
	d := &staticDiscoverer{entries: []models.FileEntry{
		{AbsolutePath: filepath.Join(root, "a.txt"), RelativePath: "a.txt", SizeBytes: 1},
		{AbsolutePath: filepath.Join(root, "gone.txt"), RelativePath: "gone.txt", SizeBytes: 4},
	}}

	result, err := NewEngine(WithDiscoverer(d)).Run(context.Background(), scanConfig(root), nil)
	require.NoError(t, err)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, models.FileError{Path: "gone.txt", Message: "File not found"}, result.Errors[0])
	assert.Equal(t, []string{"a.txt"}, contentPaths(result.Contents))
	assert.Equal(t, int64(5), result.TotalBytes)
}

type staticDiscoverer struct {
	entries []models.FileEntry
}

func (d *staticDiscoverer) Discover(ctx context.Context, cfg models.ScanConfig) iter.Seq2[models.FileEntry, error] {
	return func(yield func(models.FileEntry, error) bool) {
		for _, e := range d.entries {
			if !yield(e, nil) {
				return
			}
		}
	}
}

func TestRunUnknownFormat(t *testing.T) {
	cfg := scanConfig(t.TempDir())
	cfg.Format = "pdf"

	result, err := NewEngine().Run(context.Background(), cfg, nil)
	assert.Nil(t, result)
	assert.Error(t, err)
}

func TestRunJSONFormat(t *testing.T) {
	root := writeTree(t, map[string]string{"a.txt": "a"})
	cfg := scanConfig(root)
	cfg.Format = models.FormatJSON

	result, err := NewEngine().Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Contains(t, result.Output, `"path": "a.txt"`)
}
