package pipeline

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/harrison/repoquill/internal/classifier"
	"github.com/harrison/repoquill/internal/fileutil"
	"github.com/harrison/repoquill/internal/formatter"
	"github.com/harrison/repoquill/internal/loader"
	"github.com/harrison/repoquill/internal/models"
	"github.com/harrison/repoquill/internal/transform"
)

// DefaultWorkers is the worker pool size used when none is configured
const DefaultWorkers = 4

// Logger is the subset of the console logger the engine writes to
type Logger interface {
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
}

// ProgressReporter receives progress reports. Reports for one run arrive
// sequentially, never concurrently.
type ProgressReporter interface {
	Report(report models.ProgressReport)
}

// ProgressFunc adapts a function to ProgressReporter
type ProgressFunc func(report models.ProgressReport)

// Report implements ProgressReporter
func (f ProgressFunc) Report(report models.ProgressReport) {
	f(report)
}

// Discoverer produces the files of a run
type Discoverer interface {
	Discover(ctx context.Context, cfg models.ScanConfig) iter.Seq2[models.FileEntry, error]
}

// FileSystemDiscoverer discovers files on disk
type FileSystemDiscoverer struct {
	logger Logger
}

// NewFileSystemDiscoverer creates a discoverer. The logger is optional and
// receives a debug line for every path skipped because of an I/O error.
func NewFileSystemDiscoverer(logger Logger) *FileSystemDiscoverer {
	return &FileSystemDiscoverer{logger: logger}
}

// Discover implements Discoverer
func (d *FileSystemDiscoverer) Discover(ctx context.Context, cfg models.ScanConfig) iter.Seq2[models.FileEntry, error] {
	opts := fileutil.DiscoverOptions{
		HonorIgnore:     cfg.HonorIgnore,
		IgnoreFileNames: cfg.IgnoreFileNames,
	}
	if d.logger != nil {
		opts.OnSkip = func(path string, err error) {
			d.logger.LogDebug(fmt.Sprintf("Skipping %s: %v", path, err))
		}
	}
	return fileutil.Discover(ctx, cfg.RootPath, opts)
}

// FormatterFactory returns the formatter for a configured output format
type FormatterFactory func(format string) (formatter.Formatter, error)

// Engine wires the pipeline's collaborators together. Engines are safe to reuse
// for sequential or concurrent runs.
type Engine struct {
	discoverer   Discoverer
	classifier   classifier.Classifier
	loader       loader.ContentLoader
	newFormatter FormatterFactory
	logger       Logger
	workers      int
}

// Option configures an Engine
type Option func(*Engine)

// WithDiscoverer replaces the file system discoverer
func WithDiscoverer(d Discoverer) Option {
	return func(e *Engine) { e.discoverer = d }
}

// WithClassifier replaces the pattern classifier
func WithClassifier(c classifier.Classifier) Option {
	return func(e *Engine) { e.classifier = c }
}

// WithLoader replaces the file reader
func WithLoader(l loader.ContentLoader) Option {
	return func(e *Engine) { e.loader = l }
}

// WithFormatterFactory replaces formatter.New
func WithFormatterFactory(f FormatterFactory) Option {
	return func(e *Engine) { e.newFormatter = f }
}

// WithLogger sets the logger
func WithLogger(l Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithWorkers bounds the classification, loading and transform pools.
// Values below 1 select DefaultWorkers.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// NewEngine creates an Engine with the default collaborators
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		classifier:   classifier.NewPatternClassifier(),
		loader:       loader.NewFileReader(),
		newFormatter: formatter.New,
		logger:       nopLogger{},
		workers:      DefaultWorkers,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = nopLogger{}
	}
	if e.discoverer == nil {
		e.discoverer = NewFileSystemDiscoverer(e.logger)
	}
	if e.workers < 1 {
		e.workers = DefaultWorkers
	}
	return e
}

// Run executes a scan. progress may be nil.
//
// On success the result holds the artifact, the non-excluded entries in
// ordinal path order, their loaded content and any per-file errors. On
// cancellation Run returns (nil, ctx.Err()).
func (e *Engine) Run(ctx context.Context, cfg models.ScanConfig, progress ProgressReporter) (*models.Result, error) {
	if progress == nil {
		progress = ProgressFunc(func(models.ProgressReport) {})
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := e.newFormatter(cfg.Format)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	runID := uuid.NewString()
	e.logger.LogDebug(fmt.Sprintf("Run %s scanning %s", runID, cfg.RootPath))

	discovered, err := e.discover(ctx, cfg, progress)
	if err != nil {
		return nil, err
	}

	classified := make([]models.FileEntry, len(discovered))
	err = e.forEach(ctx, models.PhaseClassifying, len(discovered), progress, func(i int) (string, error) {
		classified[i] = e.classifier.Classify(discovered[i], cfg.Patterns)
		return classified[i].RelativePath, nil
	})
	if err != nil {
		return nil, err
	}

	files := make([]models.FileEntry, 0, len(classified))
	for _, entry := range classified {
		if entry.Disposition != models.Excluded {
			files = append(files, entry)
		}
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].RelativePath < files[j].RelativePath
	})

	var full []models.FileEntry
	var totalBytes int64
	for _, entry := range files {
		totalBytes += entry.SizeBytes
		if entry.Disposition == models.Full {
			full = append(full, entry)
		}
	}

	contents, fileErrors, err := e.load(ctx, full, progress)
	if err != nil {
		return nil, err
	}

	if cfg.HasTransforms() {
		chain := transform.Chain(cfg.StripComments, cfg.NormalizeWhitespace)
		err = e.forEach(ctx, models.PhaseTransforming, len(contents), progress, func(i int) (string, error) {
			contents[i] = transform.ApplyAll(contents[i], chain)
			return contents[i].Entry.RelativePath, nil
		})
		if err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	progress.Report(models.ProgressReport{Phase: models.PhaseFormatting, Total: 1})
	output, err := f.Format(files, contents)
	if err != nil {
		return nil, fmt.Errorf("failed to format output: %w", err)
	}
	progress.Report(models.ProgressReport{Phase: models.PhaseFormatting, Processed: 1, Total: 1})

	result := &models.Result{
		RunID:         runID,
		Output:        output,
		TotalFiles:    len(files),
		FullFiles:     len(full),
		TreeOnlyFiles: len(files) - len(full),
		TotalBytes:    totalBytes,
		Files:         files,
		Contents:      contents,
		Errors:        fileErrors,
		StartedAt:     started,
		Duration:      time.Since(started),
	}
	e.logger.LogDebug(fmt.Sprintf("Run %s finished: %d files (%d full, %d tree-only), %d errors",
		runID, result.TotalFiles, result.FullFiles, result.TreeOnlyFiles, len(fileErrors)))
	return result, nil
}

func (e *Engine) discover(ctx context.Context, cfg models.ScanConfig, progress ProgressReporter) ([]models.FileEntry, error) {
	progress.Report(models.ProgressReport{Phase: models.PhaseDiscovering, Total: models.UnknownTotal})

	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[models.NormalizeRelativePath(p)] = struct{}{}
	}

	var discovered []models.FileEntry
	for entry, err := range e.discoverer.Discover(ctx, cfg) {
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("discovery failed: %w", err)
		}
		if _, ok := skip[entry.RelativePath]; ok {
			e.logger.LogDebug(fmt.Sprintf("Skipping %s", entry.RelativePath))
			continue
		}
		discovered = append(discovered, entry)
		progress.Report(models.ProgressReport{
			Phase:       models.PhaseDiscovering,
			CurrentFile: entry.RelativePath,
			Processed:   len(discovered),
			Total:       models.UnknownTotal,
		})
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return discovered, nil
}

// loadSlot holds the outcome of loading one Full file
type loadSlot struct {
	content models.FileContent
	err     *models.FileError
}

func (e *Engine) load(ctx context.Context, full []models.FileEntry, progress ProgressReporter) ([]models.FileContent, []models.FileError, error) {
	slots := make([]loadSlot, len(full))
	err := e.forEach(ctx, models.PhaseLoading, len(full), progress, func(i int) (string, error) {
		rel := full[i].RelativePath
		content, err := e.loader.Load(ctx, full[i])
		if err == nil {
			slots[i].content = content
			return rel, nil
		}

		var fileErr *models.FileError
		switch {
		case errors.As(err, &fileErr):
			slots[i].err = fileErr
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return rel, err
		default:
			slots[i].err = &models.FileError{Path: rel, Message: fmt.Sprintf("Unexpected error: %v", err)}
		}
		return rel, nil
	})
	if err != nil {
		return nil, nil, err
	}

	contents := make([]models.FileContent, 0, len(full))
	var fileErrors []models.FileError
	for _, slot := range slots {
		if slot.err != nil {
			e.logger.LogWarn(fmt.Sprintf("Failed to load %s", slot.err.Error()))
			fileErrors = append(fileErrors, *slot.err)
			continue
		}
		contents = append(contents, slot.content)
	}
	return contents, fileErrors, nil
}

// forEach runs fn for indices [0, n) on the worker pool and reports progress for
// phase. fn returns the relative path it processed. Reports are serialized so
// Processed increases by exactly one per report.
func (e *Engine) forEach(ctx context.Context, phase models.Phase, n int, progress ProgressReporter, fn func(i int) (string, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	progress.Report(models.ProgressReport{Phase: phase, Total: n})

	var (
		mu        sync.Mutex
		processed int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rel, err := fn(i)
			if err != nil {
				return err
			}

			mu.Lock()
			processed++
			progress.Report(models.ProgressReport{Phase: phase, CurrentFile: rel, Processed: processed, Total: n})
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return ctx.Err()
}

type nopLogger struct{}

func (nopLogger) LogDebug(string) {}
func (nopLogger) LogInfo(string)  {}
func (nopLogger) LogWarn(string)  {}
