package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrison/repoquill/internal/config"
	"github.com/harrison/repoquill/internal/history"
	"github.com/harrison/repoquill/internal/logger"
	"github.com/harrison/repoquill/internal/models"
	"github.com/harrison/repoquill/internal/output"
	"github.com/harrison/repoquill/internal/pipeline"
)

// ErrScanCancelled is returned when a scan is interrupted
var ErrScanCancelled = errors.New("scan cancelled")

// scanLogger is implemented by logger.ConsoleLogger and logger.NoOpLogger
type scanLogger interface {
	pipeline.Logger
	LogError(message string)
	LogProgress(report models.ProgressReport)
	FinishProgress()
	LogSummary(result *models.Result)
}

// NewScanCommand creates the scan command
func NewScanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [directory]",
		Short: "Produce a snapshot of a directory",
		Long: `Scan a directory (default: current directory) and write a snapshot of its
structure and file contents.

Configuration is loaded from --config, $REPOQUILL_CONFIG, .repoquill.yaml in the
scanned directory or ~/.config/repoquill/config.yaml, in that order.
CLI flags override configuration file settings.

Classification, first match wins:
  1. --exclude match          dropped entirely
  2. --tree-only match        listed without content
  3. binary file              listed without content
  4. --include given          content included on match, dropped otherwise
  5. otherwise                content included

Examples:
  repoquill scan
  repoquill scan ./service --include '**/*.go' --exclude 'vendor/**'
  repoquill scan --tree-only '*.svg' --format markdown -o snapshot.md
  repoquill scan --strip-comments --normalize-whitespace --format json
  repoquill scan --no-ignore --workers 8`,
		Args: cobra.MaximumNArgs(1),
		RunE: runScan,
	}

	cmd.Flags().String("config", "", "Path to config file (default: .repoquill.yaml in the scanned directory)")
	cmd.Flags().StringArray("include", nil, "Glob of files whose content is included (repeatable)")
	cmd.Flags().StringArray("exclude", nil, "Glob of files to drop entirely (repeatable)")
	cmd.Flags().StringArray("tree-only", nil, "Glob of files listed without content (repeatable)")
	cmd.Flags().Bool("no-ignore", false, "Do not apply .gitignore rules")
	cmd.Flags().Bool("strip-comments", false, "Remove comments from source files")
	cmd.Flags().Bool("normalize-whitespace", false, "Normalize line endings, trailing spaces and blank lines")
	cmd.Flags().String("format", "", "Output format: text, json, markdown, html")
	cmd.Flags().StringP("output", "o", "", "Output file ('-' for stdout)")
	cmd.Flags().Int("workers", 0, "Parallel workers for classification and loading")
	cmd.Flags().String("log-level", "", "Log level: trace, debug, info, warn, error")
	cmd.Flags().BoolP("quiet", "q", false, "Suppress progress and summary output")
	cmd.Flags().Bool("fail-on-error", false, "Exit non-zero when any file fails to load")
	cmd.Flags().Bool("no-history", false, "Do not record this run in the history database")

	return cmd
}

// runScan implements the scan command logic
func runScan(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	absRoot, err := validateRoot(root)
	if err != nil {
		return err
	}

	cfg, err := loadScanConfig(cmd, absRoot)
	if err != nil {
		return err
	}

	quiet, _ := cmd.Flags().GetBool("quiet")
	var log scanLogger = logger.NewNoOpLogger()
	if !quiet {
		log = logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	scanCfg := cfg.ScanConfig(absRoot)
	scanCfg.SkipPaths = artifactPaths(absRoot, cfg.Output)
	engine := pipeline.NewEngine(
		pipeline.WithLogger(log),
		pipeline.WithWorkers(cfg.Workers),
	)

	log.LogDebug(fmt.Sprintf("Scanning %s (format %s, %d workers)", absRoot, scanCfg.Format, cfg.Workers))
	result, err := engine.Run(ctx, scanCfg, pipeline.ProgressFunc(log.LogProgress))
	log.FinishProgress()
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			log.LogWarn("Scan cancelled, no output written")
			return ErrScanCancelled
		}
		return fmt.Errorf("scan failed: %w", err)
	}

	writer := output.NewWriter(cmd.OutOrStdout())
	if err := writer.Write(ctx, cfg.Output, []byte(result.Output)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if !output.IsStdout(cfg.Output) {
		log.LogInfo(fmt.Sprintf("Wrote %s", cfg.Output))
	}

	if cfg.History.Enabled {
		recordRun(ctx, log, cfg.History.DBPath, scanCfg, result)
	}

	log.LogSummary(result)

	failOnError, _ := cmd.Flags().GetBool("fail-on-error")
	if failOnError && len(result.Errors) > 0 {
		return fmt.Errorf("%d file(s) failed to load: %w", len(result.Errors), result.Err())
	}
	return nil
}

// validateRoot resolves root and checks that it is an existing directory
func validateRoot(root string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve directory %s: %w", root, err)
	}
	info, err := os.Stat(absRoot)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("directory not found: %s", absRoot)
	}
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", absRoot, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", absRoot)
	}
	return absRoot, nil
}

// artifactPaths returns the output file relative to root when the output is
// written inside the scanned tree, so a snapshot never contains the previous
// one.
func artifactPaths(root, outputPath string) []string {
	if output.IsStdout(outputPath) {
		return nil
	}
	abs, err := filepath.Abs(outputPath)
	if err != nil {
		return nil
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil
	}
	return []string{filepath.ToSlash(rel)}
}

// loadScanConfig loads the config file and applies flag overrides
func loadScanConfig(cmd *cobra.Command, root string) (*config.Config, error) {
	configFlag, _ := cmd.Flags().GetString("config")
	configPath, err := config.ResolvePath(configFlag, root)
	if err != nil {
		return nil, fmt.Errorf("failed to locate config: %w", err)
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}

	flags := cmd.Flags()
	var overrides config.FlagOverrides

	if flags.Changed("include") {
		overrides.Include, _ = flags.GetStringArray("include")
	}
	if flags.Changed("exclude") {
		overrides.Exclude, _ = flags.GetStringArray("exclude")
	}
	if flags.Changed("tree-only") {
		overrides.TreeOnly, _ = flags.GetStringArray("tree-only")
	}
	if flags.Changed("no-ignore") {
		noIgnore, _ := flags.GetBool("no-ignore")
		honor := !noIgnore
		overrides.HonorIgnore = &honor
	}
	if flags.Changed("strip-comments") {
		v, _ := flags.GetBool("strip-comments")
		overrides.StripComments = &v
	}
	if flags.Changed("normalize-whitespace") {
		v, _ := flags.GetBool("normalize-whitespace")
		overrides.NormalizeWhitespace = &v
	}
	if flags.Changed("format") {
		v, _ := flags.GetString("format")
		overrides.Format = &v
	}
	if flags.Changed("output") {
		v, _ := flags.GetString("output")
		overrides.Output = &v
	}
	if flags.Changed("workers") {
		v, _ := flags.GetInt("workers")
		overrides.Workers = &v
	}
	if flags.Changed("log-level") {
		v, _ := flags.GetString("log-level")
		overrides.LogLevel = &v
	}
	if noHistory, _ := flags.GetBool("no-history"); noHistory {
		disabled := false
		overrides.HistoryEnabled = &disabled
	}

	if err := cfg.MergeWithFlags(overrides); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// recordRun stores the run in the history database. Failures are logged and
// never fail the scan.
func recordRun(ctx context.Context, log scanLogger, dbPath string, scanCfg models.ScanConfig, result *models.Result) {
	store, err := history.Open(dbPath)
	if err != nil {
		log.LogWarn(fmt.Sprintf("History disabled for this run: %v", err))
		return
	}
	defer store.Close()

	if _, err := store.Record(ctx, history.NewRunRecord(scanCfg, result)); err != nil {
		log.LogWarn(fmt.Sprintf("Failed to record run %s: %v", result.RunID, err))
		return
	}
	log.LogDebug(fmt.Sprintf("Recorded run %s in %s", result.RunID, dbPath))
}
