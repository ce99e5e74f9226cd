package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrison/repoquill/internal/config"
	"github.com/harrison/repoquill/internal/formatter"
	"github.com/harrison/repoquill/internal/history"
)

// NewHistoryCommand creates the 'repoquill history' command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded scans",
		Long: `Display scans recorded in the history database, newest first:
  - Run ID and start time
  - Duration
  - File counts (total, full, tree-only) and total size
  - Number of files that failed to load

Runs are recorded when history.enabled is set in the configuration.`,
		Args: cobra.NoArgs,
		RunE: runHistory,
	}

	cmd.Flags().String("config", "", "Path to config file (default: .repoquill.yaml in the current directory)")
	cmd.Flags().String("db", "", "History database path (overrides config)")
	cmd.Flags().Int("limit", 20, "Maximum number of runs to show (0 = all)")

	return cmd
}

// runHistory executes the history command
func runHistory(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	configFlag, _ := cmd.Flags().GetString("config")
	configPath, err := config.ResolvePath(configFlag, ".")
	if err != nil {
		return fmt.Errorf("failed to locate config: %w", err)
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	dbPath := cfg.History.DBPath
	if cmd.Flags().Changed("db") {
		dbPath, _ = cmd.Flags().GetString("db")
	}
	limit, _ := cmd.Flags().GetInt("limit")
	if limit < 0 {
		return fmt.Errorf("--limit must be >= 0, got %d", limit)
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Fprintf(out, "No runs recorded (database %s not found)\n", dbPath)
		return nil
	}

	store, err := history.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	runs, err := store.List(ctx, limit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded")
		return nil
	}

	header := color.New(color.Bold).Sprintf("%-36s  %-19s  %8s  %6s  %6s  %6s  %10s  %6s  %s",
		"RUN ID", "STARTED", "DURATION", "FILES", "FULL", "TREE", "SIZE", "ERRORS", "ROOT")
	fmt.Fprintln(out, header)

	for _, run := range runs {
		errorsCol := fmt.Sprintf("%6d", run.ErrorCount)
		if run.ErrorCount > 0 {
			errorsCol = color.New(color.FgRed).Sprint(errorsCol)
		}
		fmt.Fprintf(out, "%-36s  %-19s  %8s  %6d  %6d  %6d  %10s  %s  %s\n",
			run.RunID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Duration.Round(time.Millisecond).String(),
			run.TotalFiles,
			run.FullFiles,
			run.TreeOnlyFiles,
			formatter.FormatSize(run.TotalBytes),
			errorsCol,
			run.RootPath,
		)
	}

	return nil
}
