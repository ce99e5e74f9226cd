package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for repoquill
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repoquill",
		Short: "Snapshot a source tree into a single document",
		Long: `RepoQuill walks a project directory and produces one document containing
its structure and the content of its text files, ready to paste into a
review, a prompt or an archive.

Files are discovered honoring .gitignore rules, classified with include,
exclude and tree-only glob patterns, loaded, optionally stripped of comments
and normalized, then rendered as text, JSON, Markdown or HTML.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
		// main prints the returned error
		SilenceErrors: true,
	}

	cmd.AddCommand(NewScanCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
