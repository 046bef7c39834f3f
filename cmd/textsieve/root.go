package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for textsieve.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "textsieve",
		Short: "Text quality analysis and cleaning for extracted documents",
		Long: `textsieve inspects and repairs text extracted from PDFs and other documents.

It strips markup and glyph placeholders, removes characters outside the
allowed scripts, marks lines that lost content, scores each document's
"badness", and reports malformed Markdown tables. Directories are processed
concurrently; a failing file never stops the batch.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .textsieve in current or home directory)")

	cmd.AddCommand(NewCleanCmd())
	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewTablesCmd())
	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewStatsCmd())
	cmd.AddCommand(NewScriptsCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
