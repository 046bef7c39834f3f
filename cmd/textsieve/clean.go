package main

import (
	"fmt"

	"github.com/nao1215/textsieve/internal/batch"
	"github.com/nao1215/textsieve/internal/report"
	"github.com/spf13/cobra"
)

// NewCleanCmd creates the clean command.
func NewCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean <input-dir>",
		Short: "Clean every document of a directory tree",
		Long: `Clean removes extraction artifacts from every eligible file below the
input directory and writes the result to the same relative path below the
output directory.

Markup tags, glyph placeholders (GLYPH<...>) and characters outside the
allowed scripts are removed. A line that lost at least five visible
characters gets a <!-- text-missing --> marker.

Examples:
  # Clean Markdown files keeping Latin and polytonic Greek
  textsieve clean ./extracted -o ./cleaned

  # Keep modern Greek and French, with 4 workers
  textsieve clean ./extracted -o ./cleaned -s gre,fra -w 4

  # Write a Markdown summary to a file
  textsieve clean ./extracted -o ./cleaned --markdown -r reports/clean.md`,
		Args: cobra.ExactArgs(1),
		RunE: runCleanCmd,
	}

	cmd.Flags().StringP("output", "o", "", "Output directory for cleaned files (required)")
	addScriptFlag(cmd)
	addBatchFlags(cmd)
	addReportFlags(cmd, true)

	return cmd
}

// runCleanCmd executes the clean command.
func runCleanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	cfg.InputDir = args[0]

	if err := cfg.ValidateBatch(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if cfg.OutputDir == "" {
		return errOutputDirRequired
	}

	logger := setupLogger(cfg.Verbose)
	ctx, cancel := signalContext(logger)
	defer cancel()

	summary, runErr := batch.Clean(ctx, cfg.InputDir, cfg.OutputDir, cfg.Scripts, cfg.Workers,
		batchOptions(cfg, logger)...)
	if summary == nil {
		return runErr
	}

	if err := writeReport(cmd, cfg, func(w report.Writer) error {
		_, err := w.WriteCleaning(summary)
		return err
	}); err != nil {
		return err
	}
	return runErr
}
