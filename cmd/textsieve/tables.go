package main

import (
	"fmt"

	"github.com/nao1215/textsieve/internal/batch"
	"github.com/nao1215/textsieve/internal/model"
	"github.com/nao1215/textsieve/internal/report"
	"github.com/nao1215/textsieve/internal/table"
	"github.com/spf13/cobra"
)

// NewTablesCmd creates the tables command.
func NewTablesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables <input-dir>",
		Short: "Find malformed Markdown tables",
		Long: `Tables detects Markdown tables in every eligible file and reports
whether each one is well formed.

A table is malformed when its header and separator disagree on the number
of columns, or when a data row has a different number of cells than the
separator. Separator lines without a header row are listed separately;
--orphans-as-malformed counts them as malformed tables instead.

Examples:
  # Report tables of a directory tree
  textsieve tables ./extracted

  # Show every issue with its line number
  textsieve tables ./extracted -v

  # Export the per-file summary as CSV
  textsieve tables ./extracted --csv -r tables.csv`,
		Args: cobra.ExactArgs(1),
		RunE: runTablesCmd,
	}

	cmd.Flags().Bool("orphans-as-malformed", false,
		"Count separator lines without a header row as malformed tables")
	addBatchFlags(cmd)
	addReportFlags(cmd, true)

	return cmd
}

// runTablesCmd executes the tables command.
func runTablesCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	cfg.InputDir = args[0]

	if err := cfg.ValidateBatch(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)
	ctx, cancel := signalContext(logger)
	defer cancel()

	op := batch.NewTableOperation(table.WithOrphansAsMalformed(cfg.OrphansAsMalformed))
	processor := batch.NewProcessor[*model.FileTableAnalysisResult](batchOptions(cfg, logger)...)

	summary, runErr := processor.Process(ctx, cfg.InputDir, op)
	if summary == nil {
		return runErr
	}

	if err := writeReport(cmd, cfg, func(w report.Writer) error {
		_, err := w.WriteTables(summary)
		return err
	}); err != nil {
		return err
	}
	return runErr
}
