package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/textsieve/internal/batch"
	"github.com/nao1215/textsieve/internal/config"
	"github.com/nao1215/textsieve/internal/model"
	"github.com/nao1215/textsieve/internal/pipeline"
	"github.com/nao1215/textsieve/internal/report"
	"github.com/nao1215/textsieve/internal/store"
	"github.com/spf13/cobra"
)

// runKindPipeline is the kind recorded for pipeline runs in the store.
const runKindPipeline = "pipeline"

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <input-dir>",
		Short: "Run the full processing pipeline and record metrics",
		Long: `Run processes every eligible file with the full pipeline:

  normalize       Unicode NFC normalization (disable with --normalize=false)
  clean           remove markup, glyph placeholders and out-of-script characters
  table_analysis  record every table and its issues
  table_removal   replace malformed (or all) tables with a missing-text marker
  analyze         score the badness of the final text

Processed documents are written below the output directory. Per-document
metrics are stored in the metrics database so 'textsieve stats' can show
the badness distribution of the run later.

Examples:
  # Process a directory and record metrics
  textsieve run ./extracted -o ./processed

  # Remove every table, not only malformed ones
  textsieve run ./extracted -o ./processed --only-malformed=false

  # Do not touch the database
  textsieve run ./extracted -o ./processed --no-db`,
		Args: cobra.ExactArgs(1),
		RunE: runRunCmd,
	}

	cmd.Flags().StringP("output", "o", "", "Output directory for processed files (required)")
	addScriptFlag(cmd)
	addBatchFlags(cmd)
	cmd.Flags().Bool("normalize", true, "Apply Unicode NFC normalization before cleaning")
	cmd.Flags().Bool("remove-tables", true, "Replace tables with a missing-text marker")
	cmd.Flags().Bool("only-malformed", true, "Only remove malformed tables")
	cmd.Flags().Bool("orphans-as-malformed", false,
		"Count separator lines without a header row as malformed tables")
	addDBFlags(cmd)
	cmd.Flags().Bool("no-db", false, "Do not record metrics in the database")
	addReportFlags(cmd, true)

	return cmd
}

// addDBFlags registers the metrics database location flag.
func addDBFlags(cmd *cobra.Command) {
	cmd.Flags().String("db-dir", "", "Metrics database directory (default: XDG data directory)")
}

// runRunCmd executes the run command.
func runRunCmd(cmd *cobra.Command, args []string) error {
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

	factory, err := pipelineFactory(cfg, logger)
	if err != nil {
		return err
	}

	var db *store.Store
	var run *store.Run
	if cfg.SaveToDB {
		db, err = store.Open(cfg.DBDir, store.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		run, err = db.StartRun(ctx, runKindPipeline, cfg.InputDir, cfg.Scripts)
		if err != nil {
			return err
		}
		logger.Info("run started", "run_id", run.ID, "db", db.Path())
	}

	opts := append(batchOptions(cfg, logger), batch.WithOutputDir(cfg.OutputDir))
	processor := batch.NewProcessor[*model.Document](opts...)
	summary, runErr := processor.Process(ctx, cfg.InputDir, pipeline.NewOperation(factory, logger))
	if summary == nil {
		return runErr
	}

	if db != nil {
		// The run is recorded even when the batch was cancelled.
		saveCtx := context.WithoutCancel(ctx)
		counts := store.RunCounts{
			Status:          summary.Status,
			FilesProcessed:  summary.FilesProcessed,
			FilesWithErrors: summary.FilesWithErrors,
			TotalFiles:      summary.TotalFilesFound,
		}
		if err := db.SaveDocuments(saveCtx, run.ID, summary.PerFileResults); err != nil {
			counts.Status = model.StatusFailed
			return errors.Join(fmt.Errorf("failed to save documents: %w", err), db.FinishRun(saveCtx, run.ID, counts))
		}
		if err := db.FinishRun(saveCtx, run.ID, counts); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Run ID: %s\n", run.ID)
	}

	if err := writeReport(cmd, cfg, func(w report.Writer) error {
		return writeRunReport(w, reportFormat(cfg), summary)
	}); err != nil {
		return err
	}
	return runErr
}

// pipelineFactory validates the pipeline configuration once and returns a
// factory building a fresh pipeline per file.
func pipelineFactory(cfg *config.Config, logger *slog.Logger) (func() *pipeline.Pipeline, error) {
	pipelineOpts := []pipeline.Option{pipeline.WithLogger(logger)}
	configOpts := []pipeline.DefaultOption{
		pipeline.WithScripts(cfg.Scripts),
		pipeline.WithNormalize(cfg.Normalize),
		pipeline.WithTableRemoval(cfg.RemoveTables, cfg.OnlyMalformed),
		pipeline.WithOrphanTables(cfg.OrphansAsMalformed),
	}

	if _, err := pipeline.Default(pipelineOpts, configOpts...); err != nil {
		return nil, err
	}

	return func() *pipeline.Pipeline {
		p, _ := pipeline.Default(pipelineOpts, configOpts...)
		return p
	}, nil
}

// writeRunReport writes the badness of the final documents and, for the
// human-readable formats, their table reports.
func writeRunReport(w report.Writer, format report.Format, summary *model.BatchSummary[*model.Document]) error {
	analysis := model.MapSummary(summary, func(doc *model.Document) (*model.BadnessReport, bool) {
		return doc.Badness, doc.Badness != nil
	})
	if _, err := w.WriteAnalysis(analysis); err != nil {
		return err
	}

	if format != report.FormatText && format != report.FormatMarkdown {
		return nil
	}

	tables := model.MapSummary(summary, func(doc *model.Document) (*model.FileTableAnalysisResult, bool) {
		return doc.Tables, doc.Tables != nil
	})
	_, err := w.WriteTables(tables)
	return err
}
