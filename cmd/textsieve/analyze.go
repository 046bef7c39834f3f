package main

import (
	"fmt"
	"os"

	"github.com/nao1215/textsieve/internal/badness"
	"github.com/nao1215/textsieve/internal/batch"
	"github.com/nao1215/textsieve/internal/model"
	"github.com/nao1215/textsieve/internal/report"
	"github.com/spf13/cobra"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <input-dir-or-file>",
		Short: "Score the extraction quality of documents",
		Long: `Analyze computes a badness score for each document without modifying it.

The badness score is the share of visible characters that cleaning would
remove, from 0 (clean) to 1 (nothing but artifacts). The report also lists
the percentage of surviving characters per requested script.

Examples:
  # Analyze a directory tree
  textsieve analyze ./extracted

  # Analyze a single file for Greek text
  textsieve analyze ./extracted/page-001.md -s gre

  # Export per-file scores as CSV
  textsieve analyze ./extracted --csv -r scores.csv`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyzeCmd,
	}

	addScriptFlag(cmd)
	addBatchFlags(cmd)
	addReportFlags(cmd, true)

	return cmd
}

// runAnalyzeCmd executes the analyze command.
func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
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

	info, err := os.Stat(cfg.InputDir)
	if err != nil {
		return fmt.Errorf("failed to access input: %w", err)
	}

	var (
		summary *model.BatchSummary[*model.BadnessReport]
		runErr  error
	)
	if info.IsDir() {
		summary, runErr = batch.Analyze(ctx, cfg.InputDir, cfg.Scripts, cfg.Workers, batchOptions(cfg, logger)...)
		if summary == nil {
			return runErr
		}
	} else {
		summary, err = analyzeFile(cfg.InputDir, cfg.Scripts)
		if err != nil {
			return err
		}
	}

	if err := writeReport(cmd, cfg, func(w report.Writer) error {
		_, err := w.WriteAnalysis(summary)
		return err
	}); err != nil {
		return err
	}
	return runErr
}

// analyzeFile analyzes a single file and wraps the report in a summary.
func analyzeFile(path string, scripts []string) (*model.BatchSummary[*model.BadnessReport], error) {
	content, err := os.ReadFile(path) //nolint:gosec // User-provided input path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	rep, err := badness.Analyze(string(content), scripts)
	if err != nil {
		return nil, err
	}

	summary := model.NewBatchSummary[*model.BadnessReport]()
	summary.TotalFilesFound = 1
	summary.FilesProcessed = 1
	summary.PerFileResults[path] = rep
	summary.Status = model.StatusCompleted
	summary.Message = model.CompletedMessage(1, 0)
	return summary, nil
}
