package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/nao1215/textsieve/internal/config"
	"github.com/nao1215/textsieve/internal/report"
	"github.com/nao1215/textsieve/internal/store"
	"github.com/spf13/cobra"
)

// errNoRuns is returned by stats when the database holds no run.
var errNoRuns = errors.New("no runs recorded yet (use 'textsieve run' first)")

// NewStatsCmd creates the stats command.
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats [run-id]",
		Short: "Show the badness distribution of a recorded run",
		Long: `Stats reads the metrics database and shows how the badness scores of a
run are distributed over ten buckets of width 0.1. It also counts the
documents that are both clean (badness below --badness-threshold) and
mostly Greek (at least --greek-threshold of their text).

Without a run ID the most recent run is shown.

Examples:
  # Distribution of the latest run
  textsieve stats

  # A specific run as a Markdown report with a pie chart
  textsieve stats 3f1c... --markdown

  # List recorded runs
  textsieve stats --list`,
		Args: cobra.MaximumNArgs(1),
		RunE: runStatsCmd,
	}

	addDBFlags(cmd)
	cmd.Flags().Float64("badness-threshold", config.DefaultBadnessThreshold, "Badness below which a document counts as clean")
	cmd.Flags().Float64("greek-threshold", config.DefaultGreekThreshold, "Greek ratio a clean document must reach")
	cmd.Flags().BoolP("list", "l", false, "List recorded runs instead")
	addReportFlags(cmd, true)

	return cmd
}

// runStatsCmd executes the stats command.
func runStatsCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	list, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}

	db, err := store.Open(cfg.DBDir, store.Options{EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if list {
		runs, err := db.ListRuns(ctx, 0)
		if err != nil {
			return err
		}
		return writeReport(cmd, cfg, func(w report.Writer) error {
			if jw, ok := w.(*report.JSONWriter); ok {
				_, err := jw.WriteValue(runs)
				return err
			}
			return writeRunList(cmd.OutOrStdout(), runs)
		})
	}

	var run *store.Run
	if len(args) == 1 {
		run, err = db.GetRun(ctx, args[0])
		if err == nil && run == nil {
			err = fmt.Errorf("%w: %s", store.ErrRunNotFound, args[0])
		}
	} else {
		run, err = db.LatestRun(ctx)
		if err == nil && run == nil {
			err = errNoRuns
		}
	}
	if err != nil {
		return err
	}

	dist, err := db.BadnessDistribution(ctx, run.ID, cfg.BadnessThreshold, cfg.GreekThreshold)
	if err != nil {
		return err
	}

	return writeReport(cmd, cfg, func(w report.Writer) error {
		_, err := w.WriteDistribution(dist)
		return err
	})
}

// writeRunList prints runs as an aligned table.
func writeRunList(out io.Writer, runs []*store.Run) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tSTARTED\tSTATUS\tPROCESSED\tERRORS\tINPUT")
	for _, run := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			run.ID,
			run.Kind,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Status,
			run.FilesProcessed,
			run.FilesWithErrors,
			run.InputDir,
		)
	}
	return tw.Flush()
}
