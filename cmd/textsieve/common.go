package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/nao1215/textsieve/internal/batch"
	"github.com/nao1215/textsieve/internal/config"
	applog "github.com/nao1215/textsieve/internal/log"
	"github.com/nao1215/textsieve/internal/report"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// errOutputDirRequired is returned by commands that write documents without -o.
var errOutputDirRequired = errors.New("output directory is required (use -o)")

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// getConfigFlag retrieves the config file path from the command or its parent.
func getConfigFlag(cmd *cobra.Command) string {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		path, err = cmd.Root().PersistentFlags().GetString("config")
		if err != nil {
			return ""
		}
	}
	return path
}

// setupLogger creates the structured logger for CLI commands.
// Logs go to stderr so reports written to stdout stay machine-readable.
func setupLogger(verbose bool) *slog.Logger {
	return applog.NewLogger(os.Stderr, verbose)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// addBatchFlags registers the flags shared by the directory commands.
func addBatchFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("workers", "w", config.NewConfig().Workers,
		"Number of files processed concurrently")
	cmd.Flags().StringSlice("ext", []string{config.DefaultExtension},
		"File extensions to process")
	cmd.Flags().Float64("max-files-per-second", config.DefaultMaxFilesPerSecond,
		"Start at most this many files per second (0 = unlimited)")
}

// addScriptFlag registers the allowed scripts flag.
func addScriptFlag(cmd *cobra.Command) {
	cmd.Flags().StringSliceP("scripts", "s", config.DefaultScripts(),
		"Allowed script codes (see 'textsieve scripts')")
}

// addReportFlags registers the report format and destination flags.
func addReportFlags(cmd *cobra.Command, csv bool) {
	cmd.Flags().BoolP("json", "j", false, "Output JSON report")
	cmd.Flags().BoolP("markdown", "m", false, "Output Markdown report")
	if csv {
		cmd.Flags().Bool("csv", false, "Output CSV report")
	}
	cmd.Flags().StringP("report", "r", "",
		"Write report to specified file path (creates directories if needed)")
}

// buildConfig creates a Config from defaults, the configuration file,
// and the flags the user set explicitly, in that order of precedence.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)
	cfg.ConfigFilePath = getConfigFlag(cmd)

	// An explicitly named file must exist; the implicit search may find nothing.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.Apply(cfg)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if err := applyFlags(cmd.Flags(), cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlags copies every flag the user changed into cfg.
// Flags a command does not define are never reported as changed.
func applyFlags(flags *pflag.FlagSet, cfg *config.Config) error {
	var errs []error
	get := func(name string, apply func() error) {
		if flags.Changed(name) {
			errs = append(errs, apply())
		}
	}

	get("scripts", func() (err error) { cfg.Scripts, err = flags.GetStringSlice("scripts"); return })
	get("workers", func() (err error) { cfg.Workers, err = flags.GetInt("workers"); return })
	get("ext", func() (err error) { cfg.Extensions, err = flags.GetStringSlice("ext"); return })
	get("max-files-per-second", func() (err error) {
		cfg.MaxFilesPerSecond, err = flags.GetFloat64("max-files-per-second")
		return
	})
	get("orphans-as-malformed", func() (err error) {
		cfg.OrphansAsMalformed, err = flags.GetBool("orphans-as-malformed")
		return
	})
	get("remove-tables", func() (err error) { cfg.RemoveTables, err = flags.GetBool("remove-tables"); return })
	get("only-malformed", func() (err error) { cfg.OnlyMalformed, err = flags.GetBool("only-malformed"); return })
	get("normalize", func() (err error) { cfg.Normalize, err = flags.GetBool("normalize"); return })
	get("badness-threshold", func() (err error) {
		cfg.BadnessThreshold, err = flags.GetFloat64("badness-threshold")
		return
	})
	get("greek-threshold", func() (err error) {
		cfg.GreekThreshold, err = flags.GetFloat64("greek-threshold")
		return
	})
	get("json", func() (err error) { cfg.JSONReport, err = flags.GetBool("json"); return })
	get("markdown", func() (err error) { cfg.MarkdownReport, err = flags.GetBool("markdown"); return })
	get("csv", func() (err error) { cfg.CSVReport, err = flags.GetBool("csv"); return })
	get("report", func() (err error) { cfg.ReportFile, err = flags.GetString("report"); return })
	get("output", func() (err error) { cfg.OutputDir, err = flags.GetString("output"); return })
	get("db-dir", func() (err error) { cfg.DBDir, err = flags.GetString("db-dir"); return })
	get("no-db", func() error {
		noDB, err := flags.GetBool("no-db")
		cfg.SaveToDB = !noDB
		return err
	})
	get("listen", func() (err error) { cfg.ListenAddress, err = flags.GetString("listen"); return })
	get("rate-limit", func() (err error) { cfg.RequestsPerSecond, err = flags.GetFloat64("rate-limit"); return })
	get("burst", func() (err error) { cfg.RequestBurst, err = flags.GetInt("burst"); return })
	get("max-body-bytes", func() (err error) { cfg.MaxBodyBytes, err = flags.GetInt64("max-body-bytes"); return })

	return errors.Join(errs...)
}

// batchOptions converts cfg into batch processor options.
func batchOptions(cfg *config.Config, logger *slog.Logger) []batch.Option {
	return []batch.Option{
		batch.WithConcurrency(cfg.Workers),
		batch.WithExtensions(cfg.Extensions...),
		batch.WithRateLimit(cfg.MaxFilesPerSecond),
		batch.WithLogger(logger),
	}
}

// reportFormat returns the format selected in cfg.
func reportFormat(cfg *config.Config) report.Format {
	switch {
	case cfg.JSONReport:
		return report.FormatJSON
	case cfg.MarkdownReport:
		return report.FormatMarkdown
	case cfg.CSVReport:
		return report.FormatCSV
	default:
		return report.FormatText
	}
}

// newReportWriter returns the report writer selected in cfg.
func newReportWriter(cfg *config.Config, output io.Writer) (report.Writer, error) {
	if reportFormat(cfg) == report.FormatText {
		return report.NewTextWriter(output, report.WithVerbose(cfg.Verbose)), nil
	}
	return report.NewWriter(reportFormat(cfg), output)
}

// openReportOutput returns the report destination: the report file when
// set, otherwise the command's stdout. The returned close function is
// always safe to call.
func openReportOutput(cmd *cobra.Command, cfg *config.Config) (io.Writer, func() error, error) {
	if cfg.ReportFile == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}

	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

// writeReport opens the report destination, hands a writer to fn and
// closes the destination.
func writeReport(cmd *cobra.Command, cfg *config.Config, fn func(report.Writer) error) (err error) {
	output, closeFn, err := openReportOutput(cmd, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeFn(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close report file: %w", cerr)
		}
	}()

	w, err := newReportWriter(cfg, output)
	if err != nil {
		return err
	}
	return fn(w)
}
