package main

import (
	"fmt"

	"github.com/nao1215/textsieve/internal/config"
	"github.com/nao1215/textsieve/internal/server"
	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analyzers over HTTP",
		Long: `Serve starts an HTTP API for single texts:

  POST /v1/clean     {"text": "...", "scripts": ["lat"]}
  POST /v1/analyze   {"text": "...", "scripts": ["grc"]}
  POST /v1/tables    {"text": "...", "orphans_as_malformed": false}
  GET  /v1/scripts
  GET  /healthz

The server stops gracefully on SIGINT or SIGTERM.

Examples:
  # Listen on the default loopback address
  textsieve serve

  # Listen on all interfaces with a higher rate limit
  textsieve serve -l 0.0.0.0:8080 --rate-limit 100 --burst 200`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("listen", "l", config.DefaultListenAddress, "Listen address")
	cmd.Flags().Float64("rate-limit", config.DefaultRequestsPerSecond,
		"Requests per second (0 = unlimited)")
	cmd.Flags().Int("burst", config.DefaultRequestBurst, "Request burst size")
	cmd.Flags().Int64("max-body-bytes", config.DefaultMaxBodyBytes, "Maximum request body size")
	addScriptFlag(cmd)

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)
	ctx, cancel := signalContext(logger)
	defer cancel()

	srv := server.New(cfg.ListenAddress,
		server.WithLogger(logger),
		server.WithRateLimit(cfg.RequestsPerSecond, cfg.RequestBurst),
		server.WithMaxBodyBytes(cfg.MaxBodyBytes),
		server.WithShutdownTimeout(cfg.ShutdownTimeout),
		server.WithDefaultScripts(cfg.Scripts),
	)

	fmt.Fprintf(cmd.ErrOrStderr(), "Listening on %s\n", cfg.ListenAddress)
	return srv.Run(ctx)
}
