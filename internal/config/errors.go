package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoScripts is returned when no allowed script is configured.
	ErrNoScripts = errors.New("no scripts specified: provide at least one script code with --scripts")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")

	// ErrConflictingReportFormats is returned when more than one of
	// --json, --markdown and --csv is specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: choose one of --json, --markdown or --csv")

	// ErrInvalidThreshold is returned when a ratio threshold is outside [0, 1].
	ErrInvalidThreshold = errors.New("invalid threshold: must be between 0 and 1")

	// ErrInvalidRateLimit is returned when a rate limit is negative.
	ErrInvalidRateLimit = errors.New("invalid rate limit: must be non-negative")

	// ErrInvalidMaxBodyBytes is returned when the request body limit is negative.
	ErrInvalidMaxBodyBytes = errors.New("invalid max body size: must be non-negative")

	// ErrNoInputDir is returned when a batch command has no input directory.
	ErrNoInputDir = errors.New("no input directory specified")

	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)
