package batch

import "errors"

var (
	// ErrNotDirectory is returned when the batch input path is not a directory.
	ErrNotDirectory = errors.New("input path is not a directory")

	// ErrNoOutputDir is recorded for a file whose operation produced content
	// while the processor has no output directory to write it to.
	ErrNoOutputDir = errors.New("operation produced content but no output directory is configured")
)
