package model

import (
	"fmt"
	"slices"
)

// Batch statuses.
const (
	// StatusSuccess is reported when there was nothing to do.
	StatusSuccess = "success"

	// StatusCompleted is reported when every eligible file was attempted.
	StatusCompleted = "completed"

	// StatusCancelled is reported when the context ended before all files were attempted.
	StatusCancelled = "cancelled"

	// StatusFailed marks a stored run whose results could not be recorded.
	StatusFailed = "failed"
)

// NoFilesMessage is the summary message for a directory without eligible files.
const NoFilesMessage = "No markdown files found in input directory."

// BatchSummary aggregates the outcome of a batch operation over a directory.
// R is the per-file result type; operations that only write files leave
// PerFileResults empty.
type BatchSummary[R any] struct {
	// Status is one of StatusSuccess, StatusCompleted, or StatusCancelled.
	Status string `json:"status"`

	// Message is a human-readable summary line.
	Message string `json:"message"`

	// FilesProcessed is the number of files handled without error.
	FilesProcessed int `json:"files_processed"`

	// FilesWithErrors is the number of files that failed to read, process, or write.
	FilesWithErrors int `json:"files_with_errors"`

	// TotalFilesFound is the number of eligible files in the input directory.
	TotalFilesFound int `json:"total_files_found"`

	// PerFileResults maps file paths to their structured results.
	PerFileResults map[string]R `json:"per_file_results,omitempty"`

	// Errors maps file paths to the error that made them fail.
	Errors map[string]string `json:"errors,omitempty"`
}

// NewBatchSummary creates an empty summary with initialized maps.
func NewBatchSummary[R any]() *BatchSummary[R] {
	return &BatchSummary[R]{
		PerFileResults: make(map[string]R),
		Errors:         make(map[string]string),
	}
}

// CompletedMessage formats the summary line for a finished batch.
func CompletedMessage(processed, failed int) string {
	return fmt.Sprintf("Operation completed on %d files. Errors on %d files.", processed, failed)
}

// Paths returns the paths with a structured result, sorted.
func (s *BatchSummary[R]) Paths() []string {
	paths := make([]string, 0, len(s.PerFileResults))
	for p := range s.PerFileResults {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

// ErrorPaths returns the paths that failed, sorted.
func (s *BatchSummary[R]) ErrorPaths() []string {
	paths := make([]string, 0, len(s.Errors))
	for p := range s.Errors {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

// HasErrors reports whether any file failed.
func (s *BatchSummary[R]) HasErrors() bool {
	return s.FilesWithErrors > 0
}

// MapSummary converts the per-file results of a summary. Results for which
// fn returns false are left out; counters, status, and errors are copied.
func MapSummary[R, S any](s *BatchSummary[R], fn func(R) (S, bool)) *BatchSummary[S] {
	out := NewBatchSummary[S]()
	out.Status = s.Status
	out.Message = s.Message
	out.FilesProcessed = s.FilesProcessed
	out.FilesWithErrors = s.FilesWithErrors
	out.TotalFilesFound = s.TotalFilesFound
	for path, r := range s.PerFileResults {
		if v, ok := fn(r); ok {
			out.PerFileResults[path] = v
		}
	}
	for path, msg := range s.Errors {
		out.Errors[path] = msg
	}
	return out
}
