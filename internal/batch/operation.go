package batch

import "context"

// File is one eligible input file handed to an Operation.
type File struct {
	// Path is the file path as found under the input directory.
	Path string

	// RelPath is Path relative to the input directory.
	// Written output is placed at the same relative path under the output directory.
	RelPath string

	// Content is the file content.
	Content string
}

// Output is what an Operation produced for one file: new content to write,
// a structured result to collect, or both.
type Output[R any] struct {
	text      string
	hasText   bool
	result    R
	hasResult bool
}

// NewContent returns an Output carrying content to be written.
func NewContent[R any](text string) Output[R] {
	return Output[R]{text: text, hasText: true}
}

// NewResult returns an Output carrying a structured result.
func NewResult[R any](result R) Output[R] {
	return Output[R]{result: result, hasResult: true}
}

// NewContentResult returns an Output carrying both content and a result.
func NewContentResult[R any](text string, result R) Output[R] {
	return Output[R]{text: text, hasText: true, result: result, hasResult: true}
}

// Text returns the content to write, if any.
func (o Output[R]) Text() (string, bool) {
	return o.text, o.hasText
}

// Result returns the structured result, if any.
func (o Output[R]) Result() (R, bool) {
	return o.result, o.hasResult
}

// Operation is the per-file work run by a Processor.
// Apply is called concurrently from several goroutines and must not share
// mutable state between calls.
type Operation[R any] interface {
	// Name returns the operation name for logging.
	Name() string

	// Apply processes one file.
	Apply(ctx context.Context, f File) (Output[R], error)
}

// FailureRecorder is implemented by operations that want a result entry
// for files that failed. The returned value is stored in PerFileResults
// next to the error.
type FailureRecorder[R any] interface {
	Failed(f File, err error) R
}
