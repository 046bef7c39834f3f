package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/nao1215/textsieve/internal/model"
)

// JSONWriter writes summaries as one JSON document per call, for scripts
// and other tools. HTML characters are left unescaped so cleaned text and
// file names read the same as in the input.
type JSONWriter struct {
	baseWriter

	prefix string
	indent string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent indents nested values with indent, each line starting with prefix.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.prefix = prefix
		w.indent = indent
	}
}

// WithPrettyPrint indents with two spaces.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter. Output is compact unless an indent
// option is given.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteCleaning implements Writer.
func (w *JSONWriter) WriteCleaning(summary *model.BatchSummary[*model.CleaningStats]) (int, error) {
	return w.WriteValue(summary)
}

// WriteAnalysis implements Writer.
func (w *JSONWriter) WriteAnalysis(summary *model.BatchSummary[*model.BadnessReport]) (int, error) {
	return w.WriteValue(summary)
}

// WriteTables implements Writer.
func (w *JSONWriter) WriteTables(summary *model.BatchSummary[*model.FileTableAnalysisResult]) (int, error) {
	return w.WriteValue(summary)
}

// WriteDistribution implements Writer.
func (w *JSONWriter) WriteDistribution(dist *model.BadnessDistribution) (int, error) {
	return w.WriteValue(dist)
}

// WriteValue encodes v followed by a newline. It serves results that are
// not batch summaries, such as the run list of the stats command.
func (w *JSONWriter) WriteValue(v any) (int, error) {
	counter := &countingWriter{w: w.output}
	enc := json.NewEncoder(counter)
	enc.SetEscapeHTML(false)
	if w.indent != "" || w.prefix != "" {
		enc.SetIndent(w.prefix, w.indent)
	}
	if err := enc.Encode(v); err != nil {
		return counter.n, fmt.Errorf("failed to write JSON report: %w", err)
	}
	return counter.n, nil
}
