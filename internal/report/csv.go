package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/textsieve/internal/model"
)

// CSVWriter outputs one row per file, for spreadsheets and scripts.
// Files that failed appear with their error in the last column where the
// layout has one.
type CSVWriter struct {
	baseWriter

	// comma is the field delimiter.
	comma rune
}

// CSVWriterOption configures a CSVWriter.
type CSVWriterOption func(*CSVWriter)

// WithDelimiter sets the field delimiter, for example '\t' for TSV.
func WithDelimiter(comma rune) CSVWriterOption {
	return func(w *CSVWriter) {
		w.comma = comma
	}
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer, opts ...CSVWriterOption) *CSVWriter {
	w := &CSVWriter{
		baseWriter: newBaseWriter(output),
		comma:      ',',
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteCleaning writes the removal counts of each cleaned file.
func (w *CSVWriter) WriteCleaning(summary *model.BatchSummary[*model.CleaningStats]) (int, error) {
	rows := make([][]string, 0, len(summary.PerFileResults)+len(summary.Errors))
	for _, path := range summary.Paths() {
		s := summary.PerFileResults[path]
		rows = append(rows, []string{
			path,
			strconv.Itoa(s.TagChars),
			strconv.Itoa(s.GlyphChars),
			strconv.Itoa(s.UnusualChars),
			strconv.Itoa(s.MarkersAdded),
			"",
		})
	}
	for _, path := range summary.ErrorPaths() {
		rows = append(rows, []string{path, "", "", "", "", summary.Errors[path]})
	}
	return w.write([]string{"File Name", "Tag Chars", "Glyph Chars", "Unusual Chars", "Markers Added", "Error"}, rows)
}

// WriteAnalysis writes the badness score and the Greek and Latin shares of each file.
func (w *CSVWriter) WriteAnalysis(summary *model.BatchSummary[*model.BadnessReport]) (int, error) {
	rows := make([][]string, 0, len(summary.PerFileResults))
	for _, path := range summary.Paths() {
		r := summary.PerFileResults[path]
		rows = append(rows, []string{
			path,
			score(r.BadnessScore),
			percent(r.GreekPercentage()),
			percent(r.LatinPercentage()),
		})
	}
	return w.write([]string{"File Name", "Badness", "Greek Percentage", "Latin Percentage"}, rows)
}

// WriteTables writes the table counts of each file.
func (w *CSVWriter) WriteTables(summary *model.BatchSummary[*model.FileTableAnalysisResult]) (int, error) {
	rows := make([][]string, 0, len(summary.PerFileResults))
	for _, path := range summary.Paths() {
		r := summary.PerFileResults[path]
		rows = append(rows, []string{
			path,
			strconv.Itoa(r.TotalTables),
			strconv.Itoa(r.WellFormedTables),
			strconv.Itoa(r.BadlyFormedTables),
			r.ErrorMessage,
		})
	}
	return w.write([]string{"File Name", "Total Tables", "Well Formed", "Malformed", "Error"}, rows)
}

// WriteDistribution writes one row per badness bucket.
func (w *CSVWriter) WriteDistribution(dist *model.BadnessDistribution) (int, error) {
	rows := make([][]string, 0, model.DistributionBuckets)
	for i, n := range dist.Buckets {
		rows = append(rows, []string{model.BucketLabel(i), strconv.Itoa(n)})
	}
	return w.write([]string{"Badness Range", "Documents"}, rows)
}

// write emits the header and rows and returns the number of bytes written.
func (w *CSVWriter) write(header []string, rows [][]string) (int, error) {
	counter := &countingWriter{w: w.output}
	cw := csv.NewWriter(counter)
	cw.Comma = w.comma

	if err := cw.Write(header); err != nil {
		return counter.n, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for i, row := range rows {
		if err := cw.Write(row); err != nil {
			return counter.n, fmt.Errorf("failed to write CSV row %d: %w", i, err)
		}
	}

	cw.Flush()
	return counter.n, cw.Error()
}

// countingWriter counts the bytes passed through to w.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
