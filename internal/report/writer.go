package report

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/nao1215/textsieve/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Writer defines the interface for report output.
// Implementations render batch summaries in various formats.
type Writer interface {
	// WriteCleaning outputs the summary of a clean batch.
	WriteCleaning(summary *model.BatchSummary[*model.CleaningStats]) (int, error)

	// WriteAnalysis outputs per-file badness reports.
	WriteAnalysis(summary *model.BatchSummary[*model.BadnessReport]) (int, error)

	// WriteTables outputs per-file table analysis results.
	WriteTables(summary *model.BatchSummary[*model.FileTableAnalysisResult]) (int, error)

	// WriteDistribution outputs a badness distribution.
	WriteDistribution(dist *model.BadnessDistribution) (int, error)
}

// Format names an output format.
type Format string

// Supported output formats.
const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
)

// Formats returns the supported format names.
func Formats() []string {
	return []string{string(FormatText), string(FormatJSON), string(FormatMarkdown), string(FormatCSV)}
}

// NewWriter returns the Writer for format.
func NewWriter(format Format, output io.Writer) (Writer, error) {
	switch format {
	case FormatText, "":
		return NewTextWriter(output), nil
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint()), nil
	case FormatMarkdown:
		return NewMarkdownWriter(output), nil
	case FormatCSV:
		return NewCSVWriter(output), nil
	default:
		return nil, fmt.Errorf("unknown report format %q (supported: %s)", format, strings.Join(Formats(), ", "))
	}
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// scriptCodes returns the script codes present in any report, sorted.
func scriptCodes(reports map[string]*model.BadnessReport) []string {
	var codes []string
	for _, r := range reports {
		if r == nil {
			continue
		}
		for code := range r.ScriptPercentages {
			if !slices.Contains(codes, code) {
				codes = append(codes, code)
			}
		}
	}
	slices.Sort(codes)
	return codes
}

// scriptColumn returns the column header for a script percentage.
func scriptColumn(code string) string {
	// A Caser keeps state, so each call gets its own.
	return cases.Title(language.English).String(code) + " %"
}

// percent formats a percentage with two decimals.
func percent(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// score formats a badness score with four decimals.
func score(v float64) string {
	return fmt.Sprintf("%.4f", v)
}
