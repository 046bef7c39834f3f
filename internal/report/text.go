package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/textsieve/internal/model"
)

// lineWidth is the width of section rules.
const lineWidth = 70

// TextWriter outputs human-readable text reports for terminal display.
type TextWriter struct {
	baseWriter

	// verbose lists table issues and every error in full.
	verbose bool
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) TextWriterOption {
	return func(w *TextWriter) {
		w.verbose = verbose
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// WriteCleaning outputs the clean summary.
func (w *TextWriter) WriteCleaning(summary *model.BatchSummary[*model.CleaningStats]) (int, error) {
	var sb strings.Builder

	writeTitle(&sb, "CLEANING REPORT")
	writeCounters(&sb, summary.Status, summary.Message, summary.TotalFilesFound, summary.FilesProcessed, summary.FilesWithErrors)

	var total model.CleaningStats
	for _, s := range summary.PerFileResults {
		total.TagChars += s.TagChars
		total.GlyphChars += s.GlyphChars
		total.UnusualChars += s.UnusualChars
		total.MarkersAdded += s.MarkersAdded
	}
	if len(summary.PerFileResults) > 0 {
		writeSection(&sb, "REMOVED")
		fmt.Fprintf(&sb, "  Tag chars:      %d\n", total.TagChars)
		fmt.Fprintf(&sb, "  Glyph chars:    %d\n", total.GlyphChars)
		fmt.Fprintf(&sb, "  Unusual chars:  %d\n", total.UnusualChars)
		fmt.Fprintf(&sb, "  Markers added:  %d\n", total.MarkersAdded)
		sb.WriteString("\n")
	}

	w.writeErrors(&sb, summary.ErrorPaths(), summary.Errors)
	writeRule(&sb, "=")

	return w.output.Write([]byte(sb.String()))
}

// WriteAnalysis outputs per-file badness reports.
func (w *TextWriter) WriteAnalysis(summary *model.BatchSummary[*model.BadnessReport]) (int, error) {
	var sb strings.Builder

	writeTitle(&sb, "BADNESS REPORT")
	writeCounters(&sb, summary.Status, summary.Message, summary.TotalFilesFound, summary.FilesProcessed, summary.FilesWithErrors)

	if len(summary.PerFileResults) > 0 {
		writeSection(&sb, "FILES")
		codes := scriptCodes(summary.PerFileResults)
		for _, path := range summary.Paths() {
			r := summary.PerFileResults[path]
			fmt.Fprintf(&sb, "  %s\n", path)
			fmt.Fprintf(&sb, "    badness %s (bad %d, good %d)", score(r.BadnessScore), r.BadCharCount, r.GoodCharCount)
			for _, code := range codes {
				fmt.Fprintf(&sb, "  %s %s%%", code, percent(r.Percentage(code)))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	w.writeErrors(&sb, summary.ErrorPaths(), summary.Errors)
	writeRule(&sb, "=")

	return w.output.Write([]byte(sb.String()))
}

// WriteTables outputs per-file table counts, and their issues when verbose.
func (w *TextWriter) WriteTables(summary *model.BatchSummary[*model.FileTableAnalysisResult]) (int, error) {
	var sb strings.Builder

	writeTitle(&sb, "TABLE REPORT")
	writeCounters(&sb, summary.Status, summary.Message, summary.TotalFilesFound, summary.FilesProcessed, summary.FilesWithErrors)

	var total, malformed int
	for _, r := range summary.PerFileResults {
		total += r.TotalTables
		malformed += r.BadlyFormedTables
	}

	if len(summary.PerFileResults) > 0 {
		writeSection(&sb, "TABLES")
		fmt.Fprintf(&sb, "  Total:      %d\n", total)
		fmt.Fprintf(&sb, "  Malformed:  %d\n\n", malformed)

		for _, path := range summary.Paths() {
			r := summary.PerFileResults[path]
			if r.ErrorMessage != "" {
				continue
			}
			marker := "[+]"
			if r.BadlyFormedTables > 0 || len(r.OrphanSeparators) > 0 {
				marker = "[!]"
			}
			fmt.Fprintf(&sb, "  %s %s: %d tables, %d malformed\n", marker, path, r.TotalTables, r.BadlyFormedTables)
			if !w.verbose {
				continue
			}
			for _, row := range issueRows(r) {
				fmt.Fprintf(&sb, "      line %s: %s (expected %s, found %s)\n", row[0], row[1], row[2], row[3])
			}
		}
		sb.WriteString("\n")
	}

	w.writeErrors(&sb, summary.ErrorPaths(), summary.Errors)
	writeRule(&sb, "=")

	return w.output.Write([]byte(sb.String()))
}

// WriteDistribution outputs the bucket counts with a bar per bucket.
func (w *TextWriter) WriteDistribution(dist *model.BadnessDistribution) (int, error) {
	var sb strings.Builder

	writeTitle(&sb, "BADNESS DISTRIBUTION")

	peak := 0
	for _, n := range dist.Buckets {
		peak = max(peak, n)
	}
	for i, n := range dist.Buckets {
		bar := ""
		if peak > 0 {
			bar = strings.Repeat("#", n*40/peak)
		}
		fmt.Fprintf(&sb, "  %s  %6d  %s\n", model.BucketLabel(i), n, bar)
	}
	fmt.Fprintf(&sb, "\n  Total documents: %d\n", dist.Total)
	fmt.Fprintf(&sb, "  Badness < %.2f and Greek >= %.0f%%: %d\n\n",
		dist.BadnessThreshold, dist.GreekThreshold*100, dist.CleanGreek)
	writeRule(&sb, "=")

	return w.output.Write([]byte(sb.String()))
}

// writeErrors lists failed files. Without verbose, only the first few are shown.
func (w *TextWriter) writeErrors(sb *strings.Builder, paths []string, errs map[string]string) {
	if len(paths) == 0 {
		return
	}
	writeSection(sb, "ERRORS")

	shown := paths
	if !w.verbose && len(shown) > 10 {
		shown = shown[:10]
	}
	for _, path := range shown {
		fmt.Fprintf(sb, "  [x] %s\n      %s\n", path, errs[path])
	}
	if len(shown) < len(paths) {
		fmt.Fprintf(sb, "  ... and %d more (use --verbose to list all)\n", len(paths)-len(shown))
	}
	sb.WriteString("\n")
}

func writeRule(sb *strings.Builder, char string) {
	sb.WriteString(strings.Repeat(char, lineWidth))
	sb.WriteString("\n")
}

func writeTitle(sb *strings.Builder, title string) {
	sb.WriteString("\n")
	writeRule(sb, "=")
	pad := max((lineWidth-len(title))/2, 0)
	sb.WriteString(strings.Repeat(" ", pad) + title + "\n")
	writeRule(sb, "=")
	sb.WriteString("\n")
}

func writeSection(sb *strings.Builder, title string) {
	writeRule(sb, "-")
	sb.WriteString(title + "\n")
	writeRule(sb, "-")
	sb.WriteString("\n")
}

// writeCounters writes the status block shared by all batch reports.
func writeCounters(sb *strings.Builder, status, message string, found, processed, failed int) {
	fmt.Fprintf(sb, "Status:            %s\n", status)
	fmt.Fprintf(sb, "Files found:       %d\n", found)
	fmt.Fprintf(sb, "Files processed:   %d\n", processed)
	fmt.Fprintf(sb, "Files with errors: %d\n", failed)
	fmt.Fprintf(sb, "\n%s\n\n", message)
}
