package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/textsieve/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// WriteCleaning outputs the clean summary in Markdown format.
func (w *MarkdownWriter) WriteCleaning(summary *model.BatchSummary[*model.CleaningStats]) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Cleaning Report")
	md.PlainText("")
	writeBatchSummary(md, summary.Status, summary.Message, summary.TotalFilesFound, summary.FilesProcessed, summary.FilesWithErrors)

	if len(summary.PerFileResults) > 0 {
		md.H2("Files")
		md.PlainText("")

		rows := make([][]string, 0, len(summary.PerFileResults))
		for _, path := range summary.Paths() {
			s := summary.PerFileResults[path]
			rows = append(rows, []string{
				"`" + path + "`",
				strconv.Itoa(s.TagChars),
				strconv.Itoa(s.GlyphChars),
				strconv.Itoa(s.UnusualChars),
				strconv.Itoa(s.MarkersAdded),
			})
		}
		md.Table(markdown.TableSet{
			Header: []string{"File", "Tag Chars", "Glyph Chars", "Unusual Chars", "Markers"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	writeErrors(md, summary.ErrorPaths(), summary.Errors)
	writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteAnalysis outputs per-file badness reports in Markdown format.
func (w *MarkdownWriter) WriteAnalysis(summary *model.BatchSummary[*model.BadnessReport]) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Badness Report")
	md.PlainText("")
	writeBatchSummary(md, summary.Status, summary.Message, summary.TotalFilesFound, summary.FilesProcessed, summary.FilesWithErrors)

	if len(summary.PerFileResults) > 0 {
		md.H2("Files")
		md.PlainText("")

		codes := scriptCodes(summary.PerFileResults)
		header := []string{"File", "Badness", "Bad Chars", "Good Chars"}
		for _, code := range codes {
			header = append(header, scriptColumn(code))
		}

		rows := make([][]string, 0, len(summary.PerFileResults))
		for _, path := range summary.Paths() {
			r := summary.PerFileResults[path]
			row := []string{
				"`" + path + "`",
				score(r.BadnessScore),
				strconv.Itoa(r.BadCharCount),
				strconv.Itoa(r.GoodCharCount),
			}
			for _, code := range codes {
				row = append(row, percent(r.Percentage(code)))
			}
			rows = append(rows, row)
		}
		md.Table(markdown.TableSet{
			Header: header,
			Rows:   rows,
		})
		md.PlainText("")
	}

	writeErrors(md, summary.ErrorPaths(), summary.Errors)
	writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteTables outputs per-file table analysis results in Markdown format,
// with the issues of every malformed table.
func (w *MarkdownWriter) WriteTables(summary *model.BatchSummary[*model.FileTableAnalysisResult]) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Table Report")
	md.PlainText("")
	writeBatchSummary(md, summary.Status, summary.Message, summary.TotalFilesFound, summary.FilesProcessed, summary.FilesWithErrors)

	paths := summary.Paths()
	if len(paths) > 0 {
		md.H2("Files")
		md.PlainText("")

		rows := make([][]string, 0, len(paths))
		for _, path := range paths {
			r := summary.PerFileResults[path]
			rows = append(rows, []string{
				"`" + path + "`",
				strconv.Itoa(r.TotalTables),
				strconv.Itoa(r.WellFormedTables),
				strconv.Itoa(r.BadlyFormedTables),
				strconv.Itoa(len(r.OrphanSeparators)),
			})
		}
		md.Table(markdown.TableSet{
			Header: []string{"File", "Tables", "Well Formed", "Malformed", "Orphan Separators"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	for _, path := range paths {
		r := summary.PerFileResults[path]
		if r.IssueCount() == 0 {
			continue
		}
		md.PlainText("### " + path)
		md.PlainText("")
		md.Table(markdown.TableSet{
			Header: []string{"Line", "Issue", "Expected Columns", "Found Columns"},
			Rows:   issueRows(r),
		})
		md.PlainText("")
	}

	writeErrors(md, summary.ErrorPaths(), summary.Errors)
	writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteDistribution outputs a bucket table and a mermaid pie chart.
func (w *MarkdownWriter) WriteDistribution(dist *model.BadnessDistribution) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Badness Distribution")
	md.PlainText("")

	rows := make([][]string, 0, model.DistributionBuckets+2)
	for i, n := range dist.Buckets {
		rows = append(rows, []string{model.BucketLabel(i), strconv.Itoa(n)})
	}
	rows = append(rows, []string{"**Total**", "**" + strconv.Itoa(dist.Total) + "**"})
	md.Table(markdown.TableSet{
		Header: []string{"Badness", "Documents"},
		Rows:   rows,
	})
	md.PlainText("")

	if dist.Total > 0 {
		chart := piechart.NewPieChart(
			io.Discard,
			piechart.WithTitle("Documents by Badness"),
			piechart.WithShowData(true),
		)
		for i, n := range dist.Buckets {
			if n > 0 {
				chart.LabelAndIntValue(model.BucketLabel(i), uint64(n))
			}
		}
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}

	md.Note(fmt.Sprintf("%d of %d documents have badness below %.2f and at least %.0f%% Greek text.",
		dist.CleanGreek, dist.Total, dist.BadnessThreshold, dist.GreekThreshold*100))
	md.PlainText("")
	writeFooter(md)

	return len(md.String()), md.Build()
}

// writeBatchSummary writes the counters table and an alert for the outcome.
func writeBatchSummary(md *markdown.Markdown, status, message string, found, processed, failed int) {
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Status", statusText(status)},
			{"Files Found", strconv.Itoa(found)},
			{"Files Processed", strconv.Itoa(processed)},
			{"Files With Errors", strconv.Itoa(failed)},
		},
	})
	md.PlainText("")

	switch {
	case status == model.StatusCancelled:
		md.Warningf("Processing was cancelled. %s", message)
	case failed > 0:
		md.Cautionf("%d file(s) could not be processed.", failed)
	case found == 0:
		md.Note(message)
	default:
		md.Tip(message)
	}
	md.PlainText("")
}

// statusText returns the status with a visual indicator.
func statusText(status string) string {
	switch status {
	case model.StatusCompleted:
		return "✅ Completed"
	case model.StatusSuccess:
		return "✅ Nothing to do"
	case model.StatusCancelled:
		return "⚠️ Cancelled (partial results)"
	default:
		return status
	}
}

// issueRows returns one table row per issue, orphan separators included.
func issueRows(r *model.FileTableAnalysisResult) [][]string {
	var rows [][]string
	add := func(issue model.TableIssue) {
		rows = append(rows, []string{
			strconv.Itoa(issue.LineNumber),
			issue.Description,
			optionalInt(issue.ExpectedColumns),
			optionalInt(issue.FoundColumns),
		})
	}
	for _, info := range r.TablesInfo {
		for _, issue := range info.Issues {
			add(issue)
		}
	}
	// Orphans already listed as tables are not repeated.
	for _, orphan := range r.OrphanSeparators {
		if !listedAsTable(r, orphan.LineNumber) {
			add(orphan)
		}
	}
	return rows
}

// listedAsTable reports whether a table starting at line exists in r.
func listedAsTable(r *model.FileTableAnalysisResult, line int) bool {
	for _, info := range r.TablesInfo {
		if info.StartLine == line {
			return true
		}
	}
	return false
}

func optionalInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

// writeErrors lists failed files with their error.
func writeErrors(md *markdown.Markdown, paths []string, errs map[string]string) {
	if len(paths) == 0 {
		return
	}
	md.H2("Errors")
	md.PlainText("")
	items := make([]string, 0, len(paths))
	for _, path := range paths {
		items = append(items, "`"+path+"`: "+truncateString(errs[path], 120))
	}
	md.BulletList(items...)
	md.PlainText("")
}

// writeFooter writes the report footer.
func writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [textsieve](https://github.com/nao1215/textsieve)*")
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
