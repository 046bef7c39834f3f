package table

import (
	"regexp"
	"strings"

	"github.com/nao1215/textsieve/internal/cleaner"
	"github.com/nao1215/textsieve/internal/model"
)

// Issue descriptions.
const (
	IssueHeaderMismatch  = "Table header and separator column count mismatch"
	IssueOrphanSeparator = "Table separator without header row"
	IssueInconsistentRow = "Table row has inconsistent column count"
)

var (
	// separatorPattern matches the line below a table header: |---|:--:|
	separatorPattern = regexp.MustCompile(`^\s*\|\s*[-:]+\s*\|`)

	// rowPattern matches any pipe-delimited line.
	rowPattern = regexp.MustCompile(`^\s*\|.*\|\s*$`)
)

// Option configures Analyze.
type Option func(*options)

type options struct {
	orphansAsMalformed bool
}

// WithOrphansAsMalformed controls how separator lines without a header are
// counted. When false (the default) they are reported in OrphanSeparators
// and excluded from the table totals. When true each one also counts as a
// malformed table with no rows.
func WithOrphansAsMalformed(enabled bool) Option {
	return func(o *options) {
		o.orphansAsMalformed = enabled
	}
}

// ColumnCount returns the number of cells of a pipe-delimited line,
// or 0 when the trimmed line does not both start and end with a pipe.
func ColumnCount(line string) int {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 2 || !strings.HasPrefix(trimmed, "|") || !strings.HasSuffix(trimmed, "|") {
		return 0
	}
	return strings.Count(trimmed[1:len(trimmed)-1], "|") + 1
}

// IsSeparator reports whether line is a header separator.
func IsSeparator(line string) bool {
	return separatorPattern.MatchString(line)
}

// IsRow reports whether line is a pipe-delimited table row.
func IsRow(line string) bool {
	return rowPattern.MatchString(line)
}

// block is a detected table with 0-based line indexes.
type block struct {
	first, last int
	info        model.TableInfo
}

// scan walks the lines once and returns the table blocks and orphan separators.
// A line belongs to at most one block; a header cannot be a line that an
// earlier block already consumed.
func scan(lines []string) ([]block, []model.TableIssue) {
	var (
		blocks   []block
		orphans  []model.TableIssue
		cur      *block
		consumed = -1
	)

	closeBlock := func() {
		cur.info.EndLine = cur.last + 1
		cur.info.IsWellFormed = len(cur.info.Issues) == 0
		blocks = append(blocks, *cur)
		consumed = cur.last
		cur = nil
	}

	for i, line := range lines {
		if cur != nil {
			if IsRow(line) {
				cur.info.Rows++
				cur.last = i
				if cols := ColumnCount(line); cols != cur.info.Columns {
					cur.info.Issues = append(cur.info.Issues,
						model.NewColumnIssue(i+1, IssueInconsistentRow, cur.info.Columns, cols))
				}
				continue
			}
			closeBlock()
		}

		if !IsSeparator(line) {
			continue
		}

		if i == 0 || i-1 <= consumed || !IsRow(lines[i-1]) {
			orphans = append(orphans, model.NewTableIssue(i+1, IssueOrphanSeparator))
			continue
		}

		columns := ColumnCount(line)
		cur = &block{
			first: i - 1,
			last:  i,
			info: model.TableInfo{
				StartLine: i,
				Columns:   columns,
				Issues:    make([]model.TableIssue, 0),
			},
		}
		if header := ColumnCount(lines[i-1]); header != columns {
			cur.info.Issues = append(cur.info.Issues,
				model.NewColumnIssue(i+1, IssueHeaderMismatch, header, columns))
		}
	}
	if cur != nil {
		closeBlock()
	}

	return blocks, orphans
}

// splitLines splits text into lines without their '\r\n' or '\n' terminators.
func splitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// Analyze detects Markdown tables in text and classifies each one.
// Malformed tables are an outcome, never an error.
func Analyze(text string, opts ...Option) *model.FileTableAnalysisResult {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	lines := splitLines(text)
	blocks, orphans := scan(lines)

	result := model.NewFileTableAnalysisResult("")
	result.OrphanSeparators = orphans

	if !o.orphansAsMalformed {
		for _, b := range blocks {
			result.AddTable(b.info)
		}
		return result
	}

	// Merge orphan tables into document order.
	bi := 0
	for _, orphan := range orphans {
		for bi < len(blocks) && blocks[bi].info.StartLine < orphan.LineNumber {
			result.AddTable(blocks[bi].info)
			bi++
		}
		result.AddTable(model.TableInfo{
			StartLine:    orphan.LineNumber,
			EndLine:      orphan.LineNumber,
			Columns:      ColumnCount(lines[orphan.LineNumber-1]),
			IsWellFormed: false,
			Issues:       []model.TableIssue{orphan},
		})
	}
	for ; bi < len(blocks); bi++ {
		result.AddTable(blocks[bi].info)
	}
	return result
}

// Remove replaces each table block, header through last row, with a single
// missing-text marker line. When onlyMalformed is true, well-formed tables
// are kept. It returns the new text and the number of tables removed.
func Remove(text string, onlyMalformed bool) (string, int) {
	blocks, _ := scan(splitLines(text))
	if len(blocks) == 0 {
		return text, 0
	}

	trailingNewline := strings.HasSuffix(text, "\n")
	raw := strings.Split(strings.TrimSuffix(text, "\n"), "\n")

	out := make([]string, 0, len(raw))
	removed := 0
	next := 0
	for _, b := range blocks {
		if onlyMalformed && b.info.IsWellFormed {
			continue
		}
		out = append(out, raw[next:b.first]...)
		out = append(out, cleaner.Marker)
		next = b.last + 1
		removed++
	}
	out = append(out, raw[next:]...)

	result := strings.Join(out, "\n")
	if trailingNewline {
		result += "\n"
	}
	return result, removed
}
