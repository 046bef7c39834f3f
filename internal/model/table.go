package model

// TableIssue is one structural problem found while scanning a Markdown table.
type TableIssue struct {
	// LineNumber is the 1-based line where the issue was found.
	LineNumber int `json:"line_number"`

	// Description is a short human-readable explanation.
	Description string `json:"description"`

	// ExpectedColumns is the column count the line should have had, if applicable.
	ExpectedColumns *int `json:"expected_columns,omitempty"`

	// FoundColumns is the column count the line actually had, if applicable.
	FoundColumns *int `json:"found_columns,omitempty"`
}

// NewTableIssue creates an issue without column information.
func NewTableIssue(line int, description string) TableIssue {
	return TableIssue{LineNumber: line, Description: description}
}

// NewColumnIssue creates an issue that records a column count mismatch.
func NewColumnIssue(line int, description string, expected, found int) TableIssue {
	return TableIssue{
		LineNumber:      line,
		Description:     description,
		ExpectedColumns: &expected,
		FoundColumns:    &found,
	}
}

// TableInfo describes one detected table block.
type TableInfo struct {
	// StartLine is the 1-based line of the header row.
	StartLine int `json:"start_line"`

	// EndLine is the 1-based line of the last data row,
	// or of the separator when the table has no data rows.
	EndLine int `json:"end_line"`

	// Rows is the number of data rows below the separator.
	Rows int `json:"rows"`

	// Columns is the column count taken from the separator line.
	Columns int `json:"columns"`

	// IsWellFormed is true when the table has no issues.
	IsWellFormed bool `json:"is_well_formed"`

	// Issues lists every problem found in this table.
	Issues []TableIssue `json:"issues"`
}

// FileTableAnalysisResult aggregates the tables found in one file.
type FileTableAnalysisResult struct {
	// FilePath is the analyzed file. Empty when text was analyzed directly.
	FilePath string `json:"file_path"`

	// TotalTables is the number of table blocks.
	TotalTables int `json:"total_tables"`

	// WellFormedTables is the number of tables without issues.
	WellFormedTables int `json:"well_formed_tables"`

	// BadlyFormedTables is the number of tables with at least one issue.
	BadlyFormedTables int `json:"badly_formed_tables"`

	// TablesInfo lists every table block in document order.
	TablesInfo []TableInfo `json:"tables_info"`

	// OrphanSeparators lists separator lines that had no header row.
	// They are not counted as tables unless the analyzer was told to.
	OrphanSeparators []TableIssue `json:"orphan_separators,omitempty"`

	// ErrorMessage is set when the file could not be analyzed.
	ErrorMessage string `json:"error_message,omitempty"`
}

// NewFileTableAnalysisResult creates an empty result for path.
func NewFileTableAnalysisResult(path string) *FileTableAnalysisResult {
	return &FileTableAnalysisResult{
		FilePath:   path,
		TablesInfo: make([]TableInfo, 0),
	}
}

// AddTable appends a table and updates the counters.
func (r *FileTableAnalysisResult) AddTable(info TableInfo) {
	r.TablesInfo = append(r.TablesInfo, info)
	r.TotalTables++
	if info.IsWellFormed {
		r.WellFormedTables++
	} else {
		r.BadlyFormedTables++
	}
}

// Reconciled reports whether well-formed and badly formed counts add up to the total.
func (r *FileTableAnalysisResult) Reconciled() bool {
	return r.WellFormedTables+r.BadlyFormedTables == r.TotalTables &&
		r.TotalTables == len(r.TablesInfo)
}

// IssueCount returns the number of issues across all tables and orphan separators.
func (r *FileTableAnalysisResult) IssueCount() int {
	n := len(r.OrphanSeparators)
	for _, t := range r.TablesInfo {
		n += len(t.Issues)
	}
	return n
}
