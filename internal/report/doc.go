// Package report renders batch summaries and badness distributions.
//
// This package contains writers for different output formats:
//   - TextWriter: human-readable text output for terminal display
//   - JSONWriter: structured JSON output for tool integration
//   - MarkdownWriter: Markdown with tables and a mermaid pie chart
//   - CSVWriter: one row per file for spreadsheets
//
// Writers implement the Writer interface; NewWriter selects one by name.
package report
