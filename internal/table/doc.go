// Package table detects Markdown tables in plain text and classifies each
// one as well-formed or malformed.
//
// Detection is a single pass over the lines with two states. While scanning,
// a separator line (|---|---|) directly below a pipe-delimited row opens a
// table; the row above becomes the header. Inside a table every following
// pipe-delimited line is a data row, and the first other line closes it.
//
// A table is malformed when its header and separator disagree on the
// column count, or when any data row has a different column count than
// the separator. Problems are reported as TableIssue values; malformed
// input never produces an error.
//
// A separator without a header row is reported in OrphanSeparators. Whether
// it also counts as a table is controlled by WithOrphansAsMalformed.
package table
