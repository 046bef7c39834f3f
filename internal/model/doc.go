// Package model defines the data structures shared across textsieve.
//
// This package contains the following main types:
//   - BadnessReport: quality metrics of one text
//   - TableIssue, TableInfo, FileTableAnalysisResult: Markdown table analysis
//   - BatchSummary: the aggregate outcome of a directory batch
//   - BadnessDistribution: badness scores bucketed for the stats report
//   - Document: the unit of work passed between pipeline steps
//
// Models live in their own package because the analyzers, the batch
// processor, the store, and the report writers all need them.
//
// All types serialize to JSON for reports and database storage.
package model
