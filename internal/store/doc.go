// Package store persists batch runs and per-document quality metrics in
// SQLite (modernc.org/sqlite, no cgo).
//
// Each batch invocation is a run identified by a UUID. Documents are
// stored per run with a SHA3-256 content hash, the badness score, the
// Greek and Latin percentages, table counts, and the full reports as JSON.
// The Latin share is kept in the english_percentage column, the name the
// downstream corpus tooling reads.
//
// BadnessDistribution aggregates a run into ten score buckets for the
// stats report.
package store
