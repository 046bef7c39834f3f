// Package pipeline runs a document through an ordered list of processing
// steps.
//
// The standard sequence built by Default is: Unicode normalization, artifact
// cleaning, a table report taken on the cleaned text, removal of table
// blocks, and a final badness analysis of what remains. Each step reads
// model.Document.Text, may replace it, and attaches its own result.
//
// NewOperation adapts a pipeline factory into a batch.Operation so a whole
// directory can be processed with the batch package.
package pipeline
