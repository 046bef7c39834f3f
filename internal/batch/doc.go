// Package batch runs a per-file operation over every eligible file of a
// directory tree with bounded concurrency.
//
// A Processor walks the input directory, hands each file to an Operation,
// writes any content the operation returns under the output directory, and
// collects structured results into a model.BatchSummary. A file that fails
// to read, process, or write is recorded in the summary; it never stops the
// rest of the batch.
//
// # Usage
//
//	summary, err := batch.Clean(ctx, "in", "out", []string{"lat", "grc"}, 4)
//	if err != nil {
//		return err
//	}
//	fmt.Println(summary.Message)
//
// Custom operations implement Operation; implementing FailureRecorder as
// well gives failed files an entry in PerFileResults.
package batch
