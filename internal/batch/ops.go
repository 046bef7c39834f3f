package batch

import (
	"context"

	"github.com/nao1215/textsieve/internal/badness"
	"github.com/nao1215/textsieve/internal/cleaner"
	"github.com/nao1215/textsieve/internal/model"
	"github.com/nao1215/textsieve/internal/script"
	"github.com/nao1215/textsieve/internal/table"
)

// CleanOperation removes artifacts from each file and writes the cleaned text.
type CleanOperation struct {
	allowed script.Set
	unusual script.Set
}

// NewCleanOperation resolves scripts once so that an unknown code fails
// before any file is touched.
func NewCleanOperation(scripts []string) (*CleanOperation, error) {
	allowed, err := script.AllowedSet(scripts)
	if err != nil {
		return nil, err
	}
	return &CleanOperation{allowed: allowed, unusual: script.Unusual()}, nil
}

// Name returns the operation name.
func (o *CleanOperation) Name() string {
	return "clean"
}

// Apply cleans one file.
func (o *CleanOperation) Apply(_ context.Context, f File) (Output[*model.CleaningStats], error) {
	r := cleaner.CleanWith(f.Content, o.allowed, o.unusual)
	stats := &model.CleaningStats{
		TagChars:     r.TagChars,
		GlyphChars:   r.GlyphChars,
		UnusualChars: r.UnusualChars,
		MarkersAdded: r.MarkersAdded,
	}
	return NewContentResult(r.Text, stats), nil
}

// AnalyzeOperation computes a badness report for each file.
type AnalyzeOperation struct {
	scripts []string
}

// NewAnalyzeOperation validates scripts and returns the operation.
func NewAnalyzeOperation(scripts []string) (*AnalyzeOperation, error) {
	if _, err := script.AllowedSet(scripts); err != nil {
		return nil, err
	}
	return &AnalyzeOperation{scripts: scripts}, nil
}

// Name returns the operation name.
func (o *AnalyzeOperation) Name() string {
	return "analyze"
}

// Apply analyzes one file.
func (o *AnalyzeOperation) Apply(_ context.Context, f File) (Output[*model.BadnessReport], error) {
	report, err := badness.Analyze(f.Content, o.scripts)
	if err != nil {
		return Output[*model.BadnessReport]{}, err
	}
	return NewResult(report), nil
}

// TableOperation analyzes the Markdown tables of each file.
type TableOperation struct {
	opts []table.Option
}

// NewTableOperation returns a table analysis operation.
func NewTableOperation(opts ...table.Option) *TableOperation {
	return &TableOperation{opts: opts}
}

// Name returns the operation name.
func (o *TableOperation) Name() string {
	return "tables"
}

// Apply analyzes one file.
func (o *TableOperation) Apply(_ context.Context, f File) (Output[*model.FileTableAnalysisResult], error) {
	result := table.Analyze(f.Content, o.opts...)
	result.FilePath = f.Path
	return NewResult(result), nil
}

// Failed returns an empty result carrying the error message.
func (o *TableOperation) Failed(f File, err error) *model.FileTableAnalysisResult {
	result := model.NewFileTableAnalysisResult(f.Path)
	result.ErrorMessage = err.Error()
	return result
}

// Clean cleans every eligible file of inputDir into outputDir.
func Clean(ctx context.Context, inputDir, outputDir string, scripts []string, workers int, opts ...Option) (*model.BatchSummary[*model.CleaningStats], error) {
	op, err := NewCleanOperation(scripts)
	if err != nil {
		return nil, err
	}
	opts = append(opts, WithConcurrency(workers), WithOutputDir(outputDir))
	return NewProcessor[*model.CleaningStats](opts...).Process(ctx, inputDir, op)
}

// Analyze computes a badness report for every eligible file of inputDir.
func Analyze(ctx context.Context, inputDir string, scripts []string, workers int, opts ...Option) (*model.BatchSummary[*model.BadnessReport], error) {
	op, err := NewAnalyzeOperation(scripts)
	if err != nil {
		return nil, err
	}
	opts = append(opts, WithConcurrency(workers))
	return NewProcessor[*model.BadnessReport](opts...).Process(ctx, inputDir, op)
}

// AnalyzeTables analyzes the tables of every eligible file of inputDir.
func AnalyzeTables(ctx context.Context, inputDir string, workers int, opts ...Option) (*model.BatchSummary[*model.FileTableAnalysisResult], error) {
	opts = append(opts, WithConcurrency(workers))
	return NewProcessor[*model.FileTableAnalysisResult](opts...).Process(ctx, inputDir, NewTableOperation())
}

// Compile-time interface checks.
var (
	_ Operation[*model.CleaningStats]                 = (*CleanOperation)(nil)
	_ Operation[*model.BadnessReport]                 = (*AnalyzeOperation)(nil)
	_ Operation[*model.FileTableAnalysisResult]       = (*TableOperation)(nil)
	_ FailureRecorder[*model.FileTableAnalysisResult] = (*TableOperation)(nil)
)
