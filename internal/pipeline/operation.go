package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/textsieve/internal/batch"
	"github.com/nao1215/textsieve/internal/model"
)

// Operation runs a pipeline on every file of a batch.
// It writes the final text and collects the document as the result.
type Operation struct {
	factory func() *Pipeline
	logger  *slog.Logger
}

// NewOperation creates a batch operation from a pipeline factory.
// The factory is called once per file so steps never share state.
func NewOperation(factory func() *Pipeline, logger *slog.Logger) *Operation {
	if logger == nil {
		logger = slog.Default()
	}
	return &Operation{factory: factory, logger: logger}
}

// Name returns the operation name.
func (o *Operation) Name() string {
	return "pipeline"
}

// Apply runs the pipeline on one file.
func (o *Operation) Apply(ctx context.Context, f batch.File) (batch.Output[*model.Document], error) {
	doc := model.NewDocument(f.Path, f.Content)
	if err := o.factory().Execute(ctx, doc); err != nil {
		return batch.Output[*model.Document]{}, err
	}
	o.logger.Debug("document processed", "path", f.Path, "steps", len(doc.Steps))
	return batch.NewContentResult(doc.Text, doc), nil
}

// Failed returns a document carrying the error of a failed file.
func (o *Operation) Failed(f batch.File, err error) *model.Document {
	doc := model.NewDocument(f.Path, f.Content)
	doc.Error = err
	doc.ErrorMessage = err.Error()
	return doc
}

var (
	_ batch.Operation[*model.Document]       = (*Operation)(nil)
	_ batch.FailureRecorder[*model.Document] = (*Operation)(nil)
)
