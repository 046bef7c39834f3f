package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/textsieve/internal/model"
)

// Step is one stage of document processing. A step reads doc.Text,
// may replace it, and attaches its own results to the document.
type Step interface {
	// Do processes the document. A returned error is recorded on the
	// document; whether later steps still run depends on the pipeline.
	Do(ctx context.Context, doc *model.Document) error

	// Name identifies the step in logs and in Document.Steps.
	Name() string
}

// Skipper is implemented by steps that can tell, from what earlier steps
// recorded, that they have nothing to do for a document.
type Skipper interface {
	Skip(doc *model.Document) bool
}

// Pipeline runs an ordered list of steps over a document.
// A Pipeline holds no per-document state, but steps are added without
// locking, so build it fully before sharing it.
type Pipeline struct {
	steps           []Step
	logger          *slog.Logger
	continueOnError bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError keeps running the remaining steps after one fails.
// The document then carries the error of the last failing step.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New returns an empty Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends steps in the given order.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs the steps over doc in order.
//
// ctx is checked between steps. When it is done the document is marked
// cancelled and ctx.Err() is returned; steps already applied are kept.
// A step error stops the run and is returned unless the pipeline was built
// WithContinueOnError, in which case Execute returns nil and the error
// stays on the document.
func (p *Pipeline) Execute(ctx context.Context, doc *model.Document) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"path", doc.Path,
				"reason", err,
			)
			doc.Cancelled = true
			return err
		}

		if s, ok := step.(Skipper); ok && s.Skip(doc) {
			p.logger.Debug("step skipped", "step", step.Name(), "path", doc.Path)
			doc.Skipped = append(doc.Skipped, step.Name())
			continue
		}

		start := time.Now()
		err := step.Do(ctx, doc)
		elapsed := time.Since(start)
		doc.Timings = append(doc.Timings, model.StepTiming{Step: step.Name(), Elapsed: elapsed})

		if err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"path", doc.Path,
				"error", err,
			)
			doc.Error = err
			doc.ErrorMessage = err.Error()
			if !p.continueOnError {
				return err
			}
		} else {
			p.logger.Debug("step done", "step", step.Name(), "path", doc.Path, "elapsed", elapsed)
		}

		doc.Steps = append(doc.Steps, step.Name())
	}

	return nil
}

// StepCount returns the number of steps.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the step names in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
