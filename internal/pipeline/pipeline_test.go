package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/nao1215/textsieve/internal/model"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, doc *model.Document) error
	callCount int
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context, doc *model.Document) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, doc)
	}
	return nil
}

// Name implements Step.Name.
func (m *mockStep) Name() string {
	return m.name
}

// skippingStep is a mockStep that also implements Skipper.
type skippingStep struct {
	mockStep
	skip bool
}

// Skip implements Skipper.
func (s *skippingStep) Skip(*model.Document) bool {
	return s.skip
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestPipelineNew tests the Pipeline constructor.
func TestPipelineNew(t *testing.T) {
	t.Parallel()

	t.Run("creates pipeline with default settings", func(t *testing.T) {
		t.Parallel()

		p := New()

		if p == nil {
			t.Fatal("expected non-nil pipeline")
		}
		if p.StepCount() != 0 {
			t.Errorf("expected 0 steps, got %d", p.StepCount())
		}
		if p.logger == nil {
			t.Error("expected default logger")
		}
	})

	t.Run("applies WithContinueOnError option", func(t *testing.T) {
		t.Parallel()

		p := New(WithContinueOnError(true))

		if !p.continueOnError {
			t.Error("expected continueOnError to be true")
		}
	})
}

// TestPipelineAddStep tests adding steps to the pipeline.
func TestPipelineAddStep(t *testing.T) {
	t.Parallel()

	t.Run("adds multiple steps with AddSteps", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddStep(&mockStep{name: "step-1"})
		p.AddSteps(&mockStep{name: "step-2"}, &mockStep{name: "step-3"})

		if p.StepCount() != 3 {
			t.Errorf("expected 3 steps, got %d", p.StepCount())
		}
	})

	t.Run("maintains step order", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddStep(&mockStep{name: "first"})
		p.AddStep(&mockStep{name: "second"})
		p.AddStep(&mockStep{name: "third"})

		names := p.StepNames()

		expected := []string{"first", "second", "third"}
		for i, name := range names {
			if name != expected[i] {
				t.Errorf("step %d: got %q, expected %q", i, name, expected[i])
			}
		}
	})
}

// TestPipelineExecute tests pipeline execution.
func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("executes all steps in order", func(t *testing.T) {
		t.Parallel()

		p := New(WithLogger(quietLogger()))
		p.AddStep(&mockStep{
			name: "append-a",
			doFunc: func(_ context.Context, doc *model.Document) error {
				doc.Text += "a"
				return nil
			},
		})
		p.AddStep(&mockStep{
			name: "append-b",
			doFunc: func(_ context.Context, doc *model.Document) error {
				doc.Text += "b"
				return nil
			},
		})

		doc := model.NewDocument("x.md", "")
		if err := p.Execute(context.Background(), doc); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if doc.Text != "ab" {
			t.Errorf("expected steps to run in order, got %q", doc.Text)
		}
		if len(doc.Steps) != 2 || doc.Steps[0] != "append-a" || doc.Steps[1] != "append-b" {
			t.Errorf("unexpected steps %v", doc.Steps)
		}
	})

	t.Run("stops on first error by default", func(t *testing.T) {
		t.Parallel()

		stepErr := errors.New("boom")
		second := &mockStep{name: "second"}

		p := New(WithLogger(quietLogger()))
		p.AddStep(&mockStep{
			name: "first",
			doFunc: func(context.Context, *model.Document) error {
				return stepErr
			},
		})
		p.AddStep(second)

		doc := model.NewDocument("", "text")
		err := p.Execute(context.Background(), doc)

		if !errors.Is(err, stepErr) {
			t.Fatalf("expected step error, got %v", err)
		}
		if second.callCount != 0 {
			t.Error("expected second step not to run")
		}
		if !doc.Failed() || doc.ErrorMessage != "boom" {
			t.Errorf("expected error recorded on document, got %+v", doc)
		}
	})

	t.Run("continues on error when configured", func(t *testing.T) {
		t.Parallel()

		second := &mockStep{name: "second"}

		p := New(WithLogger(quietLogger()), WithContinueOnError(true))
		p.AddStep(&mockStep{
			name: "first",
			doFunc: func(context.Context, *model.Document) error {
				return errors.New("boom")
			},
		})
		p.AddStep(second)

		doc := model.NewDocument("", "text")
		if err := p.Execute(context.Background(), doc); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if second.callCount != 1 {
			t.Errorf("expected second step to run once, got %d", second.callCount)
		}
		if !doc.Failed() {
			t.Error("expected error recorded on document")
		}
		if len(doc.Steps) != 2 {
			t.Errorf("expected both steps recorded, got %v", doc.Steps)
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		step := &mockStep{name: "never"}
		p := New(WithLogger(quietLogger()))
		p.AddStep(step)

		doc := model.NewDocument("", "text")
		err := p.Execute(ctx, doc)

		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if step.callCount != 0 {
			t.Error("expected step not to run")
		}
		if !doc.Cancelled {
			t.Error("expected document to be marked cancelled")
		}
	})
}

// TestPipelineSkipAndTimings tests skipped steps and per-step timings.
func TestPipelineSkipAndTimings(t *testing.T) {
	t.Parallel()

	skipped := &skippingStep{mockStep: mockStep{name: "skipped"}, skip: true}
	kept := &skippingStep{mockStep: mockStep{name: "kept"}, skip: false}

	p := New(WithLogger(quietLogger()))
	p.AddSteps(skipped, kept, &mockStep{name: "plain"})

	doc := model.NewDocument("", "text")
	if err := p.Execute(context.Background(), doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if skipped.callCount != 0 {
		t.Error("expected skipped step not to run")
	}
	if kept.callCount != 1 {
		t.Errorf("expected kept step to run once, got %d", kept.callCount)
	}
	if len(doc.Skipped) != 1 || doc.Skipped[0] != "skipped" {
		t.Errorf("unexpected skipped steps %v", doc.Skipped)
	}
	if len(doc.Steps) != 2 || doc.Steps[0] != "kept" || doc.Steps[1] != "plain" {
		t.Errorf("unexpected steps %v", doc.Steps)
	}
	if len(doc.Timings) != 2 || doc.Timings[0].Step != "kept" || doc.Timings[1].Step != "plain" {
		t.Errorf("unexpected timings %+v", doc.Timings)
	}
	if doc.Elapsed() < 0 {
		t.Errorf("expected non-negative elapsed time, got %v", doc.Elapsed())
	}
}

// TestPipelineStepNames tests step name listing.
func TestPipelineStepNames(t *testing.T) {
	t.Parallel()

	if names := New().StepNames(); len(names) != 0 {
		t.Errorf("expected no names, got %v", names)
	}
}
