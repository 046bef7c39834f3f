package batch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/textsieve/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
}

// upperOperation writes the upper-cased content and returns its length.
type upperOperation struct{}

func (upperOperation) Name() string { return "upper" }

func (upperOperation) Apply(_ context.Context, f File) (Output[int], error) {
	return NewContentResult(strings.ToUpper(f.Content), len(f.Content)), nil
}

// lengthOperation only returns a result.
type lengthOperation struct{}

func (lengthOperation) Name() string { return "length" }

func (lengthOperation) Apply(_ context.Context, f File) (Output[int], error) {
	return NewResult(len(f.Content)), nil
}

// TestNewProcessor tests the Processor constructor.
func TestNewProcessor(t *testing.T) {
	t.Parallel()

	t.Run("applies defaults", func(t *testing.T) {
		t.Parallel()

		p := NewProcessor[int]()
		if p.Concurrency() < 1 {
			t.Errorf("expected positive default concurrency, got %d", p.Concurrency())
		}
		if p.logger == nil {
			t.Error("expected non-nil logger")
		}
		if len(p.extensions) != 1 || p.extensions[0] != DefaultExtension {
			t.Errorf("expected default extension, got %v", p.extensions)
		}
		if p.limiter != nil {
			t.Error("expected no rate limiter by default")
		}
	})

	t.Run("ignores non-positive concurrency", func(t *testing.T) {
		t.Parallel()

		p := NewProcessor[int](WithConcurrency(3), WithConcurrency(0), WithConcurrency(-1))
		if p.Concurrency() != 3 {
			t.Errorf("expected concurrency 3, got %d", p.Concurrency())
		}
	})

	t.Run("normalizes extensions", func(t *testing.T) {
		t.Parallel()

		p := NewProcessor[int](WithExtensions("TXT", ".Md", " "))
		if len(p.extensions) != 2 || p.extensions[0] != ".txt" || p.extensions[1] != ".md" {
			t.Errorf("unexpected extensions %v", p.extensions)
		}
		if !p.eligible("a/B.MD") || p.eligible("a/b.markdown") {
			t.Error("unexpected eligibility")
		}
	})

	t.Run("configures rate limit", func(t *testing.T) {
		t.Parallel()

		p := NewProcessor[int](WithRateLimit(0.5))
		if p.limiter == nil || p.limiter.Burst() != 1 {
			t.Fatal("expected limiter with burst 1")
		}
		p = NewProcessor[int](WithRateLimit(10), WithRateLimit(0))
		if p.limiter != nil {
			t.Error("expected limit disabled")
		}
	})
}

// TestProcess tests batch processing over a directory.
func TestProcess(t *testing.T) {
	t.Parallel()

	t.Run("writes content preserving relative paths", func(t *testing.T) {
		t.Parallel()

		in := t.TempDir()
		out := t.TempDir()
		writeFile(t, filepath.Join(in, "a.md"), "alpha")
		writeFile(t, filepath.Join(in, "sub", "b.MD"), "beta")
		writeFile(t, filepath.Join(in, "skip.txt"), "ignored")

		p := NewProcessor[int](WithLogger(discardLogger()), WithOutputDir(out), WithConcurrency(2))
		summary, err := p.Process(context.Background(), in, upperOperation{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if summary.Status != model.StatusCompleted {
			t.Errorf("expected status completed, got %q", summary.Status)
		}
		if summary.TotalFilesFound != 2 || summary.FilesProcessed != 2 || summary.FilesWithErrors != 0 {
			t.Errorf("unexpected counts: %+v", summary)
		}
		if summary.Message != "Operation completed on 2 files. Errors on 0 files." {
			t.Errorf("unexpected message %q", summary.Message)
		}

		got, err := os.ReadFile(filepath.Join(out, "sub", "b.MD"))
		if err != nil {
			t.Fatalf("expected output file: %v", err)
		}
		if string(got) != "BETA" {
			t.Errorf("expected BETA, got %q", got)
		}
		if summary.PerFileResults[filepath.Join(in, "a.md")] != 5 {
			t.Errorf("unexpected results %v", summary.PerFileResults)
		}
		if _, err := os.Stat(filepath.Join(out, "skip.txt")); !os.IsNotExist(err) {
			t.Error("expected ineligible file to be skipped")
		}
	})

	t.Run("isolates unreadable file", func(t *testing.T) {
		t.Parallel()

		in := t.TempDir()
		writeFile(t, filepath.Join(in, "one.md"), "one")
		writeFile(t, filepath.Join(in, "two.md"), "two")
		if err := os.Symlink(filepath.Join(in, "missing-target.md"), filepath.Join(in, "broken.md")); err != nil {
			t.Skipf("symlinks unavailable: %v", err)
		}

		p := NewProcessor[int](WithLogger(discardLogger()))
		summary, err := p.Process(context.Background(), in, lengthOperation{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if summary.TotalFilesFound != 3 || summary.FilesProcessed != 2 || summary.FilesWithErrors != 1 {
			t.Errorf("unexpected counts: %+v", summary)
		}
		broken := filepath.Join(in, "broken.md")
		if _, ok := summary.Errors[broken]; !ok {
			t.Errorf("expected error for %s, got %v", broken, summary.Errors)
		}
		if _, ok := summary.PerFileResults[broken]; ok {
			t.Error("did not expect a result for the failed file")
		}
		if !summary.HasErrors() {
			t.Error("expected HasErrors to be true")
		}
	})

	t.Run("empty directory", func(t *testing.T) {
		t.Parallel()

		p := NewProcessor[int](WithLogger(discardLogger()))
		summary, err := p.Process(context.Background(), t.TempDir(), lengthOperation{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if summary.Status != model.StatusSuccess || summary.Message != model.NoFilesMessage {
			t.Errorf("unexpected summary: %+v", summary)
		}
		if summary.FilesProcessed != 0 || summary.TotalFilesFound != 0 {
			t.Errorf("unexpected counts: %+v", summary)
		}
	})

	t.Run("content without output dir fails the file", func(t *testing.T) {
		t.Parallel()

		in := t.TempDir()
		writeFile(t, filepath.Join(in, "a.md"), "alpha")

		p := NewProcessor[int](WithLogger(discardLogger()))
		summary, err := p.Process(context.Background(), in, upperOperation{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if summary.FilesWithErrors != 1 || summary.FilesProcessed != 0 {
			t.Errorf("unexpected counts: %+v", summary)
		}
		if summary.Errors[filepath.Join(in, "a.md")] != ErrNoOutputDir.Error() {
			t.Errorf("unexpected errors %v", summary.Errors)
		}
	})

	t.Run("missing input directory", func(t *testing.T) {
		t.Parallel()

		p := NewProcessor[int](WithLogger(discardLogger()))
		_, err := p.Process(context.Background(), filepath.Join(t.TempDir(), "nope"), lengthOperation{})
		if err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("input is a file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "a.md")
		writeFile(t, path, "x")

		p := NewProcessor[int](WithLogger(discardLogger()))
		_, err := p.Process(context.Background(), path, lengthOperation{})
		if !errors.Is(err, ErrNotDirectory) {
			t.Errorf("expected ErrNotDirectory, got %v", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		in := t.TempDir()
		writeFile(t, filepath.Join(in, "a.md"), "a")
		writeFile(t, filepath.Join(in, "b.md"), "b")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		p := NewProcessor[int](WithLogger(discardLogger()))
		summary, err := p.Process(ctx, in, lengthOperation{})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if summary == nil || summary.Status != model.StatusCancelled {
			t.Fatalf("expected cancelled summary, got %+v", summary)
		}
		if summary.FilesProcessed != 0 || summary.TotalFilesFound != 2 {
			t.Errorf("unexpected counts: %+v", summary)
		}
	})
}

// trackingOperation records the peak number of concurrent Apply calls.
type trackingOperation struct {
	current atomic.Int32
	peak    atomic.Int32
	mu      sync.Mutex
	seen    []string
}

func (o *trackingOperation) Name() string { return "tracking" }

func (o *trackingOperation) Apply(_ context.Context, f File) (Output[int], error) {
	n := o.current.Add(1)
	for {
		peak := o.peak.Load()
		if n <= peak || o.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	time.Sleep(10 * time.Millisecond)
	o.current.Add(-1)

	o.mu.Lock()
	o.seen = append(o.seen, f.RelPath)
	o.mu.Unlock()
	return NewResult(1), nil
}

// TestProcessRespectsConcurrency tests that the worker limit is honored.
func TestProcessRespectsConcurrency(t *testing.T) {
	t.Parallel()

	in := t.TempDir()
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		writeFile(t, filepath.Join(in, name+".md"), name)
	}

	op := &trackingOperation{}
	p := NewProcessor[int](WithLogger(discardLogger()), WithConcurrency(2))
	summary, err := p.Process(context.Background(), in, op)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.FilesProcessed != 8 {
		t.Errorf("expected 8 processed, got %d", summary.FilesProcessed)
	}
	if peak := op.peak.Load(); peak > 2 {
		t.Errorf("expected at most 2 concurrent operations, got %d", peak)
	}
	if len(op.seen) != 8 {
		t.Errorf("expected 8 files seen, got %d", len(op.seen))
	}
}
