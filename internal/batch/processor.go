package batch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/nao1215/textsieve/internal/model"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// DefaultExtension is the file extension processed when none is configured.
const DefaultExtension = ".md"

// settings holds Processor configuration shared by every result type.
type settings struct {
	// concurrency is the maximum number of files processed at once.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// extensions lists the eligible file extensions, lower-cased with a leading dot.
	extensions []string

	// outputDir receives content produced by the operation.
	outputDir string

	// limiter throttles how fast files are started. Nil means no limit.
	limiter *rate.Limiter
}

// Option configures a Processor.
type Option func(*settings)

// WithConcurrency sets the maximum number of files processed at once.
// Default is the number of CPUs; non-positive values are ignored.
func WithConcurrency(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithLogger sets a custom logger for batch processing.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithExtensions sets the eligible file extensions. Matching ignores case,
// and a missing leading dot is added. Empty input keeps the default.
func WithExtensions(exts ...string) Option {
	return func(s *settings) {
		normalized := make([]string, 0, len(exts))
		for _, ext := range exts {
			ext = strings.ToLower(strings.TrimSpace(ext))
			if ext == "" {
				continue
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			normalized = append(normalized, ext)
		}
		if len(normalized) > 0 {
			s.extensions = normalized
		}
	}
}

// WithOutputDir sets the directory that receives operation content.
// Relative paths under the input directory are preserved.
func WithOutputDir(dir string) Option {
	return func(s *settings) {
		s.outputDir = dir
	}
}

// WithRateLimit caps how many files are started per second.
// Non-positive values disable the limit.
func WithRateLimit(filesPerSecond float64) Option {
	return func(s *settings) {
		if filesPerSecond <= 0 {
			s.limiter = nil
			return
		}
		burst := max(int(filesPerSecond), 1)
		s.limiter = rate.NewLimiter(rate.Limit(filesPerSecond), burst)
	}
}

// Processor runs an Operation over every eligible file of a directory tree.
// Files are processed concurrently; a failure on one file is recorded in the
// summary and never stops the others.
type Processor[R any] struct {
	settings

	// mu guards the summary while workers record their outcome.
	mu sync.Mutex
}

// NewProcessor creates a Processor with the given options.
func NewProcessor[R any](opts ...Option) *Processor[R] {
	p := &Processor[R]{
		settings: settings{
			concurrency: runtime.NumCPU(),
			extensions:  []string{DefaultExtension},
		},
	}

	for _, opt := range opts {
		opt(&p.settings)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// Concurrency returns the configured worker limit.
func (p *Processor[R]) Concurrency() int {
	return p.concurrency
}

// Process runs op over every eligible file below inputDir.
//
// The only errors returned are an inaccessible input directory and
// context cancellation; in the latter case the partial summary is
// returned along with ctx.Err().
func (p *Processor[R]) Process(ctx context.Context, inputDir string, op Operation[R]) (*model.BatchSummary[R], error) {
	info, err := os.Stat(inputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to access input directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, inputDir)
	}

	files, err := p.discover(inputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list input directory: %w", err)
	}

	summary := model.NewBatchSummary[R]()
	summary.TotalFilesFound = len(files)

	if len(files) == 0 {
		summary.Status = model.StatusSuccess
		summary.Message = model.NoFilesMessage
		return summary, nil
	}

	p.logger.Info("starting batch processing",
		"operation", op.Name(),
		"input_dir", inputDir,
		"total_files", len(files),
		"concurrency", p.concurrency,
	)

	startTime := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for _, f := range files {
		g.Go(func() error {
			// Check for cancellation before starting
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			if p.limiter != nil {
				if err := p.limiter.Wait(gctx); err != nil {
					return err
				}
			}

			p.processFile(gctx, f, op, summary)

			// Failures are recorded in the summary, not returned, so the
			// remaining files keep going.
			return nil
		})
	}

	waitErr := g.Wait()

	elapsed := time.Since(startTime)
	if waitErr != nil || ctx.Err() != nil {
		summary.Status = model.StatusCancelled
		summary.Message = fmt.Sprintf("Operation cancelled after %d files. Errors on %d files.",
			summary.FilesProcessed, summary.FilesWithErrors)
		p.logger.Warn("batch processing cancelled",
			"operation", op.Name(),
			"files_processed", summary.FilesProcessed,
			"files_with_errors", summary.FilesWithErrors,
			"elapsed", elapsed,
		)
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		return summary, waitErr
	}

	summary.Status = model.StatusCompleted
	summary.Message = model.CompletedMessage(summary.FilesProcessed, summary.FilesWithErrors)

	p.logger.Info("batch processing complete",
		"operation", op.Name(),
		"files_processed", summary.FilesProcessed,
		"files_with_errors", summary.FilesWithErrors,
		"elapsed", elapsed,
	)

	return summary, nil
}

// processFile reads, processes, and writes one file and records the outcome.
func (p *Processor[R]) processFile(ctx context.Context, f File, op Operation[R], summary *model.BatchSummary[R]) {
	p.logger.Debug("processing file", "operation", op.Name(), "path", f.Path)

	content, err := os.ReadFile(f.Path)
	if err != nil {
		p.recordFailure(summary, op, f, fmt.Errorf("failed to read file: %w", err))
		return
	}
	f.Content = string(content)

	out, err := op.Apply(ctx, f)
	if err != nil {
		p.recordFailure(summary, op, f, fmt.Errorf("%s failed: %w", op.Name(), err))
		return
	}

	if text, ok := out.Text(); ok {
		if p.outputDir == "" {
			p.recordFailure(summary, op, f, ErrNoOutputDir)
			return
		}
		if err := writeOutput(p.outputDir, f.RelPath, text); err != nil {
			p.recordFailure(summary, op, f, err)
			return
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if result, ok := out.Result(); ok {
		summary.PerFileResults[f.Path] = result
	}
	summary.FilesProcessed++
}

// recordFailure counts a failed file and stores its error.
func (p *Processor[R]) recordFailure(summary *model.BatchSummary[R], op Operation[R], f File, err error) {
	p.logger.Warn("file failed",
		"operation", op.Name(),
		"path", f.Path,
		"error", err,
	)

	p.mu.Lock()
	defer p.mu.Unlock()
	summary.FilesWithErrors++
	summary.Errors[f.Path] = err.Error()
	if recorder, ok := op.(FailureRecorder[R]); ok {
		summary.PerFileResults[f.Path] = recorder.Failed(f, err)
	}
}

// discover walks root and returns the eligible files sorted by path.
// Symbolic links are listed like regular files; reading them is left to
// the worker so a dangling link counts as a failed file.
func (p *Processor[R]) discover(root string) ([]File, error) {
	var files []File

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			p.logger.Warn("skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() && d.Type()&fs.ModeSymlink == 0 {
			return nil
		}
		if !p.eligible(path) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("failed to compute relative path: %w", err)
		}
		files = append(files, File{Path: path, RelPath: rel})
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(files, func(a, b File) int {
		return strings.Compare(a.Path, b.Path)
	})
	return files, nil
}

// eligible reports whether path has one of the configured extensions.
func (p *Processor[R]) eligible(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return slices.Contains(p.extensions, ext)
}

// writeOutput writes text to rel under dir, creating parent directories.
func writeOutput(dir, rel, text string) error {
	dest := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(dest), 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(dest, []byte(text), 0600); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
