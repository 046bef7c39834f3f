package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/textsieve/internal/badness"
	"github.com/nao1215/textsieve/internal/cleaner"
	"github.com/nao1215/textsieve/internal/model"
	"github.com/nao1215/textsieve/internal/script"
	"github.com/nao1215/textsieve/internal/table"
	"golang.org/x/text/unicode/norm"
)

// NormalizeStep converts the text to Unicode normalization form C.
// Decomposed accents are composed first so that the script sets, which
// list precomposed letters, recognize them.
type NormalizeStep struct{}

// NewNormalizeStep creates a normalization step.
func NewNormalizeStep() *NormalizeStep {
	return &NormalizeStep{}
}

// Name returns the step name.
func (s *NormalizeStep) Name() string {
	return "normalize"
}

// Do normalizes the document text.
func (s *NormalizeStep) Do(_ context.Context, doc *model.Document) error {
	doc.Text = norm.NFC.String(doc.Text)
	return nil
}

// CleanStep removes markup, glyph placeholders, and out-of-script characters.
type CleanStep struct {
	allowed script.Set
	unusual script.Set
}

// NewCleanStep resolves scripts into the allowed character set.
func NewCleanStep(scripts []string) (*CleanStep, error) {
	allowed, err := script.AllowedSet(scripts)
	if err != nil {
		return nil, err
	}
	return &CleanStep{allowed: allowed, unusual: script.Unusual()}, nil
}

// Name returns the step name.
func (s *CleanStep) Name() string {
	return "clean"
}

// Do cleans the document text and records the removal statistics.
func (s *CleanStep) Do(_ context.Context, doc *model.Document) error {
	r := cleaner.CleanWith(doc.Text, s.allowed, s.unusual)
	doc.Text = r.Text
	doc.Cleaning = &model.CleaningStats{
		TagChars:     r.TagChars,
		GlyphChars:   r.GlyphChars,
		UnusualChars: r.UnusualChars,
		MarkersAdded: r.MarkersAdded,
	}
	return nil
}

// TableAnalysisStep records the table structure report of the document.
type TableAnalysisStep struct {
	opts []table.Option
}

// NewTableAnalysisStep creates a table analysis step.
func NewTableAnalysisStep(opts ...table.Option) *TableAnalysisStep {
	return &TableAnalysisStep{opts: opts}
}

// Name returns the step name.
func (s *TableAnalysisStep) Name() string {
	return "table_analysis"
}

// Do analyzes the tables of the current text.
func (s *TableAnalysisStep) Do(_ context.Context, doc *model.Document) error {
	result := table.Analyze(doc.Text, s.opts...)
	result.FilePath = doc.Path
	doc.Tables = result
	return nil
}

// TableRemovalStep replaces table blocks with a missing-text marker.
type TableRemovalStep struct {
	onlyMalformed bool
	logger        *slog.Logger
}

// TableRemovalOption configures a TableRemovalStep.
type TableRemovalOption func(*TableRemovalStep)

// WithOnlyMalformed restricts removal to malformed tables.
func WithOnlyMalformed(onlyMalformed bool) TableRemovalOption {
	return func(s *TableRemovalStep) {
		s.onlyMalformed = onlyMalformed
	}
}

// WithTableRemovalLogger sets a custom logger for the removal step.
func WithTableRemovalLogger(logger *slog.Logger) TableRemovalOption {
	return func(s *TableRemovalStep) {
		s.logger = logger
	}
}

// NewTableRemovalStep creates a table removal step. By default every
// table is removed.
func NewTableRemovalStep(opts ...TableRemovalOption) *TableRemovalStep {
	s := &TableRemovalStep{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *TableRemovalStep) Name() string {
	return "table_removal"
}

// Skip reports whether the table analysis recorded on doc leaves nothing
// to remove. Without an analysis the step always runs.
func (s *TableRemovalStep) Skip(doc *model.Document) bool {
	if doc.Tables == nil {
		return false
	}
	if s.onlyMalformed {
		return doc.Tables.BadlyFormedTables == 0
	}
	return doc.Tables.TotalTables == 0
}

// Do removes tables from the current text.
func (s *TableRemovalStep) Do(_ context.Context, doc *model.Document) error {
	text, removed := table.Remove(doc.Text, s.onlyMalformed)
	doc.Text = text
	doc.TablesRemoved += removed
	if removed > 0 {
		s.logger.Debug("tables removed", "path", doc.Path, "count", removed)
	}
	return nil
}

// AnalyzeStep computes the badness report of the current text.
type AnalyzeStep struct {
	scripts []string
}

// NewAnalyzeStep validates scripts and creates an analysis step.
func NewAnalyzeStep(scripts []string) (*AnalyzeStep, error) {
	if _, err := script.AllowedSet(scripts); err != nil {
		return nil, err
	}
	return &AnalyzeStep{scripts: scripts}, nil
}

// Name returns the step name.
func (s *AnalyzeStep) Name() string {
	return "analyze"
}

// Do analyzes the document text.
func (s *AnalyzeStep) Do(_ context.Context, doc *model.Document) error {
	report, err := badness.Analyze(doc.Text, s.scripts)
	if err != nil {
		return fmt.Errorf("failed to analyze text: %w", err)
	}
	doc.Badness = report
	return nil
}

// DefaultConfig holds configuration for the default pipeline.
type DefaultConfig struct {
	// Scripts are the allowed script codes for cleaning and analysis.
	Scripts []string

	// Normalize enables NFC normalization before cleaning.
	Normalize bool

	// RemoveTables enables the table removal step.
	RemoveTables bool

	// OnlyMalformed restricts table removal to malformed tables.
	OnlyMalformed bool

	// OrphansAsMalformed counts orphan separators as malformed tables.
	OrphansAsMalformed bool
}

// DefaultOption configures a DefaultConfig.
type DefaultOption func(*DefaultConfig)

// WithScripts sets the allowed script codes.
func WithScripts(scripts []string) DefaultOption {
	return func(c *DefaultConfig) {
		c.Scripts = scripts
	}
}

// WithNormalize enables or disables NFC normalization.
func WithNormalize(normalize bool) DefaultOption {
	return func(c *DefaultConfig) {
		c.Normalize = normalize
	}
}

// WithTableRemoval configures table removal.
func WithTableRemoval(remove, onlyMalformed bool) DefaultOption {
	return func(c *DefaultConfig) {
		c.RemoveTables = remove
		c.OnlyMalformed = onlyMalformed
	}
}

// WithOrphanTables counts orphan separators as malformed tables in the report.
func WithOrphanTables(enabled bool) DefaultOption {
	return func(c *DefaultConfig) {
		c.OrphansAsMalformed = enabled
	}
}

// Default creates a pipeline with the standard steps:
// normalize, clean, table_analysis, table_removal, analyze.
//
// The first parameter accepts pipeline options (WithLogger, etc).
// The rest configure the steps. Scripts default to Latin and polytonic Greek.
func Default(pipelineOpts []Option, configOpts ...DefaultOption) (*Pipeline, error) {
	cfg := &DefaultConfig{
		Scripts:       []string{script.CodeLatin, script.CodeAncientGreek},
		Normalize:     true,
		RemoveTables:  true,
		OnlyMalformed: true,
	}
	for _, opt := range configOpts {
		opt(cfg)
	}

	clean, err := NewCleanStep(cfg.Scripts)
	if err != nil {
		return nil, err
	}
	analyze, err := NewAnalyzeStep(cfg.Scripts)
	if err != nil {
		return nil, err
	}

	p := New(pipelineOpts...)
	if cfg.Normalize {
		p.AddStep(NewNormalizeStep())
	}
	p.AddSteps(clean, NewTableAnalysisStep(table.WithOrphansAsMalformed(cfg.OrphansAsMalformed)))
	if cfg.RemoveTables {
		p.AddStep(NewTableRemovalStep(
			WithOnlyMalformed(cfg.OnlyMalformed),
			WithTableRemovalLogger(p.logger),
		))
	}
	p.AddStep(analyze)

	return p, nil
}
