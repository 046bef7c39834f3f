package model

import "time"

// CleaningStats records what cleaning removed from a document.
type CleaningStats struct {
	// TagChars is the number of non-whitespace characters removed as markup.
	TagChars int `json:"tag_chars"`

	// GlyphChars is the number of non-whitespace characters removed as glyph placeholders.
	GlyphChars int `json:"glyph_chars"`

	// UnusualChars is the number of out-of-script characters removed.
	UnusualChars int `json:"unusual_chars"`

	// MarkersAdded is the number of missing-text markers inserted.
	MarkersAdded int `json:"markers_added"`
}

// Document is the unit of work flowing through the processing pipeline.
// Steps read and replace Text and attach their results.
type Document struct {
	// Path is the source file path, or empty for text supplied directly.
	Path string `json:"path"`

	// Original is the text as it was read, before any step ran.
	Original string `json:"-"`

	// Text is the current text. Each transforming step replaces it.
	Text string `json:"-"`

	// DateProcessed is when the document entered the pipeline.
	DateProcessed time.Time `json:"date_processed"`

	// Cleaning holds the statistics of the clean step.
	Cleaning *CleaningStats `json:"cleaning,omitempty"`

	// Tables holds the table analysis taken before tables were removed.
	Tables *FileTableAnalysisResult `json:"tables,omitempty"`

	// TablesRemoved is the number of table blocks replaced by a marker.
	TablesRemoved int `json:"tables_removed"`

	// Badness holds the quality analysis of the final text.
	Badness *BadnessReport `json:"badness,omitempty"`

	// Cancelled is true if the pipeline stopped because its context ended.
	Cancelled bool `json:"cancelled"`

	// Steps lists the pipeline steps that ran, in order.
	Steps []string `json:"steps,omitempty"`

	// Skipped lists the steps that had nothing to do for this document.
	Skipped []string `json:"skipped,omitempty"`

	// Timings holds the duration of every step that ran.
	Timings []StepTiming `json:"timings,omitempty"`

	// Error contains the last step error.
	Error error `json:"-"`

	// ErrorMessage is the string representation of Error for serialization.
	ErrorMessage string `json:"error,omitempty"`
}

// StepTiming is the wall time spent in one pipeline step.
type StepTiming struct {
	Step    string        `json:"step"`
	Elapsed time.Duration `json:"elapsed_ns"`
}

// NewDocument creates a Document whose current text is the original content.
func NewDocument(path, content string) *Document {
	return &Document{
		Path:          path,
		Original:      content,
		Text:          content,
		DateProcessed: time.Now(),
		Steps:         make([]string, 0),
	}
}

// Elapsed returns the total time spent in pipeline steps.
func (d *Document) Elapsed() time.Duration {
	var total time.Duration
	for _, t := range d.Timings {
		total += t.Elapsed
	}
	return total
}

// Failed reports whether a step recorded an error.
func (d *Document) Failed() bool {
	return d.Error != nil
}
