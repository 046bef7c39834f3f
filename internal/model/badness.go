package model

import "github.com/nao1215/textsieve/internal/script"

// BadnessReport describes how much of a text was classified as extraction
// damage and how the surviving characters split across scripts.
type BadnessReport struct {
	// BadnessScore is BadCharCount / (BadCharCount + GoodCharCount),
	// or 0 when both are zero. Always within [0, 1].
	BadnessScore float64 `json:"badness_score"`

	// BadCharCount is the number of non-whitespace characters removed by cleaning.
	BadCharCount int `json:"bad_char_count"`

	// GoodCharCount is the number of non-whitespace characters that survived cleaning.
	GoodCharCount int `json:"good_char_count"`

	// OriginalTotalChars is the number of runes in the input, whitespace included.
	OriginalTotalChars int `json:"original_total_chars"`

	// OriginalNonWhitespaceChars is the number of non-whitespace runes in the input.
	OriginalNonWhitespaceChars int `json:"original_non_whitespace_chars"`

	// GlyphWordCount is the number of glyph placeholder tokens in the input.
	// It is diagnostic only and does not affect the score.
	GlyphWordCount int `json:"glyph_word_count"`

	// UnusualCharCountOriginal is the number of input runes in the unusual set.
	// It is diagnostic only and does not affect the score.
	UnusualCharCountOriginal int `json:"unusual_char_count_original"`

	// ScriptPercentages maps each requested script code to the share of
	// surviving non-whitespace characters belonging to it, in percent.
	ScriptPercentages map[string]float64 `json:"script_percentages"`
}

// NewBadnessReport creates an empty report with an initialized percentage map.
func NewBadnessReport() *BadnessReport {
	return &BadnessReport{
		ScriptPercentages: make(map[string]float64),
	}
}

// Percentage returns the percentage recorded for code, or 0 if it was not requested.
func (r *BadnessReport) Percentage(code string) float64 {
	return r.ScriptPercentages[code]
}

// GreekPercentage returns the Greek share of the text. The polytonic set
// is preferred when both Greek codes were requested.
func (r *BadnessReport) GreekPercentage() float64 {
	if p, ok := r.ScriptPercentages[script.CodeAncientGreek]; ok {
		return p
	}
	return r.ScriptPercentages[script.CodeGreek]
}

// LatinPercentage returns the Latin share of the text.
func (r *BadnessReport) LatinPercentage() float64 {
	return r.ScriptPercentages[script.CodeLatin]
}

// Balanced reports whether good and bad counts add up to the
// non-whitespace character count of the input.
func (r *BadnessReport) Balanced() bool {
	return r.GoodCharCount+r.BadCharCount == r.OriginalNonWhitespaceChars
}
