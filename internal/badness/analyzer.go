package badness

import (
	"unicode"
	"unicode/utf8"

	"github.com/nao1215/textsieve/internal/cleaner"
	"github.com/nao1215/textsieve/internal/model"
	"github.com/nao1215/textsieve/internal/script"
)

// Score returns bad/(bad+good), or 0 when both are zero.
func Score(bad, good int) float64 {
	if bad+good == 0 {
		return 0
	}
	return float64(bad) / float64(bad+good)
}

// Analyze computes the badness score and script percentages of text.
//
// The score comes from cleaning with every known script allowed, so only
// markup, glyph placeholders, and unusual characters count as bad. The
// percentages come from cleaning with the requested scripts allowed and
// are computed over the surviving non-whitespace characters, with markers
// left out. Stored percentages are therefore higher than those of a count
// that includes marker characters in the denominator.
func Analyze(text string, scripts []string) (*model.BadnessReport, error) {
	requested, err := script.AllowedSet(scripts)
	if err != nil {
		return nil, err
	}
	unusual := script.Unusual()

	report := model.NewBadnessReport()
	report.OriginalTotalChars = utf8.RuneCountInString(text)
	report.OriginalNonWhitespaceChars = cleaner.NonSpaceCount(text)
	report.GlyphWordCount = cleaner.GlyphTokenCount(text)
	report.UnusualCharCountOriginal = countMembers(text, unusual)

	classified := cleaner.CleanWith(text, script.GoodSet(), unusual)
	origNW := report.OriginalNonWhitespaceChars
	cleanedNW := cleaner.NonSpaceCount(classified.Text) - classified.MarkersAdded*cleaner.MarkerWidth()
	bad := min(max(origNW-cleanedNW, 0), origNW)

	report.BadCharCount = bad
	report.GoodCharCount = origNW - bad
	report.BadnessScore = Score(report.BadCharCount, report.GoodCharCount)

	selected := cleaner.CleanWith(text, requested, unusual)
	surviving := cleaner.StripMarkers(selected.Text)
	survivingNW := cleaner.NonSpaceCount(surviving)

	for _, code := range scripts {
		if script.IsBaseline(code) {
			continue
		}
		if _, done := report.ScriptPercentages[code]; done {
			continue
		}
		set, err := script.Lookup(code)
		if err != nil {
			return nil, err
		}
		report.ScriptPercentages[code] = percentage(countMembers(surviving, set), survivingNW)
	}

	return report, nil
}

// percentage returns part/whole*100, or 0 when whole is zero.
func percentage(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

// countMembers returns the number of non-whitespace runes of s that belong to set.
func countMembers(s string, set script.Set) int {
	n := 0
	for _, r := range s {
		if set.Contains(r) && !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
