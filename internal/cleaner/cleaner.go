package cleaner

import (
	"strings"
	"unicode"

	"github.com/nao1215/textsieve/internal/script"
)

// Counts holds the number of non-whitespace characters removed from a line,
// split by the step that removed them.
type Counts struct {
	Tag     int
	Glyph   int
	Unusual int
}

// Total returns the number of removed characters across all steps.
func (c Counts) Total() int {
	return c.Tag + c.Glyph + c.Unusual
}

// add accumulates o into c.
func (c *Counts) add(o Counts) {
	c.Tag += o.Tag
	c.Glyph += o.Glyph
	c.Unusual += o.Unusual
}

// Result is the outcome of cleaning a whole text.
type Result struct {
	// Text is the cleaned text.
	Text string `json:"text"`

	// TagChars is the number of non-whitespace characters removed as markup.
	TagChars int `json:"tag_chars"`

	// GlyphChars is the number of non-whitespace characters removed as glyph placeholders.
	GlyphChars int `json:"glyph_chars"`

	// UnusualChars is the number of characters removed for being outside the allowed scripts.
	UnusualChars int `json:"unusual_chars"`

	// MarkersAdded is the number of lines on which a Marker was emitted.
	MarkersAdded int `json:"markers_added"`
}

// RemovedChars returns the total number of removed non-whitespace characters.
func (r Result) RemovedChars() int {
	return r.TagChars + r.GlyphChars + r.UnusualChars
}

// StripTags removes every markup tag from s except exact Marker occurrences,
// returning the stripped text and the number of non-whitespace characters removed.
func StripTags(s string) (string, int) {
	parts := strings.Split(s, Marker)
	removed := 0
	for i, part := range parts {
		parts[i], removed = stripTagsFixpoint(part, removed)
	}
	return strings.Join(parts, Marker), removed
}

// stripTagsFixpoint removes tags from a marker-free segment until none remain.
func stripTagsFixpoint(s string, removed int) (string, int) {
	for {
		matches := tagPattern.FindAllString(s, -1)
		if len(matches) == 0 {
			return s, removed
		}
		for _, m := range matches {
			removed += NonSpaceCount(m)
		}
		s = tagPattern.ReplaceAllString(s, "")
	}
}

// StripGlyphs removes glyph placeholder tokens from s,
// returning the stripped text and the number of non-whitespace characters removed.
func StripGlyphs(s string) (string, int) {
	removed := 0
	out := glyphPattern.ReplaceAllStringFunc(s, func(m string) string {
		removed += NonSpaceCount(m)
		return ""
	})
	return out, removed
}

// StripUnusual drops every rune of s that is in unusual but not in allowed.
// Only non-whitespace drops are counted.
func StripUnusual(s string, allowed, unusual script.Set) (string, int) {
	var sb strings.Builder
	sb.Grow(len(s))
	removed := 0
	for _, r := range s {
		if unusual.Contains(r) && !allowed.Contains(r) {
			if !unicode.IsSpace(r) {
				removed++
			}
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String(), removed
}

// stripSegment applies the glyph and unusual steps to a marker-free segment.
// Dropping unusual runes can join the pieces of a glyph token ("glЖyph" or
// "gl\u00a0yph"), so the pair repeats until the segment is stable.
func stripSegment(s string, allowed, unusual script.Set) (string, Counts) {
	var c Counts
	for {
		prev := s
		var g, u int
		s, g = StripGlyphs(s)
		s, u = StripUnusual(s, allowed, unusual)
		c.Glyph += g
		c.Unusual += u
		if s == prev {
			return s, c
		}
	}
}

// CleanLine cleans a single line and decides whether to mark the loss.
// The steps run in a fixed order: tags, glyph placeholders, unusual characters.
// The returned bool reports whether a Marker was emitted.
func CleanLine(line string, allowed, unusual script.Set) (string, Counts, bool) {
	var counts Counts

	stripped, tagRemoved := StripTags(line)
	counts.Tag = tagRemoved

	parts := strings.Split(stripped, Marker)
	for i, part := range parts {
		var c Counts
		parts[i], c = stripSegment(part, allowed, unusual)
		counts.add(c)
	}
	cleaned := strings.Join(parts, Marker)

	if counts.Total() < MinRemovedForMarker {
		return cleaned, counts, false
	}
	if strings.TrimSpace(cleaned) != "" {
		return strings.TrimRightFunc(cleaned, unicode.IsSpace) + " " + Marker, counts, true
	}
	if strings.TrimSpace(line) != "" {
		return Marker, counts, true
	}
	return cleaned, counts, false
}

// CleanWith cleans text line by line using the given sets.
// Lines are split on '\n' with a trailing '\r' dropped; a trailing newline
// in the input is kept in the output.
func CleanWith(text string, allowed, unusual script.Set) Result {
	trailingNewline := strings.HasSuffix(text, "\n")
	if trailingNewline {
		text = text[:len(text)-1]
	}

	lines := strings.Split(text, "\n")
	var res Result
	for i, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		cleaned, c, marked := CleanLine(line, allowed, unusual)
		lines[i] = cleaned
		res.TagChars += c.Tag
		res.GlyphChars += c.Glyph
		res.UnusualChars += c.Unusual
		if marked {
			res.MarkersAdded++
		}
	}

	res.Text = strings.Join(lines, "\n")
	if trailingNewline {
		res.Text += "\n"
	}
	return res
}

// Clean removes extraction artifacts from text, keeping characters of the
// requested scripts plus punctuation, digits, and common symbols.
func Clean(text string, scripts []string) (Result, error) {
	allowed, err := script.AllowedSet(scripts)
	if err != nil {
		return Result{}, err
	}
	return CleanWith(text, allowed, script.Unusual()), nil
}
