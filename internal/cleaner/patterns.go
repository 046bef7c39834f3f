package cleaner

import (
	"regexp"
	"strings"
	"unicode"
)

// Marker is the annotation left in cleaned text where material content was removed.
// It is the only tag-shaped span that survives cleaning.
const Marker = "<!-- text-missing -->"

// MinRemovedForMarker is the number of removed non-whitespace characters on a
// single line at which a Marker is emitted. Smaller losses are dropped silently.
const MinRemovedForMarker = 5

var (
	// tagPattern matches one markup tag without nested brackets.
	// Nested fragments such as "<<b>>" are handled by repeated application.
	tagPattern = regexp.MustCompile(`<[^<>]*>`)

	// glyphPattern matches a whitespace-delimited token containing "glyph",
	// the placeholder OCR tools leave for characters they could not map.
	// Tokens end at any rune unicode.IsSpace accepts, not only ASCII space.
	glyphPattern = regexp.MustCompile(`(?i)[^\s\x{0B}\x{85}\p{Z}]*glyph[^\s\x{0B}\x{85}\p{Z}]*`)
)

// markerWidth is the number of non-whitespace characters in Marker.
var markerWidth = NonSpaceCount(Marker)

// MarkerWidth returns the number of non-whitespace characters in Marker.
func MarkerWidth() int {
	return markerWidth
}

// NonSpaceCount returns the number of runes in s that are not Unicode whitespace.
func NonSpaceCount(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}

// CountMarkers returns the number of Marker occurrences in s.
func CountMarkers(s string) int {
	return strings.Count(s, Marker)
}

// StripMarkers removes every Marker occurrence from s.
func StripMarkers(s string) string {
	return strings.ReplaceAll(s, Marker, "")
}

// GlyphTokenCount returns the number of glyph placeholder tokens in s.
func GlyphTokenCount(s string) int {
	return len(glyphPattern.FindAllStringIndex(s, -1))
}
