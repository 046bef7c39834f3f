// Package cleaner removes extraction artifacts from text line by line.
//
// Each line passes through three steps in a fixed order:
//
//  1. StripTags removes markup tags. The missing-text Marker is kept verbatim.
//  2. StripGlyphs removes OCR glyph placeholder tokens.
//  3. StripUnusual drops characters from the "unusual" script set that the
//     caller did not explicitly allow.
//
// Every step is a pure function returning the new text and the number of
// non-whitespace characters it removed. When a line loses at least
// MinRemovedForMarker characters, the Marker is appended to it, or replaces
// it when nothing else is left.
//
// Cleaning is idempotent: cleaning already cleaned text with the same
// scripts returns it unchanged.
package cleaner
