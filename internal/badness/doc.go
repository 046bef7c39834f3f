// Package badness scores how much of a text is extraction damage.
//
// Analyze runs the cleaner twice. The first pass allows every known script,
// so the characters it removes are exactly the artifacts: markup, glyph
// placeholders, and unusual code points. The badness score is the share of
// removed characters among all non-whitespace characters. The second pass
// allows only the requested scripts and reports which share of the
// remaining text belongs to each of them.
//
// Arbitrary input never fails; only an unknown script code is an error.
package badness
