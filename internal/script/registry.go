package script

import (
	"fmt"
	"slices"
	"sync"
)

// Script codes known to the registry.
const (
	CodeLatin        = "lat"
	CodeGreek        = "gre"
	CodeAncientGreek = "grc"
	CodeFrench       = "fra"
	CodeSpanish      = "spa"
	CodePunctuation  = "punct"
	CodeNumbers      = "num"
	CodeSymbols      = "sym"
	CodeUnusual      = "unusual"
)

// baselineCodes are always added to an allowed set built for cleaning,
// so digits and punctuation survive whatever scripts are requested.
var baselineCodes = []string{CodePunctuation, CodeNumbers, CodeSymbols}

// descriptions are the human-readable names shown by the scripts command.
var descriptions = map[string]string{
	CodeLatin:        "Latin letters (a-z, A-Z)",
	CodeGreek:        "Greek, monotonic",
	CodeAncientGreek: "Greek including polytonic (Greek Extended)",
	CodeFrench:       "French accented letters and guillemets",
	CodeSpanish:      "Spanish accented letters and inverted marks",
	CodePunctuation:  "ASCII punctuation",
	CodeNumbers:      "ASCII digits",
	CodeSymbols:      "Common symbols (currency, copyright, degree)",
	CodeUnusual:      "Code points that usually indicate extraction damage",
}

// Set is an immutable collection of code points.
// Sets returned by the registry are shared; callers must not modify them.
type Set map[rune]struct{}

// Contains reports whether r belongs to the set.
func (s Set) Contains(r rune) bool {
	_, ok := s[r]
	return ok
}

// Len returns the number of code points in the set.
func (s Set) Len() int {
	return len(s)
}

// union returns a new set holding every code point of the given sets.
func union(sets ...Set) Set {
	size := 0
	for _, s := range sets {
		size += len(s)
	}
	out := make(Set, size)
	for _, s := range sets {
		for r := range s {
			out[r] = struct{}{}
		}
	}
	return out
}

// addRange adds the inclusive range [lo, hi] to s.
func (s Set) addRange(lo, hi rune) Set {
	for r := lo; r <= hi; r++ {
		s[r] = struct{}{}
	}
	return s
}

// addString adds every rune of chars to s.
func (s Set) addString(chars string) Set {
	for _, r := range chars {
		s[r] = struct{}{}
	}
	return s
}

// registry holds the process-wide script sets.
type registry struct {
	sets map[string]Set

	// good is the union of every set except "unusual".
	good Set
}

// defaultRegistry builds the registry on first use.
var defaultRegistry = sync.OnceValue(newRegistry)

// newRegistry constructs every script set.
func newRegistry() *registry {
	greek := make(Set).
		addRange(0x0370, 0x03E1).
		addRange(0x03F0, 0x03FF).
		addString("άέήίόύώΆΈΉΊΌΎΏϊϋΪΫΐΰ")

	sets := map[string]Set{
		CodeLatin:        make(Set).addRange('a', 'z').addRange('A', 'Z'),
		CodeGreek:        greek,
		CodeAncientGreek: union(greek, make(Set).addRange(0x1F00, 0x1FFF)),
		CodeFrench:       make(Set).addString("àâçéèêëîïôùûüÿæœÀÂÇÉÈÊËÎÏÔÙÛÜŸÆŒ«»"),
		CodeSpanish:      make(Set).addString("áéíóúüñÁÉÍÓÚÜÑ¿¡"),
		CodePunctuation:  make(Set).addString(".,;:!?()[]{}'\"&@#$%^*_-+=|\\<>/~`"),
		CodeNumbers:      make(Set).addRange('0', '9'),
		CodeSymbols:      make(Set).addString("€£¥©®™°§"),
	}

	good := make(Set)
	for _, s := range sets {
		for r := range s {
			good[r] = struct{}{}
		}
	}

	unusual := make(Set).
		addRange(0x0080, 0x00FF). // Latin-1 Supplement
		addRange(0x0100, 0x017F). // Latin Extended-A
		addRange(0x0180, 0x024F). // Latin Extended-B
		addRange(0x0250, 0x02AF). // IPA Extensions
		addRange(0x1E00, 0x1EFF). // Latin Extended Additional
		addRange(0x03E2, 0x03EF). // Coptic letters in the Greek block
		addRange(0x2C80, 0x2CFF). // Coptic
		addRange(0x0400, 0x052F). // Cyrillic and Cyrillic Supplement
		addRange(0xFFFD, 0xFFFD)  // replacement character, left by invalid UTF-8
	for r := range good {
		delete(unusual, r)
	}
	sets[CodeUnusual] = unusual

	return &registry{sets: sets, good: good}
}

// Lookup returns the set registered under code.
func Lookup(code string) (Set, error) {
	s, ok := defaultRegistry().sets[code]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScript, code)
	}
	return s, nil
}

// AllowedSet returns the union of the named sets plus the baseline
// punctuation, number, and symbol sets. It fails on the first unknown code.
func AllowedSet(codes []string) (Set, error) {
	sets := make([]Set, 0, len(codes)+len(baselineCodes))
	for _, code := range codes {
		s, err := Lookup(code)
		if err != nil {
			return nil, err
		}
		sets = append(sets, s)
	}
	for _, code := range baselineCodes {
		sets = append(sets, defaultRegistry().sets[code])
	}
	return union(sets...), nil
}

// GoodSet returns the union of every known script except "unusual".
func GoodSet() Set {
	return defaultRegistry().good
}

// Unusual returns the set of code points treated as extraction damage.
func Unusual() Set {
	return defaultRegistry().sets[CodeUnusual]
}

// Codes returns the sorted list of selectable script codes.
// "unusual" is omitted because it is not a script a caller asks for.
func Codes() []string {
	codes := make([]string, 0, len(defaultRegistry().sets))
	for code := range defaultRegistry().sets {
		if code == CodeUnusual {
			continue
		}
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

// IsBaseline reports whether code is one of the sets that AllowedSet always adds.
func IsBaseline(code string) bool {
	return slices.Contains(baselineCodes, code)
}

// Describe returns a short human-readable description of code,
// or an empty string for unknown codes.
func Describe(code string) string {
	return descriptions[code]
}
