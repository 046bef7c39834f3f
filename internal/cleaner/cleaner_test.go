package cleaner

import (
	"errors"
	"strings"
	"testing"

	"github.com/nao1215/textsieve/internal/script"
)

// mustAllowed builds an allowed set or fails the test.
func mustAllowed(t *testing.T, codes ...string) script.Set {
	t.Helper()

	allowed, err := script.AllowedSet(codes)
	if err != nil {
		t.Fatalf("failed to build allowed set: %v", err)
	}
	return allowed
}

// TestStripTags tests markup removal.
func TestStripTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		input       string
		want        string
		wantRemoved int
	}{
		{
			name:        "removes simple tags",
			input:       "a <b>bold</b> c",
			want:        "a bold c",
			wantRemoved: 7,
		},
		{
			name:        "keeps marker",
			input:       "keep " + Marker + " here",
			want:        "keep " + Marker + " here",
			wantRemoved: 0,
		},
		{
			name:        "removes other comments",
			input:       "<!-- other -->x",
			want:        "x",
			wantRemoved: 12,
		},
		{
			name:        "removes nested fragments",
			input:       "<<b>>",
			want:        "",
			wantRemoved: 5,
		},
		{
			name:        "leaves unbalanced brackets",
			input:       "a < b > c",
			want:        "a  c",
			wantRemoved: 3,
		},
		{
			name:        "leaves lone bracket",
			input:       "x < y",
			want:        "x < y",
			wantRemoved: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, removed := StripTags(tt.input)
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
			if removed != tt.wantRemoved {
				t.Errorf("expected %d removed, got %d", tt.wantRemoved, removed)
			}
		})
	}
}

// TestStripGlyphs tests glyph placeholder removal.
func TestStripGlyphs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		input       string
		want        string
		wantRemoved int
	}{
		{name: "removes token", input: "abc /glyph12 def", want: "abc  def", wantRemoved: 8},
		{name: "case insensitive", input: "GLYPH text", want: " text", wantRemoved: 5},
		{name: "no glyph", input: "plain text", want: "plain text", wantRemoved: 0},
		{name: "several tokens", input: "glyph a glyph", want: " a ", wantRemoved: 10},
		{name: "no-break space ends token", input: "abc\u00a0glyph def", want: "abc\u00a0 def", wantRemoved: 5},
		{name: "em and thin spaces end token", input: "foo\u2003glyph\u2009bar", want: "foo\u2003\u2009bar", wantRemoved: 5},
		{name: "next line ends token", input: "glyph\u0085word", want: "\u0085word", wantRemoved: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, removed := StripGlyphs(tt.input)
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
			if removed != tt.wantRemoved {
				t.Errorf("expected %d removed, got %d", tt.wantRemoved, removed)
			}
		})
	}
}

// TestStripUnusual tests out-of-script character removal.
func TestStripUnusual(t *testing.T) {
	t.Parallel()

	allowed := mustAllowed(t, script.CodeLatin)
	unusual := script.Unusual()

	t.Run("drops unusual characters", func(t *testing.T) {
		t.Parallel()

		got, removed := StripUnusual("aЖb c", allowed, unusual)
		if got != "ab c" || removed != 1 {
			t.Errorf("expected %q with 1 removed, got %q with %d", "ab c", got, removed)
		}
	})

	t.Run("does not count whitespace", func(t *testing.T) {
		t.Parallel()

		got, removed := StripUnusual("a\u00a0b", allowed, unusual)
		if got != "ab" || removed != 0 {
			t.Errorf("expected %q with 0 removed, got %q with %d", "ab", got, removed)
		}
	})

	t.Run("keeps characters outside unusual", func(t *testing.T) {
		t.Parallel()

		got, removed := StripUnusual("αβγ 中文", allowed, unusual)
		if got != "αβγ 中文" || removed != 0 {
			t.Errorf("expected unchanged text, got %q with %d removed", got, removed)
		}
	})

	t.Run("keeps accents of known scripts", func(t *testing.T) {
		t.Parallel()

		got, removed := StripUnusual("déjà vu", allowed, unusual)
		if got != "déjà vu" || removed != 0 {
			t.Errorf("expected unchanged text, got %q with %d removed", got, removed)
		}

		got, removed = StripUnusual("søren", allowed, unusual)
		if got != "sren" || removed != 1 {
			t.Errorf("expected %q with 1 removed, got %q with %d", "sren", got, removed)
		}
	})

	t.Run("explicitly allowed unusual characters survive", func(t *testing.T) {
		t.Parallel()

		withUnusual := mustAllowed(t, script.CodeLatin, script.CodeUnusual)
		got, removed := StripUnusual("aЖb", withUnusual, unusual)
		if got != "aЖb" || removed != 0 {
			t.Errorf("expected unchanged text, got %q with %d removed", got, removed)
		}
	})
}

// TestCleanLine tests the per-line marker decision.
func TestCleanLine(t *testing.T) {
	t.Parallel()

	allowed := mustAllowed(t, script.CodeLatin)
	unusual := script.Unusual()

	tests := []struct {
		name       string
		input      string
		want       string
		wantTotal  int
		wantMarked bool
	}{
		{
			name:       "appends marker after long glyph token",
			input:      "alpha beta gamma glyph1234567",
			want:       "alpha beta gamma " + Marker,
			wantTotal:  12,
			wantMarked: true,
		},
		{
			name:       "small loss leaves no marker",
			input:      "abc <i>x",
			want:       "abc x",
			wantTotal:  3,
			wantMarked: false,
		},
		{
			name:       "line emptied by removal becomes marker",
			input:      "<span>glyph</span>",
			want:       Marker,
			wantTotal:  18,
			wantMarked: true,
		},
		{
			name:       "blank line stays blank",
			input:      "   ",
			want:       "   ",
			wantTotal:  0,
			wantMarked: false,
		},
		{
			name:       "existing marker is untouched",
			input:      "text " + Marker,
			want:       "text " + Marker,
			wantTotal:  0,
			wantMarked: false,
		},
		{
			name:       "unusual characters count towards threshold",
			input:      "ok ЖЖЖЖЖ",
			want:       "ok " + Marker,
			wantTotal:  5,
			wantMarked: true,
		},
		{
			name:       "glyph split by no-break space",
			input:      "keep gl\u00a0yph words",
			want:       "keep  words " + Marker,
			wantTotal:  5,
			wantMarked: true,
		},
		{
			name:       "word before em space survives",
			input:      "foo\u2003glyph bar",
			want:       "foo\u2003 bar " + Marker,
			wantTotal:  5,
			wantMarked: true,
		},
		{
			name:       "word before no-break space survives",
			input:      "abc\u00a0glyph",
			want:       "abc " + Marker,
			wantTotal:  5,
			wantMarked: true,
		},
		{
			name:       "glyph split by unusual character",
			input:      "word glЖyph",
			want:       "word " + Marker,
			wantTotal:  6,
			wantMarked: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, counts, marked := CleanLine(tt.input, allowed, unusual)
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
			if counts.Total() != tt.wantTotal {
				t.Errorf("expected %d removed, got %d", tt.wantTotal, counts.Total())
			}
			if marked != tt.wantMarked {
				t.Errorf("expected marked=%v, got %v", tt.wantMarked, marked)
			}
		})
	}
}

// TestClean tests whole-text cleaning.
func TestClean(t *testing.T) {
	t.Parallel()

	t.Run("keeps trailing newline", func(t *testing.T) {
		t.Parallel()

		res, err := Clean("one\ntwo\n", []string{script.CodeLatin})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Text != "one\ntwo\n" {
			t.Errorf("expected %q, got %q", "one\ntwo\n", res.Text)
		}
	})

	t.Run("does not add trailing newline", func(t *testing.T) {
		t.Parallel()

		res, err := Clean("one\ntwo", []string{script.CodeLatin})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Text != "one\ntwo" {
			t.Errorf("expected %q, got %q", "one\ntwo", res.Text)
		}
	})

	t.Run("drops carriage returns", func(t *testing.T) {
		t.Parallel()

		res, err := Clean("a\r\nb\r\n", []string{script.CodeLatin})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Text != "a\nb\n" {
			t.Errorf("expected %q, got %q", "a\nb\n", res.Text)
		}
	})

	t.Run("counts removals by category", func(t *testing.T) {
		t.Parallel()

		input := "<p>Hello</p>\nglyph<c=3>\nЖ"
		res, err := Clean(input, []string{script.CodeLatin})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.TagChars != 12 {
			t.Errorf("expected 12 tag chars, got %d", res.TagChars)
		}
		if res.GlyphChars != 5 {
			t.Errorf("expected 5 glyph chars, got %d", res.GlyphChars)
		}
		if res.UnusualChars != 1 {
			t.Errorf("expected 1 unusual char, got %d", res.UnusualChars)
		}
		if res.MarkersAdded != 2 {
			t.Errorf("expected 2 markers, got %d", res.MarkersAdded)
		}
		want := "Hello " + Marker + "\n" + Marker + "\n"
		if res.Text != want {
			t.Errorf("expected %q, got %q", want, res.Text)
		}
	})

	t.Run("empty text", func(t *testing.T) {
		t.Parallel()

		res, err := Clean("", []string{script.CodeLatin})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Text != "" || res.RemovedChars() != 0 || res.MarkersAdded != 0 {
			t.Errorf("expected empty result, got %+v", res)
		}
	})

	t.Run("unknown script", func(t *testing.T) {
		t.Parallel()

		_, err := Clean("text", []string{"nope"})
		if !errors.Is(err, script.ErrUnknownScript) {
			t.Fatalf("expected ErrUnknownScript, got %v", err)
		}
	})
}

// TestCleanIsIdempotent tests that cleaning cleaned text changes nothing.
func TestCleanIsIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"plain latin text\n",
		"Ελληνικό κείμενο με <b>ετικέτες</b> και glyph<c=12,font=/AAAA+Times>\n",
		"mixed ЖЖЖЖЖЖ cyrillic and ῥήτωρ polytonic",
		"<<nested>> <!-- comment --> " + Marker + " tail",
		"<!-- text-<b>missing -->",
		"a <" + Marker + "> b",
		"glЖyph glyph\u00a0x\r\n\r\n\u00a0\u00a0\n",
		"invalid \xff\xfe bytes",
		"keep gl\u00a0yph words",
		"foo\u2003glyph bar\u2009baz",
		"abc\u00a0glyph",
		"gl\u0085yph x",
		strings.Repeat("Ж", 20) + "\n" + strings.Repeat("x", 3),
	}

	scriptSets := [][]string{
		{script.CodeLatin},
		{script.CodeLatin, script.CodeAncientGreek},
		{script.CodeGreek, script.CodeFrench, script.CodeSpanish},
	}

	for _, scripts := range scriptSets {
		for _, input := range inputs {
			first, err := Clean(input, scripts)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			second, err := Clean(first.Text, scripts)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if second.Text != first.Text {
				t.Errorf("not idempotent for %q with %v:\nfirst:  %q\nsecond: %q", input, scripts, first.Text, second.Text)
			}
			if second.RemovedChars() != 0 {
				t.Errorf("expected nothing removed on second pass for %q, got %d", input, second.RemovedChars())
			}
		}
	}
}

// TestNonSpaceCount tests non-whitespace counting.
func TestNonSpaceCount(t *testing.T) {
	t.Parallel()

	if got := NonSpaceCount(" a b\t\nc\u00a0"); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
	if MarkerWidth() != 19 {
		t.Errorf("expected marker width 19, got %d", MarkerWidth())
	}
	if got := CountMarkers(Marker + "x" + Marker); got != 2 {
		t.Errorf("expected 2 markers, got %d", got)
	}
	if got := GlyphTokenCount("glyph a Glyph1 b"); got != 2 {
		t.Errorf("expected 2 glyph tokens, got %d", got)
	}
}
