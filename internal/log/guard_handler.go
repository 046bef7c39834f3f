package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxValueRunes is the longest string value logged unchanged.
const DefaultMaxValueRunes = 120

// contentKeys are attribute keys that carry document text. Their values
// are replaced by a rune count unless snippets are enabled.
var contentKeys = map[string]bool{
	"text":    true,
	"content": true,
	"line":    true,
	"snippet": true,
}

// TextGuardHandler wraps an slog.Handler to keep document text out of logs.
// String attributes are repaired and shortened before they reach the
// underlying handler: invalid UTF-8 becomes U+FFFD, control characters
// other than tab are escaped, and long values are truncated. Attributes
// whose key names document content are summarized as a rune count.
type TextGuardHandler struct {
	// handler is the underlying slog handler that receives sanitized records.
	handler slog.Handler

	// maxRunes is the truncation limit for string values.
	maxRunes int

	// snippets keeps content-key values (still truncated) instead of counting them.
	snippets bool
}

// GuardOption configures a TextGuardHandler.
type GuardOption func(*TextGuardHandler)

// WithMaxValueRunes sets the truncation limit. Non-positive values are ignored.
func WithMaxValueRunes(n int) GuardOption {
	return func(h *TextGuardHandler) {
		if n > 0 {
			h.maxRunes = n
		}
	}
}

// WithSnippets logs content-key values instead of their rune count.
func WithSnippets(enabled bool) GuardOption {
	return func(h *TextGuardHandler) {
		h.snippets = enabled
	}
}

// NewTextGuardHandler creates a new TextGuardHandler wrapping the given handler.
// If handler is nil, slog.Default().Handler() is used.
func NewTextGuardHandler(handler slog.Handler, opts ...GuardOption) *TextGuardHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	h := &TextGuardHandler{handler: handler, maxRunes: DefaultMaxValueRunes}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Enabled reports whether the handler handles records at the given level.
func (h *TextGuardHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle sanitizes the record's attributes and passes it to the underlying handler.
func (h *TextGuardHandler) Handle(ctx context.Context, r slog.Record) error {
	sanitized := slog.NewRecord(r.Time, r.Level, h.sanitizeString(r.Message), r.PC)

	r.Attrs(func(a slog.Attr) bool {
		sanitized.AddAttrs(h.sanitizeAttr(a))
		return true
	})

	return h.handler.Handle(ctx, sanitized)
}

// WithAttrs returns a new handler with the given attributes added.
// Attributes are sanitized before being added.
func (h *TextGuardHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sanitizedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		sanitizedAttrs[i] = h.sanitizeAttr(a)
	}
	return h.clone(h.handler.WithAttrs(sanitizedAttrs))
}

// WithGroup returns a new handler with the given group name.
func (h *TextGuardHandler) WithGroup(name string) slog.Handler {
	return h.clone(h.handler.WithGroup(name))
}

func (h *TextGuardHandler) clone(handler slog.Handler) *TextGuardHandler {
	return &TextGuardHandler{handler: handler, maxRunes: h.maxRunes, snippets: h.snippets}
}

// sanitizeAttr sanitizes a single attribute, recursively handling groups.
func (h *TextGuardHandler) sanitizeAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		sanitizedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			sanitizedAttrs[i] = h.sanitizeAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(sanitizedAttrs...)}
	}

	if a.Value.Kind() != slog.KindString {
		return a
	}

	s := a.Value.String()
	if contentKeys[strings.ToLower(a.Key)] && !h.snippets {
		return slog.String(a.Key, fmt.Sprintf("<%d runes>", utf8.RuneCountInString(s)))
	}
	return slog.String(a.Key, h.sanitizeString(s))
}

// sanitizeString repairs, escapes, and truncates s.
func (h *TextGuardHandler) sanitizeString(s string) string {
	s = strings.ToValidUTF8(s, string(utf8.RuneError))

	total := utf8.RuneCountInString(s)
	var sb strings.Builder
	n := 0
	for _, r := range s {
		if n == h.maxRunes {
			fmt.Fprintf(&sb, "…(+%d)", total-n)
			break
		}
		n++
		switch {
		case r == '\t' || !unicode.IsControl(r):
			sb.WriteRune(r)
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\r':
			sb.WriteString(`\r`)
		default:
			fmt.Fprintf(&sb, `\u%04x`, r)
		}
	}
	return sb.String()
}

// newLevel returns Debug when verbose and Warn otherwise.
func newLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

// NewLogger creates a text slog.Logger that guards document text.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Warn
func NewLogger(w io.Writer, verbose bool, opts ...GuardOption) *slog.Logger {
	textHandler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: newLevel(verbose)})
	return slog.New(NewTextGuardHandler(textHandler, opts...))
}

// NewJSONLogger creates a JSON slog.Logger that guards document text.
// This is useful for structured log aggregation.
func NewJSONLogger(w io.Writer, verbose bool, opts ...GuardOption) *slog.Logger {
	jsonHandler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: newLevel(verbose)})
	return slog.New(NewTextGuardHandler(jsonHandler, opts...))
}
