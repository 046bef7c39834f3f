// Package log provides the application's slog setup.
//
// TextGuardHandler wraps any slog.Handler and keeps document text from
// flooding or corrupting log output. Extracted text is often huge, full
// of control characters, or not valid UTF-8, and it regularly ends up in
// attributes of debug logs.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//
//	logger.Debug("line cleaned", "path", path, "line", line) // line=<57 runes>
package log
