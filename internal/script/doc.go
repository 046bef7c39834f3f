// Package script provides the script registry used by the cleaner and the
// badness analyzer.
//
// A script is a named set of Unicode code points: a writing system such as
// Latin or Greek, or a symbol category such as punctuation or digits. The
// registry is built lazily on first use and is read-only afterwards, so it can
// be shared between goroutines without locking.
//
// # Codes
//
//	lat      Latin letters a-z, A-Z
//	gre      monotonic Greek
//	grc      Greek including the polytonic Greek Extended block
//	fra      French accented letters and guillemets
//	spa      Spanish accented letters and inverted marks
//	punct    ASCII punctuation
//	num      ASCII digits
//	sym      common symbols (currency, copyright, degree, section)
//	unusual  code points that usually indicate extraction damage
//
// The "unusual" set never overlaps any other set. Characters that belong to a
// known script are subtracted from it when the registry is built.
//
// # Usage
//
//	allowed, err := script.AllowedSet([]string{"lat", "grc"})
//	if err != nil {
//	    return err // errors.Is(err, script.ErrUnknownScript)
//	}
//	if !allowed.Contains(r) && script.Unusual().Contains(r) {
//	    // drop r
//	}
package script
