package script

import "errors"

// ErrUnknownScript is returned when a script code is not present in the registry.
// Callers receive it wrapped with the offending code, so errors.Is must be used
// for comparison.
var ErrUnknownScript = errors.New("unknown script")
