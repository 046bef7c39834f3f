package server

import "errors"

var (
	// ErrMissingText is returned for requests without a text field.
	ErrMissingText = errors.New("text is required")

	// ErrRateLimited is reported when a request exceeds the configured rate.
	ErrRateLimited = errors.New("rate limit exceeded")
)
