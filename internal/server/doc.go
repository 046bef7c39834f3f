// Package server exposes the cleaning, badness and table analyzers over HTTP.
//
// Every endpoint works on a single text sent in a JSON request body; batch
// processing of directories stays a CLI concern. Requests pass through a
// chi middleware chain that assigns request IDs, recovers panics, logs each
// request with slog and applies a token-bucket rate limit.
package server
