// Package config provides configuration structures and utilities for textsieve.
// It defines the options shared by the batch commands, the metrics store,
// report generation and the HTTP server, and loads overrides from a YAML file.
package config
