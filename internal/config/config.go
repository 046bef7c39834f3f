package config

import (
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/adrg/xdg"
	"github.com/nao1215/textsieve/internal/script"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "textsieve"

	// DefaultExtension is the only file extension processed unless configured otherwise.
	DefaultExtension = ".md"

	// DefaultBadnessThreshold is the badness below which a document counts as clean
	// in the stats report.
	DefaultBadnessThreshold = 0.1

	// DefaultGreekThreshold is the Greek share (as a ratio) a clean document
	// must reach to count as clean Greek text in the stats report.
	DefaultGreekThreshold = 0.7

	// DefaultMaxFilesPerSecond disables batch throttling.
	DefaultMaxFilesPerSecond = 0

	// DefaultListenAddress binds the HTTP server to loopback only.
	DefaultListenAddress = "127.0.0.1:8080"

	// DefaultRequestsPerSecond is the sustained request rate the server accepts.
	DefaultRequestsPerSecond = 20

	// DefaultRequestBurst is the number of requests the server accepts at once.
	DefaultRequestBurst = 40

	// DefaultMaxBodyBytes limits request bodies to 10MB.
	DefaultMaxBodyBytes = 10 * 1024 * 1024

	// DefaultShutdownTimeout bounds graceful server shutdown.
	DefaultShutdownTimeout = 10 * time.Second
)

// DefaultScripts returns the scripts allowed when none are configured:
// Latin plus polytonic Greek.
func DefaultScripts() []string {
	return []string{script.CodeLatin, script.CodeAncientGreek}
}

// Config holds all configuration options for textsieve.
// It is populated from CLI flags and the optional configuration file and
// passed down explicitly; there is no global configuration state.
type Config struct {
	// Scripts lists the allowed script codes used by cleaning and analysis.
	Scripts []string

	// Workers is the maximum number of files processed concurrently.
	Workers int

	// Extensions lists the file extensions eligible for batch processing.
	Extensions []string

	// MaxFilesPerSecond throttles batch processing. Zero means unlimited.
	MaxFilesPerSecond float64

	// OrphansAsMalformed counts separator lines without a header row as
	// malformed tables instead of only listing them.
	OrphansAsMalformed bool

	// RemoveTables removes tables from documents in the full pipeline.
	RemoveTables bool

	// OnlyMalformed restricts table removal to malformed tables.
	OnlyMalformed bool

	// Normalize applies NFC normalization before cleaning in the full pipeline.
	Normalize bool

	// BadnessThreshold is the clean-document cutoff used by the stats report.
	BadnessThreshold float64

	// GreekThreshold is the minimum Greek ratio used by the stats report.
	GreekThreshold float64

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, .textsieve is searched in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// JSONReport selects JSON report output.
	JSONReport bool

	// MarkdownReport selects GitHub Flavored Markdown report output.
	MarkdownReport bool

	// CSVReport selects CSV report output.
	CSVReport bool

	// ReportFile is the output file path for the report.
	// When empty, the report is written to stdout.
	ReportFile string

	// InputDir is the directory tree processed by batch commands.
	InputDir string

	// OutputDir receives cleaned documents.
	OutputDir string

	// DBDir is the directory holding the metrics database.
	// Defaults to the XDG data directory (~/.local/share/textsieve on Linux).
	DBDir string

	// SaveToDB stores per-document metrics of pipeline runs.
	SaveToDB bool

	// ListenAddress is the HTTP server address in "host:port" format.
	ListenAddress string

	// RequestsPerSecond is the server request rate limit. Zero disables it.
	RequestsPerSecond float64

	// RequestBurst is the server request burst size.
	RequestBurst int

	// MaxBodyBytes limits HTTP request bodies. Zero means DefaultMaxBodyBytes.
	MaxBodyBytes int64

	// ShutdownTimeout bounds graceful server shutdown.
	ShutdownTimeout time.Duration
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Scripts:           DefaultScripts(),
		Workers:           runtime.NumCPU(),
		Extensions:        []string{DefaultExtension},
		MaxFilesPerSecond: DefaultMaxFilesPerSecond,
		RemoveTables:      true,
		OnlyMalformed:     true,
		Normalize:         true,
		BadnessThreshold:  DefaultBadnessThreshold,
		GreekThreshold:    DefaultGreekThreshold,
		DBDir:             XDGDataDir(),
		SaveToDB:          true,
		ListenAddress:     DefaultListenAddress,
		RequestsPerSecond: DefaultRequestsPerSecond,
		RequestBurst:      DefaultRequestBurst,
		MaxBodyBytes:      DefaultMaxBodyBytes,
		ShutdownTimeout:   DefaultShutdownTimeout,
	}
}

// XDGDataDir returns the XDG data directory for textsieve.
// On Linux: ~/.local/share/textsieve
// On macOS: ~/Library/Application Support/textsieve
// On Windows: %LOCALAPPDATA%\textsieve
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for textsieve.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid and returns the first problem found.
func (c *Config) Validate() error {
	if len(c.Scripts) == 0 {
		return ErrNoScripts
	}
	if _, err := script.AllowedSet(c.Scripts); err != nil {
		return err
	}

	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}

	if c.reportFormatCount() > 1 {
		return ErrConflictingReportFormats
	}

	if c.BadnessThreshold < 0 || c.BadnessThreshold > 1 {
		return fmt.Errorf("%w: badness threshold %v", ErrInvalidThreshold, c.BadnessThreshold)
	}
	if c.GreekThreshold < 0 || c.GreekThreshold > 1 {
		return fmt.Errorf("%w: greek threshold %v", ErrInvalidThreshold, c.GreekThreshold)
	}

	if c.MaxFilesPerSecond < 0 || c.RequestsPerSecond < 0 || c.RequestBurst < 0 {
		return ErrInvalidRateLimit
	}

	if c.MaxBodyBytes < 0 {
		return ErrInvalidMaxBodyBytes
	}

	return nil
}

// ValidateBatch runs Validate and additionally requires an input directory.
func (c *Config) ValidateBatch() error {
	if c.InputDir == "" {
		return ErrNoInputDir
	}
	return c.Validate()
}

func (c *Config) reportFormatCount() int {
	n := 0
	for _, set := range []bool{c.JSONReport, c.MarkdownReport, c.CSVReport} {
		if set {
			n++
		}
	}
	return n
}
