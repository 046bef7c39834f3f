package config

import "time"

// File represents the structure of the .textsieve configuration file.
// Unset fields leave the corresponding Config value untouched; pointer
// fields distinguish an explicit false or zero from an absent key.
type File struct {
	// Scripts overrides the allowed script codes.
	Scripts []string `yaml:"scripts,omitempty"`

	// Workers overrides the concurrent file limit.
	Workers int `yaml:"workers,omitempty"`

	// Extensions overrides the eligible file extensions.
	Extensions []string `yaml:"extensions,omitempty"`

	// MaxFilesPerSecond throttles batch processing.
	MaxFilesPerSecond *float64 `yaml:"maxFilesPerSecond,omitempty"`

	// Normalize toggles NFC normalization in the full pipeline.
	Normalize *bool `yaml:"normalize,omitempty"`

	// DBDir overrides the metrics database directory.
	DBDir string `yaml:"dbDir,omitempty"`

	// Tables holds table detection and removal settings.
	Tables TablesSection `yaml:"tables,omitempty"`

	// Stats holds the thresholds of the stats report.
	Stats StatsSection `yaml:"stats,omitempty"`

	// Server holds HTTP server settings.
	Server ServerSection `yaml:"server,omitempty"`
}

// TablesSection configures table handling.
type TablesSection struct {
	OrphansAsMalformed *bool `yaml:"orphansAsMalformed,omitempty"`
	Remove             *bool `yaml:"remove,omitempty"`
	OnlyMalformed      *bool `yaml:"onlyMalformed,omitempty"`
}

// StatsSection configures the badness distribution report.
type StatsSection struct {
	BadnessThreshold *float64 `yaml:"badnessThreshold,omitempty"`
	GreekThreshold   *float64 `yaml:"greekThreshold,omitempty"`
}

// ServerSection configures the HTTP API.
type ServerSection struct {
	Listen            string        `yaml:"listen,omitempty"`
	RequestsPerSecond *float64      `yaml:"requestsPerSecond,omitempty"`
	Burst             int           `yaml:"burst,omitempty"`
	MaxBodyBytes      int64         `yaml:"maxBodyBytes,omitempty"`
	ShutdownTimeout   time.Duration `yaml:"shutdownTimeout,omitempty"`
}

// Apply overlays the values set in the file onto cfg.
// Commands apply the file first and explicitly set flags afterwards,
// so flags win over the file.
func (f *File) Apply(cfg *Config) {
	if f == nil || cfg == nil {
		return
	}

	if len(f.Scripts) > 0 {
		cfg.Scripts = append([]string(nil), f.Scripts...)
	}
	if f.Workers != 0 {
		cfg.Workers = f.Workers
	}
	if len(f.Extensions) > 0 {
		cfg.Extensions = append([]string(nil), f.Extensions...)
	}
	if f.MaxFilesPerSecond != nil {
		cfg.MaxFilesPerSecond = *f.MaxFilesPerSecond
	}
	if f.Normalize != nil {
		cfg.Normalize = *f.Normalize
	}
	if f.DBDir != "" {
		cfg.DBDir = f.DBDir
	}

	if f.Tables.OrphansAsMalformed != nil {
		cfg.OrphansAsMalformed = *f.Tables.OrphansAsMalformed
	}
	if f.Tables.Remove != nil {
		cfg.RemoveTables = *f.Tables.Remove
	}
	if f.Tables.OnlyMalformed != nil {
		cfg.OnlyMalformed = *f.Tables.OnlyMalformed
	}

	if f.Stats.BadnessThreshold != nil {
		cfg.BadnessThreshold = *f.Stats.BadnessThreshold
	}
	if f.Stats.GreekThreshold != nil {
		cfg.GreekThreshold = *f.Stats.GreekThreshold
	}

	if f.Server.Listen != "" {
		cfg.ListenAddress = f.Server.Listen
	}
	if f.Server.RequestsPerSecond != nil {
		cfg.RequestsPerSecond = *f.Server.RequestsPerSecond
	}
	if f.Server.Burst != 0 {
		cfg.RequestBurst = f.Server.Burst
	}
	if f.Server.MaxBodyBytes != 0 {
		cfg.MaxBodyBytes = f.Server.MaxBodyBytes
	}
	if f.Server.ShutdownTimeout != 0 {
		cfg.ShutdownTimeout = f.Server.ShutdownTimeout
	}
}
