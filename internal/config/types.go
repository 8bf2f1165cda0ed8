package config

import "time"

// Config is the launcher configuration. It is built once at startup and passed
// by value (or read-only pointer) into every component.
type Config struct {
	AppTitle string         `toml:"app_title"`
	AppID    string         `toml:"app_id"`
	Language string         `toml:"language"`
	Logging  LoggingConfig  `toml:"logging"`
	Runtime  RuntimeConfig  `toml:"runtime"`
	Mirrors  []MirrorConfig `toml:"mirrors"`
	Download DownloadConfig `toml:"download"`
	Launch   LaunchConfig   `toml:"launch"`
	Rules    RulesConfig    `toml:"rules"`
	Paths    PathsConfig    `toml:"paths"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	// Debug adds a log file output under the state directory.
	Debug bool `toml:"debug"`
}

// RuntimeConfig describes the runtime the launcher looks for and installs.
type RuntimeConfig struct {
	// Name is the directory name of the installed bundle.
	Name         string   `toml:"name"`
	VersionToken string   `toml:"version_token"`
	VersionFlag  string   `toml:"version_flag"`
	Executable   string   `toml:"executable"`
	BinaryDir    string   `toml:"binary_dir"`
	Markers      []string `toml:"markers"`
	InstallDir   string   `toml:"install_dir"`
	SearchDirs   []string `toml:"search_dirs"`
	SearchPath   *bool    `toml:"search_path"`
	ProbeTimeout string   `toml:"probe_timeout"`
}

// MirrorConfig is one source of the runtime bundle.
type MirrorConfig struct {
	URL    string `toml:"url"`
	SHA256 string `toml:"sha256"`
}

// DownloadConfig tunes the mirror downloader.
type DownloadConfig struct {
	MaxRetries     int    `toml:"max_retries"`
	ChunkSize      int    `toml:"chunk_size"`
	MaxBytes       int64  `toml:"max_bytes"`
	ConnectTimeout string `toml:"connect_timeout"`
	ReadTimeout    string `toml:"read_timeout"`
	RetryBackoff   string `toml:"retry_backoff"`
	ArchiveName    string `toml:"archive_name"`
}

// LaunchConfig describes the downstream launchable unit.
type LaunchConfig struct {
	// Unit is the resource-relative path of the launchable unit.
	Unit string `toml:"unit"`
	// Args are passed to the runtime before "-jar <unit>".
	Args []string `toml:"args"`
}

// RulesConfig enables the region-specific rules acknowledgement.
type RulesConfig struct {
	// Regions lists ISO 3166 region codes that require acknowledgement.
	Regions []string `toml:"regions"`
	// Resource is the resource-relative rules text path; "{lang}" is replaced
	// with the active language code.
	Resource string `toml:"resource"`
}

// PathsConfig overrides the per-user directories.
type PathsConfig struct {
	StateDir   string `toml:"state_dir"`
	CacheDir   string `toml:"cache_dir"`
	StagingDir string `toml:"staging_dir"`
}

// SearchPathEnabled reports whether the system search path is scanned.
func (r RuntimeConfig) SearchPathEnabled() bool {
	return r.SearchPath == nil || *r.SearchPath
}

// ProbeTimeoutDuration returns the parsed probe timeout. Validate guarantees it parses.
func (r RuntimeConfig) ProbeTimeoutDuration() time.Duration {
	return mustDuration(r.ProbeTimeout)
}

// ConnectTimeoutDuration returns the parsed connect timeout.
func (d DownloadConfig) ConnectTimeoutDuration() time.Duration {
	return mustDuration(d.ConnectTimeout)
}

// ReadTimeoutDuration returns the parsed read timeout.
func (d DownloadConfig) ReadTimeoutDuration() time.Duration {
	return mustDuration(d.ReadTimeout)
}

// RetryBackoffDuration returns the parsed backoff between attempts.
func (d DownloadConfig) RetryBackoffDuration() time.Duration {
	return mustDuration(d.RetryBackoff)
}

func mustDuration(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	d, _ := time.ParseDuration(raw)
	return d
}
