package config

import (
	"path/filepath"
	"runtime"
)

// DefaultAppID names the per-user directories and the default config location.
const DefaultAppID = "prelaunch"

const (
	defaultRuntimeName  = "zulu8.86.0.25-ca-fx-jre8.0.452"
	defaultVersionToken = "1.8.0_452"
	defaultMirrorURL    = "https://cdn.azul.com/zulu/bin/zulu8.86.0.25-ca-fx-jre8.0.452-win_x64.zip"
	defaultMirrorSHA256 = "7e1e1f3bf894963fee9d1b4d48a94a9d8999768fa36e803ed8e80c6afe12d3bd"
)

var goos = runtime.GOOS

// Default returns the built-in configuration for the current platform.
func Default() Config {
	cfg := Config{
		AppTitle: "Pixelmon.PRO",
		AppID:    DefaultAppID,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Runtime: RuntimeConfig{
			Name:         defaultRuntimeName,
			VersionToken: defaultVersionToken,
			VersionFlag:  "-version",
			Executable:   defaultExecutable(goos),
			BinaryDir:    "bin",
			Markers: []string{
				filepath.Join("lib", "ext", "jfxrt.jar"),
				filepath.Join("jre", "lib", "ext", "jfxrt.jar"),
			},
			SearchDirs:   defaultSearchDirs(goos),
			ProbeTimeout: "5s",
		},
		Download: DownloadConfig{
			MaxRetries:     3,
			ChunkSize:      1024 * 1024,
			MaxBytes:       512 << 20,
			ConnectTimeout: "15s",
			ReadTimeout:    "60s",
			RetryBackoff:   "1s",
		},
		Launch: LaunchConfig{
			Unit: "PixelmonPRO.jar",
		},
		Rules: RulesConfig{
			Resource: filepath.Join("rules", "{lang}.txt"),
		},
	}
	if goos == "windows" {
		cfg.Mirrors = []MirrorConfig{{URL: defaultMirrorURL, SHA256: defaultMirrorSHA256}}
	}
	return cfg
}

func defaultExecutable(osName string) string {
	if osName == "windows" {
		return "javaw"
	}
	return "java"
}

func defaultSearchDirs(osName string) []string {
	switch osName {
	case "windows":
		return []string{
			`C:\Program Files\Java\*`,
			`C:\Program Files (x86)\Java\*`,
			`C:\Program Files\Zulu\*`,
		}
	case "darwin":
		return []string{
			"/Library/Java/JavaVirtualMachines/*/Contents/Home",
			"~/Library/Java/JavaVirtualMachines/*/Contents/Home",
		}
	default:
		return []string{
			"/usr/lib/jvm/*",
			"/opt/java/*",
			"~/.sdkman/candidates/java/*",
		}
	}
}

// applyDefaults fills zero-valued fields of c from d.
func (c *Config) applyDefaults(d Config) {
	if c.AppTitle == "" {
		c.AppTitle = d.AppTitle
	}
	if c.AppID == "" {
		c.AppID = d.AppID
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = d.Logging.Format
	}

	r := &c.Runtime
	if r.Name == "" {
		r.Name = d.Runtime.Name
	}
	if r.VersionToken == "" {
		r.VersionToken = d.Runtime.VersionToken
	}
	if r.VersionFlag == "" {
		r.VersionFlag = d.Runtime.VersionFlag
	}
	if r.Executable == "" {
		r.Executable = d.Runtime.Executable
	}
	if r.BinaryDir == "" {
		r.BinaryDir = d.Runtime.BinaryDir
	}
	if len(r.Markers) == 0 {
		r.Markers = d.Runtime.Markers
	}
	if r.SearchDirs == nil {
		r.SearchDirs = d.Runtime.SearchDirs
	}
	if r.ProbeTimeout == "" {
		r.ProbeTimeout = d.Runtime.ProbeTimeout
	}

	if len(c.Mirrors) == 0 {
		c.Mirrors = d.Mirrors
	}

	dl := &c.Download
	if dl.MaxRetries == 0 {
		dl.MaxRetries = d.Download.MaxRetries
	}
	if dl.ChunkSize == 0 {
		dl.ChunkSize = d.Download.ChunkSize
	}
	if dl.MaxBytes == 0 {
		dl.MaxBytes = d.Download.MaxBytes
	}
	if dl.ConnectTimeout == "" {
		dl.ConnectTimeout = d.Download.ConnectTimeout
	}
	if dl.ReadTimeout == "" {
		dl.ReadTimeout = d.Download.ReadTimeout
	}
	if dl.RetryBackoff == "" {
		dl.RetryBackoff = d.Download.RetryBackoff
	}

	if c.Launch.Unit == "" {
		c.Launch.Unit = d.Launch.Unit
	}
	if c.Rules.Resource == "" {
		c.Rules.Resource = d.Rules.Resource
	}
}
