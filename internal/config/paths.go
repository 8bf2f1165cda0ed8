package config

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/conn-castle/prelaunch/internal/messages"
)

// EnvConfigPath overrides the default config file location.
const EnvConfigPath = "PRELAUNCH_CONFIG"

const (
	configFileName      = "config.toml"
	preferencesFileName = "preferences.toml"
	logFileName         = "prelaunch.log"
	fallbackArchiveName = "runtime.zip"
)

var (
	userConfigDir = os.UserConfigDir
	userCacheDir  = os.UserCacheDir
)

// Paths holds the resolved filesystem locations used during a run.
type Paths struct {
	// InstallDir is the fixed target directory of the managed runtime.
	InstallDir string
	// TempDir holds in-flight downloads.
	TempDir string
	// ArchivePath is the download destination of the runtime bundle.
	ArchivePath string
	// StagingDir receives the launchable unit.
	StagingDir string
	// PreferencesPath is the preference document.
	PreferencesPath string
	// LogPath is the debug log file.
	LogPath string
}

// DefaultConfigPath returns the config path used when no flag is given:
// $PRELAUNCH_CONFIG when set, else <UserConfigDir>/prelaunch/config.toml.
func DefaultConfigPath(getenv func(string) string) (string, error) {
	if p := strings.TrimSpace(getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	dir, err := userConfigDir()
	if err != nil {
		return "", fmt.Errorf(messages.ConfigResolveUserDirFmt, err)
	}
	return filepath.Join(dir, DefaultAppID, configFileName), nil
}

// ResolvePaths derives the run paths from cfg and the per-user directories.
func ResolvePaths(cfg *Config) (Paths, error) {
	stateDir := cfg.Paths.StateDir
	if stateDir == "" {
		dir, err := userConfigDir()
		if err != nil {
			return Paths{}, fmt.Errorf(messages.ConfigResolveUserDirFmt, err)
		}
		stateDir = filepath.Join(dir, cfg.AppID)
	}
	cacheDir := cfg.Paths.CacheDir
	if cacheDir == "" {
		dir, err := userCacheDir()
		if err != nil {
			return Paths{}, fmt.Errorf(messages.ConfigResolveUserDirFmt, err)
		}
		cacheDir = filepath.Join(dir, cfg.AppID)
	}
	stagingDir := cfg.Paths.StagingDir
	if stagingDir == "" {
		stagingDir = filepath.Join(cacheDir, "launch")
	}
	installDir := cfg.Runtime.InstallDir
	if installDir == "" {
		installDir = filepath.Join(stateDir, "runtime", cfg.Runtime.Name)
	}

	tempDir := filepath.Join(cacheDir, "tmp")
	return Paths{
		InstallDir:      installDir,
		TempDir:         tempDir,
		ArchivePath:     filepath.Join(tempDir, archiveName(cfg)),
		StagingDir:      stagingDir,
		PreferencesPath: filepath.Join(stateDir, preferencesFileName),
		LogPath:         filepath.Join(stateDir, "logs", logFileName),
	}, nil
}

// archiveName picks the download file name: the configured name, else the
// base name of the first mirror URL path.
func archiveName(cfg *Config) string {
	if cfg.Download.ArchiveName != "" {
		return cfg.Download.ArchiveName
	}
	if len(cfg.Mirrors) > 0 {
		if u, err := url.Parse(cfg.Mirrors[0].URL); err == nil {
			base := path.Base(u.Path)
			if base != "" && base != "." && base != "/" {
				return base
			}
		}
	}
	return fallbackArchiveName
}
