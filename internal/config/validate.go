package config

import (
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/conn-castle/prelaunch/internal/messages"
)

var validLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

var validLogFormats = map[string]struct{}{
	"console": {},
	"json":    {},
}

// Validate ensures the config is complete and consistent.
func (c *Config) Validate(source string) error {
	if strings.TrimSpace(c.AppID) == "" {
		return fmt.Errorf(messages.ConfigFieldRequiredFmt, source, "app_id")
	}
	if strings.ContainsAny(c.AppID, `/\`) {
		return fmt.Errorf(messages.ConfigAppIDInvalidFmt, source, c.AppID)
	}
	if _, ok := validLogLevels[c.Logging.Level]; !ok {
		return fmt.Errorf(messages.ConfigLogLevelInvalidFmt, source, c.Logging.Level)
	}
	if _, ok := validLogFormats[c.Logging.Format]; !ok {
		return fmt.Errorf(messages.ConfigLogFormatInvalidFmt, source, c.Logging.Format)
	}

	r := c.Runtime
	if strings.TrimSpace(r.VersionToken) == "" {
		return fmt.Errorf(messages.ConfigFieldRequiredFmt, source, "runtime.version_token")
	}
	if strings.TrimSpace(r.Executable) == "" {
		return fmt.Errorf(messages.ConfigFieldRequiredFmt, source, "runtime.executable")
	}
	if strings.TrimSpace(r.BinaryDir) == "" {
		return fmt.Errorf(messages.ConfigFieldRequiredFmt, source, "runtime.binary_dir")
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf(messages.ConfigFieldRequiredFmt, source, "runtime.name")
	}
	if len(r.Markers) == 0 {
		return fmt.Errorf(messages.ConfigFieldRequiredFmt, source, "runtime.markers")
	}
	if err := validateDuration(source, "runtime.probe_timeout", r.ProbeTimeout, true); err != nil {
		return err
	}

	for i, m := range c.Mirrors {
		if err := validateMirror(m); err != nil {
			return fmt.Errorf(messages.ConfigMirrorInvalidFmt, source, i, err)
		}
	}

	d := c.Download
	if d.MaxRetries < 1 {
		return fmt.Errorf(messages.ConfigPositiveIntFmt, source, "download.max_retries")
	}
	if d.ChunkSize < 1 {
		return fmt.Errorf(messages.ConfigPositiveIntFmt, source, "download.chunk_size")
	}
	if d.MaxBytes < 1 {
		return fmt.Errorf(messages.ConfigPositiveIntFmt, source, "download.max_bytes")
	}
	if err := validateDuration(source, "download.connect_timeout", d.ConnectTimeout, true); err != nil {
		return err
	}
	if err := validateDuration(source, "download.read_timeout", d.ReadTimeout, true); err != nil {
		return err
	}
	if err := validateDuration(source, "download.retry_backoff", d.RetryBackoff, false); err != nil {
		return err
	}
	if strings.ContainsAny(d.ArchiveName, `/\`) {
		return fmt.Errorf(messages.ConfigArchiveNameInvalidFmt, source, d.ArchiveName)
	}

	if strings.TrimSpace(c.Launch.Unit) == "" {
		return fmt.Errorf(messages.ConfigFieldRequiredFmt, source, "launch.unit")
	}
	for _, region := range c.Rules.Regions {
		if len(strings.TrimSpace(region)) != 2 {
			return fmt.Errorf(messages.ConfigRegionInvalidFmt, source, region)
		}
	}
	return nil
}

func validateMirror(m MirrorConfig) error {
	u, err := url.Parse(m.URL)
	if err != nil {
		return err
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf(messages.ConfigMirrorSchemeFmt, m.URL)
	}
	if u.Host == "" {
		return fmt.Errorf(messages.ConfigMirrorHostFmt, m.URL)
	}
	if !isSHA256Hex(m.SHA256) {
		return fmt.Errorf(messages.ConfigMirrorHashFmt, m.SHA256)
	}
	return nil
}

func isSHA256Hex(s string) bool {
	if len(s) != 64 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

func validateDuration(source string, key string, raw string, positive bool) error {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf(messages.ConfigDurationInvalidFmt, source, key, err)
	}
	if d < 0 || (positive && d == 0) {
		return fmt.Errorf(messages.ConfigDurationRangeFmt, source, key, raw)
	}
	return nil
}
