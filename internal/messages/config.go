package messages

// Config messages for loading and validation.
const (
	ConfigReadFileFmt         = "failed to read config %s: %w"
	ConfigInvalidTOMLFmt      = "invalid config %s: %w"
	ConfigUnrecognizedKeysFmt = "%s: unrecognized keys: %w"
	ConfigExpandHomeFmt       = "%s: expand home directory: %w"
	ConfigResolveUserDirFmt   = "resolve user directory: %w"

	ConfigFieldRequiredFmt      = "%s: %s is required"
	ConfigAppIDInvalidFmt       = "%s: app_id %q must not contain path separators"
	ConfigLogLevelInvalidFmt    = "%s: logging.level %q must be one of debug, info, warn, error"
	ConfigLogFormatInvalidFmt   = "%s: logging.format %q must be console or json"
	ConfigPositiveIntFmt        = "%s: %s must be at least 1"
	ConfigDurationInvalidFmt    = "%s: %s: %w"
	ConfigDurationRangeFmt      = "%s: %s %q is out of range"
	ConfigArchiveNameInvalidFmt = "%s: download.archive_name %q must be a file name"
	ConfigRegionInvalidFmt      = "%s: rules.regions entry %q must be a two-letter region code"
	ConfigMirrorInvalidFmt      = "%s: mirrors[%d]: %w"
	ConfigMirrorSchemeFmt       = "url %q must use http or https"
	ConfigMirrorHostFmt         = "url %q has no host"
	ConfigMirrorHashFmt         = "sha256 %q must be 64 hex characters"
)
