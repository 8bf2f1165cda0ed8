package messages

// Filesystem, logging, preference, resource and locale messages.
const (
	FsutilSoftFailureFmt = "%s %s (ignored): %v"
	FsutilCreateDirFmt   = "create directory %s: %w"
	FsutilCreateTempFmt  = "create temp file: %w"
	FsutilWriteTempFmt   = "write temp file %s: %w"
	FsutilChmodFmt       = "chmod %s: %w"
	FsutilRenameFmt      = "rename %s to %s: %w"
	FsutilOpenFmt        = "open %s: %w"
	FsutilOpenLockFmt    = "open lock file %s: %w"
	FsutilLockFmt        = "lock %s: %w"
	FsutilLockTimeoutFmt = "timed out after %s waiting for file lock"

	LoggingCreateDirFmt    = "create log directory %s: %w"
	LoggingBuildFmt        = "build logger: %w"
	LoggingInvalidLevelFmt = "invalid log level %q"

	PrefsReadFmt   = "read preferences %s: %w"
	PrefsDecodeFmt = "decode preferences %s: %w"
	PrefsEncodeFmt = "encode preferences: %w"
	PrefsWriteFmt  = "write preferences %s: %w"
	PrefsRemoveFmt = "remove preferences %s: %w"

	ResourcesGetwdFmt = "resolve working directory: %w"
	ResourcesRootFmt  = "resources root %s: %w"
	ResourcesReadFmt  = "read resource %s: %w"

	LocaleDecodeFmt  = "decode %s: %w"
	LocaleMissingFmt = "<missing string %s>"
)
