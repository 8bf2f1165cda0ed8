package messages

// Runtime discovery, download, installation and launch messages.
const (
	LocatorRejectedFmt       = "runtime candidate %s rejected: %s"
	LocatorRejectedErrFmt    = "runtime candidate %s rejected: %s: %v"
	LocatorCandidateRejected = "runtime candidate rejected"
	LocatorCandidateAccepted = "runtime candidate accepted"
	LocatorBadPattern        = "invalid search pattern"
	LocatorReasonMissing     = "not found"
	LocatorReasonNotFile     = "not a regular file"
	LocatorReasonNoMarker    = "capability marker missing"
	LocatorReasonTimeout     = "version probe timed out"
	LocatorReasonProbeFailed = "version probe failed"
	LocatorReasonVersion     = "version token not reported"

	DownloadNoMirrors           = "no download mirrors configured"
	DownloadExhausted           = "all download attempts failed"
	DownloadExhaustedFmt        = "%w after %d attempts: %w"
	DownloadTooLarge            = "download exceeds size limit"
	DownloadTruncated           = "download ended before the announced length"
	DownloadIdleTimeout         = "download stalled"
	DownloadUnexpectedStatusFmt = "GET %s: unexpected status %d"
	DownloadFailedFmt           = "GET %s: %v"
	DownloadChecksumMismatchFmt = "checksum mismatch for %s: expected %s, got %s"
	DownloadCreateDirFmt        = "create download directory %s: %w"
	DownloadCreatePartFmt       = "create %s: %w"
	DownloadWritePartFmt        = "write %s: %w"
	DownloadRenameFmt           = "rename %s to %s: %w"
	DownloadOpenFileFmt         = "open %s: %w"
	DownloadHashFileFmt         = "hash %s: %w"
	DownloadAttemptLog          = "download attempt"
	DownloadAttemptFailedLog    = "download attempt failed"
	DownloadVerifiedLog         = "download verified"
	DownloadReusedLog           = "existing archive matches checksum"
	DownloadReuseCheckLog       = "existing archive not reusable"
	DownloadCancelledLog        = "download cancelled"

	InstallMissingExecutable  = "runtime executable missing after extraction"
	InstallUnsafePath         = "archive entry escapes the target directory"
	InstallUnsupportedArchive = "unsupported archive format"
	InstallErrorFmt           = "install %s %s: %v"
	InstallOpenArchiveFmt     = "open archive %s: %w"
	InstallReadEntryFmt       = "read archive entry %s: %w"
	InstallWriteFileFmt       = "write %s: %w"
	InstallExtractingLog      = "extracting runtime"
	InstallFlattenedLog       = "flattened wrapping directory"
	InstallCompleteLog        = "runtime installed"

	LaunchErrorFmt     = "%s %s: %v"
	LaunchNoRuntime    = "no runtime executable"
	LaunchStagedLog    = "launchable unit staged"
	LaunchStageSoftLog = "kept existing launchable unit"
	LaunchFailedLog    = "launch failed"
	LaunchReleaseLog   = "release child process"
	LaunchStartedLog   = "launcher started"
)
