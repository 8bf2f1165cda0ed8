package messages

// CLI messages for user-facing commands and flags.
const (
	// RootUse is the CLI command name.
	RootUse   = "prelaunch"
	RootShort = "Find or install a compatible Java runtime and start the launcher"
	RootLong  = `prelaunch looks for an installed Java runtime with JavaFX, downloads and
installs a verified one when none is found, stages the launcher jar and
starts it detached.`

	// VersionCommitFmt formats the commit hash for version display.
	VersionCommitFmt = "commit %s"
	VersionBuildFmt  = "built %s"
	VersionFullFmt   = "%s (%s)"
	VersionTemplate  = "{{.Version}}\n"

	FlagConfigUsage        = "config file (default $PRELAUNCH_CONFIG or <user config dir>/prelaunch/config.toml)"
	FlagResourcesUsage     = "bundled resources directory (default $PRELAUNCH_RESOURCES or <exe dir>/resources)"
	FlagLangUsage          = "interface language (en, ru); detected from the environment when empty"
	FlagDebugUsage         = "debug logging, also written to the log file"
	FlagPlainUsage         = "plain line output instead of the interactive screen"
	FlagForceDownloadUsage = "ignore installed runtimes and download a fresh one"
	FlagRuntimeUsage       = "answer for several runtimes found: a path, its number, or \"download\""
	FlagRememberUsage      = "remember the --runtime answer and the rules acknowledgement"
	FlagAcceptRulesUsage   = "accept the server rules without prompting"

	CLIRunFailedFmt = "run failed during %s: %w"
	CLIResourcesLog = "resources resolved"
	CLILocaleLog    = "language override file ignored"
	CLIRulesReadLog = "rules text unreadable"

	// LocateUse is the locate command name.
	LocateUse          = "locate"
	LocateShort        = "List compatible installed runtimes"
	LocateNoneFound    = "No compatible runtime found"
	LocateMisplacedFmt = "Runtime executable found at %s instead of %s; reinstall with 'prelaunch fetch'\n"

	// FetchUse is the fetch command name.
	FetchUse              = "fetch"
	FetchShort            = "Download and install the runtime without launching"
	FetchAttemptFmt       = "Download attempt %d (mirror %d)\n"
	FetchProgressFmt      = "%3d%% (%d of %d bytes)\n"
	FetchAttemptFailedFmt = "Attempt failed: %v"
	FetchReusedFmt        = "Using verified archive %s\n"
	FetchInstalledFmt     = "Installed runtime: %s\n"

	// ForgetUse is the forget command name.
	ForgetUse     = "forget"
	ForgetShort   = "Forget the remembered runtime and rules acknowledgement"
	ForgetDoneFmt = "Removed %s\n"
)
