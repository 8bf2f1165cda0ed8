package messages

// Workflow log messages and presenter formats.
const (
	OrchestratorEnterLog         = "entering state"
	OrchestratorDiscoveredLog    = "runtime discovery finished"
	OrchestratorRememberedLog    = "using remembered runtime"
	OrchestratorForceDownloadLog = "skipping installed runtimes"
	OrchestratorUnknownChoiceLog = "selected runtime is not a discovered candidate"
	OrchestratorLocateLog        = "runtime discovery failed"
	OrchestratorInstalledLog     = "runtime ready"
	OrchestratorCleanupLog       = "could not remove downloaded archive"
	OrchestratorPrefsLoadLog     = "preferences unreadable, using defaults"
	OrchestratorPrefsSaveLog     = "could not save preference"
	OrchestratorCancelledLog     = "run cancelled"
	OrchestratorFailedLog        = "run failed"

	UIPlainProgressFmt  = "[%3d%%] %s"
	UIPlainCandidateFmt = "  %d) %s\n"
)
