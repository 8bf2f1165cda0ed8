package orchestrator

// State is a step of the acquisition and launch workflow.
type State int

const (
	StateDiscover State = iota
	StateAmbiguousWait
	StateDownload
	StateInstall
	StateStageLaunchable
	StateRuleWait
	StateLaunch
	StateDone
	StateCancelled
	StateFailed
)

var stateNames = [...]string{
	StateDiscover:        "DISCOVER",
	StateAmbiguousWait:   "AMBIGUOUS_WAIT",
	StateDownload:        "DOWNLOAD",
	StateInstall:         "INSTALL",
	StateStageLaunchable: "STAGE_LAUNCHABLE",
	StateRuleWait:        "RULE_WAIT",
	StateLaunch:          "LAUNCH",
	StateDone:            "DONE",
	StateCancelled:       "CANCELLED",
	StateFailed:          "FAILED",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "UNKNOWN"
	}
	return stateNames[s]
}

// Terminal reports whether no further transition follows s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateCancelled || s == StateFailed
}

// Phase names the step a FAILED outcome came from.
type Phase string

const (
	PhaseNone     Phase = ""
	PhaseDownload Phase = "download"
	PhaseInstall  Phase = "install"
	PhaseStage    Phase = "stage"
	PhaseLaunch   Phase = "launch"
)

// Severity grades an event message for display.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// Event is pushed to the presenter on every transition and status change.
// It carries display data only.
type Event struct {
	State    State
	Phase    Phase
	Message  string
	Severity Severity
	// Percent is the download progress, or -1 when the event has none.
	Percent int
	// Progress marks per-chunk byte counts, which arrive at a high rate.
	Progress bool
}

// DecisionKind tags a Decision.
type DecisionKind int

const (
	DecisionCancelled DecisionKind = iota
	DecisionSelected
	DecisionForceDownload
)

// Decision answers an ambiguous discovery.
type Decision struct {
	Kind DecisionKind
	// Path is the chosen candidate when Kind is DecisionSelected.
	Path string
	// Remember persists Path as the preferred runtime.
	Remember bool
}

// Selected returns a decision choosing path.
func Selected(path string, remember bool) Decision {
	return Decision{Kind: DecisionSelected, Path: path, Remember: remember}
}

// ForceDownload returns a decision ignoring the discovered runtimes.
func ForceDownload() Decision { return Decision{Kind: DecisionForceDownload} }

// Cancel returns a cancelling decision.
func Cancel() Decision { return Decision{Kind: DecisionCancelled} }

// Ack answers the rules acknowledgement.
type Ack struct {
	Accepted bool
	Remember bool
}

// Outcome is the terminal result of Run.
type Outcome struct {
	State State
	// Phase is set when State is StateFailed.
	Phase Phase
	// Runtime is the runtime executable that was (or would have been) used.
	Runtime string
	// Unit is the staged launchable unit.
	Unit string
	PID  int
	Err  error
}
