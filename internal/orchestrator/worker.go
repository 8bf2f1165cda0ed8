// Package orchestrator drives runtime discovery, download, installation,
// staging and launch as an explicit state machine running on one worker
// goroutine.
package orchestrator

import (
	"context"
	"errors"
	"slices"

	"go.uber.org/zap"

	"github.com/conn-castle/prelaunch/internal/download"
	"github.com/conn-castle/prelaunch/internal/fsutil"
	"github.com/conn-castle/prelaunch/internal/install"
	"github.com/conn-castle/prelaunch/internal/locale"
	"github.com/conn-castle/prelaunch/internal/messages"
	"github.com/conn-castle/prelaunch/internal/prefs"
)

// Presenter is the presentation side of the workflow. Report must not block
// for long. The Request methods must return immediately and deliver exactly
// one value on reply later; the worker waits on it together with the run
// context.
type Presenter interface {
	Report(Event)
	RequestRuntimeChoice(candidates []string, reply chan<- Decision)
	RequestRuleAck(text string, reply chan<- Ack)
}

// RuntimeLocator finds compatible installed runtimes.
type RuntimeLocator interface {
	Locate(ctx context.Context) ([]string, error)
}

// MirrorDownloader fetches the verified runtime bundle.
type MirrorDownloader interface {
	Download(ctx context.Context, mirrors []download.Mirror, dest string, progress download.ProgressFunc) (download.Session, error)
}

// Installer extracts the bundle into the install directory.
type Installer interface {
	Install(ctx context.Context, archive string, targetDir string) (install.Result, error)
}

// LaunchCoordinator stages the launchable unit and starts it.
type LaunchCoordinator interface {
	Stage(src string, stagingDir string) (string, error)
	Launch(runtimeExe string, unit string) (int, error)
}

// PreferenceStore persists explicit remember actions.
type PreferenceStore interface {
	Load() (prefs.Preferences, error)
	RememberRuntime(path string) error
	AcknowledgeRules() error
}

// Plan is the immutable per-run input.
type Plan struct {
	Mirrors     []download.Mirror
	ArchivePath string
	InstallDir  string
	// UnitSource is the bundled launchable unit.
	UnitSource string
	StagingDir string
	// RulesRequired is set when the user's region needs an acknowledgement.
	RulesRequired bool
	RulesText     string
	// ForceDownload skips discovery results.
	ForceDownload bool
}

// Deps are the collaborators of a Worker.
type Deps struct {
	Locator    RuntimeLocator
	Downloader MirrorDownloader
	Installer  Installer
	Launcher   LaunchCoordinator
	Prefs      PreferenceStore
	Presenter  Presenter
	Catalog    *locale.Catalog
	Logger     *zap.Logger
}

// Worker runs one workflow. It is not reusable.
type Worker struct {
	deps Deps
	plan Plan
	log  *zap.Logger
	tr   *locale.Catalog

	prefs      prefs.Preferences
	state      State
	candidates []string
	runtime    string
	unit       string
	pid        int
	downloaded bool
	phase      Phase
	err        error
}

// New returns a Worker for plan.
func New(deps Deps, plan Plan) *Worker {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tr := deps.Catalog
	if tr == nil {
		tr = locale.Builtin(locale.Fallback)
	}
	return &Worker{deps: deps, plan: plan, log: logger, tr: tr}
}

type step func(ctx context.Context) State

// Run drives the state machine to a terminal state. Cancelling ctx at any
// point ends the run in StateCancelled without entering a later phase.
func (w *Worker) Run(ctx context.Context) Outcome {
	p, err := w.deps.Prefs.Load()
	if err != nil {
		w.log.Warn(messages.OrchestratorPrefsLoadLog, zap.Error(err))
	}
	w.prefs = p

	steps := map[State]step{
		StateDiscover:        w.discover,
		StateAmbiguousWait:   w.ambiguousWait,
		StateDownload:        w.download,
		StateInstall:         w.install,
		StateStageLaunchable: w.stage,
		StateRuleWait:        w.ruleWait,
		StateLaunch:          w.launch,
	}

	w.state = StateDiscover
	for !w.state.Terminal() {
		if ctx.Err() != nil {
			w.state = StateCancelled
			break
		}
		w.log.Debug(messages.OrchestratorEnterLog, zap.Stringer("state", w.state))
		w.state = steps[w.state](ctx)
	}
	return w.finish()
}

func (w *Worker) finish() Outcome {
	switch w.state {
	case StateDone:
		w.cleanup()
		w.emit(w.tr.T(locale.Launched), SeverityInfo, -1)
	case StateCancelled:
		w.cleanup()
		w.log.Info(messages.OrchestratorCancelledLog)
		w.emit(w.tr.T(locale.Cancelled), SeverityWarning, -1)
	case StateFailed:
		w.log.Error(messages.OrchestratorFailedLog, zap.String("phase", string(w.phase)), zap.Error(w.err))
		w.emit(w.failureText(), SeverityError, -1)
	}
	return Outcome{
		State:   w.state,
		Phase:   w.phase,
		Runtime: w.runtime,
		Unit:    w.unit,
		PID:     w.pid,
		Err:     w.err,
	}
}

func (w *Worker) failureText() string {
	switch w.phase {
	case PhaseDownload:
		return w.tr.T(locale.DownloadFailed)
	case PhaseInstall:
		return w.tr.T(locale.InstallFailed)
	case PhaseStage:
		return w.tr.T(locale.StageFailed)
	default:
		return w.tr.T(locale.LaunchFailed)
	}
}

// cleanup removes the downloaded archive. A failed install keeps it so the
// next run can reuse it without network access.
func (w *Worker) cleanup() {
	if !w.downloaded {
		return
	}
	if err := fsutil.RemoveBestEffort(w.plan.ArchivePath); err != nil {
		w.log.Warn(messages.OrchestratorCleanupLog, zap.String("path", w.plan.ArchivePath), zap.Error(err))
	}
	w.downloaded = false
}

func (w *Worker) emit(msg string, sev Severity, percent int) {
	w.deps.Presenter.Report(Event{
		State:    w.state,
		Phase:    w.phase,
		Message:  msg,
		Severity: sev,
		Percent:  percent,
	})
}

func (w *Worker) fail(ctx context.Context, phase Phase, err error) State {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return StateCancelled
	}
	w.phase = phase
	w.err = err
	return StateFailed
}

func (w *Worker) discover(ctx context.Context) State {
	if w.plan.ForceDownload {
		w.log.Info(messages.OrchestratorForceDownloadLog)
		return StateDownload
	}
	w.emit(w.tr.T(locale.SearchingRuntime), SeverityInfo, -1)
	found, err := w.deps.Locator.Locate(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return StateCancelled
		}
		w.log.Warn(messages.OrchestratorLocateLog, zap.Error(err))
		found = nil
	}
	w.log.Info(messages.OrchestratorDiscoveredLog, zap.Int("count", len(found)))

	switch len(found) {
	case 0:
		return StateDownload
	case 1:
		w.useRuntime(found[0])
		return StateStageLaunchable
	}
	if remembered := w.prefs.RememberedRuntime; remembered != "" && slices.Contains(found, remembered) {
		w.log.Info(messages.OrchestratorRememberedLog, zap.String("path", remembered))
		w.useRuntime(remembered)
		return StateStageLaunchable
	}
	w.candidates = found
	return StateAmbiguousWait
}

func (w *Worker) useRuntime(path string) {
	w.runtime = path
	w.emit(w.tr.T(locale.RuntimeFound, path), SeverityInfo, -1)
}

func (w *Worker) ambiguousWait(ctx context.Context) State {
	w.emit(w.tr.T(locale.ChooseRuntime), SeverityInfo, -1)
	reply := make(chan Decision, 1)
	w.deps.Presenter.RequestRuntimeChoice(slices.Clone(w.candidates), reply)

	var d Decision
	select {
	case <-ctx.Done():
		return StateCancelled
	case d = <-reply:
	}

	switch d.Kind {
	case DecisionForceDownload:
		w.log.Info(messages.OrchestratorForceDownloadLog)
		return StateDownload
	case DecisionSelected:
		if !slices.Contains(w.candidates, d.Path) {
			w.log.Warn(messages.OrchestratorUnknownChoiceLog, zap.String("path", d.Path))
			return StateCancelled
		}
		if d.Remember {
			if err := w.deps.Prefs.RememberRuntime(d.Path); err != nil {
				w.log.Warn(messages.OrchestratorPrefsSaveLog, zap.Error(err))
			}
		}
		w.useRuntime(d.Path)
		return StateStageLaunchable
	default:
		return StateCancelled
	}
}

func (w *Worker) download(ctx context.Context) State {
	w.emit(w.tr.T(locale.DownloadingRuntime), SeverityInfo, 0)
	_, err := w.deps.Downloader.Download(ctx, w.plan.Mirrors, w.plan.ArchivePath, w.forwardProgress)
	if err != nil {
		return w.fail(ctx, PhaseDownload, err)
	}
	w.downloaded = true
	return StateInstall
}

const bytesPerMB = 1024 * 1024

func (w *Worker) forwardProgress(u download.Update) {
	s := u.Session
	switch u.Kind {
	case download.UpdateAttempt:
		w.emit(w.tr.T(locale.DownloadAttempt, s.Attempts), SeverityInfo, 0)
	case download.UpdateProgress:
		total := s.TotalBytes
		if total < 0 {
			total = 0
		}
		w.deps.Presenter.Report(Event{
			State:    w.state,
			Message:  w.tr.T(locale.DownloadedMB, float64(s.BytesDownloaded)/bytesPerMB, float64(total)/bytesPerMB),
			Severity: SeverityInfo,
			Percent:  s.Percent(),
			Progress: true,
		})
	case download.UpdateAttemptFailed:
		w.emit(w.tr.T(locale.DownloadRetrying), SeverityWarning, 0)
	case download.UpdateReused:
		w.emit(w.tr.T(locale.DownloadingRuntime), SeverityInfo, 100)
	}
}

func (w *Worker) install(ctx context.Context) State {
	w.emit(w.tr.T(locale.InstallingRuntime), SeverityInfo, -1)
	w.emit(w.tr.T(locale.InstallingProgress, w.plan.InstallDir), SeverityInfo, -1)
	res, err := w.deps.Installer.Install(ctx, w.plan.ArchivePath, w.plan.InstallDir)
	if err != nil {
		return w.fail(ctx, PhaseInstall, err)
	}
	w.cleanup()
	w.runtime = res.Executable
	w.log.Info(messages.OrchestratorInstalledLog, zap.String("runtime", res.Executable))
	return StateStageLaunchable
}

func (w *Worker) stage(ctx context.Context) State {
	w.emit(w.tr.T(locale.ExtractingLauncher), SeverityInfo, -1)
	staged, err := w.deps.Launcher.Stage(w.plan.UnitSource, w.plan.StagingDir)
	if err != nil {
		if !fsutil.IsSoft(err) {
			return w.fail(ctx, PhaseStage, err)
		}
		w.emit(w.tr.T(locale.StageKeptPrevious), SeverityWarning, -1)
	}
	w.unit = staged
	if w.plan.RulesRequired && !w.prefs.RulesAcknowledged {
		return StateRuleWait
	}
	return StateLaunch
}

func (w *Worker) ruleWait(ctx context.Context) State {
	w.emit(w.tr.T(locale.RulesTitle), SeverityInfo, -1)
	reply := make(chan Ack, 1)
	w.deps.Presenter.RequestRuleAck(w.plan.RulesText, reply)

	var ack Ack
	select {
	case <-ctx.Done():
		return StateCancelled
	case ack = <-reply:
	}
	if !ack.Accepted {
		return StateCancelled
	}
	if ack.Remember {
		if err := w.deps.Prefs.AcknowledgeRules(); err != nil {
			w.log.Warn(messages.OrchestratorPrefsSaveLog, zap.Error(err))
		}
	}
	return StateLaunch
}

func (w *Worker) launch(ctx context.Context) State {
	w.emit(w.tr.T(locale.LaunchingLauncher), SeverityInfo, -1)
	pid, err := w.deps.Launcher.Launch(w.runtime, w.unit)
	if err != nil {
		return w.fail(ctx, PhaseLaunch, err)
	}
	w.pid = pid
	return StateDone
}
