// Package launch stages the launchable unit and starts it on the resolved
// runtime as a detached process.
package launch

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/conn-castle/prelaunch/internal/fsutil"
	"github.com/conn-castle/prelaunch/internal/messages"
)

var copyFile = fsutil.CopyFileAtomic

// Error is a fatal staging or spawn failure. Launch is never retried.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf(messages.LaunchErrorFmt, e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Options configures the spawned process.
type Options struct {
	// Args precede "-jar <unit>" on the runtime command line.
	Args []string
	// StripEnv lists launcher-internal variables removed from the child env.
	StripEnv []string
	// Environ returns the parent environment. Defaults to os.Environ.
	Environ func() []string
}

// Coordinator stages and launches the unit.
type Coordinator struct {
	opts   Options
	logger *zap.Logger
	start  func(*exec.Cmd) error
}

// New returns a Coordinator.
func New(opts Options, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Environ == nil {
		opts.Environ = os.Environ
	}
	return &Coordinator{
		opts:   opts,
		logger: logger,
		start:  func(cmd *exec.Cmd) error { return cmd.Start() },
	}
}

// Stage copies src into stagingDir, replacing a prior copy, and returns the
// staged path. When the prior copy cannot be replaced (typically because a
// running instance holds it) the existing copy is kept and a
// *fsutil.SoftError is returned alongside its path.
func (c *Coordinator) Stage(src string, stagingDir string) (string, error) {
	if !fsutil.IsRegularFile(src) {
		return "", &Error{Op: "stage", Path: src, Err: os.ErrNotExist}
	}
	dst := filepath.Join(stagingDir, filepath.Base(src))
	err := copyFile(src, dst)
	if err == nil {
		c.logger.Info(messages.LaunchStagedLog, zap.String("path", dst))
		return dst, nil
	}
	if fsutil.IsRegularFile(dst) {
		soft := &fsutil.SoftError{Op: "stage", Path: dst, Err: err}
		c.logger.Warn(messages.LaunchStageSoftLog, zap.String("path", dst),
			zap.Bool("in_use", fsutil.IsInUse(err)), zap.Error(err))
		return dst, soft
	}
	return "", &Error{Op: "stage", Path: dst, Err: err}
}

// Launch starts "<runtimeExe> <args...> -jar <unit>" detached from this
// process, with the unit's directory as working directory, and returns the
// child's pid. The child is released, so the caller may exit immediately.
func (c *Coordinator) Launch(runtimeExe string, unit string) (int, error) {
	if runtimeExe == "" {
		return 0, &Error{Op: "launch", Path: unit, Err: errors.New(messages.LaunchNoRuntime)}
	}
	args := append(append([]string(nil), c.opts.Args...), "-jar", unit)
	cmd := exec.Command(runtimeExe, args...)
	cmd.Dir = filepath.Dir(unit)
	cmd.Env = BuildEnv(c.opts.Environ(), c.opts.StripEnv, filepath.Dir(filepath.Dir(runtimeExe)))
	detach(cmd)

	if err := c.start(cmd); err != nil {
		c.logger.Error(messages.LaunchFailedLog, zap.String("runtime", runtimeExe), zap.Error(err))
		return 0, &Error{Op: "launch", Path: runtimeExe, Err: err}
	}
	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		c.logger.Debug(messages.LaunchReleaseLog, zap.Error(err))
	}
	c.logger.Info(messages.LaunchStartedLog, zap.String("runtime", runtimeExe),
		zap.String("unit", unit), zap.Int("pid", pid))
	return pid, nil
}
