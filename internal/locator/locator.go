// Package locator finds installed runtimes that satisfy the configured
// version and capability requirements.
package locator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/conn-castle/prelaunch/internal/config"
	"github.com/conn-castle/prelaunch/internal/messages"
)

var goos = runtime.GOOS

// Descriptor is the static description of an acceptable runtime.
type Descriptor struct {
	VersionToken string
	VersionFlag  string
	Executable   string
	BinaryDir    string
	// Markers are capability files relative to the runtime home.
	Markers []string
}

// DescriptorFromConfig converts the runtime section of the config.
func DescriptorFromConfig(rc config.RuntimeConfig) Descriptor {
	return Descriptor{
		VersionToken: rc.VersionToken,
		VersionFlag:  rc.VersionFlag,
		Executable:   rc.Executable,
		BinaryDir:    rc.BinaryDir,
		Markers:      rc.Markers,
	}
}

// ExecutableName returns the platform file name of the runtime executable.
func (d Descriptor) ExecutableName() string {
	if goos == "windows" && filepath.Ext(d.Executable) == "" {
		return d.Executable + ".exe"
	}
	return d.Executable
}

// DiscoveryError explains why a candidate was rejected. It is logged, never
// returned to callers of Locate.
type DiscoveryError struct {
	Path   string
	Reason string
	Err    error
}

func (e *DiscoveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(messages.LocatorRejectedErrFmt, e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf(messages.LocatorRejectedFmt, e.Path, e.Reason)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// Locator scans well-known directories and the system search path.
type Locator struct {
	desc       Descriptor
	installDir string
	searchDirs []string
	searchPath bool
	timeout    time.Duration
	matcher    Matcher
	getenv     func(string) string
	probe      probeFunc
	logger     *zap.Logger
}

// Option customizes a Locator.
type Option func(*Locator)

// WithMatcher replaces the version predicate.
func WithMatcher(m Matcher) Option {
	return func(l *Locator) { l.matcher = m }
}

// WithGetenv replaces the environment lookup used to read PATH.
func WithGetenv(getenv func(string) string) Option {
	return func(l *Locator) { l.getenv = getenv }
}

// New builds a Locator for the runtime section of cfg. installDir is the
// managed install location, always scanned first.
func New(rc config.RuntimeConfig, installDir string, logger *zap.Logger, opts ...Option) *Locator {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Locator{
		desc:       DescriptorFromConfig(rc),
		installDir: installDir,
		searchDirs: rc.SearchDirs,
		searchPath: rc.SearchPathEnabled(),
		timeout:    rc.ProbeTimeoutDuration(),
		matcher:    TokenMatcher{Token: rc.VersionToken},
		getenv:     os.Getenv,
		probe:      runProbe,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// candidate is an executable path and where it was discovered.
type candidate struct {
	exe    string
	source string
}

// Locate returns canonical paths of every matching runtime executable in
// discovery order, without duplicates. Only cancellation produces an error.
func (l *Locator) Locate(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var found []string
	for _, c := range l.candidates() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		canonical, err := canonicalPath(c.exe)
		if err != nil {
			continue
		}
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}

		if err := l.check(ctx, canonical); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			l.logger.Debug(messages.LocatorCandidateRejected,
				zap.String("source", c.source), zap.Error(err))
			continue
		}
		l.logger.Info(messages.LocatorCandidateAccepted,
			zap.String("path", canonical), zap.String("source", c.source))
		found = append(found, canonical)
	}
	return found, nil
}

// Check validates a single executable path against the descriptor.
func (l *Locator) Check(ctx context.Context, exe string) error {
	canonical, err := canonicalPath(exe)
	if err != nil {
		return &DiscoveryError{Path: exe, Reason: messages.LocatorReasonMissing, Err: err}
	}
	return l.check(ctx, canonical)
}

func (l *Locator) check(ctx context.Context, exe string) error {
	info, err := os.Stat(exe)
	if err != nil {
		return &DiscoveryError{Path: exe, Reason: messages.LocatorReasonMissing, Err: err}
	}
	if !info.Mode().IsRegular() {
		return &DiscoveryError{Path: exe, Reason: messages.LocatorReasonNotFile}
	}
	if !l.hasMarker(RuntimeHome(exe)) {
		return &DiscoveryError{Path: exe, Reason: messages.LocatorReasonNoMarker}
	}

	probeCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()
	output, err := l.probe(probeCtx, exe, l.desc.VersionFlag)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if probeCtx.Err() != nil {
		return &DiscoveryError{Path: exe, Reason: messages.LocatorReasonTimeout, Err: probeCtx.Err()}
	}
	if err != nil && output == "" {
		return &DiscoveryError{Path: exe, Reason: messages.LocatorReasonProbeFailed, Err: err}
	}
	if !l.matcher.Match(output) {
		return &DiscoveryError{Path: exe, Reason: messages.LocatorReasonVersion}
	}
	return nil
}

// candidates lists executables in discovery order: install dir, configured
// search dirs (glob matches sorted), then each PATH entry.
func (l *Locator) candidates() []candidate {
	exeName := l.desc.ExecutableName()
	var out []candidate
	if l.installDir != "" {
		out = append(out, candidate{
			exe:    filepath.Join(l.installDir, l.desc.BinaryDir, exeName),
			source: "install_dir",
		})
	}
	for _, pattern := range l.searchDirs {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			l.logger.Debug(messages.LocatorBadPattern, zap.String("pattern", pattern), zap.Error(err))
			continue
		}
		sort.Strings(matches)
		for _, dir := range matches {
			out = append(out, candidate{
				exe:    filepath.Join(dir, l.desc.BinaryDir, exeName),
				source: "search_dirs",
			})
		}
	}
	if l.searchPath {
		for _, dir := range filepath.SplitList(l.getenv("PATH")) {
			if strings.TrimSpace(dir) == "" {
				continue
			}
			out = append(out, candidate{exe: filepath.Join(dir, exeName), source: "PATH"})
		}
	}
	return out
}

func (l *Locator) hasMarker(home string) bool {
	for _, marker := range l.desc.Markers {
		info, err := os.Stat(filepath.Join(home, filepath.FromSlash(marker)))
		if err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}

// RuntimeHome is the parent of the directory holding the executable.
func RuntimeHome(exe string) string {
	return filepath.Dir(filepath.Dir(exe))
}

func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
