package main

// NOTE: Tests in this file mutate package-level globals (getenv,
// isInteractive, newLauncher, runTUI). Do not use t.Parallel().

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/conn-castle/prelaunch/internal/launch"
	"github.com/conn-castle/prelaunch/internal/orchestrator"
	"github.com/conn-castle/prelaunch/internal/testutil"
	"github.com/conn-castle/prelaunch/internal/ui"
)

const runtimeVersion = "1.8.0_452"

type recordingLauncher struct {
	opts    launch.Options
	runtime string
	unit    string
}

func (l *recordingLauncher) Stage(src string, stagingDir string) (string, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return "", err
	}
	dst := filepath.Join(stagingDir, filepath.Base(src))
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return "", err
	}
	return dst, os.WriteFile(dst, data, 0o644)
}

func (l *recordingLauncher) Launch(runtimeExe string, unit string) (int, error) {
	l.runtime = runtimeExe
	l.unit = unit
	return 1, nil
}

type env struct {
	dir       string
	jdks      string
	resources string
	config    string
	state     string
	vars      map[string]string
	launcher  *recordingLauncher
}

func newEnv(t *testing.T, extraTOML string) *env {
	t.Helper()
	testutil.SkipIfNoShell(t)
	dir := t.TempDir()
	e := &env{
		dir:       dir,
		jdks:      filepath.Join(dir, "jdks"),
		resources: filepath.Join(dir, "resources"),
		config:    filepath.Join(dir, "config.toml"),
		state:     filepath.Join(dir, "state"),
		vars:      map[string]string{},
		launcher:  &recordingLauncher{},
	}
	require.NoError(t, os.MkdirAll(e.jdks, 0o755))
	testutil.WriteFile(t, filepath.Join(e.resources, "App.jar"), "jar")

	cfg := `app_title = "Test"

[logging]
level = "error"

[runtime]
version_token = "` + runtimeVersion + `"
search_dirs = ['` + filepath.Join(e.jdks, "*") + `']
search_path = false

[launch]
unit = "App.jar"

[paths]
state_dir = '` + e.state + `'
cache_dir = '` + filepath.Join(dir, "cache") + `'
` + extraTOML
	testutil.WriteFile(t, e.config, cfg)

	origGetenv, origInteractive, origLauncher := getenv, isInteractive, newLauncher
	getenv = func(key string) string { return e.vars[key] }
	isInteractive = func() bool { return false }
	newLauncher = func(opts launch.Options, _ *zap.Logger) orchestrator.LaunchCoordinator {
		e.launcher.opts = opts
		return e.launcher
	}
	t.Cleanup(func() {
		getenv, isInteractive, newLauncher = origGetenv, origInteractive, origLauncher
	})
	return e
}

func (e *env) run(args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--config", e.config, "--resources", e.resources))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *env) fakeRuntime(t *testing.T, name string) string {
	t.Helper()
	exe := testutil.FakeRuntime(t, e.jdks, name, runtimeVersion)
	resolved, err := filepath.EvalSymlinks(exe)
	require.NoError(t, err)
	return resolved
}

func runtimeZip(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range []string{"jre/bin/java", "jre/lib/ext/jfxrt.jar"} {
		hdr := &zip.FileHeader{Name: name, Method: zip.Deflate}
		hdr.SetMode(0o755)
		w, err := zw.CreateHeader(hdr)
		require.NoError(t, err)
		_, err = w.Write([]byte(name))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func mirrorTOML(t *testing.T, body []byte) string {
	t.Helper()
	h := sha256.Sum256(body)
	return mirrorTOMLWithHash(t, body, hex.EncodeToString(h[:]))
}

func mirrorTOMLWithHash(t *testing.T, body []byte, hash string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return "\n[[mirrors]]\nurl = \"" + srv.URL + "/jre.zip\"\nsha256 = \"" + hash + "\"\n"
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	var silent *SilentExitError
	require.True(t, errors.As(err, &silent), "expected SilentExitError, got %v", err)
	return silent.Code
}

func TestLaunchSingleRuntime(t *testing.T) {
	e := newEnv(t, "")
	exe := e.fakeRuntime(t, "jdk8")

	out, err := e.run("--plain")
	require.NoError(t, err, out)
	assert.Equal(t, exe, e.launcher.runtime)
	assert.Equal(t, "App.jar", filepath.Base(e.launcher.unit))
	assert.FileExists(t, e.launcher.unit)
	assert.Contains(t, out, "Launcher started")
	assert.Contains(t, e.launcher.opts.StripEnv, "PRELAUNCH_CONFIG")
}

func TestLaunchAmbiguousWithoutAnswerIsCancelled(t *testing.T) {
	e := newEnv(t, "")
	a := e.fakeRuntime(t, "jdk-a")
	e.fakeRuntime(t, "jdk-b")

	out, err := e.run("--plain")
	assert.Equal(t, exitCancelled, exitCode(t, err))
	assert.Contains(t, out, "1) "+a)
	assert.Empty(t, e.launcher.runtime)
}

func TestLaunchAmbiguousRememberedThenForgotten(t *testing.T) {
	e := newEnv(t, "")
	e.fakeRuntime(t, "jdk-a")
	b := e.fakeRuntime(t, "jdk-b")

	out, err := e.run("--plain", "--runtime", "2", "--remember")
	require.NoError(t, err, out)
	assert.Equal(t, b, e.launcher.runtime)
	data, err := os.ReadFile(filepath.Join(e.state, "preferences.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "remembered_runtime")

	e.launcher.runtime = ""
	out, err = e.run("--plain")
	require.NoError(t, err, out)
	assert.Equal(t, b, e.launcher.runtime)
	assert.NotContains(t, out, "1) ")

	out, err = e.run("forget")
	require.NoError(t, err)
	assert.Contains(t, out, "preferences.toml")
	_, err = e.run("--plain")
	assert.Equal(t, exitCancelled, exitCode(t, err))
}

func TestLaunchDownloadsWhenNothingFound(t *testing.T) {
	e := newEnv(t, mirrorTOML(t, runtimeZip(t)))

	out, err := e.run("--plain")
	require.NoError(t, err, out)
	assert.True(t, strings.HasSuffix(e.launcher.runtime, filepath.Join("bin", "java")), e.launcher.runtime)
	assert.True(t, strings.HasPrefix(e.launcher.runtime, e.state))
	assert.Contains(t, out, "Downloading Java...")
}

func TestLaunchDownloadFailure(t *testing.T) {
	wrong := strings.Repeat("0", 64)
	e := newEnv(t, mirrorTOMLWithHash(t, runtimeZip(t), wrong)+"\n[download]\nmax_retries = 1\n")

	out, err := e.run("--plain")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "download")
	assert.Contains(t, out, "Could not download Java from any mirror")
}

func TestLaunchRulesForRegion(t *testing.T) {
	e := newEnv(t, "\n[rules]\nregions = [\"RU\"]\n")
	e.fakeRuntime(t, "jdk8")
	e.vars["LANG"] = "ru_RU.UTF-8"
	testutil.WriteFile(t, filepath.Join(e.resources, "rules", "ru.txt"), "Правило 1.")

	out, err := e.run("--plain")
	assert.Equal(t, exitCancelled, exitCode(t, err))
	assert.Contains(t, out, "Правило 1.")
	assert.Empty(t, e.launcher.runtime)

	out, err = e.run("--plain", "--accept-rules", "--remember")
	require.NoError(t, err, out)
	assert.NotEmpty(t, e.launcher.runtime)

	out, err = e.run("--plain")
	require.NoError(t, err, out)
	assert.NotContains(t, out, "Правило 1.")
}

func TestLaunchRulesSkippedOutsideRegion(t *testing.T) {
	e := newEnv(t, "\n[rules]\nregions = [\"RU\"]\n")
	e.fakeRuntime(t, "jdk8")
	e.vars["LANG"] = "en_GB.UTF-8"

	out, err := e.run("--plain")
	require.NoError(t, err, out)
	assert.NotEmpty(t, e.launcher.runtime)
}

func TestLaunchUsesTUIWhenInteractive(t *testing.T) {
	e := newEnv(t, "")
	isInteractive = func() bool { return true }
	orig := runTUI
	t.Cleanup(func() { runTUI = orig })
	var title string
	runTUI = func(ctx context.Context, opts ui.TUIOptions, fn ui.RunFunc) (orchestrator.Outcome, error) {
		title = opts.Title
		return orchestrator.Outcome{State: orchestrator.StateDone}, nil
	}

	_, err := e.run()
	require.NoError(t, err)
	assert.Equal(t, "Test", title)
}

func TestLaunchInvalidLogLevelEnv(t *testing.T) {
	e := newEnv(t, "")
	e.vars[envLogLevel] = "chatty"
	_, err := e.run("--plain")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chatty")
}

func TestLocateCmd(t *testing.T) {
	e := newEnv(t, "")
	out, err := e.run("locate")
	assert.Equal(t, 1, exitCode(t, err))
	assert.Contains(t, out, "No compatible runtime found")

	exe := e.fakeRuntime(t, "jdk8")
	out, err = e.run("locate")
	require.NoError(t, err)
	assert.Equal(t, exe, strings.TrimSpace(out))
}

func TestFetchCmd(t *testing.T) {
	e := newEnv(t, mirrorTOML(t, runtimeZip(t)))

	out, err := e.run("fetch")
	require.NoError(t, err, out)
	assert.Contains(t, out, "attempt 1")
	assert.Contains(t, out, "Installed runtime")
	matches, err := filepath.Glob(filepath.Join(e.state, "runtime", "*", "bin", "java"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestOutcomeError(t *testing.T) {
	assert.NoError(t, outcomeError(orchestrator.Outcome{State: orchestrator.StateDone}))
	assert.Equal(t, exitCancelled, exitCode(t, outcomeError(orchestrator.Outcome{State: orchestrator.StateCancelled})))
	boom := errors.New("boom")
	err := outcomeError(orchestrator.Outcome{State: orchestrator.StateFailed, Phase: orchestrator.PhaseLaunch, Err: boom})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "launch")
}
