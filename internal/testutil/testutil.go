// Package testutil holds helpers shared by package tests: shell stubs that
// stand in for runtime executables, and fake runtime layouts on disk.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// SkipIfNoShell skips tests that rely on POSIX shell stubs.
func SkipIfNoShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs require a POSIX shell")
	}
}

// WriteStub writes an executable shell stub that exits successfully.
// t is the active test; dir is the output directory; name is the executable file name.
func WriteStub(t *testing.T, dir string, name string) string {
	t.Helper()
	return WriteStubWithExit(t, dir, name, 0)
}

// WriteStubWithExit writes an executable shell stub that exits with the provided code.
// t is the active test; dir is the output directory; name is the executable file name.
func WriteStubWithExit(t *testing.T, dir string, name string, exitCode int) string {
	t.Helper()
	return writeScript(t, dir, name, fmt.Sprintf("exit %d\n", exitCode))
}

// WriteProbeStub writes a stub that prints stderrText to stderr, the way a
// runtime answers its version flag, then exits with exitCode.
func WriteProbeStub(t *testing.T, dir string, name string, stderrText string, exitCode int) string {
	t.Helper()
	quoted := strings.ReplaceAll(stderrText, "'", `'\''`)
	return writeScript(t, dir, name, fmt.Sprintf("printf '%%s\\n' '%s' >&2\nexit %d\n", quoted, exitCode))
}

// WriteSleepStub writes a stub that never answers within a test timeout.
func WriteSleepStub(t *testing.T, dir string, name string) string {
	t.Helper()
	return writeScript(t, dir, name, "exec sleep 30\n")
}

// WriteRecordingStub writes a stub that appends its working directory and
// arguments, one per line, to recordPath.
func WriteRecordingStub(t *testing.T, dir string, name string, recordPath string) string {
	t.Helper()
	body := fmt.Sprintf("pwd > '%s'\nfor arg in \"$@\"; do\n  echo \"$arg\" >> '%s'\ndone\necho \"JAVA_HOME=$JAVA_HOME\" >> '%s'\n", recordPath, recordPath, recordPath)
	return writeScript(t, dir, name, body)
}

func writeScript(t *testing.T, dir string, name string, body string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create stub dir: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

// FakeRuntime creates <root>/<name> with a bin/java probe stub that reports
// version and a lib/ext/jfxrt.jar capability marker. It returns the
// executable path.
func FakeRuntime(t *testing.T, root string, name string, version string) string {
	t.Helper()
	home := filepath.Join(root, name)
	WriteFile(t, filepath.Join(home, "lib", "ext", "jfxrt.jar"), "marker")
	return WriteProbeStub(t, filepath.Join(home, "bin"), "java", fmt.Sprintf("openjdk version %q", version), 0)
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// BoolPtr returns a pointer to v.
// v is the boolean value to take the address of.
func BoolPtr(v bool) *bool {
	return &v
}

// WithWorkingDir runs fn with dir as the current working directory and restores the previous directory.
// t is the active test; dir is the temporary working directory for fn.
func WithWorkingDir(t *testing.T, dir string, fn func()) {
	t.Helper()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	defer func() {
		if err := os.Chdir(cwd); err != nil {
			t.Fatalf("restore chdir: %v", err)
		}
	}()
	fn()
}
