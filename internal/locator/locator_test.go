package locator

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/conn-castle/prelaunch/internal/config"
	"github.com/conn-castle/prelaunch/internal/testutil"
)

const token = "1.8.0_452"

func runtimeConfig(searchDirs ...string) config.RuntimeConfig {
	return config.RuntimeConfig{
		VersionToken: token,
		VersionFlag:  "-version",
		Executable:   "java",
		BinaryDir:    "bin",
		Markers:      []string{"lib/ext/jfxrt.jar", "jre/lib/ext/jfxrt.jar"},
		SearchDirs:   searchDirs,
		SearchPath:   testutil.BoolPtr(true),
		ProbeTimeout: "2s",
	}
}

func envWithPath(path string) func(string) string {
	return func(key string) string {
		if key == "PATH" {
			return path
		}
		return ""
	}
}

func canonical(t *testing.T, path string) string {
	t.Helper()
	out, err := canonicalPath(path)
	require.NoError(t, err)
	return out
}

func TestLocateDiscoveryOrder(t *testing.T) {
	testutil.SkipIfNoShell(t)
	root := t.TempDir()
	install := filepath.Join(root, "managed")
	installExe := testutil.FakeRuntime(t, root, "managed", token)
	b := testutil.FakeRuntime(t, filepath.Join(root, "jvm"), "b-jdk", token)
	a := testutil.FakeRuntime(t, filepath.Join(root, "jvm"), "a-jdk", token)
	onPath := testutil.FakeRuntime(t, filepath.Join(root, "other"), "sys", token)

	l := New(runtimeConfig(filepath.Join(root, "jvm", "*")), install, zap.NewNop(),
		WithGetenv(envWithPath(filepath.Dir(onPath))))
	got, err := l.Locate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		canonical(t, installExe),
		canonical(t, a),
		canonical(t, b),
		canonical(t, onPath),
	}, got)
}

func TestLocateDeduplicatesBySymlinkTarget(t *testing.T) {
	testutil.SkipIfNoShell(t)
	root := t.TempDir()
	target := testutil.FakeRuntime(t, filepath.Join(root, "jvm"), "jdk", token)
	binDir := filepath.Join(root, "usr", "bin")
	require.NoError(t, os.MkdirAll(binDir, 0o755))
	require.NoError(t, os.Symlink(target, filepath.Join(binDir, "java")))

	l := New(runtimeConfig(filepath.Join(root, "jvm", "*")), "", zap.NewNop(),
		WithGetenv(envWithPath(binDir+string(os.PathListSeparator)+filepath.Dir(target))))
	got, err := l.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{canonical(t, target)}, got)
}

func TestLocateIsDeterministic(t *testing.T) {
	testutil.SkipIfNoShell(t)
	root := t.TempDir()
	for _, name := range []string{"c", "a", "b"} {
		testutil.FakeRuntime(t, root, name, token)
	}
	l := New(runtimeConfig(filepath.Join(root, "*")), "", zap.NewNop(), WithGetenv(envWithPath("")))

	first, err := l.Locate(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 3)
	for i := 0; i < 3; i++ {
		again, err := l.Locate(context.Background())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestLocateRejectsWithoutMarkerOrToken(t *testing.T) {
	testutil.SkipIfNoShell(t)
	root := t.TempDir()
	good := testutil.FakeRuntime(t, root, "good", token)
	testutil.FakeRuntime(t, root, "old", "1.8.0_202")
	testutil.WriteProbeStub(t, filepath.Join(root, "nofx", "bin"), "java", `openjdk version "1.8.0_452"`, 0)
	testutil.WriteStubWithExit(t, filepath.Join(root, "broken", "bin"), "java", 3)
	testutil.WriteFile(t, filepath.Join(root, "broken", "lib", "ext", "jfxrt.jar"), "x")

	core, logs := observer.New(zapcore.DebugLevel)
	l := New(runtimeConfig(filepath.Join(root, "*")), "", zap.New(core), WithGetenv(envWithPath("")))
	got, err := l.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{canonical(t, good)}, got)
	assert.Equal(t, 3, logs.FilterLevelExact(zapcore.DebugLevel).Len())
}

func TestLocateAcceptsJreLayoutMarker(t *testing.T) {
	testutil.SkipIfNoShell(t)
	root := t.TempDir()
	exe := testutil.WriteProbeStub(t, filepath.Join(root, "jdk", "bin"), "java", token, 0)
	testutil.WriteFile(t, filepath.Join(root, "jdk", "jre", "lib", "ext", "jfxrt.jar"), "x")

	l := New(runtimeConfig(filepath.Join(root, "jdk")), "", zap.NewNop(), WithGetenv(envWithPath("")))
	got, err := l.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{canonical(t, exe)}, got)
}

func TestLocateProbeTimeoutIsNotFound(t *testing.T) {
	testutil.SkipIfNoShell(t)
	root := t.TempDir()
	testutil.WriteSleepStub(t, filepath.Join(root, "hung", "bin"), "java")
	testutil.WriteFile(t, filepath.Join(root, "hung", "lib", "ext", "jfxrt.jar"), "x")

	rc := runtimeConfig(filepath.Join(root, "*"))
	rc.ProbeTimeout = "100ms"
	l := New(rc, "", zap.NewNop(), WithGetenv(envWithPath("")))

	start := time.Now()
	got, err := l.Locate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestLocateCancelled(t *testing.T) {
	testutil.SkipIfNoShell(t)
	root := t.TempDir()
	testutil.FakeRuntime(t, root, "jdk", token)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := New(runtimeConfig(filepath.Join(root, "*")), "", zap.NewNop(), WithGetenv(envWithPath("")))
	_, err := l.Locate(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestLocateCustomMatcher(t *testing.T) {
	testutil.SkipIfNoShell(t)
	root := t.TempDir()
	testutil.FakeRuntime(t, root, "jdk", token)

	l := New(runtimeConfig(filepath.Join(root, "*")), "", zap.NewNop(),
		WithGetenv(envWithPath("")),
		WithMatcher(MatcherFunc(func(string) bool { return false })))
	got, err := l.Locate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCheck(t *testing.T) {
	testutil.SkipIfNoShell(t)
	root := t.TempDir()
	exe := testutil.FakeRuntime(t, root, "jdk", token)
	l := New(runtimeConfig(), "", zap.NewNop())

	require.NoError(t, l.Check(context.Background(), exe))

	err := l.Check(context.Background(), filepath.Join(root, "missing", "bin", "java"))
	var discoveryErr *DiscoveryError
	require.ErrorAs(t, err, &discoveryErr)
}

func TestTokenMatcher(t *testing.T) {
	m := TokenMatcher{Token: token}
	assert.True(t, m.Match(`java version "1.8.0_452"`))
	assert.False(t, m.Match(`java version "17.0.1"`))
	assert.False(t, TokenMatcher{}.Match("anything"))
}

func TestExecutableName(t *testing.T) {
	orig := goos
	t.Cleanup(func() { goos = orig })

	d := Descriptor{Executable: "javaw"}
	goos = "windows"
	assert.Equal(t, "javaw.exe", d.ExecutableName())
	goos = "linux"
	assert.Equal(t, "javaw", d.ExecutableName())
}
