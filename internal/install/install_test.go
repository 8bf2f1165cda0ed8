package install

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var layout = Layout{BinaryDir: "bin", Executable: "java"}

type entry struct {
	name string
	body string
	mode os.FileMode
}

func writeZip(t *testing.T, path string, entries []entry) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for _, e := range entries {
		hdr := &zip.FileHeader{Name: e.name, Method: zip.Deflate}
		mode := e.mode
		if mode == 0 {
			mode = 0o644
		}
		hdr.SetMode(mode)
		w, err := zw.CreateHeader(hdr)
		require.NoError(t, err)
		_, err = w.Write([]byte(e.body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

func writeTarGz(t *testing.T, path string, entries []entry) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)
	for _, e := range entries {
		mode := e.mode
		if mode == 0 {
			mode = 0o644
		}
		hdr := &tar.Header{Name: e.name, Mode: int64(mode), Size: int64(len(e.body)), Typeflag: tar.TypeReg}
		require.NoError(t, tw.WriteHeader(hdr))
		_, err := tw.Write([]byte(e.body))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())
}

func TestInstallFlattensSingleTopLevelDir(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "zulu.zip")
	writeZip(t, archive, []entry{
		{name: "zulu8-fx/bin/java", body: "#!/bin/sh\n", mode: 0o755},
		{name: "zulu8-fx/lib/ext/jfxrt.jar", body: "fx"},
		{name: "zulu8-fx/release", body: "JAVA_VERSION=1.8.0_452"},
	})
	target := filepath.Join(dir, "runtime")

	res, err := New(layout, zap.NewNop()).Install(context.Background(), archive, target)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, filepath.Join(target, "bin", "java"), res.Executable)
	assert.Equal(t, target, res.Home)

	assert.FileExists(t, filepath.Join(target, "lib", "ext", "jfxrt.jar"))
	assert.FileExists(t, filepath.Join(target, "release"))
	assert.NoDirExists(t, filepath.Join(target, "zulu8-fx"))
	entries, err := os.ReadDir(target)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestInstallKeepsFlatArchive(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "jre.zip")
	writeZip(t, archive, []entry{
		{name: "bin/java", body: "x", mode: 0o755},
		{name: "lib/rt.jar", body: "rt"},
	})
	target := filepath.Join(dir, "runtime")

	res, err := New(layout, zap.NewNop()).Install(context.Background(), archive, target)
	require.NoError(t, err)
	assert.FileExists(t, res.Executable)
	assert.FileExists(t, filepath.Join(target, "lib", "rt.jar"))
}

func TestInstallDoesNotFlattenWithoutBinaryDir(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "jre.zip")
	writeZip(t, archive, []entry{{name: "docs/readme.txt", body: "hi"}})

	_, err := New(layout, zap.NewNop()).Install(context.Background(), archive, filepath.Join(dir, "runtime"))
	var installErr *Error
	require.ErrorAs(t, err, &installErr)
	assert.Equal(t, "validate", installErr.Op)
	assert.ErrorIs(t, err, ErrMissingExecutable)
	assert.DirExists(t, filepath.Join(dir, "runtime", "docs"))
}

func TestInstallFlattenHandlesChildNamedLikeWrapper(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "jre.zip")
	writeZip(t, archive, []entry{
		{name: "jre/bin/java", body: "x", mode: 0o755},
		{name: "jre/jre/lib/ext/jfxrt.jar", body: "fx"},
	})
	target := filepath.Join(dir, "runtime")

	_, err := New(layout, zap.NewNop()).Install(context.Background(), archive, target)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(target, "jre", "lib", "ext", "jfxrt.jar"))
	assert.FileExists(t, filepath.Join(target, "bin", "java"))
}

func TestInstallOverPreviousInstall(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "runtime")
	require.NoError(t, os.MkdirAll(filepath.Join(target, "bin"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(target, "bin", "stale"), []byte("old"), 0o644))

	archive := filepath.Join(dir, "zulu.zip")
	writeZip(t, archive, []entry{{name: "zulu/bin/java", body: "new", mode: 0o755}})

	res, err := New(layout, zap.NewNop()).Install(context.Background(), archive, target)
	require.NoError(t, err)
	data, err := os.ReadFile(res.Executable)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
	assert.NoDirExists(t, filepath.Join(target, "zulu"))
}

func TestInstallTarGz(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "zulu.tar.gz")
	writeTarGz(t, archive, []entry{
		{name: "zulu8/bin/java", body: "#!/bin/sh\n", mode: 0o755},
		{name: "zulu8/lib/ext/jfxrt.jar", body: "fx"},
	})
	target := filepath.Join(dir, "runtime")

	res, err := New(layout, zap.NewNop()).Install(context.Background(), archive, target)
	require.NoError(t, err)
	info, err := os.Stat(res.Executable)
	require.NoError(t, err)
	if goos != "windows" {
		assert.NotZero(t, info.Mode().Perm()&0o100)
	}
}

func TestInstallSetsExecutableBit(t *testing.T) {
	if goos == "windows" {
		t.Skip("permission bits are not tracked on windows")
	}
	dir := t.TempDir()
	archive := filepath.Join(dir, "jre.zip")
	writeZip(t, archive, []entry{{name: "bin/java", body: "x", mode: 0o644}})

	res, err := New(layout, zap.NewNop()).Install(context.Background(), archive, filepath.Join(dir, "rt"))
	require.NoError(t, err)
	info, err := os.Stat(res.Executable)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode().Perm()&0o100)
}

func TestInstallRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "evil.tar.gz")
	writeTarGz(t, archive, []entry{{name: "../escape.txt", body: "x"}})

	_, err := New(layout, zap.NewNop()).Install(context.Background(), archive, filepath.Join(dir, "runtime"))
	require.ErrorIs(t, err, ErrUnsafePath)
	assert.NoFileExists(t, filepath.Join(dir, "escape.txt"))
}

func TestInstallCancelledBeforeExtraction(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "jre.zip")
	writeZip(t, archive, []entry{{name: "bin/java", body: "x", mode: 0o755}})
	target := filepath.Join(dir, "runtime")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(layout, zap.NewNop()).Install(ctx, archive, target)
	require.ErrorIs(t, err, context.Canceled)

	assert.DirExists(t, target)
	entries, err := os.ReadDir(target)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestInstallUnsupportedArchive(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "jre.rar")
	require.NoError(t, os.WriteFile(archive, []byte("x"), 0o644))

	_, err := New(layout, zap.NewNop()).Install(context.Background(), archive, filepath.Join(dir, "runtime"))
	require.ErrorIs(t, err, ErrUnsupportedArchive)
}

func TestInstallCorruptArchive(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "jre.zip")
	require.NoError(t, os.WriteFile(archive, []byte("not a zip"), 0o644))

	_, err := New(layout, zap.NewNop()).Install(context.Background(), archive, filepath.Join(dir, "runtime"))
	var installErr *Error
	require.ErrorAs(t, err, &installErr)
	assert.Equal(t, "extract", installErr.Op)
}

func TestFindExecutable(t *testing.T) {
	root := t.TempDir()
	deep := filepath.Join(root, "a", "b", "bin", "java")
	shallow := filepath.Join(root, "z", "bin", "java")
	for _, p := range []string{deep, shallow} {
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o755))
	}

	inst := New(layout, zap.NewNop())
	got, ok := inst.FindExecutable(root)
	require.True(t, ok)
	assert.Equal(t, shallow, got)

	_, ok = inst.FindExecutable(t.TempDir())
	assert.False(t, ok)
}
