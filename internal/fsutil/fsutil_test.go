package fsutil

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "prefs.toml")

	require.NoError(t, WriteFileAtomic(path, []byte("a = 1\n"), 0o644))
	require.NoError(t, WriteFileAtomic(path, []byte("a = 2\n"), 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "a = 2\n", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
}

func TestWriteFileAtomic_RenameFailureCleansTemp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	orig := osRename
	osRename = func(string, string) error { return errors.New("boom") }
	t.Cleanup(func() { osRename = orig })

	err := WriteFileAtomic(path, []byte("x"), 0o644)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestCopyFileAtomic_OverwritesAndPreservesMode(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.jar")
	dst := filepath.Join(dir, "staged", "app.jar")
	require.NoError(t, os.WriteFile(src, []byte("new"), 0o640))
	require.NoError(t, os.MkdirAll(filepath.Dir(dst), 0o755))
	require.NoError(t, os.WriteFile(dst, []byte("old"), 0o644))

	require.NoError(t, CopyFileAtomic(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, "new", string(data))
	info, err := os.Stat(dst)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o640), info.Mode().Perm())
}

func TestCopyFileAtomic_MissingSource(t *testing.T) {
	dir := t.TempDir()
	err := CopyFileAtomic(filepath.Join(dir, "missing"), filepath.Join(dir, "dst"))
	require.Error(t, err)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRemoveBestEffort(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, RemoveBestEffort(filepath.Join(dir, "missing")))
	require.NoError(t, RemoveBestEffort(""))

	target := filepath.Join(dir, "tmp")
	require.NoError(t, os.MkdirAll(filepath.Join(target, "a"), 0o755))
	require.NoError(t, RemoveBestEffort(target))
	require.NoDirExists(t, target)
}

func TestSoftError(t *testing.T) {
	inner := errors.New("in use")
	err := error(&SoftError{Op: "remove", Path: "/x", Err: inner})
	require.True(t, IsSoft(err))
	require.ErrorIs(t, err, inner)
	require.Contains(t, err.Error(), "/x")
	require.False(t, IsSoft(inner))
}

func TestWithFileLock_RunsFn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundle.lock")
	called := false
	err := WithFileLock(context.Background(), path, func() error {
		called = true
		return nil
	})
	require.NoError(t, err)
	require.True(t, called)
}

func TestWithFileLock_TimesOutWhenHeld(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundle.lock")

	origTry, origWait, origPoll := tryLockFn, lockWaitTimeout, lockPollEvery
	tryLockFn = func(*os.File) (bool, error) { return false, nil }
	lockWaitTimeout = 20 * time.Millisecond
	lockPollEvery = 5 * time.Millisecond
	t.Cleanup(func() {
		tryLockFn, lockWaitTimeout, lockPollEvery = origTry, origWait, origPoll
	})

	err := WithFileLock(context.Background(), path, func() error {
		t.Fatal("fn must not run without the lock")
		return nil
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "timed out")
}

func TestWithFileLock_CancelledWhileWaiting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundle.lock")

	origTry := tryLockFn
	tryLockFn = func(*os.File) (bool, error) { return false, nil }
	t.Cleanup(func() { tryLockFn = origTry })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := WithFileLock(ctx, path, func() error { return nil })
	require.ErrorIs(t, err, context.Canceled)
}
