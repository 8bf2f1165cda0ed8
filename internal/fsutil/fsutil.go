// Package fsutil holds filesystem helpers shared by the launcher packages:
// atomic writes, file copies, best-effort removal, and advisory file locks.
package fsutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/conn-castle/prelaunch/internal/messages"
)

var (
	osCreateTemp = os.CreateTemp
	osRename     = os.Rename
	osChmod      = os.Chmod
)

// SoftError reports a best-effort operation that failed without changing the
// caller's outcome. Callers log it and continue.
type SoftError struct {
	Op   string
	Path string
	Err  error
}

func (e *SoftError) Error() string {
	return fmt.Sprintf(messages.FsutilSoftFailureFmt, e.Op, e.Path, e.Err)
}

func (e *SoftError) Unwrap() error { return e.Err }

// IsSoft reports whether err is (or wraps) a *SoftError.
func IsSoft(err error) bool {
	var soft *SoftError
	return errors.As(err, &soft)
}

// WriteFileAtomic writes data to a temp file in the destination directory and
// renames it over filename, so readers never observe a partial document.
func WriteFileAtomic(filename string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf(messages.FsutilCreateDirFmt, dir, err)
	}
	tmp, err := osCreateTemp(dir, filepath.Base(filename)+".tmp-*")
	if err != nil {
		return fmt.Errorf(messages.FsutilCreateTempFmt, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf(messages.FsutilWriteTempFmt, tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf(messages.FsutilWriteTempFmt, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf(messages.FsutilWriteTempFmt, tmpName, err)
	}
	if err := osChmod(tmpName, perm); err != nil {
		return fmt.Errorf(messages.FsutilChmodFmt, tmpName, err)
	}
	if err := osRename(tmpName, filename); err != nil {
		return fmt.Errorf(messages.FsutilRenameFmt, tmpName, filename, err)
	}
	committed = true
	return nil
}

// CopyFileAtomic copies src to dst through a temp file in dst's directory.
// The source file mode is preserved.
func CopyFileAtomic(src string, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf(messages.FsutilOpenFmt, src, err)
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf(messages.FsutilOpenFmt, src, err)
	}

	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf(messages.FsutilCreateDirFmt, dir, err)
	}
	tmp, err := osCreateTemp(dir, filepath.Base(dst)+".tmp-*")
	if err != nil {
		return fmt.Errorf(messages.FsutilCreateTempFmt, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, in); err != nil {
		_ = tmp.Close()
		return fmt.Errorf(messages.FsutilWriteTempFmt, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf(messages.FsutilWriteTempFmt, tmpName, err)
	}
	if err := osChmod(tmpName, info.Mode().Perm()); err != nil {
		return fmt.Errorf(messages.FsutilChmodFmt, tmpName, err)
	}
	if err := osRename(tmpName, dst); err != nil {
		return fmt.Errorf(messages.FsutilRenameFmt, tmpName, dst, err)
	}
	committed = true
	return nil
}

// RemoveBestEffort removes path (file or directory tree). A missing path is
// not an error; any other failure is returned as a *SoftError.
func RemoveBestEffort(path string) error {
	if path == "" {
		return nil
	}
	if err := os.RemoveAll(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &SoftError{Op: "remove", Path: path, Err: err}
	}
	return nil
}

// IsRegularFile reports whether path exists and is a regular file.
func IsRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
