// Package install extracts a verified runtime bundle into its fixed target
// directory and validates the resulting layout.
//
// Cancellation is observed once, immediately before extraction begins.
// Extraction itself runs to completion.
package install

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"go.uber.org/zap"

	"github.com/conn-castle/prelaunch/internal/messages"
)

var goos = runtime.GOOS

var (
	// ErrMissingExecutable means the runtime executable is absent after extraction.
	ErrMissingExecutable = errors.New(messages.InstallMissingExecutable)
	// ErrUnsafePath marks an archive entry that would land outside the target.
	ErrUnsafePath = errors.New(messages.InstallUnsafePath)
	// ErrUnsupportedArchive marks an archive whose suffix is not recognized.
	ErrUnsupportedArchive = errors.New(messages.InstallUnsupportedArchive)
)

// Error is a fatal installation failure. It is never retried.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf(messages.InstallErrorFmt, e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Layout locates the executable inside an installed runtime.
type Layout struct {
	BinaryDir string
	// Executable is the platform file name, including any .exe suffix.
	Executable string
}

// Result describes a completed installation.
type Result struct {
	Success bool
	// Executable is the absolute path of the validated runtime executable.
	Executable string
	// Home is the runtime root, the target directory.
	Home string
}

// Installer extracts bundles for one runtime layout.
type Installer struct {
	layout Layout
	logger *zap.Logger
}

// New returns an Installer for layout.
func New(layout Layout, logger *zap.Logger) *Installer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Installer{layout: layout, logger: logger}
}

// Install extracts archive into targetDir, flattens a single wrapping
// directory, and validates the executable. A cancelled ctx is reported as
// ctx.Err(); every other failure is an *Error.
func (i *Installer) Install(ctx context.Context, archive string, targetDir string) (Result, error) {
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return Result{}, &Error{Op: "create", Path: targetDir, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	extract, err := extractorFor(archive)
	if err != nil {
		return Result{}, &Error{Op: "open", Path: archive, Err: err}
	}
	i.logger.Info(messages.InstallExtractingLog, zap.String("archive", archive), zap.String("target", targetDir))
	topLevel, err := extract(archive, targetDir)
	if err != nil {
		return Result{}, &Error{Op: "extract", Path: archive, Err: err}
	}

	if err := i.flatten(targetDir, topLevel); err != nil {
		return Result{}, &Error{Op: "flatten", Path: targetDir, Err: err}
	}

	exe := i.ExecutablePath(targetDir)
	info, err := os.Stat(exe)
	if err != nil || !info.Mode().IsRegular() {
		return Result{}, &Error{Op: "validate", Path: exe, Err: ErrMissingExecutable}
	}
	if goos != "windows" && info.Mode().Perm()&0o111 == 0 {
		if err := os.Chmod(exe, info.Mode().Perm()|0o755); err != nil {
			return Result{}, &Error{Op: "chmod", Path: exe, Err: err}
		}
	}

	i.logger.Info(messages.InstallCompleteLog, zap.String("executable", exe))
	return Result{Success: true, Executable: exe, Home: targetDir}, nil
}

// ExecutablePath is the canonical executable location under root.
func (i *Installer) ExecutablePath(root string) string {
	return filepath.Join(root, i.layout.BinaryDir, i.layout.Executable)
}

// FindExecutable searches root for <binary_dir>/<executable> at any depth
// and returns the shallowest match in lexical walk order.
func (i *Installer) FindExecutable(root string) (string, bool) {
	found := ""
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() || d.Name() != i.layout.Executable {
			return nil
		}
		if filepath.Base(filepath.Dir(path)) != i.layout.BinaryDir {
			return nil
		}
		if found == "" || depth(path) < depth(found) {
			found = path
		}
		return nil
	})
	return found, found != ""
}

func depth(path string) int {
	return strings.Count(filepath.ToSlash(path), "/")
}

// flatten moves the children of a single extracted top-level directory up
// one level when that directory holds the binary subdirectory.
func (i *Installer) flatten(targetDir string, topLevel []string) error {
	if len(topLevel) != 1 {
		return nil
	}
	nested := filepath.Join(targetDir, topLevel[0])
	info, err := os.Stat(nested)
	if err != nil || !info.IsDir() {
		return nil
	}
	if bin, err := os.Stat(filepath.Join(nested, i.layout.BinaryDir)); err != nil || !bin.IsDir() {
		return nil
	}

	// Renaming first lets a child share the wrapper's name.
	staging, err := os.MkdirTemp(targetDir, ".flatten-*")
	if err != nil {
		return err
	}
	if err := os.Remove(staging); err != nil {
		return err
	}
	if err := os.Rename(nested, staging); err != nil {
		return err
	}

	entries, err := os.ReadDir(staging)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		dst := filepath.Join(targetDir, entry.Name())
		if err := os.RemoveAll(dst); err != nil {
			return err
		}
		if err := os.Rename(filepath.Join(staging, entry.Name()), dst); err != nil {
			return err
		}
	}
	i.logger.Debug(messages.InstallFlattenedLog, zap.String("dir", topLevel[0]))
	return os.Remove(staging)
}
