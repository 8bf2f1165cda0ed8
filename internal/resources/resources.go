// Package resources resolves the bundled, read-only files shipped next to
// the launcher: locale overrides, the launchable unit, and rules texts.
package resources

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/conn-castle/prelaunch/internal/messages"
)

// EnvRoot overrides the resource root.
const EnvRoot = "PRELAUNCH_RESOURCES"

const dirName = "resources"

// Mode records how the root was chosen.
type Mode string

const (
	// ModeExplicit means a flag or EnvRoot selected the root.
	ModeExplicit Mode = "explicit"
	// ModePackaged means the root sits next to the executable.
	ModePackaged Mode = "packaged"
	// ModeDevelopment means the root is ./resources under the working directory.
	ModeDevelopment Mode = "development"
)

// System is the process surface Resolve depends on.
type System interface {
	Getenv(key string) string
	Executable() (string, error)
	Getwd() (string, error)
}

// RealSystem implements System with the os package.
type RealSystem struct{}

// Getenv wraps os.Getenv.
func (RealSystem) Getenv(key string) string { return os.Getenv(key) }

// Executable returns the symlink-resolved path of the running binary.
func (RealSystem) Executable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(exe)
}

// Getwd wraps os.Getwd.
func (RealSystem) Getwd() (string, error) { return os.Getwd() }

// Resolver maps resource-relative paths onto the chosen root.
type Resolver struct {
	Root string
	Mode Mode
}

// Resolve picks the root: flagRoot, then $PRELAUNCH_RESOURCES, then
// <executable dir>/resources when it exists, else ./resources.
func Resolve(sys System, flagRoot string) (*Resolver, error) {
	if root := strings.TrimSpace(flagRoot); root != "" {
		return explicit(root)
	}
	if root := strings.TrimSpace(sys.Getenv(EnvRoot)); root != "" {
		return explicit(root)
	}
	if exe, err := sys.Executable(); err == nil {
		packaged := filepath.Join(filepath.Dir(exe), dirName)
		if info, err := os.Stat(packaged); err == nil && info.IsDir() {
			return &Resolver{Root: packaged, Mode: ModePackaged}, nil
		}
	}
	cwd, err := sys.Getwd()
	if err != nil {
		return nil, fmt.Errorf(messages.ResourcesGetwdFmt, err)
	}
	return &Resolver{Root: filepath.Join(cwd, dirName), Mode: ModeDevelopment}, nil
}

func explicit(root string) (*Resolver, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf(messages.ResourcesRootFmt, root, err)
	}
	return &Resolver{Root: abs, Mode: ModeExplicit}, nil
}

// Path returns the absolute path of a resource-relative slash path.
func (r *Resolver) Path(rel string) string {
	return filepath.Join(r.Root, filepath.FromSlash(rel))
}

// ReadFile reads a resource.
func (r *Resolver) ReadFile(rel string) ([]byte, error) {
	data, err := os.ReadFile(r.Path(rel))
	if err != nil {
		return nil, fmt.Errorf(messages.ResourcesReadFmt, rel, err)
	}
	return data, nil
}

// Exists reports whether a resource file is present.
func (r *Resolver) Exists(rel string) bool {
	info, err := os.Stat(r.Path(rel))
	return err == nil && !info.IsDir()
}
