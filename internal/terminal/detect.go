// Package terminal decides whether the interactive presenter can be used.
package terminal

import (
	"os"

	"golang.org/x/term"
)

// EnvNoTUI forces the plain presenter when set to any non-empty value.
const EnvNoTUI = "PRELAUNCH_PLAIN"

var isTerminal = term.IsTerminal

// fder is satisfied by *os.File.
type fder interface {
	Fd() uintptr
}

// IsInteractive reports whether stdin and stdout are both terminals.
func IsInteractive() bool {
	return Interactive(os.Stdin, os.Stdout, os.Getenv)
}

// Interactive reports whether in and out are terminals and the plain
// presenter has not been requested through EnvNoTUI.
func Interactive(in fder, out fder, getenv func(string) string) bool {
	if getenv != nil && getenv(EnvNoTUI) != "" {
		return false
	}
	return isTerminal(int(in.Fd())) && isTerminal(int(out.Fd()))
}
