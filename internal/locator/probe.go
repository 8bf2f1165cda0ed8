package locator

import (
	"bytes"
	"context"
	"os/exec"
	"time"
)

type probeFunc func(ctx context.Context, exe string, flag string) (string, error)

// probeWaitDelay bounds how long a killed probe may hold its output pipe.
var probeWaitDelay = 500 * time.Millisecond

// runProbe runs "<exe> <flag>" and returns its stderr. Stdout is discarded.
func runProbe(ctx context.Context, exe string, flag string) (string, error) {
	var args []string
	if flag != "" {
		args = append(args, flag)
	}
	cmd := exec.CommandContext(ctx, exe, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.WaitDelay = probeWaitDelay
	hideWindow(cmd)
	err := cmd.Run()
	return stderr.String(), err
}
