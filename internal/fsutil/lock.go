package fsutil

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/conn-castle/prelaunch/internal/messages"
)

type fileLock struct {
	file *os.File
}

var (
	tryLockFn    = tryLockFile
	unlockFileFn = unlockFile
)

var (
	lockWaitTimeout = 30 * time.Second
	lockPollEvery   = 100 * time.Millisecond
)

// WithFileLock acquires an exclusive advisory lock on path, runs fn, and
// releases the lock. Waiting for the lock stops at the wait timeout or when
// ctx is cancelled.
func WithFileLock(ctx context.Context, path string, fn func() error) error {
	lock, err := acquireFileLock(ctx, path)
	if err != nil {
		return err
	}
	defer func() {
		_ = lock.release()
	}()
	return fn()
}

// acquireFileLock opens or creates path and acquires an exclusive lock.
func acquireFileLock(ctx context.Context, path string) (*fileLock, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf(messages.FsutilOpenLockFmt, path, err)
	}
	if err := lockFile(ctx, file); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf(messages.FsutilLockFmt, path, err)
	}
	return &fileLock{file: file}, nil
}

// release unlocks and closes the file lock.
func (l *fileLock) release() error {
	if l == nil || l.file == nil {
		return nil
	}
	if err := unlockFileFn(l.file); err != nil {
		_ = l.file.Close()
		return err
	}
	return l.file.Close()
}

// lockFile polls a non-blocking lock attempt until it succeeds, the wait
// timeout elapses, or ctx is done.
func lockFile(ctx context.Context, file *os.File) error {
	deadline := time.Now().Add(lockWaitTimeout)
	ticker := time.NewTicker(lockPollEvery)
	defer ticker.Stop()
	for {
		acquired, err := tryLockFn(file)
		if err != nil {
			return err
		}
		if acquired {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf(messages.FsutilLockTimeoutFmt, lockWaitTimeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
