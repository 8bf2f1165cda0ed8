//go:build unix

package fsutil

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

var flockFn = unix.Flock

// tryLockFile attempts a non-blocking exclusive flock. It reports false when
// another process holds the lock.
func tryLockFile(file *os.File) (bool, error) {
	err := flockFn(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EAGAIN) {
		return false, nil
	}
	return false, err
}

// unlockFile releases the advisory lock on the file.
func unlockFile(file *os.File) error {
	return flockFn(int(file.Fd()), unix.LOCK_UN)
}

// IsInUse reports whether err indicates the file is held open by another
// process in a way that blocks replacement.
func IsInUse(err error) bool {
	return errors.Is(err, unix.ETXTBSY) || errors.Is(err, unix.EBUSY)
}
