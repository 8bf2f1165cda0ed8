package download

import (
	"errors"
	"fmt"

	"github.com/conn-castle/prelaunch/internal/messages"
)

var (
	// ErrNoMirrors is returned when the mirror list is empty.
	ErrNoMirrors = errors.New(messages.DownloadNoMirrors)
	// ErrExhausted is returned when every attempt on every mirror failed.
	ErrExhausted = errors.New(messages.DownloadExhausted)
	// ErrTooLarge marks a response larger than the configured limit.
	ErrTooLarge = errors.New(messages.DownloadTooLarge)
	// ErrTruncated marks a body shorter than its declared length.
	ErrTruncated = errors.New(messages.DownloadTruncated)

	errIdleTimeout = errors.New(messages.DownloadIdleTimeout)
)

// NetworkError reports a transport, timeout, or HTTP status failure for one
// attempt. StatusCode is zero when no response was received.
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf(messages.DownloadUnexpectedStatusFmt, e.URL, e.StatusCode)
	}
	return fmt.Sprintf(messages.DownloadFailedFmt, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Timeout reports whether the failure was a connect, header, or idle timeout.
func (e *NetworkError) Timeout() bool {
	if errors.Is(e.Err, errIdleTimeout) {
		return true
	}
	var timeout interface{ Timeout() bool }
	return errors.As(e.Err, &timeout) && timeout.Timeout()
}
