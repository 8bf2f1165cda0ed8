// Package download fetches the runtime bundle from an ordered list of
// mirrors, verifying its SHA-256 before it is moved into place.
package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/conn-castle/prelaunch/internal/config"
	"github.com/conn-castle/prelaunch/internal/fsutil"
	"github.com/conn-castle/prelaunch/internal/messages"
)

var (
	osCreate = os.Create
	osRename = os.Rename
)

// Mirror is one source of the bundle.
type Mirror struct {
	URL    string
	SHA256 string
}

// MirrorsFromConfig keeps the declared order.
func MirrorsFromConfig(in []config.MirrorConfig) []Mirror {
	out := make([]Mirror, 0, len(in))
	for _, m := range in {
		out = append(out, Mirror{URL: m.URL, SHA256: m.SHA256})
	}
	return out
}

// Session describes the state of a Download call. MirrorIndex and Attempt
// identify the current attempt; Attempts counts network attempts so far.
type Session struct {
	Target          string
	BytesDownloaded int64
	// TotalBytes is -1 when the server did not declare a length.
	TotalBytes  int64
	MirrorIndex int
	Attempt     int
	Attempts    int
	// Reused is set when an already verified file satisfied the request.
	Reused bool
}

// Percent returns the completed share, or 0 when the total is unknown.
func (s Session) Percent() int {
	if s.TotalBytes <= 0 {
		return 0
	}
	p := int(s.BytesDownloaded * 100 / s.TotalBytes)
	if p > 100 {
		return 100
	}
	return p
}

// UpdateKind classifies a progress callback.
type UpdateKind int

const (
	// UpdateAttempt is sent before each network attempt.
	UpdateAttempt UpdateKind = iota
	// UpdateProgress is sent after each chunk is written.
	UpdateProgress
	// UpdateAttemptFailed is sent when an attempt is abandoned.
	UpdateAttemptFailed
	// UpdateReused is sent when the existing file matched.
	UpdateReused
)

// Update is delivered to the progress callback on the downloading goroutine.
type Update struct {
	Kind    UpdateKind
	Session Session
	Err     error
}

// ProgressFunc receives download updates. It must not block for long.
type ProgressFunc func(Update)

// Options tunes a Downloader.
type Options struct {
	MaxRetries     int
	ChunkSize      int
	MaxBytes       int64
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	RetryBackoff   time.Duration
}

// OptionsFromConfig converts the download section of the config.
func OptionsFromConfig(dc config.DownloadConfig) Options {
	return Options{
		MaxRetries:     dc.MaxRetries,
		ChunkSize:      dc.ChunkSize,
		MaxBytes:       dc.MaxBytes,
		ConnectTimeout: dc.ConnectTimeoutDuration(),
		ReadTimeout:    dc.ReadTimeoutDuration(),
		RetryBackoff:   dc.RetryBackoffDuration(),
	}
}

// Downloader fetches one bundle per Download call.
type Downloader struct {
	opts   Options
	client *http.Client
	logger *zap.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// New returns a Downloader with an HTTP client built from opts.
func New(opts Options, logger *zap.Logger) *Downloader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	if opts.ChunkSize < 1 {
		opts.ChunkSize = 1 << 20
	}
	return &Downloader{
		opts:   opts,
		client: newHTTPClient(opts),
		logger: logger,
		sleep:  sleepContext,
	}
}

func newHTTPClient(opts Options) *http.Client {
	dialer := &net.Dialer{Timeout: opts.ConnectTimeout}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   opts.ConnectTimeout,
		ResponseHeaderTimeout: opts.ReadTimeout,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: transport}
}

// Download makes dest hold a file matching one mirror's hash. Mirrors are
// tried in order, each up to MaxRetries times, so at most
// len(mirrors)*MaxRetries network attempts are made. The returned Session is
// valid on both success and failure.
func (d *Downloader) Download(ctx context.Context, mirrors []Mirror, dest string, progress ProgressFunc) (Session, error) {
	session := Session{Target: dest, TotalBytes: -1}
	if len(mirrors) == 0 {
		return session, ErrNoMirrors
	}
	if progress == nil {
		progress = func(Update) {}
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return session, fmt.Errorf(messages.DownloadCreateDirFmt, filepath.Dir(dest), err)
	}

	var result error
	err := fsutil.WithFileLock(ctx, dest+".lock", func() error {
		result = d.run(ctx, mirrors, dest, &session, progress)
		return nil
	})
	if err != nil {
		return session, err
	}
	return session, result
}

func (d *Downloader) run(ctx context.Context, mirrors []Mirror, dest string, s *Session, progress ProgressFunc) error {
	var lastErr error
	for i, mirror := range mirrors {
		s.MirrorIndex = i
		// dest only changes when an attempt succeeds, so one check per mirror suffices.
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.reusable(dest, mirror) {
			s.Attempt = 0
			s.Reused = true
			if info, err := os.Stat(dest); err == nil {
				s.BytesDownloaded, s.TotalBytes = info.Size(), info.Size()
			}
			d.logger.Info(messages.DownloadReusedLog, zap.String("path", dest), zap.Int("mirror", i))
			progress(Update{Kind: UpdateReused, Session: *s})
			return nil
		}

		for attempt := 1; attempt <= d.opts.MaxRetries; attempt++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if s.Attempts > 0 && d.opts.RetryBackoff > 0 {
				if err := d.sleep(ctx, d.opts.RetryBackoff); err != nil {
					return err
				}
			}
			s.Attempt = attempt
			s.Attempts++
			s.BytesDownloaded = 0
			s.TotalBytes = -1
			progress(Update{Kind: UpdateAttempt, Session: *s})
			d.logger.Info(messages.DownloadAttemptLog,
				zap.String("url", mirror.URL), zap.Int("mirror", i), zap.Int("attempt", attempt))

			err := d.attempt(ctx, mirror, dest, s, progress)
			if err == nil {
				d.logger.Info(messages.DownloadVerifiedLog,
					zap.String("path", dest), zap.Int64("bytes", s.BytesDownloaded))
				return nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				d.logger.Info(messages.DownloadCancelledLog, zap.String("url", mirror.URL))
				return ctxErr
			}
			lastErr = err
			d.logger.Warn(messages.DownloadAttemptFailedLog,
				zap.String("url", mirror.URL), zap.Int("mirror", i), zap.Int("attempt", attempt), zap.Error(err))
			progress(Update{Kind: UpdateAttemptFailed, Session: *s, Err: err})
		}
	}
	return fmt.Errorf(messages.DownloadExhaustedFmt, ErrExhausted, s.Attempts, lastErr)
}

// reusable reports whether dest already holds the mirror's bundle.
func (d *Downloader) reusable(dest string, mirror Mirror) bool {
	if !fsutil.IsRegularFile(dest) {
		return false
	}
	err := VerifyFile(dest, mirror.SHA256)
	if err != nil && !errors.Is(err, ErrChecksumMismatch) {
		d.logger.Debug(messages.DownloadReuseCheckLog, zap.String("path", dest), zap.Error(err))
	}
	return err == nil
}

// attempt performs one GET into dest.part, verifies it, and renames it over dest.
func (d *Downloader) attempt(ctx context.Context, mirror Mirror, dest string, s *Session, progress ProgressFunc) error {
	attemptCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, mirror.URL, nil)
	if err != nil {
		return &NetworkError{URL: mirror.URL, Err: err}
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return &NetworkError{URL: mirror.URL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return &NetworkError{URL: mirror.URL, StatusCode: resp.StatusCode}
	}
	if d.opts.MaxBytes > 0 && resp.ContentLength > d.opts.MaxBytes {
		return &NetworkError{URL: mirror.URL, Err: ErrTooLarge}
	}
	s.TotalBytes = resp.ContentLength

	part := dest + ".part"
	file, err := osCreate(part)
	if err != nil {
		return fmt.Errorf(messages.DownloadCreatePartFmt, part, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(part)
		}
	}()

	hasher := sha256.New()
	body := newIdleReader(resp.Body, d.opts.ReadTimeout, func() { cancel(errIdleTimeout) })
	defer body.stop()
	copyErr := d.copyChunks(ctx, attemptCtx, file, hasher, body, mirror.URL, s, progress)
	closeErr := file.Close()
	if copyErr != nil {
		return copyErr
	}
	if closeErr != nil {
		return fmt.Errorf(messages.DownloadWritePartFmt, part, closeErr)
	}

	got := hex.EncodeToString(hasher.Sum(nil))
	if !strings.EqualFold(got, mirror.SHA256) {
		return &ChecksumError{Filename: mirror.URL, Expected: strings.ToLower(mirror.SHA256), Got: got}
	}
	if err := osRename(part, dest); err != nil {
		return fmt.Errorf(messages.DownloadRenameFmt, part, dest, err)
	}
	committed = true
	return nil
}

// copyChunks streams body into file in ChunkSize pieces, checking ctx at
// every chunk boundary.
func (d *Downloader) copyChunks(ctx, attemptCtx context.Context, file *os.File, hasher hash.Hash, body io.Reader, url string, s *Session, progress ProgressFunc) error {
	buf := make([]byte, d.opts.ChunkSize)
	sink := io.MultiWriter(file, hasher)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, readErr := io.ReadFull(body, buf)
		if n > 0 {
			if _, err := sink.Write(buf[:n]); err != nil {
				return fmt.Errorf(messages.DownloadWritePartFmt, file.Name(), err)
			}
			s.BytesDownloaded += int64(n)
			if d.opts.MaxBytes > 0 && s.BytesDownloaded > d.opts.MaxBytes {
				return &NetworkError{URL: url, Err: ErrTooLarge}
			}
			progress(Update{Kind: UpdateProgress, Session: *s})
		}
		if readErr == io.EOF || readErr == io.ErrUnexpectedEOF {
			break
		}
		if readErr != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if cause := context.Cause(attemptCtx); errors.Is(cause, errIdleTimeout) {
				return &NetworkError{URL: url, Err: errIdleTimeout}
			}
			return &NetworkError{URL: url, Err: readErr}
		}
	}
	if s.TotalBytes >= 0 && s.BytesDownloaded != s.TotalBytes {
		return &NetworkError{URL: url, Err: ErrTruncated}
	}
	return nil
}

// idleReader cancels the attempt when no read completes within timeout.
type idleReader struct {
	r       io.Reader
	timeout time.Duration
	timer   *time.Timer
}

func newIdleReader(r io.Reader, timeout time.Duration, onIdle func()) *idleReader {
	ir := &idleReader{r: r, timeout: timeout}
	if timeout > 0 {
		ir.timer = time.AfterFunc(timeout, onIdle)
	}
	return ir
}

func (r *idleReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if r.timer != nil {
		r.timer.Reset(r.timeout)
	}
	return n, err
}

func (r *idleReader) stop() {
	if r.timer != nil {
		r.timer.Stop()
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
