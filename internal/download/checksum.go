package download

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/conn-castle/prelaunch/internal/messages"
)

// ErrChecksumMismatch indicates the computed SHA-256 does not match the
// mirror's declared hash.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// ChecksumError provides details about a checksum verification failure.
// It wraps ErrChecksumMismatch so callers can use errors.Is for classification.
type ChecksumError struct {
	Filename string
	Expected string
	Got      string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf(messages.DownloadChecksumMismatchFmt, e.Filename, e.Expected, e.Got)
}

// Unwrap returns ErrChecksumMismatch so callers can use errors.Is.
func (e *ChecksumError) Unwrap() error { return ErrChecksumMismatch }

// VerifyFile hashes path and compares it case-insensitively with expected.
func VerifyFile(path string, expected string) error {
	got, err := ComputeFileHash(path)
	if err != nil {
		return err
	}
	if !strings.EqualFold(got, expected) {
		return &ChecksumError{Filename: path, Expected: strings.ToLower(expected), Got: got}
	}
	return nil
}

// ComputeFileHash returns the lowercase hex SHA-256 of the file at path.
func ComputeFileHash(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf(messages.DownloadOpenFileFmt, path, err)
	}
	defer func() { _ = file.Close() }()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf(messages.DownloadHashFileFmt, path, err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
