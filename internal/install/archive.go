package install

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/conn-castle/prelaunch/internal/messages"
)

// extractFunc unpacks an archive into dir and returns the distinct top-level
// entry names it produced, in first-seen order.
type extractFunc func(archive string, dir string) ([]string, error)

func extractorFor(archive string) (extractFunc, error) {
	lower := strings.ToLower(archive)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return extractZip, nil
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return extractTarGz, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedArchive, filepath.Base(archive))
	}
}

// topLevelSet records first path components in order.
type topLevelSet struct {
	seen  map[string]struct{}
	names []string
}

func (s *topLevelSet) add(rel string) {
	first := strings.SplitN(filepath.ToSlash(rel), "/", 2)[0]
	if first == "" || first == "." {
		return
	}
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[first]; ok {
		return
	}
	s.seen[first] = struct{}{}
	s.names = append(s.names, first)
}

// safeJoin resolves an archive entry name under dir, rejecting traversal.
func safeJoin(dir string, name string) (string, string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || filepath.VolumeName(clean) != "" {
		return "", "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	dest := filepath.Join(dir, clean)
	rel, err := filepath.Rel(dir, dest)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return dest, rel, nil
}

func extractZip(archive string, dir string) ([]string, error) {
	reader, err := zip.OpenReader(archive)
	if err != nil {
		return nil, fmt.Errorf(messages.InstallOpenArchiveFmt, archive, err)
	}
	defer func() { _ = reader.Close() }()

	var top topLevelSet
	for _, file := range reader.File {
		dest, rel, err := safeJoin(dir, file.Name)
		if err != nil {
			return nil, err
		}
		if rel == "." {
			continue
		}
		top.add(rel)
		mode := file.Mode()
		switch {
		case mode.IsDir():
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return nil, err
			}
		case mode&os.ModeSymlink != 0:
			target, err := readZipEntry(file)
			if err != nil {
				return nil, err
			}
			if err := writeSymlink(dir, dest, string(target)); err != nil {
				return nil, err
			}
		default:
			if err := writeZipFile(file, dest, mode.Perm()); err != nil {
				return nil, err
			}
		}
	}
	return top.names, nil
}

func readZipEntry(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(rc)
}

func writeZipFile(file *zip.File, dest string, perm os.FileMode) error {
	rc, err := file.Open()
	if err != nil {
		return fmt.Errorf(messages.InstallReadEntryFmt, file.Name, err)
	}
	defer func() { _ = rc.Close() }()
	return writeFile(dest, rc, perm)
}

func extractTarGz(archive string, dir string) ([]string, error) {
	f, err := os.Open(archive)
	if err != nil {
		return nil, fmt.Errorf(messages.InstallOpenArchiveFmt, archive, err)
	}
	defer func() { _ = f.Close() }()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf(messages.InstallOpenArchiveFmt, archive, err)
	}
	defer func() { _ = gz.Close() }()

	var top topLevelSet
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf(messages.InstallReadEntryFmt, archive, err)
		}
		dest, rel, err := safeJoin(dir, hdr.Name)
		if err != nil {
			return nil, err
		}
		if rel == "." {
			continue
		}
		top.add(rel)
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return nil, err
			}
		case tar.TypeSymlink:
			if err := writeSymlink(dir, dest, hdr.Linkname); err != nil {
				return nil, err
			}
		case tar.TypeReg:
			if err := writeFile(dest, tr, os.FileMode(hdr.Mode).Perm()); err != nil {
				return nil, err
			}
		default:
			// Hard links, devices and FIFOs are not part of a runtime bundle.
		}
	}
	return top.names, nil
}

func writeFile(dest string, r io.Reader, perm os.FileMode) error {
	if perm == 0 {
		perm = 0o644
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	_ = os.Remove(dest)
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return fmt.Errorf(messages.InstallWriteFileFmt, dest, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		_ = out.Close()
		return fmt.Errorf(messages.InstallWriteFileFmt, dest, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf(messages.InstallWriteFileFmt, dest, err)
	}
	return nil
}

// writeSymlink creates a link only when its target resolves inside root.
func writeSymlink(root string, dest string, target string) error {
	resolved := target
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(filepath.Dir(dest), target)
	}
	rel, err := filepath.Rel(root, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: %s -> %s", ErrUnsafePath, dest, target)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	_ = os.Remove(dest)
	return os.Symlink(target, dest)
}
