package binary

import (
	"archive/tar"
	"archive/zip"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// maxEntryBytes bounds a single extracted file.
const maxEntryBytes = 2 << 30

// ArchiveKind is the container format of an asset.
type ArchiveKind int

const (
	KindRaw ArchiveKind = iota
	KindTar
	KindTarGz
	KindTarBz2
	KindTarXz
	KindTarZst
	KindZip
	KindGz
)

// DetectArchive infers the archive kind from an asset name.
func DetectArchive(name string) ArchiveKind {
	n := strings.ToLower(name)
	switch {
	case strings.HasSuffix(n, ".tar.gz"), strings.HasSuffix(n, ".tgz"):
		return KindTarGz
	case strings.HasSuffix(n, ".tar.bz2"), strings.HasSuffix(n, ".tbz2"), strings.HasSuffix(n, ".tbz"):
		return KindTarBz2
	case strings.HasSuffix(n, ".tar.xz"), strings.HasSuffix(n, ".txz"):
		return KindTarXz
	case strings.HasSuffix(n, ".tar.zst"), strings.HasSuffix(n, ".tzst"):
		return KindTarZst
	case strings.HasSuffix(n, ".tar"):
		return KindTar
	case strings.HasSuffix(n, ".zip"):
		return KindZip
	case strings.HasSuffix(n, ".gz"):
		return KindGz
	default:
		return KindRaw
	}
}

// Extractor unpacks downloaded assets.
type Extractor struct{}

// NewExtractor creates a new extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract unpacks the file at archivePath into destDir. name is the asset
// name and decides the format. Raw assets are copied into destDir as-is.
func (e *Extractor) Extract(archivePath, name, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	switch kind := DetectArchive(name); kind {
	case KindZip:
		return e.extractZip(archivePath, destDir)
	case KindTar:
		return e.extractTar(f, destDir)
	case KindTarGz:
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("create gzip reader: %w", err)
		}
		defer gz.Close()
		return e.extractTar(gz, destDir)
	case KindTarBz2:
		return e.extractTar(bzip2.NewReader(f), destDir)
	case KindTarXz:
		xr, err := xz.NewReader(f)
		if err != nil {
			return fmt.Errorf("create xz reader: %w", err)
		}
		return e.extractTar(xr, destDir)
	case KindTarZst:
		zr, err := zstd.NewReader(f)
		if err != nil {
			return fmt.Errorf("create zstd reader: %w", err)
		}
		defer zr.Close()
		return e.extractTar(zr, destDir)
	case KindGz:
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("create gzip reader: %w", err)
		}
		defer gz.Close()
		target := filepath.Join(destDir, filepath.Base(name[:len(name)-len(".gz")]))
		return writeFile(target, gz, 0o755)
	default:
		return writeFile(filepath.Join(destDir, filepath.Base(name)), f, 0o755)
	}
}

func (e *Extractor) extractTar(r io.Reader, destDir string) error {
	tr := tar.NewReader(r)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read tar header: %w", err)
		}

		target, err := safeJoin(destDir, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create directory %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, os.FileMode(header.Mode).Perm()); err != nil {
				return err
			}
		case tar.TypeSymlink:
			// Links may only point inside the archive.
			if filepath.IsAbs(header.Linkname) {
				continue
			}
			if _, err := safeJoin(destDir, filepath.Join(filepath.Dir(header.Name), header.Linkname)); err != nil {
				continue
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create parent dir for %s: %w", target, err)
			}
			if err := os.Symlink(header.Linkname, target); err != nil {
				return fmt.Errorf("create symlink %s: %w", target, err)
			}
		default:
			// Skip other types (hard links, devices, fifos)
			continue
		}
	}
}

func (e *Extractor) extractZip(archivePath, destDir string) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		target, err := safeJoin(destDir, f.Name)
		if err != nil {
			return err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create directory %s: %w", target, err)
			}
			continue
		}
		if !f.Mode().IsRegular() {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("open %s: %w", f.Name, err)
		}
		mode := f.Mode().Perm()
		if mode == 0 {
			mode = 0o644
		}
		err = writeFile(target, rc, mode)
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// safeJoin joins name under dir and rejects paths that escape it.
func safeJoin(dir, name string) (string, error) {
	target := filepath.Join(dir, name)
	root := filepath.Clean(dir)
	if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", fmt.Errorf("illegal file path: %s", name)
	}
	return target, nil
}

func writeFile(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create parent dir for %s: %w", target, err)
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("create file %s: %w", target, err)
	}
	n, err := io.Copy(out, io.LimitReader(r, maxEntryBytes+1))
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("write file %s: %w", target, err)
	}
	if n > maxEntryBytes {
		return fmt.Errorf("file %s exceeds %d bytes", target, int64(maxEntryBytes))
	}
	return nil
}
