package binary

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

func TestDetectArchive(t *testing.T) {
	tests := []struct {
		name string
		want ArchiveKind
	}{
		{"rg-14.1.0-x86_64-unknown-linux-musl.tar.gz", KindTarGz},
		{"tool.TGZ", KindTarGz},
		{"tool.tar.bz2", KindTarBz2},
		{"tool.tbz2", KindTarBz2},
		{"tool.tar.xz", KindTarXz},
		{"tool.txz", KindTarXz},
		{"tool.tar.zst", KindTarZst},
		{"tool.tar", KindTar},
		{"tool_windows_amd64.zip", KindZip},
		{"tool-linux.gz", KindGz},
		{"tool-linux-amd64", KindRaw},
		{"tool_1.0_amd64.deb", KindRaw},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectArchive(tt.name); got != tt.want {
				t.Errorf("DetectArchive(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func compressXz(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func compressZstd(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestExtract(t *testing.T) {
	files := map[string]testEntry{
		"tool-1.0/tool":      {body: elfBody, mode: 0o755},
		"tool-1.0/README.md": {body: "readme"},
	}

	tests := []struct {
		name  string
		asset string
		data  func(t *testing.T) []byte
	}{
		{"tar.gz", "tool.tar.gz", func(t *testing.T) []byte { return tarGzBytes(t, files) }},
		{"tar", "tool.tar", func(t *testing.T) []byte { return tarBytes(t, files) }},
		{"tar.xz", "tool.tar.xz", func(t *testing.T) []byte { return compressXz(t, tarBytes(t, files)) }},
		{"tar.zst", "tool.tar.zst", func(t *testing.T) []byte { return compressZstd(t, tarBytes(t, files)) }},
		{"zip", "tool.zip", func(t *testing.T) []byte { return zipBytes(t, files) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			archive := writeTemp(t, tt.asset, tt.data(t))
			dest := t.TempDir()

			if err := NewExtractor().Extract(archive, tt.asset, dest); err != nil {
				t.Fatalf("Extract() error = %v", err)
			}

			got, err := os.ReadFile(filepath.Join(dest, "tool-1.0", "tool"))
			if err != nil {
				t.Fatalf("extracted file missing: %v", err)
			}
			if string(got) != elfBody {
				t.Errorf("content = %q", got)
			}
			info, err := os.Stat(filepath.Join(dest, "tool-1.0", "tool"))
			if err != nil {
				t.Fatal(err)
			}
			if info.Mode().Perm()&0o100 == 0 {
				t.Errorf("mode = %v, want executable", info.Mode())
			}
		})
	}
}

func TestExtract_Raw(t *testing.T) {
	archive := writeTemp(t, "download", []byte(elfBody))
	dest := t.TempDir()

	if err := NewExtractor().Extract(archive, "tool-linux-amd64", dest); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	info, err := os.Stat(filepath.Join(dest, "tool-linux-amd64"))
	if err != nil {
		t.Fatalf("raw asset not copied: %v", err)
	}
	if info.Mode().Perm() != 0o755 {
		t.Errorf("mode = %v, want 0755", info.Mode().Perm())
	}
}

func TestExtract_BareGzip(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	gz.Write([]byte(elfBody))
	gz.Close()

	archive := writeTemp(t, "dl", buf.Bytes())
	dest := t.TempDir()
	if err := NewExtractor().Extract(archive, "tool-linux-amd64.gz", dest); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dest, "tool-linux-amd64"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != elfBody {
		t.Errorf("content = %q", got)
	}
}

func TestExtract_PathTraversal(t *testing.T) {
	tests := []struct {
		name  string
		asset string
		data  func(t *testing.T) []byte
	}{
		{"tar", "evil.tar.gz", func(t *testing.T) []byte {
			return tarGzBytes(t, map[string]testEntry{"../../etc/evil": {body: "x"}})
		}},
		{"zip", "evil.zip", func(t *testing.T) []byte {
			return zipBytes(t, map[string]testEntry{"../evil": {body: "x"}})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			archive := writeTemp(t, tt.asset, tt.data(t))
			root := t.TempDir()
			dest := filepath.Join(root, "a", "b")
			err := NewExtractor().Extract(archive, tt.asset, dest)
			if err == nil {
				t.Fatal("Extract() succeeded, want path error")
			}
			if !strings.Contains(err.Error(), "illegal file path") && !strings.Contains(err.Error(), "insecure") {
				t.Errorf("Extract() error = %v, want path error", err)
			}
			for _, p := range []string{filepath.Join(root, "a", "evil"), filepath.Join(root, "etc", "evil")} {
				if _, err := os.Stat(p); !os.IsNotExist(err) {
					t.Errorf("file written outside destination: %s", p)
				}
			}
		})
	}
}

func TestExtract_SkipsEscapingSymlinks(t *testing.T) {
	files := map[string]testEntry{
		"bin/tool":     {body: elfBody, mode: 0o755},
		"bin/inside":   {link: "tool"},
		"bin/outside":  {link: "../../../etc/passwd"},
		"bin/absolute": {link: "/etc/passwd"},
	}
	archive := writeTemp(t, "t.tar.gz", tarGzBytes(t, files))
	dest := t.TempDir()

	if err := NewExtractor().Extract(archive, "t.tar.gz", dest); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if _, err := os.Lstat(filepath.Join(dest, "bin", "inside")); err != nil {
		t.Errorf("inside symlink missing: %v", err)
	}
	for _, name := range []string{"outside", "absolute"} {
		if _, err := os.Lstat(filepath.Join(dest, "bin", name)); !os.IsNotExist(err) {
			t.Errorf("symlink %s should have been skipped", name)
		}
	}
}
