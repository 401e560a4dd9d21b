package binary

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var executableMagic = [][]byte{
	{0x7f, 'E', 'L', 'F'},    // ELF
	{0xfe, 0xed, 0xfa, 0xce}, // Mach-O 32
	{0xfe, 0xed, 0xfa, 0xcf}, // Mach-O 64
	{0xce, 0xfa, 0xed, 0xfe}, // Mach-O 32, little endian
	{0xcf, 0xfa, 0xed, 0xfe}, // Mach-O 64, little endian
	{0xca, 0xfe, 0xba, 0xbe}, // Mach-O universal
	{'M', 'Z'},               // PE
}

// FindExecutable returns the single program under dir. When several are
// found, the one whose base name matches name (ignoring a .exe suffix) wins.
func FindExecutable(dir, name string) (string, error) {
	var native, marked []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		kind, err := executableKind(path)
		if err != nil {
			return err
		}
		switch kind {
		case execNative:
			native = append(native, path)
		case execMarked:
			marked = append(marked, path)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("scan %s: %w", dir, err)
	}

	// Compiled programs beat files that merely carry the exec bit.
	found := native
	if len(found) == 0 {
		found = marked
	}

	switch len(found) {
	case 0:
		return "", ErrNoExecutable
	case 1:
		return found[0], nil
	}

	sort.Strings(found)
	for _, p := range found {
		if strings.TrimSuffix(filepath.Base(p), ".exe") == name {
			return p, nil
		}
	}

	rel := make([]string, len(found))
	for i, p := range found {
		rel[i], _ = filepath.Rel(dir, p)
	}
	return "", fmt.Errorf("%w: %s", ErrAmbiguousExecutable, strings.Join(rel, ", "))
}

type execKind int

const (
	execNone execKind = iota
	execNative
	execMarked
)

func executableKind(path string) (execKind, error) {
	f, err := os.Open(path)
	if err != nil {
		return execNone, err
	}
	defer f.Close()

	header := make([]byte, 4)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return execNone, err
	}
	header = header[:n]
	for _, magic := range executableMagic {
		if bytes.HasPrefix(header, magic) {
			return execNative, nil
		}
	}

	info, err := f.Stat()
	if err != nil {
		return execNone, err
	}
	if info.Mode().Perm()&0o111 != 0 {
		return execMarked, nil
	}
	return execNone, nil
}
