package binary

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/install-release/ir/internal/fileutil"
	"github.com/install-release/ir/internal/platform"
)

// BinPlacer installs executables into a directory.
type BinPlacer struct {
	Dir string
}

// Place copies the artifact's executable to Dir/name with mode 0755.
func (p BinPlacer) Place(_ context.Context, art *Artifact, name string) (string, error) {
	if art == nil || art.Executable == "" {
		return "", ErrNoExecutable
	}
	dest := filepath.Join(p.Dir, executableName(name))
	if err := fileutil.CopyFile(art.Executable, dest, 0o755); err != nil {
		return "", fmt.Errorf("install %s: %w", name, err)
	}
	return dest, nil
}

// Remove deletes Dir/name. A missing file is not an error.
func (p BinPlacer) Remove(_ context.Context, name, _ string) error {
	err := os.Remove(filepath.Join(p.Dir, executableName(name)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}

func executableName(name string) string {
	if runtime.GOOS == "windows" && filepath.Ext(name) != ".exe" {
		return name + ".exe"
	}
	return name
}

// Runner executes a system command attached to the terminal so sudo can
// prompt.
type Runner func(ctx context.Context, name string, args ...string) error

func terminalRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// PackagePlacer installs .deb and .rpm files with the system package
// manager and AppImages by copying them into AppImageDir.
type PackagePlacer struct {
	AppImageDir string
	// Sudo prefixes package manager calls with sudo.
	Sudo bool
	Run  Runner
}

// NewPackagePlacer returns a placer that uses sudo unless running as root.
func NewPackagePlacer(appImageDir string) *PackagePlacer {
	return &PackagePlacer{AppImageDir: appImageDir, Sudo: os.Geteuid() != 0, Run: terminalRunner}
}

// Place installs the package file held by art.
func (p *PackagePlacer) Place(ctx context.Context, art *Artifact, name string) (string, error) {
	if art == nil || art.Executable == "" {
		return "", fmt.Errorf("no package file for %s", name)
	}
	switch art.PackageType {
	case platform.PackageDeb:
		return "", p.system(ctx, "dpkg", "-i", art.Executable)
	case platform.PackageRPM:
		return "", p.system(ctx, "rpm", "-U", "--replacepkgs", art.Executable)
	case platform.PackageAppImage:
		dest := filepath.Join(p.AppImageDir, name)
		if err := fileutil.CopyFile(art.Executable, dest, 0o755); err != nil {
			return "", fmt.Errorf("install %s: %w", name, err)
		}
		return dest, nil
	default:
		return "", fmt.Errorf("unsupported package type %q", art.PackageType)
	}
}

// Remove uninstalls a package previously placed under name.
func (p *PackagePlacer) Remove(ctx context.Context, name, packageType string) error {
	switch packageType {
	case platform.PackageDeb:
		return p.system(ctx, "dpkg", "-r", name)
	case platform.PackageRPM:
		return p.system(ctx, "rpm", "-e", name)
	case platform.PackageAppImage:
		err := os.Remove(filepath.Join(p.AppImageDir, name))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", name, err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported package type %q", packageType)
	}
}

func (p *PackagePlacer) system(ctx context.Context, name string, args ...string) error {
	run := p.Run
	if run == nil {
		run = terminalRunner
	}
	if p.Sudo {
		return run(ctx, "sudo", append([]string{name}, args...)...)
	}
	return run(ctx, name, args...)
}
