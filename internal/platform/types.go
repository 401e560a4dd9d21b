// Package platform describes the host ir is running on.
//
// It detects OS, architecture, C library flavor and Linux distribution
// details, and turns them into the Signature used to score release assets.
// Distribution detection uses gopsutil and falls back gracefully when it
// fails; the libc probe never fails, it reports "not glibc" instead.
package platform

import "context"

// Linux distribution family constants.
const (
	FamilyDebian  = "debian"  // Debian, Ubuntu, Linux Mint
	FamilyRHEL    = "rhel"    // RHEL, CentOS, Rocky Linux, AlmaLinux
	FamilyFedora  = "fedora"  // Fedora
	FamilySUSE    = "suse"    // openSUSE, SLES
	FamilyArch    = "arch"    // Arch Linux, Manjaro
	FamilyAlpine  = "alpine"  // Alpine Linux
	FamilyGentoo  = "gentoo"  // Gentoo
	FamilyUnknown = "unknown" // Unrecognized distributions
)

// Package types an asset can be installed as, besides a plain binary.
const (
	PackageDeb      = "deb"
	PackageRPM      = "rpm"
	PackageAppImage = "AppImage"
)

// Info contains platform detection information.
type Info struct {
	OS       string // "linux", "darwin", "windows"
	Arch     string // "amd64", "arm64" when recognized, otherwise the raw GOARCH
	ArchRaw  string // original GOARCH
	Platform string // distro ID (Linux only, e.g., "ubuntu", "arch")
	Family   string // canonical family (e.g., "debian", "rhel", "arch")
	Version  string // distro version (Linux only, e.g., "22.04")
}

// Distro contains Linux distribution information.
// This is nil on non-Linux platforms.
type Distro struct {
	ID      string
	Family  string
	Version string
}

// GetDistro returns distro information if this is a Linux platform.
// Returns nil for non-Linux platforms or if distro detection failed.
func (i *Info) GetDistro() *Distro {
	if i.OS != "linux" || i.Platform == "" {
		return nil
	}
	return &Distro{
		ID:      i.Platform,
		Family:  i.Family,
		Version: i.Version,
	}
}

func (i *Info) IsLinux() bool   { return i.OS == "linux" }
func (i *Info) IsMacOS() bool   { return i.OS == "darwin" }
func (i *Info) IsWindows() bool { return i.OS == "windows" }
func (i *Info) IsAMD64() bool   { return i.Arch == "amd64" }
func (i *Info) IsARM64() bool   { return i.Arch == "arm64" }

// IsDebianFamily returns true if the Linux distribution is Debian-based.
func (i *Info) IsDebianFamily() bool {
	return i.OS == "linux" && i.Family == FamilyDebian
}

// IsRPMFamily returns true for distributions whose native package format is rpm.
func (i *Info) IsRPMFamily() bool {
	if i.OS != "linux" {
		return false
	}
	switch i.Family {
	case FamilyRHEL, FamilyFedora, FamilySUSE:
		return true
	}
	return false
}

// IsAlpine returns true if the Linux distribution is Alpine.
func (i *Info) IsAlpine() bool {
	return i.OS == "linux" && i.Family == FamilyAlpine
}

// Signature is the set of facts about the host that asset scoring keys on.
type Signature struct {
	OS          string   // lowercase OS token, e.g. "linux"
	WordSize    string   // "64bit" or "32bit"
	ArchAliases []string // alias family of the host arch; empty when unrecognized
	Glibc       bool     // host C library is glibc
}

// Detector is the interface for platform detection.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}

// LibcProber reports whether the host uses glibc.
// Implementations must not fail: any probe error means "not glibc".
type LibcProber interface {
	IsGlibc(ctx context.Context) bool
}
