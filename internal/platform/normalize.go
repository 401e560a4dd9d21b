package platform

import (
	"strings"
)

// familyMap maps distribution names to their canonical family names.
var familyMap = map[string]string{
	"debian":    FamilyDebian,
	"ubuntu":    FamilyDebian,
	"linuxmint": FamilyDebian,
	"rhel":      FamilyRHEL,
	"centos":    FamilyRHEL,
	"rocky":     FamilyRHEL,
	"almalinux": FamilyRHEL,
	"fedora":    FamilyFedora,
	"suse":      FamilySUSE,
	"opensuse":  FamilySUSE,
	"arch":      FamilyArch,
	"manjaro":   FamilyArch,
	"alpine":    FamilyAlpine,
	"gentoo":    FamilyGentoo,
}

// archFamilies lists the spellings release authors use for each architecture.
var archFamilies = map[string][]string{
	"x86_64":  {"x86", "x64", "amd64", "amd", "x86_64"},
	"aarch64": {"arm64", "aarch64", "arm"},
}

// normalizeArch converts GOARCH (or uname -m) values to normalized names.
func normalizeArch(arch string) (string, bool) {
	switch strings.ToLower(arch) {
	case "amd64", "x86_64":
		return "amd64", true
	case "arm64", "aarch64":
		return "arm64", true
	default:
		return "", false
	}
}

// ArchFamily returns the alias family for arch, accepting both GOARCH and
// uname spellings. The returned slice is a copy.
func ArchFamily(arch string) ([]string, bool) {
	var key string
	switch n, _ := normalizeArch(arch); n {
	case "amd64":
		key = "x86_64"
	case "arm64":
		key = "aarch64"
	default:
		return nil, false
	}
	return append([]string(nil), archFamilies[key]...), true
}

// wordSize reports the pointer width of a GOARCH.
func wordSize(goarch string) string {
	switch strings.ToLower(goarch) {
	case "386", "arm", "mips", "mipsle", "wasm", "i386", "i686":
		return "32bit"
	}
	return "64bit"
}

// PreferredPackageType returns the native package format for the host,
// or "" when packages are not an install option (non-Linux).
func PreferredPackageType(info *Info) string {
	switch {
	case info == nil || !info.IsLinux():
		return ""
	case info.IsDebianFamily():
		return PackageDeb
	case info.IsRPMFamily():
		return PackageRPM
	default:
		return PackageAppImage
	}
}

// normalizePlatform converts platform IDs to lowercase for consistency.
func normalizePlatform(platform string) string {
	return strings.ToLower(strings.TrimSpace(platform))
}

// mapFamily maps distribution family strings to canonical family names.
func mapFamily(family string) string {
	normalized := strings.ToLower(strings.TrimSpace(family))
	if canonical, ok := familyMap[normalized]; ok {
		return canonical
	}
	return FamilyUnknown
}
