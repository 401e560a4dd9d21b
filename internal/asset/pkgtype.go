package asset

import (
	"path"
	"strings"

	"github.com/install-release/ir/internal/platform"
	"github.com/install-release/ir/internal/release"
)

// PackageTypeFromFilename returns the package format of a filename, or ""
// for anything that is not a system package.
func PackageTypeFromFilename(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".deb":
		return platform.PackageDeb
	case ".rpm":
		return platform.PackageRPM
	case ".appimage":
		return platform.PackageAppImage
	}
	return ""
}

// checksumNames are release-wide checksum files, matched case-insensitively.
var checksumNames = []string{
	"checksums.txt", "sha256sums", "sha256sums.txt", "sha256sum.txt", "checksums.sha256",
}

// ChecksumAsset finds the checksum file covering assetName: a per-asset
// sidecar (.sha256, .sha256sum) first, then a release-wide sums file.
func ChecksumAsset(assets []release.Asset, assetName string) (release.Asset, bool) {
	for _, suffix := range []string{".sha256", ".sha256sum"} {
		if a, ok := byName(assets, assetName+suffix); ok {
			return a, true
		}
	}
	for _, a := range assets {
		lower := strings.ToLower(a.Name)
		for _, n := range checksumNames {
			if lower == n || strings.HasSuffix(lower, "_"+n) || strings.HasSuffix(lower, "-"+n) {
				return a, true
			}
		}
	}
	return release.Asset{}, false
}

// SignatureAsset finds a detached signature for assetName. kind is "pgp"
// or "minisign".
func SignatureAsset(assets []release.Asset, assetName string) (a release.Asset, kind string, ok bool) {
	if a, ok := byName(assets, assetName+".minisig"); ok {
		return a, "minisign", true
	}
	for _, suffix := range []string{".asc", ".sig"} {
		if a, ok := byName(assets, assetName+suffix); ok {
			return a, "pgp", true
		}
	}
	return release.Asset{}, "", false
}

func byName(assets []release.Asset, name string) (release.Asset, bool) {
	for _, a := range assets {
		if strings.EqualFold(a.Name, name) {
			return a, true
		}
	}
	return release.Asset{}, false
}
