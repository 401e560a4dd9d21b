package binary

import (
	"errors"
	"fmt"
	"os"

	"github.com/install-release/ir/internal/release"
)

var (
	// ErrNoExecutable is returned when an extracted asset holds no program.
	ErrNoExecutable = errors.New("no executable found in asset")

	// ErrAmbiguousExecutable is returned when several programs were found
	// and none matches the tool name.
	ErrAmbiguousExecutable = errors.New("multiple executables found in asset")

	// ErrVerificationFailed wraps every checksum or signature mismatch.
	ErrVerificationFailed = errors.New("verification failed")
)

// VerificationMethod says how a download was verified.
type VerificationMethod int

const (
	VerificationNone VerificationMethod = iota
	VerificationSHA256
	VerificationPGP
	VerificationMinisign
)

func (v VerificationMethod) String() string {
	switch v {
	case VerificationSHA256:
		return "SHA256"
	case VerificationPGP:
		return "PGP"
	case VerificationMinisign:
		return "minisign"
	case VerificationNone:
		return "none"
	default:
		return "unknown"
	}
}

// Request describes one asset to materialize.
type Request struct {
	// ToolName is the name the executable will be installed as. It breaks
	// ties when an archive holds several programs.
	ToolName string
	Asset    release.Asset

	// Optional sibling assets used for verification.
	Checksum      *release.Asset
	Signature     *release.Asset
	SignatureKind string // "pgp" or "minisign"

	// PackageType is set for package installs; the asset is then kept as
	// downloaded instead of being extracted.
	PackageType string
}

// Artifact is a downloaded, verified and unpacked asset.
type Artifact struct {
	WorkDir     string
	Download    string // path of the downloaded asset
	Executable  string // program to place, or the package file
	PackageType string
	Verified    VerificationMethod
}

// Cleanup removes the artifact's work directory.
func (a *Artifact) Cleanup() error {
	if a == nil || a.WorkDir == "" {
		return nil
	}
	if err := os.RemoveAll(a.WorkDir); err != nil {
		return fmt.Errorf("remove work dir: %w", err)
	}
	return nil
}
