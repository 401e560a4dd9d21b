// Package service implements ir's operations on top of the state store:
// installing a tool, planning and applying upgrades, merging an external
// state document, and the hold/remove/list bookkeeping.
//
// Every operation runs on the caller's goroutine except the gather phase of
// Planner.Plan. Collaborators that touch the network or the filesystem are
// interfaces so tests can replace them.
package service

import (
	"context"
	"errors"

	"github.com/install-release/ir/internal/binary"
	"github.com/install-release/ir/internal/release"
	"github.com/install-release/ir/internal/state"
)

// ErrDeclined is returned when the user rejects a confirmation prompt.
// Nothing has been changed when it is returned.
var ErrDeclined = errors.New("declined by user")

// Confirmer asks the user to approve a set of changes.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string, items []string) (bool, error)
}

// AutoConfirm approves everything.
type AutoConfirm struct{}

// Confirm always returns true.
func (AutoConfirm) Confirm(context.Context, string, []string) (bool, error) {
	return true, nil
}

// ProviderFactory resolves a repository URL to its release provider.
// *release.Factory implements it.
type ProviderFactory interface {
	For(repoURL string) (release.Provider, error)
}

// Materializer downloads and unpacks a selected asset.
// *binary.Manager implements it.
type Materializer interface {
	Materialize(ctx context.Context, req binary.Request) (*binary.Artifact, error)
}

// Placer puts a materialized artifact on the system and takes it off again.
// binary.BinPlacer and *binary.PackagePlacer implement it.
type Placer interface {
	Place(ctx context.Context, art *binary.Artifact, name string) (string, error)
	Remove(ctx context.Context, name, packageType string) error
}

// Installer installs one tool. *InstallService implements it; the planner
// and merger go through it so every install follows the same path.
type Installer interface {
	Install(ctx context.Context, req InstallRequest) (*state.ToolRecord, error)
}

// Failure is a per-tool error that did not stop the batch.
type Failure struct {
	Key state.Key
	Err error
}

func (f Failure) Error() string {
	return f.Key.Name + ": " + f.Err.Error()
}
