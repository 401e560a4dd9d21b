package service

import (
	"context"
	"fmt"

	"github.com/install-release/ir/internal/logging"
	"github.com/install-release/ir/internal/state"
)

// ToolService manages installed tools by name.
type ToolService struct {
	store    *state.Store
	binaries Placer
	packages Placer
	logger   logging.Logger
}

// NewToolService creates a ToolService. packages may be nil on hosts
// without a package format.
func NewToolService(store *state.Store, binaries, packages Placer, logger logging.Logger) *ToolService {
	return &ToolService{store: store, binaries: binaries, packages: packages, logger: logging.OrNop(logger)}
}

// Hold sets or clears the hold flag of the named tool. Nothing else on the
// record changes.
func (s *ToolService) Hold(name string, hold bool) (state.ToolRecord, error) {
	key, rec, err := s.store.Lookup(name)
	if err != nil {
		return state.ToolRecord{}, err
	}
	if rec.HoldUpdate == hold {
		return rec, nil
	}
	rec.HoldUpdate = hold
	s.store.Set(key, rec)
	if err := s.store.Save(); err != nil {
		return state.ToolRecord{}, err
	}
	s.logger.Info("updated hold", "name", name, "hold", hold)
	return rec, nil
}

// Remove uninstalls the named tool and deletes its record. The record is
// kept if uninstalling fails.
func (s *ToolService) Remove(ctx context.Context, name string) (state.ToolRecord, error) {
	key, rec, err := s.store.Lookup(name)
	if err != nil {
		return state.ToolRecord{}, err
	}

	placer := s.binaries
	if rec.Method() == state.MethodPackage {
		placer = s.packages
	}
	if placer == nil {
		return state.ToolRecord{}, fmt.Errorf("cannot uninstall %s installs on this host", rec.Method())
	}
	if err := placer.Remove(ctx, rec.Name, rec.PackageType); err != nil {
		return state.ToolRecord{}, err
	}

	s.store.Delete(key)
	if err := s.store.Save(); err != nil {
		return state.ToolRecord{}, err
	}
	s.logger.Info("removed", "name", name)
	return rec, nil
}

// List returns installed tools in key order, optionally only held ones.
func (s *ToolService) List(heldOnly bool) []state.ToolRecord {
	var out []state.ToolRecord
	for _, k := range s.store.Keys() {
		rec, _ := s.store.Get(k)
		if heldOnly && !rec.HoldUpdate {
			continue
		}
		out = append(out, rec)
	}
	return out
}
