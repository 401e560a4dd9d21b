package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/install-release/ir/internal/logging"
	"github.com/install-release/ir/internal/state"
)

// MergeCandidate is a remote record staged for installation.
type MergeCandidate struct {
	Key      state.Key
	Record   state.ToolRecord
	LocalTag string // tag installed now, "" when the tool is new
}

// MergeRequest describes a merge of an external state document.
type MergeRequest struct {
	Remote state.Document
	// Override reinstalls tools present locally at a different tag.
	Override   bool
	SkipPrompt bool
}

// MergeResult reports what Merge installed.
type MergeResult struct {
	Candidates []MergeCandidate
	Installed  []state.ToolRecord
	Failures   []Failure
}

// Merger installs the tools of an external state document that are missing
// locally. It never writes the store itself; every install goes through the
// Installer.
type Merger struct {
	store     *state.Store
	installer Installer
	confirmer Confirmer
	logger    logging.Logger
}

// NewMerger creates a Merger. A nil confirmer approves everything.
func NewMerger(store *state.Store, installer Installer, confirmer Confirmer, logger logging.Logger) *Merger {
	if confirmer == nil {
		confirmer = AutoConfirm{}
	}
	return &Merger{store: store, installer: installer, confirmer: confirmer, logger: logging.OrNop(logger)}
}

// Candidates returns the remote records to install, sorted by key. A key
// present locally is skipped when its tag matches or override is false.
// Keys that do not split into url#name are skipped with a warning.
func (m *Merger) Candidates(local, remote state.Document, override bool) []MergeCandidate {
	raw := make([]string, 0, len(remote))
	for k := range remote {
		raw = append(raw, k)
	}
	sort.Strings(raw)

	var out []MergeCandidate
	for _, k := range raw {
		key, err := state.ParseKey(k)
		if err != nil {
			m.logger.Warn("skipping remote entry", "key", k, "err", err)
			continue
		}
		rec := remote[k]
		if cur, ok := local[k]; ok && (cur.TagName == rec.TagName || !override) {
			m.logger.Debug("already installed", "name", key.Name, "tag", cur.TagName)
			continue
		}
		rec.URL, rec.Name = key.URL, key.Name
		out = append(out, MergeCandidate{Key: key, Record: rec, LocalTag: local[k].TagName})
	}
	return out
}

// Merge computes the candidates, confirms them as one set and installs them
// one at a time. A failed install is recorded and the rest continue.
func (m *Merger) Merge(ctx context.Context, req MergeRequest) (*MergeResult, error) {
	res := &MergeResult{Candidates: m.Candidates(m.store.All(), req.Remote, req.Override)}
	if len(res.Candidates) == 0 {
		return res, nil
	}

	if !req.SkipPrompt {
		items := make([]string, 0, len(res.Candidates))
		for _, c := range res.Candidates {
			if c.LocalTag != "" {
				items = append(items, fmt.Sprintf("%s  %s => %s", c.Key.Name, c.LocalTag, c.Record.TagName))
			} else {
				items = append(items, fmt.Sprintf("%s  %s (new)", c.Key.Name, c.Record.TagName))
			}
		}
		ok, err := m.confirmer.Confirm(ctx, fmt.Sprintf("Install %d tools?", len(items)), items)
		if err != nil {
			return nil, err
		}
		if !ok {
			return res, ErrDeclined
		}
	}

	for _, c := range res.Candidates {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		rec, err := m.installer.Install(ctx, InstallRequest{
			URL:     c.Key.URL,
			Name:    c.Key.Name,
			Tag:     c.Record.TagName,
			Words:   c.Record.CustomReleaseWords,
			Package: c.Record.Method() == state.MethodPackage,
			Hold:    c.Record.HoldUpdate,
			Approve: true,
		})
		if err != nil {
			m.logger.Error("install failed", "name", c.Key.Name, "err", err)
			res.Failures = append(res.Failures, Failure{Key: c.Key, Err: err})
			continue
		}
		res.Installed = append(res.Installed, *rec)
	}
	return res, nil
}
