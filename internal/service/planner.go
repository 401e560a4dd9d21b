package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/mod/semver"
	"golang.org/x/sync/errgroup"

	"github.com/install-release/ir/internal/asset"
	"github.com/install-release/ir/internal/logging"
	"github.com/install-release/ir/internal/release"
	"github.com/install-release/ir/internal/state"
)

// DefaultWidth is the number of release lookups run at once.
const DefaultWidth = 20

// PlanRequest controls one upgrade check.
type PlanRequest struct {
	// Force marks every tool upgradable without comparing publish times.
	// Held tools are still skipped.
	Force bool
	// SkipPrompt approves the plan without asking.
	SkipPrompt bool
}

// Upgrade is one tool with a release to move to.
type Upgrade struct {
	Key     state.Key
	Current state.ToolRecord
	Latest  release.Release
	Forced  bool // no newer release; included because of PlanRequest.Force
}

// Plan is the outcome of the gather and confirm phases.
type Plan struct {
	Upgrades  []Upgrade // in enumeration order
	Held      []state.Key
	Failures  []Failure
	Confirmed bool
}

// ApplyResult reports what Apply changed.
type ApplyResult struct {
	Upgraded []state.ToolRecord
	Failures []Failure
}

// PlannerDeps are the collaborators of a Planner.
type PlannerDeps struct {
	Store     *state.Store
	Providers ProviderFactory
	Installer Installer
	Confirmer Confirmer
	Logger    logging.Logger

	Width      int  // defaults to DefaultWidth
	PreRelease bool // include prereleases when looking for the latest
}

// Planner finds installed tools with newer releases and reinstalls them.
type Planner struct {
	deps   PlannerDeps
	logger logging.Logger
}

// NewPlanner creates a Planner.
func NewPlanner(deps PlannerDeps) *Planner {
	if deps.Width <= 0 {
		deps.Width = DefaultWidth
	}
	if deps.Confirmer == nil {
		deps.Confirmer = AutoConfirm{}
	}
	return &Planner{deps: deps, logger: logging.OrNop(deps.Logger)}
}

// gathered is the result slot of one lookup.
type gathered struct {
	upgrade *Upgrade
	held    bool
	err     error
}

// Plan checks every stored tool concurrently, waits for all checks, then
// asks for confirmation of the whole upgradable set. A lookup failure for
// one tool is recorded in Plan.Failures and never stops the others.
// A declined plan has Confirmed set to false and must not be applied.
func (p *Planner) Plan(ctx context.Context, req PlanRequest) (*Plan, error) {
	keys := p.deps.Store.Keys()
	records := make([]state.ToolRecord, len(keys))
	for i, k := range keys {
		records[i], _ = p.deps.Store.Get(k)
	}

	results := make([]gathered, len(keys))
	var g errgroup.Group
	g.SetLimit(p.deps.Width)
	for i := range keys {
		g.Go(func() error {
			results[i] = p.check(ctx, keys[i], records[i], req.Force)
			return nil
		})
	}
	_ = g.Wait()

	plan := &Plan{}
	for i, r := range results {
		switch {
		case r.err != nil:
			p.logger.Warn("upgrade check failed", "name", keys[i].Name, "err", r.err)
			plan.Failures = append(plan.Failures, Failure{Key: keys[i], Err: r.err})
		case r.held:
			plan.Held = append(plan.Held, keys[i])
		case r.upgrade != nil:
			plan.Upgrades = append(plan.Upgrades, *r.upgrade)
		}
	}

	if len(plan.Upgrades) == 0 {
		plan.Confirmed = true
		return plan, nil
	}
	if req.SkipPrompt {
		plan.Confirmed = true
		return plan, nil
	}

	items := make([]string, 0, len(plan.Upgrades))
	for _, u := range plan.Upgrades {
		items = append(items, fmt.Sprintf("%s  %s => %s", u.Key.Name, u.Current.TagName, u.Latest.TagName))
	}
	ok, err := p.deps.Confirmer.Confirm(ctx, fmt.Sprintf("Upgrade %d tools?", len(plan.Upgrades)), items)
	if err != nil {
		return nil, err
	}
	plan.Confirmed = ok
	return plan, nil
}

// check runs on a worker. It only reads rec and never touches the store.
func (p *Planner) check(ctx context.Context, key state.Key, rec state.ToolRecord, force bool) gathered {
	if rec.HoldUpdate {
		p.logger.Debug("skipping held tool", "name", key.Name)
		return gathered{held: true}
	}

	provider, err := p.deps.Providers.For(key.URL)
	if err != nil {
		return gathered{err: err}
	}
	releases, err := provider.Releases(ctx, "", p.deps.PreRelease)
	if err != nil {
		return gathered{err: fmt.Errorf("fetch releases: %w", err)}
	}
	latest, ok := latestRelease(releases, p.deps.PreRelease)
	if !ok {
		return gathered{err: fmt.Errorf("%w for %s", asset.ErrNoReleasesFound, key.URL)}
	}

	remoteAt, err := release.ParsePublished(latest.PublishedAt)
	if err != nil {
		return gathered{err: fmt.Errorf("latest release %s: %w", latest.TagName, err)}
	}
	localAt, err := release.ParsePublished(rec.PublishedAt)
	if err != nil {
		return gathered{err: fmt.Errorf("installed release %s: %w", rec.TagName, err)}
	}

	newer := remoteAt.After(localAt)
	if !newer && !force {
		p.logger.Debug("up to date", "name", key.Name, "tag", rec.TagName)
		return gathered{}
	}
	if newer {
		p.warnDowngrade(key, rec.TagName, latest.TagName, localAt, remoteAt)
	}
	return gathered{upgrade: &Upgrade{
		Key:     key,
		Current: rec,
		Latest:  latest,
		Forced:  !newer,
	}}
}

// warnDowngrade flags a newer release whose tag sorts below the installed
// one. The publish time still decides.
func (p *Planner) warnDowngrade(key state.Key, from, to string, fromAt, toAt time.Time) {
	cur, next := canonicalTag(from), canonicalTag(to)
	if cur == "" || next == "" {
		return
	}
	if semver.Compare(next, cur) < 0 {
		p.logger.Warn("newer release has a lower version",
			"name", key.Name, "installed", from, "latest", to,
			"installed_at", fromAt.Format(time.RFC3339), "latest_at", toAt.Format(time.RFC3339))
	}
}

// canonicalTag returns tag as a semantic version, or "" if it is not one.
func canonicalTag(tag string) string {
	if !strings.HasPrefix(tag, "v") {
		tag = "v" + tag
	}
	if !semver.IsValid(tag) {
		return ""
	}
	return tag
}

func latestRelease(releases []release.Release, includePrerelease bool) (release.Release, bool) {
	for _, r := range releases {
		if r.Prerelease && !includePrerelease {
			continue
		}
		if len(r.Assets) == 0 {
			continue
		}
		return r, true
	}
	return release.Release{}, false
}

// Apply reinstalls the planned tools one at a time, in plan order. A tool
// that fails to reinstall keeps its old record; the rest continue. The hold
// flag and custom words of each record carry over.
func (p *Planner) Apply(ctx context.Context, plan *Plan) (*ApplyResult, error) {
	if plan == nil || !plan.Confirmed {
		return nil, ErrDeclined
	}

	res := &ApplyResult{}
	for _, u := range plan.Upgrades {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		p.logger.Info("upgrading", "name", u.Key.Name, "from", u.Current.TagName, "to", u.Latest.TagName)
		rec, err := p.deps.Installer.Install(ctx, InstallRequest{
			URL:      u.Key.URL,
			Name:     u.Key.Name,
			Tag:      u.Latest.TagName,
			Words:    u.Current.CustomReleaseWords,
			Package:  u.Current.Method() == state.MethodPackage,
			Hold:     u.Current.HoldUpdate,
			Approve:  true,
			Releases: []release.Release{u.Latest},
		})
		if err != nil {
			p.logger.Error("upgrade failed", "name", u.Key.Name, "err", err)
			res.Failures = append(res.Failures, Failure{Key: u.Key, Err: err})
			continue
		}
		res.Upgraded = append(res.Upgraded, *rec)
	}
	return res, nil
}
