package asset

import (
	"errors"
	"fmt"
	"sort"

	"github.com/install-release/ir/internal/logging"
	"github.com/install-release/ir/internal/platform"
	"github.com/install-release/ir/internal/release"
)

var (
	// ErrNoReleasesFound means no release qualified: all were prereleases or
	// had no assets.
	ErrNoReleasesFound = errors.New("no releases found")

	// ErrNoSuitableAsset means a release qualified but none of its assets
	// fit this host.
	ErrNoSuitableAsset = errors.New("no suitable asset")
)

// Options tune one selection.
type Options struct {
	// ExtraWords are matched in addition to the host signature, e.g. a
	// user-named tool or the tokens of an explicit filename.
	ExtraWords []string

	// DisableAdjustments turns off score multipliers and enables the
	// exact-words match over candidates.
	DisableAdjustments bool

	// PackageType restricts candidates to one package format ("deb", "rpm",
	// "AppImage"). Empty means no restriction.
	PackageType string

	// MinScore overrides DefaultMinScore when positive.
	MinScore float64

	// AllowPrerelease lets a prerelease be the chosen release.
	AllowPrerelease bool
}

func (o Options) minScore() float64 {
	if o.MinScore > 0 {
		return o.MinScore
	}
	return DefaultMinScore
}

// Selection is the outcome of a successful Select.
type Selection struct {
	Release release.Release
	Asset   release.Asset
	Score   float64
}

// Candidate is a scored asset.
type Candidate struct {
	Asset release.Asset
	Score float64
}

// Selector picks the asset to install from a list of releases.
type Selector struct {
	sig    platform.Signature
	logger logging.Logger
}

// NewSelector creates a Selector for a host signature.
func NewSelector(sig platform.Signature, logger logging.Logger) *Selector {
	return &Selector{sig: sig, logger: logging.OrNop(logger)}
}

// Signature returns the host signature the selector scores against.
func (s *Selector) Signature() platform.Signature {
	return s.sig
}

// Select chooses one asset from releases, which must be ordered newest first.
// repoURL only labels logs and errors.
//
// Only the first release that is not a prerelease and has assets is
// considered; earlier releases are discarded, never merged. A lone
// candidate is returned regardless of score. Otherwise candidates below the
// minimum score are dropped and the best remaining one wins, except that
// with adjustments disabled the best candidate whose filename tokens cover
// every extra word is preferred.
func (s *Selector) Select(releases []release.Release, repoURL string, opts Options) (*Selection, error) {
	rel, ok := firstEligible(releases, opts.AllowPrerelease)
	if !ok {
		return nil, fmt.Errorf("%w for %s", ErrNoReleasesFound, repoURL)
	}

	assets := rel.Assets
	if opts.PackageType != "" {
		assets = filterPackageType(assets, opts.PackageType)
	}
	if len(assets) == 0 {
		return nil, fmt.Errorf("%w for %s %s", ErrNoSuitableAsset, repoURL, rel.TagName)
	}

	scorer := NewScorer(NewWeightTable(s.sig, opts.ExtraWords), opts.DisableAdjustments)
	candidates := Rank(scorer, assets)

	for _, c := range candidates {
		s.logger.Debug("scored asset", "repo", repoURL, "asset", c.Asset.Name, "score", c.Score)
	}

	if len(candidates) == 1 {
		return selection(rel, candidates[0]), nil
	}

	threshold := opts.minScore()
	var qualifying []Candidate
	for _, c := range candidates {
		if c.Score >= threshold {
			qualifying = append(qualifying, c)
		}
	}
	if len(qualifying) == 0 {
		return nil, fmt.Errorf("%w for %s %s (best %q scored %.2f)",
			ErrNoSuitableAsset, repoURL, rel.TagName, candidates[0].Asset.Name, candidates[0].Score)
	}

	if opts.DisableAdjustments && len(opts.ExtraWords) > 0 {
		want := Tokenize(opts.ExtraWords...)
		for _, c := range qualifying {
			if containsAll(Tokenize(c.Asset.Name), want) {
				return selection(rel, c), nil
			}
		}
		s.logger.Debug("no candidate covers all requested words", "repo", repoURL, "words", opts.ExtraWords)
	}

	return selection(rel, qualifying[0]), nil
}

// Rank scores assets and sorts them best first. Ties keep release order.
func Rank(scorer *Scorer, assets []release.Asset) []Candidate {
	candidates := make([]Candidate, 0, len(assets))
	for _, a := range assets {
		candidates = append(candidates, Candidate{Asset: a, Score: scorer.Score(a.Name)})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates
}

func firstEligible(releases []release.Release, allowPrerelease bool) (release.Release, bool) {
	for _, r := range releases {
		if r.Prerelease && !allowPrerelease {
			continue
		}
		if len(r.Assets) == 0 {
			continue
		}
		return r, true
	}
	return release.Release{}, false
}

func filterPackageType(assets []release.Asset, packageType string) []release.Asset {
	var out []release.Asset
	for _, a := range assets {
		if PackageTypeFromFilename(a.Name) == packageType {
			out = append(out, a)
		}
	}
	return out
}

func selection(rel release.Release, c Candidate) *Selection {
	return &Selection{Release: rel, Asset: c.Asset, Score: c.Score}
}

func containsAll(have map[string]struct{}, want map[string]struct{}) bool {
	for w := range want {
		if _, ok := have[w]; !ok {
			return false
		}
	}
	return true
}
