package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/install-release/ir/internal/asset"
	"github.com/install-release/ir/internal/binary"
	"github.com/install-release/ir/internal/logging"
	"github.com/install-release/ir/internal/release"
	"github.com/install-release/ir/internal/state"
)

// ErrPackagesUnsupported is returned for package installs on a host that
// has no package format.
var ErrPackagesUnsupported = errors.New("package installs are not supported on this host")

// InstallRequest describes one install.
type InstallRequest struct {
	URL string
	Tag string // empty for the latest release

	// Name is the installed tool name. It defaults to the repository name;
	// a name that differs from it is also matched against asset names.
	Name string

	// AssetName pins an asset filename. Its tokens must all appear in the
	// chosen asset and score adjustments are disabled.
	AssetName string

	// Words are extra words matched against asset names. They are kept on
	// the record and reused on upgrade.
	Words []string

	Package bool // install the host's native package instead of a binary
	Hold    bool // record the tool as held
	Approve bool // skip the confirmation prompt

	// Releases, when set, are used instead of asking the provider.
	Releases []release.Release
}

// InstallDeps are the collaborators of an InstallService.
type InstallDeps struct {
	Store        *state.Store
	Providers    ProviderFactory
	Selector     *asset.Selector
	Materializer Materializer
	Binaries     Placer
	Packages     Placer
	Confirmer    Confirmer
	Clock        Clock
	Logger       logging.Logger

	// PackageType is the host's native package format, "" when none.
	PackageType string
	// PreRelease includes prereleases when listing releases.
	PreRelease bool
}

// InstallService selects, downloads and installs release assets and
// records the result.
type InstallService struct {
	deps   InstallDeps
	logger logging.Logger
}

// NewInstallService creates an InstallService.
func NewInstallService(deps InstallDeps) *InstallService {
	if deps.Confirmer == nil {
		deps.Confirmer = AutoConfirm{}
	}
	if deps.Clock == nil {
		deps.Clock = RealClock{}
	}
	return &InstallService{deps: deps, logger: logging.OrNop(deps.Logger)}
}

// Install installs the tool described by req and saves its record.
// Every failure before the final save leaves the store untouched.
func (s *InstallService) Install(ctx context.Context, req InstallRequest) (*state.ToolRecord, error) {
	name := req.Name
	if name == "" {
		name = release.RepoName(req.URL)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: %s", release.ErrUnsupportedRepo, req.URL)
	}
	key := state.NewKey(req.URL, name)

	var provider release.Provider
	releases := req.Releases
	if releases == nil {
		p, err := s.deps.Providers.For(req.URL)
		if err != nil {
			return nil, err
		}
		provider = p
		releases, err = p.Releases(ctx, req.Tag, s.deps.PreRelease)
		if err != nil {
			return nil, fmt.Errorf("fetch releases for %s: %w", req.URL, err)
		}
	}

	opts, err := s.selectOptions(req, name)
	if err != nil {
		return nil, err
	}
	sel, err := s.deps.Selector.Select(releases, req.URL, opts)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("selected asset", "key", key, "asset", sel.Asset.Name, "score", sel.Score)

	if !req.Approve {
		items := append(s.banner(ctx, provider), describeSelection(sel))
		ok, err := s.deps.Confirmer.Confirm(ctx, fmt.Sprintf("Install %s?", name), items)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrDeclined
		}
	}

	method := state.MethodBinary
	placer := s.deps.Binaries
	if opts.PackageType != "" {
		method = state.MethodPackage
		placer = s.deps.Packages
	}
	if placer == nil {
		return nil, fmt.Errorf("no installer configured for %s installs", method)
	}

	art, err := s.deps.Materializer.Materialize(ctx, s.materializeRequest(sel, name, opts.PackageType))
	if err != nil {
		return nil, fmt.Errorf("materialize %s: %w", sel.Asset.Name, err)
	}
	defer func() {
		if cerr := art.Cleanup(); cerr != nil {
			s.logger.Warn("failed to clean up work directory", "dir", art.WorkDir, "err", cerr)
		}
	}()
	if art.Verified == binary.VerificationNone {
		s.logger.Warn("asset was not verified", "asset", sel.Asset.Name)
	}

	dest, err := placer.Place(ctx, art, name)
	if err != nil {
		return nil, err
	}
	s.logger.Info("installed", "name", name, "tag", sel.Release.TagName, "path", dest)

	rec := state.ToolRecord{
		TagName:            sel.Release.TagName,
		Prerelease:         sel.Release.Prerelease,
		PublishedAt:        sel.Release.PublishedAt,
		Asset:              sel.Asset,
		HoldUpdate:         req.Hold,
		InstallMethod:      method,
		PackageType:        opts.PackageType,
		CustomReleaseWords: req.Words,
	}
	if _, err := release.ParsePublished(rec.PublishedAt); err != nil {
		s.logger.Warn("release has no usable publish time, recording install time", "tag", rec.TagName, "published_at", rec.PublishedAt)
		rec.PublishedAt = s.deps.Clock.Now().UTC().Format(time.RFC3339)
	}
	s.deps.Store.Set(key, rec)
	if err := s.deps.Store.Save(); err != nil {
		return nil, err
	}
	saved, _ := s.deps.Store.Get(key)
	return &saved, nil
}

func (s *InstallService) selectOptions(req InstallRequest, name string) (asset.Options, error) {
	opts := asset.Options{AllowPrerelease: s.deps.PreRelease}
	opts.ExtraWords = append(opts.ExtraWords, req.Words...)
	if name != release.RepoName(req.URL) {
		opts.ExtraWords = append(opts.ExtraWords, name)
	}
	if req.AssetName != "" {
		opts.ExtraWords = append(opts.ExtraWords, asset.TokenList(req.AssetName)...)
		opts.DisableAdjustments = true
	}
	if req.Package {
		if s.deps.PackageType == "" {
			return opts, ErrPackagesUnsupported
		}
		opts.PackageType = s.deps.PackageType
	}
	return opts, nil
}

func (s *InstallService) materializeRequest(sel *asset.Selection, name, packageType string) binary.Request {
	req := binary.Request{ToolName: name, Asset: sel.Asset, PackageType: packageType}
	if sum, ok := asset.ChecksumAsset(sel.Release.Assets, sel.Asset.Name); ok {
		req.Checksum = &sum
	}
	if sig, kind, ok := asset.SignatureAsset(sel.Release.Assets, sel.Asset.Name); ok {
		req.Signature = &sig
		req.SignatureKind = kind
	}
	return req
}

// banner describes the repository. Failures only cost the banner.
func (s *InstallService) banner(ctx context.Context, p release.Provider) []string {
	if p == nil {
		return nil
	}
	info, err := p.Info(ctx)
	if err != nil || info == nil {
		s.logger.Debug("repository info unavailable", "err", err)
		return nil
	}
	lines := []string{fmt.Sprintf("Repo: %s  Stars: %d  Language: %s", info.FullName, info.Stars, info.Language)}
	if info.Description != "" {
		lines = append(lines, info.Description)
	}
	return lines
}

func describeSelection(sel *asset.Selection) string {
	return fmt.Sprintf("%s  %s  %.2f MB  %d downloads",
		sel.Release.TagName, sel.Asset.Name, sel.Asset.SizeMB(), sel.Asset.DownloadCount)
}
