package main

import (
	"bufio"
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/install-release/ir/internal/asset"
	"github.com/install-release/ir/internal/binary"
	"github.com/install-release/ir/internal/config"
	"github.com/install-release/ir/internal/logging"
	"github.com/install-release/ir/internal/platform"
	"github.com/install-release/ir/internal/release"
	"github.com/install-release/ir/internal/remote"
	"github.com/install-release/ir/internal/service"
	"github.com/install-release/ir/internal/state"
)

// app is everything a command needs, built once per process and handed to
// every subcommand.
type app struct {
	paths    config.Paths
	settings *config.ToolConfig
	logger   *log.Logger
	store    *state.Store

	info        *platform.Info
	sig         platform.Signature
	packageType string

	confirmer service.Confirmer
	installer *service.InstallService
	planner   *service.Planner
	merger    *service.Merger
	tools     *service.ToolService
	parser    *config.Parser
	fetcher   *remote.Fetcher
}

func newApp(ctx context.Context, o *options) (*app, error) {
	logger := logging.New(o.errOut, o.level())

	paths, err := config.DefaultPaths()
	if err != nil {
		return nil, err
	}
	settings, err := config.Load(paths.ConfigFile)
	if err != nil {
		return nil, err
	}
	store, err := state.Open(paths.StateFile, state.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	detector := o.detector
	if detector == nil {
		detector = platform.NewDetector()
	}
	prober := o.prober
	if prober == nil {
		prober = platform.NewLddProber()
	}
	info, err := detector.Detect(ctx)
	if err != nil {
		return nil, fmt.Errorf("detect platform: %w", err)
	}
	sig := platform.NewSignature(ctx, info, prober, logger)

	providers := o.providers
	if providers == nil {
		providers = &release.Factory{GitHubToken: settings.Token, GitLabToken: settings.GitlabToken}
	}

	manager, err := binary.NewManager(binary.Config{
		CacheDir: paths.CacheDir,
		KeyDir:   filepath.Join(paths.ConfigDir, "keys"),
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	installDir := paths.InstallDir(settings)
	binaries := binary.BinPlacer{Dir: installDir}
	packageType := platform.PreferredPackageType(info)
	var packages service.Placer
	if packageType != "" {
		packages = binary.NewPackagePlacer(installDir)
	}

	confirmer := &promptConfirmer{in: bufio.NewReader(o.in), out: o.out}
	installer := service.NewInstallService(service.InstallDeps{
		Store:        store,
		Providers:    providers,
		Selector:     asset.NewSelector(sig, logger),
		Materializer: manager,
		Binaries:     binaries,
		Packages:     packages,
		Confirmer:    confirmer,
		Logger:       logger,
		PackageType:  packageType,
		PreRelease:   settings.PreRelease,
	})

	planner := service.NewPlanner(service.PlannerDeps{
		Store:      store,
		Providers:  providers,
		Installer:  installer,
		Confirmer:  confirmer,
		Logger:     logger,
		PreRelease: settings.PreRelease,
	})

	return &app{
		paths:       paths,
		settings:    settings,
		logger:      logger,
		store:       store,
		info:        info,
		sig:         sig,
		packageType: packageType,
		confirmer:   confirmer,
		installer:   installer,
		planner:     planner,
		merger:      service.NewMerger(store, installer, confirmer, logger),
		tools:       service.NewToolService(store, binaries, packages, logger),
		parser:      config.NewParser(detector, prober, logger),
		fetcher:     remote.NewFetcher(remote.WithGitToken(settings.Token), remote.WithLogger(logger)),
	}, nil
}
