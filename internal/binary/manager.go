package binary

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/install-release/ir/internal/logging"
)

// Manager downloads, verifies and unpacks release assets.
type Manager struct {
	workRoot   string
	downloader *Downloader
	verifier   *Verifier
	extractor  *Extractor
	keys       *KeyStore
	logger     logging.Logger
	newID      func() string
}

// Config holds configuration for the manager
type Config struct {
	// CacheDir holds per-install work directories under work/.
	CacheDir string
	// KeyDir holds trusted verification keys. Optional.
	KeyDir     string
	Downloader *Downloader
	Logger     logging.Logger
}

// NewManager creates a new manager
func NewManager(cfg Config) (*Manager, error) {
	if cfg.CacheDir == "" {
		return nil, fmt.Errorf("CacheDir is required")
	}
	d := cfg.Downloader
	if d == nil {
		d = NewDownloader()
	}
	return &Manager{
		workRoot:   filepath.Join(cfg.CacheDir, "work"),
		downloader: d,
		verifier:   NewVerifier(),
		extractor:  NewExtractor(),
		keys:       NewKeyStore(cfg.KeyDir),
		logger:     logging.OrNop(cfg.Logger),
		newID:      func() string { return uuid.NewString() },
	}, nil
}

// Materialize downloads req.Asset into a fresh work directory, verifies it
// and, for binary installs, extracts it and locates the executable. The
// caller owns the returned artifact and must call Cleanup.
func (m *Manager) Materialize(ctx context.Context, req Request) (art *Artifact, err error) {
	if req.Asset.DownloadURL == "" {
		return nil, fmt.Errorf("asset %q has no download URL", req.Asset.Name)
	}

	workDir := filepath.Join(m.workRoot, m.newID())
	if err := os.MkdirAll(workDir, 0o700); err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	art = &Artifact{WorkDir: workDir, PackageType: req.PackageType}
	defer func() {
		if err != nil {
			_ = art.Cleanup()
			art = nil
		}
	}()

	dlDir := filepath.Join(workDir, "download")
	art.Download = filepath.Join(dlDir, filepath.Base(req.Asset.Name))
	m.logger.Debug("downloading asset", "asset", req.Asset.Name, "url", req.Asset.DownloadURL)
	if err := m.downloader.DownloadToFile(ctx, req.Asset.DownloadURL, art.Download); err != nil {
		return nil, err
	}

	method, err := m.verify(ctx, req, art.Download, dlDir)
	if err != nil {
		return nil, err
	}
	art.Verified = method

	if req.PackageType != "" {
		art.Executable = art.Download
		return art, nil
	}

	outDir := filepath.Join(workDir, "extract")
	if err := m.extractor.Extract(art.Download, req.Asset.Name, outDir); err != nil {
		return nil, fmt.Errorf("extract %s: %w", req.Asset.Name, err)
	}
	exe, err := FindExecutable(outDir, req.ToolName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", req.Asset.Name, err)
	}
	art.Executable = exe
	return art, nil
}

// verify runs the strongest check available. A signature is only checked
// when the user trusts a key for the tool.
func (m *Manager) verify(ctx context.Context, req Request, file, dlDir string) (VerificationMethod, error) {
	if req.Signature != nil {
		method, checked, err := m.verifySignature(ctx, req, file, dlDir)
		if err != nil || checked {
			return method, err
		}
	}

	if req.Checksum != nil {
		sumsPath := filepath.Join(dlDir, filepath.Base(req.Checksum.Name))
		if err := m.downloader.DownloadToFile(ctx, req.Checksum.DownloadURL, sumsPath); err != nil {
			return VerificationNone, fmt.Errorf("download checksum: %w", err)
		}
		if err := m.verifier.VerifySHA256(file, req.Asset.Name, sumsPath); err != nil {
			return VerificationNone, err
		}
		m.logger.Debug("checksum verified", "asset", req.Asset.Name)
		return VerificationSHA256, nil
	}

	m.logger.Warn("installing unverified asset: release publishes no checksum", "asset", req.Asset.Name)
	return VerificationNone, nil
}

func (m *Manager) verifySignature(ctx context.Context, req Request, file, dlDir string) (VerificationMethod, bool, error) {
	sigPath := filepath.Join(dlDir, filepath.Base(req.Signature.Name))

	switch req.SignatureKind {
	case "minisign":
		pub, ok := m.keys.MinisignKey(req.ToolName)
		if !ok {
			m.logger.Debug("no trusted minisign key", "tool", req.ToolName)
			return VerificationNone, false, nil
		}
		if err := m.downloader.DownloadToFile(ctx, req.Signature.DownloadURL, sigPath); err != nil {
			return VerificationNone, false, fmt.Errorf("download signature: %w", err)
		}
		if err := m.verifier.VerifyMinisign(file, sigPath, pub); err != nil {
			return VerificationNone, true, err
		}
		return VerificationMinisign, true, nil

	case "pgp":
		keyring, ok, err := m.keys.PGPKeyring(req.ToolName)
		if err != nil {
			return VerificationNone, false, err
		}
		if !ok {
			m.logger.Debug("no trusted PGP key", "tool", req.ToolName)
			return VerificationNone, false, nil
		}
		if err := m.downloader.DownloadToFile(ctx, req.Signature.DownloadURL, sigPath); err != nil {
			return VerificationNone, false, fmt.Errorf("download signature: %w", err)
		}
		if err := m.verifier.VerifyPGP(file, sigPath, keyring); err != nil {
			return VerificationNone, true, err
		}
		return VerificationPGP, true, nil

	default:
		return VerificationNone, false, errors.New("unknown signature kind " + req.SignatureKind)
	}
}
