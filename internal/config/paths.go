package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const appDirName = "install_release"

// Environment overrides for every location ir touches. Tests point these at
// temporary directories.
const (
	EnvConfigDir = "IR_CONFIG_DIR"
	EnvCacheDir  = "IR_CACHE_DIR"
	EnvBinDir    = "IR_BIN_DIR"
)

// Paths are the filesystem locations ir reads and writes.
type Paths struct {
	ConfigDir  string
	StateFile  string
	ConfigFile string
	BinDir     string
	CacheDir   string
}

// DefaultPaths resolves locations from the environment and the user's home.
//
//	linux:   ~/.config/install_release/{state,config}.json
//	darwin:  ~/Library/.config/install_release/{state,config}.json
//	binaries: ~/bin
func DefaultPaths() (Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Paths{}, fmt.Errorf("resolve home directory: %w", err)
	}

	configDir := os.Getenv(EnvConfigDir)
	if configDir == "" {
		switch runtime.GOOS {
		case "darwin":
			configDir = filepath.Join(home, "Library", ".config", appDirName)
		case "windows":
			base, err := os.UserConfigDir()
			if err != nil {
				return Paths{}, fmt.Errorf("resolve config directory: %w", err)
			}
			configDir = filepath.Join(base, appDirName)
		default:
			configDir = filepath.Join(home, ".config", appDirName)
		}
	}

	cacheDir := os.Getenv(EnvCacheDir)
	if cacheDir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			base = filepath.Join(configDir, "cache")
		}
		cacheDir = filepath.Join(base, appDirName)
	}

	binDir := os.Getenv(EnvBinDir)
	if binDir == "" {
		binDir = filepath.Join(home, "bin")
	}

	return Paths{
		ConfigDir:  configDir,
		StateFile:  filepath.Join(configDir, "state.json"),
		ConfigFile: filepath.Join(configDir, "config.json"),
		BinDir:     binDir,
		CacheDir:   cacheDir,
	}, nil
}

// InstallDir returns the configured install path, falling back to BinDir.
func (p Paths) InstallDir(cfg *ToolConfig) string {
	if cfg != nil && cfg.Path != "" {
		return expandHome(cfg.Path)
	}
	return p.BinDir
}

func expandHome(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
