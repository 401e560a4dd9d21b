// Package testutil provides helpers for running ir tests in isolation.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Env holds the directories created by SetupTestEnv.
type Env struct {
	Root      string
	ConfigDir string
	CacheDir  string
	BinDir    string
}

// StateFile is where the store lives inside the test environment.
func (e Env) StateFile() string { return filepath.Join(e.ConfigDir, "state.json") }

// ConfigFile is where settings live inside the test environment.
func (e Env) ConfigFile() string { return filepath.Join(e.ConfigDir, "config.json") }

// SetupTestEnv points every ir location at a fresh temporary directory and
// clears token variables so tests never read the user's real setup or
// credentials. Cleanup is handled by t.TempDir.
func SetupTestEnv(t *testing.T) Env {
	t.Helper()

	tmpDir := t.TempDir()
	env := Env{
		Root:      tmpDir,
		ConfigDir: filepath.Join(tmpDir, "config"),
		CacheDir:  filepath.Join(tmpDir, "cache"),
		BinDir:    filepath.Join(tmpDir, "bin"),
	}

	t.Setenv("IR_CONFIG_DIR", env.ConfigDir)
	t.Setenv("IR_CACHE_DIR", env.CacheDir)
	t.Setenv("IR_BIN_DIR", env.BinDir)

	for _, k := range []string{"IR_TOKEN", "GITHUB_TOKEN", "IR_GITLAB_TOKEN", "GITLAB_TOKEN", "IR_PATH", "IR_PRE_RELEASE"} {
		t.Setenv(k, "")
	}

	for _, dir := range []string{env.ConfigDir, env.CacheDir, env.BinDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatalf("failed to create test directory %s: %v", dir, err)
		}
	}
	return env
}
