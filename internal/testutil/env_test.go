package testutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/install-release/ir/internal/testutil"
)

func TestSetupTestEnv(t *testing.T) {
	t.Setenv("IR_TOKEN", "should-be-cleared")
	env := testutil.SetupTestEnv(t)

	vars := map[string]string{
		"IR_CONFIG_DIR": env.ConfigDir,
		"IR_CACHE_DIR":  env.CacheDir,
		"IR_BIN_DIR":    env.BinDir,
	}
	for name, want := range vars {
		if got := os.Getenv(name); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
		if _, err := os.Stat(want); os.IsNotExist(err) {
			t.Errorf("directory %s does not exist", want)
		}
		if !filepath.IsAbs(want) {
			t.Errorf("path %s is not absolute", want)
		}
	}

	if got := os.Getenv("IR_TOKEN"); got != "" {
		t.Errorf("IR_TOKEN = %q, want cleared", got)
	}
	if got, want := env.StateFile(), filepath.Join(env.ConfigDir, "state.json"); got != want {
		t.Errorf("StateFile() = %q, want %q", got, want)
	}
}

func TestSetupTestEnv_Isolation(t *testing.T) {
	dir1 := testutil.SetupTestEnv(t).ConfigDir

	t.Run("subtest", func(t *testing.T) {
		dir2 := testutil.SetupTestEnv(t).ConfigDir
		if dir1 == dir2 {
			t.Error("expected different temp directories for different test contexts")
		}
	})
}
