package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/viper"

	"github.com/install-release/ir/internal/fileutil"
)

// Setting keys as written in config.json.
const (
	KeyToken       = "token"
	KeyGitlabToken = "gitlab_token"
	KeyPath        = "path"
	KeyPreRelease  = "pre_release"
)

// ToolConfig holds user settings persisted in config.json.
type ToolConfig struct {
	Token       string `json:"token,omitempty"`
	GitlabToken string `json:"gitlab_token,omitempty"`
	Path        string `json:"path,omitempty"`
	PreRelease  bool   `json:"pre_release,omitempty"`
}

// newViper builds the settings reader with environment bindings.
// Environment values win over the file.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("json")

	v.SetDefault(KeyToken, "")
	v.SetDefault(KeyGitlabToken, "")
	v.SetDefault(KeyPath, "")
	v.SetDefault(KeyPreRelease, false)

	_ = v.BindEnv(KeyToken, "IR_TOKEN", "GITHUB_TOKEN")
	_ = v.BindEnv(KeyGitlabToken, "IR_GITLAB_TOKEN", "GITLAB_TOKEN")
	_ = v.BindEnv(KeyPath, "IR_PATH")
	_ = v.BindEnv(KeyPreRelease, "IR_PRE_RELEASE")
	return v
}

// Load reads settings from path. A missing or empty file yields defaults.
// Both the flat layout and the older {"config": {...}} wrapper are accepted.
func Load(path string) (*ToolConfig, error) {
	v := newViper()

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if len(bytes.TrimSpace(data)) > 0 {
		if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
			return nil, &ParseError{Message: "invalid config file " + path, Detail: err.Error()}
		}
		if inner := v.GetStringMap("config"); len(inner) > 0 {
			if err := v.MergeConfigMap(inner); err != nil {
				return nil, fmt.Errorf("merge wrapped config: %w", err)
			}
		}
	}

	return &ToolConfig{
		Token:       v.GetString(KeyToken),
		GitlabToken: v.GetString(KeyGitlabToken),
		Path:        v.GetString(KeyPath),
		PreRelease:  v.GetBool(KeyPreRelease),
	}, nil
}

// Save writes cfg to path in the flat layout. The file holds tokens, so it
// is only readable by the owner.
func Save(path string, cfg *ToolConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// ReadFile loads only what is stored in the file, ignoring the environment.
// It is used when updating settings so environment tokens are never
// written to disk.
func ReadFile(path string) (*ToolConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &ToolConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return &ToolConfig{}, nil
	}

	var wrapped struct {
		Config *ToolConfig `json:"config"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Config != nil {
		return wrapped.Config, nil
	}

	var cfg ToolConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Message: "invalid config file " + path, Detail: err.Error()}
	}
	return &cfg, nil
}

// Masked returns a copy of cfg safe for display.
func (c ToolConfig) Masked() ToolConfig {
	c.Token = mask(c.Token)
	c.GitlabToken = mask(c.GitlabToken)
	return c
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}
