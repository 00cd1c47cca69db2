package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/grovetools/arbor/errors"
	"github.com/grovetools/arbor/metadata"
)

// AgentConfig is the process-wide AI-agent configuration document. It lives
// at a well-known location (see Path) rather than per worktree.
type AgentConfig struct {
	Enabled          bool   `yaml:"enabled"`
	Provider         string `yaml:"provider"`
	LastUsedProvider string `yaml:"last_used_provider,omitempty"`
	PromptTemplate   string `yaml:"prompt_template,omitempty"`
	PermissionMode   bool   `yaml:"permission_mode"`

	Extra map[string]interface{} `yaml:",inline"`
}

// Default returns the configuration used when no document exists.
func Default() *AgentConfig {
	return &AgentConfig{
		Enabled:  true,
		Provider: metadata.ProviderClaude,
	}
}

// ActiveProvider returns the configured provider, defaulting to claude.
func (c *AgentConfig) ActiveProvider() string {
	if c.Provider == metadata.ProviderCursor {
		return metadata.ProviderCursor
	}
	return metadata.ProviderClaude
}

// Path returns the config document location. ARBOR_CONFIG overrides;
// otherwise the XDG config directory is used, falling back to ~/.config.
func Path() string {
	if override := os.Getenv("ARBOR_CONFIG"); override != "" {
		return override
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "arbor", "agent.yml")
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".config", "arbor", "agent.yml")
	}

	return ""
}

// Load reads the global config. An absent document yields the defaults.
// A document carrying the deprecated execution_mode field is migrated to
// permission_mode and rewritten once.
func Load() (*AgentConfig, error) {
	path := Path()
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read agent config").
			WithDetail("path", path)
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse agent config").
			WithDetail("path", path)
	}
	if raw == nil {
		raw = make(map[string]interface{})
	}

	migrated := migrateExecutionMode(raw)

	if migrated {
		data, err = yaml.Marshal(raw)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to re-serialize agent config")
		}
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to decode agent config").
			WithDetail("path", path)
	}

	if migrated {
		if err := cfg.Save(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Save writes the config document, creating its directory if needed.
func (c *AgentConfig) Save() error {
	path := Path()
	if path == "" {
		return errors.ConfigInvalid("cannot determine agent config path")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to create config directory")
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to serialize agent config")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to write agent config").
			WithDetail("path", path)
	}

	return nil
}

// migrateExecutionMode rewrites the deprecated execution_mode field into
// permission_mode. Returns true when the document was modified.
func migrateExecutionMode(raw map[string]interface{}) bool {
	mode, ok := raw["execution_mode"]
	if !ok {
		return false
	}
	delete(raw, "execution_mode")

	if _, exists := raw["permission_mode"]; exists {
		return true
	}

	switch v := mode.(type) {
	case bool:
		raw["permission_mode"] = v
	case string:
		raw["permission_mode"] = v == "dangerous" || v == "skip-permissions"
	default:
		raw["permission_mode"] = false
	}

	return true
}
