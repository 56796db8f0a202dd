// Package config loads application configuration from TOML.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the editor settings.
type Config struct {
	// HistoryDepth caps the undo stack.
	HistoryDepth int `toml:"history_depth"`
	// AutosaveSeconds is the dirty-page save interval for the host. Zero
	// disables autosave.
	AutosaveSeconds int `toml:"autosave_seconds"`
	// GenerationModel names the model the generation adapter requests.
	GenerationModel string `toml:"generation_model"`
}

// Load reads the config file from the standard location, falling back to
// defaults when it is absent.
func Load() (*Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return defaultConfig(), nil
	}
	return LoadFromFile(path)
}

// LoadFromFile loads config from a specific file.
func LoadFromFile(filePath string) (*Config, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return defaultConfig(), nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	d := defaultConfig()
	if c.HistoryDepth <= 0 {
		c.HistoryDepth = d.HistoryDepth
	}
	if c.AutosaveSeconds < 0 {
		c.AutosaveSeconds = d.AutosaveSeconds
	}
	if c.GenerationModel == "" {
		c.GenerationModel = d.GenerationModel
	}
}

func defaultConfig() *Config {
	return &Config{
		HistoryDepth:    100,
		AutosaveSeconds: 5,
		GenerationModel: "claude-sonnet-4-5",
	}
}

func getConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "tessella", "config.toml"), nil
}

// Save persists the configuration to the standard location.
func (c *Config) Save() error {
	path, err := getConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
