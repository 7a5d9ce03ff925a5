package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"repoconform/pkg/github"
)

// Config represents the repoconform configuration
type Config struct {
	GitHub      GitHubConfig       `yaml:"github"`
	Preferences github.Preferences `yaml:"preferences"`
	Selection   []SavedRepository  `yaml:"selection,omitempty"`
}

// GitHubConfig represents GitHub-specific configuration
type GitHubConfig struct {
	Token string `yaml:"token,omitempty"`
}

// SavedRepository is a repository remembered from an earlier scan. It seeds
// the interactive selection on later runs and is never written back by a
// scan or apply.
type SavedRepository struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// LoadConfig loads configuration from the default location
func LoadConfig() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	return LoadConfigFromPath(configPath)
}

// LoadConfigFromPath loads configuration from a specific path
func LoadConfigFromPath(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Config{}, nil // Return empty config if file doesn't exist
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveConfig saves configuration to the default location
func (c *Config) SaveConfig() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	return c.SaveConfigToPath(configPath)
}

// SaveConfigToPath saves configuration to a specific path
func (c *Config) SaveConfigToPath(path string) error {
	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".repoconform", "config.yaml"), nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Preferences.IsEmpty() {
		return fmt.Errorf("no preferences configured: run 'repoconform init' to choose the settings to enforce")
	}

	return nil
}
