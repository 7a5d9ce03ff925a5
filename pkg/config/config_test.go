package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repoconform/pkg/github"
)

func boolPtr(b bool) *bool {
	return &b
}

func TestLoadConfigFromPath_MissingFileReturnsEmptyConfig(t *testing.T) {
	cfg, err := LoadConfigFromPath(filepath.Join(t.TempDir(), "does-not-exist.yaml"))

	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.True(t, cfg.Preferences.IsEmpty())
	assert.Empty(t, cfg.GitHub.Token)
	assert.Empty(t, cfg.Selection)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	original := &Config{
		GitHub: GitHubConfig{Token: "test-token"},
		Preferences: github.Preferences{
			SquashMerge: boolPtr(true),
			Wiki:        boolPtr(false),
		},
		Selection: []SavedRepository{
			{ID: "node-1", Name: "widgets"},
			{ID: "node-2", Name: "gadgets"},
		},
	}

	require.NoError(t, original.SaveConfigToPath(path))

	loaded, err := LoadConfigFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "test-token", loaded.GitHub.Token)
	require.NotNil(t, loaded.Preferences.SquashMerge)
	assert.True(t, *loaded.Preferences.SquashMerge)
	require.NotNil(t, loaded.Preferences.Wiki)
	assert.False(t, *loaded.Preferences.Wiki)
	assert.Nil(t, loaded.Preferences.AutoMerge, "skipped settings stay undefined")
	assert.Equal(t, original.Selection, loaded.Selection)
}

func TestSaveConfigToPath_FilePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := &Config{GitHub: GitHubConfig{Token: "secret"}}
	require.NoError(t, cfg.SaveConfigToPath(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	// The file holds a token, keep it private
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoadConfigFromPath_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("preferences: [not, a, map]"), 0600))

	_, err := LoadConfigFromPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadConfigFromPath_UndefinedStaysNilNotFalse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("preferences:\n  wiki: false\n")
	require.NoError(t, os.WriteFile(path, data, 0600))

	cfg, err := LoadConfigFromPath(path)
	require.NoError(t, err)

	require.NotNil(t, cfg.Preferences.Wiki)
	assert.False(t, *cfg.Preferences.Wiki)
	assert.Nil(t, cfg.Preferences.Issues, "absence must not read as enforced false")
}

func TestConfig_Validate(t *testing.T) {
	empty := &Config{}
	err := empty.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no preferences configured")

	configured := &Config{
		Preferences: github.Preferences{Wiki: boolPtr(false)},
	}
	assert.NoError(t, configured.Validate())
}

func TestGetConfigPath(t *testing.T) {
	path, err := GetConfigPath()

	require.NoError(t, err)
	assert.Contains(t, path, ".repoconform")
	assert.Equal(t, "config.yaml", filepath.Base(path))
}
