package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 3, cfg.Classifier.MaxClarificationRounds)
	assert.Equal(t, 0.3, cfg.Classifier.MinConfidence)
	assert.Equal(t, 50, cfg.Store.HistoryLimit)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Classifier, cfg.Classifier)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "december.yaml")
	body := "classifier:\n  max_clarification_rounds: 5\nstore:\n  database_path: /tmp/x.db\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Classifier.MaxClarificationRounds)
	assert.Equal(t, "/tmp/x.db", cfg.Store.DatabasePath)
	// Untouched fields keep defaults.
	assert.Equal(t, 0.3, cfg.Classifier.MinConfidence)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DECEMBER_DB", "/tmp/env.db")
	t.Setenv("DECEMBER_LOG_LEVEL", "debug")

	path := filepath.Join(t.TempDir(), "december.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: december\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/env.db", cfg.Store.DatabasePath)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Classifier.MaxClarificationRounds = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Classifier.MinConfidence = 1.5
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Store.DatabasePath = ""
	assert.Error(t, cfg.Validate())
}

func TestGetLoadTimeout(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "10s", cfg.Catalog.LoadTimeout)

	cfg.Catalog.LoadTimeout = "bogus"
	assert.Equal(t, DefaultConfig().GetLoadTimeout(), cfg.GetLoadTimeout())
}

func TestUserConfigApply(t *testing.T) {
	cfg := DefaultConfig()
	user := &UserConfig{CatalogPath: "docs/catalog.yaml", MaxClarificationRounds: 7}
	user.Apply(cfg)

	assert.Equal(t, "docs/catalog.yaml", cfg.Catalog.ManifestPath)
	assert.Equal(t, 7, cfg.Classifier.MaxClarificationRounds)
}

func TestUserConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".december", "config.json")
	saved := &UserConfig{Theme: "dark", MaxClarificationRounds: 2}
	require.NoError(t, saved.Save(path))

	loaded, err := LoadUserConfig(path)
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
}

func TestLoadUserConfigMissingFile(t *testing.T) {
	loaded, err := LoadUserConfig(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	assert.Equal(t, &UserConfig{}, loaded)
}
