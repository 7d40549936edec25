package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all december configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Request classifier settings
	Classifier ClassifierConfig `yaml:"classifier"`

	// Example catalog settings
	Catalog CatalogConfig `yaml:"catalog"`

	// Persistence settings
	Store StoreConfig `yaml:"store"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// ClassifierConfig configures the request classifier.
type ClassifierConfig struct {
	// MaxClarificationRounds bounds the clarify loop per conversation.
	// When the budget is spent, remaining gaps become stated assumptions.
	MaxClarificationRounds int `yaml:"max_clarification_rounds"`

	// MinConfidence is the floor reported for fallback classifications.
	MinConfidence float64 `yaml:"min_confidence"`

	// LearnedBoost is added to the match score of learned exemplars so
	// user-confirmed phrasings win over the static taxonomy.
	LearnedBoost float64 `yaml:"learned_boost"`
}

// CatalogConfig configures the example/context document catalog.
type CatalogConfig struct {
	// ManifestPath points at the catalog.yaml manifest.
	ManifestPath string `yaml:"manifest_path"`

	// Watch enables hot-reload of the manifest via fsnotify.
	Watch bool `yaml:"watch"`

	// LoadTimeout bounds concurrent document loading.
	LoadTimeout string `yaml:"load_timeout"`
}

// StoreConfig configures SQLite persistence.
type StoreConfig struct {
	// DatabasePath is the SQLite file for history and learned exemplars.
	DatabasePath string `yaml:"database_path"`

	// HistoryLimit caps rows returned by history queries.
	HistoryLimit int `yaml:"history_limit"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level      string          `yaml:"level"`  // debug, info, warn, error
	Format     string          `yaml:"format"` // json, text
	Categories map[string]bool `yaml:"categories"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "december",
		Version: "0.3.0",

		Classifier: ClassifierConfig{
			MaxClarificationRounds: 3,
			MinConfidence:          0.3,
			LearnedBoost:           0.1,
		},

		Catalog: CatalogConfig{
			ManifestPath: "examples/catalog.yaml",
			Watch:        false,
			LoadTimeout:  "10s",
		},

		Store: StoreConfig{
			DatabasePath: filepath.Join(".december", "december.db"),
			HistoryLimit: 50,
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults when
// the file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("DECEMBER_DB"); path != "" {
		c.Store.DatabasePath = path
	}
	if path := os.Getenv("DECEMBER_CATALOG"); path != "" {
		c.Catalog.ManifestPath = path
	}
	if level := os.Getenv("DECEMBER_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// GetLoadTimeout returns the catalog load timeout as a duration.
func (c *Config) GetLoadTimeout() time.Duration {
	d, err := time.ParseDuration(c.Catalog.LoadTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Classifier.MaxClarificationRounds < 1 {
		return fmt.Errorf("max_clarification_rounds must be >= 1, got %d", c.Classifier.MaxClarificationRounds)
	}
	if c.Classifier.MinConfidence < 0 || c.Classifier.MinConfidence > 1 {
		return fmt.Errorf("min_confidence must be in [0,1], got %v", c.Classifier.MinConfidence)
	}
	if c.Store.DatabasePath == "" {
		return fmt.Errorf("store database path not configured")
	}
	return nil
}

// ============================================================================
// User Config (.december/config.json)
// ============================================================================

// UserConfig holds user-specific settings from .december/config.json.
type UserConfig struct {
	// UI settings
	Theme string `json:"theme,omitempty"`

	// Catalog manifest override
	CatalogPath string `json:"catalog_path,omitempty"`

	// Clarification budget override (0 = use project config)
	MaxClarificationRounds int `json:"max_clarification_rounds,omitempty"`
}

// DefaultUserConfigPath returns the default path to .december/config.json.
func DefaultUserConfigPath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return filepath.Join(".december", "config.json")
	}
	return filepath.Join(cwd, ".december", "config.json")
}

// LoadUserConfig loads configuration from .december/config.json. A missing
// file yields an empty config, not an error.
func LoadUserConfig(path string) (*UserConfig, error) {
	cfg := &UserConfig{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read user config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse user config: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to .december/config.json.
func (c *UserConfig) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write user config: %w", err)
	}

	return nil
}

// Apply merges user overrides into a project config.
func (c *UserConfig) Apply(cfg *Config) {
	if c.CatalogPath != "" {
		cfg.Catalog.ManifestPath = c.CatalogPath
	}
	if c.MaxClarificationRounds > 0 {
		cfg.Classifier.MaxClarificationRounds = c.MaxClarificationRounds
	}
}
