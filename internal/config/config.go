// Package config loads spinforge settings from a YAML file, an optional
// .env file and SPINFORGE_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/HendryAvila/spinforge/internal/engine"
	"github.com/HendryAvila/spinforge/internal/store"
)

// EnvConfigPath names the variable that overrides the config file path.
const EnvConfigPath = "SPINFORGE_CONFIG"

// Config is the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store"`
	Generation GenerationConfig `yaml:"generation"`
	Agency     AgencyConfig     `yaml:"agency"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// StoreConfig selects and sizes the database.
type StoreConfig struct {
	DataDir     string `yaml:"data_dir"`
	DatabaseURL string `yaml:"database_url"`
	CacheSize   int    `yaml:"cache_size"`
	// CacheTTL is a duration such as "5m"; negative disables expiry.
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// GenerationConfig holds engine defaults.
type GenerationConfig struct {
	MaxCombinations int64 `yaml:"max_combinations"`
	BatchSize       int   `yaml:"batch_size"`
	PreviewCount    int   `yaml:"preview_count"`
	ArticleBatch    int   `yaml:"article_batch"`
}

// AgencyConfig is the site identity used when a campaign has none.
type AgencyConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// LoggingConfig configures the diagnostic logger.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the built-in configuration.
func Default() Config {
	sc := store.DefaultConfig()
	return Config{
		Store: StoreConfig{
			DataDir:   sc.DataDir,
			CacheSize: sc.CacheSize,
			CacheTTL:  sc.CacheTTL,
		},
		Generation: GenerationConfig{
			MaxCombinations: engine.DefaultMaxCombinations,
			BatchSize:       engine.DefaultBatchSize,
			PreviewCount:    engine.DefaultPreviewCount,
			ArticleBatch:    engine.DefaultArticleBatch,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// DefaultPath returns $SPINFORGE_CONFIG or ~/.spinforge/config.yaml.
func DefaultPath() string {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".spinforge", "config.yaml")
}

// Load reads the config file at path (DefaultPath when empty). A missing
// file is not an error. Environment variables win over the file.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = DefaultPath()
	}
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	cfg.fillDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := env("SPINFORGE_DATA_DIR"); v != "" {
		c.Store.DataDir = v
	}
	if v := env("SPINFORGE_DATABASE_URL"); v != "" {
		c.Store.DatabaseURL = v
	}
	if v := env("SPINFORGE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := env("SPINFORGE_AGENCY_NAME"); v != "" {
		c.Agency.Name = v
	}
	if v := env("SPINFORGE_MAX_COMBINATIONS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("config: SPINFORGE_MAX_COMBINATIONS: %w", err)
		}
		c.Generation.MaxCombinations = n
	}
	if v := env("SPINFORGE_BATCH_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: SPINFORGE_BATCH_SIZE: %w", err)
		}
		c.Generation.BatchSize = n
	}
	return nil
}

// fillDefaults replaces zero or negative values a file may have set.
func (c *Config) fillDefaults() {
	d := Default()
	if c.Store.DataDir == "" {
		c.Store.DataDir = d.Store.DataDir
	}
	if c.Store.CacheSize <= 0 {
		c.Store.CacheSize = d.Store.CacheSize
	}
	if c.Store.CacheTTL == 0 {
		c.Store.CacheTTL = d.Store.CacheTTL
	}
	if c.Generation.MaxCombinations <= 0 {
		c.Generation.MaxCombinations = d.Generation.MaxCombinations
	}
	if c.Generation.BatchSize <= 0 {
		c.Generation.BatchSize = d.Generation.BatchSize
	}
	if c.Generation.PreviewCount <= 0 {
		c.Generation.PreviewCount = d.Generation.PreviewCount
	}
	if c.Generation.ArticleBatch <= 0 {
		c.Generation.ArticleBatch = d.Generation.ArticleBatch
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
}

// StoreConfig converts the store section to store.Config.
func (c Config) StoreConfig() store.Config {
	return store.Config{
		DataDir:     c.Store.DataDir,
		DatabaseURL: c.Store.DatabaseURL,
		CacheSize:   c.Store.CacheSize,
		CacheTTL:    c.Store.CacheTTL,
	}
}

// Limits converts the generation section to engine.Limits.
func (c Config) Limits() engine.Limits {
	return engine.Limits{
		MaxCombinations: c.Generation.MaxCombinations,
		BatchSize:       c.Generation.BatchSize,
		PreviewCount:    c.Generation.PreviewCount,
		ArticleBatch:    c.Generation.ArticleBatch,
	}
}

// Save writes c as YAML to path, creating its directory.
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
