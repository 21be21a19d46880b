// Package config loads esglens settings from YAML and the environment.
//
// Precedence, lowest to highest: built-in defaults, $ESGLENS_HOME/config.yaml,
// an optional --config overlay (shallow-merged per section), environment
// variables, then CLI flags applied by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/esglens/esglens/internal/esg"
	"github.com/esglens/esglens/internal/logging"
)

// Defaults.
const (
	DefaultAddr            = ":5000"
	DefaultMaxUploadMB     = 20
	DefaultReadTimeout     = 30
	DefaultWriteTimeout    = 120
	DefaultShutdownTimeout = 10
	DefaultModel           = "gemini-2.5-flash"
	DefaultInsightsTimeout = 60
	DefaultMaxInsights     = 5
	DefaultCacheTTLSeconds = 3600
	configFileName         = "config.yaml"
	dbFileName             = "esglens.db"
	cacheDirName           = "cache"
)

// Config is the full esglens configuration.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Logging      LoggingConfig      `yaml:"logging"`
	Insights     InsightsConfig     `yaml:"insights"`
	Store        StoreConfig        `yaml:"store"`
	Cache        CacheConfig        `yaml:"cache"`
	Placeholders PlaceholdersConfig `yaml:"placeholders"`

	configPath string
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr                   string   `yaml:"addr"`
	MaxUploadMB            int      `yaml:"max_upload_mb"`
	ReadTimeoutSeconds     int      `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds    int      `yaml:"write_timeout_seconds"`
	ShutdownTimeoutSeconds int      `yaml:"shutdown_timeout_seconds"`
	CORSOrigins            []string `yaml:"cors_origins"`
}

// InsightsConfig controls the LLM insight requester.
type InsightsConfig struct {
	Model          string `yaml:"model"`
	APIKey         string `yaml:"api_key,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxItems       int    `yaml:"max_items"`
}

// StoreConfig controls the SQLite run archive. Disabled means runs are not
// persisted.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// CacheConfig controls the on-disk insight cache.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Directory  string `yaml:"directory"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// PlaceholdersConfig overrides the report fields that are not derived from
// uploaded rows.
type PlaceholdersConfig struct {
	SupplierDiversity    float64 `yaml:"supplier_diversity"`
	CustomerSatisfaction float64 `yaml:"customer_satisfaction"`
	HumanCapital         float64 `yaml:"human_capital"`
	EmployeeEngagement   float64 `yaml:"employee_engagement"`
	CommunityPrograms    float64 `yaml:"community_programs"`
	CorporateGovernance  string  `yaml:"corporate_governance"`
	ISO9001Compliance    string  `yaml:"iso9001_compliance"`
	BusinessEthics       string  `yaml:"business_ethics"`
	DataPrivacy          string  `yaml:"data_privacy"`
}

// ToPlaceholders converts the section for esg.BuildWithPlaceholders.
func (p PlaceholdersConfig) ToPlaceholders() esg.Placeholders {
	return esg.Placeholders(p)
}

func defaultPlaceholders() PlaceholdersConfig {
	return PlaceholdersConfig(esg.DefaultPlaceholders())
}

// New returns a Config populated with defaults only.
func New() *Config {
	dir, err := GetConfigDir()
	if err != nil {
		dir = ".esglens"
	}
	return &Config{
		Server: ServerConfig{
			Addr:                   DefaultAddr,
			MaxUploadMB:            DefaultMaxUploadMB,
			ReadTimeoutSeconds:     DefaultReadTimeout,
			WriteTimeoutSeconds:    DefaultWriteTimeout,
			ShutdownTimeoutSeconds: DefaultShutdownTimeout,
			CORSOrigins:            []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: logging.FormatConsole,
		},
		Insights: InsightsConfig{
			Model:          DefaultModel,
			TimeoutSeconds: DefaultInsightsTimeout,
			MaxItems:       DefaultMaxInsights,
		},
		Store: StoreConfig{
			Path: filepath.Join(dir, dbFileName),
		},
		Cache: CacheConfig{
			Enabled:    true,
			Directory:  filepath.Join(dir, cacheDirName),
			TTLSeconds: DefaultCacheTTLSeconds,
		},
		Placeholders: defaultPlaceholders(),
		configPath:   filepath.Join(dir, configFileName),
	}
}

// Load builds a Config from defaults, the global config file (if present),
// the optional overlay file and the process environment.
func Load(overlayPath string) (*Config, error) {
	cfg := New()

	if _, err := os.Stat(cfg.configPath); err == nil {
		if mergeErr := ShallowMergeYAML(cfg, cfg.configPath); mergeErr != nil {
			return nil, mergeErr
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("cannot access config file %s: %w", cfg.configPath, err)
	}

	if overlayPath != "" {
		if err := ShallowMergeYAML(cfg, overlayPath); err != nil {
			return nil, err
		}
	}

	cfg.ApplyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from environment variables.
func (c *Config) ApplyEnv(lookupEnv func(string) (string, bool)) {
	if port, ok := lookupEnv("PORT"); ok && port != "" {
		c.Server.Addr = ":" + port
	}
	if addr, ok := lookupEnv("ESGLENS_ADDR"); ok && addr != "" {
		c.Server.Addr = addr
	}
	if lvl, ok := lookupEnv("ESGLENS_LOG_LEVEL"); ok && lvl != "" {
		c.Logging.Level = lvl
	}
	if format, ok := lookupEnv("ESGLENS_LOG_FORMAT"); ok && format != "" {
		c.Logging.Format = format
	}
	if path, ok := lookupEnv("ESGLENS_DB_PATH"); ok && path != "" {
		c.Store.Enabled = true
		c.Store.Path = path
	}
	if model, ok := lookupEnv("ESGLENS_MODEL"); ok && model != "" {
		c.Insights.Model = model
	}
	for _, key := range []string{"GOOGLE_API_KEY", "GEMINI_API_KEY"} {
		if v, ok := lookupEnv(key); ok && v != "" {
			c.Insights.APIKey = v
		}
	}
	if v, ok := lookupEnv("ESGLENS_CACHE_ENABLED"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Cache.Enabled = b
		}
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("server.addr must not be empty")
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("server.max_upload_mb must be > 0, got %d", c.Server.MaxUploadMB)
	}
	if c.Cache.TTLSeconds < 0 {
		return fmt.Errorf("cache.ttl_seconds must be >= 0, got %d", c.Cache.TTLSeconds)
	}
	if c.Insights.MaxItems <= 0 {
		return fmt.Errorf("insights.max_items must be > 0, got %d", c.Insights.MaxItems)
	}
	if c.Logging.Level != "" {
		if _, err := zerolog.ParseLevel(strings.ToLower(c.Logging.Level)); err != nil {
			return fmt.Errorf("invalid logging.level %q: %w", c.Logging.Level, err)
		}
	}
	switch c.Logging.Format {
	case "", logging.FormatJSON, logging.FormatConsole, logging.FormatText:
	default:
		return fmt.Errorf("invalid logging.format %q (want json, console or text)", c.Logging.Format)
	}
	if c.Store.Enabled && c.Store.Path == "" {
		return errors.New("store.path must be set when store.enabled is true")
	}
	return nil
}

// ConfigPath returns the file Save writes to.
func (c *Config) ConfigPath() string {
	return c.configPath
}

// SetConfigPath changes the file Save writes to.
func (c *Config) SetConfigPath(path string) {
	c.configPath = path
}

// Save writes the configuration as YAML, creating the parent directory.
// The API key is never written.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.New("config path is not set")
	}
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	out := *c
	out.Insights.APIKey = ""
	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err = os.WriteFile(c.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
