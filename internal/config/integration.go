package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// GlobalConfig holds the process-wide configuration.
var GlobalConfig *Config        //nolint:gochecknoglobals // Singleton pattern for configuration
var globalConfigMu sync.RWMutex //nolint:gochecknoglobals // Protects GlobalConfig

// SetGlobalConfig installs cfg as the process-wide configuration.
func SetGlobalConfig(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	GlobalConfig = cfg
}

// ResetGlobalConfigForTest clears the global config.
func ResetGlobalConfigForTest() {
	SetGlobalConfig(nil)
}

// GetGlobalConfig returns the global configuration, falling back to
// defaults plus environment when nothing has been installed.
func GetGlobalConfig() *Config {
	globalConfigMu.RLock()
	cfg := GlobalConfig
	globalConfigMu.RUnlock()
	if cfg != nil {
		return cfg
	}

	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	if GlobalConfig == nil {
		GlobalConfig = New()
		GlobalConfig.ApplyEnv(os.LookupEnv)
	}
	return GlobalConfig
}

// GetConfigDir returns the esglens home directory: $ESGLENS_HOME or
// ~/.esglens.
func GetConfigDir() (string, error) {
	if home := os.Getenv("ESGLENS_HOME"); home != "" {
		return home, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".esglens"), nil
}

// EnsureLogDir creates the parent directory of the configured log file.
// It does nothing when logging goes to stderr.
func (c *Config) EnsureLogDir() error {
	if c.Logging.File == "" {
		return nil
	}
	logDir := filepath.Dir(c.Logging.File)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return fmt.Errorf("failed to create log directory %q: %w", logDir, err)
	}
	return nil
}

// EnsureDataDirs creates the directories the store and cache write to.
func (c *Config) EnsureDataDirs() error {
	if c.Store.Enabled && c.Store.Path != "" {
		dir := filepath.Dir(c.Store.Path)
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create store directory %q: %w", dir, err)
		}
	}
	if c.Cache.Enabled && c.Cache.Directory != "" {
		if err := os.MkdirAll(c.Cache.Directory, 0700); err != nil {
			return fmt.Errorf("failed to create cache directory %q: %w", c.Cache.Directory, err)
		}
	}
	return c.EnsureLogDir()
}
