// Package config loads tracker settings from YAML files and the environment.
//
// Sources are applied in order, later ones overriding earlier ones: built-in
// defaults, ~/.tracker/config.yaml, ./.tracker/config.yaml, then TRACKER_*
// environment variables (a .env file in the working directory is loaded
// first when present).
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/baiirun/tracker/internal/db"
)

// EnvPrefix prefixes every environment override, e.g. TRACKER_SERVER_ADDR.
const EnvPrefix = "TRACKER"

var envKeys = []string{
	"server.addr",
	"server.shutdown_timeout",
	"storage.backend",
	"storage.path",
	"history.capacity",
}

// Load loads and merges configuration from global, project, and environment
// sources
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var paths []string
	if p, err := GlobalConfigPath(); err == nil {
		paths = append(paths, p)
	}
	if p, err := ProjectConfigPath(); err == nil {
		paths = append(paths, p)
	}
	return LoadFrom(paths...)
}

// LoadFrom applies the given YAML files over the defaults, then the
// environment. Missing files are skipped.
func LoadFrom(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		if err := loadFile(path, cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	if err := loadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return err
	}

	return v.Unmarshal(cfg)
}

// loadEnv overlays only the variables that are set.
func loadEnv(cfg *Config) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return err
		}
	}
	return v.Unmarshal(cfg)
}

// Validate rejects unknown backends and negative limits.
func (c *Config) Validate() error {
	backends := []string{BackendFile, BackendSQLite, BackendMemory}
	if !slices.Contains(backends, c.Storage.Backend) {
		return fmt.Errorf("invalid storage.backend %q (want one of %s)", c.Storage.Backend, strings.Join(backends, ", "))
	}
	if c.History.Capacity < 0 {
		return fmt.Errorf("invalid history.capacity %d (must be >= 0)", c.History.Capacity)
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("invalid server.shutdown_timeout %s", c.Server.ShutdownTimeout)
	}
	return nil
}

// StoragePath returns the configured storage path, or the default file for
// the backend. The memory backend has no path.
func (c *Config) StoragePath() (string, error) {
	if c.Storage.Backend == BackendMemory {
		return "", nil
	}
	if c.Storage.Path != "" {
		return expandHome(c.Storage.Path)
	}
	if c.Storage.Backend == BackendSQLite {
		return db.DefaultPath()
	}
	dir, err := GlobalTrackerPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "tasks.csv"), nil
}

// Show writes cfg as YAML.
func Show(w io.Writer, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// GlobalConfigPath returns the path to the global config file
func GlobalConfigPath() (string, error) {
	dir, err := GlobalTrackerPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// ProjectConfigPath returns the path to the project config file
func ProjectConfigPath() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return filepath.Join(cwd, ".tracker", "config.yaml"), nil
}

// GlobalTrackerPath returns the path to the global tracker directory
func GlobalTrackerPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".tracker"), nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
