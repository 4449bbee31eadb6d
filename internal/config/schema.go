package config

import "time"

// Config represents the full tracker configuration
type Config struct {
	// HTTP API server
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Snapshot storage
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`

	// View history
	History HistoryConfig `yaml:"history" mapstructure:"history"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr            string        `yaml:"addr" mapstructure:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// StorageConfig selects where snapshots are kept
type StorageConfig struct {
	Backend string `yaml:"backend" mapstructure:"backend"`
	// Path defaults to a file under ~/.tracker chosen by backend
	Path string `yaml:"path" mapstructure:"path"`
}

// HistoryConfig configures the view history
type HistoryConfig struct {
	// Capacity bounds the history; 0 keeps it unbounded
	Capacity int `yaml:"capacity" mapstructure:"capacity"`
}
