package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/baiirun/tracker/internal/db"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.Server.Addr != ":8080" {
		t.Errorf("Expected addr ':8080', got '%s'", cfg.Server.Addr)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("Expected 10s shutdown timeout, got %s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Storage.Backend != BackendFile {
		t.Errorf("Expected file backend, got '%s'", cfg.Storage.Backend)
	}
	if cfg.History.Capacity != 0 {
		t.Errorf("Expected unbounded history, got %d", cfg.History.Capacity)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config is invalid: %v", err)
	}
}

func TestLoadFrom_MissingFiles(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Expected defaults, got %+v", cfg)
	}
}

func TestLoadFrom_ProjectOverridesGlobal(t *testing.T) {
	global := writeConfig(t, "server:\n  addr: \":9000\"\n  shutdown_timeout: 3s\nhistory:\n  capacity: 5\n")
	project := writeConfig(t, "server:\n  addr: \"127.0.0.1:7000\"\nstorage:\n  backend: sqlite\n")

	cfg, err := LoadFrom(global, project)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if cfg.Server.Addr != "127.0.0.1:7000" {
		t.Errorf("Expected project addr, got '%s'", cfg.Server.Addr)
	}
	if cfg.Server.ShutdownTimeout != 3*time.Second {
		t.Errorf("Expected global shutdown timeout, got %s", cfg.Server.ShutdownTimeout)
	}
	if cfg.History.Capacity != 5 {
		t.Errorf("Expected capacity 5, got %d", cfg.History.Capacity)
	}
	if cfg.Storage.Backend != BackendSQLite {
		t.Errorf("Expected sqlite backend, got '%s'", cfg.Storage.Backend)
	}
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	t.Setenv("TRACKER_SERVER_ADDR", ":6000")
	t.Setenv("TRACKER_HISTORY_CAPACITY", "12")
	t.Setenv("TRACKER_STORAGE_BACKEND", "memory")
	path := writeConfig(t, "server:\n  addr: \":9000\"\n  shutdown_timeout: 4s\n")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if cfg.Server.Addr != ":6000" {
		t.Errorf("Expected env addr, got '%s'", cfg.Server.Addr)
	}
	if cfg.Server.ShutdownTimeout != 4*time.Second {
		t.Errorf("Expected file shutdown timeout, got %s", cfg.Server.ShutdownTimeout)
	}
	if cfg.History.Capacity != 12 {
		t.Errorf("Expected capacity 12, got %d", cfg.History.Capacity)
	}
	if cfg.Storage.Backend != BackendMemory {
		t.Errorf("Expected memory backend, got '%s'", cfg.Storage.Backend)
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown backend", "storage:\n  backend: postgres\n"},
		{"negative capacity", "history:\n  capacity: -1\n"},
		{"malformed yaml", "server: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadFrom(writeConfig(t, tt.content)); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestStoragePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		storage StorageConfig
		suffix  string
	}{
		{"file default", StorageConfig{Backend: BackendFile}, filepath.Join(".tracker", "tasks.csv")},
		{"sqlite default", StorageConfig{Backend: BackendSQLite}, filepath.Join(".tracker", "tracker.db")},
		{"explicit", StorageConfig{Backend: BackendFile, Path: "/tmp/x.csv"}, "/tmp/x.csv"},
		{"home relative", StorageConfig{Backend: BackendSQLite, Path: "~/data/t.db"}, filepath.Join("data", "t.db")},
		{"memory", StorageConfig{Backend: BackendMemory, Path: "/ignored"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Storage = tt.storage

			path, err := cfg.StoragePath()
			if err != nil {
				t.Fatalf("StoragePath failed: %v", err)
			}
			if !strings.HasSuffix(path, tt.suffix) || (tt.suffix == "" && path != "") {
				t.Errorf("Expected path ending in %q, got %q", tt.suffix, path)
			}
			if strings.HasPrefix(path, "~") {
				t.Errorf("Expected home to be expanded, got %q", path)
			}
		})
	}
}

func TestStoragePath_SQLiteDefault(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Storage.Backend = BackendSQLite

	got, err := cfg.StoragePath()
	if err != nil {
		t.Fatalf("StoragePath failed: %v", err)
	}
	want, err := db.DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath failed: %v", err)
	}
	if got != want {
		t.Errorf("StoragePath = %q, want %q", got, want)
	}
}

func TestShow(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Show(&buf, DefaultConfig()); err != nil {
		t.Fatalf("Show failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"8080", "shutdown_timeout: 10s", "backend: file", "capacity: 0"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault failed: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Written default does not load: %v", err)
	}
	if *cfg != *DefaultConfig() {
		t.Errorf("Expected written default to match DefaultConfig, got %+v", cfg)
	}
}
