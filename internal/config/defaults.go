package config

import (
	"os"
	"time"
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			Backend: BackendFile,
		},
	}
}

// WriteDefault writes the default configuration to a file
func WriteDefault(path string) error {
	content := `# Tracker Configuration

# HTTP API
server:
  addr: ":8080"
  shutdown_timeout: 10s

# Snapshot storage
storage:
  backend: file  # "file" (csv snapshot), "sqlite", or "memory" (nothing persisted)
  # path: ~/.tracker/tasks.csv

# View history
history:
  # Maximum remembered views (0 = unlimited)
  capacity: 0
`
	return os.WriteFile(path, []byte(content), 0644)
}
