package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/baiirun/tracker/internal/api"
	"github.com/baiirun/tracker/internal/config"
	"github.com/baiirun/tracker/internal/db"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if flagAddr != "" {
			cfg.Server.Addr = flagAddr
		}

		m, closeFn, err := openManager(cfg)
		if err != nil {
			return err
		}
		defer closeFn()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return api.NewServer(m).Run(ctx, cfg.Server.Addr, cfg.Server.ShutdownTimeout)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect tracker configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the merged configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(cfg)
		}
		return config.Show(os.Stdout, cfg)
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print config and storage paths",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		global, err := config.GlobalConfigPath()
		if err != nil {
			return err
		}
		project, err := config.ProjectConfigPath()
		if err != nil {
			return err
		}
		storage, err := cfg.StoragePath()
		if err != nil {
			return err
		}
		savedAt, err := lastSaved(cfg, storage)
		if err != nil {
			return err
		}
		if flagJSON {
			out := map[string]string{"global": global, "project": project, "storage": storage}
			if !savedAt.IsZero() {
				out["savedAt"] = savedAt.UTC().Format(time.RFC3339)
			}
			return printJSON(out)
		}
		fmt.Printf("global:  %s\n", global)
		fmt.Printf("project: %s\n", project)
		fmt.Printf("storage: %s (%s)\n", storage, cfg.Storage.Backend)
		if !savedAt.IsZero() {
			fmt.Printf("saved:   %s\n", humanize.Time(savedAt))
		}
		return nil
	},
}

// lastSaved reports when the sqlite store was last written. Other backends,
// and a database that does not exist yet, report the zero time.
func lastSaved(cfg *config.Config, path string) (time.Time, error) {
	if cfg.Storage.Backend != config.BackendSQLite {
		return time.Time{}, nil
	}
	if _, err := os.Stat(path); err != nil {
		return time.Time{}, nil
	}
	database, err := db.Open(path)
	if err != nil {
		return time.Time{}, err
	}
	defer database.Close()
	if err := database.Init(); err != nil {
		return time.Time{}, err
	}
	return database.SavedAt()
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default global config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GlobalConfigPath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
		dir, err := config.GlobalTrackerPath()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
		if err := config.WriteDefault(path); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		fmt.Println(path)
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (overrides server.addr)")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
}
