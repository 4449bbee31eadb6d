package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/baiirun/tracker/internal/api"
	"github.com/baiirun/tracker/internal/config"
	"github.com/baiirun/tracker/internal/db"
	"github.com/baiirun/tracker/internal/manager"
	"github.com/baiirun/tracker/internal/model"
	"github.com/baiirun/tracker/internal/snapshot"
	"github.com/baiirun/tracker/internal/tui"
	"github.com/baiirun/tracker/internal/ui"
)

var flagJSON bool

var rootCmd = &cobra.Command{
	Use:   "tracker",
	Short: "Track tasks, epics, and subtasks on a shared schedule",
	Long: `A CLI for managing tasks, epics, and subtasks. Timed items may not overlap;
epic status and time window are derived from their subtasks.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var prioritizedCmd = &cobra.Command{
	Use:   "prioritized",
	Short: "List scheduled tasks and subtasks by start time",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withManager(func(m *manager.Manager) error {
			return printRecords(m.GetPrioritized())
		})
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse items interactively",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withManager(tui.Run)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")

	rootCmd.AddCommand(newKindCmd(taskKind))
	rootCmd.AddCommand(newKindCmd(epicKind))
	rootCmd.AddCommand(newKindCmd(subtaskKind))
	rootCmd.AddCommand(prioritizedCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(configCmd)
}

// openManager restores a manager from the configured backend. The returned
// close function releases the backend.
func openManager(cfg *config.Config) (*manager.Manager, func() error, error) {
	opts := []manager.Option{manager.WithHistoryCapacity(cfg.History.Capacity)}
	noop := func() error { return nil }

	path, err := cfg.StoragePath()
	if err != nil {
		return nil, nil, err
	}

	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return manager.New(opts...), noop, nil

	case config.BackendSQLite:
		database, err := db.Open(path)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Init(); err != nil {
			database.Close()
			return nil, nil, err
		}
		m, err := snapshot.Restore(database, opts...)
		if err != nil {
			database.Close()
			return nil, nil, err
		}
		return m, database.Close, nil

	default:
		m, err := snapshot.Restore(snapshot.NewFileStore(path), opts...)
		if err != nil {
			return nil, nil, err
		}
		return m, noop, nil
	}
}

// withManager loads config, opens the store, and runs fn against it.
func withManager(fn func(m *manager.Manager) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	m, closeFn, err := openManager(cfg)
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(m)
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(b))
	return nil
}

func printRecord(r model.Record) error {
	if flagJSON {
		return printJSON(api.NewRecordJSON(r))
	}
	ui.PrintDetail(os.Stdout, r, time.Now())
	return nil
}

func printRecords(records []model.Record) error {
	if flagJSON {
		return printJSON(api.RecordsJSON(records))
	}
	ui.PrintList(os.Stdout, records, time.Now())
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		ui.Error(os.Stderr, err)
		os.Exit(1)
	}
}
