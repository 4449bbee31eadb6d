package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/baiirun/tracker/internal/manager"
	"github.com/baiirun/tracker/internal/model"
	"github.com/baiirun/tracker/internal/ui"
)

// kindAPI adapts the manager's per-kind operations to records so the list,
// show, rm, and clear commands can be shared.
type kindAPI struct {
	name  string
	kind  model.Kind
	list  func(m *manager.Manager) []model.Record
	get   func(m *manager.Manager, id int) (model.Record, error)
	del   func(m *manager.Manager, id int) (model.Record, error)
	clear func(m *manager.Manager) error
}

func records[T any](items []T, record func(T) model.Record) []model.Record {
	out := make([]model.Record, 0, len(items))
	for _, item := range items {
		out = append(out, record(item))
	}
	return out
}

var taskKind = kindAPI{
	name: "task",
	kind: model.KindTask,
	list: func(m *manager.Manager) []model.Record { return records(m.ListTasks(), model.Task.Record) },
	get: func(m *manager.Manager, id int) (model.Record, error) {
		t, err := m.GetTask(id)
		return t.Record(), err
	},
	del: func(m *manager.Manager, id int) (model.Record, error) {
		t, err := m.DeleteTask(id)
		return t.Record(), err
	},
	clear: (*manager.Manager).DeleteAllTasks,
}

var epicKind = kindAPI{
	name: "epic",
	kind: model.KindEpic,
	list: func(m *manager.Manager) []model.Record { return records(m.ListEpics(), model.Epic.Record) },
	get: func(m *manager.Manager, id int) (model.Record, error) {
		e, err := m.GetEpic(id)
		return e.Record(), err
	},
	del: func(m *manager.Manager, id int) (model.Record, error) {
		e, err := m.DeleteEpic(id)
		return e.Record(), err
	},
	clear: (*manager.Manager).DeleteAllEpics,
}

var subtaskKind = kindAPI{
	name: "subtask",
	kind: model.KindSubtask,
	list: func(m *manager.Manager) []model.Record { return records(m.ListSubtasks(), model.Subtask.Record) },
	get: func(m *manager.Manager, id int) (model.Record, error) {
		s, err := m.GetSubtask(id)
		return s.Record(), err
	},
	del: func(m *manager.Manager, id int) (model.Record, error) {
		s, err := m.DeleteSubtask(id)
		return s.Record(), err
	},
	clear: (*manager.Manager).DeleteAllSubtasks,
}

func newKindCmd(k kindAPI) *cobra.Command {
	cmd := &cobra.Command{
		Use:   k.name,
		Short: fmt.Sprintf("Manage %ss", k.name),
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List %ss", k.name),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(func(m *manager.Manager) error {
				return printRecords(k.list(m))
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: fmt.Sprintf("Show %s details", k.name),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withManager(func(m *manager.Manager) error {
				r, err := k.get(m, id)
				if err != nil {
					return err
				}
				return printRecord(r)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <id>",
		Short: fmt.Sprintf("Delete a %s", k.name),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withManager(func(m *manager.Manager) error {
				r, err := k.del(m, id)
				if err != nil {
					return err
				}
				if flagJSON {
					return printRecord(r)
				}
				ui.Success(os.Stdout, "Deleted %s #%d", k.name, r.ID)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: fmt.Sprintf("Delete every %s", k.name),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(func(m *manager.Manager) error {
				if err := k.clear(m); err != nil {
					return err
				}
				if !flagJSON {
					ui.Success(os.Stdout, "Deleted all %ss", k.name)
				}
				return nil
			})
		},
	})

	switch k.kind {
	case model.KindEpic:
		cmd.AddCommand(epicAddCmd(), epicUpdateCmd(), epicSubtasksCmd())
	default:
		cmd.AddCommand(itemAddCmd(k), itemUpdateCmd(k))
	}
	return cmd
}

// itemFlags holds the editable fields of a task or subtask. Only flags the
// user set are applied.
type itemFlags struct {
	name     string
	desc     string
	status   string
	start    string
	duration time.Duration
	epic     int
}

func (f *itemFlags) bind(cmd *cobra.Command, withName bool) {
	if withName {
		cmd.Flags().StringVar(&f.name, "name", "", "New name")
	}
	cmd.Flags().StringVarP(&f.desc, "desc", "d", "", "Description")
	cmd.Flags().StringVarP(&f.status, "status", "s", "", "Status (NEW, IN_PROGRESS, DONE)")
	cmd.Flags().StringVar(&f.start, "start", "", `Start time (RFC3339 or "2006-01-02 15:04"); "" clears it`)
	cmd.Flags().DurationVar(&f.duration, "duration", 0, "Duration in whole minutes, e.g. 90m or 1h30m")
}

func (f *itemFlags) apply(cmd *cobra.Command, item *model.Item) error {
	flags := cmd.Flags()
	if flags.Changed("name") {
		item.Name = f.name
	}
	if flags.Changed("desc") {
		item.Description = f.desc
	}
	if flags.Changed("status") {
		item.Status = model.Status(strings.ToUpper(f.status))
	}
	if flags.Changed("start") {
		start, err := parseStart(f.start)
		if err != nil {
			return err
		}
		item.StartTime = start
	}
	if flags.Changed("duration") {
		if f.duration < 0 {
			return fmt.Errorf("duration must not be negative: %w", model.ErrInvalid)
		}
		// Snapshots store whole minutes
		if f.duration%time.Minute != 0 {
			return fmt.Errorf("duration %s is not a whole number of minutes: %w", f.duration, model.ErrInvalid)
		}
		d := f.duration
		item.Duration = &d
	}
	return nil
}

func itemAddCmd(k kindAPI) *cobra.Command {
	var f itemFlags
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: fmt.Sprintf("Create a new %s", k.name),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item := model.Item{Name: strings.Join(args, " ")}
			if err := f.apply(cmd, &item); err != nil {
				return err
			}
			return withManager(func(m *manager.Manager) error {
				var r model.Record
				if k.kind == model.KindSubtask {
					s, err := m.CreateSubtask(model.Subtask{Item: item, EpicID: f.epic})
					if err != nil {
						return err
					}
					r = s.Record()
				} else {
					t, err := m.CreateTask(model.Task{Item: item})
					if err != nil {
						return err
					}
					r = t.Record()
				}
				return printCreated(k, r)
			})
		},
	}
	f.bind(cmd, false)
	if k.kind == model.KindSubtask {
		cmd.Flags().IntVarP(&f.epic, "epic", "e", 0, "Owning epic id")
		_ = cmd.MarkFlagRequired("epic")
	}
	return cmd
}

func itemUpdateCmd(k kindAPI) *cobra.Command {
	var f itemFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: fmt.Sprintf("Update a %s", k.name),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withManager(func(m *manager.Manager) error {
				// Read through the snapshot so updating does not count as a view
				cur, ok := findRecord(m, k.kind, id)
				if !ok {
					return fmt.Errorf("%s with id=%d does not exist: %w", k.name, id, model.ErrNotFound)
				}
				item := itemOf(cur)
				if err := f.apply(cmd, &item); err != nil {
					return err
				}

				var r model.Record
				if k.kind == model.KindSubtask {
					s, err := m.UpdateSubtask(model.Subtask{Item: item, EpicID: *cur.EpicID})
					if err != nil {
						return err
					}
					r = s.Record()
				} else {
					t, err := m.UpdateTask(model.Task{Item: item})
					if err != nil {
						return err
					}
					r = t.Record()
				}
				return printUpdated(k, r)
			})
		},
	}
	f.bind(cmd, true)
	return cmd
}

func epicAddCmd() *cobra.Command {
	var desc string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a new epic",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(func(m *manager.Manager) error {
				e, err := m.CreateEpic(model.Epic{Name: strings.Join(args, " "), Description: desc})
				if err != nil {
					return err
				}
				return printCreated(epicKind, e.Record())
			})
		},
	}
	cmd.Flags().StringVarP(&desc, "desc", "d", "", "Description")
	return cmd
}

func epicUpdateCmd() *cobra.Command {
	var name, desc, status string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an epic's name or description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withManager(func(m *manager.Manager) error {
				cur, ok := findRecord(m, model.KindEpic, id)
				if !ok {
					return fmt.Errorf("epic with id=%d does not exist: %w", id, model.ErrNotFound)
				}
				e := model.Epic{ID: id, Name: cur.Name, Description: cur.Description}
				if cmd.Flags().Changed("status") {
					return e.SetStatus(model.Status(strings.ToUpper(status)))
				}
				if cmd.Flags().Changed("name") {
					e.Name = name
				}
				if cmd.Flags().Changed("desc") {
					e.Description = desc
				}
				updated, err := m.UpdateEpic(e)
				if err != nil {
					return err
				}
				return printUpdated(epicKind, updated.Record())
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVarP(&desc, "desc", "d", "", "Description")
	cmd.Flags().StringVarP(&status, "status", "s", "", "Refused: epic status is derived from subtasks")
	return cmd
}

func epicSubtasksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "subtasks <id>",
		Short: "List an epic's subtasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withManager(func(m *manager.Manager) error {
				subs, err := m.EpicSubtasks(id)
				if err != nil {
					return err
				}
				return printRecords(records(subs, model.Subtask.Record))
			})
		},
	}
}

func printCreated(k kindAPI, r model.Record) error {
	if flagJSON {
		return printRecord(r)
	}
	ui.Success(os.Stdout, "Created %s #%d %s", k.name, r.ID, r.Name)
	return nil
}

func printUpdated(k kindAPI, r model.Record) error {
	if flagJSON {
		return printRecord(r)
	}
	ui.Success(os.Stdout, "Updated %s #%d (%s)", k.name, r.ID, r.Status)
	return nil
}

func findRecord(m *manager.Manager, kind model.Kind, id int) (model.Record, bool) {
	for _, r := range m.Snapshot() {
		if r.ID == id && r.Kind == kind {
			return r, true
		}
	}
	return model.Record{}, false
}

func itemOf(r model.Record) model.Item {
	return model.Item{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Status:      r.Status,
		StartTime:   r.StartTime,
		Duration:    r.Duration,
	}
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid id %q: %w", s, model.ErrInvalid)
	}
	return id, nil
}

var startLayouts = []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02T15:04"}

// parseStart accepts RFC3339 or a local "2006-01-02 15:04". An empty string
// clears the start time.
func parseStart(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range startLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid start time %q: %w", s, model.ErrInvalid)
}
