package manager

import (
	"fmt"

	"github.com/baiirun/tracker/internal/model"
	"github.com/baiirun/tracker/internal/schedule"
)

// ReplayError reports the record that stopped a Replay. Index is the
// record's position in the slice passed to Replay.
type ReplayError struct {
	Index int
	ID    int
	Err   error
}

func (e *ReplayError) Error() string {
	return fmt.Sprintf("record %d (id=%d): %v", e.Index, e.ID, e.Err)
}

func (e *ReplayError) Unwrap() error {
	return e.Err
}

// Replay rebuilds the manager from snapshot records, keeping their ids.
// Epics must come before the subtasks that reference them. Stored epic status
// and time fields are ignored and derived again from the subtasks.
//
// Replay is all or nothing: on error the manager keeps its previous state.
// On success every collection is replaced, history is cleared, and the
// allocator continues after the largest id seen. No save is triggered.
func (m *Manager) Replay(records []model.Record) error {
	staged := &Manager{
		tasks:    make(map[int]*model.Task),
		epics:    make(map[int]*model.Epic),
		subtasks: make(map[int]*model.Subtask),
		schedule: schedule.New(),
	}

	maxID := -1
	for i, r := range records {
		if err := staged.replayRecord(r); err != nil {
			return &ReplayError{Index: i, ID: r.ID, Err: err}
		}
		maxID = max(maxID, r.ID)
	}
	for _, e := range staged.epics {
		staged.recompute(e)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = staged.tasks
	m.epics = staged.epics
	m.subtasks = staged.subtasks
	m.schedule = staged.schedule
	m.history.Clear()
	if next := maxID + 1; next > m.ids.Peek() {
		m.ids = NewIDAllocator(next)
	}
	return nil
}

func (m *Manager) replayRecord(r model.Record) error {
	if r.ID < 0 {
		return fmt.Errorf("negative id %d: %w", r.ID, model.ErrInvalid)
	}
	if !r.Kind.IsValid() {
		return fmt.Errorf("unknown type %q: %w", r.Kind, model.ErrInvalid)
	}
	if _, ok := m.recordLocked(r.ID); ok {
		return fmt.Errorf("duplicate id %d: %w", r.ID, model.ErrInvalid)
	}

	if r.Kind == model.KindEpic {
		m.epics[r.ID] = &model.Epic{ID: r.ID, Name: r.Name, Description: r.Description}
		return nil
	}

	item, err := normalizeItem(model.Item{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Status:      r.Status,
		StartTime:   r.StartTime,
		Duration:    r.Duration,
	})
	if err != nil {
		return err
	}

	var epic *model.Epic
	if r.Kind == model.KindSubtask {
		if r.EpicID == nil {
			return fmt.Errorf("subtask %d has no epic: %w", r.ID, model.ErrInvalid)
		}
		var ok bool
		if epic, ok = m.epics[*r.EpicID]; !ok {
			return notFound(model.KindEpic, *r.EpicID)
		}
	}

	if w, ok := schedule.WindowOf(item); ok {
		if err := m.schedule.Insert(item.ID, w); err != nil {
			return err
		}
	}

	if epic == nil {
		m.tasks[item.ID] = &model.Task{Item: item}
		return nil
	}
	m.subtasks[item.ID] = &model.Subtask{Item: item, EpicID: epic.ID}
	epic.SubtaskIDs = append(epic.SubtaskIDs, item.ID)
	return nil
}
