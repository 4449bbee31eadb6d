package manager

import (
	"github.com/baiirun/tracker/internal/model"
)

// GetHistory returns the viewed items from oldest to most recent view.
func (m *Manager) GetHistory() []model.Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := m.history.List()
	records := make([]model.Record, 0, len(ids))
	for _, id := range ids {
		if r, ok := m.recordLocked(id); ok {
			records = append(records, r)
		}
	}
	return records
}

// GetPrioritized returns the schedulable tasks and subtasks ordered by start
// time.
func (m *Manager) GetPrioritized() []model.Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := m.schedule.Entries()
	records := make([]model.Record, 0, len(entries))
	for _, e := range entries {
		if r, ok := m.recordLocked(e.ID); ok {
			records = append(records, r)
		}
	}
	return records
}

func (m *Manager) recordLocked(id int) (model.Record, bool) {
	if t, ok := m.tasks[id]; ok {
		return t.Record(), true
	}
	if s, ok := m.subtasks[id]; ok {
		return s.Record(), true
	}
	if e, ok := m.epics[id]; ok {
		return e.Record(), true
	}
	return model.Record{}, false
}
