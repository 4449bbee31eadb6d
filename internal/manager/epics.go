package manager

import (
	"github.com/baiirun/tracker/internal/model"
)

// ListEpics returns all epics in ascending id order.
func (m *Manager) ListEpics() []model.Epic {
	m.mu.Lock()
	defer m.mu.Unlock()

	epics := make([]model.Epic, 0, len(m.epics))
	for _, id := range sortedKeys(m.epics) {
		epics = append(epics, m.epics[id].Clone())
	}
	return epics
}

// GetEpic returns the epic with the given id and records the view in history.
func (m *Manager) GetEpic(id int) (model.Epic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.epics[id]
	if !ok {
		return model.Epic{}, notFound(model.KindEpic, id)
	}
	m.history.Add(id)
	return e.Clone(), nil
}

// CreateEpic stores a new epic with e's name and description. The epic starts
// with no subtasks, so it is NEW and has no time window.
func (m *Manager) CreateEpic(e model.Epic) (model.Epic, error) {
	var created model.Epic
	err := m.mutate(func() error {
		epic := &model.Epic{
			ID:          m.ids.Next(),
			Name:        e.Name,
			Description: e.Description,
		}
		epic.Recompute(nil)
		m.epics[epic.ID] = epic
		created = epic.Clone()
		return nil
	})
	return created, err
}

// UpdateEpic copies the name and description of e onto the existing epic.
// Derived fields and the subtask list are left alone.
func (m *Manager) UpdateEpic(e model.Epic) (model.Epic, error) {
	var updated model.Epic
	err := m.mutate(func() error {
		existing, ok := m.epics[e.ID]
		if !ok {
			return notFound(model.KindEpic, e.ID)
		}
		existing.Name = e.Name
		existing.Description = e.Description
		updated = existing.Clone()
		return nil
	})
	return updated, err
}

// DeleteEpic removes an epic together with all of its subtasks.
func (m *Manager) DeleteEpic(id int) (model.Epic, error) {
	var deleted model.Epic
	err := m.mutate(func() error {
		e, ok := m.epics[id]
		if !ok {
			return notFound(model.KindEpic, id)
		}
		for _, sid := range e.SubtaskIDs {
			m.dropSubtask(sid)
		}
		m.forget(id)
		delete(m.epics, id)
		deleted = e.Clone()
		return nil
	})
	return deleted, err
}

// DeleteAllEpics removes every epic and, with them, every subtask.
func (m *Manager) DeleteAllEpics() error {
	return m.mutate(func() error {
		for id := range m.subtasks {
			m.dropSubtask(id)
		}
		for id := range m.epics {
			m.forget(id)
		}
		clear(m.epics)
		return nil
	})
}

// EpicSubtasks returns the subtasks of an epic in the epic's order. It does
// not record a view.
func (m *Manager) EpicSubtasks(id int) ([]model.Subtask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.epics[id]
	if !ok {
		return nil, notFound(model.KindEpic, id)
	}
	subtasks := make([]model.Subtask, 0, len(e.SubtaskIDs))
	for _, s := range m.liveSubtasks(e) {
		subtasks = append(subtasks, cloneSubtask(&s))
	}
	return subtasks, nil
}

// liveSubtasks resolves an epic's subtask ids against the subtask store.
func (m *Manager) liveSubtasks(e *model.Epic) []model.Subtask {
	subtasks := make([]model.Subtask, 0, len(e.SubtaskIDs))
	for _, id := range e.SubtaskIDs {
		if s, ok := m.subtasks[id]; ok {
			subtasks = append(subtasks, *s)
		}
	}
	return subtasks
}

func (m *Manager) recompute(e *model.Epic) {
	e.Recompute(m.liveSubtasks(e))
}
