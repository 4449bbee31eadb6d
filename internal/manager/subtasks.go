package manager

import (
	"fmt"

	"github.com/baiirun/tracker/internal/model"
	"github.com/baiirun/tracker/internal/schedule"
)

// ListSubtasks returns all subtasks in ascending id order.
func (m *Manager) ListSubtasks() []model.Subtask {
	m.mu.Lock()
	defer m.mu.Unlock()

	subtasks := make([]model.Subtask, 0, len(m.subtasks))
	for _, id := range sortedKeys(m.subtasks) {
		subtasks = append(subtasks, cloneSubtask(m.subtasks[id]))
	}
	return subtasks
}

// GetSubtask returns the subtask with the given id and records the view in
// history.
func (m *Manager) GetSubtask(id int) (model.Subtask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.subtasks[id]
	if !ok {
		return model.Subtask{}, notFound(model.KindSubtask, id)
	}
	m.history.Add(id)
	return cloneSubtask(s), nil
}

// CreateSubtask stores s under a new id, attaches it to its epic, and
// re-derives the epic. The epic must exist.
func (m *Manager) CreateSubtask(s model.Subtask) (model.Subtask, error) {
	var created model.Subtask
	err := m.mutate(func() error {
		epic, ok := m.epics[s.EpicID]
		if !ok {
			return notFound(model.KindEpic, s.EpicID)
		}
		item, err := normalizeItem(s.Item)
		if err != nil {
			return err
		}
		item.ID = m.ids.Peek()
		if w, ok := schedule.WindowOf(item); ok {
			if err := m.schedule.Insert(item.ID, w); err != nil {
				return err
			}
		}
		m.ids.Next()
		m.subtasks[item.ID] = &model.Subtask{Item: item, EpicID: epic.ID}
		epic.SubtaskIDs = append(epic.SubtaskIDs, item.ID)
		m.recompute(epic)
		created = cloneSubtask(m.subtasks[item.ID])
		return nil
	})
	return created, err
}

// UpdateSubtask replaces the fields of an existing subtask and re-derives its
// epic. The epic id cannot change.
func (m *Manager) UpdateSubtask(s model.Subtask) (model.Subtask, error) {
	var updated model.Subtask
	err := m.mutate(func() error {
		existing, ok := m.subtasks[s.ID]
		if !ok {
			return notFound(model.KindSubtask, s.ID)
		}
		if s.EpicID != existing.EpicID {
			return fmt.Errorf("subtask %d belongs to epic %d, cannot move to %d: %w",
				s.ID, existing.EpicID, s.EpicID, model.ErrForbidden)
		}
		item, err := normalizeItem(s.Item)
		if err != nil {
			return err
		}
		w, ok := schedule.WindowOf(item)
		if err := m.schedule.Replace(item.ID, w, ok); err != nil {
			return err
		}
		m.subtasks[item.ID] = &model.Subtask{Item: item, EpicID: existing.EpicID}
		if epic, ok := m.epics[existing.EpicID]; ok {
			m.recompute(epic)
		}
		updated = cloneSubtask(m.subtasks[item.ID])
		return nil
	})
	return updated, err
}

// DeleteSubtask removes a subtask, detaches it from its epic, and re-derives
// the epic.
func (m *Manager) DeleteSubtask(id int) (model.Subtask, error) {
	var deleted model.Subtask
	err := m.mutate(func() error {
		s, ok := m.subtasks[id]
		if !ok {
			return notFound(model.KindSubtask, id)
		}
		deleted = cloneSubtask(s)
		m.dropSubtask(id)
		if epic, ok := m.epics[s.EpicID]; ok {
			epic.DetachSubtask(id)
			m.recompute(epic)
		}
		return nil
	})
	return deleted, err
}

// DeleteAllSubtasks removes every subtask and resets the affected epics.
func (m *Manager) DeleteAllSubtasks() error {
	return m.mutate(func() error {
		for id := range m.subtasks {
			m.dropSubtask(id)
		}
		for _, epic := range m.epics {
			if len(epic.SubtaskIDs) == 0 {
				continue
			}
			epic.SubtaskIDs = nil
			m.recompute(epic)
		}
		return nil
	})
}

// dropSubtask removes a subtask from the store, the schedule, and history.
// The owning epic is left for the caller to fix up.
func (m *Manager) dropSubtask(id int) {
	m.schedule.Remove(id)
	m.forget(id)
	delete(m.subtasks, id)
}

func cloneSubtask(s *model.Subtask) model.Subtask {
	return model.Subtask{Item: s.Item.Clone(), EpicID: s.EpicID}
}
