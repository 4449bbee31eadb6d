package manager

import (
	"github.com/baiirun/tracker/internal/model"
	"github.com/baiirun/tracker/internal/schedule"
)

// ListTasks returns all tasks in ascending id order.
func (m *Manager) ListTasks() []model.Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	tasks := make([]model.Task, 0, len(m.tasks))
	for _, id := range sortedKeys(m.tasks) {
		tasks = append(tasks, cloneTask(m.tasks[id]))
	}
	return tasks
}

// GetTask returns the task with the given id and records the view in history.
func (m *Manager) GetTask(id int) (model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok {
		return model.Task{}, notFound(model.KindTask, id)
	}
	m.history.Add(id)
	return cloneTask(t), nil
}

// CreateTask stores t under a newly allocated id. Any id set on t is ignored.
// A schedulable task that overlaps an existing window is rejected.
func (m *Manager) CreateTask(t model.Task) (model.Task, error) {
	var created model.Task
	err := m.mutate(func() error {
		item, err := normalizeItem(t.Item)
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
		m.tasks[item.ID] = &model.Task{Item: item}
		created = cloneTask(m.tasks[item.ID])
		return nil
	})
	return created, err
}

// UpdateTask replaces every field of an existing task. The task's own
// previous window is ignored when checking for overlaps.
func (m *Manager) UpdateTask(t model.Task) (model.Task, error) {
	var updated model.Task
	err := m.mutate(func() error {
		if _, ok := m.tasks[t.ID]; !ok {
			return notFound(model.KindTask, t.ID)
		}
		item, err := normalizeItem(t.Item)
		if err != nil {
			return err
		}
		w, ok := schedule.WindowOf(item)
		if err := m.schedule.Replace(item.ID, w, ok); err != nil {
			return err
		}
		m.tasks[item.ID] = &model.Task{Item: item}
		updated = cloneTask(m.tasks[item.ID])
		return nil
	})
	return updated, err
}

// DeleteTask removes a task from the collection, the schedule, and the view
// history, and returns the removed task.
func (m *Manager) DeleteTask(id int) (model.Task, error) {
	var deleted model.Task
	err := m.mutate(func() error {
		t, ok := m.tasks[id]
		if !ok {
			return notFound(model.KindTask, id)
		}
		m.schedule.Remove(id)
		m.forget(id)
		delete(m.tasks, id)
		deleted = cloneTask(t)
		return nil
	})
	return deleted, err
}

// DeleteAllTasks removes every task.
func (m *Manager) DeleteAllTasks() error {
	return m.mutate(func() error {
		for id := range m.tasks {
			m.schedule.Remove(id)
			m.forget(id)
		}
		clear(m.tasks)
		return nil
	})
}

func cloneTask(t *model.Task) model.Task {
	return model.Task{Item: t.Item.Clone()}
}
