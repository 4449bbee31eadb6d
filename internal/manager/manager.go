// Package manager owns the task, epic, and subtask collections and keeps them
// consistent.
//
// Every public method runs under a single per-manager mutex, reads included,
// because reads record history. Operations therefore behave as if they ran in
// some sequential order. Validation always happens before mutation, so a
// failed call leaves the manager untouched.
package manager

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/baiirun/tracker/internal/history"
	"github.com/baiirun/tracker/internal/model"
	"github.com/baiirun/tracker/internal/schedule"
)

// IDAllocator hands out identifiers shared by all item kinds. It starts at 0
// and never reuses a value.
type IDAllocator struct {
	next int
}

func NewIDAllocator(start int) *IDAllocator {
	return &IDAllocator{next: start}
}

// Next returns the current value and advances the counter.
func (a *IDAllocator) Next() int {
	id := a.next
	a.next++
	return id
}

// Peek returns the value Next would return without consuming it.
func (a *IDAllocator) Peek() int {
	return a.next
}

// Saver persists a full snapshot of the manager's items.
type Saver interface {
	Save(records []model.Record) error
}

type Option func(*Manager)

// WithSaver attaches a saver that receives a snapshot after every successful
// mutation. The snapshot is taken under the lock and written after it is
// released.
func WithSaver(s Saver) Option {
	return func(m *Manager) { m.saver = s }
}

// WithHistoryCapacity bounds the view history. Zero keeps it unbounded.
func WithHistoryCapacity(n int) Option {
	return func(m *Manager) { m.history = history.New(history.WithCapacity(n)) }
}

// WithAllocator replaces the default allocator that starts at 0.
func WithAllocator(a *IDAllocator) Option {
	return func(m *Manager) { m.ids = a }
}

type Manager struct {
	mu       sync.Mutex
	ids      *IDAllocator
	tasks    map[int]*model.Task
	epics    map[int]*model.Epic
	subtasks map[int]*model.Subtask
	schedule *schedule.Index
	history  *history.Tracker
	rev      uint64

	saver    Saver
	saveMu   sync.Mutex
	savedRev uint64
}

func New(opts ...Option) *Manager {
	m := &Manager{
		ids:      NewIDAllocator(0),
		tasks:    make(map[int]*model.Task),
		epics:    make(map[int]*model.Epic),
		subtasks: make(map[int]*model.Subtask),
		schedule: schedule.New(),
		history:  history.New(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type pendingSave struct {
	rev     uint64
	records []model.Record
}

// mutate runs fn under the lock. When fn succeeds and a saver is attached,
// the resulting state is saved once the lock is released. The lock is
// released even if fn panics.
func (m *Manager) mutate(fn func() error) error {
	pending, err := func() (*pendingSave, error) {
		m.mu.Lock()
		defer m.mu.Unlock()

		if err := fn(); err != nil {
			return nil, err
		}
		if m.saver == nil {
			return nil, nil
		}
		m.rev++
		return &pendingSave{rev: m.rev, records: m.recordsLocked()}, nil
	}()
	if err != nil || pending == nil {
		return err
	}
	return m.save(*pending)
}

// save writes snapshots one at a time and drops any snapshot older than the
// last one written.
func (m *Manager) save(p pendingSave) error {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	if p.rev <= m.savedRev {
		return nil
	}
	if err := m.saver.Save(p.records); err != nil {
		return err
	}
	m.savedRev = p.rev
	return nil
}

// Snapshot returns every item as records: tasks, then epics, then subtasks,
// each in ascending id order.
func (m *Manager) Snapshot() []model.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recordsLocked()
}

func (m *Manager) recordsLocked() []model.Record {
	records := make([]model.Record, 0, len(m.tasks)+len(m.epics)+len(m.subtasks))
	for _, id := range sortedKeys(m.tasks) {
		records = append(records, m.tasks[id].Record())
	}
	for _, id := range sortedKeys(m.epics) {
		records = append(records, m.epics[id].Record())
	}
	for _, id := range sortedKeys(m.subtasks) {
		records = append(records, m.subtasks[id].Record())
	}
	return records
}

// NextID returns the identifier the next create will receive.
func (m *Manager) NextID() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ids.Peek()
}

func sortedKeys[V any](items map[int]V) []int {
	return slices.Sorted(maps.Keys(items))
}

func notFound(kind model.Kind, id int) error {
	return fmt.Errorf("%s with id=%d does not exist: %w", kindName(kind), id, model.ErrNotFound)
}

func kindName(kind model.Kind) string {
	switch kind {
	case model.KindEpic:
		return "epic"
	case model.KindSubtask:
		return "subtask"
	}
	return "task"
}

// normalizeItem defaults an empty status to NEW and rejects unknown ones.
func normalizeItem(item model.Item) (model.Item, error) {
	item = item.Clone()
	if item.Status == "" {
		item.Status = model.StatusNew
	}
	if !item.Status.IsValid() {
		return model.Item{}, fmt.Errorf("invalid status: %s: %w", item.Status, model.ErrInvalid)
	}
	return item, nil
}

// forget drops id from the view history if present.
func (m *Manager) forget(id int) {
	if m.history.Contains(id) {
		_ = m.history.Remove(id)
	}
}
