// Package history tracks the order in which items were viewed, most recent
// last, with each item appearing at most once.
package history

import (
	"container/list"
	"fmt"

	"github.com/baiirun/tracker/internal/model"
)

// Tracker is a deduplicated recency list. Add and Remove are O(1): entries
// live in a doubly linked list indexed by item id.
//
// Tracker is not safe for concurrent use; the manager serializes access.
type Tracker struct {
	order    *list.List
	nodes    map[int]*list.Element
	capacity int
}

type Option func(*Tracker)

// WithCapacity bounds the tracker to n entries, evicting the least recently
// viewed item when full. n <= 0 means unbounded, which is the default.
func WithCapacity(n int) Option {
	return func(t *Tracker) {
		if n > 0 {
			t.capacity = n
		}
	}
}

func New(opts ...Option) *Tracker {
	t := &Tracker{
		order: list.New(),
		nodes: make(map[int]*list.Element),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Add records a view of id. An id already present moves to the tail.
func (t *Tracker) Add(id int) {
	if el, ok := t.nodes[id]; ok {
		t.order.MoveToBack(el)
		return
	}
	t.nodes[id] = t.order.PushBack(id)
	if t.capacity > 0 && t.order.Len() > t.capacity {
		oldest := t.order.Front()
		t.order.Remove(oldest)
		delete(t.nodes, oldest.Value.(int))
	}
}

// Remove drops id from the history. Removing an id that is not tracked
// returns an error wrapping model.ErrNotFound.
func (t *Tracker) Remove(id int) error {
	el, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("history entry %d: %w", id, model.ErrNotFound)
	}
	t.order.Remove(el)
	delete(t.nodes, id)
	return nil
}

// Contains reports whether id is tracked.
func (t *Tracker) Contains(id int) bool {
	_, ok := t.nodes[id]
	return ok
}

func (t *Tracker) Len() int {
	return t.order.Len()
}

// List returns the tracked ids from oldest to most recent view. The slice is
// a copy and is not affected by later calls.
func (t *Tracker) List() []int {
	ids := make([]int, 0, t.order.Len())
	for el := t.order.Front(); el != nil; el = el.Next() {
		ids = append(ids, el.Value.(int))
	}
	return ids
}

// Clear removes every entry.
func (t *Tracker) Clear() {
	t.order.Init()
	clear(t.nodes)
}
