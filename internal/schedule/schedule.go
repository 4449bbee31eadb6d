// Package schedule keeps schedulable items ordered by start time and rejects
// windows that overlap one another.
//
// Windows are compared with inclusive bounds: [s1,e1) and [s2,e2) conflict
// when s1 <= e2 and s2 <= e1, so an item ending exactly when another starts
// is a conflict.
package schedule

import (
	"fmt"
	"slices"
	"time"

	"github.com/baiirun/tracker/internal/model"
)

type Window struct {
	Start time.Time
	End   time.Time
}

// Intersects reports whether w and o share an instant, bounds included.
func (w Window) Intersects(o Window) bool {
	return !w.Start.After(o.End) && !o.Start.After(w.End)
}

func (w Window) String() string {
	return fmt.Sprintf("[%s, %s)", w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
}

// WindowOf returns the window of an item, or ok=false when it has no start,
// no duration, or a start that does not precede its end.
func WindowOf(item model.Item) (Window, bool) {
	start, end, ok := item.Window()
	if !ok {
		return Window{}, false
	}
	return Window{Start: start, End: end}, true
}

type Entry struct {
	ID int
	Window
}

// Index holds non-overlapping entries sorted by start time. It is not safe
// for concurrent use; the manager serializes access.
type Index struct {
	entries []Entry
	byID    map[int]Window
}

func New() *Index {
	return &Index{byID: make(map[int]Window)}
}

func compareEntries(a, b Entry) int {
	if c := a.Start.Compare(b.Start); c != 0 {
		return c
	}
	return a.ID - b.ID
}

// Conflict returns the first indexed entry, other than excludeID, whose window
// intersects w.
func (x *Index) Conflict(w Window, excludeID int) (Entry, bool) {
	// Entries never overlap, so ends increase along with starts. The only
	// candidates are the entries starting at or before w.End, and of those the
	// latest-starting non-excluded one has the latest end.
	n, _ := slices.BinarySearchFunc(x.entries, w.End, func(e Entry, t time.Time) int {
		if e.Start.After(t) {
			return 1
		}
		return -1
	})
	for i := n - 1; i >= 0; i-- {
		e := x.entries[i]
		if e.ID == excludeID {
			continue
		}
		if !e.End.Before(w.Start) {
			return e, true
		}
		return Entry{}, false
	}
	return Entry{}, false
}

// Overlaps reports whether w intersects any entry other than excludeID.
func (x *Index) Overlaps(w Window, excludeID int) bool {
	_, ok := x.Conflict(w, excludeID)
	return ok
}

// Insert adds id with window w. On conflict the index is unchanged and the
// error wraps model.ErrTimeIntersection.
func (x *Index) Insert(id int, w Window) error {
	if c, ok := x.Conflict(w, id); ok {
		return conflictError(w, c)
	}
	x.Remove(id)
	x.insert(Entry{ID: id, Window: w})
	return nil
}

func (x *Index) insert(e Entry) {
	i, _ := slices.BinarySearchFunc(x.entries, e, compareEntries)
	x.entries = slices.Insert(x.entries, i, e)
	x.byID[e.ID] = e.Window
}

// Remove drops id from the index and reports whether it was present.
func (x *Index) Remove(id int) bool {
	w, ok := x.byID[id]
	if !ok {
		return false
	}
	i, found := slices.BinarySearchFunc(x.entries, Entry{ID: id, Window: w}, compareEntries)
	if found {
		x.entries = slices.Delete(x.entries, i, i+1)
	}
	delete(x.byID, id)
	return true
}

// Replace swaps the entry for id with window w, or just removes it when
// schedulable is false. The old window is ignored while checking for
// conflicts. On conflict the index is left exactly as it was.
func (x *Index) Replace(id int, w Window, schedulable bool) error {
	if !schedulable {
		x.Remove(id)
		return nil
	}
	if c, ok := x.Conflict(w, id); ok {
		return conflictError(w, c)
	}
	x.Remove(id)
	x.insert(Entry{ID: id, Window: w})
	return nil
}

func (x *Index) Contains(id int) bool {
	_, ok := x.byID[id]
	return ok
}

func (x *Index) Len() int {
	return len(x.entries)
}

// Entries returns a copy of the entries in ascending start order.
func (x *Index) Entries() []Entry {
	return slices.Clone(x.entries)
}

func conflictError(w Window, c Entry) error {
	return fmt.Errorf("window %s conflicts with item %d %s: %w", w, c.ID, c.Window, model.ErrTimeIntersection)
}
