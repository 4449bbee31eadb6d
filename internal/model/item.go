// Package model defines the tracker's work items: plain tasks, epics, and the
// subtasks that belong to an epic.
package model

import (
	"fmt"
	"math"
	"slices"
	"time"
)

type Kind string

const (
	KindTask    Kind = "TASK"
	KindEpic    Kind = "EPIC"
	KindSubtask Kind = "SUBTASK"
)

// IsValid reports whether k is a known item kind.
func (k Kind) IsValid() bool {
	switch k {
	case KindTask, KindEpic, KindSubtask:
		return true
	}
	return false
}

type Status string

// Declaration order matters: epic status derivation walks Statuses in this order.
const (
	StatusNew        Status = "NEW"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

// Statuses lists every status in declaration order.
var Statuses = []Status{StatusNew, StatusInProgress, StatusDone}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	return slices.Contains(Statuses, s)
}

// MaxMinutes is the largest minute count a time.Duration can hold.
const MaxMinutes = math.MaxInt64 / int64(time.Minute)

// Minutes converts a whole-minute count into a duration, rejecting counts
// that do not fit in a time.Duration.
func Minutes(n int64) (time.Duration, error) {
	if n > MaxMinutes || n < -MaxMinutes {
		return 0, fmt.Errorf("duration of %d minutes is out of range: %w", n, ErrInvalid)
	}
	return time.Duration(n) * time.Minute, nil
}

// Item holds the fields shared by tasks and subtasks.
type Item struct {
	ID          int
	Name        string
	Description string
	Status      Status
	StartTime   *time.Time
	Duration    *time.Duration
}

// EndTime returns start + duration, or nil when either is missing.
func (i Item) EndTime() *time.Time {
	if i.StartTime == nil || i.Duration == nil {
		return nil
	}
	end := i.StartTime.Add(*i.Duration)
	return &end
}

// Schedulable reports whether the item has a non-empty time window.
func (i Item) Schedulable() bool {
	end := i.EndTime()
	return end != nil && i.StartTime.Before(*end)
}

// Window returns the item's [start, end) bounds. ok is false when the item
// is not schedulable.
func (i Item) Window() (start, end time.Time, ok bool) {
	if !i.Schedulable() {
		return time.Time{}, time.Time{}, false
	}
	return *i.StartTime, *i.EndTime(), true
}

type Task struct {
	Item
}

// Record returns the kind-tagged flat view of t.
func (t Task) Record() Record {
	return recordOf(KindTask, t.Item)
}

// Subtask is a unit of work owned by an epic. EpicID is fixed at creation.
type Subtask struct {
	Item
	EpicID int
}

// Record returns the kind-tagged flat view of s.
func (s Subtask) Record() Record {
	r := recordOf(KindSubtask, s.Item)
	epicID := s.EpicID
	r.EpicID = &epicID
	return r
}

// Record is a flat view of any item kind, used for history, the prioritized
// schedule, and snapshots.
type Record struct {
	ID          int
	Kind        Kind
	Name        string
	Description string
	Status      Status
	StartTime   *time.Time
	Duration    *time.Duration
	EndTime     *time.Time
	EpicID      *int  // subtasks only
	SubtaskIDs  []int // epics only
}

func recordOf(kind Kind, i Item) Record {
	return Record{
		ID:          i.ID,
		Kind:        kind,
		Name:        i.Name,
		Description: i.Description,
		Status:      i.Status,
		StartTime:   copyTime(i.StartTime),
		Duration:    copyDuration(i.Duration),
		EndTime:     i.EndTime(),
	}
}

// Clone returns a deep copy of i so callers never share pointers with
// manager-owned state.
func (i Item) Clone() Item {
	i.StartTime = copyTime(i.StartTime)
	i.Duration = copyDuration(i.Duration)
	return i
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func copyDuration(d *time.Duration) *time.Duration {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}
