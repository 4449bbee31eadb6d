package model

import (
	"fmt"
	"slices"
	"time"
)

// Epic groups subtasks. Its status and time window are derived from the
// subtasks via Recompute and cannot be assigned directly.
type Epic struct {
	ID          int
	Name        string
	Description string
	SubtaskIDs  []int

	status    Status
	startTime *time.Time
	endTime   *time.Time
	duration  *time.Duration
}

// Status returns the derived status. An epic without subtasks is NEW.
func (e Epic) Status() Status {
	if e.status == "" {
		return StatusNew
	}
	return e.status
}

// SetStatus always fails: epic status is derived from subtasks.
func (e *Epic) SetStatus(s Status) error {
	return fmt.Errorf("epic %d: status %s cannot be set directly: %w", e.ID, s, ErrForbidden)
}

func (e Epic) StartTime() *time.Time    { return copyTime(e.startTime) }
func (e Epic) EndTime() *time.Time      { return copyTime(e.endTime) }
func (e Epic) Duration() *time.Duration { return copyDuration(e.duration) }

// Clone returns a copy of e with its own subtask id slice.
func (e Epic) Clone() Epic {
	e.SubtaskIDs = slices.Clone(e.SubtaskIDs)
	e.startTime = copyTime(e.startTime)
	e.endTime = copyTime(e.endTime)
	e.duration = copyDuration(e.duration)
	return e
}

// DetachSubtask removes id from the subtask list.
func (e *Epic) DetachSubtask(id int) {
	e.SubtaskIDs = slices.DeleteFunc(e.SubtaskIDs, func(v int) bool { return v == id })
}

// Record returns the kind-tagged flat view of e.
func (e Epic) Record() Record {
	return Record{
		ID:          e.ID,
		Kind:        KindEpic,
		Name:        e.Name,
		Description: e.Description,
		Status:      e.Status(),
		StartTime:   e.StartTime(),
		Duration:    e.Duration(),
		EndTime:     e.EndTime(),
		SubtaskIDs:  slices.Clone(e.SubtaskIDs),
	}
}

// EpicState is the derived part of an epic.
type EpicState struct {
	Status    Status
	StartTime *time.Time
	EndTime   *time.Time
	Duration  *time.Duration
}

// Aggregate derives an epic's state from its live subtasks.
//
// Status is the first entry of Statuses that every subtask shares, falling
// back to IN_PROGRESS when they disagree; no subtasks means NEW. The window
// spans the subtasks that have both a start and a duration: earliest start,
// latest end, and the sum of their durations. With no such subtasks all three
// are nil.
func Aggregate(subtasks []Subtask) EpicState {
	state := EpicState{Status: StatusNew}
	if len(subtasks) > 0 {
		state.Status = StatusInProgress
		for _, s := range Statuses {
			all := true
			for _, st := range subtasks {
				if st.Status != s {
					all = false
					break
				}
			}
			if all {
				state.Status = s
				break
			}
		}
	}

	var (
		start, end time.Time
		total      time.Duration
		timed      int
	)
	for _, st := range subtasks {
		if st.StartTime == nil || st.Duration == nil {
			continue
		}
		s, e := *st.StartTime, st.StartTime.Add(*st.Duration)
		if timed == 0 || s.Before(start) {
			start = s
		}
		if timed == 0 || e.After(end) {
			end = e
		}
		total += *st.Duration
		timed++
	}
	if timed > 0 {
		state.StartTime = &start
		state.EndTime = &end
		state.Duration = &total
	}
	return state
}

// Recompute replaces the derived fields with Aggregate(subtasks). Calling it
// again with the same subtasks yields the same epic.
func (e *Epic) Recompute(subtasks []Subtask) {
	state := Aggregate(subtasks)
	e.status = state.Status
	e.startTime = state.StartTime
	e.endTime = state.EndTime
	e.duration = state.Duration
}
