package model

import (
	"errors"
	"testing"
	"time"
)

func sub(status Status) Subtask {
	return Subtask{Item: Item{Status: status}}
}

func timedSub(status Status, start time.Time, d time.Duration) Subtask {
	s := sub(status)
	s.StartTime = &start
	s.Duration = &d
	return s
}

func TestAggregate_Status(t *testing.T) {
	tests := []struct {
		name     string
		subtasks []Subtask
		want     Status
	}{
		{"no subtasks", nil, StatusNew},
		{"all new", []Subtask{sub(StatusNew), sub(StatusNew)}, StatusNew},
		{"all done", []Subtask{sub(StatusDone), sub(StatusDone)}, StatusDone},
		{"all in progress", []Subtask{sub(StatusInProgress)}, StatusInProgress},
		{"new and done", []Subtask{sub(StatusNew), sub(StatusDone)}, StatusInProgress},
		{"new and in progress", []Subtask{sub(StatusNew), sub(StatusInProgress)}, StatusInProgress},
		{"done and in progress", []Subtask{sub(StatusDone), sub(StatusInProgress)}, StatusInProgress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Aggregate(tt.subtasks).Status; got != tt.want {
				t.Errorf("status = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAggregate_Window(t *testing.T) {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	state := Aggregate([]Subtask{
		timedSub(StatusNew, base.Add(time.Hour), 30*time.Minute),
		timedSub(StatusNew, base, 15*time.Minute),
		sub(StatusNew), // untimed subtasks are ignored
	})

	if state.StartTime == nil || !state.StartTime.Equal(base) {
		t.Errorf("start = %v, want %v", state.StartTime, base)
	}
	if want := base.Add(90 * time.Minute); state.EndTime == nil || !state.EndTime.Equal(want) {
		t.Errorf("end = %v, want %v", state.EndTime, want)
	}
	if state.Duration == nil || *state.Duration != 45*time.Minute {
		t.Errorf("duration = %v, want 45m", state.Duration)
	}
}

func TestAggregate_NoTimedSubtasks(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	onlyStart := sub(StatusNew)
	onlyStart.StartTime = &start

	state := Aggregate([]Subtask{sub(StatusNew), onlyStart})
	if state.StartTime != nil || state.EndTime != nil || state.Duration != nil {
		t.Errorf("expected undefined window, got start=%v end=%v duration=%v",
			state.StartTime, state.EndTime, state.Duration)
	}
}

func TestEpic_RecomputeIsIdempotent(t *testing.T) {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	subtasks := []Subtask{
		timedSub(StatusDone, base, time.Hour),
		timedSub(StatusNew, base.Add(2*time.Hour), time.Hour),
	}

	var e Epic
	e.Recompute(subtasks)
	first := e.Record()
	e.Recompute(subtasks)
	second := e.Record()

	if first.Status != second.Status || !first.StartTime.Equal(*second.StartTime) ||
		!first.EndTime.Equal(*second.EndTime) || *first.Duration != *second.Duration {
		t.Errorf("recompute not idempotent: %+v vs %+v", first, second)
	}
}

func TestEpic_SetStatusForbidden(t *testing.T) {
	e := Epic{ID: 3}

	err := e.SetStatus(StatusDone)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if e.Status() != StatusNew {
		t.Errorf("status = %q, want %q", e.Status(), StatusNew)
	}
}

func TestEpic_DetachSubtask(t *testing.T) {
	e := Epic{SubtaskIDs: []int{1, 2, 3}}
	e.DetachSubtask(2)

	if len(e.SubtaskIDs) != 2 || e.SubtaskIDs[0] != 1 || e.SubtaskIDs[1] != 3 {
		t.Errorf("subtask ids = %v, want [1 3]", e.SubtaskIDs)
	}
}

func TestEpic_CloneDoesNotAlias(t *testing.T) {
	e := Epic{SubtaskIDs: []int{1, 2}}
	clone := e.Clone()
	clone.SubtaskIDs[0] = 99

	if e.SubtaskIDs[0] != 1 {
		t.Error("clone shares subtask ids with original")
	}
}
