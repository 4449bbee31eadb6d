package history

import (
	"errors"
	"slices"
	"testing"

	"github.com/baiirun/tracker/internal/model"
)

func newTracker(t *testing.T, ids ...int) *Tracker {
	t.Helper()
	tr := New()
	for _, id := range ids {
		tr.Add(id)
	}
	return tr
}

func TestAdd_Order(t *testing.T) {
	tr := newTracker(t, 0, 1, 2)

	if got := tr.List(); !slices.Equal(got, []int{0, 1, 2}) {
		t.Errorf("history = %v, want [0 1 2]", got)
	}
}

func TestAdd_MovesExistingToTail(t *testing.T) {
	tr := newTracker(t, 0, 1, 2)
	tr.Add(1)

	if got := tr.List(); !slices.Equal(got, []int{0, 2, 1}) {
		t.Errorf("history = %v, want [0 2 1]", got)
	}
	if tr.Len() != 3 {
		t.Errorf("len = %d, want 3", tr.Len())
	}
}

func TestAdd_SameIDTwice(t *testing.T) {
	tr := newTracker(t, 5, 5, 5)

	if got := tr.List(); !slices.Equal(got, []int{5}) {
		t.Errorf("history = %v, want [5]", got)
	}
}

func TestRemove(t *testing.T) {
	tr := newTracker(t, 0, 1, 2)

	if err := tr.Remove(1); err != nil {
		t.Fatalf("failed to remove: %v", err)
	}
	if got := tr.List(); !slices.Equal(got, []int{0, 2}) {
		t.Errorf("history = %v, want [0 2]", got)
	}
}

func TestRemove_HeadAndTail(t *testing.T) {
	tr := newTracker(t, 0, 1, 2)

	if err := tr.Remove(0); err != nil {
		t.Fatalf("failed to remove head: %v", err)
	}
	if err := tr.Remove(2); err != nil {
		t.Fatalf("failed to remove tail: %v", err)
	}
	if got := tr.List(); !slices.Equal(got, []int{1}) {
		t.Errorf("history = %v, want [1]", got)
	}
}

func TestRemove_NotFound(t *testing.T) {
	tr := newTracker(t, 0, 1, 2)

	err := tr.Remove(3)
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if tr.Len() != 3 {
		t.Errorf("len = %d, want 3", tr.Len())
	}
}

func TestList_IsSnapshot(t *testing.T) {
	tr := newTracker(t, 0, 1)

	snap := tr.List()
	tr.Add(0)
	tr.Add(7)

	if !slices.Equal(snap, []int{0, 1}) {
		t.Errorf("snapshot changed after mutation: %v", snap)
	}
}

func TestList_Empty(t *testing.T) {
	tr := New()

	got := tr.List()
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestClear(t *testing.T) {
	tr := newTracker(t, 0, 1, 2)
	tr.Clear()

	if tr.Len() != 0 || tr.Contains(1) {
		t.Errorf("expected empty tracker, got %v", tr.List())
	}
	tr.Add(1)
	if got := tr.List(); !slices.Equal(got, []int{1}) {
		t.Errorf("history = %v, want [1]", got)
	}
}

func TestWithCapacity_EvictsOldest(t *testing.T) {
	tr := New(WithCapacity(3))
	for _, id := range []int{1, 2, 3, 4} {
		tr.Add(id)
	}

	if got := tr.List(); !slices.Equal(got, []int{2, 3, 4}) {
		t.Errorf("history = %v, want [2 3 4]", got)
	}
	if tr.Contains(1) {
		t.Error("expected evicted id to be untracked")
	}
}

func TestWithCapacity_RevisitDoesNotEvict(t *testing.T) {
	tr := New(WithCapacity(3))
	for _, id := range []int{1, 2, 3, 1} {
		tr.Add(id)
	}

	if got := tr.List(); !slices.Equal(got, []int{2, 3, 1}) {
		t.Errorf("history = %v, want [2 3 1]", got)
	}
}

func TestWithCapacity_NonPositiveIsUnbounded(t *testing.T) {
	tr := New(WithCapacity(0))
	for id := range 100 {
		tr.Add(id)
	}

	if tr.Len() != 100 {
		t.Errorf("len = %d, want 100", tr.Len())
	}
}
