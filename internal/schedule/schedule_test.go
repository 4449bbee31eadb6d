package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/baiirun/tracker/internal/model"
)

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func win(from, to time.Duration) Window {
	return Window{Start: base.Add(from), End: base.Add(to)}
}

func mustInsert(t *testing.T, x *Index, id int, w Window) {
	t.Helper()
	if err := x.Insert(id, w); err != nil {
		t.Fatalf("failed to insert %d: %v", id, err)
	}
}

func ids(x *Index) []int {
	var out []int
	for _, e := range x.Entries() {
		out = append(out, e.ID)
	}
	return out
}

func TestWindow_Intersects(t *testing.T) {
	a := win(0, 10*time.Minute)

	tests := []struct {
		name string
		b    Window
		want bool
	}{
		{"touching end", win(10*time.Minute, 20*time.Minute), true},
		{"touching start", win(-5*time.Minute, 0), true},
		{"inside", win(2*time.Minute, 4*time.Minute), true},
		{"covering", win(-2*time.Minute, 12*time.Minute), true},
		{"overlap tail", win(5*time.Minute, 15*time.Minute), true},
		{"overlap head", win(-5*time.Minute, 5*time.Minute), true},
		{"after", win(11*time.Minute, 20*time.Minute), false},
		{"before", win(-20*time.Minute, -time.Minute), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Intersects(tt.b); got != tt.want {
				t.Errorf("Intersects() = %v, want %v", got, tt.want)
			}
			if got := tt.b.Intersects(a); got != tt.want {
				t.Errorf("Intersects() is not symmetric for %s", tt.name)
			}
		})
	}
}

func TestWindowOf(t *testing.T) {
	start := base
	d := 5 * time.Minute
	zero := time.Duration(0)

	if _, ok := WindowOf(model.Item{StartTime: &start, Duration: &d}); !ok {
		t.Error("expected window for item with start and duration")
	}
	if _, ok := WindowOf(model.Item{StartTime: &start, Duration: &zero}); ok {
		t.Error("expected no window for zero duration")
	}
	if _, ok := WindowOf(model.Item{Duration: &d}); ok {
		t.Error("expected no window without start")
	}
}

func TestInsert_RejectsOverlaps(t *testing.T) {
	x := New()
	mustInsert(t, x, 0, win(0, 10*time.Minute))

	candidates := []Window{
		win(5*time.Minute, 10*time.Minute),
		win(-5*time.Minute, 5*time.Minute),
		win(2*time.Minute, 4*time.Minute),
		win(-2*time.Minute, 12*time.Minute),
		win(10*time.Minute, 15*time.Minute),
	}
	for i, w := range candidates {
		err := x.Insert(i+1, w)
		if !errors.Is(err, model.ErrTimeIntersection) {
			t.Errorf("candidate %s: expected ErrTimeIntersection, got %v", w, err)
		}
	}

	if got := ids(x); len(got) != 1 || got[0] != 0 {
		t.Errorf("entries = %v, want [0]", got)
	}
}

func TestInsert_KeepsStartOrder(t *testing.T) {
	x := New()
	mustInsert(t, x, 1, win(time.Hour, 2*time.Hour))
	mustInsert(t, x, 2, win(0, 30*time.Minute))
	mustInsert(t, x, 3, win(3*time.Hour, 4*time.Hour))
	mustInsert(t, x, 4, win(150*time.Minute, 170*time.Minute))

	got := ids(x)
	want := []int{2, 1, 4, 3}
	if len(got) != len(want) {
		t.Fatalf("entries = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entries = %v, want %v", got, want)
		}
	}
}

func TestConflict_FindsEarlierLongEntry(t *testing.T) {
	x := New()
	mustInsert(t, x, 1, win(0, 10*time.Minute))
	mustInsert(t, x, 2, win(time.Hour, 2*time.Hour))

	c, ok := x.Conflict(win(90*time.Minute, 3*time.Hour), -1)
	if !ok || c.ID != 2 {
		t.Errorf("conflict = %v/%v, want item 2", c.ID, ok)
	}
	if x.Overlaps(win(20*time.Minute, 50*time.Minute), -1) {
		t.Error("expected gap between entries to be free")
	}
}

func TestConflict_ExcludesID(t *testing.T) {
	x := New()
	mustInsert(t, x, 1, win(0, 10*time.Minute))
	mustInsert(t, x, 2, win(20*time.Minute, 30*time.Minute))

	if x.Overlaps(win(22*time.Minute, 28*time.Minute), 2) {
		t.Error("excluded entry should not conflict")
	}
	if !x.Overlaps(win(5*time.Minute, 25*time.Minute), 2) {
		t.Error("expected conflict with entry 1 when 2 is excluded")
	}
}

func TestReplace_IgnoresOwnWindow(t *testing.T) {
	x := New()
	mustInsert(t, x, 1, win(0, 10*time.Minute))

	if err := x.Replace(1, win(5*time.Minute, 15*time.Minute), true); err != nil {
		t.Fatalf("replace: %v", err)
	}
	got := x.Entries()
	if len(got) != 1 || !got[0].Start.Equal(base.Add(5*time.Minute)) {
		t.Errorf("entries = %v, want shifted window", got)
	}
}

func TestReplace_ConflictLeavesIndexUnchanged(t *testing.T) {
	x := New()
	mustInsert(t, x, 1, win(0, 10*time.Minute))
	mustInsert(t, x, 2, win(20*time.Minute, 30*time.Minute))

	err := x.Replace(1, win(25*time.Minute, 40*time.Minute), true)
	if !errors.Is(err, model.ErrTimeIntersection) {
		t.Fatalf("expected ErrTimeIntersection, got %v", err)
	}

	got := x.Entries()
	if len(got) != 2 || got[0].ID != 1 || !got[0].Start.Equal(base) {
		t.Errorf("index changed after failed replace: %v", got)
	}
}

func TestReplace_Unschedulable(t *testing.T) {
	x := New()
	mustInsert(t, x, 1, win(0, 10*time.Minute))

	if err := x.Replace(1, Window{}, false); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if x.Contains(1) {
		t.Error("expected entry to be removed")
	}
}

func TestRemove(t *testing.T) {
	x := New()
	mustInsert(t, x, 1, win(0, 10*time.Minute))
	mustInsert(t, x, 2, win(time.Hour, 2*time.Hour))

	if !x.Remove(1) {
		t.Error("expected Remove to report presence")
	}
	if x.Remove(1) {
		t.Error("expected second Remove to report absence")
	}
	if x.Len() != 1 || x.Contains(1) {
		t.Errorf("entries = %v, want [2]", ids(x))
	}
	mustInsert(t, x, 3, win(0, 10*time.Minute))
}

func TestEntries_IsSnapshot(t *testing.T) {
	x := New()
	mustInsert(t, x, 1, win(0, 10*time.Minute))

	snap := x.Entries()
	x.Remove(1)

	if len(snap) != 1 || snap[0].ID != 1 {
		t.Errorf("snapshot changed after mutation: %v", snap)
	}
}
