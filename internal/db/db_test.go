package db

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/baiirun/tracker/internal/model"
	"github.com/baiirun/tracker/internal/snapshot"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}

	if err := db.Init(); err != nil {
		t.Fatalf("failed to init db: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subdir", "test.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	// Should create parent directories
	if _, err := os.Stat(filepath.Dir(path)); os.IsNotExist(err) {
		t.Error("expected directory to be created")
	}
	if db.Path() != path {
		t.Errorf("path = %q, want %q", db.Path(), path)
	}
}

func TestDefaultPath(t *testing.T) {
	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("failed to get default path: %v", err)
	}

	if !filepath.IsAbs(path) {
		t.Errorf("expected absolute path, got %q", path)
	}

	if !strings.HasSuffix(path, filepath.Join(".tracker", "tracker.db")) {
		t.Errorf("expected path to end with .tracker/tracker.db, got %q", path)
	}
}

func TestInit_Idempotent(t *testing.T) {
	db := setupTestDB(t)

	if err := db.Init(); err != nil {
		t.Fatalf("second init failed: %v", err)
	}
}

func TestSaveLoad(t *testing.T) {
	db := setupTestDB(t)

	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	d := 45 * time.Minute
	epicID := 1
	records := []model.Record{
		{ID: 0, Kind: model.KindTask, Name: "task", Status: model.StatusInProgress, Description: "desc", StartTime: &start, Duration: &d},
		{ID: 1, Kind: model.KindEpic, Name: "epic", Status: model.StatusNew},
		{ID: 2, Kind: model.KindSubtask, Name: "sub", Status: model.StatusDone, EpicID: &epicID},
	}
	if err := db.Save(records); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	rows, err := db.Load()
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	for i, row := range rows {
		if row.Line != i+1 {
			t.Errorf("row %d line = %d, want %d", i, row.Line, i+1)
		}
		if row.Record.ID != records[i].ID || row.Record.Kind != records[i].Kind {
			t.Errorf("row %d = %+v, want %+v", i, row.Record, records[i])
		}
	}

	task := rows[0].Record
	if !task.StartTime.Equal(start) || *task.Duration != d || task.Description != "desc" {
		t.Errorf("task = %+v", task)
	}
	if task.EndTime == nil || !task.EndTime.Equal(start.Add(d)) {
		t.Errorf("end = %v", task.EndTime)
	}
	if rows[1].Record.StartTime != nil || rows[1].Record.EpicID != nil {
		t.Errorf("epic = %+v", rows[1].Record)
	}
	if sub := rows[2].Record; sub.EpicID == nil || *sub.EpicID != 1 {
		t.Errorf("subtask epic = %v", sub.EpicID)
	}
}

func TestSave_Replaces(t *testing.T) {
	db := setupTestDB(t)

	first := []model.Record{
		{ID: 0, Kind: model.KindTask, Name: "a", Status: model.StatusNew},
		{ID: 1, Kind: model.KindTask, Name: "b", Status: model.StatusNew},
	}
	if err := db.Save(first); err != nil {
		t.Fatalf("failed to save: %v", err)
	}
	if err := db.Save(first[1:]); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	rows, err := db.Load()
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if len(rows) != 1 || rows[0].Record.Name != "b" {
		t.Errorf("rows = %+v, want only b", rows)
	}

	savedAt, err := db.SavedAt()
	if err != nil {
		t.Fatalf("failed to get save time: %v", err)
	}
	if savedAt.IsZero() {
		t.Error("expected save time to be recorded")
	}
}

func TestSave_DuplicateIDRollsBack(t *testing.T) {
	db := setupTestDB(t)

	if err := db.Save([]model.Record{{ID: 0, Kind: model.KindTask, Name: "keep", Status: model.StatusNew}}); err != nil {
		t.Fatalf("failed to save: %v", err)
	}
	err := db.Save([]model.Record{
		{ID: 5, Kind: model.KindTask, Name: "a", Status: model.StatusNew},
		{ID: 5, Kind: model.KindTask, Name: "b", Status: model.StatusNew},
	})
	var saveErr *snapshot.SaveError
	if !errors.As(err, &saveErr) {
		t.Fatalf("expected *SaveError, got %v", err)
	}

	rows, err := db.Load()
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if len(rows) != 1 || rows[0].Record.Name != "keep" {
		t.Errorf("failed save must roll back, got %+v", rows)
	}
}

func TestLoad_InvalidRow(t *testing.T) {
	db := setupTestDB(t)

	if _, err := db.Exec(`INSERT INTO items (seq, id, kind, name, status) VALUES (1, 0, 'TASK', 'a', 'NEW'), (2, 1, 'STORY', 'b', 'NEW')`); err != nil {
		t.Fatalf("failed to insert: %v", err)
	}

	_, err := db.Load()
	var restoreErr *snapshot.RestoreError
	if !errors.As(err, &restoreErr) {
		t.Fatalf("expected *RestoreError, got %v", err)
	}
	if restoreErr.Line != 2 {
		t.Errorf("line = %d, want 2", restoreErr.Line)
	}
	if !errors.Is(err, model.ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestLoad_DurationOverflow(t *testing.T) {
	db := setupTestDB(t)

	if _, err := db.Exec(`INSERT INTO items (seq, id, kind, name, status, start_ms, duration_min) VALUES (1, 0, 'TASK', 'a', 'NEW', 1700000000000, 300000000)`); err != nil {
		t.Fatalf("failed to insert: %v", err)
	}

	_, err := db.Load()
	var restoreErr *snapshot.RestoreError
	if !errors.As(err, &restoreErr) {
		t.Fatalf("expected *RestoreError, got %v", err)
	}
	if restoreErr.Line != 1 {
		t.Errorf("line = %d, want 1", restoreErr.Line)
	}
	if !errors.Is(err, model.ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestRestore(t *testing.T) {
	db := setupTestDB(t)

	m, err := snapshot.Restore(db)
	if err != nil {
		t.Fatalf("failed to restore: %v", err)
	}
	epic, err := m.CreateEpic(model.Epic{Name: "epic"})
	if err != nil {
		t.Fatalf("failed to create epic: %v", err)
	}
	if _, err := m.CreateSubtask(model.Subtask{Item: model.Item{Name: "s", Status: model.StatusDone}, EpicID: epic.ID}); err != nil {
		t.Fatalf("failed to create subtask: %v", err)
	}

	restored, err := snapshot.Restore(db)
	if err != nil {
		t.Fatalf("failed to restore: %v", err)
	}
	got, err := restored.GetEpic(epic.ID)
	if err != nil {
		t.Fatalf("failed to get epic: %v", err)
	}
	if got.Status() != model.StatusDone || len(got.SubtaskIDs) != 1 {
		t.Errorf("epic = %+v", got.Record())
	}
	if restored.NextID() != 2 {
		t.Errorf("next id = %d, want 2", restored.NextID())
	}
}
