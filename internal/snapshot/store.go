package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/baiirun/tracker/internal/manager"
	"github.com/baiirun/tracker/internal/model"
)

// Store loads and saves manager snapshots.
type Store interface {
	// Path names the snapshot location in errors.
	Path() string
	Load() ([]Row, error)
	Save(records []model.Record) error
}

// FileStore keeps a snapshot in a single file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

// Load reads the snapshot file. A missing file is an empty snapshot.
func (s *FileStore) Load() ([]Row, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &RestoreError{Path: s.path, Err: err}
	}
	defer f.Close()

	rows, err := Decode(f)
	if err != nil {
		var restoreErr *RestoreError
		if errors.As(err, &restoreErr) {
			restoreErr.Path = s.path
			return nil, restoreErr
		}
		return nil, &RestoreError{Path: s.path, Err: err}
	}
	return rows, nil
}

// Save writes records to a temporary file next to the snapshot and renames it
// into place, so readers never see a partial snapshot.
func (s *FileStore) Save(records []model.Record) error {
	if err := s.save(records); err != nil {
		return &SaveError{Path: s.path, Err: err}
	}
	return nil
}

func (s *FileStore) save(records []model.Record) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, records); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

// Restore builds a manager from the store's snapshot and attaches the store
// as its saver. Replay failures are reported as a *RestoreError naming the
// offending line.
func Restore(store Store, opts ...manager.Option) (*manager.Manager, error) {
	rows, err := store.Load()
	if err != nil {
		return nil, err
	}

	m := manager.New(append(opts, manager.WithSaver(store))...)
	records := make([]model.Record, len(rows))
	for i, row := range rows {
		records[i] = row.Record
	}
	if err := m.Replay(records); err != nil {
		var replayErr *manager.ReplayError
		if errors.As(err, &replayErr) {
			return nil, &RestoreError{Path: store.Path(), Line: rows[replayErr.Index].Line, Err: replayErr.Err}
		}
		return nil, &RestoreError{Path: store.Path(), Err: err}
	}
	return m, nil
}
