package db

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/baiirun/tracker/internal/model"
	"github.com/baiirun/tracker/internal/snapshot"
)

// Save replaces the stored snapshot with records in a single transaction.
// Rows keep the order of records, which Load reproduces.
func (db *DB) Save(records []model.Record) error {
	if err := db.save(records); err != nil {
		return &snapshot.SaveError{Path: db.path, Err: err}
	}
	return nil
}

func (db *DB) save(records []model.Record) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM items`); err != nil {
		return fmt.Errorf("failed to clear items: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO items (seq, id, kind, name, status, description, start_ms, duration_min, epic_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		var startMs, durationMin, epicID sql.NullInt64
		if r.StartTime != nil {
			startMs = sql.NullInt64{Int64: r.StartTime.UnixMilli(), Valid: true}
		}
		if r.Duration != nil {
			durationMin = sql.NullInt64{Int64: int64(*r.Duration / time.Minute), Valid: true}
		}
		if r.EpicID != nil {
			epicID = sql.NullInt64{Int64: int64(*r.EpicID), Valid: true}
		}
		_, err := stmt.Exec(i+1, r.ID, r.Kind, r.Name, r.Status, r.Description, startMs, durationMin, epicID)
		if err != nil {
			return fmt.Errorf("failed to insert id=%d: %w", r.ID, err)
		}
	}

	if _, err := tx.Exec(`
		INSERT INTO meta (key, value) VALUES ('saved_at', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		strconv.FormatInt(time.Now().UnixMilli(), 10)); err != nil {
		return fmt.Errorf("failed to record save time: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Load returns the stored rows in save order. Each row's Line is its
// 1-based position.
func (db *DB) Load() ([]snapshot.Row, error) {
	rows, err := db.Query(`
		SELECT seq, id, kind, name, status, description, start_ms, duration_min, epic_id
		FROM items ORDER BY seq`)
	if err != nil {
		return nil, &snapshot.RestoreError{Path: db.path, Err: fmt.Errorf("failed to query items: %w", err)}
	}
	defer rows.Close()

	var result []snapshot.Row
	for rows.Next() {
		var (
			seq                          int
			r                            model.Record
			description                  sql.NullString
			startMs, durationMin, epicID sql.NullInt64
		)
		if err := rows.Scan(&seq, &r.ID, &r.Kind, &r.Name, &r.Status, &description, &startMs, &durationMin, &epicID); err != nil {
			return nil, &snapshot.RestoreError{Path: db.path, Line: len(result) + 1, Err: fmt.Errorf("failed to scan item: %w", err)}
		}
		line := len(result) + 1

		if !r.Kind.IsValid() {
			return nil, &snapshot.RestoreError{Path: db.path, Line: line, Err: fmt.Errorf("invalid type %q: %w", r.Kind, model.ErrInvalid)}
		}
		if !r.Status.IsValid() {
			return nil, &snapshot.RestoreError{Path: db.path, Line: line, Err: fmt.Errorf("invalid status %q: %w", r.Status, model.ErrInvalid)}
		}

		r.Description = description.String
		if startMs.Valid {
			start := time.UnixMilli(startMs.Int64).UTC()
			r.StartTime = &start
		}
		if durationMin.Valid {
			d, err := model.Minutes(durationMin.Int64)
			if err != nil {
				return nil, &snapshot.RestoreError{Path: db.path, Line: line, Err: err}
			}
			r.Duration = &d
		}
		if r.StartTime != nil && r.Duration != nil {
			end := r.StartTime.Add(*r.Duration)
			r.EndTime = &end
		}
		if epicID.Valid {
			id := int(epicID.Int64)
			r.EpicID = &id
		}
		result = append(result, snapshot.Row{Line: line, Record: r})
	}
	if err := rows.Err(); err != nil {
		return nil, &snapshot.RestoreError{Path: db.path, Err: err}
	}
	return result, nil
}

// SavedAt returns the time of the last successful Save, or the zero time if
// nothing has been saved.
func (db *DB) SavedAt() (time.Time, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM meta WHERE key = 'saved_at'`).Scan(&value)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get save time: %w", err)
	}
	ms, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid save time %q: %w", value, err)
	}
	return time.UnixMilli(ms), nil
}
