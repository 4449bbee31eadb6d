// Package snapshot encodes manager state as comma-separated rows and restores
// a manager from them.
//
// The first line is a header. Every following line holds one item:
//
//	id,type,name,status,description,startTime,duration,epic
//
// startTime is epoch milliseconds, duration is whole minutes, and epic is set
// for subtasks only. Optional fields are left blank.
package snapshot

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/baiirun/tracker/internal/model"
)

// Header is the first line of every snapshot.
var Header = []string{"id", "type", "name", "status", "description", "startTime", "duration", "epic"}

// Row is a decoded record together with the line it came from.
type Row struct {
	Line   int
	Record model.Record
}

// Encode writes the header followed by one row per record.
func Encode(w io.Writer, records []model.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(encodeRecord(r)); err != nil {
			return fmt.Errorf("failed to write id=%d: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func encodeRecord(r model.Record) []string {
	fields := []string{
		strconv.Itoa(r.ID),
		string(r.Kind),
		r.Name,
		string(r.Status),
		r.Description,
		"",
		"",
		"",
	}
	if r.StartTime != nil {
		fields[5] = strconv.FormatInt(r.StartTime.UnixMilli(), 10)
	}
	if r.Duration != nil {
		fields[6] = strconv.FormatInt(int64(*r.Duration/time.Minute), 10)
	}
	if r.EpicID != nil {
		fields[7] = strconv.Itoa(*r.EpicID)
	}
	return fields
}

// Decode reads a snapshot written by Encode. An empty input yields no rows.
// Malformed input fails with a *RestoreError carrying the line number; its
// Path is left for the caller to fill in.
func Decode(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, &RestoreError{Line: 1, Err: err}
	}
	if !slices.Equal(header, Header) {
		return nil, &RestoreError{Line: 1, Err: fmt.Errorf("unexpected header %q: %w", strings.Join(header, ","), model.ErrInvalid)}
	}

	var rows []Row
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, &RestoreError{Line: parseErr.StartLine, Err: parseErr.Err}
			}
			return nil, &RestoreError{Err: err}
		}
		line, _ := cr.FieldPos(0)
		rec, err := DecodeFields(fields)
		if err != nil {
			return nil, &RestoreError{Line: line, Err: err}
		}
		rows = append(rows, Row{Line: line, Record: rec})
	}
}

// DecodeFields parses one row's fields into a record.
func DecodeFields(fields []string) (model.Record, error) {
	if len(fields) != len(Header) {
		return model.Record{}, fmt.Errorf("expected %d fields, got %d: %w", len(Header), len(fields), model.ErrInvalid)
	}

	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return model.Record{}, fmt.Errorf("invalid id %q: %w", fields[0], model.ErrInvalid)
	}
	rec := model.Record{
		ID:          id,
		Kind:        model.Kind(fields[1]),
		Name:        fields[2],
		Status:      model.Status(fields[3]),
		Description: fields[4],
	}
	if !rec.Kind.IsValid() {
		return model.Record{}, fmt.Errorf("invalid type %q: %w", fields[1], model.ErrInvalid)
	}
	if !rec.Status.IsValid() {
		return model.Record{}, fmt.Errorf("invalid status %q: %w", fields[3], model.ErrInvalid)
	}

	if s := fields[5]; s != "" {
		ms, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return model.Record{}, fmt.Errorf("invalid startTime %q: %w", s, model.ErrInvalid)
		}
		start := time.UnixMilli(ms).UTC()
		rec.StartTime = &start
	}
	if s := fields[6]; s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return model.Record{}, fmt.Errorf("invalid duration %q: %w", s, model.ErrInvalid)
		}
		d, err := model.Minutes(n)
		if err != nil {
			return model.Record{}, err
		}
		rec.Duration = &d
	}
	if rec.StartTime != nil && rec.Duration != nil {
		end := rec.StartTime.Add(*rec.Duration)
		rec.EndTime = &end
	}

	if s := fields[7]; s != "" {
		epicID, err := strconv.Atoi(s)
		if err != nil {
			return model.Record{}, fmt.Errorf("invalid epic %q: %w", s, model.ErrInvalid)
		}
		rec.EpicID = &epicID
	}
	if rec.Kind == model.KindSubtask && rec.EpicID == nil {
		return model.Record{}, fmt.Errorf("subtask %d has no epic: %w", id, model.ErrInvalid)
	}
	return rec, nil
}
