package api

import (
	"fmt"
	"time"

	"github.com/baiirun/tracker/internal/model"
)

// RecordJSON is the wire form of any item.
type RecordJSON struct {
	ID          int          `json:"id"`
	Type        model.Kind   `json:"type"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Status      model.Status `json:"status"`
	StartTime   *time.Time   `json:"startTime,omitempty"`
	Duration    *int64       `json:"duration,omitempty"` // minutes
	EndTime     *time.Time   `json:"endTime,omitempty"`
	EpicID      *int         `json:"epicId,omitempty"`
	SubtaskIDs  []int        `json:"subtaskIds,omitempty"`
}

// NewRecordJSON converts a record to its wire form.
func NewRecordJSON(r model.Record) RecordJSON {
	out := RecordJSON{
		ID:          r.ID,
		Type:        r.Kind,
		Name:        r.Name,
		Description: r.Description,
		Status:      r.Status,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		EpicID:      r.EpicID,
		SubtaskIDs:  r.SubtaskIDs,
	}
	if r.Duration != nil {
		m := int64(*r.Duration / time.Minute)
		out.Duration = &m
	}
	return out
}

// RecordsJSON converts records, returning an empty slice rather than nil.
func RecordsJSON(records []model.Record) []RecordJSON {
	out := make([]RecordJSON, 0, len(records))
	for _, r := range records {
		out = append(out, NewRecordJSON(r))
	}
	return out
}

var errMissingEpicID = fmt.Errorf("epicId is required: %w", model.ErrInvalid)

// itemRequest is the body of POST /tasks and POST /subtasks. A request
// without an id creates; one with an id updates.
type itemRequest struct {
	ID          *int         `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Status      model.Status `json:"status"`
	StartTime   *time.Time   `json:"startTime"`
	Duration    *int64       `json:"duration"`
	EpicID      *int         `json:"epicId"`
}

func (r itemRequest) item() (model.Item, error) {
	item := model.Item{
		Name:        r.Name,
		Description: r.Description,
		Status:      r.Status,
		StartTime:   r.StartTime,
	}
	if r.ID != nil {
		item.ID = *r.ID
	}
	if r.Duration != nil {
		if *r.Duration < 0 {
			return model.Item{}, fmt.Errorf("duration must not be negative: %w", model.ErrInvalid)
		}
		d, err := model.Minutes(*r.Duration)
		if err != nil {
			return model.Item{}, err
		}
		item.Duration = &d
	}
	return item, nil
}

// epicRequest is the body of POST /epics. Derived fields are accepted only
// so that setting them can be refused.
type epicRequest struct {
	ID          *int          `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Status      *model.Status `json:"status"`
	StartTime   *time.Time    `json:"startTime"`
	Duration    *int64        `json:"duration"`
	EndTime     *time.Time    `json:"endTime"`
}

func (r epicRequest) epic() (model.Epic, error) {
	var e model.Epic
	if r.ID != nil {
		e.ID = *r.ID
	}
	e.Name = r.Name
	e.Description = r.Description
	if r.Status != nil {
		return model.Epic{}, e.SetStatus(*r.Status)
	}
	if r.StartTime != nil || r.Duration != nil || r.EndTime != nil {
		return model.Epic{}, fmt.Errorf("epic time fields are derived from subtasks: %w", model.ErrForbidden)
	}
	return e, nil
}
