package model

import "errors"

var (
	// ErrNotFound is returned when an id does not exist in the relevant collection.
	ErrNotFound = errors.New("not found")
	// ErrTimeIntersection is returned when a time window overlaps a scheduled item.
	ErrTimeIntersection = errors.New("time intersection")
	// ErrForbidden is returned on attempts to set derived or immutable fields.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalid is returned for malformed field values such as an unknown status.
	ErrInvalid = errors.New("invalid")
)
