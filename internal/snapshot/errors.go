package snapshot

import "fmt"

// RestoreError reports a snapshot that could not be read back. Line is the
// 1-based line of the offending row, or 0 when the failure is not tied to a row.
type RestoreError struct {
	Path string
	Line int
	Err  error
}

func (e *RestoreError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("failed to restore %s: line %d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("failed to restore %s: %v", e.Path, e.Err)
}

func (e *RestoreError) Unwrap() error {
	return e.Err
}

// SaveError reports a snapshot that could not be written.
type SaveError struct {
	Path string
	Err  error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("failed to save %s: %v", e.Path, e.Err)
}

func (e *SaveError) Unwrap() error {
	return e.Err
}
