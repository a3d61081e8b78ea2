package table

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyFile is returned when the upload has no content.
	ErrEmptyFile = errors.New("empty file")

	// ErrUnknownColumn is returned by accessors for a name not in the table.
	ErrUnknownColumn = errors.New("column not found")

	// ErrNotNumeric is returned when numeric values are requested from a text column.
	ErrNotNumeric = errors.New("column is not numeric")
)

// ParseError reports that an upload could not be read as a table.
// It is the only error Load returns for bad input; callers surface it
// to the user and render nothing else for that load attempt.
type ParseError struct {
	Source string // file name as uploaded
	Record int    // 1-based record number, 0 when not tied to a record
	Err    error
}

func (e *ParseError) Error() string {
	if e.Record > 0 {
		return fmt.Sprintf("invalid csv: %s: record %d: %v", e.Source, e.Record, e.Err)
	}
	return fmt.Sprintf("invalid csv: %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError reports whether err is, or wraps, a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
