package dataset

import (
	"errors"
	"fmt"

	"bikeshare-dashboard/internal/models"
)

// NotFoundError means the dataset file does not exist or is not a regular file
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("dataset not found: %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("dataset not found: %s", e.Path)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// IsTransient returns false; a missing file is not retried
func (e *NotFoundError) IsTransient() bool {
	return false
}

// MalformedDataError means the dataset could not be parsed or lacks a
// required column
type MalformedDataError struct {
	Path   string
	Line   int
	Column string
	Err    error
}

func (e *MalformedDataError) Error() string {
	msg := "malformed dataset " + e.Path
	if e.Line > 0 {
		msg += fmt.Sprintf(": line %d", e.Line)
	}
	if e.Column != "" {
		msg += fmt.Sprintf(": column %s", e.Column)
	}
	var verr *models.ValidationError
	switch {
	case errors.As(e.Err, &verr):
		// line and column are already in the prefix
		msg += fmt.Sprintf(": %q: %s", verr.Value, verr.Message)
	case e.Err != nil:
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedDataError) Unwrap() error {
	return e.Err
}

// IsTransient returns false; the same bytes fail the same way
func (e *MalformedDataError) IsTransient() bool {
	return false
}
