package service

import (
	"errors"

	"agreement-radar/types"
)

var (
	ErrNoFile       = errors.New("no file")
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrStorage      = errors.New("storage upload failed")
	ErrExtraction   = errors.New("extraction failed")
	ErrPersistence  = errors.New("persistence failed")
)

// ValidationError is returned when the composed agreement is rejected. The
// issues are reported to the client as-is.
type ValidationError struct {
	Issues types.FieldErrors
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Issues.Error()
}
