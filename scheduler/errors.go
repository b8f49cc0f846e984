package scheduler

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConstraints is returned when the printer constraints cannot be scheduled against
	ErrInvalidConstraints = errors.New("invalid constraints")

	// ErrInvalidJob is returned when a job carries values outside its domain
	ErrInvalidJob = errors.New("invalid job")

	// ErrMalformedRecord is returned when an external record is missing a required field
	ErrMalformedRecord = errors.New("malformed record")
)

// ConstraintsError describes which constraint was rejected
type ConstraintsError struct {
	Field  string
	Reason string
}

func (e *ConstraintsError) Error() string {
	return fmt.Sprintf("invalid constraints: %s %s", e.Field, e.Reason)
}

func (e *ConstraintsError) Unwrap() error {
	return ErrInvalidConstraints
}

// JobError describes a rejected job. Index is the job's position in the caller's input.
type JobError struct {
	Index  int
	ID     string
	Reason string
}

func (e *JobError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("invalid job at index %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("invalid job %q at index %d: %s", e.ID, e.Index, e.Reason)
}

func (e *JobError) Unwrap() error {
	return ErrInvalidJob
}

// RecordError reports a required field missing from a decoded record.
// Index is -1 for the constraints record.
type RecordError struct {
	Index int
	Field string
}

func (e *RecordError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("malformed constraints record: missing %q", e.Field)
	}
	return fmt.Sprintf("malformed job record at index %d: missing %q", e.Index, e.Field)
}

func (e *RecordError) Unwrap() error {
	return ErrMalformedRecord
}
