// api/models/models.go
package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// CommandType represents the type of command to be executed
type CommandType string

const (
	AddPrinter     CommandType = "ADD_PRINTER"
	AddPrintJob    CommandType = "ADD_PRINT_JOB"
	UpdatePrintJob CommandType = "UPDATE_PRINT_JOB"
	StartBatch     CommandType = "START_BATCH"
)

// Command represents a command to be applied to the FSM
type Command struct {
	Type      CommandType `json:"type"`
	Printer   *Printer    `json:"printer,omitempty"`
	PrintJob  *PrintJob   `json:"print_job,omitempty"`
	JobID     string      `json:"job_id,omitempty"`
	NewStatus string      `json:"new_status,omitempty"`
	PrinterID string      `json:"printer_id,omitempty"`
	JobIDs    []string    `json:"job_ids,omitempty"`
}

// Marshal serializes a command to JSON
func (c *Command) Marshal() ([]byte, error) {
	return json.Marshal(c)
}

// UnmarshalCommand deserializes a command from JSON
func UnmarshalCommand(data []byte) (*Command, error) {
	var c Command
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal command: %w", err)
	}
	return &c, nil
}

// ErrInvalidTransition is returned for a status change the job lifecycle does not allow
var ErrInvalidTransition = errors.New("invalid status transition")

// ValidateStatusChange checks if a status transition is valid
func ValidateStatusChange(currentStatus, newStatus string) error {
	switch currentStatus {
	case StatusQueued:
		if newStatus != StatusRunning && newStatus != StatusCanceled {
			return fmt.Errorf("%w: a job can only transition from Queued to Running or Canceled", ErrInvalidTransition)
		}
	case StatusRunning:
		if newStatus != StatusDone && newStatus != StatusCanceled {
			return fmt.Errorf("%w: a job can only transition from Running to Done or Canceled", ErrInvalidTransition)
		}
	default:
		return fmt.Errorf("%w: job is %s", ErrInvalidTransition, currentStatus)
	}
	return nil
}

// IsValidPrintJobStatus checks if a print job status is valid
func IsValidPrintJobStatus(status string) bool {
	validStatuses := []string{StatusQueued, StatusRunning, StatusDone, StatusCanceled}

	for _, vs := range validStatuses {
		if status == vs {
			return true
		}
	}
	return false
}
