// api/models/printjob.go
package models

import "github.com/devadigapratham/printbatch/scheduler"

// Print job statuses
const (
	StatusQueued   = "Queued"
	StatusRunning  = "Running"
	StatusDone     = "Done"
	StatusCanceled = "Canceled"
)

// PrintJob represents a 3D printing job
type PrintJob struct {
	ID        string  `json:"id"`
	PrinterID string  `json:"printer_id"`
	Filepath  string  `json:"filepath"`
	Volume    float64 `json:"volume"`
	Priority  int     `json:"priority"`
	PrintTime float64 `json:"print_time"`
	Status    string  `json:"status"` // Queued, Running, Done, Canceled

	// Seq is the submission sequence assigned by the FSM
	Seq uint64 `json:"seq"`
}

// Job returns the scheduler's view of the print job
func (p *PrintJob) Job() scheduler.Job {
	return scheduler.Job{
		ID:       p.ID,
		Volume:   p.Volume,
		Priority: p.Priority,
		Duration: p.PrintTime,
	}
}
