// api/models/plan.go
package models

import (
	"time"

	"github.com/devadigapratham/printbatch/scheduler"
)

// Plan is a computed batch schedule for one printer's queue
type Plan struct {
	PrinterID  string            `json:"printer_id"`
	CreatedAt  time.Time         `json:"created_at"`
	PrintOrder []string          `json:"print_order"`
	TotalTime  float64           `json:"total_time"`
	Batches    []scheduler.Batch `json:"batches"`
}

// NewPlan builds a plan from the scheduler's batches
func NewPlan(printerID string, batches []scheduler.Batch, now time.Time) *Plan {
	res := scheduler.Flatten(batches)
	if batches == nil {
		batches = []scheduler.Batch{}
	}
	return &Plan{
		PrinterID:  printerID,
		CreatedAt:  now.UTC(),
		PrintOrder: res.PrintOrder,
		TotalTime:  res.TotalTime,
		Batches:    batches,
	}
}
