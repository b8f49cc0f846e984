package raft

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/devadigapratham/printbatch/api/models"
	"github.com/devadigapratham/printbatch/scheduler"
	"github.com/hashicorp/raft"
)

// FSM implements the raft.FSM interface for the print queue
type FSM struct {
	mu sync.RWMutex

	printers  map[string]*models.Printer
	printJobs map[string]*models.PrintJob
	seq       uint64
}

// NewFSM creates a new Finite State Machine for the Raft cluster
func NewFSM() *FSM {
	return &FSM{
		printers:  make(map[string]*models.Printer),
		printJobs: make(map[string]*models.PrintJob),
	}
}

// Apply applies a Raft log entry to the FSM.
// The response is nil on success or the error that rejected the command.
func (f *FSM) Apply(log *raft.Log) interface{} {
	cmd, err := models.UnmarshalCommand(log.Data)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch cmd.Type {
	case models.AddPrinter:
		return f.addPrinter(cmd.Printer)
	case models.AddPrintJob:
		return f.addPrintJob(cmd.PrintJob)
	case models.UpdatePrintJob:
		return f.updatePrintJob(cmd.JobID, cmd.NewStatus)
	case models.StartBatch:
		return f.startBatch(cmd.PrinterID, cmd.JobIDs)
	default:
		return fmt.Errorf("unknown command type: %s", cmd.Type)
	}
}

func (f *FSM) addPrinter(printer *models.Printer) error {
	if printer == nil {
		return fmt.Errorf("printer is nil")
	}
	if err := printer.Constraints().Validate(); err != nil {
		return err
	}
	if _, ok := f.printers[printer.ID]; ok {
		return fmt.Errorf("%w: printer with ID %s", ErrExists, printer.ID)
	}
	f.printers[printer.ID] = printer
	return nil
}

func (f *FSM) addPrintJob(job *models.PrintJob) error {
	if job == nil {
		return fmt.Errorf("print job is nil")
	}
	if _, ok := f.printers[job.PrinterID]; !ok {
		return fmt.Errorf("%w: printer with ID %s", ErrNotFound, job.PrinterID)
	}
	if _, ok := f.printJobs[job.ID]; ok {
		return fmt.Errorf("%w: print job with ID %s", ErrExists, job.ID)
	}
	if err := job.Job().Validate(0); err != nil {
		return err
	}

	f.seq++
	job.Seq = f.seq
	job.Status = models.StatusQueued
	f.printJobs[job.ID] = job
	return nil
}

// updatePrintJob finishes or cancels a job. Jobs only start through startBatch.
func (f *FSM) updatePrintJob(jobID, newStatus string) error {
	job, ok := f.printJobs[jobID]
	if !ok {
		return fmt.Errorf("%w: print job with ID %s", ErrNotFound, jobID)
	}
	if newStatus == models.StatusRunning {
		return fmt.Errorf("%w: print job %s can only start as part of a batch", models.ErrInvalidTransition, jobID)
	}
	if err := models.ValidateStatusChange(job.Status, newStatus); err != nil {
		return err
	}
	job.Status = newStatus
	return nil
}

// startBatch moves a whole batch to Running or leaves every job untouched
func (f *FSM) startBatch(printerID string, jobIDs []string) error {
	if _, ok := f.printers[printerID]; !ok {
		return fmt.Errorf("%w: printer with ID %s", ErrNotFound, printerID)
	}
	if len(jobIDs) == 0 {
		return fmt.Errorf("batch for printer %s is empty", printerID)
	}
	for _, job := range f.printJobs {
		if job.PrinterID == printerID && job.Status == models.StatusRunning {
			return fmt.Errorf("%w: printer %s is already running job %s", ErrPrinterBusy, printerID, job.ID)
		}
	}

	batch := make([]*models.PrintJob, 0, len(jobIDs))
	for _, id := range jobIDs {
		job, ok := f.printJobs[id]
		if !ok {
			return fmt.Errorf("%w: print job with ID %s", ErrNotFound, id)
		}
		if job.PrinterID != printerID {
			return fmt.Errorf("print job %s belongs to printer %s", id, job.PrinterID)
		}
		if err := models.ValidateStatusChange(job.Status, models.StatusRunning); err != nil {
			return fmt.Errorf("print job %s: %w", id, err)
		}
		batch = append(batch, job)
	}
	for _, job := range batch {
		job.Status = models.StatusRunning
	}
	return nil
}

// Snapshot returns a snapshot of the FSM state
func (f *FSM) Snapshot() (raft.FSMSnapshot, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	// Create a deep copy of the state
	printers := make(map[string]*models.Printer, len(f.printers))
	for k, v := range f.printers {
		printer := *v
		printers[k] = &printer
	}

	printJobs := make(map[string]*models.PrintJob, len(f.printJobs))
	for k, v := range f.printJobs {
		job := *v
		printJobs[k] = &job
	}

	return &fsmSnapshot{
		Printers:  printers,
		PrintJobs: printJobs,
		Seq:       f.seq,
	}, nil
}

// Restore restores the FSM from a snapshot
func (f *FSM) Restore(rc io.ReadCloser) error {
	defer rc.Close()

	var snapshot fsmSnapshot
	if err := json.NewDecoder(rc).Decode(&snapshot); err != nil {
		return fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if snapshot.Printers == nil {
		snapshot.Printers = make(map[string]*models.Printer)
	}
	if snapshot.PrintJobs == nil {
		snapshot.PrintJobs = make(map[string]*models.PrintJob)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.printers = snapshot.Printers
	f.printJobs = snapshot.PrintJobs
	f.seq = snapshot.Seq

	return nil
}

// GetPrinters returns all printers ordered by ID
func (f *FSM) GetPrinters() []*models.Printer {
	f.mu.RLock()
	defer f.mu.RUnlock()

	printers := make([]*models.Printer, 0, len(f.printers))
	for _, printer := range f.printers {
		p := *printer
		printers = append(printers, &p)
	}
	sort.Slice(printers, func(i, j int) bool { return printers[i].ID < printers[j].ID })
	return printers
}

// GetPrinter returns a printer by ID
func (f *FSM) GetPrinter(id string) (*models.Printer, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	printer, ok := f.printers[id]
	if !ok {
		return nil, false
	}
	p := *printer
	return &p, true
}

// GetPrintJobs returns the print jobs matching the filter in submission order.
// Empty filter values match everything.
func (f *FSM) GetPrintJobs(status, printerID string) []*models.PrintJob {
	f.mu.RLock()
	defer f.mu.RUnlock()

	jobs := make([]*models.PrintJob, 0)
	for _, job := range f.printJobs {
		if status != "" && job.Status != status {
			continue
		}
		if printerID != "" && job.PrinterID != printerID {
			continue
		}
		j := *job
		jobs = append(jobs, &j)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Seq < jobs[j].Seq })
	return jobs
}

// GetPrintJob returns a print job by ID
func (f *FSM) GetPrintJob(id string) (*models.PrintJob, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	job, ok := f.printJobs[id]
	if !ok {
		return nil, false
	}
	j := *job
	return &j, true
}

// QueuedJobs returns a printer's queued jobs in submission order, ready for scheduling
func (f *FSM) QueuedJobs(printerID string) []scheduler.Job {
	queued := f.GetPrintJobs(models.StatusQueued, printerID)
	jobs := make([]scheduler.Job, 0, len(queued))
	for _, job := range queued {
		jobs = append(jobs, job.Job())
	}
	return jobs
}

// fsmSnapshot implements the raft.FSMSnapshot interface
type fsmSnapshot struct {
	Printers  map[string]*models.Printer  `json:"printers"`
	PrintJobs map[string]*models.PrintJob `json:"print_jobs"`
	Seq       uint64                      `json:"seq"`
}

// Persist saves the snapshot to the provided sink
func (s *fsmSnapshot) Persist(sink raft.SnapshotSink) error {
	err := func() error {
		if err := json.NewEncoder(sink).Encode(s); err != nil {
			return err
		}
		return sink.Close()
	}()

	if err != nil {
		sink.Cancel()
		return err
	}

	return nil
}

// Release is a no-op
func (s *fsmSnapshot) Release() {}
