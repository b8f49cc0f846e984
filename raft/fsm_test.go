package raft

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/devadigapratham/printbatch/api/models"
	"github.com/devadigapratham/printbatch/scheduler"
	"github.com/hashicorp/raft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func apply(t *testing.T, fsm *FSM, cmd *models.Command) error {
	t.Helper()
	data, err := cmd.Marshal()
	require.NoError(t, err)
	if err, ok := fsm.Apply(&raft.Log{Data: data}).(error); ok {
		return err
	}
	return nil
}

func seedPrinter(t *testing.T, fsm *FSM) {
	t.Helper()
	require.NoError(t, apply(t, fsm, &models.Command{
		Type:    models.AddPrinter,
		Printer: &models.Printer{ID: "p1", MaxVolume: 300, MaxItems: 2},
	}))
	for _, job := range []*models.PrintJob{
		{ID: "M1", PrinterID: "p1", Volume: 100, Priority: 1, PrintTime: 120},
		{ID: "M2", PrinterID: "p1", Volume: 150, Priority: 1, PrintTime: 90},
		{ID: "M3", PrinterID: "p1", Volume: 120, Priority: 1, PrintTime: 150},
	} {
		require.NoError(t, apply(t, fsm, &models.Command{Type: models.AddPrintJob, PrintJob: job}))
	}
}

func TestFSM_AddPrintJob(t *testing.T) {
	fsm := NewFSM()
	seedPrinter(t, fsm)

	jobs := fsm.GetPrintJobs("", "")
	require.Len(t, jobs, 3)
	for i, id := range []string{"M1", "M2", "M3"} {
		assert.Equal(t, id, jobs[i].ID)
		assert.Equal(t, uint64(i+1), jobs[i].Seq)
		assert.Equal(t, models.StatusQueued, jobs[i].Status)
	}

	err := apply(t, fsm, &models.Command{Type: models.AddPrintJob, PrintJob: &models.PrintJob{ID: "M1", PrinterID: "p1"}})
	assert.True(t, errors.Is(err, ErrExists))

	err = apply(t, fsm, &models.Command{Type: models.AddPrintJob, PrintJob: &models.PrintJob{ID: "X", PrinterID: "p2"}})
	assert.True(t, errors.Is(err, ErrNotFound))

	err = apply(t, fsm, &models.Command{Type: models.AddPrintJob, PrintJob: &models.PrintJob{ID: "X", PrinterID: "p1", PrintTime: -1}})
	assert.True(t, errors.Is(err, scheduler.ErrInvalidJob))

	err = apply(t, fsm, &models.Command{Type: models.AddPrinter, Printer: &models.Printer{ID: "p2", MaxItems: 0}})
	assert.True(t, errors.Is(err, scheduler.ErrInvalidConstraints))

	err = apply(t, fsm, &models.Command{Type: "BOGUS"})
	assert.Error(t, err)

	assert.Error(t, fsm.Apply(&raft.Log{Data: []byte("not json")}).(error))
}

func TestFSM_QueuedJobsSchedule(t *testing.T) {
	fsm := NewFSM()
	seedPrinter(t, fsm)

	printer, ok := fsm.GetPrinter("p1")
	require.True(t, ok)

	res, err := scheduler.Schedule(fsm.QueuedJobs("p1"), printer.Constraints())
	require.NoError(t, err)
	assert.Equal(t, []string{"M2", "M1", "M3"}, res.PrintOrder)
	assert.Equal(t, 270.0, res.TotalTime)
}

func TestFSM_StartBatch(t *testing.T) {
	fsm := NewFSM()
	seedPrinter(t, fsm)

	// a bad id leaves the whole batch queued
	err := apply(t, fsm, &models.Command{Type: models.StartBatch, PrinterID: "p1", JobIDs: []string{"M2", "nope"}})
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Len(t, fsm.GetPrintJobs(models.StatusQueued, "p1"), 3)

	err = apply(t, fsm, &models.Command{Type: models.StartBatch, PrinterID: "p1"})
	assert.Error(t, err)

	require.NoError(t, apply(t, fsm, &models.Command{Type: models.StartBatch, PrinterID: "p1", JobIDs: []string{"M2", "M1"}}))
	assert.Len(t, fsm.GetPrintJobs(models.StatusRunning, "p1"), 2)
	assert.Equal(t, []scheduler.Job{{ID: "M3", Volume: 120, Priority: 1, Duration: 150}}, fsm.QueuedJobs("p1"))

	err = apply(t, fsm, &models.Command{Type: models.StartBatch, PrinterID: "p1", JobIDs: []string{"M3"}})
	assert.True(t, errors.Is(err, ErrPrinterBusy))

	require.NoError(t, apply(t, fsm, &models.Command{Type: models.UpdatePrintJob, JobID: "M1", NewStatus: models.StatusDone}))
	require.NoError(t, apply(t, fsm, &models.Command{Type: models.UpdatePrintJob, JobID: "M2", NewStatus: models.StatusCanceled}))

	err = apply(t, fsm, &models.Command{Type: models.StartBatch, PrinterID: "p1", JobIDs: []string{"M1"}})
	assert.True(t, errors.Is(err, models.ErrInvalidTransition))

	require.NoError(t, apply(t, fsm, &models.Command{Type: models.StartBatch, PrinterID: "p1", JobIDs: []string{"M3"}}))
}

func TestFSM_UpdateCannotStartJob(t *testing.T) {
	fsm := NewFSM()
	seedPrinter(t, fsm)

	err := apply(t, fsm, &models.Command{Type: models.UpdatePrintJob, JobID: "M1", NewStatus: models.StatusRunning})
	assert.True(t, errors.Is(err, models.ErrInvalidTransition))
	job, _ := fsm.GetPrintJob("M1")
	assert.Equal(t, models.StatusQueued, job.Status)

	// a running batch cannot be joined by a single job either
	require.NoError(t, apply(t, fsm, &models.Command{Type: models.StartBatch, PrinterID: "p1", JobIDs: []string{"M2"}}))
	err = apply(t, fsm, &models.Command{Type: models.UpdatePrintJob, JobID: "M3", NewStatus: models.StatusRunning})
	assert.True(t, errors.Is(err, models.ErrInvalidTransition))
	assert.Len(t, fsm.GetPrintJobs(models.StatusRunning, "p1"), 1)

	require.NoError(t, apply(t, fsm, &models.Command{Type: models.UpdatePrintJob, JobID: "M3", NewStatus: models.StatusCanceled}))
}

type bufferSink struct {
	bytes.Buffer
	canceled bool
}

func (s *bufferSink) ID() string    { return "test" }
func (s *bufferSink) Close() error  { return nil }
func (s *bufferSink) Cancel() error { s.canceled = true; return nil }

func TestFSM_SnapshotRestore(t *testing.T) {
	fsm := NewFSM()
	seedPrinter(t, fsm)
	require.NoError(t, apply(t, fsm, &models.Command{Type: models.StartBatch, PrinterID: "p1", JobIDs: []string{"M3"}}))

	snap, err := fsm.Snapshot()
	require.NoError(t, err)
	sink := &bufferSink{}
	require.NoError(t, snap.Persist(sink))
	snap.Release()
	assert.False(t, sink.canceled)

	restored := NewFSM()
	require.NoError(t, restored.Restore(io.NopCloser(&sink.Buffer)))

	assert.Equal(t, fsm.GetPrinters(), restored.GetPrinters())
	assert.Equal(t, fsm.GetPrintJobs("", ""), restored.GetPrintJobs("", ""))

	// the sequence continues after restore
	require.NoError(t, apply(t, restored, &models.Command{
		Type:     models.AddPrintJob,
		PrintJob: &models.PrintJob{ID: "M4", PrinterID: "p1", Volume: 1},
	}))
	job, ok := restored.GetPrintJob("M4")
	require.True(t, ok)
	assert.Equal(t, uint64(4), job.Seq)
}
