package raft

import "errors"

var (
	// ErrNotFound is returned when a command references an unknown printer or job
	ErrNotFound = errors.New("not found")

	// ErrExists is returned when an ID is already taken
	ErrExists = errors.New("already exists")

	// ErrPrinterBusy is returned when a batch is started on a printer that is still running one
	ErrPrinterBusy = errors.New("printer busy")
)
