package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/devadigapratham/printbatch/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const overflowRequest = `
print_jobs:
  - {id: M1, volume: 250, priority: 1, print_time: 180}
  - {id: M2, volume: 200, priority: 1, print_time: 150}
  - {id: M3, volume: 180, priority: 2, print_time: 120}
constraints: {max_volume: 300, max_items: 2}
`

func TestRun_Stdin(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(nil, strings.NewReader(overflowRequest), &out))
	assert.JSONEq(t, `{"print_order": ["M2", "M1", "M3"], "total_time": 450}`, out.String())
}

func TestRun_JSONFileBatches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.json")
	body := `{"print_jobs": [
  {"id": "M1", "volume": 100, "priority": 2, "print_time": 120},
  {"id": "M2", "volume": 150, "priority": 1, "print_time": 90},
  {"id": "M3", "volume": 120, "priority": 3, "print_time": 150}
], "constraints": {"max_volume": 300, "max_items": 2}}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	var out bytes.Buffer
	require.NoError(t, run([]string{"-batches", path}, nil, &out))
	assert.JSONEq(t, `[
		{"job_ids": ["M2", "M1"], "volume": 250, "time": 120},
		{"job_ids": ["M3"], "volume": 120, "time": 150}
	]`, out.String())
}

func TestRun_Errors(t *testing.T) {
	var out bytes.Buffer

	err := run(nil, strings.NewReader("constraints: {max_volume: 300, max_items: 0}\n"), &out)
	assert.True(t, errors.Is(err, scheduler.ErrInvalidConstraints))

	err = run(nil, strings.NewReader("print_jobs: [{id: a}]\nconstraints: {max_volume: 1, max_items: 1}\n"), &out)
	assert.True(t, errors.Is(err, scheduler.ErrMalformedRecord))

	err = run(nil, strings.NewReader(""), &out)
	assert.Error(t, err)

	err = run([]string{filepath.Join(t.TempDir(), "missing.yaml")}, nil, &out)
	assert.Error(t, err)

	assert.Empty(t, out.String())
}
