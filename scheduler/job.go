// Package scheduler packs print jobs into printer-sized batches.
//
// Jobs are ordered by priority (lower first) and then by duration (shorter first)
// and greedily filled into batches bounded by the printer's item count and volume.
// A batch takes as long as its slowest job. Packing is single pass: a closed batch
// is never revisited.
package scheduler

import (
	"fmt"
	"math"
)

// Job is a single print job as seen by the scheduler
type Job struct {
	ID       string
	Volume   float64
	Priority int
	Duration float64
}

// Constraints bound a single physical print run
type Constraints struct {
	MaxVolume float64
	MaxItems  int
}

// Validate checks that the constraints are inside the scheduler's domain
func (c Constraints) Validate() error {
	if c.MaxItems < 1 {
		return &ConstraintsError{Field: "max_items", Reason: "must be at least 1"}
	}
	if math.IsNaN(c.MaxVolume) || c.MaxVolume < 0 {
		return &ConstraintsError{Field: "max_volume", Reason: "must be a non-negative number"}
	}
	return nil
}

// Validate checks a single job. The index is only used for error reporting.
func (j Job) Validate(index int) error {
	switch {
	case j.ID == "":
		return &JobError{Index: index, Reason: "id is empty"}
	case math.IsNaN(j.Volume) || math.IsInf(j.Volume, 0) || j.Volume < 0:
		return &JobError{Index: index, ID: j.ID, Reason: "volume must be a non-negative number"}
	case math.IsNaN(j.Duration) || math.IsInf(j.Duration, 0) || j.Duration < 0:
		return &JobError{Index: index, ID: j.ID, Reason: "duration must be a non-negative number"}
	}
	return nil
}

// ValidateJobs validates every job and rejects duplicate identifiers
func ValidateJobs(jobs []Job) error {
	seen := make(map[string]int, len(jobs))
	for i, job := range jobs {
		if err := job.Validate(i); err != nil {
			return err
		}
		if first, ok := seen[job.ID]; ok {
			return &JobError{Index: i, ID: job.ID, Reason: fmt.Sprintf("duplicate id, first seen at index %d", first)}
		}
		seen[job.ID] = i
	}
	return nil
}

