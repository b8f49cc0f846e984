package scheduler

// JobRecord is a job as supplied by an external caller.
// Fields are pointers so that a missing field can be told apart from a zero value.
type JobRecord struct {
	ID        *string  `json:"id" yaml:"id"`
	Volume    *float64 `json:"volume" yaml:"volume"`
	Priority  *int     `json:"priority" yaml:"priority"`
	PrintTime *float64 `json:"print_time" yaml:"print_time"`
}

// ConstraintsRecord is a printer constraints record as supplied by an external caller
type ConstraintsRecord struct {
	MaxVolume *float64 `json:"max_volume" yaml:"max_volume"`
	MaxItems  *int     `json:"max_items" yaml:"max_items"`
}

// Request bundles the records for one scheduling call
type Request struct {
	PrintJobs   []JobRecord        `json:"print_jobs" yaml:"print_jobs"`
	Constraints *ConstraintsRecord `json:"constraints" yaml:"constraints"`
}

// Job converts the record, reporting the first missing field
func (r JobRecord) Job(index int) (Job, error) {
	switch {
	case r.ID == nil:
		return Job{}, &RecordError{Index: index, Field: "id"}
	case r.Volume == nil:
		return Job{}, &RecordError{Index: index, Field: "volume"}
	case r.Priority == nil:
		return Job{}, &RecordError{Index: index, Field: "priority"}
	case r.PrintTime == nil:
		return Job{}, &RecordError{Index: index, Field: "print_time"}
	}
	return Job{
		ID:       *r.ID,
		Volume:   *r.Volume,
		Priority: *r.Priority,
		Duration: *r.PrintTime,
	}, nil
}

// Constraints converts the record, reporting the first missing field
func (r ConstraintsRecord) Constraints() (Constraints, error) {
	switch {
	case r.MaxVolume == nil:
		return Constraints{}, &RecordError{Index: -1, Field: "max_volume"}
	case r.MaxItems == nil:
		return Constraints{}, &RecordError{Index: -1, Field: "max_items"}
	}
	return Constraints{MaxVolume: *r.MaxVolume, MaxItems: *r.MaxItems}, nil
}

// Resolve converts every record of the request. It does not validate values;
// Schedule does that.
func (r Request) Resolve() ([]Job, Constraints, error) {
	if r.Constraints == nil {
		return nil, Constraints{}, &RecordError{Index: -1, Field: "constraints"}
	}
	c, err := r.Constraints.Constraints()
	if err != nil {
		return nil, Constraints{}, err
	}

	jobs := make([]Job, 0, len(r.PrintJobs))
	for i, rec := range r.PrintJobs {
		job, err := rec.Job(i)
		if err != nil {
			return nil, Constraints{}, err
		}
		jobs = append(jobs, job)
	}
	return jobs, c, nil
}
