package scheduler

import "sort"

// Result is the outcome of a scheduling pass
type Result struct {
	PrintOrder []string `json:"print_order" yaml:"print_order"`
	TotalTime  float64  `json:"total_time" yaml:"total_time"`
}

// Batch reports one physical print run of a plan
type Batch struct {
	JobIDs []string `json:"job_ids" yaml:"job_ids"`
	Volume float64  `json:"volume" yaml:"volume"`
	Time   float64  `json:"time" yaml:"time"`
}

// Schedule orders the jobs and packs them into batches that respect the constraints.
// The returned print order lists batches in the order they were closed.
func Schedule(jobs []Job, c Constraints) (Result, error) {
	batches, err := Plan(jobs, c)
	if err != nil {
		return Result{}, err
	}
	return Flatten(batches), nil
}

// Flatten concatenates the batches of a plan into a Result
func Flatten(batches []Batch) Result {
	res := Result{PrintOrder: []string{}}
	for _, b := range batches {
		res.PrintOrder = append(res.PrintOrder, b.JobIDs...)
		res.TotalTime += b.Time
	}
	return res
}

// Plan returns the batches Schedule would run, in order.
// A job whose volume alone exceeds MaxVolume still gets a batch of its own.
func Plan(jobs []Job, c Constraints) ([]Batch, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateJobs(jobs); err != nil {
		return nil, err
	}

	sorted := make([]Job, len(jobs))
	copy(sorted, jobs)
	sortJobs(sorted)

	var (
		batches []Batch
		current []Job
		volume  float64
	)
	for _, job := range sorted {
		if len(current) < c.MaxItems && volume+job.Volume <= c.MaxVolume {
			current = append(current, job)
			volume += job.Volume
			continue
		}
		if b, ok := closeBatch(current, volume); ok {
			batches = append(batches, b)
		}
		current = []Job{job}
		volume = job.Volume
	}
	if b, ok := closeBatch(current, volume); ok {
		batches = append(batches, b)
	}
	return batches, nil
}

// sortJobs orders by priority then duration, keeping input order on ties
func sortJobs(jobs []Job) {
	sort.SliceStable(jobs, func(i, j int) bool {
		if jobs[i].Priority != jobs[j].Priority {
			return jobs[i].Priority < jobs[j].Priority
		}
		return jobs[i].Duration < jobs[j].Duration
	})
}

// closeBatch reports false for an empty batch, which contributes nothing
func closeBatch(jobs []Job, volume float64) (Batch, bool) {
	if len(jobs) == 0 {
		return Batch{}, false
	}
	b := Batch{
		JobIDs: make([]string, 0, len(jobs)),
		Volume: volume,
	}
	for _, job := range jobs {
		b.JobIDs = append(b.JobIDs, job.ID)
		if job.Duration > b.Time {
			b.Time = job.Duration
		}
	}
	return b, true
}
