package worker

import (
	"time"

	cv "github.com/gocda/validator"
)

// Job represents one document validation to be processed by a worker.
type Job struct {
	// ID is a unique identifier for this job. Left empty, the pool
	// assigns one on submission.
	ID string

	// Document is the C-CDA document to validate (as XML bytes).
	Document []byte
}

// JobResult represents the outcome of a validation job.
type JobResult struct {
	// ID matches the Job.ID that produced this result.
	ID string

	// Results holds one result per engine, keyed by engine name.
	Results map[string]*cv.Result

	// Error contains any error that occurred running the job. Engine
	// failures do not surface here; they live inside Results as
	// synthetic diagnostics.
	Error error

	// Duration is the time taken to validate the document.
	Duration time.Duration
}

// Valid reports whether every engine accepted the document.
// A job that errored is not valid.
func (jr *JobResult) Valid() bool {
	if jr.Error != nil || len(jr.Results) == 0 {
		return false
	}
	for _, r := range jr.Results {
		if !r.Valid {
			return false
		}
	}
	return true
}

// BatchResult aggregates results from multiple jobs.
type BatchResult struct {
	// Results contains all job results.
	Results []*JobResult

	// TotalJobs is the number of jobs submitted.
	TotalJobs int

	// CompletedJobs is the number of jobs completed (including errors).
	CompletedJobs int

	// FailedJobs is the number of jobs that failed with an error.
	FailedJobs int

	// TotalDuration is the summed validation time across all jobs.
	TotalDuration time.Duration
}

// HasErrors returns true if any job errored or any engine found errors.
func (br *BatchResult) HasErrors() bool {
	for _, jr := range br.Results {
		if jr == nil {
			continue
		}
		if jr.Error != nil {
			return true
		}
		for _, r := range jr.Results {
			if r.HasErrors() {
				return true
			}
		}
	}
	return false
}

// ErrorCount returns the total number of error diagnostics across all
// jobs and engines.
func (br *BatchResult) ErrorCount() int {
	count := 0
	for _, jr := range br.Results {
		if jr == nil {
			continue
		}
		for _, r := range jr.Results {
			count += r.ErrorCount
		}
	}
	return count
}
