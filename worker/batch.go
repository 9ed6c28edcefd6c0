package worker

import (
	"context"
	"runtime"
	"strconv"
	"sync"
	"time"

	cv "github.com/gocda/validator"
)

// BatchValidator provides a simple interface for batch validation.
type BatchValidator struct {
	validator BatchValidatorFunc
	workers   int
}

// BatchValidatorFunc is the function signature for validating a single
// document.
type BatchValidatorFunc func(ctx context.Context, document []byte) (map[string]*cv.Result, error)

// NewBatchValidator creates a new batch validator.
func NewBatchValidator(validateFunc BatchValidatorFunc, workers int) *BatchValidator {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &BatchValidator{
		validator: validateFunc,
		workers:   workers,
	}
}

// ValidateBatch validates multiple documents in parallel. Results are
// positional: Results[i] belongs to documents[i].
func (bv *BatchValidator) ValidateBatch(ctx context.Context, documents [][]byte) *BatchResult {
	if len(documents) == 0 {
		return &BatchResult{
			Results:       make([]*JobResult, 0),
			TotalJobs:     0,
			CompletedJobs: 0,
		}
	}

	// For small batches, don't use parallelism
	if len(documents) <= 2 {
		return bv.validateSequential(ctx, documents)
	}

	return bv.validateParallel(ctx, documents)
}

func (bv *BatchValidator) validateSequential(ctx context.Context, documents [][]byte) *BatchResult {
	results := make([]*JobResult, 0, len(documents))
	failed := 0
	var total time.Duration

	for i, document := range documents {
		select {
		case <-ctx.Done():
			return &BatchResult{
				Results:       results,
				TotalJobs:     len(documents),
				CompletedJobs: len(results),
				FailedJobs:    failed,
				TotalDuration: total,
			}
		default:
		}

		start := time.Now()
		res, err := bv.validator(ctx, document)
		dur := time.Since(start)
		if err != nil {
			failed++
		}
		total += dur
		results = append(results, &JobResult{
			ID:       strconv.Itoa(i),
			Results:  res,
			Error:    err,
			Duration: dur,
		})
	}

	return &BatchResult{
		Results:       results,
		TotalJobs:     len(documents),
		CompletedJobs: len(results),
		FailedJobs:    failed,
		TotalDuration: total,
	}
}

func (bv *BatchValidator) validateParallel(ctx context.Context, documents [][]byte) *BatchResult {
	numWorkers := bv.workers
	if numWorkers > len(documents) {
		numWorkers = len(documents)
	}

	jobs := make(chan indexedDocument, len(documents))
	resultsChan := make(chan *indexedResult, len(documents))

	// Start workers
	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go func() {
			defer wg.Done()
			for job := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}

				start := time.Now()
				res, err := bv.validator(ctx, job.document)
				resultsChan <- &indexedResult{
					index:    job.index,
					results:  res,
					err:      err,
					duration: time.Since(start),
				}
			}
		}()
	}

	// Submit jobs
	go func() {
		for i, document := range documents {
			select {
			case <-ctx.Done():
			case jobs <- indexedDocument{index: i, document: document}:
			}
		}
		close(jobs)
	}()

	// Wait for workers and close results channel
	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	// Collect results in order
	results := make([]*JobResult, len(documents))
	completed := 0
	failed := 0
	var total time.Duration

	for ir := range resultsChan {
		results[ir.index] = &JobResult{
			ID:       strconv.Itoa(ir.index),
			Results:  ir.results,
			Error:    ir.err,
			Duration: ir.duration,
		}
		completed++
		if ir.err != nil {
			failed++
		}
		total += ir.duration
	}

	return &BatchResult{
		Results:       results,
		TotalJobs:     len(documents),
		CompletedJobs: completed,
		FailedJobs:    failed,
		TotalDuration: total,
	}
}

type indexedDocument struct {
	index    int
	document []byte
}

type indexedResult struct {
	index    int
	results  map[string]*cv.Result
	err      error
	duration time.Duration
}

// ValidateBatchSimple is a convenience function for batch validation.
func ValidateBatchSimple(ctx context.Context, validateFunc BatchValidatorFunc, documents [][]byte) *BatchResult {
	bv := NewBatchValidator(validateFunc, runtime.NumCPU())
	return bv.ValidateBatch(ctx, documents)
}
