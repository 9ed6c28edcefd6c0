// Package worker provides a worker pool for parallel batch validation.
//
// The worker pool enables efficient validation of multiple C-CDA
// documents in parallel, taking advantage of multi-core processors.
//
// Example usage:
//
//	// Create a worker pool with 4 workers
//	pool := worker.NewPool(validator, 4)
//
//	// Submit jobs
//	for _, document := range documents {
//	    pool.Submit(worker.Job{
//	        Document: document,
//	    })
//	}
//
//	// Collect everything
//	batch := pool.CloseAndWait()
//	for _, result := range batch.Results {
//	    if result.Error != nil {
//	        // Handle error
//	    }
//	    // Process result.Results, one entry per engine
//	}
package worker
