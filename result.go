package cdavalidator

import (
	"sync"
	"time"
)

// Result contains the outcome of one engine's run against one document.
// Use Release() to return it to the pool when done for better performance.
type Result struct {
	// Engine is the registered name of the engine that produced this result.
	Engine string `json:"engine"`

	// RunID correlates the result with the validation run that produced it.
	RunID string `json:"runId,omitempty"`

	// Valid is true if no errors were found (warnings are allowed)
	Valid bool `json:"valid"`

	// Complete is false when the caller cancelled the run before this
	// engine finished: the issue list may be a prefix of the truth.
	// Engine failures and timeouts are complete results; only caller
	// cancellation clears this flag.
	Complete bool `json:"complete"`

	// ErrorCount is the number of error diagnostics in Issues.
	ErrorCount int `json:"errorCount"`

	// WarningCount is the number of warning diagnostics in Issues.
	WarningCount int `json:"warningCount"`

	// Issues contains all diagnostics, in engine report order.
	Issues []Diagnostic `json:"issues,omitempty"`

	// Duration is how long the engine ran.
	Duration time.Duration `json:"duration,omitempty"`

	// mu protects concurrent access to Issues and the counters
	mu sync.Mutex
}

// resultPool holds reusable Result instances.
var resultPool = sync.Pool{
	New: func() any {
		return &Result{
			Issues: make([]Diagnostic, 0, 32), // Pre-allocate for typical case
		}
	},
}

// AcquireResult gets a Result from the pool.
// The result starts as valid, complete, and empty.
func AcquireResult() *Result {
	r := resultPool.Get().(*Result)
	r.Reset()
	return r
}

// Release returns the Result to the pool.
// After calling Release, the Result should not be used.
func (r *Result) Release() {
	if r == nil {
		return
	}
	// Don't return results with oversized issue slices
	if cap(r.Issues) <= 1024 {
		resultPool.Put(r)
	}
}

// Reset clears the result for reuse.
func (r *Result) Reset() {
	r.Engine = ""
	r.RunID = ""
	r.Valid = true
	r.Complete = true
	r.ErrorCount = 0
	r.WarningCount = 0
	r.Issues = r.Issues[:0]
	r.Duration = 0
}

// AddIssue adds a diagnostic to the result.
// This method is thread-safe.
func (r *Result) AddIssue(d Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.append(d)
}

// AddIssues adds multiple diagnostics to the result.
// This method is thread-safe.
func (r *Result) AddIssues(ds []Diagnostic) {
	if len(ds) == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range ds {
		r.append(d)
	}
}

// append records one diagnostic and maintains the counters.
// Callers must hold mu.
func (r *Result) append(d Diagnostic) {
	r.Issues = append(r.Issues, d)
	switch {
	case d.IsError():
		r.ErrorCount++
		r.Valid = false
	case d.IsWarning():
		r.WarningCount++
	}
}

// MarkIncomplete records that the engine was stopped before finishing.
// This method is thread-safe.
func (r *Result) MarkIncomplete() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Complete = false
}

// HasErrors returns true if there are any error diagnostics.
func (r *Result) HasErrors() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.ErrorCount > 0
}

// HasWarnings returns true if there are any warning diagnostics.
func (r *Result) HasWarnings() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.WarningCount > 0
}

// Errors returns all error diagnostics.
func (r *Result) Errors() []Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errors []Diagnostic
	for _, d := range r.Issues {
		if d.IsError() {
			errors = append(errors, d)
		}
	}
	return errors
}

// Warnings returns all warning diagnostics.
func (r *Result) Warnings() []Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()

	var warnings []Diagnostic
	for _, d := range r.Issues {
		if d.IsWarning() {
			warnings = append(warnings, d)
		}
	}
	return warnings
}

// Merge combines another result's diagnostics into this one.
// An incomplete source makes the merged result incomplete too.
func (r *Result) Merge(other *Result) {
	if other == nil {
		return
	}

	other.mu.Lock()
	issues := make([]Diagnostic, len(other.Issues))
	copy(issues, other.Issues)
	incomplete := !other.Complete
	other.mu.Unlock()

	r.AddIssues(issues)
	if incomplete {
		r.MarkIncomplete()
	}
}

// Clone creates a copy of the result (not pooled).
func (r *Result) Clone() *Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := &Result{
		Engine:       r.Engine,
		RunID:        r.RunID,
		Valid:        r.Valid,
		Complete:     r.Complete,
		ErrorCount:   r.ErrorCount,
		WarningCount: r.WarningCount,
		Issues:       make([]Diagnostic, len(r.Issues)),
		Duration:     r.Duration,
	}
	copy(clone.Issues, r.Issues)
	return clone
}

// NewResult creates a new (non-pooled) result for the named engine.
// Prefer AcquireResult() for better performance.
func NewResult(engine string) *Result {
	return &Result{
		Engine:   engine,
		Valid:    true,
		Complete: true,
		Issues:   make([]Diagnostic, 0, 8),
	}
}
