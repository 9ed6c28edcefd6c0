// Package engine orchestrates C-CDA document validation.
//
// A Validator fans a document out to every registered engine
// concurrently, repairs Schematron rule files before assertion engines
// see them, and turns each engine's findings into classified
// diagnostics. Engine failures and timeouts never abort the run: the
// failing engine's result carries a single synthetic error diagnostic
// and every other engine reports normally.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	cv "github.com/gocda/validator"
	"github.com/gocda/validator/classify"
	"github.com/gocda/validator/normalize"
	"github.com/gocda/validator/registry"
	"github.com/gocda/validator/schematron"
)

// parallelClassifyThreshold is the batch size below which classifying
// in parallel costs more than it saves.
const parallelClassifyThreshold = 16

// Validator coordinates engines, rule repair, and classification.
//
// Configure it fully (Register, SetTemplates) before the first Validate
// call; registration is not synchronized against running validations.
type Validator struct {
	release cv.CDARelease
	options *cv.Options

	engines []Config
	names   map[string]struct{}

	repairer   *schematron.Repairer
	templates  *registry.TemplateRegistry
	classifier *classify.Classifier

	metrics *cv.Metrics

	// Worker pool for batch validation
	workerPool     chan struct{}
	workerPoolOnce sync.Once
}

// New creates a validator for the given C-CDA release.
func New(ctx context.Context, release cv.CDARelease, opts ...cv.Option) (*Validator, error) {
	options := cv.DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	v := &Validator{
		release: release,
		options: options,
		names:   make(map[string]struct{}),
		metrics: cv.NewMetrics(),
	}

	if options.EnableRepair {
		repairerOpts := []schematron.RepairerOption{
			schematron.WithCacheSize(options.RepairCacheSize),
		}
		if options.EnableDiskCache {
			disk, err := schematron.OpenDiskCache(options.CacheDir)
			if err != nil {
				return nil, fmt.Errorf("failed to open repair disk cache: %w", err)
			}
			repairerOpts = append(repairerOpts, schematron.WithDiskCache(disk))
		}
		v.repairer = schematron.NewRepairer(repairerOpts...)
	}

	v.templates = registry.Default()
	v.buildClassifier()

	return v, nil
}

// buildClassifier constructs the classifier from the current template
// registry and options.
func (v *Validator) buildClassifier() {
	v.classifier = classify.New(v.templates,
		classify.WithSuggestions(v.options.EnableSuggestions))
}

// SetTemplates replaces the template registry used for classification.
// The built-in registry is used until this is called.
func (v *Validator) SetTemplates(reg *registry.TemplateRegistry) {
	v.templates = reg
	v.buildClassifier()
}

// Register adds an engine. Names must be unique; the result map is
// keyed by them.
func (v *Validator) Register(cfg Config) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	if _, dup := v.names[cfg.Name]; dup {
		return fmt.Errorf("engine %q already registered", cfg.Name)
	}
	v.names[cfg.Name] = struct{}{}
	v.engines = append(v.engines, cfg)
	return nil
}

// Engines returns the registered engine names in registration order.
func (v *Validator) Engines() []string {
	names := make([]string, len(v.engines))
	for i, e := range v.engines {
		names[i] = e.Name
	}
	return names
}

// Validate runs every registered engine against the document
// concurrently and returns one result per engine, keyed by engine
// name.
//
// Engine crashes and timeouts are absorbed: the affected engine's
// result is invalid with one synthetic error diagnostic, and remaining
// engines are unaffected. Caller cancellation stops the wait; engines
// that had not finished return results marked incomplete. The only
// error condition is having no engines registered.
func (v *Validator) Validate(ctx context.Context, document []byte) (map[string]*cv.Result, error) {
	if len(v.engines) == 0 {
		return nil, ErrNoEngines
	}

	start := time.Now()
	runID := uuid.NewString()

	results := make([]*cv.Result, len(v.engines))
	var g errgroup.Group
	for i := range v.engines {
		g.Go(func() error {
			results[i] = v.runEngine(ctx, &v.engines[i], document, runID)
			return nil
		})
	}
	_ = g.Wait() // engine failures are absorbed into results, never returned

	valid := true
	out := make(map[string]*cv.Result, len(results))
	for _, r := range results {
		out[r.Engine] = r
		if !r.Valid {
			valid = false
		}
	}

	v.metrics.RecordValidation(time.Since(start), valid)
	return out, nil
}

// runEngine executes one engine with repair, timeout isolation,
// normalization, and classification.
func (v *Validator) runEngine(ctx context.Context, cfg *Config, document []byte, runID string) *cv.Result {
	start := time.Now()

	result := v.newResult(cfg.Name, runID)

	// Assertion engines get the repaired rule file. A malformed rule
	// file is this engine's failure, not the run's.
	rules := cfg.Rules
	if cfg.Kind == cv.EngineAssertion && v.repairer != nil {
		repaired, stats, err := v.repairer.Repair(rules)
		if err != nil {
			v.metrics.RecordRepairFailure()
			v.metrics.RecordEngineFailure(false)
			v.addFailure(result, cfg, fmt.Sprintf("rule file repair failed: %v", err))
			v.finishEngine(cfg.Name, result, start)
			return result
		}
		v.metrics.RecordRepair(stats.Removed)
		rules = repaired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = v.options.EngineTimeout
	}
	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type outcome struct {
		issues []cv.RawIssue
		err    error
	}

	// The engine runs in its own goroutine so a stuck implementation
	// cannot hold the run past its deadline. The buffered channel lets
	// an abandoned engine finish and exit on its own.
	ch := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- outcome{err: fmt.Errorf("engine panic: %v", r)}
			}
		}()
		switch cfg.Kind {
		case cv.EngineStructural:
			findings, err := cfg.Structural.Validate(runCtx, document, cfg.Schema)
			if err != nil {
				ch <- outcome{err: err}
				return
			}
			ch <- outcome{issues: normalize.StructuralAll(findings)}
		case cv.EngineAssertion:
			findings, err := cfg.Assertion.Validate(runCtx, document, rules)
			if err != nil {
				ch <- outcome{err: err}
				return
			}
			ch <- outcome{issues: normalize.AssertionAll(findings)}
		}
	}()

	select {
	case out := <-ch:
		if out.err != nil {
			v.failEngine(result, cfg, out.err, ctx.Err(), timeout)
		} else {
			result.AddIssues(v.classifyBatch(out.issues))
		}
	case <-runCtx.Done():
		v.failEngine(result, cfg, context.DeadlineExceeded, ctx.Err(), timeout)
	}

	v.finishEngine(cfg.Name, result, start)
	return result
}

// failEngine turns an engine error into the result's state. Caller
// cancellation marks the result incomplete; a deadline becomes a
// timeout diagnostic; anything else becomes a failure diagnostic. A
// well-behaved engine returning ctx.Err() and an abandoned one are
// indistinguishable to callers.
func (v *Validator) failEngine(result *cv.Result, cfg *Config, err, callerErr error, timeout time.Duration) {
	switch {
	case callerErr != nil:
		result.MarkIncomplete()
	case errors.Is(err, context.DeadlineExceeded):
		v.metrics.RecordEngineFailure(true)
		v.addFailure(result, cfg, fmt.Sprintf("engine timed out after %s", timeout))
	default:
		v.metrics.RecordEngineFailure(false)
		v.addFailure(result, cfg, fmt.Sprintf("engine failed: %v", err))
	}
}

// newResult builds the per-engine result, pooled when enabled.
func (v *Validator) newResult(name, runID string) *cv.Result {
	var result *cv.Result
	if v.options.EnablePooling {
		result = cv.AcquireResult()
		result.Engine = name
	} else {
		result = cv.NewResult(name)
	}
	result.RunID = runID
	return result
}

// addFailure appends the synthetic diagnostic for an engine-level
// failure. The result stays complete: the engine's outcome is known,
// it is a failure.
func (v *Validator) addFailure(result *cv.Result, cfg *Config, msg string) {
	result.AddIssue(cv.Diagnostic{
		Severity:    cv.SeverityError,
		Message:     msg,
		Requirement: msg,
		Engine:      cfg.Kind,
	})
}

// finishEngine stamps duration and records per-engine metrics.
func (v *Validator) finishEngine(name string, result *cv.Result, start time.Time) {
	if v.options.StrictMode && result.WarningCount > 0 {
		result.Valid = false
	}
	result.Duration = time.Since(start)
	v.metrics.RecordEngine(name, result.Duration, len(result.Issues))
	for _, d := range result.Issues {
		v.metrics.RecordIssue(d.Severity)
	}
}

// classifyBatch classifies normalized issues, in parallel for large
// batches when enabled. Output order always matches input order.
func (v *Validator) classifyBatch(issues []cv.RawIssue) []cv.Diagnostic {
	if len(issues) == 0 {
		return nil
	}
	if v.options.MaxIssues > 0 && len(issues) > v.options.MaxIssues {
		issues = issues[:v.options.MaxIssues]
	}

	var diags []cv.Diagnostic
	if v.options.ParallelClassify && len(issues) >= parallelClassifyThreshold {
		diags = make([]cv.Diagnostic, len(issues))
		var g errgroup.Group
		g.SetLimit(v.options.WorkerCount)
		for i := range issues {
			g.Go(func() error {
				diags[i] = v.classifier.Classify(issues[i])
				return nil
			})
		}
		_ = g.Wait() // classification never fails
	} else {
		diags = v.classifier.ClassifyAll(issues)
	}

	for _, d := range diags {
		v.metrics.RecordClassification(d.TemplateName != "")
	}
	return diags
}

// ValidateBatch validates multiple documents in parallel, bounded by
// the worker count option. Results are positional: results[i] belongs
// to documents[i].
func (v *Validator) ValidateBatch(ctx context.Context, documents [][]byte) []map[string]*cv.Result {
	results := make([]map[string]*cv.Result, len(documents))

	v.workerPoolOnce.Do(func() {
		workers := v.options.WorkerCount
		if workers <= 0 {
			workers = 4
		}
		v.workerPool = make(chan struct{}, workers)
	})

	var wg sync.WaitGroup
	for i, doc := range documents {
		wg.Add(1)
		go func(idx int, document []byte) {
			defer wg.Done()

			v.workerPool <- struct{}{}
			defer func() { <-v.workerPool }()

			res, err := v.Validate(ctx, document)
			if err != nil {
				res = nil
			}
			results[idx] = res
		}(i, doc)
	}

	wg.Wait()
	return results
}

// Metrics returns the validator's metrics.
func (v *Validator) Metrics() *cv.Metrics {
	return v.metrics
}

// Release returns the C-CDA release this validator is configured for.
func (v *Validator) Release() cv.CDARelease {
	return v.release
}

// Options returns the validator's options.
func (v *Validator) Options() *cv.Options {
	return v.options
}

// Repairer returns the rule file repairer, or nil when repair is
// disabled.
func (v *Validator) Repairer() *schematron.Repairer {
	return v.repairer
}

// Close releases resources held by the validator.
func (v *Validator) Close() error {
	if v.repairer != nil {
		v.repairer.ClearCache()
	}
	return nil
}
