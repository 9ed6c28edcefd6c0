package cdavalidator

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics tracks validation performance metrics using lock-free atomic operations.
// All methods are safe for concurrent use.
type Metrics struct {
	// Validation counts
	validationsTotal atomic.Uint64
	validationsValid atomic.Uint64

	// Timing (stored as nanoseconds)
	validationTimeTotal atomic.Uint64
	validationTimeMin   atomic.Uint64
	validationTimeMax   atomic.Uint64

	// Engine failure counts
	engineFailures atomic.Uint64
	engineTimeouts atomic.Uint64

	// Rule repair metrics
	repairsTotal      atomic.Uint64
	repairRefsRemoved atomic.Uint64
	repairFailures    atomic.Uint64

	// Classification metrics
	classificationsTotal atomic.Uint64
	templatesResolved    atomic.Uint64

	// Repair cache metrics
	cacheHits   atomic.Uint64
	cacheMisses atomic.Uint64

	// Pool metrics
	poolAcquires atomic.Uint64
	poolReleases atomic.Uint64

	// Issue counts by severity
	errorsTotal   atomic.Uint64
	warningsTotal atomic.Uint64

	// Per-engine timing
	engineTiming sync.Map // map[string]*engineMetrics
}

// engineMetrics tracks metrics for a single validation engine.
type engineMetrics struct {
	invocations atomic.Uint64
	totalTime   atomic.Uint64 // nanoseconds
	issuesFound atomic.Uint64
}

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	m := &Metrics{}
	// Initialize min to max uint64 so first value becomes the minimum
	m.validationTimeMin.Store(^uint64(0))
	return m
}

// --- Recording Methods ---

// RecordValidation records a completed document validation run.
func (m *Metrics) RecordValidation(duration time.Duration, valid bool) {
	m.validationsTotal.Add(1)
	if valid {
		m.validationsValid.Add(1)
	}

	ns := uint64(duration.Nanoseconds()) //nolint:gosec // Safe: nanoseconds are always positive for valid durations
	m.validationTimeTotal.Add(ns)

	// Update min (CAS loop)
	for {
		old := m.validationTimeMin.Load()
		if ns >= old {
			break
		}
		if m.validationTimeMin.CompareAndSwap(old, ns) {
			break
		}
	}

	// Update max (CAS loop)
	for {
		old := m.validationTimeMax.Load()
		if ns <= old {
			break
		}
		if m.validationTimeMax.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordEngineFailure records an engine that errored or timed out.
func (m *Metrics) RecordEngineFailure(timedOut bool) {
	m.engineFailures.Add(1)
	if timedOut {
		m.engineTimeouts.Add(1)
	}
}

// RecordRepair records a successful rule-file repair.
func (m *Metrics) RecordRepair(refsRemoved int) {
	m.repairsTotal.Add(1)
	m.repairRefsRemoved.Add(uint64(refsRemoved)) //nolint:gosec // Safe: refsRemoved is a small positive integer
}

// RecordRepairFailure records a rule file that could not be repaired.
func (m *Metrics) RecordRepairFailure() {
	m.repairFailures.Add(1)
}

// RecordClassification records one classified issue and whether its
// template identifier resolved against the registry.
func (m *Metrics) RecordClassification(templateResolved bool) {
	m.classificationsTotal.Add(1)
	if templateResolved {
		m.templatesResolved.Add(1)
	}
}

// RecordCacheHit records a repair cache hit.
func (m *Metrics) RecordCacheHit() {
	m.cacheHits.Add(1)
}

// RecordCacheMiss records a repair cache miss.
func (m *Metrics) RecordCacheMiss() {
	m.cacheMisses.Add(1)
}

// RecordPoolAcquire records a pool acquire operation.
func (m *Metrics) RecordPoolAcquire() {
	m.poolAcquires.Add(1)
}

// RecordPoolRelease records a pool release operation.
func (m *Metrics) RecordPoolRelease() {
	m.poolReleases.Add(1)
}

// RecordError records an error diagnostic.
func (m *Metrics) RecordError() {
	m.errorsTotal.Add(1)
}

// RecordWarning records a warning diagnostic.
func (m *Metrics) RecordWarning() {
	m.warningsTotal.Add(1)
}

// RecordIssue records a diagnostic based on severity.
func (m *Metrics) RecordIssue(severity Severity) {
	switch severity {
	case SeverityError:
		m.errorsTotal.Add(1)
	case SeverityWarning:
		m.warningsTotal.Add(1)
	}
}

// RecordEngine records one engine invocation.
func (m *Metrics) RecordEngine(engineName string, duration time.Duration, issuesFound int) {
	em := m.getOrCreateEngineMetrics(engineName)
	em.invocations.Add(1)
	em.totalTime.Add(uint64(duration.Nanoseconds())) //nolint:gosec // Safe: nanoseconds are always positive
	em.issuesFound.Add(uint64(issuesFound))          //nolint:gosec // Safe: issuesFound is a small positive integer
}

func (m *Metrics) getOrCreateEngineMetrics(name string) *engineMetrics {
	if v, ok := m.engineTiming.Load(name); ok {
		return v.(*engineMetrics)
	}
	em := &engineMetrics{}
	actual, _ := m.engineTiming.LoadOrStore(name, em)
	return actual.(*engineMetrics)
}

// --- Query Methods ---

// ValidationsTotal returns the total number of validation runs.
func (m *Metrics) ValidationsTotal() uint64 {
	return m.validationsTotal.Load()
}

// ValidationsValid returns the number of runs where every engine passed.
func (m *Metrics) ValidationsValid() uint64 {
	return m.validationsValid.Load()
}

// ValidationRate returns the percentage of valid runs (0.0 to 1.0).
func (m *Metrics) ValidationRate() float64 {
	total := m.validationsTotal.Load()
	if total == 0 {
		return 0
	}
	return float64(m.validationsValid.Load()) / float64(total)
}

// AverageValidationTime returns the average run duration.
func (m *Metrics) AverageValidationTime() time.Duration {
	total := m.validationsTotal.Load()
	if total == 0 {
		return 0
	}
	avgNs := m.validationTimeTotal.Load() / total
	return time.Duration(avgNs) //nolint:gosec // Safe: avgNs represents nanoseconds within int64 range
}

// MinValidationTime returns the minimum run duration.
func (m *Metrics) MinValidationTime() time.Duration {
	minVal := m.validationTimeMin.Load()
	if minVal == ^uint64(0) {
		return 0
	}
	return time.Duration(minVal) //nolint:gosec // Safe: minVal represents nanoseconds within int64 range
}

// MaxValidationTime returns the maximum run duration.
func (m *Metrics) MaxValidationTime() time.Duration {
	return time.Duration(m.validationTimeMax.Load()) //nolint:gosec // Safe: nanoseconds within int64 range
}

// EngineFailures returns the total failed engine invocations.
func (m *Metrics) EngineFailures() uint64 {
	return m.engineFailures.Load()
}

// EngineTimeouts returns the failed invocations that were timeouts.
func (m *Metrics) EngineTimeouts() uint64 {
	return m.engineTimeouts.Load()
}

// RepairsTotal returns the total successful rule-file repairs.
func (m *Metrics) RepairsTotal() uint64 {
	return m.repairsTotal.Load()
}

// RepairRefsRemoved returns the total dangling references removed.
func (m *Metrics) RepairRefsRemoved() uint64 {
	return m.repairRefsRemoved.Load()
}

// RepairFailures returns the total malformed rule files encountered.
func (m *Metrics) RepairFailures() uint64 {
	return m.repairFailures.Load()
}

// ClassificationsTotal returns the total classified issues.
func (m *Metrics) ClassificationsTotal() uint64 {
	return m.classificationsTotal.Load()
}

// TemplateResolutionRate returns how often extracted template identifiers
// resolved against the registry (0.0 to 1.0).
func (m *Metrics) TemplateResolutionRate() float64 {
	total := m.classificationsTotal.Load()
	if total == 0 {
		return 0
	}
	return float64(m.templatesResolved.Load()) / float64(total)
}

// CacheHits returns the total repair cache hits.
func (m *Metrics) CacheHits() uint64 {
	return m.cacheHits.Load()
}

// CacheMisses returns the total repair cache misses.
func (m *Metrics) CacheMisses() uint64 {
	return m.cacheMisses.Load()
}

// CacheHitRate returns the repair cache hit rate (0.0 to 1.0).
func (m *Metrics) CacheHitRate() float64 {
	hits := m.cacheHits.Load()
	misses := m.cacheMisses.Load()
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// PoolAcquires returns the total pool acquire operations.
func (m *Metrics) PoolAcquires() uint64 {
	return m.poolAcquires.Load()
}

// PoolReleases returns the total pool release operations.
func (m *Metrics) PoolReleases() uint64 {
	return m.poolReleases.Load()
}

// PoolLeaks returns potential pool leaks (acquires - releases).
func (m *Metrics) PoolLeaks() int64 {
	return int64(m.poolAcquires.Load()) - int64(m.poolReleases.Load()) //nolint:gosec // Safe: counters won't overflow int64
}

// ErrorsTotal returns the total error diagnostics found.
func (m *Metrics) ErrorsTotal() uint64 {
	return m.errorsTotal.Load()
}

// WarningsTotal returns the total warning diagnostics found.
func (m *Metrics) WarningsTotal() uint64 {
	return m.warningsTotal.Load()
}

// EngineStats holds statistics for a specific engine.
type EngineStats struct {
	Name        string
	Invocations uint64
	TotalTime   time.Duration
	AvgTime     time.Duration
	IssuesFound uint64
}

// EngineStats returns statistics for a specific engine.
func (m *Metrics) EngineStats(engineName string) (EngineStats, bool) {
	v, ok := m.engineTiming.Load(engineName)
	if !ok {
		return EngineStats{Name: engineName}, false
	}
	em := v.(*engineMetrics)
	invocations := em.invocations.Load()
	totalTime := em.totalTime.Load()

	var avgTime time.Duration
	if invocations > 0 {
		avgTime = time.Duration(totalTime / invocations) //nolint:gosec // Safe: nanoseconds within int64 range
	}

	return EngineStats{
		Name:        engineName,
		Invocations: invocations,
		TotalTime:   time.Duration(totalTime), //nolint:gosec // Safe: nanoseconds within int64 range
		AvgTime:     avgTime,
		IssuesFound: em.issuesFound.Load(),
	}, true
}

// AllEngineStats returns statistics for all engines.
func (m *Metrics) AllEngineStats() []EngineStats {
	var stats []EngineStats
	m.engineTiming.Range(func(key, value any) bool {
		em := value.(*engineMetrics)
		name := key.(string)
		invocations := em.invocations.Load()
		totalTime := em.totalTime.Load()

		var avgTime time.Duration
		if invocations > 0 {
			avgTime = time.Duration(totalTime / invocations) //nolint:gosec // Safe: nanoseconds within int64 range
		}

		stats = append(stats, EngineStats{
			Name:        name,
			Invocations: invocations,
			TotalTime:   time.Duration(totalTime), //nolint:gosec // Safe: nanoseconds within int64 range
			AvgTime:     avgTime,
			IssuesFound: em.issuesFound.Load(),
		})
		return true
	})
	return stats
}

// --- Export Methods ---

// Snapshot represents a point-in-time snapshot of all metrics.
type Snapshot struct {
	// Timestamp when the snapshot was taken
	Timestamp time.Time `json:"timestamp"`

	// Validation metrics
	ValidationsTotal uint64  `json:"validations_total"`
	ValidationsValid uint64  `json:"validations_valid"`
	ValidationRate   float64 `json:"validation_rate"`

	// Timing metrics (in nanoseconds for precision)
	AvgValidationTimeNs uint64 `json:"avg_validation_time_ns"`
	MinValidationTimeNs uint64 `json:"min_validation_time_ns"`
	MaxValidationTimeNs uint64 `json:"max_validation_time_ns"`

	// Engine failure metrics
	EngineFailures uint64 `json:"engine_failures"`
	EngineTimeouts uint64 `json:"engine_timeouts"`

	// Repair metrics
	RepairsTotal      uint64 `json:"repairs_total"`
	RepairRefsRemoved uint64 `json:"repair_refs_removed"`
	RepairFailures    uint64 `json:"repair_failures"`

	// Classification metrics
	ClassificationsTotal uint64  `json:"classifications_total"`
	TemplatesResolved    uint64  `json:"templates_resolved"`
	TemplateResolveRate  float64 `json:"template_resolve_rate"`

	// Cache metrics
	CacheHits    uint64  `json:"cache_hits"`
	CacheMisses  uint64  `json:"cache_misses"`
	CacheHitRate float64 `json:"cache_hit_rate"`

	// Pool metrics
	PoolAcquires uint64 `json:"pool_acquires"`
	PoolReleases uint64 `json:"pool_releases"`
	PoolLeaks    int64  `json:"pool_leaks"`

	// Issue metrics
	ErrorsTotal   uint64 `json:"errors_total"`
	WarningsTotal uint64 `json:"warnings_total"`

	// Engine metrics
	Engines []EngineStats `json:"engines,omitempty"`
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (m *Metrics) Snapshot() Snapshot {
	total := m.validationsTotal.Load()
	classTotal := m.classificationsTotal.Load()
	cacheHits := m.cacheHits.Load()
	cacheMisses := m.cacheMisses.Load()

	var avgTime, validationRate, cacheHitRate, resolveRate float64
	if total > 0 {
		avgTime = float64(m.validationTimeTotal.Load()) / float64(total)
		validationRate = float64(m.validationsValid.Load()) / float64(total)
	}
	if cacheTotal := cacheHits + cacheMisses; cacheTotal > 0 {
		cacheHitRate = float64(cacheHits) / float64(cacheTotal)
	}
	if classTotal > 0 {
		resolveRate = float64(m.templatesResolved.Load()) / float64(classTotal)
	}

	minTime := m.validationTimeMin.Load()
	if minTime == ^uint64(0) {
		minTime = 0
	}

	return Snapshot{
		Timestamp:            time.Now(),
		ValidationsTotal:     total,
		ValidationsValid:     m.validationsValid.Load(),
		ValidationRate:       validationRate,
		AvgValidationTimeNs:  uint64(avgTime),
		MinValidationTimeNs:  minTime,
		MaxValidationTimeNs:  m.validationTimeMax.Load(),
		EngineFailures:       m.engineFailures.Load(),
		EngineTimeouts:       m.engineTimeouts.Load(),
		RepairsTotal:         m.repairsTotal.Load(),
		RepairRefsRemoved:    m.repairRefsRemoved.Load(),
		RepairFailures:       m.repairFailures.Load(),
		ClassificationsTotal: classTotal,
		TemplatesResolved:    m.templatesResolved.Load(),
		TemplateResolveRate:  resolveRate,
		CacheHits:            cacheHits,
		CacheMisses:          cacheMisses,
		CacheHitRate:         cacheHitRate,
		PoolAcquires:         m.poolAcquires.Load(),
		PoolReleases:         m.poolReleases.Load(),
		PoolLeaks:            m.PoolLeaks(),
		ErrorsTotal:          m.errorsTotal.Load(),
		WarningsTotal:        m.warningsTotal.Load(),
		Engines:              m.AllEngineStats(),
	}
}

// Export returns metrics as a map suitable for external systems (Prometheus, etc.).
func (m *Metrics) Export() map[string]interface{} {
	s := m.Snapshot()
	return map[string]interface{}{
		"validations_total":      s.ValidationsTotal,
		"validations_valid":      s.ValidationsValid,
		"validation_rate":        s.ValidationRate,
		"avg_validation_time_ns": s.AvgValidationTimeNs,
		"min_validation_time_ns": s.MinValidationTimeNs,
		"max_validation_time_ns": s.MaxValidationTimeNs,
		"engine_failures":        s.EngineFailures,
		"engine_timeouts":        s.EngineTimeouts,
		"repairs_total":          s.RepairsTotal,
		"repair_refs_removed":    s.RepairRefsRemoved,
		"repair_failures":        s.RepairFailures,
		"classifications_total":  s.ClassificationsTotal,
		"templates_resolved":     s.TemplatesResolved,
		"template_resolve_rate":  s.TemplateResolveRate,
		"cache_hits":             s.CacheHits,
		"cache_misses":           s.CacheMisses,
		"cache_hit_rate":         s.CacheHitRate,
		"pool_acquires":          s.PoolAcquires,
		"pool_releases":          s.PoolReleases,
		"pool_leaks":             s.PoolLeaks,
		"errors_total":           s.ErrorsTotal,
		"warnings_total":         s.WarningsTotal,
	}
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.validationsTotal.Store(0)
	m.validationsValid.Store(0)
	m.validationTimeTotal.Store(0)
	m.validationTimeMin.Store(^uint64(0))
	m.validationTimeMax.Store(0)
	m.engineFailures.Store(0)
	m.engineTimeouts.Store(0)
	m.repairsTotal.Store(0)
	m.repairRefsRemoved.Store(0)
	m.repairFailures.Store(0)
	m.classificationsTotal.Store(0)
	m.templatesResolved.Store(0)
	m.cacheHits.Store(0)
	m.cacheMisses.Store(0)
	m.poolAcquires.Store(0)
	m.poolReleases.Store(0)
	m.errorsTotal.Store(0)
	m.warningsTotal.Store(0)

	// Clear engine timing
	m.engineTiming.Range(func(key, _ any) bool {
		m.engineTiming.Delete(key)
		return true
	})
}
