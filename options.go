package cdavalidator

import (
	"runtime"
	"time"
)

// Option configures the Validator.
type Option func(*Options)

// Options holds all configuration for the Validator.
type Options struct {
	// Rule repair
	EnableRepair    bool
	RepairCacheSize int
	EnableDiskCache bool
	CacheDir        string

	// Classification
	EnableSuggestions bool
	ParallelClassify  bool

	// Behavior
	StrictMode bool
	MaxIssues  int

	// Performance
	WorkerCount   int
	EngineTimeout time.Duration
	EnablePooling bool
}

// DefaultOptions returns the default configuration.
func DefaultOptions() *Options {
	return &Options{
		// Repair enabled by default; disk cache is opt-in
		EnableRepair:    true,
		RepairCacheSize: 64,
		EnableDiskCache: false,
		CacheDir:        "", // resolved against the user cache dir

		// Classification defaults
		EnableSuggestions: true,
		ParallelClassify:  true,

		// Behavior defaults
		StrictMode: false,
		MaxIssues:  0, // unlimited

		// Performance defaults
		WorkerCount:   runtime.NumCPU(),
		EngineTimeout: 60 * time.Second,
		EnablePooling: true,
	}
}

// --- Repair Options ---

// WithRepair enables or disables rule-file repair.
// With repair disabled, assertion engines receive rule files as-is.
func WithRepair(enable bool) Option {
	return func(o *Options) {
		o.EnableRepair = enable
	}
}

// WithRepairCacheSize sets how many repaired rule files are kept in memory,
// keyed by content fingerprint.
func WithRepairCacheSize(size int) Option {
	return func(o *Options) {
		if size > 0 {
			o.RepairCacheSize = size
		}
	}
}

// WithDiskCache persists repaired rule files across processes.
func WithDiskCache(enable bool) Option {
	return func(o *Options) {
		o.EnableDiskCache = enable
	}
}

// WithCacheDir sets the directory for the repair disk cache.
// Defaults to a subdirectory of os.UserCacheDir.
func WithCacheDir(dir string) Option {
	return func(o *Options) {
		o.CacheDir = dir
	}
}

// --- Classification Options ---

// WithSuggestions enables remediation suggestions on diagnostics.
func WithSuggestions(enable bool) Option {
	return func(o *Options) {
		o.EnableSuggestions = enable
	}
}

// WithParallelClassify enables parallel classification of an engine's issues.
func WithParallelClassify(enable bool) Option {
	return func(o *Options) {
		o.ParallelClassify = enable
	}
}

// --- Behavior Options ---

// WithStrictMode treats warnings as errors when deciding Result.Valid.
func WithStrictMode(enable bool) Option {
	return func(o *Options) {
		o.StrictMode = enable
	}
}

// WithMaxIssues caps the diagnostics kept per engine result.
// Use 0 for unlimited.
func WithMaxIssues(max int) Option {
	return func(o *Options) {
		o.MaxIssues = max
	}
}

// --- Performance Options ---

// WithWorkerCount sets the number of workers for classification and batch
// validation. Defaults to runtime.NumCPU().
func WithWorkerCount(count int) Option {
	return func(o *Options) {
		if count > 0 {
			o.WorkerCount = count
		}
	}
}

// WithEngineTimeout bounds each engine invocation.
// Use 0 for no timeout.
func WithEngineTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.EngineTimeout = timeout
	}
}

// WithPooling enables or disables object pooling.
// Pooling reduces GC pressure but requires calling Release() on results.
func WithPooling(enable bool) Option {
	return func(o *Options) {
		o.EnablePooling = enable
	}
}

// --- Presets ---

// FastOptions returns options optimized for speed.
// Skips suggestions and keeps more repaired rule files in memory.
func FastOptions() []Option {
	return []Option{
		WithSuggestions(false),
		WithParallelClassify(true),
		WithRepairCacheSize(256),
		WithPooling(true),
	}
}

// StrictOptions returns options for strict validation.
// Warnings fail the document and engines get generous time to finish.
func StrictOptions() []Option {
	return []Option{
		WithStrictMode(true),
		WithEngineTimeout(5 * time.Minute),
	}
}

// DebugOptions returns options useful for debugging.
// Disables pooling and caps runaway issue lists.
func DebugOptions() []Option {
	return []Option{
		WithPooling(false),
		WithMaxIssues(100),
	}
}
