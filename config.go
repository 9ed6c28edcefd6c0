package cdavalidator

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values can be written as "30s".
type Duration time.Duration

// UnmarshalYAML decodes a duration string like "45s" or "2m".
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML encodes the duration in time.Duration string form.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Config is the file form of validator configuration. It mirrors Options
// plus the engine wiring the library cannot know by itself: which engines
// to run and where their schema and rule files live.
//
// Flags that default to true (repair, suggestions) are pointers so that an
// absent key keeps the default instead of switching the feature off.
type Config struct {
	// Release selects the C-CDA release ("R1.1", "R2.0", "R2.1").
	Release string `yaml:"release"`

	// Templates is an optional path to an extra template table (JSON),
	// merged over the built-in registry.
	Templates string `yaml:"templates,omitempty"`

	Repair          *bool    `yaml:"repair,omitempty"`
	RepairCacheSize int      `yaml:"repair_cache_size,omitempty"`
	DiskCache       bool     `yaml:"disk_cache,omitempty"`
	CacheDir        string   `yaml:"cache_dir,omitempty"`
	Suggestions     *bool    `yaml:"suggestions,omitempty"`
	Strict          bool     `yaml:"strict,omitempty"`
	MaxIssues       int      `yaml:"max_issues,omitempty"`
	Workers         int      `yaml:"workers,omitempty"`
	EngineTimeout   Duration `yaml:"engine_timeout,omitempty"`

	// Engines lists the engines to register, in registration order.
	Engines []EngineConfig `yaml:"engines"`
}

// EngineConfig describes one engine entry in the config file.
type EngineConfig struct {
	// Name is the registered engine name; results are keyed by it.
	Name string `yaml:"name"`

	// Kind is "structural" or "assertion".
	Kind string `yaml:"kind"`

	// Schema is the schema file path (structural engines).
	Schema string `yaml:"schema,omitempty"`

	// Rules is the rule file path (assertion engines).
	Rules string `yaml:"rules,omitempty"`

	// Timeout overrides the validator-wide engine timeout.
	Timeout Duration `yaml:"timeout,omitempty"`
}

// LoadConfig reads and validates a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &c, nil
}

// Validate checks the config for contradictions before any engine runs.
func (c *Config) Validate() error {
	if c.Release != "" && !CDARelease(c.Release).IsValid() {
		return fmt.Errorf("unknown release %q", c.Release)
	}
	seen := make(map[string]bool, len(c.Engines))
	for i, e := range c.Engines {
		if e.Name == "" {
			return fmt.Errorf("engine %d: name is required", i)
		}
		if seen[e.Name] {
			return fmt.Errorf("engine %q: duplicate name", e.Name)
		}
		seen[e.Name] = true
		switch EngineKind(e.Kind) {
		case EngineStructural:
			if e.Schema == "" {
				return fmt.Errorf("engine %q: structural engines need a schema file", e.Name)
			}
		case EngineAssertion:
			if e.Rules == "" {
				return fmt.Errorf("engine %q: assertion engines need a rule file", e.Name)
			}
		default:
			return fmt.Errorf("engine %q: unknown kind %q", e.Name, e.Kind)
		}
	}
	return nil
}

// ToOptions translates the config into functional options.
// Unset keys contribute nothing, so defaults stay in force.
func (c *Config) ToOptions() []Option {
	var opts []Option
	if c.Repair != nil {
		opts = append(opts, WithRepair(*c.Repair))
	}
	if c.RepairCacheSize > 0 {
		opts = append(opts, WithRepairCacheSize(c.RepairCacheSize))
	}
	if c.DiskCache {
		opts = append(opts, WithDiskCache(true))
	}
	if c.CacheDir != "" {
		opts = append(opts, WithCacheDir(c.CacheDir))
	}
	if c.Suggestions != nil {
		opts = append(opts, WithSuggestions(*c.Suggestions))
	}
	if c.Strict {
		opts = append(opts, WithStrictMode(true))
	}
	if c.MaxIssues > 0 {
		opts = append(opts, WithMaxIssues(c.MaxIssues))
	}
	if c.Workers > 0 {
		opts = append(opts, WithWorkerCount(c.Workers))
	}
	if c.EngineTimeout > 0 {
		opts = append(opts, WithEngineTimeout(time.Duration(c.EngineTimeout)))
	}
	return opts
}
