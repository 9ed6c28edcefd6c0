package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	cv "github.com/gocda/validator"
)

// Registration and run errors.
var (
	// ErrNoEngines is returned by Validate when nothing is registered.
	ErrNoEngines = errors.New("no engines registered")
)

// StructuralValidator checks document shape against a schema. It
// returns one finding per violation, or an error when the engine itself
// failed (crashed, could not load the schema). Implementations must
// honor ctx cancellation on long runs.
type StructuralValidator interface {
	Validate(ctx context.Context, document, schema []byte) ([]cv.StructuralFinding, error)
}

// AssertionValidator checks business-rule assertions from a Schematron
// rule file. The rule bytes it receives have already been repaired when
// repair is enabled.
type AssertionValidator interface {
	Validate(ctx context.Context, document, rules []byte) ([]cv.AssertionFinding, error)
}

// Config describes one engine registration.
type Config struct {
	// Name identifies the engine in the result map. Required, unique
	// per validator.
	Name string

	// Kind selects which validator field is used.
	Kind cv.EngineKind

	// Structural runs when Kind is EngineStructural.
	Structural StructuralValidator

	// Assertion runs when Kind is EngineAssertion.
	Assertion AssertionValidator

	// Schema is the artifact handed to a structural engine.
	Schema []byte

	// Rules is the raw rule file handed to an assertion engine, before
	// repair.
	Rules []byte

	// Timeout bounds this engine's run. Zero uses the validator's
	// EngineTimeout option.
	Timeout time.Duration
}

// validate checks a registration for structural problems.
func (c *Config) validate() error {
	if c.Name == "" {
		return errors.New("engine name is required")
	}
	switch c.Kind {
	case cv.EngineStructural:
		if c.Structural == nil {
			return fmt.Errorf("engine %q: structural kind needs a StructuralValidator", c.Name)
		}
	case cv.EngineAssertion:
		if c.Assertion == nil {
			return fmt.Errorf("engine %q: assertion kind needs an AssertionValidator", c.Name)
		}
	default:
		return fmt.Errorf("engine %q: unknown kind %q", c.Name, c.Kind)
	}
	return nil
}
