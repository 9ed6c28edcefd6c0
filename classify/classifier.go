// Package classify enriches raw validation issues into diagnostics.
//
// Classification is a pure, per-issue transform: it extracts the
// requirement text, simplifies the location path, resolves template
// identifiers against the registry, pulls out the conformance number,
// and generates remediation suggestions. Every step degrades
// gracefully: a step that finds nothing leaves its field empty, and no
// input can make classification fail. In the worst case the diagnostic
// is just the original message with its severity.
//
// A Classifier is safe for concurrent use: the registry is immutable
// and the rule list is never modified after construction, so a batch of
// issues can be classified in parallel.
package classify

import (
	cv "github.com/gocda/validator"
	"github.com/gocda/validator/registry"
)

// Classifier turns RawIssues into Diagnostics.
type Classifier struct {
	registry    *registry.TemplateRegistry
	rules       []Rule
	suggestions bool
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithSuggestions enables or disables suggestion generation.
// Suggestions are on by default.
func WithSuggestions(enabled bool) Option {
	return func(c *Classifier) {
		c.suggestions = enabled
	}
}

// WithRules replaces the built-in suggestion rules.
func WithRules(rules []Rule) Option {
	return func(c *Classifier) {
		c.rules = rules
	}
}

// New creates a classifier that resolves template identifiers against
// reg. A nil registry is allowed: template IDs are still extracted,
// they just never resolve to a name.
func New(reg *registry.TemplateRegistry, opts ...Option) *Classifier {
	c := &Classifier{
		registry:    reg,
		rules:       DefaultRules(),
		suggestions: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify enriches one raw issue into a diagnostic. It never fails;
// extraction steps that find nothing leave their fields empty.
func (c *Classifier) Classify(issue cv.RawIssue) cv.Diagnostic {
	d := cv.Diagnostic{
		Severity: issue.Severity,
		Message:  issue.Message,
		Engine:   issue.Engine,
		Line:     issue.Line,
		Column:   issue.Column,
	}
	if d.Severity == "" {
		d.Severity = cv.SeverityError
	}

	d.Requirement = ExtractRequirement(issue.Message)

	if issue.Path != "" {
		d.Path = issue.Path
		d.SimplifiedPath = SimplifyPath(issue.Path)
	}

	if id := ExtractTemplateID(issue.Message); id != "" {
		d.TemplateID = id
		if t, ok := c.registry.Lookup(id); ok {
			d.TemplateName = t.Name
		}
	}

	d.ConfNumber = ExtractConfNumber(issue.Message)

	if c.suggestions {
		d.Suggestions = Apply(c.rules, issue.Message)
	}

	return d
}

// ClassifyAll classifies a batch sequentially, preserving issue order.
// Issues are independent, so callers that want parallelism can shard
// the batch themselves; the orchestrator does exactly that.
func (c *Classifier) ClassifyAll(issues []cv.RawIssue) []cv.Diagnostic {
	if len(issues) == 0 {
		return nil
	}
	out := make([]cv.Diagnostic, len(issues))
	for i, issue := range issues {
		out[i] = c.Classify(issue)
	}
	return out
}
