// Package normalize converts engine-specific finding shapes into the
// common RawIssue record.
//
// Structural engines report {message, line, column}; assertion engines
// report {test, context, role}. Normalization maps both onto RawIssue,
// preserving whichever location form the engine supplied: line/column
// for structural findings, a context path for assertion findings.
package normalize

import (
	"strings"

	"fortio.org/safecast"

	cv "github.com/gocda/validator"
)

// RoleSeverity maps an engine's role flag to a severity.
//
// Matching is case-insensitive: "warning" and "warn" mean warning;
// everything else, including an empty role, is an error. Assertion
// rules that omit a role are error-level by Schematron convention.
func RoleSeverity(role string) cv.Severity {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "warning", "warn":
		return cv.SeverityWarning
	default:
		return cv.SeverityError
	}
}

// Structural converts a structural engine finding into a RawIssue.
//
// Line and column survive only when they are positive and fit the
// platform int; out-of-range positions are dropped rather than
// truncated to a misleading location.
func Structural(f cv.StructuralFinding) cv.RawIssue {
	issue := cv.RawIssue{
		Message:  f.Message,
		Severity: RoleSeverity(f.Severity),
		Engine:   cv.EngineStructural,
	}

	if line, err := safecast.Conv[int](f.Line); err == nil && line > 0 {
		issue.Line = line
	}
	if col, err := safecast.Conv[int](f.Column); err == nil && col > 0 {
		issue.Column = col
	}

	return issue
}

// Assertion converts an assertion engine finding into a RawIssue. The
// finding's test expression becomes the message and the context path is
// carried verbatim.
func Assertion(f cv.AssertionFinding) cv.RawIssue {
	return cv.RawIssue{
		Message:  f.Test,
		Severity: RoleSeverity(f.Role),
		Engine:   cv.EngineAssertion,
		Path:     f.Context,
	}
}

// StructuralAll converts a batch of structural findings, preserving
// engine order.
func StructuralAll(findings []cv.StructuralFinding) []cv.RawIssue {
	if len(findings) == 0 {
		return nil
	}
	issues := make([]cv.RawIssue, len(findings))
	for i, f := range findings {
		issues[i] = Structural(f)
	}
	return issues
}

// AssertionAll converts a batch of assertion findings, preserving
// engine order.
func AssertionAll(findings []cv.AssertionFinding) []cv.RawIssue {
	if len(findings) == 0 {
		return nil
	}
	issues := make([]cv.RawIssue, len(findings))
	for i, f := range findings {
		issues[i] = Assertion(f)
	}
	return issues
}
