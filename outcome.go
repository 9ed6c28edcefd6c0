package cdavalidator

import (
	"sort"

	"github.com/gofhir/fhir/r4"
)

// ToOperationOutcome converts a validation run's results into a FHIR R4
// OperationOutcome so FHIR-side tooling can consume C-CDA validation output.
//
// Engines contribute issues in name order for a stable outcome. Structural
// findings map to the "structure" issue type, assertion findings to
// "business-rule". An engine stopped by caller cancellation contributes an
// extra informational "incomplete" issue so consumers know its list may be
// a prefix of the truth.
func ToOperationOutcome(results map[string]*Result) *r4.OperationOutcome {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	var issues []r4.OperationOutcomeIssue
	for _, name := range names {
		result := results[name]
		if result == nil {
			continue
		}
		for _, d := range result.Issues {
			issues = append(issues, diagnosticToOutcomeIssue(d))
		}
		if !result.Complete {
			issues = append(issues, incompleteIssue(name))
		}
	}

	return &r4.OperationOutcome{
		Issue: issues,
	}
}

// diagnosticToOutcomeIssue maps one diagnostic onto OperationOutcome.issue.
func diagnosticToOutcomeIssue(d Diagnostic) r4.OperationOutcomeIssue {
	severity := r4.IssueSeverityError
	if d.Severity == SeverityWarning {
		severity = r4.IssueSeverityWarning
	}

	code := r4.IssueTypeBusinessRule
	if d.Engine == EngineStructural {
		code = r4.IssueTypeStructure
	}

	// OperationOutcome has no home for C-CDA paths or CONF numbers, so the
	// readable location rides along in the diagnostics text.
	text := d.Message
	if loc := d.Location(); loc != "" {
		text += " at " + loc
	}
	if d.ConfNumber != "" {
		text += " [CONF:" + d.ConfNumber + "]"
	}

	return r4.OperationOutcomeIssue{
		Severity:    &severity,
		Code:        &code,
		Diagnostics: strPtr(text),
	}
}

// incompleteIssue marks an engine whose run was cancelled mid-flight.
func incompleteIssue(engineName string) r4.OperationOutcomeIssue {
	severity := r4.IssueSeverityInformation
	code := r4.IssueTypeIncomplete
	return r4.OperationOutcomeIssue{
		Severity:    &severity,
		Code:        &code,
		Diagnostics: strPtr("engine " + engineName + " was cancelled before finishing; its issues may be incomplete"),
	}
}

func strPtr(s string) *string {
	return &s
}
