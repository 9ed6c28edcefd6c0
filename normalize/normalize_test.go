package normalize

import (
	"testing"

	cv "github.com/gocda/validator"
)

func TestRoleSeverity(t *testing.T) {
	tests := []struct {
		role string
		want cv.Severity
	}{
		{"error", cv.SeverityError},
		{"warning", cv.SeverityWarning},
		{"warn", cv.SeverityWarning},
		{"WARNING", cv.SeverityWarning},
		{"Warn", cv.SeverityWarning},
		{" warning ", cv.SeverityWarning},
		{"", cv.SeverityError},
		{"fatal", cv.SeverityError},
		{"info", cv.SeverityError},
		{"anything-else", cv.SeverityError},
	}

	for _, tt := range tests {
		if got := RoleSeverity(tt.role); got != tt.want {
			t.Errorf("RoleSeverity(%q) = %v; want %v", tt.role, got, tt.want)
		}
	}
}

func TestStructural(t *testing.T) {
	issue := Structural(cv.StructuralFinding{
		Message: "cvc-complex-type.2.4.a: Invalid content was found starting with element 'observation'",
		Line:    42,
		Column:  17,
	})

	if issue.Engine != cv.EngineStructural {
		t.Errorf("Engine = %v; want %v", issue.Engine, cv.EngineStructural)
	}
	if !issue.IsError() {
		t.Error("severity should default to error")
	}
	if issue.Line != 42 || issue.Column != 17 {
		t.Errorf("position = %d:%d; want 42:17", issue.Line, issue.Column)
	}
	if issue.Path != "" {
		t.Errorf("Path = %q; structural issues locate by line/column", issue.Path)
	}
}

func TestStructural_WarningRole(t *testing.T) {
	issue := Structural(cv.StructuralFinding{
		Message:  "schema_reference.4: Failed to read schema document",
		Severity: "warning",
	})

	if !issue.IsWarning() {
		t.Errorf("Severity = %v; want warning", issue.Severity)
	}
}

func TestStructural_DropsInvalidPositions(t *testing.T) {
	tests := []struct {
		name         string
		line, column int64
		wantLine     int
		wantColumn   int
	}{
		{"zero positions", 0, 0, 0, 0},
		{"negative line", -1, 3, 0, 3},
		{"negative column", 7, -9, 7, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issue := Structural(cv.StructuralFinding{Message: "m", Line: tt.line, Column: tt.column})
			if issue.Line != tt.wantLine {
				t.Errorf("Line = %d; want %d", issue.Line, tt.wantLine)
			}
			if issue.Column != tt.wantColumn {
				t.Errorf("Column = %d; want %d", issue.Column, tt.wantColumn)
			}
		})
	}
}

func TestAssertion(t *testing.T) {
	issue := Assertion(cv.AssertionFinding{
		Test:    `SHALL contain exactly one [1..1] code (CONF:1198-15407).`,
		Context: "/ClinicalDocument/component/structuredBody/component[2]/section",
		Role:    "",
	})

	if issue.Engine != cv.EngineAssertion {
		t.Errorf("Engine = %v; want %v", issue.Engine, cv.EngineAssertion)
	}
	if !issue.IsError() {
		t.Error("missing role should default to error")
	}
	if issue.Path != "/ClinicalDocument/component/structuredBody/component[2]/section" {
		t.Errorf("Path = %q; context path must be preserved verbatim", issue.Path)
	}
	if issue.Line != 0 || issue.Column != 0 {
		t.Errorf("position = %d:%d; assertion issues locate by path", issue.Line, issue.Column)
	}
}

func TestAssertion_WarningRole(t *testing.T) {
	issue := Assertion(cv.AssertionFinding{
		Test: "SHOULD contain zero or one [0..1] interpretationCode (CONF:1198-8727).",
		Role: "warning",
	})

	if !issue.IsWarning() {
		t.Errorf("Severity = %v; want warning", issue.Severity)
	}
}

func TestStructuralAll_PreservesOrder(t *testing.T) {
	issues := StructuralAll([]cv.StructuralFinding{
		{Message: "first", Line: 1},
		{Message: "second", Line: 2},
		{Message: "third", Line: 3},
	})

	if len(issues) != 3 {
		t.Fatalf("len = %d; want 3", len(issues))
	}
	for i, want := range []string{"first", "second", "third"} {
		if issues[i].Message != want {
			t.Errorf("issues[%d].Message = %q; want %q", i, issues[i].Message, want)
		}
	}
}

func TestAssertionAll_PreservesOrder(t *testing.T) {
	issues := AssertionAll([]cv.AssertionFinding{
		{Test: "first"},
		{Test: "second"},
	})

	if len(issues) != 2 {
		t.Fatalf("len = %d; want 2", len(issues))
	}
	if issues[0].Message != "first" || issues[1].Message != "second" {
		t.Errorf("order not preserved: %q, %q", issues[0].Message, issues[1].Message)
	}
}

func TestBatchConversion_Empty(t *testing.T) {
	if got := StructuralAll(nil); got != nil {
		t.Errorf("StructuralAll(nil) = %v; want nil", got)
	}
	if got := AssertionAll([]cv.AssertionFinding{}); got != nil {
		t.Errorf("AssertionAll(empty) = %v; want nil", got)
	}
}
