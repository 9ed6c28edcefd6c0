package cdavalidator

// StructuralFinding is the native output shape of a structural (schema)
// engine: a message pinned to a source position. Positions are 64-bit
// because some engines report byte offsets in the same fields; values that
// do not fit a platform int are dropped during normalization rather than
// truncated.
type StructuralFinding struct {
	// Message is the engine's description of the grammar violation.
	Message string `json:"message"`

	// Line is the 1-based source line, or 0 when unknown.
	Line int64 `json:"line,omitempty"`

	// Column is the 1-based source column, or 0 when unknown.
	Column int64 `json:"column,omitempty"`

	// Severity is the engine's own severity word ("error", "warning").
	Severity string `json:"severity,omitempty"`
}

// AssertionFinding is the native output shape of an assertion (Schematron)
// engine: the failed assertion's text, the document context it fired in,
// and the rule author's role flag.
type AssertionFinding struct {
	// Test is the human-readable text of the failed assertion.
	Test string `json:"test"`

	// Context is the document path the assertion was evaluated against.
	Context string `json:"context,omitempty"`

	// Role is the severity flag from the rule file ("error", "warning");
	// empty means the rule author did not say, which reads as error.
	Role string `json:"role,omitempty"`
}
