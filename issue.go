package cdavalidator

// Severity grades a validation finding.
type Severity string

const (
	// SeverityError indicates a conformance failure that makes the document invalid.
	SeverityError Severity = "error"
	// SeverityWarning indicates a potential problem that should be reviewed.
	SeverityWarning Severity = "warning"
)

// EngineKind identifies which class of validation engine produced a finding.
type EngineKind string

const (
	// EngineStructural is the schema engine: grammar-level checks reported
	// with line/column positions.
	EngineStructural EngineKind = "structural"
	// EngineAssertion is the business-rule engine: Schematron assertions
	// reported with a document context path.
	EngineAssertion EngineKind = "assertion"
)

// RawIssue is the engine-independent form of a single validation finding.
// Structural and assertion engines report different shapes; normalize
// collapses both into this one before classification.
//
// A RawIssue locates its subject either by Path (assertion engines) or by
// Line/Column (structural engines), never both. Absent positions are zero.
type RawIssue struct {
	// Message is the engine's human-readable description, verbatim.
	Message string `json:"message"`

	// Severity of the finding (error, warning)
	Severity Severity `json:"severity"`

	// Engine identifies the kind of engine that produced the finding.
	Engine EngineKind `json:"engine"`

	// Path is the document location in the engine's path syntax, if any.
	Path string `json:"path,omitempty"`

	// Line is the 1-based source line, if the engine reported one.
	Line int `json:"line,omitempty"`

	// Column is the 1-based source column, if the engine reported one.
	Column int `json:"column,omitempty"`
}

// IsError returns true if this is an error finding.
func (i RawIssue) IsError() bool {
	return i.Severity == SeverityError
}

// IsWarning returns true if this is a warning finding.
func (i RawIssue) IsWarning() bool {
	return i.Severity == SeverityWarning
}

// String returns a human-readable representation of the finding.
func (i RawIssue) String() string {
	loc := ""
	if i.Path != "" {
		loc = " at " + i.Path
	}
	return string(i.Severity) + ": " + i.Message + loc
}

// RawIssueBuilder provides a fluent API for building raw issues.
type RawIssueBuilder struct {
	issue RawIssue
}

// NewRawIssue creates a new RawIssueBuilder.
func NewRawIssue(severity Severity, engine EngineKind) *RawIssueBuilder {
	return &RawIssueBuilder{
		issue: RawIssue{
			Severity: severity,
			Engine:   engine,
		},
	}
}

// Error creates an error finding for the given engine kind.
func Error(engine EngineKind) *RawIssueBuilder {
	return NewRawIssue(SeverityError, engine)
}

// Warning creates a warning finding for the given engine kind.
func Warning(engine EngineKind) *RawIssueBuilder {
	return NewRawIssue(SeverityWarning, engine)
}

// Message sets the finding message.
func (b *RawIssueBuilder) Message(msg string) *RawIssueBuilder {
	b.issue.Message = msg
	return b
}

// At sets the document context path.
func (b *RawIssueBuilder) At(path string) *RawIssueBuilder {
	b.issue.Path = path
	return b
}

// Position sets the source position.
func (b *RawIssueBuilder) Position(line, column int) *RawIssueBuilder {
	b.issue.Line = line
	b.issue.Column = column
	return b
}

// Build returns the constructed finding.
func (b *RawIssueBuilder) Build() RawIssue {
	return b.issue
}
