package cdavalidator

import (
	"strconv"
	"strings"
)

// Diagnostic is an enriched validation finding: the original engine message
// plus everything classification could extract from it. Every field beyond
// Severity, Message and Engine is best-effort; extraction that fails leaves
// the field empty and never replaces or mutates the original message.
//
// The JSON form of this struct is the rendering contract consumed by
// downstream presentation layers.
type Diagnostic struct {
	// Severity of the finding (error, warning)
	Severity Severity `json:"severity"`

	// Message is the original engine message, verbatim.
	Message string `json:"message"`

	// Requirement is the conformance statement the finding is about:
	// the first substantial quoted span of the message, or the whole
	// message when no such span exists.
	Requirement string `json:"requirement"`

	// Path is the raw document location, when the engine gave one.
	Path string `json:"path,omitempty"`

	// SimplifiedPath is Path reduced to readable element steps.
	SimplifiedPath string `json:"simplifiedPath,omitempty"`

	// Line is the 1-based source line for structural findings.
	Line int `json:"line,omitempty"`

	// Column is the 1-based source column for structural findings.
	Column int `json:"column,omitempty"`

	// TemplateID is the C-CDA template identifier found in the message.
	TemplateID string `json:"templateId,omitempty"`

	// TemplateName is the registry's name for TemplateID, when known.
	TemplateName string `json:"templateName,omitempty"`

	// ConfNumber is the CONF conformance number found in the message.
	ConfNumber string `json:"confNumber,omitempty"`

	// Suggestions are remediation hints, in rule-declaration order.
	Suggestions []string `json:"suggestions,omitempty"`

	// Engine identifies the kind of engine that produced the finding.
	Engine EngineKind `json:"engine"`
}

// IsError returns true if this is an error diagnostic.
func (d Diagnostic) IsError() bool {
	return d.Severity == SeverityError
}

// IsWarning returns true if this is a warning diagnostic.
func (d Diagnostic) IsWarning() bool {
	return d.Severity == SeverityWarning
}

// Location returns the most readable location available: the simplified
// path, then the raw path, then a line/column reference, then the empty
// string.
func (d Diagnostic) Location() string {
	if d.SimplifiedPath != "" {
		return d.SimplifiedPath
	}
	if d.Path != "" {
		return d.Path
	}
	if d.Line > 0 {
		loc := "line " + strconv.Itoa(d.Line)
		if d.Column > 0 {
			loc += ":" + strconv.Itoa(d.Column)
		}
		return loc
	}
	return ""
}

// String returns a single-line human-readable representation.
func (d Diagnostic) String() string {
	var sb strings.Builder
	sb.WriteString(string(d.Severity))
	sb.WriteString(": ")
	sb.WriteString(d.Message)
	if loc := d.Location(); loc != "" {
		sb.WriteString(" at ")
		sb.WriteString(loc)
	}
	if d.ConfNumber != "" {
		sb.WriteString(" [CONF:")
		sb.WriteString(d.ConfNumber)
		sb.WriteString("]")
	}
	return sb.String()
}
