package main

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"

	"github.com/beevik/etree"

	cv "github.com/gocda/validator"
)

// cdaNamespace is the HL7 v3 namespace every CDA document uses.
const cdaNamespace = "urn:hl7-org:v3"

// envelopeEngine is the built-in structural engine. It checks the C-CDA
// envelope: the document must parse, the document element must be
// ClinicalDocument in the CDA namespace, and the header must stamp the
// release's US Realm Header template. It is not a schema validator; the
// schema argument exists for interface compatibility and is ignored.
type envelopeEngine struct {
	release cv.CDARelease
}

func newEnvelopeEngine(release cv.CDARelease) *envelopeEngine {
	return &envelopeEngine{release: release}
}

// Validate implements engine.StructuralValidator.
func (e *envelopeEngine) Validate(_ context.Context, document, _ []byte) ([]cv.StructuralFinding, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(document); err != nil {
		return []cv.StructuralFinding{parseFinding(err)}, nil
	}

	root := doc.Root()
	if root == nil {
		return []cv.StructuralFinding{{
			Severity: string(cv.SeverityError),
			Message:  "Document has no document element.",
		}}, nil
	}

	if root.Tag != "ClinicalDocument" {
		return []cv.StructuralFinding{{
			Severity: string(cv.SeverityError),
			Message:  fmt.Sprintf("Document element must be 'ClinicalDocument', found '%s'.", root.Tag),
		}}, nil
	}

	var findings []cv.StructuralFinding
	if ns := root.NamespaceURI(); ns != cdaNamespace {
		findings = append(findings, cv.StructuralFinding{
			Severity: string(cv.SeverityError),
			Message:  fmt.Sprintf("Document element must be in the '%s' namespace, found '%s'.", cdaNamespace, ns),
		})
	}

	findings = append(findings, e.headerFindings(root)...)
	return findings, nil
}

// headerFindings checks that the document header carries the release's US
// Realm Header templateId. A missing root OID is an error; a root that
// matches but carries the wrong extension reads as a document from another
// release, which is worth a warning rather than a failure.
func (e *envelopeEngine) headerFindings(root *etree.Element) []cv.StructuralFinding {
	cfg, ok := cv.GetReleaseConfig(e.release)
	if !ok {
		return nil
	}

	var header *etree.Element
	for _, tid := range root.SelectElements("templateId") {
		if tid.SelectAttrValue("root", "") == cfg.HeaderTemplateID {
			header = tid
			break
		}
	}

	if header == nil {
		return []cv.StructuralFinding{{
			Severity: string(cv.SeverityError),
			Message: fmt.Sprintf("SHALL contain exactly one [1..1] templateId (CONF:1198-5252) such that it "+
				"SHALL contain exactly one [1..1] @root=\"%s\" (CONF:1198-10036).", cfg.HeaderTemplateID),
		}}
	}

	if ext := header.SelectAttrValue("extension", ""); cfg.HeaderExtension != "" && ext != cfg.HeaderExtension {
		return []cv.StructuralFinding{{
			Severity: string(cv.SeverityWarning),
			Message: fmt.Sprintf("SHALL contain exactly one [1..1] @extension=\"%s\" (CONF:1198-32503); found %q.",
				cfg.HeaderExtension, ext),
		}}
	}

	return nil
}

// parseFinding converts an XML parse failure into a structural finding,
// carrying the source line when the decoder reports one.
func parseFinding(err error) cv.StructuralFinding {
	f := cv.StructuralFinding{
		Severity: string(cv.SeverityError),
		Message:  fmt.Sprintf("Document is not well-formed XML: %v.", err),
	}
	var syntax *xml.SyntaxError
	if errors.As(err, &syntax) {
		f.Line = int64(syntax.Line)
		f.Message = fmt.Sprintf("Document is not well-formed XML: %s.", syntax.Msg)
	}
	return f
}
