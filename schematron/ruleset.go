package schematron

import (
	"errors"
	"fmt"

	"github.com/beevik/etree"
)

// Namespace is the ISO Schematron namespace URI.
const Namespace = "http://purl.oclc.org/dsdl/schematron"

// ErrMalformed reports that rule content is not a Schematron document.
// Callers receive it when the content is not well-formed XML or when the
// root element is not <schema>.
var ErrMalformed = errors.New("malformed schematron")

// Ruleset is a parsed Schematron rule file.
//
// Rule files in the wild use the sch: prefix, a default namespace, or no
// namespace at all, so all element matching is done by local name.
type Ruleset struct {
	doc *etree.Document
}

// Parse reads Schematron rule content into a Ruleset.
//
// It returns ErrMalformed (wrapped) when the content is not well-formed
// XML or the root element's local name is not "schema". The namespace
// URI is deliberately not checked: pre-ISO rule files use a different
// namespace but repair identically.
func Parse(content []byte) (*Ruleset, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(content); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("%w: no root element", ErrMalformed)
	}
	if root.Tag != "schema" {
		return nil, fmt.Errorf("%w: root element is <%s>, want <schema>", ErrMalformed, root.Tag)
	}

	return &Ruleset{doc: doc}, nil
}

// Bytes serializes the ruleset back to XML.
func (r *Ruleset) Bytes() ([]byte, error) {
	out, err := r.doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize schematron: %w", err)
	}
	return out, nil
}

// PatternIDs returns the id attributes of all <pattern> definitions in
// document order. Patterns without an id are skipped; they cannot be
// referenced from a phase.
func (r *Ruleset) PatternIDs() []string {
	var ids []string
	walk(r.doc.Root(), func(el *etree.Element) {
		if el.Tag != "pattern" {
			return
		}
		if id := el.SelectAttrValue("id", ""); id != "" {
			ids = append(ids, id)
		}
	})
	return ids
}

// ActiveReferences returns the pattern attributes of all <active>
// elements inside <phase> elements, in document order. References
// without a pattern attribute are returned as empty strings.
func (r *Ruleset) ActiveReferences() []string {
	var refs []string
	walk(r.doc.Root(), func(el *etree.Element) {
		if el.Tag != "phase" {
			return
		}
		for _, child := range el.ChildElements() {
			if child.Tag == "active" {
				refs = append(refs, child.SelectAttrValue("pattern", ""))
			}
		}
	})
	return refs
}

// DanglingReferences returns the phase references that have no matching
// pattern definition, in document order with duplicates preserved.
func (r *Ruleset) DanglingReferences() []string {
	defined := make(map[string]struct{})
	for _, id := range r.PatternIDs() {
		defined[id] = struct{}{}
	}

	var dangling []string
	for _, ref := range r.ActiveReferences() {
		if _, ok := defined[ref]; !ok {
			dangling = append(dangling, ref)
		}
	}
	return dangling
}

// walk visits el and all its descendant elements in document order.
func walk(el *etree.Element, fn func(*etree.Element)) {
	if el == nil {
		return
	}
	fn(el)
	for _, child := range el.ChildElements() {
		walk(child, fn)
	}
}
