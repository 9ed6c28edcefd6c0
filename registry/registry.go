// Package registry provides the C-CDA template catalog.
//
// The catalog maps template OIDs (e.g. "2.16.840.1.113883.10.20.22.1.1")
// to human-readable names and the clinical section each template belongs
// to. The classifier uses it to resolve template identifiers extracted
// from validation messages. A built-in catalog covering the C-CDA R2.1
// template library is embedded in the binary; additional catalogs can be
// loaded from disk and merged on top.
package registry

import (
	"fmt"
	"sort"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/gocda/validator/specs"
)

// Template describes a single C-CDA template.
type Template struct {
	// ID is the template OID, e.g. "2.16.840.1.113883.10.20.22.1.1".
	ID string `json:"id"`

	// Name is the human-readable template name, e.g. "US Realm Header".
	Name string `json:"name"`

	// Section is the clinical grouping the template belongs to,
	// e.g. "Medications" or "Document".
	Section string `json:"section"`
}

// TemplateRegistry is an immutable lookup table from template OID to
// template metadata. Construct one with New, Default, or Merge; all
// methods are safe for concurrent use because the table never changes
// after construction.
type TemplateRegistry struct {
	templates map[string]Template
}

// New creates a registry from a list of templates.
//
// Entries with an empty ID are skipped. When the same ID appears more
// than once, the first occurrence wins.
func New(templates []Template) *TemplateRegistry {
	m := make(map[string]Template, len(templates))
	for _, t := range templates {
		if t.ID == "" {
			continue
		}
		if _, exists := m[t.ID]; exists {
			continue
		}
		m[t.ID] = t
	}
	return &TemplateRegistry{templates: m}
}

// Lookup returns the template for the given OID. The ID must match
// exactly; no prefix or fuzzy matching is performed.
func (r *TemplateRegistry) Lookup(id string) (Template, bool) {
	if r == nil {
		return Template{}, false
	}
	t, ok := r.templates[id]
	return t, ok
}

// Len returns the number of templates in the registry.
func (r *TemplateRegistry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.templates)
}

// IDs returns all template OIDs in the registry, sorted.
func (r *TemplateRegistry) IDs() []string {
	if r == nil {
		return nil
	}
	ids := make([]string, 0, len(r.templates))
	for id := range r.templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Merge returns a new registry containing all templates from r plus the
// given extras. Extras replace existing entries with the same ID, so a
// user-supplied catalog can override built-in names. The receiver is
// not modified.
func (r *TemplateRegistry) Merge(extras []Template) *TemplateRegistry {
	size := len(extras)
	if r != nil {
		size += len(r.templates)
	}
	m := make(map[string]Template, size)
	if r != nil {
		for id, t := range r.templates {
			m[id] = t
		}
	}
	seen := make(map[string]struct{}, len(extras))
	for _, t := range extras {
		if t.ID == "" {
			continue
		}
		// First occurrence wins among the extras themselves.
		if _, dup := seen[t.ID]; dup {
			continue
		}
		seen[t.ID] = struct{}{}
		m[t.ID] = t
	}
	return &TemplateRegistry{templates: m}
}

// catalog is the on-disk and embedded JSON catalog format.
type catalog struct {
	Templates []Template `json:"templates"`
}

var (
	defaultOnce     sync.Once
	defaultRegistry *TemplateRegistry
)

// Default returns the built-in template registry decoded from the
// embedded catalog. The registry is built once and shared; callers must
// not assume exclusive ownership.
//
// Default panics if the embedded catalog cannot be decoded, which can
// only happen with a corrupted build.
func Default() *TemplateRegistry {
	defaultOnce.Do(func() {
		data, err := specs.ReadFile(specs.SpecFiles.Templates)
		if err != nil {
			panic(fmt.Sprintf("registry: embedded template catalog missing: %v", err))
		}
		var c catalog
		if err := json.Unmarshal(data, &c); err != nil {
			panic(fmt.Sprintf("registry: embedded template catalog corrupt: %v", err))
		}
		defaultRegistry = New(c.Templates)
	})
	return defaultRegistry
}
