package schematron

import (
	"fmt"

	"github.com/beevik/etree"

	"github.com/gocda/validator/pool"
)

// RepairStats describes what a repair pass did.
type RepairStats struct {
	// TotalReferences is the number of <active> references examined
	// across all phases.
	TotalReferences int `json:"total_references" msgpack:"total_references"`

	// Removed is the number of <active> elements removed.
	Removed int `json:"removed" msgpack:"removed"`

	// RemovedIDs lists the dangling pattern IDs in document order, one
	// entry per removed reference, duplicates included. References
	// without a pattern attribute are removed but not listed here.
	RemovedIDs []string `json:"removed_ids,omitempty" msgpack:"removed_ids"`
}

// Clean reports whether the pass found nothing to remove.
func (s *RepairStats) Clean() bool {
	return s.Removed == 0
}

// String returns a short summary like "removed 2/41 phase references".
func (s *RepairStats) String() string {
	return fmt.Sprintf("removed %d/%d phase references", s.Removed, s.TotalReferences)
}

// Repair parses rule content, removes dangling phase references, and
// returns the repaired serialization.
//
// If the content is malformed the original bytes are returned unchanged
// together with a nil stats and an error wrapping ErrMalformed. Content
// with no dangling references round-trips with zero removals, so
// repairing already-repaired output is a no-op.
func Repair(content []byte) ([]byte, *RepairStats, error) {
	rs, err := Parse(content)
	if err != nil {
		return content, nil, err
	}

	stats := rs.Repair()

	out, err := rs.Bytes()
	if err != nil {
		return content, nil, err
	}
	return out, stats, nil
}

// Repair removes every <active> element inside a <phase> whose pattern
// attribute does not match a defined <pattern> id. An <active> without a
// pattern attribute references nothing and is removed as well. The
// ruleset is modified in place.
func (r *Ruleset) Repair() *RepairStats {
	defined := pool.AcquireStringSet()
	defer pool.ReleaseStringSet(defined)

	walk(r.doc.Root(), func(el *etree.Element) {
		if el.Tag != "pattern" {
			return
		}
		if id := el.SelectAttrValue("id", ""); id != "" {
			defined[id] = struct{}{}
		}
	})

	stats := &RepairStats{}

	walk(r.doc.Root(), func(el *etree.Element) {
		if el.Tag != "phase" {
			return
		}

		var dangling []*etree.Element
		for _, child := range el.ChildElements() {
			if child.Tag != "active" {
				continue
			}
			stats.TotalReferences++

			ref := child.SelectAttrValue("pattern", "")
			if ref != "" {
				if _, ok := defined[ref]; ok {
					continue
				}
			}

			dangling = append(dangling, child)
			if ref != "" {
				stats.RemovedIDs = append(stats.RemovedIDs, ref)
			}
		}

		// Remove after the scan; removing while ranging over
		// ChildElements would skip siblings.
		for _, child := range dangling {
			el.RemoveChild(child)
		}
		stats.Removed += len(dangling)
	})

	return stats
}
