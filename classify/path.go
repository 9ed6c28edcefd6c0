package classify

import (
	"strconv"
	"strings"

	"github.com/gocda/validator/pool"
)

// maxPathSteps is how many trailing steps a simplified path keeps.
const maxPathSteps = 4

// pathStep is one '/'-separated step of a location path, reduced to its
// local element name and optional positional index.
type pathStep struct {
	name  string
	index int // -1 when the step had no positional predicate
}

// SimplifyPath reduces an engine-reported location path to a short,
// readable form:
//
//   - namespace qualifiers are stripped to local element names, covering
//     prefixed steps (cda:section), Clark notation ({urn:hl7-org:v3}section)
//     and local-name() predicates (*[local-name()='section'])
//   - positional indexes are dropped unless dropping one would leave two
//     identical adjacent steps, in which case the index is kept
//   - only the last 4 steps are kept, preceded by "..." when steps were
//     elided
//
// The empty path simplifies to the empty path. A path whose simplified
// form would come out longer than the original (possible only for
// degenerate inputs) is returned unchanged, so the simplified form is
// never longer than what the engine reported.
func SimplifyPath(path string) string {
	if path == "" {
		return ""
	}

	steps := splitSteps(path)
	if len(steps) == 0 {
		return path
	}

	// Keep an index only where the bare name would collide with an
	// adjacent step's name.
	for i := range steps {
		if steps[i].index < 0 {
			continue
		}
		ambiguous := (i > 0 && steps[i-1].name == steps[i].name) ||
			(i+1 < len(steps) && steps[i+1].name == steps[i].name)
		if !ambiguous {
			steps[i].index = -1
		}
	}

	truncated := len(steps) > maxPathSteps
	if truncated {
		steps = steps[len(steps)-maxPathSteps:]
	}

	b := pool.AcquirePathBuilder()
	defer b.Release()

	if truncated {
		b.AppendEllipsis()
	}
	for _, s := range steps {
		b.AppendStep(s.name)
		if s.index >= 0 {
			b.AppendIndex(s.index)
		}
	}

	simplified := b.String()
	if simplified == "" || len(simplified) > len(path) {
		return path
	}
	return simplified
}

// splitSteps breaks a path on '/' and simplifies each step. Empty
// fragments (leading slash, double slashes) are skipped.
func splitSteps(path string) []pathStep {
	parts := strings.Split(path, "/")
	steps := make([]pathStep, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		name, index := simplifyStep(part)
		if name == "" {
			// Nothing recognizable; keep the raw step rather than
			// dropping location information.
			name = part
			index = -1
		}
		steps = append(steps, pathStep{name: name, index: index})
	}
	return steps
}

// simplifyStep reduces one step to its local name and positional index.
func simplifyStep(step string) (string, int) {
	rest := step
	index := -1
	localName := ""

	// Peel trailing [...] predicates. A numeric predicate is the
	// position; a local-name() predicate names a wildcard step; any
	// other predicate is dropped.
	for strings.HasSuffix(rest, "]") {
		open := strings.LastIndex(rest, "[")
		if open < 0 {
			break
		}
		inner := rest[open+1 : len(rest)-1]
		switch {
		case isDigits(inner):
			if n, err := strconv.Atoi(inner); err == nil {
				index = n
			}
		case strings.HasPrefix(inner, "local-name()"):
			if q := quotedValue(inner); q != "" {
				localName = q
			}
		}
		rest = rest[:open]
	}

	// Clark notation: {uri}name.
	if strings.HasPrefix(rest, "{") {
		if end := strings.Index(rest, "}"); end >= 0 {
			rest = rest[end+1:]
		}
	}

	// Prefix notation: ns:name.
	if colon := strings.LastIndex(rest, ":"); colon >= 0 {
		rest = rest[colon+1:]
	}

	if rest == "*" && localName != "" {
		rest = localName
	}
	if rest == "*" {
		rest = ""
	}

	return rest, index
}

// quotedValue extracts the first single- or double-quoted value from s.
func quotedValue(s string) string {
	for _, q := range []byte{'\'', '"'} {
		start := strings.IndexByte(s, q)
		if start < 0 {
			continue
		}
		end := strings.IndexByte(s[start+1:], q)
		if end < 0 {
			continue
		}
		return s[start+1 : start+1+end]
	}
	return ""
}

// isDigits reports whether s is a non-empty run of ASCII digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
