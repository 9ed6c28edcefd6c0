package classify

import (
	"regexp"
	"strings"
)

const (
	// minRequirementLen is the shortest double-quoted span treated as an
	// embedded requirement statement. Shorter spans are quoted values
	// ("US", "completed"), not conformance text.
	minRequirementLen = 8

	// minTemplateIDLen is the shortest dotted-numeric run accepted as a
	// template OID. Real C-CDA template roots are 29+ characters; the
	// floor rejects cardinalities and short numeric runs.
	minTemplateIDLen = 16

	// confMarker is the literal that precedes a conformance number.
	confMarker = "CONF:"
)

var (
	// dottedNumeric matches identifier-shaped runs: two or more
	// dot-separated numeric groups.
	dottedNumeric = regexp.MustCompile(`\d+(?:\.\d+)+`)

	// confNumber matches a two-integer conformance number right after
	// the CONF: marker.
	confNumber = regexp.MustCompile(regexp.QuoteMeta(confMarker) + `(\d+-\d+)`)
)

// ExtractRequirement returns the conformance statement a message is
// about: the first double-quoted span of at least minRequirementLen
// characters, verbatim. Messages without such a span are their own
// requirement. Single-quoted spans never count; they quote element
// names, not requirements.
func ExtractRequirement(message string) string {
	rest := message
	for {
		start := strings.IndexByte(rest, '"')
		if start < 0 {
			return message
		}
		end := strings.IndexByte(rest[start+1:], '"')
		if end < 0 {
			return message
		}
		if end >= minRequirementLen {
			return rest[start+1 : start+1+end]
		}
		rest = rest[start+1+end+1:]
	}
}

// ExtractTemplateID returns the first dotted-numeric identifier of
// template-OID length found in the message, or "" when the message
// contains none.
func ExtractTemplateID(message string) string {
	for _, loc := range dottedNumeric.FindAllStringIndex(message, -1) {
		if loc[1]-loc[0] >= minTemplateIDLen {
			return message[loc[0]:loc[1]]
		}
	}
	return ""
}

// ExtractConfNumber returns the first conformance number in the
// message: an <integer>-<integer> token immediately preceded by the
// CONF: marker. Bare numbers without the marker are ignored.
func ExtractConfNumber(message string) string {
	m := confNumber.FindStringSubmatch(message)
	if m == nil {
		return ""
	}
	return m[1]
}
