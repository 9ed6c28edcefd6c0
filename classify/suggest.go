package classify

import "regexp"

// Rule pairs a message predicate with a suggestion template. Rules are
// evaluated in slice order; every rule whose pattern matches appends
// one suggestion, expanded with the pattern's capture groups.
type Rule struct {
	// Name identifies the rule for tests and debugging.
	Name string

	// Pattern is the predicate over the original message.
	Pattern *regexp.Regexp

	// Text is the suggestion template. Capture groups are referenced as
	// ${1}, ${2}, ...
	Text string
}

// Apply evaluates rules against a message in declaration order and
// returns the expanded suggestions of every rule that matched. No
// matches yields nil, which is a normal outcome, not an error.
func Apply(rules []Rule, message string) []string {
	var out []string
	for _, r := range rules {
		m := r.Pattern.FindStringSubmatchIndex(message)
		if m == nil {
			continue
		}
		out = append(out, string(r.Pattern.ExpandString(nil, r.Text, message, m)))
	}
	return out
}

// DefaultRules returns the built-in suggestion rules, ordered from the
// most specific message shapes to the most generic. The first group
// targets structural-engine messages (Xerces and libxml phrasing); the
// rest target the SHALL/SHOULD phrasing of C-CDA assertion rules.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:    "invalid-content",
			Pattern: regexp.MustCompile(`Invalid content was found starting with element '([^']+)'`),
			Text:    "Element '${1}' is out of order or not allowed here; compare the section's required element sequence.",
		},
		{
			Name:    "one-of-expected",
			Pattern: regexp.MustCompile(`One of '([^']+)' is expected`),
			Text:    "Insert one of ${1} at this position.",
		},
		{
			Name:    "unexpected-element",
			Pattern: regexp.MustCompile(`Element '([^']+)'.*not expected`),
			Text:    "Remove or relocate element '${1}'; it is not allowed at this position.",
		},
		{
			Name:    "missing-attribute",
			Pattern: regexp.MustCompile(`[Aa]ttribute '([^']+)' must appear on element '([^']+)'`),
			Text:    "Add the required attribute '${1}' to element '${2}'.",
		},
		{
			Name:    "template-id",
			Pattern: regexp.MustCompile(`templateId.*?@root="([0-9.]+)"`),
			Text:    `Declare <templateId root="${1}"/> on the element this requirement applies to.`,
		},
		{
			Name:    "shall-contain",
			Pattern: regexp.MustCompile(`SHALL contain[^(.]*?\[([0-9*]+)\.\.([0-9*]+)\]\s+(\w+)`),
			Text:    "Add the required <${3}> element (cardinality ${1}..${2}).",
		},
		{
			Name:    "shall-not-contain",
			Pattern: regexp.MustCompile(`SHALL NOT contain`),
			Text:    "Remove the prohibited element or value named in the requirement.",
		},
		{
			Name:    "value-set",
			Pattern: regexp.MustCompile(`[Vv]alue ?[Ss]et ([0-9][0-9.]+)`),
			Text:    "Choose a code from ValueSet ${1}; the current code is not a member.",
		},
		{
			Name:    "code-system",
			Pattern: regexp.MustCompile(`@codeSystem="?([0-9.]+)"?`),
			Text:    "Verify @codeSystem is ${1} and the code is drawn from that system.",
		},
		{
			Name:    "null-flavor",
			Pattern: regexp.MustCompile(`nullFlavor`),
			Text:    "If the value is genuinely unknown, record it with an appropriate nullFlavor instead of omitting the element.",
		},
		{
			Name:    "status-code",
			Pattern: regexp.MustCompile(`statusCode`),
			Text:    "Set statusCode to the code this template requires (commonly \"completed\" or \"active\").",
		},
		{
			Name:    "effective-time",
			Pattern: regexp.MustCompile(`effectiveTime`),
			Text:    "Review the effectiveTime value; this constraint usually fails on a missing low/high bound or wrong precision.",
		},
	}
}
