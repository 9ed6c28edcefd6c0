package classify

import (
	"regexp"
	"testing"
)

func TestExtractRequirement(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{
			name:    "quoted requirement",
			message: `The section failed: "SHALL contain exactly one [1..1] code (CONF:1198-15407)" at component[2]`,
			want:    "SHALL contain exactly one [1..1] code (CONF:1198-15407)",
		},
		{
			name:    "single quotes fall back to whole message",
			message: "Element 'status': this element is not expected.",
			want:    "Element 'status': this element is not expected.",
		},
		{
			name:    "short quoted value skipped",
			message: `Value "US" fails "SHALL be selected from ValueSet realm codes"`,
			want:    "SHALL be selected from ValueSet realm codes",
		},
		{
			name:    "unterminated quote falls back",
			message: `Broken "quote with no end`,
			want:    `Broken "quote with no end`,
		},
		{
			name:    "no quotes",
			message: "Document must declare a realmCode",
			want:    "Document must declare a realmCode",
		},
		{
			name:    "only short quotes fall back",
			message: `Expected "A" but found "B"`,
			want:    `Expected "A" but found "B"`,
		},
		{
			name:    "empty message",
			message: "",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractRequirement(tt.message); got != tt.want {
				t.Errorf("ExtractRequirement(%q) = %q; want %q", tt.message, got, tt.want)
			}
		})
	}
}

func TestExtractTemplateID(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{
			name:    "template oid",
			message: `SHALL contain exactly one [1..1] @root="2.16.840.1.113883.10.20.22.4.4" (CONF:1198-10509).`,
			want:    "2.16.840.1.113883.10.20.22.4.4",
		},
		{
			name:    "first of several",
			message: "Template 2.16.840.1.113883.10.20.22.4.16 conflicts with 2.16.840.1.113883.10.20.22.4.52",
			want:    "2.16.840.1.113883.10.20.22.4.16",
		},
		{
			name:    "cardinality is not an identifier",
			message: "SHALL contain exactly one [1..1] code",
			want:    "",
		},
		{
			name:    "short dotted run rejected",
			message: "Section 2.3.1 of the guide (release 2.1) applies",
			want:    "",
		},
		{
			name:    "ihe style identifier",
			message: "Missing templateId 1.3.6.1.4.1.19376.1.5.3.1.3.1 on section",
			want:    "1.3.6.1.4.1.19376.1.5.3.1.3.1",
		},
		{
			name:    "no identifier",
			message: "Element 'status': this element is not expected.",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractTemplateID(tt.message); got != tt.want {
				t.Errorf("ExtractTemplateID(%q) = %q; want %q", tt.message, got, tt.want)
			}
		})
	}
}

func TestExtractConfNumber(t *testing.T) {
	confShape := regexp.MustCompile(`^\d+-\d+$`)

	tests := []struct {
		name    string
		message string
		want    string
	}{
		{
			name:    "standard token",
			message: "SHALL contain exactly one [1..1] code (CONF:1198-15407).",
			want:    "1198-15407",
		},
		{
			name:    "first of several",
			message: "templateId (CONF:1198-14926) such that @root (CONF:1198-10509)",
			want:    "1198-14926",
		},
		{
			name:    "single integer not a conf number",
			message: "legacy rule (CONF:15407)",
			want:    "",
		},
		{
			name:    "bare token without marker ignored",
			message: "range 1198-15407 appears without the marker",
			want:    "",
		},
		{
			name:    "no token",
			message: "Element 'status': this element is not expected.",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractConfNumber(tt.message)
			if got != tt.want {
				t.Errorf("ExtractConfNumber(%q) = %q; want %q", tt.message, got, tt.want)
			}
			if got != "" && !confShape.MatchString(got) {
				t.Errorf("conf number %q does not match <int>-<int>", got)
			}
		})
	}
}

func BenchmarkExtractTemplateID(b *testing.B) {
	message := `SHALL contain exactly one [1..1] templateId (CONF:1198-14926) such that it SHALL contain exactly one [1..1] @root="2.16.840.1.113883.10.20.22.4.4" (CONF:1198-10509).`
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ExtractTemplateID(message)
	}
}
