package cdavalidator

import (
	"testing"
)

func TestCDARelease_String(t *testing.T) {
	tests := []struct {
		release CDARelease
		want    string
	}{
		{R11, "R1.1"},
		{R20, "R2.0"},
		{R21, "R2.1"},
	}

	for _, tt := range tests {
		if got := tt.release.String(); got != tt.want {
			t.Errorf("%v.String() = %q; want %q", tt.release, got, tt.want)
		}
	}
}

func TestCDARelease_IsValid(t *testing.T) {
	tests := []struct {
		release CDARelease
		want    bool
	}{
		{R11, true},
		{R20, true},
		{R21, true},
		{"R3.0", false},
		{"invalid", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := tt.release.IsValid(); got != tt.want {
			t.Errorf("%v.IsValid() = %v; want %v", tt.release, got, tt.want)
		}
	}
}

func TestGetReleaseConfig_R11(t *testing.T) {
	cfg, ok := GetReleaseConfig(R11)
	if !ok {
		t.Fatal("GetReleaseConfig(R11) returned false")
	}

	if cfg.HeaderTemplateID != "2.16.840.1.113883.10.20.22.1.1" {
		t.Errorf("HeaderTemplateID = %q; want %q", cfg.HeaderTemplateID, "2.16.840.1.113883.10.20.22.1.1")
	}
	if cfg.HeaderExtension != "" {
		t.Errorf("HeaderExtension = %q; want empty (R1.1 predates versioned templates)", cfg.HeaderExtension)
	}
	if cfg.SchemaFile != "CDA.xsd" {
		t.Errorf("SchemaFile = %q; want %q", cfg.SchemaFile, "CDA.xsd")
	}
	if cfg.RuleFile != "consolidation-r1.1.sch" {
		t.Errorf("RuleFile = %q; want %q", cfg.RuleFile, "consolidation-r1.1.sch")
	}
}

func TestGetReleaseConfig_R20(t *testing.T) {
	cfg, ok := GetReleaseConfig(R20)
	if !ok {
		t.Fatal("GetReleaseConfig(R20) returned false")
	}

	if cfg.HeaderExtension != "2014-06-09" {
		t.Errorf("HeaderExtension = %q; want %q", cfg.HeaderExtension, "2014-06-09")
	}
	if cfg.SchemaFile != "CDA_SDTC.xsd" {
		t.Errorf("SchemaFile = %q; want %q", cfg.SchemaFile, "CDA_SDTC.xsd")
	}
	if cfg.RuleFile != "consolidation-r2.0.sch" {
		t.Errorf("RuleFile = %q; want %q", cfg.RuleFile, "consolidation-r2.0.sch")
	}
}

func TestGetReleaseConfig_R21(t *testing.T) {
	cfg, ok := GetReleaseConfig(R21)
	if !ok {
		t.Fatal("GetReleaseConfig(R21) returned false")
	}

	if cfg.HeaderTemplateID != "2.16.840.1.113883.10.20.22.1.1" {
		t.Errorf("HeaderTemplateID = %q; want %q", cfg.HeaderTemplateID, "2.16.840.1.113883.10.20.22.1.1")
	}
	if cfg.HeaderExtension != "2015-08-01" {
		t.Errorf("HeaderExtension = %q; want %q", cfg.HeaderExtension, "2015-08-01")
	}
	if cfg.SchemaFile != "CDA_SDTC.xsd" {
		t.Errorf("SchemaFile = %q; want %q", cfg.SchemaFile, "CDA_SDTC.xsd")
	}
	if cfg.RuleFile != "consolidation-r2.1.sch" {
		t.Errorf("RuleFile = %q; want %q", cfg.RuleFile, "consolidation-r2.1.sch")
	}
}

func TestGetReleaseConfig_Invalid(t *testing.T) {
	_, ok := GetReleaseConfig("R3.0")
	if ok {
		t.Error("GetReleaseConfig(R3.0) should return false")
	}
}

func BenchmarkCDARelease_IsValid(b *testing.B) {
	releases := []CDARelease{R11, R20, R21, "invalid"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = releases[i%len(releases)].IsValid()
	}
}
