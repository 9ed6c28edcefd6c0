package registry

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew(t *testing.T) {
	reg := New([]Template{
		{ID: "2.16.840.1.113883.10.20.22.1.1", Name: "US Realm Header", Section: "Document"},
		{ID: "2.16.840.1.113883.10.20.22.2.6.1", Name: "Allergies and Intolerances Section (entries required)", Section: "Allergies"},
	})

	if reg.Len() != 2 {
		t.Fatalf("Len() = %d; want 2", reg.Len())
	}

	tmpl, ok := reg.Lookup("2.16.840.1.113883.10.20.22.1.1")
	if !ok {
		t.Fatal("Lookup(US Realm Header OID) not found")
	}
	if tmpl.Name != "US Realm Header" {
		t.Errorf("Name = %q; want %q", tmpl.Name, "US Realm Header")
	}
	if tmpl.Section != "Document" {
		t.Errorf("Section = %q; want %q", tmpl.Section, "Document")
	}
}

func TestNew_FirstOccurrenceWins(t *testing.T) {
	reg := New([]Template{
		{ID: "2.16.840.1.113883.10.20.22.4.16", Name: "Medication Activity"},
		{ID: "2.16.840.1.113883.10.20.22.4.16", Name: "Duplicate Name"},
	})

	if reg.Len() != 1 {
		t.Fatalf("Len() = %d; want 1", reg.Len())
	}

	tmpl, _ := reg.Lookup("2.16.840.1.113883.10.20.22.4.16")
	if tmpl.Name != "Medication Activity" {
		t.Errorf("Name = %q; want first occurrence %q", tmpl.Name, "Medication Activity")
	}
}

func TestNew_SkipsEmptyIDs(t *testing.T) {
	reg := New([]Template{
		{ID: "", Name: "No ID"},
		{ID: "2.16.840.1.113883.10.20.22.4.4", Name: "Problem Observation"},
	})

	if reg.Len() != 1 {
		t.Errorf("Len() = %d; want 1", reg.Len())
	}
}

func TestLookup_ExactMatchOnly(t *testing.T) {
	reg := New([]Template{
		{ID: "2.16.840.1.113883.10.20.22.1.1", Name: "US Realm Header"},
	})

	tests := []struct {
		id   string
		want bool
	}{
		{"2.16.840.1.113883.10.20.22.1.1", true},
		{"2.16.840.1.113883.10.20.22.1", false},     // prefix
		{"2.16.840.1.113883.10.20.22.1.1.1", false}, // longer
		{"", false},
	}

	for _, tt := range tests {
		if _, ok := reg.Lookup(tt.id); ok != tt.want {
			t.Errorf("Lookup(%q) found = %v; want %v", tt.id, ok, tt.want)
		}
	}
}

func TestLookup_NilRegistry(t *testing.T) {
	var reg *TemplateRegistry

	if _, ok := reg.Lookup("2.16.840.1.113883.10.20.22.1.1"); ok {
		t.Error("nil registry Lookup found = true; want false")
	}
	if reg.Len() != 0 {
		t.Errorf("nil registry Len() = %d; want 0", reg.Len())
	}
	if ids := reg.IDs(); ids != nil {
		t.Errorf("nil registry IDs() = %v; want nil", ids)
	}
}

func TestIDs_Sorted(t *testing.T) {
	reg := New([]Template{
		{ID: "2.16.840.1.113883.10.20.22.4.16", Name: "Medication Activity"},
		{ID: "1.3.6.1.4.1.19376.1.5.3.1.3.1", Name: "Reason for Referral Section"},
		{ID: "2.16.840.1.113883.10.20.22.1.1", Name: "US Realm Header"},
	})

	ids := reg.IDs()
	if len(ids) != 3 {
		t.Fatalf("len(IDs()) = %d; want 3", len(ids))
	}
	for i := 1; i < len(ids); i++ {
		if ids[i-1] >= ids[i] {
			t.Errorf("IDs() not sorted: %q >= %q", ids[i-1], ids[i])
		}
	}
}

func TestMerge_Overrides(t *testing.T) {
	base := New([]Template{
		{ID: "2.16.840.1.113883.10.20.22.1.1", Name: "US Realm Header", Section: "Document"},
		{ID: "2.16.840.1.113883.10.20.22.4.4", Name: "Problem Observation", Section: "Problems"},
	})

	merged := base.Merge([]Template{
		{ID: "2.16.840.1.113883.10.20.22.1.1", Name: "Custom Header Name", Section: "Document"},
		{ID: "9.9.9.9.9.9.9.9.9", Name: "Local Template", Section: "Local"},
	})

	if merged.Len() != 3 {
		t.Fatalf("merged Len() = %d; want 3", merged.Len())
	}

	tmpl, _ := merged.Lookup("2.16.840.1.113883.10.20.22.1.1")
	if tmpl.Name != "Custom Header Name" {
		t.Errorf("merged Name = %q; extras should override base", tmpl.Name)
	}

	// Base registry must be untouched.
	orig, _ := base.Lookup("2.16.840.1.113883.10.20.22.1.1")
	if orig.Name != "US Realm Header" {
		t.Errorf("base Name = %q; Merge must not modify receiver", orig.Name)
	}
}

func TestDefault(t *testing.T) {
	reg := Default()

	if reg.Len() == 0 {
		t.Fatal("Default() registry is empty")
	}

	tmpl, ok := reg.Lookup("2.16.840.1.113883.10.20.22.1.1")
	if !ok {
		t.Fatal("Default() missing US Realm Header")
	}
	if tmpl.Name != "US Realm Header" {
		t.Errorf("Name = %q; want %q", tmpl.Name, "US Realm Header")
	}

	// Same instance on repeated calls.
	if Default() != reg {
		t.Error("Default() returned a different instance on second call")
	}

	t.Logf("built-in catalog: %d templates", reg.Len())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "local.json")

	content := `{"templates": [
		{"id": "9.9.9.1", "name": "Local One", "section": "Local"},
		{"id": "9.9.9.2", "name": "Local Two", "section": "Local"}
	]}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	templates, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if len(templates) != 2 {
		t.Fatalf("len(templates) = %d; want 2", len(templates))
	}
	if templates[0].Name != "Local One" {
		t.Errorf("templates[0].Name = %q; want %q", templates[0].Name, "Local One")
	}
}

func TestLoadFile_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := LoadFile(path); err == nil {
		t.Error("expected error for malformed catalog, got nil")
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()

	writeCatalog := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile(%s) failed: %v", name, err)
		}
	}

	writeCatalog("a.json", `{"templates": [{"id": "9.1", "name": "A"}]}`)
	writeCatalog("b.json", `{"templates": [{"id": "9.2", "name": "B"}]}`)
	writeCatalog("broken.json", `{{{`)
	writeCatalog("notes.txt", `ignored`)

	templates, stats, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir failed: %v", err)
	}

	if stats.Files != 2 {
		t.Errorf("stats.Files = %d; want 2", stats.Files)
	}
	if stats.Errors != 1 {
		t.Errorf("stats.Errors = %d; want 1", stats.Errors)
	}
	if stats.Templates != 2 {
		t.Errorf("stats.Templates = %d; want 2", stats.Templates)
	}
	if len(templates) != 2 {
		t.Errorf("len(templates) = %d; want 2", len(templates))
	}
}

func TestLoad_WithOverrideFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.json")
	content := `{"templates": [{"id": "2.16.840.1.113883.10.20.22.1.1", "name": "Renamed Header", "section": "Document"}]}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	reg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	tmpl, ok := reg.Lookup("2.16.840.1.113883.10.20.22.1.1")
	if !ok {
		t.Fatal("Lookup failed after Load")
	}
	if tmpl.Name != "Renamed Header" {
		t.Errorf("Name = %q; want override %q", tmpl.Name, "Renamed Header")
	}

	if reg.Len() < Default().Len() {
		t.Errorf("Load() lost built-in entries: %d < %d", reg.Len(), Default().Len())
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	reg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}
	if reg != Default() {
		t.Error("Load(\"\") should return the built-in registry")
	}
}

func BenchmarkLookup(b *testing.B) {
	reg := Default()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		reg.Lookup("2.16.840.1.113883.10.20.22.4.16")
	}
}
