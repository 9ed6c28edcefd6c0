package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
)

// LoadStats contains statistics about catalog loading.
type LoadStats struct {
	// Files is the number of catalog files read successfully.
	Files int

	// Templates is the number of template entries loaded.
	Templates int

	// Errors is the number of files that could not be read or decoded.
	Errors int
}

// LoadFile reads a template catalog from a JSON file.
//
// The file uses the same format as the embedded catalog:
//
//	{"templates": [{"id": "...", "name": "...", "section": "..."}]}
func LoadFile(path string) ([]Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	var c catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode catalog %s: %w", path, err)
	}

	return c.Templates, nil
}

// LoadDir reads every *.json catalog in a directory and returns the
// combined template list. Files that cannot be read or decoded are
// skipped and counted in the returned stats; load order is the
// directory's lexical file order, so duplicate handling follows the
// first-occurrence rule of New.
func LoadDir(dir string) ([]Template, *LoadStats, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read catalog directory: %w", err)
	}

	stats := &LoadStats{}
	var templates []Template

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		if strings.HasPrefix(name, ".") {
			continue
		}

		loaded, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			stats.Errors++
			continue
		}

		stats.Files++
		stats.Templates += len(loaded)
		templates = append(templates, loaded...)
	}

	return templates, stats, nil
}

// Load builds a registry from the built-in catalog plus an optional
// user catalog file. An empty path returns the built-in registry
// unchanged; otherwise the file's entries override built-in entries
// with the same OID.
func Load(path string) (*TemplateRegistry, error) {
	base := Default()
	if path == "" {
		return base, nil
	}

	extras, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	return base.Merge(extras), nil
}
