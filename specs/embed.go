// Package specs provides embedded C-CDA reference data files.
//
// This package embeds the template catalog the classifier resolves
// template identifiers against:
//   - templates.json: C-CDA template OIDs with display names and the
//     clinical section each template belongs to
//
// Usage:
//
//	data, err := specs.ReadFile(specs.SpecFiles.Templates)
//	if err != nil {
//	    return err
//	}
package specs

import (
	"embed"
	"fmt"
)

// Embedded C-CDA reference data
//
//go:embed ccda/*.json
var CCDASpecs embed.FS

// specsDir is the directory inside the embedded filesystem.
const specsDir = "ccda"

// SpecFiles contains the standard file names in the data directory.
var SpecFiles = struct {
	Templates string
}{
	Templates: "templates.json",
}

// ListFiles returns the list of embedded data files.
func ListFiles() ([]string, error) {
	entries, err := CCDASpecs.ReadDir(specsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", specsDir, err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			files = append(files, entry.Name())
		}
	}

	return files, nil
}

// ReadFile reads a file from the embedded data.
func ReadFile(filename string) ([]byte, error) {
	path := specsDir + "/" + filename
	data, err := CCDASpecs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return data, nil
}

// HasFile checks if a file exists in the embedded data.
func HasFile(filename string) bool {
	_, err := CCDASpecs.ReadFile(specsDir + "/" + filename)
	return err == nil
}
