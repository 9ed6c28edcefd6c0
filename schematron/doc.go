// Package schematron parses and repairs ISO Schematron rule files.
//
// C-CDA rule files published for different release tracks sometimes ship
// with phases referencing patterns that were dropped from the file.
// Strict Schematron processors reject such files outright, so the repair
// step removes every <active pattern="..."/> reference whose pattern
// definition is missing, leaving the rest of the document untouched.
//
// The package provides:
//   - Parse: reads a rule file into a Ruleset for inspection
//   - Repair: removes dangling phase references in one shot
//   - Repairer: a caching front end that fingerprints rule content and
//     repairs each distinct file only once
//
// Example usage:
//
//	repairer := schematron.NewRepairer()
//
//	fixed, stats, err := repairer.Repair(ruleBytes)
//	if err != nil {
//	    return err // malformed input; fixed holds the original bytes
//	}
//	fmt.Printf("removed %d dangling references\n", stats.Removed)
package schematron
