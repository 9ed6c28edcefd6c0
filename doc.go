// Package cdavalidator turns raw C-CDA validation engine output into
// normalized, human-actionable diagnostics.
//
// This package is designed from the ground up to leverage Go's strengths:
// concurrency with goroutines, sync.Pool for memory efficiency, generics
// for type-safe caches, and small composable interfaces.
//
// # Quick Start
//
//	import (
//	    cv "github.com/gocda/validator"
//	    "github.com/gocda/validator/engine"
//	)
//
//	validator, err := engine.New(ctx, cv.R21)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	validator.Register(engine.Config{
//	    Name:      "schema",
//	    Kind:      cv.EngineStructural,
//	    Structural: mySchemaEngine,
//	    Schema:    schemaBytes,
//	})
//
//	results, err := validator.Validate(ctx, documentXML)
//	for name, result := range results {
//	    for _, d := range result.Errors() {
//	        fmt.Println(name, d.SimplifiedPath, d.Requirement)
//	    }
//	}
//
// # What It Does
//
//   - Rule repair: third-party Schematron rule files often reference
//     patterns that were never defined; the schematron package strips the
//     dangling references so strict evaluators can load the file.
//   - Normalization: structural (line/column) and assertion (test/context)
//     engine output collapse into one RawIssue shape.
//   - Classification: each RawIssue is enriched into a Diagnostic with the
//     quoted requirement, a simplified document path, the C-CDA template
//     behind the failure, the CONF conformance number, and fix suggestions.
//
// # Performance Features
//
//   - Concurrent Engines: every registered engine validates in parallel
//   - Worker Pool: parallel batch validation using runtime.NumCPU() workers
//   - Single-Flight Repair: one repair per distinct rule file, however many
//     goroutines ask for it at once
//   - sync.Pool: reduces GC pressure through Result and path-builder reuse
//   - Generic Cache: type-safe LRU caches without interface{} overhead
//
// # Functional Options
//
//	validator, err := engine.New(ctx, cv.R21,
//	    cv.WithWorkerCount(runtime.NumCPU()),
//	    cv.WithEngineTimeout(30*time.Second),
//	    cv.WithRepairCacheSize(64),
//	    cv.WithMaxIssues(500),
//	)
//
// # Failure Containment
//
// Engines are black boxes and fail like them. A crashing or hung engine
// costs exactly one synthetic error diagnostic in its own result; the other
// engines' results are untouched. A malformed rule file aborts repair and
// hands the caller the original bytes alongside the error. Classification
// never fails at all: each extraction degrades field-by-field, so the worst
// case is a Diagnostic carrying only the original message and severity.
package cdavalidator
