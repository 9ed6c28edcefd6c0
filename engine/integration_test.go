package engine

import (
	"context"
	"strings"
	"testing"
	"time"

	cv "github.com/gocda/validator"
	"github.com/gocda/validator/worker"
)

// Integration tests that exercise the full flow: rule repair, engine
// fan-out, normalization, and classification together.

// integrationRules is a cut-down consolidation rule file: two phases,
// one dangling reference, and assert texts in the IG's house style.
const integrationRules = `<?xml version="1.0" encoding="UTF-8"?>
<sch:schema xmlns:sch="http://purl.oclc.org/dsdl/schematron" xmlns:cda="urn:hl7-org:v3">
  <sch:phase id="errors">
    <sch:active pattern="p-urn-oid-2.16.840.1.113883.10.20.22.1.1-errors"/>
    <sch:active pattern="p-urn-oid-2.16.840.1.113883.10.20.22.4.4-errors"/>
    <sch:active pattern="p-urn-oid-2.16.840.1.113883.10.20.22.4.999-errors"/>
  </sch:phase>
  <sch:phase id="warnings">
    <sch:active pattern="p-urn-oid-2.16.840.1.113883.10.20.22.1.1-warnings"/>
  </sch:phase>
  <sch:pattern id="p-urn-oid-2.16.840.1.113883.10.20.22.1.1-errors">
    <sch:rule context="cda:ClinicalDocument">
      <sch:assert test="count(cda:realmCode)=1">SHALL contain exactly one [1..1] realmCode (CONF:1198-16791).</sch:assert>
    </sch:rule>
  </sch:pattern>
  <sch:pattern id="p-urn-oid-2.16.840.1.113883.10.20.22.1.1-warnings">
    <sch:rule context="cda:ClinicalDocument">
      <sch:assert test="count(cda:setId)=1">SHOULD contain zero or one [0..1] setId (CONF:1198-5261).</sch:assert>
    </sch:rule>
  </sch:pattern>
</sch:schema>`

func TestIntegration_FullValidationFlow(t *testing.T) {
	ctx := context.Background()

	v, err := New(ctx, cv.R21)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}

	structural := &fakeStructural{
		findings: []cv.StructuralFinding{
			{
				Message: "cvc-complex-type.2.4.a: Invalid content was found starting with element 'addr'. One of '{\"urn:hl7-org:v3\":realmCode, \"urn:hl7-org:v3\":typeId}' is expected.",
				Line:    18,
				Column:  42,
			},
			{
				Message: "Element 'status': this element is not expected.",
				Line:    214,
				Column:  9,
			},
		},
	}
	assertion := &fakeAssertion{
		findings: []cv.AssertionFinding{
			{
				Test:    `SHALL contain exactly one [1..1] templateId (CONF:1198-14926) such that it SHALL contain exactly one [1..1] @root="2.16.840.1.113883.10.20.22.4.4" (CONF:1198-10487).`,
				Context: "/*:ClinicalDocument[namespace-uri()='urn:hl7-org:v3'][1]/*:component[1]/*:structuredBody[1]/*:component[3]/*:section[1]/*:entry[2]/*:act[1]",
			},
			{
				Test: "SHOULD contain zero or one [0..1] setId (CONF:1198-5261).",
				Role: "warning",
			},
		},
	}

	if err := v.Register(structuralConfig("schema", structural)); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	cfg := assertionConfig("schematron", assertion)
	cfg.Rules = []byte(integrationRules)
	if err := v.Register(cfg); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	results, err := v.Validate(ctx, testDocument)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}

	t.Run("repair happened before the assertion engine ran", func(t *testing.T) {
		got := assertion.rules()
		if strings.Contains(string(got), "22.4.999") {
			t.Error("dangling phase reference survived repair")
		}
		if !strings.Contains(string(got), "p-urn-oid-2.16.840.1.113883.10.20.22.4.4-errors") {
			t.Error("defined pattern reference should survive repair")
		}
	})

	t.Run("structural diagnostics keep positions and gain suggestions", func(t *testing.T) {
		r := results["schema"]
		if r.ErrorCount != 2 {
			t.Fatalf("ErrorCount = %d; want 2", r.ErrorCount)
		}

		first := r.Issues[0]
		if first.Line != 18 || first.Column != 42 {
			t.Errorf("position = %d:%d; want 18:42", first.Line, first.Column)
		}
		if len(first.Suggestions) == 0 {
			t.Error("expected suggestions for the invalid-content message")
		}

		second := r.Issues[1]
		if second.Requirement != second.Message {
			t.Errorf("Requirement = %q; want the message itself", second.Requirement)
		}
		if second.TemplateID != "" {
			t.Errorf("TemplateID = %q; structural messages carry no template identifier", second.TemplateID)
		}
	})

	t.Run("assertion diagnostics are fully enriched", func(t *testing.T) {
		r := results["schematron"]
		if r.ErrorCount != 1 || r.WarningCount != 1 {
			t.Fatalf("counts = %d errors, %d warnings; want 1 and 1", r.ErrorCount, r.WarningCount)
		}

		enriched := r.Issues[0]
		if enriched.ConfNumber != "1198-14926" {
			t.Errorf("ConfNumber = %q; want 1198-14926", enriched.ConfNumber)
		}
		if enriched.TemplateName != "Problem Observation" {
			t.Errorf("TemplateName = %q; want Problem Observation", enriched.TemplateName)
		}
		if strings.Contains(enriched.SimplifiedPath, "namespace-uri()") {
			t.Errorf("SimplifiedPath = %q; selector noise should be stripped", enriched.SimplifiedPath)
		}
		if !strings.HasSuffix(enriched.SimplifiedPath, "act") {
			t.Errorf("SimplifiedPath = %q; want it to end at the context element", enriched.SimplifiedPath)
		}

		warning := r.Issues[1]
		if warning.Severity != cv.SeverityWarning {
			t.Errorf("Severity = %v; want warning", warning.Severity)
		}
	})

	t.Run("document is invalid overall", func(t *testing.T) {
		for name, r := range results {
			if name == "schematron" && r.Valid {
				t.Error("schematron result should be invalid")
			}
		}
		if v.Metrics().ValidationsTotal() != 1 {
			t.Errorf("ValidationsTotal = %d; want 1", v.Metrics().ValidationsTotal())
		}
	})
}

func TestIntegration_RepairCacheAcrossRuns(t *testing.T) {
	ctx := context.Background()

	v, err := New(ctx, cv.R21)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}

	assertion := &fakeAssertion{}
	cfg := assertionConfig("schematron", assertion)
	cfg.Rules = []byte(integrationRules)
	if err := v.Register(cfg); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		if _, err := v.Validate(ctx, testDocument); err != nil {
			t.Fatalf("Validate %d returned error: %v", i, err)
		}
	}

	// The same rule bytes repair once; later runs hit the cache.
	stats := v.Repairer().CacheStats()
	if stats.Sets != 1 {
		t.Errorf("cache Sets = %d; want 1", stats.Sets)
	}
	if stats.Hits < 4 {
		t.Errorf("cache Hits = %d; want at least 4", stats.Hits)
	}
}

func TestIntegration_BatchValidation(t *testing.T) {
	ctx := context.Background()

	v, err := New(ctx, cv.R21)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}

	structural := &fakeStructural{
		findings: []cv.StructuralFinding{
			{Message: "Element 'status': this element is not expected.", Line: 214, Column: 9},
		},
	}
	if err := v.Register(structuralConfig("schema", structural)); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	documents := make([][]byte, 100)
	for i := range documents {
		documents[i] = testDocument
	}

	t.Run("batch validation with worker pool", func(t *testing.T) {
		start := time.Now()

		bv := worker.NewBatchValidator(v.Validate, 4)
		result := bv.ValidateBatch(ctx, documents)
		duration := time.Since(start)

		if result.TotalJobs != 100 {
			t.Errorf("TotalJobs = %d; want 100", result.TotalJobs)
		}
		if result.CompletedJobs != 100 {
			t.Errorf("CompletedJobs = %d; want 100", result.CompletedJobs)
		}
		if !result.HasErrors() {
			t.Error("every document should report the structural error")
		}

		t.Logf("Batch validation of 100 documents took %v", duration)
	})

	t.Run("parallel vs sequential comparison", func(t *testing.T) {
		seqStart := time.Now()
		for _, d := range documents[:20] {
			_, _ = v.Validate(ctx, d)
		}
		seqDuration := time.Since(seqStart)

		parStart := time.Now()
		bv := worker.NewBatchValidator(v.Validate, 4)
		_ = bv.ValidateBatch(ctx, documents[:20])
		parDuration := time.Since(parStart)

		t.Logf("20 documents: Sequential=%v, Parallel=%v", seqDuration, parDuration)
	})
}

func TestIntegration_WorkerPool(t *testing.T) {
	ctx := context.Background()

	v, err := New(ctx, cv.R21)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}

	assertion := &fakeAssertion{
		findings: []cv.AssertionFinding{
			{Test: "SHALL contain exactly one [1..1] code (CONF:1198-15408)."},
		},
	}
	cfg := assertionConfig("schematron", assertion)
	cfg.Rules = []byte(integrationRules)
	if err := v.Register(cfg); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	pool := worker.NewPool(v, 4)

	// Submit from a goroutine and drain here: the queue is smaller than
	// the batch, so submission backpressures against this drain loop.
	const jobs = 25
	go func() {
		for i := 0; i < jobs; i++ {
			pool.Submit(worker.Job{Document: testDocument})
		}
	}()

	for received := 0; received < jobs; received++ {
		select {
		case jr := <-pool.Results():
			if jr.Error != nil {
				t.Fatalf("job %s errored: %v", jr.ID, jr.Error)
			}
			if jr.Results["schematron"] == nil || len(jr.Results["schematron"].Issues) != 1 {
				t.Fatalf("job %s = %+v; want one schematron finding", jr.ID, jr.Results)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("timeout waiting for result %d", received)
		}
	}
	pool.Close()

	stats := pool.Stats()
	if stats.JobsCompleted != jobs {
		t.Errorf("JobsCompleted = %d; want %d", stats.JobsCompleted, jobs)
	}
}

func TestIntegration_ContextCancellation(t *testing.T) {
	v, err := New(context.Background(), cv.R21)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}

	blocked := &fakeStructural{block: true}
	if err := v.Register(structuralConfig("schema", blocked)); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel() // Cancel immediately

		results, err := v.Validate(ctx, testDocument)
		if err != nil {
			t.Fatalf("Validate returned error: %v", err)
		}

		if results["schema"].Complete {
			t.Error("result should be incomplete after cancellation")
		}
	})
}
