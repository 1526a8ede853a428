package service

import (
	"testing"

	"github.com/consulting-control/backend/internal/models"
)

func testRules(mapping models.Mapping) RuleSet {
	return NewRuleSet(mapping, "U", "IV")
}

func TestClassifyAbsenceShortCircuits(t *testing.T) {
	rules := testRules(models.Mapping{Projects: []string{"INT-OPS"}, Tokens: []string{"intern"}})
	rec := models.TimeRecord{ProjectCode: "INT-OPS", ProjectName: "Interne Arbeit", ServiceTypeCode: "U1"}

	v := Classify(rec, rules)
	if !v.Excluded || v.Internal {
		t.Fatalf("absence record must be excluded, never internal: %+v", v)
	}
	if v.Reason != ClassExcludedServiceType {
		t.Fatalf("unexpected reason %q", v.Reason)
	}
}

func TestClassifyServiceTypeInternalMarker(t *testing.T) {
	rules := testRules(models.Mapping{})
	v := Classify(models.TimeRecord{ProjectCode: "P-CLIENT", ServiceTypeCode: "IV2"}, rules)
	if !v.Internal || v.Reason != ClassInternalServiceType {
		t.Fatalf("expected internal via service type, got %+v", v)
	}
}

func TestClassifyExactProjectNormalized(t *testing.T) {
	rules := testRules(models.Mapping{Projects: []string{"  ops-100 "}})
	v := Classify(models.TimeRecord{ProjectCode: "OPS-100"}, rules)
	if !v.Internal || v.Reason != ClassExactProject {
		t.Fatalf("expected exact project match, got %+v", v)
	}
}

func TestClassifyTokenAgainstCombinedCodeAndName(t *testing.T) {
	rules := testRules(models.Mapping{Tokens: []string{"schulung"}})
	v := Classify(models.TimeRecord{ProjectCode: "P9", ProjectName: "Team-Schulung Q1"}, rules)
	if !v.Internal || v.Reason != ClassTokenMatch {
		t.Fatalf("expected token match, got %+v", v)
	}
}

func TestClassifyLegacyPrefixFallback(t *testing.T) {
	rules := testRules(models.Mapping{})
	v := Classify(models.TimeRecord{ProjectCode: "INTEGRATION-CLIENT-X"}, rules)
	if !v.Internal || v.Reason != ClassLegacyPrefix {
		t.Fatalf("expected legacy prefix fallback, got %+v", v)
	}
}

func TestClassifyLegacyWholeToken(t *testing.T) {
	rules := testRules(models.Mapping{})
	v := Classify(models.TimeRecord{ProjectCode: "P7", ProjectName: "Ops INT Support"}, rules)
	if !v.Internal || v.Reason != ClassLegacyToken {
		t.Fatalf("expected legacy token fallback, got %+v", v)
	}

	// Substring inside a longer word must not count as a token.
	v = Classify(models.TimeRecord{ProjectCode: "P7", ProjectName: "Sprint Review"}, rules)
	if v.Internal {
		t.Fatalf("expected no match for embedded substring, got %+v", v)
	}
}

func TestClassifyExplicitRulesBeatLegacy(t *testing.T) {
	rules := testRules(models.Mapping{Projects: []string{"INT-OPS"}})
	v := Classify(models.TimeRecord{ProjectCode: "INT-OPS"}, rules)
	if v.Reason != ClassExactProject {
		t.Fatalf("mapping rule must win over legacy prefix, got %+v", v)
	}
}

func TestClassifyNotInternal(t *testing.T) {
	rules := testRules(models.Mapping{Projects: []string{"INT-OPS"}, Tokens: []string{"intern"}})
	v := Classify(models.TimeRecord{ProjectCode: "P-2001", ProjectName: "Client Rollout", ServiceTypeCode: "B1"}, rules)
	if v.Internal || v.Excluded || v.Reason != "" {
		t.Fatalf("expected plain billable verdict, got %+v", v)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	rules := testRules(models.Mapping{Projects: []string{"INT-OPS"}, Tokens: []string{"intern"}})
	rec := models.TimeRecord{ProjectCode: "P1", ProjectName: "Interne Tools"}
	first := Classify(rec, rules)
	for i := 0; i < 10; i++ {
		if got := Classify(rec, rules); got != first {
			t.Fatalf("verdict changed between calls: %+v vs %+v", first, got)
		}
	}
}
