package core

import (
	"context"
	"strings"
	"testing"

	"corridorcore/pkg/domain"
)

func putChange(layer domain.Layer) []domain.Change {
	return []domain.Change{{Layer: layer.Name, Action: domain.ActionPut, After: &layer}}
}

func TestRequiredFieldsRule(t *testing.T) {
	rule := NewRequiredFieldsRule()

	valid := domain.Layer{
		Name:           "segments",
		RequiredFields: []string{"HWY"},
		Features:       []domain.Feature{{"HWY": "US 287"}},
	}
	res, err := rule.Evaluate(context.Background(), nil, putChange(valid))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(res.Violations) != 0 {
		t.Fatalf("unexpected violations: %v", res.Violations)
	}

	invalid := domain.Layer{
		Name:           "segments",
		RequiredFields: []string{"HWY", "Total_Miles"},
		Features: []domain.Feature{
			{"HWY": "US 287"},
			{"Total_Miles": 5.0},
		},
	}
	res, err = rule.Evaluate(context.Background(), nil, putChange(invalid))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(res.Violations) != 2 {
		t.Fatalf("expected one violation per missing field, got %v", res.Violations)
	}
	for _, v := range res.Violations {
		if v.Severity != domain.SeverityBlock {
			t.Fatalf("missing required fields must block, got %s", v.Severity)
		}
	}
}

func TestDuplicateKeyRule(t *testing.T) {
	rule := NewDuplicateKeyRule()

	layer := domain.Layer{
		Name:     "corridor_profiles",
		KeyField: "HWY",
		Features: []domain.Feature{
			{"HWY": "US 287"},
			{"HWY": "US 287"},
			{"HWY": "SH 199"},
			{"HWY": ""},
		},
	}
	res, err := rule.Evaluate(context.Background(), nil, putChange(layer))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(res.Violations) != 1 {
		t.Fatalf("expected one violation, got %v", res.Violations)
	}
	v := res.Violations[0]
	if v.Severity != domain.SeverityBlock {
		t.Fatalf("duplicate keys must block, got %s", v.Severity)
	}
	if !strings.Contains(v.Message, "US 287 (2)") {
		t.Fatalf("violation should name the duplicate key: %s", v.Message)
	}

	layer.Features = layer.Features[2:]
	res, err = rule.Evaluate(context.Background(), nil, putChange(layer))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(res.Violations) != 0 {
		t.Fatalf("distinct keys should pass, got %v", res.Violations)
	}
}

func TestFingerprintDistinctRule(t *testing.T) {
	rule := NewFingerprintDistinctRule()

	colliding := domain.Layer{
		Name:             "corridor_profiles",
		FingerprintField: "Total_Miles",
		Features: []domain.Feature{
			{"Total_Miles": 41.3},
			{"Total_Miles": 41.3025},
			{"Total_Miles": 27.8},
		},
	}
	res, err := rule.Evaluate(context.Background(), nil, putChange(colliding))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(res.Violations) != 1 {
		t.Fatalf("expected one violation, got %v", res.Violations)
	}
	if res.Violations[0].Severity != domain.SeverityWarn {
		t.Fatalf("fingerprint collisions warn rather than block, got %s", res.Violations[0].Severity)
	}

	distinct := domain.Layer{
		Name:             "corridor_profiles",
		FingerprintField: "Total_Miles",
		Features: []domain.Feature{
			{"Total_Miles": 41.3},
			{"Total_Miles": 27.8},
		},
	}
	res, err = rule.Evaluate(context.Background(), nil, putChange(distinct))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(res.Violations) != 0 {
		t.Fatalf("distinct fingerprints should pass, got %v", res.Violations)
	}
}

func TestDefaultRulesEngineBlocksDuplicates(t *testing.T) {
	engine := NewDefaultRulesEngine()
	layer := domain.Layer{
		Name:     "corridor_profiles",
		KeyField: "HWY",
		Features: []domain.Feature{
			{"HWY": "US 287"},
			{"HWY": "US 287"},
		},
	}
	res, err := engine.Evaluate(context.Background(), nil, putChange(layer))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !res.HasBlocking() {
		t.Fatal("default engine should block duplicate keys")
	}
}
