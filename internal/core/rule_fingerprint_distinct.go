package core

import (
	"context"
	"fmt"
	"math"
	"sort"

	"corridorcore/pkg/domain"
)

// NewFingerprintDistinctRule returns the rule verifying that a layer's
// fingerprint values stay distinguishable: correlation breaks silently when
// two reference features sit within the matching tolerance of each other.
func NewFingerprintDistinctRule() domain.Rule {
	return fingerprintDistinctRule{}
}

type fingerprintDistinctRule struct{}

func (fingerprintDistinctRule) Name() string { return "fingerprint_distinct" }

func (fingerprintDistinctRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.Action != domain.ActionPut || change.After == nil {
			continue
		}
		layer := change.After
		if layer.FingerprintField == "" {
			continue
		}
		values := layer.FieldNumbers(layer.FingerprintField)
		sort.Float64s(values)
		collisions := 0
		for i := 1; i < len(values); i++ {
			if math.Abs(values[i]-values[i-1]) < DefaultTolerance {
				collisions++
			}
		}
		if collisions > 0 {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "fingerprint_distinct",
				Severity: domain.SeverityWarn,
				Layer:    layer.Name,
				Message:  fmt.Sprintf("layer %s has %d fingerprint pair(s) within %.2f of each other in %s", layer.Name, collisions, DefaultTolerance, layer.FingerprintField),
			})
		}
	}
	return res, nil
}
