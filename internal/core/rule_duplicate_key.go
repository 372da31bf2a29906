package core

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"corridorcore/pkg/domain"
)

// NewDuplicateKeyRule returns the rule blocking layers whose key field
// repeats. Each key must identify exactly one feature; duplicates must be
// removed or consolidated upstream.
func NewDuplicateKeyRule() domain.Rule {
	return duplicateKeyRule{}
}

type duplicateKeyRule struct{}

func (duplicateKeyRule) Name() string { return "duplicate_key" }

func (duplicateKeyRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.Action != domain.ActionPut || change.After == nil {
			continue
		}
		layer := change.After
		if layer.KeyField == "" {
			continue
		}
		counts := make(map[string]int)
		for _, feature := range layer.Features {
			v := feature.Value(layer.KeyField)
			if domain.IsEmpty(v) {
				continue
			}
			counts[fmt.Sprint(v)]++
		}
		var dupes []string
		for key, n := range counts {
			if n > 1 {
				dupes = append(dupes, fmt.Sprintf("%s (%d)", key, n))
			}
		}
		if len(dupes) > 0 {
			sort.Strings(dupes)
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "duplicate_key",
				Severity: domain.SeverityBlock,
				Layer:    layer.Name,
				Message:  fmt.Sprintf("layer %s has duplicate %s values: %s", layer.Name, layer.KeyField, strings.Join(dupes, ", ")),
			})
		}
	}
	return res, nil
}
