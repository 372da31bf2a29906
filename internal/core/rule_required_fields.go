package core

import (
	"context"
	"fmt"

	"corridorcore/pkg/domain"
)

// NewRequiredFieldsRule returns the default in-transaction rule enforcing
// that every feature in a layer carries the layer's required fields.
func NewRequiredFieldsRule() domain.Rule {
	return requiredFieldsRule{}
}

type requiredFieldsRule struct{}

func (requiredFieldsRule) Name() string { return "required_fields" }

func (requiredFieldsRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.Action != domain.ActionPut || change.After == nil {
			continue
		}
		layer := change.After
		for _, field := range layer.RequiredFields {
			missing := 0
			for _, feature := range layer.Features {
				if !feature.Has(field) {
					missing++
				}
			}
			if missing > 0 {
				res.Violations = append(res.Violations, domain.Violation{
					Rule:     "required_fields",
					Severity: domain.SeverityBlock,
					Layer:    layer.Name,
					Message:  fmt.Sprintf("layer %s missing required field %s on %d feature(s)", layer.Name, field, missing),
				})
			}
		}
	}
	return res, nil
}
