package core

import "corridorcore/pkg/domain"

// NewDefaultRulesEngine builds a rules engine with the built-in policy set.
func NewDefaultRulesEngine() *domain.RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(NewRequiredFieldsRule())
	engine.Register(NewDuplicateKeyRule())
	engine.Register(NewFingerprintDistinctRule())
	return engine
}
