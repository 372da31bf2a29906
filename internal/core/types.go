package core

import "corridorcore/pkg/domain"

type (
	Feature          = domain.Feature
	FieldValue       = domain.FieldValue
	Layer            = domain.Layer
	SelectionContext = domain.SelectionContext
	Change           = domain.Change
	Violation        = domain.Violation
	Result           = domain.Result
	RulesEngine      = domain.RulesEngine
	Rule             = domain.Rule
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

const (
	ActionPut    = domain.ActionPut
	ActionDelete = domain.ActionDelete
)
