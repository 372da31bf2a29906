package core

import (
	"math"

	"corridorcore/pkg/domain"
)

// DefaultFingerprintField is the numeric attribute assumed distinct per
// reference feature, used to correlate selected features that lack the
// target field.
const DefaultFingerprintField = "Total_Miles"

// DefaultTolerance is the fixed absolute tolerance for fingerprint matching.
const DefaultTolerance = 0.01

// ResolveOptions tunes fingerprint correlation. Zero values select the
// package defaults.
type ResolveOptions struct {
	FingerprintField string
	Tolerance        float64
}

func (o ResolveOptions) withDefaults() ResolveOptions {
	if o.FingerprintField == "" {
		o.FingerprintField = DefaultFingerprintField
	}
	if o.Tolerance <= 0 {
		o.Tolerance = DefaultTolerance
	}
	return o
}

// ResolveValue resolves the named field for a selected feature. The direct
// value wins when present and non-empty. Otherwise the selected feature's
// fingerprint is compared against each reference feature in order, and the
// field is read from the first feature whose fingerprint differs by less
// than the tolerance. First match wins, not closest match. Returns nil when
// no fingerprint is available or nothing matches.
func ResolveValue(selected domain.Feature, reference []domain.Feature, field string, opts ResolveOptions) domain.FieldValue {
	if direct := selected.Value(field); !domain.IsEmpty(direct) {
		return direct
	}
	opts = opts.withDefaults()
	target, ok := selected.Number(opts.FingerprintField)
	if !ok || domain.IsEmpty(selected.Value(opts.FingerprintField)) {
		return nil
	}
	for _, candidate := range reference {
		fp, ok := candidate.Number(opts.FingerprintField)
		if !ok {
			continue
		}
		if math.Abs(fp-target) < opts.Tolerance {
			return candidate.Value(field)
		}
	}
	return nil
}
