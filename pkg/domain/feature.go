// Package domain defines the core feature, layer, and rule evaluation
// primitives used by corridorcore.
package domain

import (
	"math"
	"strings"
)

// FieldValue is a single attribute value on a feature: a number, a string,
// or nil when the field is absent or empty.
type FieldValue any

// Feature maps field names to values. Features are read-only per evaluation;
// callers never mutate a feature owned by a layer.
type Feature map[string]FieldValue

// Provenance distinguishes where a feature came from.
type Provenance string

const (
	// ProvenanceSelected marks features from a dashboard selection source,
	// which may lack some fields.
	ProvenanceSelected Provenance = "selected"
	// ProvenanceReference marks features from the authoritative full layer.
	ProvenanceReference Provenance = "reference"
)

// Value returns the raw field value, or nil when the field is absent.
func (f Feature) Value(field string) FieldValue {
	if f == nil {
		return nil
	}
	v, ok := f[field]
	if !ok {
		return nil
	}
	return v
}

// Has reports whether the field is present and non-empty.
func (f Feature) Has(field string) bool {
	return !IsEmpty(f.Value(field))
}

// Number returns the field coerced to float64 and whether the coercion
// succeeded. Strings are not parsed; only numeric types qualify.
func (f Feature) Number(field string) (float64, bool) {
	return AsNumber(f.Value(field))
}

// Clone returns a shallow copy of the feature.
func (f Feature) Clone() Feature {
	if f == nil {
		return nil
	}
	out := make(Feature, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// IsEmpty reports whether a field value counts as empty: nil, a blank
// string, or a NaN number.
func IsEmpty(v FieldValue) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	default:
		if n, ok := AsNumber(v); ok {
			return math.IsNaN(n)
		}
		return false
	}
}

// AsNumber coerces a field value to float64. JSON round-trips deliver
// float64; integer types show up from in-process construction.
func AsNumber(v FieldValue) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	default:
		return 0, false
	}
}

// Layer is a named, ordered collection of reference features. Order matters:
// fingerprint correlation uses a first-match policy over this slice.
type Layer struct {
	Name string `json:"name"`
	// KeyField names the attribute identifying a feature (e.g. HWY).
	KeyField string `json:"key_field"`
	// FingerprintField names the numeric attribute assumed distinct per
	// feature, used to correlate selected features lacking a shared key.
	FingerprintField string    `json:"fingerprint_field"`
	RequiredFields   []string  `json:"required_fields,omitempty"`
	Features         []Feature `json:"features"`
}

// Clone deep-copies the layer so stored state never aliases caller slices.
func (l Layer) Clone() Layer {
	out := l
	out.RequiredFields = append([]string(nil), l.RequiredFields...)
	out.Features = make([]Feature, len(l.Features))
	for i, f := range l.Features {
		out.Features[i] = f.Clone()
	}
	return out
}

// FieldNumbers extracts the named field from every feature where it is
// numeric, preserving order.
func (l Layer) FieldNumbers(field string) []float64 {
	out := make([]float64, 0, len(l.Features))
	for _, f := range l.Features {
		if n, ok := f.Number(field); ok {
			out = append(out, n)
		}
	}
	return out
}
