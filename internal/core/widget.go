package core

import "corridorcore/pkg/domain"

// StatMode selects how a widget derives its number when no feature is
// selected.
type StatMode string

// Aggregation modes supported by widget definitions.
const (
	// StatSum totals the target field across the reference layer.
	StatSum StatMode = "sum"
	// StatWeightedAverage averages the target field weighted by WeightField.
	StatWeightedAverage StatMode = "weighted_average"
	// StatDistinctCount counts distinct values of the target field.
	StatDistinctCount StatMode = "distinct_count"
)

// DisplayFormat selects the rendering applied to the resolved number.
type DisplayFormat string

// Display formats supported by widget definitions.
const (
	DisplayCompact         DisplayFormat = "compact"
	DisplayCompactCurrency DisplayFormat = "compact_currency"
	DisplayGrouped         DisplayFormat = "grouped"
	DisplayMiles           DisplayFormat = "miles"
	DisplayPercent         DisplayFormat = "percent"
)

// ErrorDisplay is the fixed user-visible value emitted when the reference
// data source is unavailable, regardless of selection state.
const ErrorDisplay = "Data unavailable"

// TextStyle carries the fixed text attributes the host rendering layer
// expects alongside every widget value.
type TextStyle struct {
	Size      int    `json:"size"`
	Bold      bool   `json:"bold"`
	Color     string `json:"color"`
	Italic    bool   `json:"italic"`
	Underline bool   `json:"underline"`
	Strike    bool   `json:"strike"`
}

// DefaultTextStyle matches the dashboard's stat widget typography.
var DefaultTextStyle = TextStyle{Size: 24, Bold: true, Color: "#1A1A1A"}

// WidgetValue is the record consumed by the host's rendering layer.
type WidgetValue struct {
	Value string    `json:"value"`
	Text  TextStyle `json:"text"`
}

// StatDefinition configures one dashboard stat widget. Each definition maps
// to one of the original expression scripts.
type StatDefinition struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	// Field is the target attribute displayed by the widget.
	Field string `json:"field"`
	// Mode selects the aggregation applied when nothing is selected.
	Mode StatMode `json:"mode"`
	// WeightField names the weight attribute for weighted averages.
	WeightField string `json:"weight_field,omitempty"`
	// FilterField optionally qualifies weighted-average rows by a field
	// other than the target (FilterField > 0).
	FilterField string `json:"filter_field,omitempty"`
	// Format selects the display rendering.
	Format DisplayFormat `json:"format"`
	// ZeroDisplay is the fixed string shown when resolution yields nothing.
	ZeroDisplay string `json:"zero_display"`
	// SourceID is the configured selection source identifier.
	SourceID string `json:"source_id"`
	Style    TextStyle `json:"style"`
	resolve  ResolveOptions
}

// FullSourceID returns the derived full-layer identifier for the widget.
func (d StatDefinition) FullSourceID() string {
	return domain.FullSourceID(d.SourceID)
}

func (d StatDefinition) render(v domain.FieldValue) string {
	switch d.Format {
	case DisplayCompactCurrency:
		return FormatCompactCurrency(v)
	case DisplayGrouped:
		return FormatGrouped(v)
	case DisplayMiles:
		return FormatMiles(v)
	case DisplayPercent:
		return FormatPercent(v)
	default:
		return FormatCompact(v)
	}
}

func (d StatDefinition) zero() string {
	if d.ZeroDisplay != "" {
		return d.ZeroDisplay
	}
	return d.render(nil)
}

func (d StatDefinition) style() TextStyle {
	if (d.Style == TextStyle{}) {
		return DefaultTextStyle
	}
	return d.Style
}

// EvaluateStat computes one widget display value from a selection context.
// With a selection present, the first selected feature is resolved directly
// or via fingerprint fallback; with no selection, the target field is
// aggregated across the full reference layer. An unavailable reference
// source yields the fixed error display. The evaluation never fails; every
// anomaly degrades to the widget's zero display.
func EvaluateStat(def StatDefinition, sel domain.SelectionContext) WidgetValue {
	style := def.style()
	if !sel.ReferenceAvailable() {
		return WidgetValue{Value: ErrorDisplay, Text: style}
	}
	ref := sel.Reference
	opts := def.resolve
	if opts.FingerprintField == "" {
		opts.FingerprintField = ref.FingerprintField
	}

	if selected := sel.FirstSelected(); selected != nil {
		v := ResolveValue(selected, ref.Features, def.Field, opts)
		if domain.IsEmpty(v) {
			return WidgetValue{Value: def.zero(), Text: style}
		}
		return WidgetValue{Value: def.render(v), Text: style}
	}

	var n float64
	switch def.Mode {
	case StatWeightedAverage:
		n = AggregateWeightedAverage(ref.Features, def.Field, def.WeightField, def.FilterField)
	case StatDistinctCount:
		n = float64(AggregateDistinctCount(ref.Features, def.Field))
	default:
		n = AggregateSum(ref.Features, def.Field)
	}
	if n == 0 {
		return WidgetValue{Value: def.zero(), Text: style}
	}
	return WidgetValue{Value: def.render(n), Text: style}
}
