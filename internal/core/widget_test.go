package core

import (
	"testing"

	"corridorcore/pkg/domain"
)

func profileLayer() *domain.Layer {
	return &domain.Layer{
		Name:             ProfilesLayerName,
		KeyField:         FieldHighway,
		FingerprintField: FieldTotalMiles,
		Features: []domain.Feature{
			{"HWY": "US 287", "Total_Miles": 41.3, "AADT": 35000.0, "Project_Cost_Funded": 125000000.0},
			{"HWY": "SH 199", "Total_Miles": 27.8, "AADT": 22000.0, "Project_Cost_Funded": 40000000.0},
		},
	}
}

func aadtWidget() StatDefinition {
	return StatDefinition{
		ID: "aadt", Field: FieldAADT,
		Mode: StatWeightedAverage, WeightField: FieldTotalMiles,
		Format: DisplayGrouped, ZeroDisplay: "0",
		SourceID: ProfileSourceID,
	}
}

func TestEvaluateStatReferenceUnavailable(t *testing.T) {
	sel := domain.SelectionContext{
		SourceID: ProfileSourceID,
		Selected: []domain.Feature{{"HWY": "US 287"}},
	}
	got := EvaluateStat(aadtWidget(), sel)
	if got.Value != ErrorDisplay {
		t.Fatalf("unavailable reference must render %q, got %q", ErrorDisplay, got.Value)
	}
	if got.Text != DefaultTextStyle {
		t.Fatalf("expected default text style, got %+v", got.Text)
	}
}

func TestEvaluateStatSelectionDirect(t *testing.T) {
	sel := domain.SelectionContext{
		SourceID:  ProfileSourceID,
		Selected:  []domain.Feature{{"HWY": "US 287", "AADT": 35000.0}},
		Reference: profileLayer(),
	}
	got := EvaluateStat(aadtWidget(), sel)
	if got.Value != "35,000" {
		t.Fatalf("direct selection value = %q, want 35,000", got.Value)
	}
}

func TestEvaluateStatSelectionFingerprintFallback(t *testing.T) {
	// Selected feature lacks the target field but carries the fingerprint.
	sel := domain.SelectionContext{
		SourceID:  ProfileSourceID,
		Selected:  []domain.Feature{{"Total_Miles": 27.8}},
		Reference: profileLayer(),
	}
	got := EvaluateStat(aadtWidget(), sel)
	if got.Value != "22,000" {
		t.Fatalf("fingerprint fallback = %q, want 22,000", got.Value)
	}
}

func TestEvaluateStatSelectionUnresolvedShowsZero(t *testing.T) {
	def := aadtWidget()
	def.ZeroDisplay = "0"
	sel := domain.SelectionContext{
		SourceID:  ProfileSourceID,
		Selected:  []domain.Feature{{"Total_Miles": 99.9}},
		Reference: profileLayer(),
	}
	if got := EvaluateStat(def, sel); got.Value != "0" {
		t.Fatalf("unresolved selection must show zero display, got %q", got.Value)
	}
}

func TestEvaluateStatNoSelectionAggregates(t *testing.T) {
	sel := domain.SelectionContext{SourceID: ProfileSourceID, Reference: profileLayer()}

	// Weighted average: (35000*41.3 + 22000*27.8) / 69.1
	got := EvaluateStat(aadtWidget(), sel)
	if got.Value != "29,770" {
		t.Fatalf("weighted aggregate = %q, want 29,770", got.Value)
	}

	sum := StatDefinition{
		ID: "cost_funded", Field: "Project_Cost_Funded",
		Mode: StatSum, Format: DisplayCompactCurrency,
		ZeroDisplay: "$0", SourceID: ProfileSourceID,
	}
	if got := EvaluateStat(sum, sel); got.Value != "$165M" {
		t.Fatalf("sum aggregate = %q, want $165M", got.Value)
	}

	count := StatDefinition{
		ID: "corridors", Field: FieldHighway,
		Mode: StatDistinctCount, Format: DisplayGrouped,
		ZeroDisplay: "0", SourceID: ProfileSourceID,
	}
	if got := EvaluateStat(count, sel); got.Value != "2" {
		t.Fatalf("distinct count = %q, want 2", got.Value)
	}
}

func TestEvaluateStatEmptyLayerShowsZero(t *testing.T) {
	sel := domain.SelectionContext{
		SourceID:  ProfileSourceID,
		Reference: &domain.Layer{Name: ProfilesLayerName},
	}
	def := StatDefinition{
		ID: "cost", Field: "Project_Cost_Funded",
		Mode: StatSum, Format: DisplayCompactCurrency,
		ZeroDisplay: "$0", SourceID: ProfileSourceID,
	}
	if got := EvaluateStat(def, sel); got.Value != "$0" {
		t.Fatalf("empty layer must show zero display, got %q", got.Value)
	}
}

func TestEvaluateStatCustomStyle(t *testing.T) {
	def := aadtWidget()
	def.Style = TextStyle{Size: 14, Color: "#FFFFFF"}
	sel := domain.SelectionContext{SourceID: ProfileSourceID, Reference: profileLayer()}
	if got := EvaluateStat(def, sel); got.Text != def.Style {
		t.Fatalf("custom style not applied: %+v", got.Text)
	}
}

func TestStatDefinitionFullSourceID(t *testing.T) {
	def := aadtWidget()
	if got := def.FullSourceID(); got != ProfilesLayerName {
		t.Fatalf("FullSourceID = %q, want %q", got, ProfilesLayerName)
	}
}

func TestDefaultWidgetsCatalog(t *testing.T) {
	widgets := DefaultWidgets()
	if len(widgets) == 0 {
		t.Fatal("default catalog is empty")
	}
	seen := make(map[string]struct{})
	for _, def := range widgets {
		if def.ID == "" || def.Field == "" || def.SourceID == "" {
			t.Fatalf("incomplete widget definition: %+v", def)
		}
		if _, dup := seen[def.ID]; dup {
			t.Fatalf("duplicate widget id %s", def.ID)
		}
		seen[def.ID] = struct{}{}
	}
	tons, ok := findWidget(widgets, "tons")
	if !ok {
		t.Fatal("tons widget missing")
	}
	if tons.FilterField != FieldTruckAADT {
		t.Fatalf("tons widget must qualify rows by truck traffic, got %q", tons.FilterField)
	}
}

func findWidget(defs []StatDefinition, id string) (StatDefinition, bool) {
	for _, def := range defs {
		if def.ID == id {
			return def, true
		}
	}
	return StatDefinition{}, false
}
