package domain

import "testing"

func TestFullSourceID(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"corridor_profiles selection", "corridor_profiles"},
		{"corridor_profiles", "corridor_profiles"},
		{"layer selection selection", "layer selection"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := FullSourceID(tc.in); got != tc.want {
			t.Fatalf("FullSourceID(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSelectionContext(t *testing.T) {
	var missing SelectionContext
	if missing.ReferenceAvailable() {
		t.Fatal("nil reference should report unavailable")
	}
	if missing.FirstSelected() != nil {
		t.Fatal("empty selection should have no first feature")
	}

	first := Feature{"HWY": "US 287"}
	ctx := SelectionContext{
		SourceID:  "corridor_profiles selection",
		Selected:  []Feature{first, {"HWY": "SH 199"}},
		Reference: &Layer{Name: "corridor_profiles"},
	}
	if !ctx.ReferenceAvailable() {
		t.Fatal("reference should be available")
	}
	got := ctx.FirstSelected()
	if got == nil || got["HWY"] != "US 287" {
		t.Fatalf("FirstSelected = %v", got)
	}
}
