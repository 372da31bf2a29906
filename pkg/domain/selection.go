package domain

import "strings"

// SelectionSourceSuffix is the fixed suffix appended by the host dashboard to
// a layer identifier to name its selection subset. Stripping it yields the
// full-layer identifier.
const SelectionSourceSuffix = " selection"

// FullSourceID derives the full-layer identifier from a selection source
// identifier. Identifiers without the suffix are returned unchanged.
func FullSourceID(selectionID string) string {
	return strings.TrimSuffix(selectionID, SelectionSourceSuffix)
}

// SelectionContext carries one widget evaluation's inputs: zero or more
// selected features and the reference layer they were selected from. All
// data is supplied fresh per evaluation; nothing persists between calls.
type SelectionContext struct {
	// SourceID is the configured selection source identifier.
	SourceID string `json:"source_id"`
	// Selected holds the currently selected features, possibly empty.
	Selected []Feature `json:"selected,omitempty"`
	// Reference is the authoritative full layer, nil when the host reports
	// the data source as unavailable.
	Reference *Layer `json:"reference,omitempty"`
}

// ReferenceAvailable reports whether the full layer was supplied.
func (c SelectionContext) ReferenceAvailable() bool {
	return c.Reference != nil
}

// FirstSelected returns the first selected feature, or nil when the
// selection is empty.
func (c SelectionContext) FirstSelected() Feature {
	if len(c.Selected) == 0 {
		return nil
	}
	return c.Selected[0]
}
