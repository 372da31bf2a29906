package core

import (
	"math"
	"sort"
	"time"

	"corridorcore/pkg/domain"
)

// SummaryRowLabel names the aggregate row appended after the per-corridor rows.
const SummaryRowLabel = "TOTAL (All Corridors)"

// FieldRowOrder optionally fixes the report row ordering on profile features.
const FieldRowOrder = "Order"

// ColumnKind selects the formatter applied to a report column.
type ColumnKind string

const (
	ColumnLabel   ColumnKind = "label"
	ColumnMileage ColumnKind = "mileage"
	ColumnGrouped ColumnKind = "grouped"
	ColumnPercent ColumnKind = "percent"
	ColumnCompact ColumnKind = "compact"
	ColumnCost    ColumnKind = "cost"
)

// ReportColumn maps a profile layer field to a report display column.
type ReportColumn struct {
	Field string     `json:"field"`
	Name  string     `json:"name"`
	Kind  ColumnKind `json:"kind"`
}

// ReportRow carries one corridor (or the summary) in raw and display form,
// keyed by column display name.
type ReportRow struct {
	Corridor  string                       `json:"corridor"`
	Summary   bool                         `json:"summary,omitempty"`
	Raw       map[string]domain.FieldValue `json:"raw"`
	Formatted map[string]string            `json:"formatted"`
}

// Report is the dashboard validation report: one row per corridor plus a
// summary row, with every metric in both raw and dashboard-formatted form.
type Report struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Columns     []ReportColumn `json:"columns"`
	Rows        []ReportRow    `json:"rows"`
}

// ReportColumns returns the report column layout in display order.
func ReportColumns() []ReportColumn {
	return []ReportColumn{
		{Field: FieldHighway, Name: "Corridor", Kind: ColumnLabel},
		{Field: FieldTotalMiles, Name: "Total_Corridor_Length_mi", Kind: ColumnMileage},
		{Field: "two_L_miles", Name: "2_Lanes_mi", Kind: ColumnMileage},
		{Field: "four_U_plus_miles", Name: "4_Lanes_Undivided_mi", Kind: ColumnMileage},
		{Field: "four_D_plus_miles", Name: "4+_Lanes_Divided_mi", Kind: ColumnMileage},
		{Field: FieldAADT, Name: "AADT", Kind: ColumnGrouped},
		{Field: FieldTruckAADT, Name: "Truck_AADT", Kind: ColumnGrouped},
		{Field: FieldTruckPercentage, Name: "Truck_Percentage", Kind: ColumnPercent},
		{Field: FieldTons, Name: "Tons", Kind: ColumnCompact},
		{Field: FieldCrashes, Name: "Number_of_Crashes", Kind: ColumnGrouped},
		{Field: FieldFatalCrashes, Name: "Number_of_Fatal_Crashes", Kind: ColumnGrouped},
		{Field: FieldProjectsConstr, Name: "Construction_Num_Projects", Kind: ColumnGrouped},
		{Field: FieldCostConstr, Name: "Construction_Est_Cost", Kind: ColumnCost},
		{Field: FieldProjectsFunded, Name: "Funded_Num_Projects", Kind: ColumnGrouped},
		{Field: FieldCostFunded, Name: "Funded_Est_Cost", Kind: ColumnCost},
		{Field: FieldProjectsPartial, Name: "PartialFunded_Num_Projects", Kind: ColumnGrouped},
		{Field: FieldCostPartial, Name: "PartialFunded_Est_Cost", Kind: ColumnCost},
		{Field: FieldFundingGapPartial, Name: "PartialFunded_Funding_Gap", Kind: ColumnCost},
		{Field: FieldProjectsUnfunded, Name: "Unfunded_Num_Projects", Kind: ColumnGrouped},
		{Field: FieldCostUnfunded, Name: "Unfunded_Est_Cost", Kind: ColumnCost},
	}
}

func formatColumn(kind ColumnKind, v domain.FieldValue) string {
	switch kind {
	case ColumnMileage:
		return FormatMiles(v)
	case ColumnGrouped:
		return FormatGrouped(v)
	case ColumnPercent:
		return FormatPercent(v)
	case ColumnCompact:
		return FormatCompact(v)
	case ColumnCost:
		return FormatCompactCurrency(v)
	default:
		s, _ := v.(string)
		return s
	}
}

// BuildValidationReport renders the corridor profile layer into a report with
// one row per corridor and a trailing summary row. Corridor rows follow the
// profile's Order field when present, otherwise the corridor label. Summary
// traffic metrics are mileage-weighted over corridors with a positive value;
// everything else sums.
func BuildValidationReport(profiles domain.Layer, generatedAt time.Time) Report {
	columns := ReportColumns()

	features := append([]domain.Feature(nil), profiles.Features...)
	sort.SliceStable(features, func(i, j int) bool {
		oi, iok := features[i].Number(FieldRowOrder)
		oj, jok := features[j].Number(FieldRowOrder)
		if iok && jok && oi != oj {
			return oi < oj
		}
		hi, _ := features[i].Value(FieldHighway).(string)
		hj, _ := features[j].Value(FieldHighway).(string)
		return hi < hj
	})

	rows := make([]ReportRow, 0, len(features)+1)
	for _, feature := range features {
		rows = append(rows, reportRow(columns, feature))
	}
	rows = append(rows, summaryRow(columns, features))

	return Report{
		GeneratedAt: generatedAt,
		Columns:     columns,
		Rows:        rows,
	}
}

func reportRow(columns []ReportColumn, feature domain.Feature) ReportRow {
	corridor, _ := feature.Value(FieldHighway).(string)
	row := ReportRow{
		Corridor:  corridor,
		Raw:       make(map[string]domain.FieldValue, len(columns)),
		Formatted: make(map[string]string, len(columns)),
	}
	for _, col := range columns {
		v := feature.Value(col.Field)
		row.Raw[col.Name] = v
		row.Formatted[col.Name] = formatColumn(col.Kind, v)
	}
	return row
}

func summaryRow(columns []ReportColumn, features []domain.Feature) ReportRow {
	totals := domain.Feature{FieldHighway: SummaryRowLabel}

	sum := func(field string) float64 {
		var total float64
		for _, f := range features {
			if v, ok := f.Number(field); ok && !math.IsNaN(v) {
				total += v
			}
		}
		return total
	}

	// Mileage, safety, and project metrics sum across corridors.
	for _, col := range columns {
		switch col.Kind {
		case ColumnMileage, ColumnCost:
			totals[col.Field] = round1(sum(col.Field))
		case ColumnGrouped:
			totals[col.Field] = math.Round(sum(col.Field))
		}
	}

	// Traffic metrics weight by corridor length over corridors carrying a
	// positive value for the metric.
	weighted := func(field, qualifier string) (float64, float64) {
		var num, den float64
		for _, f := range features {
			q, ok := f.Number(qualifier)
			if !ok || math.IsNaN(q) || q <= 0 {
				continue
			}
			miles, ok := f.Number(FieldTotalMiles)
			if !ok || math.IsNaN(miles) {
				continue
			}
			v, ok := f.Number(field)
			if !ok || math.IsNaN(v) {
				v = 0
			}
			num += v * miles
			den += miles
		}
		return num, den
	}

	if num, den := weighted(FieldAADT, FieldAADT); den > 0 {
		totals[FieldAADT] = math.Round(num / den)
	} else {
		totals[FieldAADT] = 0.0
	}
	if num, den := weighted(FieldTruckAADT, FieldTruckAADT); den > 0 {
		totals[FieldTruckAADT] = math.Round(num / den)
	} else {
		totals[FieldTruckAADT] = 0.0
	}
	aadt, _ := totals.Number(FieldAADT)
	truck, _ := totals.Number(FieldTruckAADT)
	if aadt > 0 {
		totals[FieldTruckPercentage] = round1(truck / aadt * 100)
	} else {
		totals[FieldTruckPercentage] = 0.0
	}
	// Tonnage qualifies by truck traffic rather than tonnage itself.
	if num, den := weighted(FieldTons, FieldTruckAADT); den > 0 {
		totals[FieldTons] = round1(num / den)
	} else {
		totals[FieldTons] = 0.0
	}

	row := reportRow(columns, totals)
	row.Summary = true
	return row
}
