package core

import "corridorcore/pkg/domain"

// Field names carried by the corridor profile layer.
const (
	FieldHighway            = "HWY"
	FieldTotalMiles         = "Total_Miles"
	FieldAADT               = "AADT"
	FieldTruckAADT          = "Truck_AADT"
	FieldTruckPercentage    = "Truck_percentage"
	FieldTons               = "Tons"
	FieldCrashes            = "Number_Of_Crashes"
	FieldFatalCrashes       = "Number_Of_Fatal_Crashes"
	FieldProjectsConstr     = "Projects_Construction"
	FieldCostConstr         = "Project_Cost_Construction"
	FieldProjectsFunded     = "Projects_Funded"
	FieldCostFunded         = "Project_Cost_Funded"
	FieldProjectsPartial    = "Projects_PartialFunded"
	FieldCostPartial        = "Project_Cost_PartialFunded"
	FieldFundingGapPartial  = "Project_FundingGap_PartialFunded"
	FieldProjectsUnfunded   = "Projects_Unfunded"
	FieldCostUnfunded       = "Project_Cost_Unfunded"
)

// ProfilesLayerName is the stored layer holding one profile feature per corridor.
const ProfilesLayerName = "corridor_profiles"

// ProfileSourceID is the selection source identifier configured on the
// dashboard's corridor profile widgets.
const ProfileSourceID = ProfilesLayerName + domain.SelectionSourceSuffix

// DefaultWidgets returns the stat widget catalog mirroring the dashboard's
// expression scripts, one definition per displayed metric.
func DefaultWidgets() []StatDefinition {
	currency := func(id, title, field string) StatDefinition {
		return StatDefinition{
			ID: id, Title: title, Field: field,
			Mode: StatSum, Format: DisplayCompactCurrency,
			ZeroDisplay: "$0", SourceID: ProfileSourceID,
		}
	}
	count := func(id, title, field string) StatDefinition {
		return StatDefinition{
			ID: id, Title: title, Field: field,
			Mode: StatSum, Format: DisplayGrouped,
			ZeroDisplay: "0", SourceID: ProfileSourceID,
		}
	}
	return []StatDefinition{
		{
			ID: "total_miles", Title: "Total Corridor Length", Field: FieldTotalMiles,
			Mode: StatSum, Format: DisplayMiles,
			ZeroDisplay: "0.0 mi", SourceID: ProfileSourceID,
		},
		{
			ID: "corridors", Title: "Corridors", Field: FieldHighway,
			Mode: StatDistinctCount, Format: DisplayGrouped,
			ZeroDisplay: "0", SourceID: ProfileSourceID,
		},
		{
			ID: "aadt", Title: "AADT", Field: FieldAADT,
			Mode: StatWeightedAverage, WeightField: FieldTotalMiles,
			Format: DisplayGrouped, ZeroDisplay: "0", SourceID: ProfileSourceID,
		},
		{
			ID: "truck_aadt", Title: "Truck AADT", Field: FieldTruckAADT,
			Mode: StatWeightedAverage, WeightField: FieldTotalMiles,
			Format: DisplayGrouped, ZeroDisplay: "0", SourceID: ProfileSourceID,
		},
		{
			ID: "truck_percentage", Title: "Truck Percentage", Field: FieldTruckPercentage,
			Mode: StatWeightedAverage, WeightField: FieldTotalMiles,
			Format: DisplayPercent, ZeroDisplay: "0%", SourceID: ProfileSourceID,
		},
		{
			// Tonnage rows qualify by truck traffic, not by tonnage itself.
			ID: "tons", Title: "Truck Tonnage", Field: FieldTons,
			Mode: StatWeightedAverage, WeightField: FieldTotalMiles, FilterField: FieldTruckAADT,
			Format: DisplayCompact, ZeroDisplay: "0", SourceID: ProfileSourceID,
		},
		count("crashes", "Number of Crashes", FieldCrashes),
		count("fatal_crashes", "Number of Fatal Crashes", FieldFatalCrashes),
		count("projects_construction", "Projects Under Construction", FieldProjectsConstr),
		currency("cost_construction", "Construction Cost", FieldCostConstr),
		count("projects_funded", "Funded Projects", FieldProjectsFunded),
		currency("cost_funded", "Funded Cost", FieldCostFunded),
		count("projects_partial", "Partially Funded Projects", FieldProjectsPartial),
		currency("cost_partial", "Partially Funded Cost", FieldCostPartial),
		currency("funding_gap_partial", "Partially Funded Gap", FieldFundingGapPartial),
		count("projects_unfunded", "Unfunded Projects", FieldProjectsUnfunded),
		currency("cost_unfunded", "Unfunded Cost", FieldCostUnfunded),
	}
}
