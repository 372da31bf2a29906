package core

import (
	"math"
	"sort"
	"strings"

	"corridorcore/pkg/domain"
)

// Field names carried by the corridor segment layer.
const (
	FieldSegmentMiles = "segment_length_miles"
	FieldCrossSection = "Roadway_Cross_Section"
)

// Field names carried by the project list layer.
const (
	FieldProjectID     = "CSJ"
	FieldProjectStatus = "Funding_Status"
	FieldProjectCost   = "Construction_Cost"
	FieldProjectGap    = "Funding_Gap"
)

// UnknownCrossSection labels segments without a recorded cross section so they
// still contribute mileage to the pivot.
const UnknownCrossSection = "Unknown"

type profileAccumulator struct {
	miles        float64
	crossSection map[string]float64

	aadtWeighted  float64
	truckWeighted float64
	tonsWeighted  float64

	crashes      float64
	fatalCrashes float64
}

type projectAccumulator struct {
	ids  map[string]map[string]struct{}
	cost map[string]float64
	gap  float64
}

// Funding status buckets recognized on project features. Matching is
// case-insensitive; "partial" matches as a substring so variants like
// "Partially Funded" land in the same bucket.
const (
	statusConstruction = "construction"
	statusFunded       = "funded"
	statusPartial      = "partial"
	statusUnfunded     = "unfunded"
)

func fundingBucket(status string) string {
	normalized := strings.ToLower(strings.TrimSpace(status))
	switch {
	case strings.Contains(normalized, statusPartial):
		return statusPartial
	case strings.Contains(normalized, statusConstruction):
		return statusConstruction
	case normalized == statusFunded:
		return statusFunded
	case normalized == statusUnfunded:
		return statusUnfunded
	default:
		return ""
	}
}

// BuildCorridorProfiles derives one profile feature per highway from the
// segment layer, enriched with project counts and costs from the project
// layer. Traffic metrics are mileage-weighted means over segments carrying a
// value; corridors without any qualifying mileage carry nil for that metric.
// Cross-section mileage is pivoted into per-category columns. Corridors with
// no matching projects get zero-filled project metrics.
func BuildCorridorProfiles(segments domain.Layer, projects domain.Layer) domain.Layer {
	profiles := make(map[string]*profileAccumulator)
	order := make([]string, 0)

	for _, seg := range segments.Features {
		hwy, _ := seg.Value(FieldHighway).(string)
		if hwy == "" {
			continue
		}
		acc, ok := profiles[hwy]
		if !ok {
			acc = &profileAccumulator{crossSection: make(map[string]float64)}
			profiles[hwy] = acc
			order = append(order, hwy)
		}
		miles, _ := seg.Number(FieldSegmentMiles)
		acc.miles += miles

		section, _ := seg.Value(FieldCrossSection).(string)
		if section == "" {
			section = UnknownCrossSection
		}
		acc.crossSection[section] += miles

		if v, ok := seg.Number(FieldAADT); ok {
			acc.aadtWeighted += v * miles
		}
		if v, ok := seg.Number(FieldTruckAADT); ok {
			acc.truckWeighted += v * miles
		}
		if v, ok := seg.Number(FieldTons); ok {
			acc.tonsWeighted += v * miles
		}
		if v, ok := seg.Number(FieldCrashes); ok {
			acc.crashes += v
		}
		if v, ok := seg.Number(FieldFatalCrashes); ok {
			acc.fatalCrashes += v
		}
	}

	projectTotals := make(map[string]*projectAccumulator)
	for _, proj := range projects.Features {
		hwy, _ := proj.Value(FieldHighway).(string)
		if _, known := profiles[hwy]; !known {
			continue
		}
		status, _ := proj.Value(FieldProjectStatus).(string)
		bucket := fundingBucket(status)
		if bucket == "" {
			continue
		}
		acc, ok := projectTotals[hwy]
		if !ok {
			acc = &projectAccumulator{
				ids:  make(map[string]map[string]struct{}),
				cost: make(map[string]float64),
			}
			projectTotals[hwy] = acc
		}
		if id, _ := proj.Value(FieldProjectID).(string); id != "" {
			if acc.ids[bucket] == nil {
				acc.ids[bucket] = make(map[string]struct{})
			}
			acc.ids[bucket][id] = struct{}{}
		}
		if cost, ok := proj.Number(FieldProjectCost); ok {
			acc.cost[bucket] += cost
		}
		if bucket == statusPartial {
			if gap, ok := proj.Number(FieldProjectGap); ok {
				acc.gap += gap
			}
		}
	}

	sort.Strings(order)
	features := make([]domain.Feature, 0, len(order))
	for _, hwy := range order {
		acc := profiles[hwy]
		feature := domain.Feature{
			FieldHighway:      hwy,
			FieldTotalMiles:   round1(acc.miles),
			FieldCrashes:      acc.crashes,
			FieldFatalCrashes: acc.fatalCrashes,
		}

		if acc.miles > 0 {
			feature[FieldAADT] = math.Round(acc.aadtWeighted / acc.miles)
			feature[FieldTruckAADT] = acc.truckWeighted / acc.miles
			feature[FieldTons] = round1(acc.tonsWeighted / acc.miles)
		} else {
			feature[FieldAADT] = nil
			feature[FieldTruckAADT] = nil
			feature[FieldTons] = nil
		}
		if aadt, ok := feature.Number(FieldAADT); ok && aadt > 0 {
			truck, _ := feature.Number(FieldTruckAADT)
			feature[FieldTruckPercentage] = round1(truck / aadt * 100)
		} else {
			feature[FieldTruckPercentage] = nil
		}

		for section, miles := range acc.crossSection {
			feature[crossSectionColumn(section)] = round1(miles)
		}

		proj := projectTotals[hwy]
		feature[FieldProjectsConstr] = projectCount(proj, statusConstruction)
		feature[FieldCostConstr] = projectCost(proj, statusConstruction)
		feature[FieldProjectsFunded] = projectCount(proj, statusFunded)
		feature[FieldCostFunded] = projectCost(proj, statusFunded)
		feature[FieldProjectsPartial] = projectCount(proj, statusPartial)
		feature[FieldCostPartial] = projectCost(proj, statusPartial)
		feature[FieldProjectsUnfunded] = projectCount(proj, statusUnfunded)
		feature[FieldCostUnfunded] = projectCost(proj, statusUnfunded)
		if proj != nil {
			feature[FieldFundingGapPartial] = round1(proj.gap)
		} else {
			feature[FieldFundingGapPartial] = 0.0
		}

		features = append(features, feature)
	}

	return domain.Layer{
		Name:             ProfilesLayerName,
		KeyField:         FieldHighway,
		FingerprintField: FieldTotalMiles,
		Features:         features,
	}
}

// crossSectionColumn maps a raw cross-section label to its pivoted mileage
// column, e.g. "2U" becomes "two_U_miles" and "4D+" becomes "four_D_plus_miles".
func crossSectionColumn(section string) string {
	sanitized := strings.ReplaceAll(section, "+", "_plus")
	switch {
	case strings.HasPrefix(sanitized, "2"):
		sanitized = "two_" + sanitized[1:]
	case strings.HasPrefix(sanitized, "4"):
		sanitized = "four_" + sanitized[1:]
	}
	return sanitized + "_miles"
}

func projectCount(acc *projectAccumulator, bucket string) float64 {
	if acc == nil {
		return 0
	}
	return float64(len(acc.ids[bucket]))
}

func projectCost(acc *projectAccumulator, bucket string) float64 {
	if acc == nil {
		return 0
	}
	return round1(acc.cost[bucket])
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
