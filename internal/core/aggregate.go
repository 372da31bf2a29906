package core

import (
	"fmt"

	"corridorcore/pkg/domain"
)

// AggregateSum sums the named field across all features, treating empty and
// non-numeric values as 0. An empty collection sums to 0.
func AggregateSum(features []domain.Feature, field string) float64 {
	var total float64
	for _, f := range features {
		if n, ok := f.Number(field); ok {
			total += n
		}
	}
	return total
}

// AggregateWeightedAverage computes sum(value*weight)/sum(weight) over
// features where both the value and the weight are present and positive.
// When filterField is non-empty, row qualification uses filterField > 0 in
// place of the value field (the tonnage widget qualifies rows by truck
// traffic, not by tonnage). Returns 0 when the qualifying weight sum is 0.
func AggregateWeightedAverage(features []domain.Feature, field, weightField, filterField string) float64 {
	qualifier := field
	if filterField != "" {
		qualifier = filterField
	}
	var weightedSum, weightSum float64
	for _, f := range features {
		q, ok := f.Number(qualifier)
		if !ok || q <= 0 {
			continue
		}
		w, ok := f.Number(weightField)
		if !ok || w <= 0 {
			continue
		}
		v, ok := f.Number(field)
		if !ok {
			v = 0
		}
		weightedSum += v * w
		weightSum += w
	}
	if weightSum == 0 {
		return 0
	}
	return weightedSum / weightSum
}

// AggregateDistinctCount counts distinct non-empty values of the named field.
// Values are keyed by their canonical string form so non-comparable values
// arriving from decoded JSON (nested objects, arrays) count instead of
// panicking.
func AggregateDistinctCount(features []domain.Feature, field string) int {
	seen := make(map[string]struct{})
	for _, f := range features {
		v := f.Value(field)
		if domain.IsEmpty(v) {
			continue
		}
		seen[fmt.Sprint(v)] = struct{}{}
	}
	return len(seen)
}
