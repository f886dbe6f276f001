package infer

import (
	"github.com/zuzivian/sgraphs/domain/dataset"
)

// barNumericUniqueLimit and barNumericUniqueRatio bound the cardinality
// at which a numeric, non-time X axis still reads better as discrete
// bars than as a continuous line.
const (
	barNumericUniqueLimit = 20
	barNumericUniqueRatio = 0.5
	numericShareThreshold = 0.8
)

// ShouldUseBarChart decides bar versus line from the chosen X field.
// Bars win when X is not time-like and is either non-numeric or numeric
// with only a handful of distinct values. Time-like or densely numeric
// X axes render as lines. With no values at X the line default stands.
func ShouldUseBarChart(records []dataset.Record, xKey string) bool {
	if IsTimeField(xKey) {
		return false
	}

	total := 0
	numeric := 0
	unique := make(map[string]struct{})
	for _, record := range records {
		value, ok := record.Value(xKey)
		if !ok || IsBlank(value) {
			continue
		}
		total++
		if IsNumericLike(value) {
			numeric++
		}
		unique[Stringify(value)] = struct{}{}
	}

	if total == 0 {
		return false
	}

	numericShare := float64(numeric) / float64(total)
	if numericShare < numericShareThreshold {
		return true
	}

	uniqueRatio := float64(len(unique)) / float64(total)
	return len(unique) < barNumericUniqueLimit && uniqueRatio < barNumericUniqueRatio
}

// ShouldSumData reports whether repeated X values carry multiple numeric
// Y values, i.e. genuine duplicate-X collisions that would need summing
// rather than plotting as separate points.
func ShouldSumData(records []dataset.Record, xKey, yKey string) bool {
	type group struct {
		records  int
		numericY int
	}
	groups := make(map[string]*group)

	for _, record := range records {
		xValue, ok := record.Value(xKey)
		if !ok {
			continue
		}
		key := Stringify(xValue)
		g := groups[key]
		if g == nil {
			g = &group{}
			groups[key] = g
		}
		g.records++
		if yValue, ok := record.Value(yKey); ok && !IsBlank(yValue) && IsNumericLike(yValue) {
			g.numericY++
		}
	}

	for _, g := range groups {
		if g.records > 1 && g.numericY > 1 {
			return true
		}
	}
	return false
}
