// Package reshape turns raw records plus an axis selection into the
// per-series ordered point sequences a renderer consumes, and computes
// padded axis domains over the result. Like the inference package it is
// pure: inputs are never mutated and no state survives an invocation.
package reshape

import (
	"sort"

	"github.com/zuzivian/sgraphs/domain/chart"
	"github.com/zuzivian/sgraphs/domain/dataset"
	"github.com/zuzivian/sgraphs/internal/infer"
)

// Reshape groups records into one ordered point sequence per series.
// When sumData is set, numeric Y values that collide on the same X
// within a series are summed; a non-numeric Y never overwrites a numeric
// accumulator, while a numeric Y does replace a non-numeric placeholder.
// If the X column's sampled values are date strings, every X is first
// rewritten to its parsed timestamp so sorting, grouping, and domain
// computation all run on one numeric timeline.
func Reshape(records []dataset.Record, sel chart.AxisSelection, sumData bool) chart.ProcessedDataset {
	if len(records) == 0 {
		return chart.ProcessedDataset{}
	}

	records = normalizeTimeline(records, sel.XKey)

	partitions := partitionBySeries(records, sel.SeriesKey)

	out := make(chart.ProcessedDataset, len(partitions))
	for series, part := range partitions {
		if sumData {
			out[series] = sumPoints(part, sel.XKey, sel.YKey)
		} else {
			out[series] = listPoints(part, sel.XKey, sel.YKey)
		}
	}
	return out
}

// normalizeTimeline rewrites X values to parsed timestamps when the
// sampled column is uniformly date-like. Records are copied before
// rewriting; the caller's slice is left untouched.
func normalizeTimeline(records []dataset.Record, xKey string) []dataset.Record {
	if !xColumnIsDates(records, xKey) {
		return records
	}

	rewritten := make([]dataset.Record, len(records))
	for i, record := range records {
		copied := make(dataset.Record, len(record))
		for k, v := range record {
			copied[k] = v
		}
		if ts, ok := infer.ParseDate(copied[xKey]); ok {
			copied[xKey] = ts
		}
		rewritten[i] = copied
	}
	return rewritten
}

// xColumnIsDates samples the X column and reports whether every
// non-blank sampled value is a date string. A single unparseable value
// keeps the column on its original scale rather than producing a mixed
// timeline.
func xColumnIsDates(records []dataset.Record, xKey string) bool {
	limit := len(records)
	if limit > infer.SampleLimit {
		limit = infer.SampleLimit
	}

	seen := 0
	for i := 0; i < limit; i++ {
		value, ok := records[i].Value(xKey)
		if !ok || infer.IsBlank(value) {
			continue
		}
		if !infer.IsDateString(value) {
			return false
		}
		seen++
	}
	return seen > 0
}

func partitionBySeries(records []dataset.Record, seriesKey string) map[string][]dataset.Record {
	if seriesKey == "" {
		return map[string][]dataset.Record{chart.DefaultSeries: records}
	}

	partitions := make(map[string][]dataset.Record)
	for _, record := range records {
		value, _ := record.Value(seriesKey)
		series := infer.Stringify(value)
		if series == "" {
			series = chart.DefaultSeries
		}
		partitions[series] = append(partitions[series], record)
	}
	return partitions
}

// listPoints emits one point per record, Y coerced to a number when it
// parses and left as the original text otherwise, sorted ascending by X.
func listPoints(records []dataset.Record, xKey, yKey string) []chart.Point {
	points := make([]chart.Point, 0, len(records))
	for _, record := range records {
		x, _ := record.Value(xKey)
		y, _ := record.Value(yKey)
		points = append(points, chart.Point{xKey: x, yKey: coerceY(y)})
	}
	sortByX(points, xKey)
	return points
}

// sumPoints emits one point per distinct X, accumulating numeric Y
// collisions, sorted ascending by X.
func sumPoints(records []dataset.Record, xKey, yKey string) []chart.Point {
	type accumulator struct {
		x interface{}
		y interface{}
	}

	order := make([]string, 0, len(records))
	sums := make(map[string]*accumulator, len(records))

	for _, record := range records {
		x, _ := record.Value(xKey)
		y, _ := record.Value(yKey)
		key := infer.Stringify(x)

		acc, exists := sums[key]
		if !exists {
			acc = &accumulator{x: x}
			sums[key] = acc
			order = append(order, key)
		}

		incoming, numeric := numericValue(y)
		current, accNumeric := acc.y.(float64)
		switch {
		case numeric && accNumeric:
			acc.y = current + incoming
		case numeric:
			// Numeric replaces a non-numeric placeholder (or nothing).
			acc.y = incoming
		case acc.y == nil:
			acc.y = y
		}
	}

	points := make([]chart.Point, 0, len(order))
	for _, key := range order {
		acc := sums[key]
		points = append(points, chart.Point{xKey: acc.x, yKey: acc.y})
	}
	sortByX(points, xKey)
	return points
}

func sortByX(points []chart.Point, xKey string) {
	sort.SliceStable(points, func(i, j int) bool {
		return infer.CompareValues(points[i][xKey], points[j][xKey]) < 0
	})
}

// coerceY converts Y to a float where possible, otherwise passes the
// original value through for the renderer to display as-is.
func coerceY(y interface{}) interface{} {
	if v, ok := numericValue(y); ok {
		return v
	}
	return y
}

func numericValue(y interface{}) (float64, bool) {
	if infer.IsBlank(y) || !infer.IsNumericLike(y) {
		return 0, false
	}
	return infer.ToFloat(y)
}
