// Package infer implements the heuristic chart-configuration engine:
// field classification, date parsing, a total order over heterogeneous
// values, axis selection, and the chart-type and aggregation policies.
//
// Everything in this package is a pure function of its inputs plus a
// bounded sample of records. Nothing here logs, retries, or keeps state
// across invocations.
package infer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/zuzivian/sgraphs/domain/dataset"
)

// SampleLimit bounds how many records a field analysis inspects.
const SampleLimit = 100

// numericPattern matches an optional sign, digits, and an optional
// decimal part, with nothing else. Blank values deliberately do not
// match: a blank cell is missing data, not the number zero, and letting
// it count as numeric would inflate numeric ratios on sparse columns.
var numericPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d+)?|\.\d+)$`)

var timeFieldKeywords = []string{
	"year", "month", "date", "time", "timestamp", "day", "week",
	"quarter", "period", "datetime", "created", "updated", "when",
}

var valueFieldKeywords = []string{
	"value", "amount", "count", "total", "sum", "number", "quantity",
	"population", "energy", "power", "consumption", "production",
	"revenue", "cost", "price", "rate", "percentage", "percent",
	"score", "rating", "index", "level", "volume", "capacity",
}

// IsNumericLike reports whether a raw value behaves as a number. Native
// numeric types qualify outright; strings must match numericPattern
// after trimming.
func IsNumericLike(value interface{}) bool {
	switch value.(type) {
	case nil:
		return false
	case float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return true
	}
	return numericPattern.MatchString(strings.TrimSpace(Stringify(value)))
}

// IsTimeField reports whether a field name suggests time semantics.
func IsTimeField(name string) bool {
	return containsAny(name, timeFieldKeywords)
}

// IsValueField reports whether a field name suggests measured-value
// semantics.
func IsValueField(name string) bool {
	return containsAny(name, valueFieldKeywords)
}

func containsAny(name string, keywords []string) bool {
	lower := strings.ToLower(name)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// IsBlank reports whether a value carries no data at all.
func IsBlank(value interface{}) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// Stringify renders a raw value for keying and pattern matching.
// Floats that hold whole numbers print without an exponent or trailing
// zeros so that 2020.0 and "2020" key identically.
func Stringify(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		return fmt.Sprint(v)
	}
}

// ToFloat attempts a best-effort numeric conversion of a raw value.
func ToFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

// AnalyzeField inspects up to SampleLimit records of one field and
// derives its classification. Time/value semantics come from the field
// name only; numericness comes from the sampled content.
func AnalyzeField(field dataset.Field, records []dataset.Record) dataset.FieldAnalysis {
	sampleSize := len(records)
	if sampleSize > SampleLimit {
		sampleSize = SampleLimit
	}

	analysis := dataset.FieldAnalysis{
		Name:       field.ID,
		IsTime:     IsTimeField(field.ID),
		IsValue:    IsValueField(field.ID),
		SampleSize: sampleSize,
	}

	unique := make(map[string]struct{}, sampleSize)
	var numericCount int
	var numericValues []float64

	for i := 0; i < sampleSize; i++ {
		value, _ := records[i].Value(field.ID)
		if analysis.Sample == nil && !IsBlank(value) {
			analysis.Sample = value
		}
		unique[Stringify(value)] = struct{}{}
		if !IsBlank(value) && IsNumericLike(value) {
			numericCount++
			if f, ok := ToFloat(value); ok {
				numericValues = append(numericValues, f)
			}
		}
	}

	analysis.UniqueCount = len(unique)
	if sampleSize > 0 {
		analysis.NumericRatio = float64(numericCount) / float64(sampleSize)
	}
	analysis.IsNumeric = analysis.NumericRatio > 0.8
	analysis.Summary = summarize(numericValues)

	return analysis
}

// AnalyzeFields analyzes every field whose id appears in the first
// record, preserving field order.
func AnalyzeFields(fields []dataset.Field, records []dataset.Record) []dataset.FieldAnalysis {
	if len(records) == 0 {
		return nil
	}
	first := records[0]
	analyses := make([]dataset.FieldAnalysis, 0, len(fields))
	for _, field := range fields {
		if _, ok := first.Value(field.ID); !ok {
			continue
		}
		analyses = append(analyses, AnalyzeField(field, records))
	}
	return analyses
}

// summarize computes descriptive statistics over the sampled numeric
// values. Display-only; selection heuristics never read it.
func summarize(values []float64) *dataset.NumericSummary {
	if len(values) == 0 {
		return nil
	}
	min, err := stats.Min(values)
	if err != nil {
		return nil
	}
	max, _ := stats.Max(values)
	mean, _ := stats.Mean(values)
	sd, _ := stats.StandardDeviation(values)
	return &dataset.NumericSummary{Min: min, Max: max, Mean: mean, StdDev: sd}
}
