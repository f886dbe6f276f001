package infer

import (
	"strings"

	"github.com/zuzivian/sgraphs/domain/dataset"
)

// Weights is the scoring table behind axis selection. Every keyword or
// cardinality signal contributes through a named weight so the ranking
// is auditable and tests can probe sensitivity without touching the
// selection logic.
type Weights struct {
	// X-axis suitability.
	XTimeField     float64 // field name has time semantics
	XUniquenessMax float64 // scaled by unique-count / sample-size
	XNameYearDate  float64 // name contains "year" or "date"
	XNameTime      float64 // name contains "time" or "period"
	XNameMonthDay  float64 // name contains "month" or "day"
	XNumericDense  float64 // numeric with unique-count above half the sample
	XValuePenalty  float64 // field name has value semantics
	XCategorical   float64 // non-numeric with more than one distinct value

	// Y-axis suitability.
	YValueField    float64 // field name has value semantics
	YNumeric       float64 // numeric ratio above the numeric threshold
	YNumericRatio  float64 // scaled by the numeric ratio itself
	YTimePenalty   float64 // field name has time semantics
	YMidCard       float64 // unique-count strictly between 1 and 70% of sample
	YNearUnique    float64 // unique-count above 90% of sample
	YValueKeywords float64 // name contains a core measure keyword
}

// DefaultWeights returns the tuned production scoring table.
func DefaultWeights() Weights {
	return Weights{
		XTimeField:     150,
		XUniquenessMax: 60,
		XNameYearDate:  40,
		XNameTime:      30,
		XNameMonthDay:  25,
		XNumericDense:  15,
		XValuePenalty:  -80,
		XCategorical:   20,

		YValueField:    150,
		YNumeric:       80,
		YNumericRatio:  40,
		YTimePenalty:   -100,
		YMidCard:       15,
		YNearUnique:    -30,
		YValueKeywords: 30,
	}
}

// yKeywordSubset is the narrower measure vocabulary that earns the
// YValueKeywords bonus on top of the broad IsValueField match.
var yKeywordSubset = []string{"value", "amount", "count", "total", "number", "quantity"}

// XScore rates a field's suitability as the X axis.
func (w Weights) XScore(a dataset.FieldAnalysis) float64 {
	name := strings.ToLower(a.Name)
	score := 0.0

	if a.IsTime {
		score += w.XTimeField
	}
	score += w.XUniquenessMax * a.UniqueRatio()

	if strings.Contains(name, "year") || strings.Contains(name, "date") {
		score += w.XNameYearDate
	}
	if strings.Contains(name, "time") || strings.Contains(name, "period") {
		score += w.XNameTime
	}
	if strings.Contains(name, "month") || strings.Contains(name, "day") {
		score += w.XNameMonthDay
	}
	if a.IsNumeric && float64(a.UniqueCount) > 0.5*float64(a.SampleSize) {
		score += w.XNumericDense
	}
	if a.IsValue {
		score += w.XValuePenalty
	}
	if !a.IsNumeric && a.UniqueCount > 1 {
		score += w.XCategorical
	}

	return score
}

// YScore rates a field's suitability as the Y axis.
func (w Weights) YScore(a dataset.FieldAnalysis) float64 {
	score := 0.0

	if a.IsValue {
		score += w.YValueField
	}
	if a.IsNumeric {
		score += w.YNumeric
	}
	score += w.YNumericRatio * a.NumericRatio

	if a.IsTime {
		score += w.YTimePenalty
	}
	if a.UniqueCount > 1 && float64(a.UniqueCount) < 0.7*float64(a.SampleSize) {
		score += w.YMidCard
	}
	if float64(a.UniqueCount) > 0.9*float64(a.SampleSize) {
		score += w.YNearUnique
	}
	if containsAny(a.Name, yKeywordSubset) {
		score += w.YValueKeywords
	}

	return score
}
