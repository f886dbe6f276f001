package dataset

// FieldAnalysis captures what a bounded sample of records reveals about a
// single field. It is derived, ephemeral state: recomputed on every
// axis-selection call and never persisted.
type FieldAnalysis struct {
	Name         string      `json:"name"`
	IsNumeric    bool        `json:"is_numeric"`
	IsTime       bool        `json:"is_time"`
	IsValue      bool        `json:"is_value"`
	UniqueCount  int         `json:"unique_count"`
	NumericRatio float64     `json:"numeric_ratio"`
	Sample       interface{} `json:"sample,omitempty"`

	// SampleSize is the number of records actually inspected (capped),
	// the denominator for every cardinality ratio downstream.
	SampleSize int `json:"sample_size"`

	// Summary holds descriptive statistics for numeric fields, for
	// display only; the selector never reads it.
	Summary *NumericSummary `json:"summary,omitempty"`
}

// NumericSummary describes the numeric values seen in the sample.
type NumericSummary struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// UniqueRatio returns the sampled unique-count as a fraction of the
// sample size, in [0,1].
func (a FieldAnalysis) UniqueRatio() float64 {
	if a.SampleSize == 0 {
		return 0
	}
	return float64(a.UniqueCount) / float64(a.SampleSize)
}
