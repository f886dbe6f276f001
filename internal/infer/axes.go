package infer

import (
	"math"

	"github.com/zuzivian/sgraphs/domain/chart"
	"github.com/zuzivian/sgraphs/domain/dataset"
	"github.com/zuzivian/sgraphs/internal/errors"
)

// Series cardinality constraints: a series-splitting field must have
// more than one distinct value, fewer than seriesMaxUnique, fewer than
// half the sampled records, and must not be near-unique. Within the
// preferred window the unique-count closest to seriesIdealUnique wins.
const (
	seriesMaxUnique       = 50
	seriesPreferredMin    = 2
	seriesPreferredMax    = 20
	seriesIdealUnique     = 7.5
	seriesNearUniqueRatio = 0.9
)

// internalIDField is injected by some data stores and never useful as a
// series splitter.
const internalIDField = "_id"

// Selector chooses chart axes for a table snapshot using a configurable
// scoring table.
type Selector struct {
	weights Weights
}

// NewSelector creates a selector with the given scoring weights.
func NewSelector(weights Weights) *Selector {
	return &Selector{weights: weights}
}

// ComputeLabels selects axes using the default weights.
func ComputeLabels(fields []dataset.Field, records []dataset.Record) (chart.AxisSelection, error) {
	return NewSelector(DefaultWeights()).ComputeLabels(fields, records)
}

// ComputeLabels scores every analyzable field for X- and Y-suitability
// and picks distinct X/Y fields, then optionally a series-splitting
// field. Y is chosen from a candidate set that already excludes X, so
// X != Y holds by construction whenever two analyzable fields exist.
func (s *Selector) ComputeLabels(fields []dataset.Field, records []dataset.Record) (chart.AxisSelection, error) {
	if len(fields) == 0 {
		return chart.AxisSelection{}, errors.InvalidInput("no fields supplied")
	}
	if len(records) == 0 {
		return chart.AxisSelection{}, errors.InvalidInput("no records supplied")
	}

	analyses := AnalyzeFields(fields, records)
	if len(analyses) == 0 {
		return chart.AxisSelection{}, errors.InvalidInput("first record shares no field ids with the field list")
	}

	xIdx := s.pickX(analyses)

	if len(analyses) == 1 {
		// Single usable field: X and Y collapse onto it.
		return chart.AxisSelection{XKey: analyses[0].Name, YKey: analyses[0].Name}, nil
	}

	yIdx := s.pickY(analyses, xIdx)

	selection := chart.AxisSelection{
		XKey: analyses[xIdx].Name,
		YKey: analyses[yIdx].Name,
	}

	// Defense in depth: the index bookkeeping above makes this
	// unreachable, so a hit is a programming defect.
	if selection.XKey == selection.YKey {
		return chart.AxisSelection{}, errors.UnresolvableAxis("selector produced identical X and Y keys")
	}

	selection.SeriesKey = s.pickSeries(analyses, xIdx, yIdx)
	return selection, nil
}

// pickX returns the index of the highest X-scoring field; ties keep the
// first field in original order.
func (s *Selector) pickX(analyses []dataset.FieldAnalysis) int {
	best := 0
	bestScore := s.weights.XScore(analyses[0])
	for i := 1; i < len(analyses); i++ {
		if score := s.weights.XScore(analyses[i]); score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}

// pickY returns the index of the highest Y-scoring field among the
// candidates with X excluded. When X is a time field, other time fields
// are excluded from candidacy too, unless that would empty the pool.
func (s *Selector) pickY(analyses []dataset.FieldAnalysis, xIdx int) int {
	var pool []int
	for i := range analyses {
		if i != xIdx {
			pool = append(pool, i)
		}
	}

	if analyses[xIdx].IsTime {
		var nonTime []int
		for _, i := range pool {
			if !analyses[i].IsTime {
				nonTime = append(nonTime, i)
			}
		}
		if len(nonTime) > 0 {
			pool = nonTime
		}
	}

	best := pool[0]
	bestScore := s.weights.YScore(analyses[best])
	for _, i := range pool[1:] {
		if score := s.weights.YScore(analyses[i]); score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}

// pickSeries chooses a series-splitting field, or "" when none
// qualifies. Requires at least three analyzable fields; candidates must
// satisfy the cardinality constraints above. Among candidates, a field
// whose unique-count falls in the preferred window and lies closest to
// the ideal wins; otherwise the first candidate in field order is used.
func (s *Selector) pickSeries(analyses []dataset.FieldAnalysis, xIdx, yIdx int) string {
	if len(analyses) <= 2 {
		return ""
	}

	var candidates []dataset.FieldAnalysis
	for i, a := range analyses {
		if i == xIdx || i == yIdx || a.Name == internalIDField {
			continue
		}
		limit := float64(seriesMaxUnique)
		if half := 0.5 * float64(a.SampleSize); half < limit {
			limit = half
		}
		if a.UniqueCount <= 1 || float64(a.UniqueCount) >= limit {
			continue
		}
		if float64(a.UniqueCount) >= seriesNearUniqueRatio*float64(a.SampleSize) {
			continue
		}
		candidates = append(candidates, a)
	}

	if len(candidates) == 0 {
		return ""
	}

	best := ""
	bestDist := math.Inf(1)
	for _, c := range candidates {
		if c.UniqueCount < seriesPreferredMin || c.UniqueCount > seriesPreferredMax {
			continue
		}
		if dist := math.Abs(float64(c.UniqueCount) - seriesIdealUnique); dist < bestDist {
			best, bestDist = c.Name, dist
		}
	}
	if best != "" {
		return best
	}
	return candidates[0].Name
}
