// Package chart defines the output side of the chart-configuration
// engine: axis selections, reshaped per-series datasets, axis domains,
// and the renderer-facing config that bundles them.
package chart

import (
	"encoding/json"
	"fmt"
)

// DefaultSeries is the implicit series identifier used when no
// series-splitting field was chosen.
const DefaultSeries = "All Data"

// AxisSelection is the result of axis inference. SeriesKey is empty when
// no field qualified as a series splitter. XKey and YKey are distinct
// whenever the source table had at least two analyzable fields.
type AxisSelection struct {
	XKey      string `json:"xKey"`
	YKey      string `json:"yKey"`
	SeriesKey string `json:"seriesKey,omitempty"`
}

// HasSeries reports whether a series-splitting field was selected.
func (s AxisSelection) HasSeries() bool { return s.SeriesKey != "" }

// Point is one plotted datum. Its keys are the selected xKey and yKey,
// mirroring the raw record shape so renderers can index by field id.
type Point map[string]interface{}

// ProcessedDataset maps a series identifier to its points, sorted
// ascending by X. It is owned by the reshaping step and read-only to
// everything downstream.
type ProcessedDataset map[string][]Point

// PointCount returns the total number of points across all series.
func (d ProcessedDataset) PointCount() int {
	n := 0
	for _, pts := range d {
		n += len(pts)
	}
	return n
}

// Bound is one edge of an axis domain: either a concrete number or the
// sentinel "auto", which delegates range inference to the renderer.
type Bound struct {
	Auto  bool
	Value float64
}

// AutoBound returns the "auto" sentinel bound.
func AutoBound() Bound { return Bound{Auto: true} }

// NumberBound returns a concrete numeric bound.
func NumberBound(v float64) Bound { return Bound{Value: v} }

// MarshalJSON emits either the string "auto" or a bare number.
func (b Bound) MarshalJSON() ([]byte, error) {
	if b.Auto {
		return json.Marshal("auto")
	}
	return json.Marshal(b.Value)
}

// UnmarshalJSON accepts "auto" or a number.
func (b *Bound) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "auto" {
			return fmt.Errorf("invalid bound %q", s)
		}
		*b = Bound{Auto: true}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*b = Bound{Value: v}
	return nil
}

// Domain holds the axis ranges computed from a processed dataset.
type Domain struct {
	XMin Bound `json:"xMin"`
	XMax Bound `json:"xMax"`
	YMin Bound `json:"yMin"`
	YMax Bound `json:"yMax"`
}

// AutoDomain returns a domain with every bound set to "auto".
func AutoDomain() Domain {
	return Domain{
		XMin: AutoBound(), XMax: AutoBound(),
		YMin: AutoBound(), YMax: AutoBound(),
	}
}

// Config is the complete renderer contract for one table snapshot.
type Config struct {
	ID          string           `json:"id"`
	XKey        string           `json:"xKey"`
	YKey        string           `json:"yKey"`
	SeriesKey   *string          `json:"seriesKey"`
	UseBarChart bool             `json:"useBarChart"`
	SumData     bool             `json:"sumData"`
	Dataset     ProcessedDataset `json:"dataset"`
	Domain      Domain           `json:"domain"`
}
