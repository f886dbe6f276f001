package reshape

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/zuzivian/sgraphs/domain/chart"
	"github.com/zuzivian/sgraphs/internal/infer"
)

// Axis padding factors. X axes get a flat 5% of range. Y padding scales
// with the magnitude of the range so small ranges stay readable and huge
// ranges do not waste vertical space.
const (
	xPadFraction       = 0.05
	yPadFraction       = 0.10
	yPadSmallFraction  = 0.20
	yPadSmallFloor     = 0.1
	yPadLargeFraction  = 0.05
	ySmallRange        = 1.0
	yLargeRange        = 1000.0
	yZeroRangePad      = 0.20
	yZeroCrossExpand   = 1.10
	yClampToZeroWindow = 0.10
)

// ComputeDomain derives padded axis bounds from a processed dataset.
// The X and Y ranges are computed independently; any axis whose values
// are not uniformly numeric falls back to the "auto" sentinel, leaving
// range inference to the renderer.
func ComputeDomain(ds chart.ProcessedDataset, xKey, yKey string) chart.Domain {
	domain := chart.AutoDomain()

	if xs, ok := numericColumn(ds, xKey); ok {
		domain.XMin, domain.XMax = xDomain(xs)
	}
	if ys, ok := numericColumn(ds, yKey); ok {
		domain.YMin, domain.YMax = yDomain(ys)
	}
	return domain
}

// numericColumn collects the non-null values at key across all series.
// ok is false when the column is empty or any value is non-numeric.
func numericColumn(ds chart.ProcessedDataset, key string) ([]float64, bool) {
	var values []float64
	for _, points := range ds {
		for _, point := range points {
			value := point[key]
			if infer.IsBlank(value) {
				continue
			}
			f, ok := infer.ToFloat(value)
			if !ok || !infer.IsNumericLike(value) {
				return nil, false
			}
			values = append(values, f)
		}
	}
	return values, len(values) > 0
}

// xDomain pads the X range by 5%. A zero range (all-identical values,
// including all-identical timestamps) yields auto bounds.
func xDomain(values []float64) (chart.Bound, chart.Bound) {
	min, max := floats.Min(values), floats.Max(values)
	span := max - min
	if span == 0 {
		return chart.AutoBound(), chart.AutoBound()
	}
	pad := xPadFraction * span
	return chart.NumberBound(min - pad), chart.NumberBound(max + pad)
}

// yDomain applies the Y padding ladder: special cases for zero ranges,
// magnitude-scaled padding otherwise, symmetric expansion around zero
// for zero-crossing ranges, and clamp-to-zero for one-signed ranges that
// start near zero.
func yDomain(values []float64) (chart.Bound, chart.Bound) {
	min, max := floats.Min(values), floats.Max(values)
	span := max - min

	if span == 0 {
		if min == 0 {
			return chart.NumberBound(0), chart.NumberBound(1)
		}
		pad := yZeroRangePad * math.Abs(min)
		return chart.NumberBound(min - pad), chart.NumberBound(min + pad)
	}

	var pad float64
	switch {
	case span < ySmallRange:
		pad = math.Max(yPadSmallFraction*span, yPadSmallFloor)
	case span > yLargeRange:
		pad = yPadLargeFraction * span
	default:
		pad = yPadFraction * span
	}

	switch {
	case min < 0 && max > 0:
		bound := yZeroCrossExpand * math.Max(math.Abs(min), math.Abs(max))
		return chart.NumberBound(-bound), chart.NumberBound(bound)

	case min >= 0:
		lower := chart.NumberBound(min - pad)
		if min <= yClampToZeroWindow*span {
			lower = chart.NumberBound(0)
		}
		return lower, chart.NumberBound(max + pad)

	default: // max <= 0, mirror of the nonnegative case
		upper := chart.NumberBound(max + pad)
		if math.Abs(max) <= yClampToZeroWindow*span {
			upper = chart.NumberBound(0)
		}
		return chart.NumberBound(min - pad), upper
	}
}
