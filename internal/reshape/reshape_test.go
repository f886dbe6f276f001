package reshape

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zuzivian/sgraphs/domain/chart"
	"github.com/zuzivian/sgraphs/domain/dataset"
)

func TestReshapeSplitsSeriesAndSortsByX(t *testing.T) {
	records := []dataset.Record{
		{"year": "1992", "town": "Bedok", "price": "300"},
		{"year": "1990", "town": "Bedok", "price": "100"},
		{"year": "1991", "town": "Punggol", "price": "250"},
		{"year": "1991", "town": "Bedok", "price": "200"},
		{"year": "1990", "town": "Punggol", "price": "150"},
	}
	sel := chart.AxisSelection{XKey: "year", YKey: "price", SeriesKey: "town"}

	out := Reshape(records, sel, false)
	require.Len(t, out, 2)

	bedok := out["Bedok"]
	require.Len(t, bedok, 3)
	assert.Equal(t, "1990", bedok[0]["year"])
	assert.Equal(t, "1991", bedok[1]["year"])
	assert.Equal(t, "1992", bedok[2]["year"])
	assert.Equal(t, 100.0, bedok[0]["price"])
	assert.Equal(t, 200.0, bedok[1]["price"])
	assert.Equal(t, 300.0, bedok[2]["price"])

	punggol := out["Punggol"]
	require.Len(t, punggol, 2)
	assert.Equal(t, 150.0, punggol[0]["price"])
}

func TestReshapeImplicitSeries(t *testing.T) {
	records := []dataset.Record{
		{"x": "b", "y": "2"},
		{"x": "a", "y": "1"},
	}
	out := Reshape(records, chart.AxisSelection{XKey: "x", YKey: "y"}, false)
	require.Contains(t, out, chart.DefaultSeries)
	assert.Len(t, out[chart.DefaultSeries], 2)
}

func TestReshapeKeepsUnparseableYAsText(t *testing.T) {
	records := []dataset.Record{
		{"x": "1", "y": "n/a"},
		{"x": "2", "y": "5"},
	}
	out := Reshape(records, chart.AxisSelection{XKey: "x", YKey: "y"}, false)
	pts := out[chart.DefaultSeries]
	require.Len(t, pts, 2)
	assert.Equal(t, "n/a", pts[0]["y"])
	assert.Equal(t, 5.0, pts[1]["y"])
}

func TestReshapeSumsDuplicateX(t *testing.T) {
	records := []dataset.Record{
		{"year": "1990", "price": "100"},
		{"year": "1990", "price": "200"},
		{"year": "1990", "price": "50"},
		{"year": "1991", "price": "300"},
	}
	out := Reshape(records, chart.AxisSelection{XKey: "year", YKey: "price"}, true)
	pts := out[chart.DefaultSeries]
	require.Len(t, pts, 2)

	assert.Equal(t, "1990", pts[0]["year"])
	assert.Equal(t, 350.0, pts[0]["price"])
	assert.Equal(t, 300.0, pts[1]["price"])
}

func TestReshapeSumNonNumericRules(t *testing.T) {
	// A numeric value replaces a non-numeric placeholder; a later
	// non-numeric value never clobbers a numeric accumulator.
	records := []dataset.Record{
		{"x": "a", "y": "n/a"},
		{"x": "a", "y": "10"},
		{"x": "a", "y": "broken"},
		{"x": "a", "y": "5"},
		{"x": "b", "y": "n/a"},
	}
	out := Reshape(records, chart.AxisSelection{XKey: "x", YKey: "y"}, true)
	pts := out[chart.DefaultSeries]
	require.Len(t, pts, 2)

	assert.Equal(t, 15.0, pts[0]["y"])
	assert.Equal(t, "n/a", pts[1]["y"], "a group with no numeric values keeps its placeholder")
}

func TestReshapeSumIdempotent(t *testing.T) {
	records := []dataset.Record{
		{"year": "1990", "town": "Bedok", "price": "100"},
		{"year": "1990", "town": "Bedok", "price": "200"},
		{"year": "1991", "town": "Bedok", "price": "300"},
		{"year": "1990", "town": "Punggol", "price": "400"},
	}
	sel := chart.AxisSelection{XKey: "year", YKey: "price", SeriesKey: "town"}

	once := Reshape(records, sel, true)

	// Feed the output back through with the same keys; summing a
	// singleton per X must be a no-op.
	var roundTrip []dataset.Record
	for town, pts := range once {
		for _, pt := range pts {
			roundTrip = append(roundTrip, dataset.Record{
				"year": pt["year"], "price": pt["price"], "town": town,
			})
		}
	}
	twice := Reshape(roundTrip, sel, true)

	require.Len(t, twice, len(once))
	for town, pts := range once {
		again := twice[town]
		require.Len(t, again, len(pts), "series %s", town)
		for i := range pts {
			assert.Equal(t, pts[i]["year"], again[i]["year"])
			assert.Equal(t, pts[i]["price"], again[i]["price"])
		}
	}
}

func TestReshapeRewritesDateXToTimestamps(t *testing.T) {
	records := []dataset.Record{
		{"month": "1991-12", "value": "3"},
		{"month": "1991-10", "value": "1"},
		{"month": "1991-11", "value": "2"},
	}
	out := Reshape(records, chart.AxisSelection{XKey: "month", YKey: "value"}, false)
	pts := out[chart.DefaultSeries]
	require.Len(t, pts, 3)

	oct := float64(time.Date(1991, time.October, 1, 0, 0, 0, 0, time.Local).UnixMilli())
	assert.Equal(t, oct, pts[0]["month"])
	assert.Equal(t, 1.0, pts[0]["value"])
	assert.IsType(t, float64(0), pts[1]["month"])
	assert.IsType(t, float64(0), pts[2]["month"])

	// Input records must not be mutated.
	assert.Equal(t, "1991-12", records[0]["month"])
}

func TestReshapeMixedDateColumnStaysRaw(t *testing.T) {
	records := []dataset.Record{
		{"x": "1991-10", "y": "1"},
		{"x": "unknown", "y": "2"},
	}
	out := Reshape(records, chart.AxisSelection{XKey: "x", YKey: "y"}, false)
	pts := out[chart.DefaultSeries]
	require.Len(t, pts, 2)
	assert.Equal(t, "1991-10", pts[0]["x"], "one unparseable value keeps the column textual")
}

func TestReshapeEmpty(t *testing.T) {
	out := Reshape(nil, chart.AxisSelection{XKey: "x", YKey: "y"}, true)
	assert.Empty(t, out)
}
