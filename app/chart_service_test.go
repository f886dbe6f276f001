package app

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zuzivian/sgraphs/domain/chart"
	"github.com/zuzivian/sgraphs/domain/dataset"
	"github.com/zuzivian/sgraphs/internal/errors"
)

func resaleTable() *dataset.Table {
	fields := []dataset.Field{{ID: "year"}, {ID: "town"}, {ID: "resale_price"}}
	towns := []string{"Ang Mo Kio", "Bedok", "Clementi"}
	var records []dataset.Record
	price := 250000
	for year := 1990; year < 1994; year++ {
		for _, town := range towns {
			// Two flat types per (year, town): genuine duplicate-X
			// collisions within each town series.
			for flat := 0; flat < 2; flat++ {
				records = append(records, dataset.Record{
					"year":         fmt.Sprintf("%d", year),
					"town":         town,
					"resale_price": fmt.Sprintf("%d", price),
				})
				price += 5000
			}
		}
	}
	return &dataset.Table{Fields: fields, Records: records}
}

func TestBuildChartConfigResaleScenario(t *testing.T) {
	svc := NewChartService()

	cfg, err := svc.BuildChartConfig(resaleTable())
	require.NoError(t, err)

	assert.Equal(t, "year", cfg.XKey)
	assert.Equal(t, "resale_price", cfg.YKey)
	require.NotNil(t, cfg.SeriesKey)
	assert.Equal(t, "town", *cfg.SeriesKey)
	assert.False(t, cfg.UseBarChart, "year is time-like, expect a line")
	assert.True(t, cfg.SumData, "duplicate (year, town) numeric collisions exist")
	assert.NotEmpty(t, cfg.ID)

	require.Len(t, cfg.Dataset, 3)
	for town, pts := range cfg.Dataset {
		assert.Len(t, pts, 4, "one summed point per year for %s", town)
	}

	// Sum invariant: each emitted Y equals the arithmetic sum of its
	// group's raw values.
	raw := make(map[string]float64)
	for _, r := range resaleTable().Records {
		var price float64
		fmt.Sscanf(r["resale_price"].(string), "%f", &price)
		raw[r["town"].(string)+"|"+r["year"].(string)] += price
	}
	for town, pts := range cfg.Dataset {
		for _, pt := range pts {
			key := town + "|" + pt["year"].(string)
			assert.InDelta(t, raw[key], pt["resale_price"].(float64), 1e-6, key)
		}
	}

	assert.False(t, cfg.Domain.YMin.Auto)
	assert.False(t, cfg.Domain.YMax.Auto)
}

func TestBuildChartConfigCategoricalScenario(t *testing.T) {
	table := &dataset.Table{
		Fields: []dataset.Field{{ID: "category"}, {ID: "count"}},
		Records: []dataset.Record{
			{"category": "red", "count": "5"},
			{"category": "green", "count": "3"},
			{"category": "blue", "count": "8"},
			{"category": "yellow", "count": "1"},
		},
	}

	cfg, err := NewChartService().BuildChartConfig(table)
	require.NoError(t, err)

	assert.Equal(t, "category", cfg.XKey)
	assert.Equal(t, "count", cfg.YKey)
	assert.Nil(t, cfg.SeriesKey, "two fields only, no series")
	assert.True(t, cfg.UseBarChart, "non-numeric, non-time X expects bars")
	assert.False(t, cfg.SumData)

	assert.True(t, cfg.Domain.XMin.Auto, "categorical X has no numeric domain")
	assert.True(t, cfg.Domain.XMax.Auto)
}

func TestBuildChartConfigIdenticalXDomain(t *testing.T) {
	table := &dataset.Table{
		Fields: []dataset.Field{{ID: "reading"}, {ID: "value"}},
		Records: []dataset.Record{
			{"reading": "7", "value": "10"},
			{"reading": "7", "value": "20"},
			{"reading": "7", "value": "30"},
		},
	}

	cfg, err := NewChartService().BuildChartConfig(table)
	require.NoError(t, err)
	assert.True(t, cfg.Domain.XMin.Auto)
	assert.True(t, cfg.Domain.XMax.Auto)
}

func TestBuildChartConfigOverrides(t *testing.T) {
	table := resaleTable()
	svc := NewChartService()

	noSum := false
	cfg, err := svc.BuildChartConfigWithSelection(table, Selection{
		XKey:      "town",
		SeriesKey: "none",
		Sum:       &noSum,
	})
	require.NoError(t, err)
	assert.Equal(t, "town", cfg.XKey)
	assert.Nil(t, cfg.SeriesKey)
	assert.False(t, cfg.SumData)
	assert.Len(t, cfg.Dataset[chart.DefaultSeries], len(table.Records))

	_, err = svc.BuildChartConfigWithSelection(table, Selection{XKey: "bogus"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}

func TestBuildChartConfigEmptyTable(t *testing.T) {
	_, err := NewChartService().BuildChartConfig(&dataset.Table{})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}

func TestChartConfigJSONContract(t *testing.T) {
	cfg, err := NewChartService().BuildChartConfig(resaleTable())
	require.NoError(t, err)

	raw, err := json.Marshal(cfg)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "year", decoded["xKey"])
	assert.Equal(t, "town", decoded["seriesKey"])
	domain := decoded["domain"].(map[string]interface{})
	assert.Contains(t, domain, "yMin")
	assert.Contains(t, domain, "xMax")

	// The seriesKey field serializes to null when absent.
	cfg2, err := NewChartService().BuildChartConfig(&dataset.Table{
		Fields:  []dataset.Field{{ID: "category"}, {ID: "count"}},
		Records: []dataset.Record{{"category": "a", "count": "1"}, {"category": "b", "count": "2"}},
	})
	require.NoError(t, err)
	raw2, err := json.Marshal(cfg2)
	require.NoError(t, err)
	var decoded2 map[string]interface{}
	require.NoError(t, json.Unmarshal(raw2, &decoded2))
	v, present := decoded2["seriesKey"]
	assert.True(t, present)
	assert.Nil(t, v)
}
