// Package app composes the inference and reshaping stages into the
// renderer-facing chart configuration service.
package app

import (
	"github.com/google/uuid"

	"github.com/zuzivian/sgraphs/domain/chart"
	"github.com/zuzivian/sgraphs/domain/dataset"
	"github.com/zuzivian/sgraphs/internal/errors"
	"github.com/zuzivian/sgraphs/internal/infer"
	"github.com/zuzivian/sgraphs/internal/reshape"
)

// Selection carries user overrides from the settings form. Empty fields
// fall back to the inferred value; Sum overrides the aggregation policy
// when non-nil.
type Selection struct {
	XKey      string
	YKey      string
	SeriesKey string
	Sum       *bool
}

// ChartService turns fully-materialized table snapshots into chart
// configurations. It holds only the scoring table; every call is a pure
// function of its inputs, so one instance serves all requests without
// locking and no stale state can leak between snapshots.
type ChartService struct {
	selector *infer.Selector
}

// NewChartService creates a chart service with the default scoring
// weights.
func NewChartService() *ChartService {
	return NewChartServiceWithWeights(infer.DefaultWeights())
}

// NewChartServiceWithWeights creates a chart service with a custom
// scoring table.
func NewChartServiceWithWeights(weights infer.Weights) *ChartService {
	return &ChartService{selector: infer.NewSelector(weights)}
}

// BuildChartConfig infers axes and policies for a table snapshot and
// returns the complete renderer contract.
func (s *ChartService) BuildChartConfig(table *dataset.Table) (*chart.Config, error) {
	return s.BuildChartConfigWithSelection(table, Selection{})
}

// BuildChartConfigWithSelection is BuildChartConfig with user overrides
// applied on top of the inferred axis selection. Overridden keys must
// name fields that exist in the table.
func (s *ChartService) BuildChartConfigWithSelection(table *dataset.Table, override Selection) (*chart.Config, error) {
	if table.IsEmpty() {
		return nil, errors.InvalidInput("table has no fields or records")
	}

	selection, err := s.selector.ComputeLabels(table.Fields, table.Records)
	if err != nil {
		return nil, err
	}

	if err := applyOverride(&selection, table, override); err != nil {
		return nil, err
	}

	sumData := infer.ShouldSumData(table.Records, selection.XKey, selection.YKey)
	if override.Sum != nil {
		sumData = *override.Sum
	}

	processed := reshape.Reshape(table.Records, selection, sumData)

	config := &chart.Config{
		ID:          uuid.NewString(),
		XKey:        selection.XKey,
		YKey:        selection.YKey,
		UseBarChart: infer.ShouldUseBarChart(table.Records, selection.XKey),
		SumData:     sumData,
		Dataset:     processed,
		Domain:      reshape.ComputeDomain(processed, selection.XKey, selection.YKey),
	}
	if selection.HasSeries() {
		seriesKey := selection.SeriesKey
		config.SeriesKey = &seriesKey
	}
	return config, nil
}

func applyOverride(selection *chart.AxisSelection, table *dataset.Table, override Selection) error {
	if override.XKey != "" {
		if !hasField(table, override.XKey) {
			return errors.InvalidInput("unknown x field: " + override.XKey)
		}
		selection.XKey = override.XKey
	}
	if override.YKey != "" {
		if !hasField(table, override.YKey) {
			return errors.InvalidInput("unknown y field: " + override.YKey)
		}
		selection.YKey = override.YKey
	}
	switch override.SeriesKey {
	case "":
		// keep inferred series
	case "none":
		selection.SeriesKey = ""
	default:
		if !hasField(table, override.SeriesKey) {
			return errors.InvalidInput("unknown series field: " + override.SeriesKey)
		}
		selection.SeriesKey = override.SeriesKey
	}
	return nil
}

func hasField(table *dataset.Table, id string) bool {
	for _, f := range table.Fields {
		if f.ID == id {
			return true
		}
	}
	return false
}
