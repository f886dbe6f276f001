// Package export writes processed chart datasets to Excel workbooks so
// a chart a user built in the browser can be taken into a spreadsheet.
package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/zuzivian/sgraphs/domain/chart"
	"github.com/zuzivian/sgraphs/internal/errors"
)

const summarySheet = "Summary"

// sheet names are capped at 31 characters by the xlsx format.
const maxSheetName = 31

// ChartWorkbook renders a chart configuration as an .xlsx workbook: one
// sheet per series holding the X/Y columns in plot order, plus a summary
// sheet with the selection and axis bounds.
func ChartWorkbook(config *chart.Config) ([]byte, error) {
	if config == nil || len(config.Dataset) == 0 {
		return nil, errors.InvalidInput("no dataset to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeSummary(f, config); err != nil {
		return nil, errors.Wrap(err, "failed to write summary sheet")
	}

	for _, series := range sortedSeries(config.Dataset) {
		if err := writeSeries(f, config, series); err != nil {
			return nil, errors.Wrapf(err, "failed to write series %q", series)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode workbook")
	}
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, config *chart.Config) error {
	// Reuse the default sheet as the summary.
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return err
	}

	chartType := "line"
	if config.UseBarChart {
		chartType = "bar"
	}
	series := "(none)"
	if config.SeriesKey != nil {
		series = *config.SeriesKey
	}

	rows := [][]interface{}{
		{"X field", config.XKey},
		{"Y field", config.YKey},
		{"Series field", series},
		{"Chart type", chartType},
		{"Summed", config.SumData},
		{"X min", boundCell(config.Domain.XMin)},
		{"X max", boundCell(config.Domain.XMax)},
		{"Y min", boundCell(config.Domain.YMin)},
		{"Y max", boundCell(config.Domain.YMax)},
	}
	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func writeSeries(f *excelize.File, config *chart.Config, series string) error {
	name := sheetName(series)
	if _, err := f.NewSheet(name); err != nil {
		return err
	}

	header := []interface{}{config.XKey, config.YKey}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return err
	}

	for i, point := range config.Dataset[series] {
		row := []interface{}{point[config.XKey], point[config.YKey]}
		if err := f.SetSheetRow(name, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	return nil
}

func boundCell(b chart.Bound) interface{} {
	if b.Auto {
		return "auto"
	}
	return b.Value
}

// sheetName sanitizes a series identifier into a legal sheet name.
func sheetName(series string) string {
	replacer := strings.NewReplacer(
		"[", "(", "]", ")", ":", "-", "*", "-", "?", "-", "/", "-", "\\", "-")
	name := replacer.Replace(series)
	if name == "" {
		name = "Series"
	}
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	if name == summarySheet {
		name = name + " (data)"
		if len(name) > maxSheetName {
			name = name[:maxSheetName]
		}
	}
	return name
}

func sortedSeries(ds chart.ProcessedDataset) []string {
	names := make([]string, 0, len(ds))
	for name := range ds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
