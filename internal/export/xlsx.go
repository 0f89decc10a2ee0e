// Package export writes dashboard results as an Excel workbook.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"bikeshare-dashboard/internal/models"
)

const (
	SheetWeekdays = "Weekdays"
	SheetWeather  = "Weather"
	SheetTrend    = "Trend"
)

var (
	weekdayHeaders = []string{"Weekday", "Average rentals", "Days", "Rank", "Color"}
	weatherHeaders = []string{"Weather", "Code", "Days", "Min", "Q1", "Median", "Q3", "Max", "Mean"}
	trendHeaders   = []string{"Date", "Rentals"}
)

// WriteWorkbook writes one sheet per dashboard chart to w
func WriteWorkbook(w io.Writer, dash *models.Dashboard) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetWeekdays); err != nil {
		return err
	}
	for _, name := range []string{SheetWeather, SheetTrend} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	if err := writeWeekdays(f, dash.Weekdays); err != nil {
		return fmt.Errorf("failed to write %s sheet: %w", SheetWeekdays, err)
	}
	if err := writeWeather(f, dash.Weather); err != nil {
		return fmt.Errorf("failed to write %s sheet: %w", SheetWeather, err)
	}
	if err := writeTrend(f, dash.Trend); err != nil {
		return fmt.Errorf("failed to write %s sheet: %w", SheetTrend, err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeHeaders(f *excelize.File, sheet string, headers []string, width float64) error {
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}
	last, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", last, width)
}

func setRow(f *excelize.File, sheet string, row int, values ...any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func writeWeekdays(f *excelize.File, slots []models.WeekdaySlot) error {
	if err := writeHeaders(f, SheetWeekdays, weekdayHeaders, 16); err != nil {
		return err
	}

	for i, slot := range slots {
		row := i + 2

		// missing days leave the mean cell blank
		var mean any
		if slot.Mean != nil {
			mean = *slot.Mean
		}
		if err := setRow(f, SheetWeekdays, row, string(slot.Weekday), mean, slot.Days, slot.Rank, slot.Color); err != nil {
			return err
		}

		style, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{slot.Color}},
		})
		if err != nil {
			return err
		}
		cell := fmt.Sprintf("E%d", row)
		if err := f.SetCellStyle(SheetWeekdays, cell, cell, style); err != nil {
			return err
		}
	}
	return nil
}

func writeWeather(f *excelize.File, summaries []models.WeatherSummary) error {
	if err := writeHeaders(f, SheetWeather, weatherHeaders, 12); err != nil {
		return err
	}

	for i, s := range summaries {
		err := setRow(f, SheetWeather, i+2,
			string(s.Weather), s.Code, s.Days, s.Min, s.Q1, s.Median, s.Q3, s.Max, s.Mean)
		if err != nil {
			return err
		}
	}
	return nil
}

func writeTrend(f *excelize.File, points []models.TrendPoint) error {
	if err := writeHeaders(f, SheetTrend, trendHeaders, 14); err != nil {
		return err
	}

	for i, p := range points {
		if err := setRow(f, SheetTrend, i+2, p.Date.Format("2006-01-02"), p.Count); err != nil {
			return err
		}
	}
	return nil
}
