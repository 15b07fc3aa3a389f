package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	SheetSummary  = "Summary"
	SheetDaily    = "Daily"
	SheetTopItems = "Top Items"
)

// WriteXLSX renders s as a workbook with one sheet per section.
func (s *Sales) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetDaily, SheetTopItems} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("new sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	summary := [][]any{
		{"Metric", "Value"},
		{"From", s.From.Format("2006-01-02")},
		{"To", s.To.AddDate(0, 0, -1).Format("2006-01-02")},
		{"Total Sales", s.TotalSales},
		{"Order Count", s.OrderCount},
		{"Average Order Value", s.AverageOrderValue.StringFixed(2)},
	}
	if err := writeRows(f, SheetSummary, summary, bold); err != nil {
		return err
	}

	daily := [][]any{{"Date", "Orders", "Total Sales"}}
	for _, d := range s.Daily {
		daily = append(daily, []any{d.Date, d.OrderCount, d.TotalSales})
	}
	if err := writeRows(f, SheetDaily, daily, bold); err != nil {
		return err
	}

	top := [][]any{{"Menu Item", "Category", "Quantity", "Revenue", "Share (%)"}}
	for _, t := range s.TopItems {
		top = append(top, []any{t.Name, t.Category, t.Quantity, t.Revenue, t.Share.StringFixed(2)})
	}
	if err := writeRows(f, SheetTopItems, top, bold); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// writeRows fills sheet from A1 down and bolds the first row.
func writeRows(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+1, err)
		}
	}
	if len(rows) == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, headerStyle)
}
