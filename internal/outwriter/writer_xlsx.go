package outwriter

import (
	"errors"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"
)

// errBinaryToStdout is returned when a binary format has no output file.
var errBinaryToStdout = errors.New("xlsx and parquet output require --output-file")

// writeXLSX writes a single-sheet workbook with a styled, frozen, filterable header.
func writeXLSX(path, sheetName string, header []string, rows [][]any) error {
	if path == "" {
		return errBinaryToStdout
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if sheetName != "Sheet1" {
		_ = f.DeleteSheet("Sheet1")
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"1E88E5"}},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, col := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, col)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)

		colName, _ := excelize.ColumnNumberToName(i + 1)
		width := float64(len(col) + 5)
		if width < 12 {
			width = 12
		}
		if i == 0 {
			width = 45 // URLs
		}
		_ = f.SetColWidth(sheetName, colName, colName, width)
	}

	for rowIdx, row := range rows {
		for i, val := range row {
			cell, _ := excelize.CoordinatesToCellName(i+1, rowIdx+2)
			if val == nil {
				continue
			}
			_ = f.SetCellValue(sheetName, cell, val)
		}
	}

	if len(header) > 0 {
		lastCol, _ := excelize.ColumnNumberToName(len(header))
		_ = f.AutoFilter(sheetName, fmt.Sprintf("A1:%s%d", lastCol, len(rows)+1), nil)
	}

	// Freeze header row
	_ = f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		Split:       false,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	fmt.Fprintf(os.Stderr, "💾 Wrote %d rows to %s\n", len(rows), path)
	return nil
}

// cellInt returns an optional integer as a cell value, nil when absent.
func cellInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

// cellFloat returns an optional float as a cell value, nil when absent.
func cellFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
