package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const xlsxSheetName = "Timetable"

// XLSXRenderer builds a single-sheet workbook.
type XLSXRenderer struct{}

// NewXLSXRenderer constructs an XLSX renderer.
func NewXLSXRenderer() *XLSXRenderer {
	return &XLSXRenderer{}
}

// Render writes the title in row 1, headers in row 2 and slots below.
func (r *XLSXRenderer) Render(sheet Sheet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	if err := f.SetSheetName("Sheet1", xlsxSheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	if err := f.SetCellValue(xlsxSheetName, "A1", sheet.Title); err != nil {
		return nil, fmt.Errorf("write title: %w", err)
	}
	for col, header := range slotHeaders {
		if err := setCell(f, col+1, 2, header); err != nil {
			return nil, err
		}
	}
	first, _ := excelize.CoordinatesToCellName(1, 2)
	last, _ := excelize.CoordinatesToCellName(len(slotHeaders), 2)
	if err := f.SetCellStyle(xlsxSheetName, first, last, headerStyle); err != nil {
		return nil, fmt.Errorf("apply header style: %w", err)
	}

	for i, row := range sheet.Rows {
		for col, value := range row.values() {
			if err := setCell(f, col+1, i+3, value); err != nil {
				return nil, err
			}
		}
	}
	if err := f.SetColWidth(xlsxSheetName, "A", "I", 16); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func setCell(f *excelize.File, col, row int, value string) error {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetCellValue(xlsxSheetName, name, value); err != nil {
		return fmt.Errorf("write cell %s: %w", name, err)
	}
	return nil
}
