package reports

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const dateTimeFormat = "yyyy-mm-dd hh:mm:ss"

type ExcelExporter interface {
	GetCellValues() []interface{}
}

// exportExcel writes one header row followed by one row per record.
func exportExcel[T ExcelExporter](data []T, filename string, sheetName string, headings ...string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	// Add headers
	for i, h := range headings {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return err
		}
	}

	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr(dateTimeFormat)})
	if err != nil {
		return err
	}

	// Add data
	rowNo := 2
	for _, d := range data {
		for i, value := range d.GetCellValues() {
			cell, err := excelize.CoordinatesToCellName(i+1, rowNo)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, cellValue(value)); err != nil {
				return err
			}
			if t, ok := value.(time.Time); ok && !t.IsZero() {
				if err := f.SetCellStyle(sheetName, cell, cell, dateStyle); err != nil {
					return err
				}
			}
		}
		rowNo++
	}

	return f.SaveAs(filename)
}

func cellValue(value interface{}) interface{} {
	switch v := value.(type) {
	case decimal.Decimal:
		return v.InexactFloat64()
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v
	case *int64:
		if v == nil {
			return ""
		}
		return *v
	default:
		return v
	}
}

func strPtr(s string) *string {
	return &s
}
