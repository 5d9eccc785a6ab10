package pipeline

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"registrar/internal"
)

// ExportExpiringToXLSX writes the expiring-documents report to a workbook.
func ExportExpiringToXLSX(rows []internal.ExpiringDocument, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{"sheet_name", "company_name_th", "doc_name", "expiry_date", "status"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, row.SheetName)
		set(2, row.CompanyName)
		set(3, row.DocumentName)
		set(4, row.ExpiryDate)
		set(5, string(row.Status))
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}
