package reports

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// WriteRevenueWorkbook renders the revenue report as an xlsx workbook.
func WriteRevenueWorkbook(w io.Writer, rows []RevenueRow) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Revenue"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	headers := []string{"Date", "Transactions", "Gross", "Discount", "Net"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}

	var totalGross, totalDiscount, totalNet float64
	var totalTx int
	for i, row := range rows {
		values := []any{
			row.Date.Format("2006-01-02"),
			row.Transactions,
			row.Gross,
			row.Discount,
			row.Net,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
		totalTx += row.Transactions
		totalGross += row.Gross
		totalDiscount += row.Discount
		totalNet += row.Net
	}

	totalRow := len(rows) + 2
	totals := []any{"Total", totalTx, totalGross, totalDiscount, totalNet}
	for col, value := range totals {
		cell, err := excelize.CoordinatesToCellName(col+1, totalRow)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
