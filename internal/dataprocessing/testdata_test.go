package dataprocessing

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var rawHeader = []string{
	"CUSTOMER_CODE", "CUSTOMER_NAME", "QUANTITY_ORDERED", "MSRP",
	"Estimated Cost Price (50%)", "Selling price", "SALES", "Profit per unit",
	"Total profit / loss", "Status", "ORDER_DATE", "MONTH", "YEAR", "PRODUCT",
	"PRODUCT_CODE", "CITY", "COUNTRY", "DEALSIZE",
}

func rawRow(customer, date, country, status string, qty int, sales, profit float64) []string {
	return []string{
		customer, "Name " + customer, fmt.Sprint(qty), "100", "50", "90",
		fmt.Sprint(sales), "40", fmt.Sprint(profit), status, date, "Jan", "2023",
		"Classic Cars", "S10_1678", "Paris", country, "Small",
	}
}

// writeWorkbook saves header and rows to a new .xlsx file in a temp dir.
func writeWorkbook(t *testing.T, sheet string, header []string, rows [][]string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
		require.NoError(t, f.DeleteSheet("Sheet1"))
	}

	write := func(rowIdx int, values []string) {
		cells := make([]interface{}, len(values))
		for i, v := range values {
			cells[i] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, rowIdx)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &cells))
	}

	write(1, header)
	for i, row := range rows {
		write(i+2, row)
	}

	path := filepath.Join(t.TempDir(), "Sales_dataset.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}
