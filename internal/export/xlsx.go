// Package export writes transaction history to a spreadsheet, matching the
// column layout of the web dashboard's download.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/Arnav139/bigads-console/pkg/domain"
)

// SheetName is the worksheet the transactions land on.
const SheetName = "Transactions"

var headers = []string{"Sl.No", "Player", "Transaction Hash", "Event Type", "Game", "Event ID"}

// Column widths, in characters, per header above.
var widths = []float64{6, 20, 60, 25, 30, 25}

// Transactions writes the given transactions to an .xlsx file at path.
func Transactions(path string, txs []domain.Transaction) error {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // best-effort close after save

	index, err := f.NewSheet(SheetName)
	if err != nil {
		return fmt.Errorf("export: create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("export: drop default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	for col, w := range widths {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return fmt.Errorf("export: column name: %w", err)
		}
		if err := f.SetColWidth(SheetName, name, name, w); err != nil {
			return fmt.Errorf("export: column width: %w", err)
		}
	}

	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("export: header cell: %w", err)
		}
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return fmt.Errorf("export: write header: %w", err)
		}
	}

	for i, tx := range txs {
		row := i + 2
		values := []any{
			i + 1,
			tx.User.UserID,
			tx.Hash,
			tx.Event.EventType,
			fmt.Sprintf("%s (%s)", tx.Game.Name, tx.Game.Type),
			tx.Event.EventID,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return fmt.Errorf("export: cell name: %w", err)
			}
			if err := f.SetCellValue(SheetName, cell, v); err != nil {
				return fmt.Errorf("export: write row %d: %w", row, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("export: save %s: %w", path, err)
	}
	return nil
}
