package table

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// ReadXLSX loads the first sheet of a workbook. The first row is the header
// and empty cells are loaded as missing values. Numeric cells load as
// json.Number and boolean cells as bool, so only text cells are translated.
func ReadXLSX(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return New(), nil
	}
	sheet := sheets[0]

	// raw values keep numbers free of display formatting
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return New(), nil
	}

	t := New(rows[0]...)
	for r, cells := range rows[1:] {
		row := make(Row, len(t.Columns))
		for i, col := range t.Columns {
			// GetRows drops trailing empty cells
			if i >= len(cells) || cells[i] == "" {
				row[col] = nil
				continue
			}

			name, err := excelize.CoordinatesToCellName(i+1, r+2)
			if err != nil {
				return nil, err
			}
			typ, err := f.GetCellType(sheet, name)
			if err != nil {
				return nil, fmt.Errorf("failed to read cell %s: %w", name, err)
			}
			row[col] = cellValue(typ, cells[i])
		}
		t.Append(row)
	}

	return t, nil
}

// cellValue types a raw cell value. Cells without an explicit type are
// numbers in SpreadsheetML.
func cellValue(typ excelize.CellType, raw string) Value {
	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if n, ok := Number(raw); ok {
			return n
		}
	case excelize.CellTypeBool:
		if b, err := strconv.ParseBool(raw); err == nil {
			return b
		}
	}
	return raw
}

// WriteXLSX saves a table into a single sheet workbook
func WriteXLSX(path string, t *Table) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(t.Columns))
	for i, col := range t.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(defaultSheet, "A1", &header); err != nil {
		return err
	}

	for r, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}

		values := make([]interface{}, len(t.Columns))
		for i, col := range t.Columns {
			v := row[col]
			if IsMissing(v) {
				continue
			}
			// numbers from text formats are stored as numeric cells
			if n, ok := v.(json.Number); ok {
				if fv, err := n.Float64(); err == nil {
					v = fv
				}
			}
			values[i] = v
		}
		if err := f.SetSheetRow(defaultSheet, cell, &values); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}
