package convention

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Convention"

// ImportXLSX reads a table from the first sheet of a spreadsheet. The header
// row must contain every convention column; extra columns are ignored and
// blank rows skipped.
func ImportXLSX(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read spreadsheet rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("spreadsheet %s is empty", path)
	}

	index := map[string]int{}
	for i, cell := range rows[0] {
		index[strings.TrimSpace(cell)] = i
	}
	var missing []string
	for _, col := range Columns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("spreadsheet missing columns: %s", strings.Join(missing, ", "))
	}

	table := &Table{}
	for r, row := range rows[1:] {
		var e Entry
		blank := true
		for _, col := range Columns {
			i := index[col]
			if i < len(row) {
				value := strings.TrimSpace(row[i])
				if value != "" {
					blank = false
				}
				e.Set(col, value)
			}
		}
		if blank {
			continue
		}
		if err := table.Add(e); err != nil {
			return nil, fmt.Errorf("spreadsheet row %d: %w", r+2, err)
		}
	}
	return table, nil
}

// ExportXLSX writes the table to a new spreadsheet with a header row.
func ExportXLSX(path string, t *Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	header := make([]any, len(Columns))
	for i, col := range Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, e := range t.Entries() {
		values := e.Values()
		row := make([]any, len(values))
		for j, v := range values {
			row[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save spreadsheet: %w", err)
	}
	return nil
}
