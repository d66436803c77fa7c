package convention

import "github.com/xuri/excelize/v2"

func overwriteCell(path, cell, value string) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SetCellValue(sheetName, cell, value); err != nil {
		return err
	}
	return f.Save()
}
