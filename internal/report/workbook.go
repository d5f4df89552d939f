package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// Layout describes where the report lives in the template sheet. Rows and
// columns are 1-based.
type Layout struct {
	PeriodCell string `json:"period_cell"`
	FirstRow   int    `json:"first_row"`
	// LastRow is the last row of the template's preformatted area.
	LastRow int `json:"last_row"`
	// ClearColumn is emptied on every unused row of the preformatted area.
	ClearColumn int `json:"clear_column"`
}

var DefaultLayout = Layout{
	PeriodCell:  "A1",
	FirstRow:    11,
	LastRow:     66,
	ClearColumn: 6,
}

// WriteWorkbook fills a copy of the template with the rows and saves it to
// outPath. The template is left untouched.
func WriteWorkbook(templatePath, outPath, period string, rows []Row, layout Layout) error {
	f, err := excelize.OpenFile(templatePath)
	if err != nil {
		return fmt.Errorf("open template: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	err = f.SetCellValue(sheet, layout.PeriodCell, period)
	if err != nil {
		return err
	}

	for i, r := range rows {
		values := []any{r.Name}
		for _, c := range r.Counts {
			values = append(values, c)
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, layout.FirstRow+i)
			if err != nil {
				return err
			}
			err = f.SetCellValue(sheet, cell, v)
			if err != nil {
				return err
			}
		}
	}

	for row := layout.FirstRow + len(rows); row <= layout.LastRow; row++ {
		nameCell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		name, err := f.GetCellValue(sheet, nameCell)
		if err != nil {
			return err
		}
		if name != "" {
			continue
		}
		clearCell, err := excelize.CoordinatesToCellName(layout.ClearColumn, row)
		if err != nil {
			return err
		}
		err = f.SetCellValue(sheet, clearCell, nil)
		if err != nil {
			return err
		}
	}

	err = os.MkdirAll(filepath.Dir(outPath), 0777)
	if err != nil {
		return err
	}
	return f.SaveAs(outPath)
}
