package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	devenv "mariinsky-counter/dev/env"
	"mariinsky-counter/internal/archive"
	"mariinsky-counter/internal/report"
	configlibsql "mariinsky-counter/lib/configutil/libsql"

	"github.com/xuri/excelize/v2"
)

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func CreateArchiveDB() error {
	path, err := devenv.ResolvePath("<dev_state>/archive.db")
	if err != nil {
		return err
	}
	if exists(path) {
		fmt.Println("database already created at", path)
		return nil
	}

	fmt.Println("creating database at", path)
	db, err := configlibsql.Struct{File: path}.OpenDB()
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = archive.Open(context.Background(), db)
	return err
}

// CreateWorkbookTemplate writes a bare template with the default layout so
// exports work before the real template is copied in.
func CreateWorkbookTemplate() error {
	path, err := devenv.ResolvePath("<dev_state>/template.xlsx")
	if err != nil {
		return err
	}
	if exists(path) {
		fmt.Println("workbook template already created at", path)
		return nil
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	layout := report.DefaultLayout

	header := []any{"Name", "Perf. feat", "Perf. secure", "Reh. feat", "Reh. secure", "Total"}
	cell, err := excelize.CoordinatesToCellName(1, layout.FirstRow-1)
	if err != nil {
		return err
	}
	err = f.SetSheetRow(sheet, cell, &header)
	if err != nil {
		return err
	}
	for row := layout.FirstRow; row <= layout.LastRow; row++ {
		cell, err := excelize.CoordinatesToCellName(layout.ClearColumn, row)
		if err != nil {
			return err
		}
		err = f.SetCellFormula(sheet, cell, fmt.Sprintf("SUM(B%d:E%d)", row, row))
		if err != nil {
			return err
		}
	}

	fmt.Println("creating workbook template at", path)
	return f.SaveAs(path)
}

func CreatePortalConfig() error {
	path, err := devenv.GetStateFilePath("portal_config.example.json")
	if err != nil {
		return err
	}
	contents, err := json.MarshalIndent(devenv.PortalTestConfig{
		BaseUrl:  "https://portal.example",
		Username: "username",
		Password: "password",
		Category: "ballet",
		Event:    "12345",
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, contents, 0644)
}

func PrintConfigLocations() {
	slog.Info("the portal tests are skipped until dev/.state/portal_config.json exists, copy portal_config.example.json there and fill in real credentials.")
}
