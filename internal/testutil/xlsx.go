package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet of a fixture workbook
type Sheet struct {
	Name string
	Rows [][]interface{}
}

// WorkbookBytes builds an xlsx file in memory
func WorkbookBytes(t testing.TB, sheets ...Sheet) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close() // nolint:errcheck

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.Name); err != nil {
				t.Fatalf("renaming sheet: %v", err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			t.Fatalf("adding sheet: %v", err)
		}
		for r, row := range s.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				t.Fatal(err)
			}
			row := row
			if err := f.SetSheetRow(s.Name, cell, &row); err != nil {
				t.Fatalf("writing row: %v", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("serializing workbook: %v", err)
	}
	return buf.Bytes()
}

// WriteWorkbook writes a fixture workbook into dir and returns its path
func WriteWorkbook(t testing.TB, dir, name string, sheets ...Sheet) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, WorkbookBytes(t, sheets...), 0644); err != nil {
		t.Fatalf("writing workbook fixture: %v", err)
	}
	return path
}

// Row is shorthand for a fixture row
func Row(cells ...interface{}) []interface{} {
	return cells
}
