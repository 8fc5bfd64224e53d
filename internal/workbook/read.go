package workbook

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pfrederiksen/gaming-revenue/internal/record"
	"github.com/pfrederiksen/gaming-revenue/internal/table"
	"github.com/xuri/excelize/v2"
)

// Load reads a workbook written by Save (or by an earlier tool with the same
// header names) back into records. When schema is nil one is inferred from
// the header and cell contents; the schema used is returned either way.
func Load(path string, schema *record.Schema) ([]record.Record, *record.Schema, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close() // nolint:errcheck

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("workbook %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, fmt.Errorf("reading rows: %w", err)
	}
	if len(rows) == 0 {
		if schema == nil {
			schema = &record.Schema{Name: stem(path)}
		}
		return nil, schema, nil
	}

	tbl := table.FromRecords(rows, 0)
	if schema == nil {
		schema = infer(tbl, stem(path))
	}

	labels := make(map[string]bool, len(schema.Labels))
	for _, l := range schema.Labels {
		labels[l] = true
	}
	fixedAmounts := make(map[string]bool, len(schema.Amounts))
	for _, a := range schema.Amounts {
		fixedAmounts[a] = true
	}

	records := make([]record.Record, 0, tbl.Len())
	for i := 0; i < tbl.Len(); i++ {
		r := record.Record{}
		for c, col := range tbl.Columns {
			v := tbl.Cell(i, c)
			switch {
			case col == record.ColIndex:
			case col == record.ColState:
				r.State = v
			case col == record.ColCategory:
				r.Category = v
			case col == record.ColSubCategory:
				r.SubCategory = v
			case col == record.ColDate:
				if v == "" {
					continue
				}
				d, err := record.ParseDate(v)
				if err != nil {
					return nil, nil, fmt.Errorf("row %d: %w", i+2, err)
				}
				r.Date = record.FirstOfMonth(d)
			case col == record.ColProvider:
				r.Provider = v
			case col == record.ColSubProvider:
				r.SubProvider = v
			case labels[col]:
				r.SetLabel(col, v)
			case schema.Amounts == nil || fixedAmounts[col]:
				r.SetAmount(col, v)
			}
		}
		records = append(records, r)
	}
	return records, schema, nil
}

func stem(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// infer builds a schema from a header: known columns map to record fields,
// columns holding any non-numeric text become labels and the rest amounts
func infer(tbl *table.Table, name string) *record.Schema {
	s := &record.Schema{Name: name, Amounts: []string{}}
	for c, col := range tbl.Columns {
		switch col {
		case record.ColIndex, record.ColDate, record.ColProvider:
		case record.ColState:
			if tbl.Len() > 0 {
				s.State = tbl.Cell(0, c)
			}
		case record.ColCategory:
			if tbl.Len() > 0 {
				s.Category = tbl.Cell(0, c)
			}
		case record.ColSubCategory:
			s.SubCategory = true
			s.SortBy = append(s.SortBy, col)
		case record.ColSubProvider:
			s.SubProvider = true
		default:
			if numeric(tbl.ColumnAt(c)) {
				s.Amounts = append(s.Amounts, col)
			} else {
				s.Labels = append(s.Labels, col)
				s.SortBy = append(s.SortBy, col)
			}
		}
	}
	return s
}

func numeric(cells []string) bool {
	for _, v := range cells {
		if v == "" {
			continue
		}
		if _, ok := table.ToNumeric(v); !ok {
			return false
		}
	}
	return true
}
