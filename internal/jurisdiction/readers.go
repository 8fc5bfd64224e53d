package jurisdiction

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/pfrederiksen/gaming-revenue/internal/pdftext"
	"github.com/pfrederiksen/gaming-revenue/internal/record"
	"github.com/pfrederiksen/gaming-revenue/internal/table"
	"github.com/xuri/excelize/v2"
)

// monthNames is a regexp alternation of full month names
const monthNames = "January|February|March|April|May|June|July|August|September|October|November|December"

// readCSV parses a CSV export into raw records. A UTF-8 byte order mark is dropped.
func readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing csv: %w", err)
	}
	return rows, nil
}

// openWorkbook opens an xlsx file held in memory. The caller must close it.
func openWorkbook(data []byte) (*excelize.File, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	return f, nil
}

// sheetRows returns the unformatted cell values of a sheet, so numbers carry
// no separators and dates arrive as serial numbers
func sheetRows(f *excelize.File, sheet string) ([][]string, error) {
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// sheetAt returns the name of the i-th sheet; negative positions count from the end
func sheetAt(f *excelize.File, i int) (string, error) {
	sheets := f.GetSheetList()
	if i < 0 {
		i += len(sheets)
	}
	if i < 0 || i >= len(sheets) {
		return "", record.Invalid(strings.Join(sheets, ", "), fmt.Sprintf("a sheet at position %d", i))
	}
	return sheets[i], nil
}

// downloadPages fetches a PDF into a scratch file and extracts every page
func downloadPages(ctx context.Context, env *Env, url string) ([]*pdftext.Page, error) {
	doc, err := env.Fetch.Download(ctx, url, "report.pdf")
	if err != nil {
		return nil, err
	}
	defer doc.Close() // nolint:errcheck

	return pdftext.ReadPages(doc.Path)
}

// requireColumns checks that a table has every named column
func requireColumns(t *table.Table, names ...string) error {
	for _, n := range names {
		if t.ColumnIndex(n) < 0 {
			return record.Invalid(strings.Join(t.Columns, ", "), fmt.Sprintf("a %q column", n))
		}
	}
	return nil
}

// splitLine divides a printed report line into the provider name and its
// figures. The name is every token before the first dash, dollar amount or
// number. A lone dash is a zero figure; other non-numeric tokens are skipped.
func splitLine(line string) (string, []float64) {
	tokens := strings.Fields(line)

	var name []string
	i := 0
	for ; i < len(tokens); i++ {
		tok := tokens[i]
		if tok == "-" || strings.HasPrefix(tok, "$") || isNumber(tok) {
			break
		}
		name = append(name, tok)
	}

	var values []float64
	for _, tok := range tokens[i:] {
		tok = strings.Trim(tok, "$")
		if tok != "" && strings.Trim(tok, "-") == "" {
			values = append(values, 0)
			continue
		}
		if v, ok := table.ToNumeric(tok); ok {
			values = append(values, v)
		}
	}
	return strings.Join(name, " "), values
}

func isNumber(tok string) bool {
	_, err := strconv.ParseFloat(strings.ReplaceAll(tok, ",", ""), 64)
	return err == nil
}
