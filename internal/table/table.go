// Package table provides a small labeled 2-D string table and the reshaping
// helpers the jurisdiction extractors use on spreadsheet, CSV and PDF grids.
//
// Cells are kept as text; an empty string is a missing cell. Row labels live in
// Index and column labels in Columns so that Transpose can swap them.
package table

import (
	"fmt"
	"strconv"
	"strings"
)

// Table is a rectangular grid of string cells with row and column labels
type Table struct {
	Columns []string
	Index   []string
	Rows    [][]string
}

// Range is a half-open row or column range [Start, End)
type Range struct {
	Start int
	End   int
}

// New builds a table from rows, padding short rows to the column count.
// The index is the row position.
func New(columns []string, rows [][]string) *Table {
	t := &Table{
		Columns: append([]string(nil), columns...),
		Index:   positions(len(rows)),
		Rows:    make([][]string, len(rows)),
	}
	for i, row := range rows {
		t.Rows[i] = pad(row, len(columns))
	}
	return t
}

// FromRecords builds a table from raw records such as CSV lines or spreadsheet
// rows. Records before header are discarded and the header record becomes the
// column labels; blank labels are named "Unnamed: <position>". A negative header
// labels columns by position and keeps every record.
func FromRecords(records [][]string, header int) *Table {
	width := 0
	for _, r := range records {
		if len(r) > width {
			width = len(r)
		}
	}

	if header < 0 {
		return New(positions(width), records)
	}
	if header >= len(records) {
		return New(positions(width), nil)
	}

	head := pad(records[header], width)
	columns := make([]string, width)
	for i, label := range head {
		label = strings.TrimSpace(label)
		if label == "" {
			label = fmt.Sprintf("Unnamed: %d", i)
		}
		columns[i] = label
	}
	return New(columns, records[header+1:])
}

func positions(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = strconv.Itoa(i)
	}
	return out
}

func pad(row []string, width int) []string {
	out := make([]string, width)
	for i := 0; i < width && i < len(row); i++ {
		out[i] = strings.TrimSpace(row[i])
	}
	return out
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// Width returns the number of columns
func (t *Table) Width() int {
	return len(t.Columns)
}

// Cell returns the cell at row r and column c, or "" when out of range
func (t *Table) Cell(r, c int) string {
	if r < 0 || r >= len(t.Rows) || c < 0 || c >= len(t.Rows[r]) {
		return ""
	}
	return t.Rows[r][c]
}

// ColumnIndex returns the position of the first column labeled name, or -1
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Get returns the cell in row r of the named column
func (t *Table) Get(r int, name string) string {
	return t.Cell(r, t.ColumnIndex(name))
}

// Column returns a copy of the named column's cells, or nil when absent
func (t *Table) Column(name string) []string {
	c := t.ColumnIndex(name)
	if c < 0 {
		return nil
	}
	return t.ColumnAt(c)
}

// ColumnAt returns a copy of the cells at column position c
func (t *Table) ColumnAt(c int) []string {
	out := make([]string, len(t.Rows))
	for r := range t.Rows {
		out[r] = t.Cell(r, c)
	}
	return out
}

// Row returns a copy of row r
func (t *Table) Row(r int) []string {
	return append([]string(nil), t.Rows[r]...)
}

// Clone returns a deep copy
func (t *Table) Clone() *Table {
	out := &Table{
		Columns: append([]string(nil), t.Columns...),
		Index:   append([]string(nil), t.Index...),
		Rows:    make([][]string, len(t.Rows)),
	}
	for i, row := range t.Rows {
		out.Rows[i] = append([]string(nil), row...)
	}
	return out
}

// ResetIndex relabels rows by position
func (t *Table) ResetIndex() *Table {
	out := t.Clone()
	out.Index = positions(len(out.Rows))
	return out
}

// PromoteHeader replaces the column labels with the first row's values and
// drops that row. The index is reset.
func (t *Table) PromoteHeader() *Table {
	if len(t.Rows) == 0 {
		return t.Clone()
	}
	out := &Table{
		Columns: append([]string(nil), t.Rows[0]...),
		Rows:    make([][]string, 0, len(t.Rows)-1),
	}
	for _, row := range t.Rows[1:] {
		out.Rows = append(out.Rows, append([]string(nil), row...))
	}
	out.Index = positions(len(out.Rows))
	return out
}

// Transpose swaps rows and columns along with their labels
func (t *Table) Transpose() *Table {
	out := &Table{
		Columns: append([]string(nil), t.Index...),
		Index:   append([]string(nil), t.Columns...),
		Rows:    make([][]string, len(t.Columns)),
	}
	for c := range t.Columns {
		row := make([]string, len(t.Rows))
		for r := range t.Rows {
			row[r] = t.Cell(r, c)
		}
		out.Rows[c] = row
	}
	return out
}

// SliceRows returns rows [start, end), clamped to the table. The index is kept.
func (t *Table) SliceRows(start, end int) *Table {
	start, end = clamp(start, end, len(t.Rows))
	out := &Table{
		Columns: append([]string(nil), t.Columns...),
		Index:   append([]string(nil), t.Index[start:end]...),
		Rows:    make([][]string, 0, end-start),
	}
	for _, row := range t.Rows[start:end] {
		out.Rows = append(out.Rows, append([]string(nil), row...))
	}
	return out
}

// SliceColumns returns columns [start, end), clamped to the table
func (t *Table) SliceColumns(start, end int) *Table {
	start, end = clamp(start, end, len(t.Columns))
	keep := make([]int, 0, end-start)
	for c := start; c < end; c++ {
		keep = append(keep, c)
	}
	return t.selectPositions(keep)
}

// Select returns the named columns in the given order. Unknown names are skipped.
func (t *Table) Select(names ...string) *Table {
	keep := make([]int, 0, len(names))
	for _, n := range names {
		if c := t.ColumnIndex(n); c >= 0 {
			keep = append(keep, c)
		}
	}
	return t.selectPositions(keep)
}

// SelectAt returns the columns at the given positions
func (t *Table) SelectAt(cols ...int) *Table {
	keep := make([]int, 0, len(cols))
	for _, c := range cols {
		if c >= 0 && c < len(t.Columns) {
			keep = append(keep, c)
		}
	}
	return t.selectPositions(keep)
}

func (t *Table) selectPositions(keep []int) *Table {
	out := &Table{
		Columns: make([]string, len(keep)),
		Index:   append([]string(nil), t.Index...),
		Rows:    make([][]string, len(t.Rows)),
	}
	for i, c := range keep {
		out.Columns[i] = t.Columns[c]
	}
	for r := range t.Rows {
		row := make([]string, len(keep))
		for i, c := range keep {
			row[i] = t.Cell(r, c)
		}
		out.Rows[r] = row
	}
	return out
}

// Rename relabels columns found in mapping
func (t *Table) Rename(mapping map[string]string) *Table {
	out := t.Clone()
	for i, c := range out.Columns {
		if n, ok := mapping[c]; ok {
			out.Columns[i] = n
		}
	}
	return out
}

// Filter keeps rows for which keep returns true
func (t *Table) Filter(keep func(row []string) bool) *Table {
	out := &Table{Columns: append([]string(nil), t.Columns...)}
	for r, row := range t.Rows {
		if keep(row) {
			out.Rows = append(out.Rows, append([]string(nil), row...))
			out.Index = append(out.Index, t.Index[r])
		}
	}
	return out
}

// DropEmptyRows removes rows whose cells are all empty
func (t *Table) DropEmptyRows() *Table {
	return t.DropSparseRows(1)
}

// DropSparseRows keeps rows with at least thresh non-empty cells
func (t *Table) DropSparseRows(thresh int) *Table {
	return t.Filter(func(row []string) bool {
		return filled(row) >= thresh
	})
}

// DropEmptyColumns removes columns whose cells are all empty
func (t *Table) DropEmptyColumns() *Table {
	return t.DropSparseColumns(1)
}

// DropSparseColumns keeps columns with at least thresh non-empty cells
func (t *Table) DropSparseColumns(thresh int) *Table {
	keep := make([]int, 0, len(t.Columns))
	for c := range t.Columns {
		if filled(t.ColumnAt(c)) >= thresh {
			keep = append(keep, c)
		}
	}
	return t.selectPositions(keep)
}

func filled(cells []string) int {
	n := 0
	for _, v := range cells {
		if strings.TrimSpace(v) != "" {
			n++
		}
	}
	return n
}

// FindRow returns the first row position whose cell in column c satisfies match, or -1
func (t *Table) FindRow(c int, match func(string) bool) int {
	for r := range t.Rows {
		if match(t.Cell(r, c)) {
			return r
		}
	}
	return -1
}

// SliceByMarker returns row ranges split at rows whose first cell satisfies
// marker. Each range ends with (and includes) a matching row and starts right
// after the previous one, so the ranges cover rows 0 through the last match
// without gaps. Rows after the last match belong to no range.
func (t *Table) SliceByMarker(marker func(string) bool) []Range {
	var ranges []Range
	last := 0
	for r := range t.Rows {
		if marker(t.Cell(r, 0)) {
			ranges = append(ranges, Range{Start: last, End: r + 1})
			last = r + 1
		}
	}
	return ranges
}

// SplitByRows materializes one sub-table per row range
func (t *Table) SplitByRows(ranges []Range) []*Table {
	out := make([]*Table, 0, len(ranges))
	for _, rg := range ranges {
		out = append(out, t.SliceRows(rg.Start, rg.End))
	}
	return out
}

// SplitByColumns materializes one sub-table per column range, dropping columns
// and then rows that are entirely empty within each slice
func (t *Table) SplitByColumns(ranges []Range) []*Table {
	out := make([]*Table, 0, len(ranges))
	for _, rg := range ranges {
		out = append(out, t.SliceColumns(rg.Start, rg.End).DropEmptyColumns().DropEmptyRows())
	}
	return out
}

// RepeatRows duplicates every row satisfying match directly after itself and
// resets the index
func (t *Table) RepeatRows(match func(row []string) bool) *Table {
	out := &Table{Columns: append([]string(nil), t.Columns...)}
	for _, row := range t.Rows {
		out.Rows = append(out.Rows, append([]string(nil), row...))
		if match(row) {
			out.Rows = append(out.Rows, append([]string(nil), row...))
		}
	}
	out.Index = positions(len(out.Rows))
	return out
}

// Map applies fn to every cell of the named column
func (t *Table) Map(name string, fn func(string) string) *Table {
	out := t.Clone()
	c := out.ColumnIndex(name)
	if c < 0 {
		return out
	}
	for r := range out.Rows {
		out.Rows[r][c] = fn(out.Rows[r][c])
	}
	return out
}

// FillDown replaces each empty cell with the nearest filled cell above it in
// the same column
func (t *Table) FillDown() *Table {
	out := t.Clone()
	for c := range out.Columns {
		last := ""
		for r := range out.Rows {
			if strings.TrimSpace(out.Rows[r][c]) == "" {
				out.Rows[r][c] = last
				continue
			}
			last = out.Rows[r][c]
		}
	}
	return out
}

// Records returns the header followed by the rows, suitable for rendering
func (t *Table) Records() [][]string {
	out := make([][]string, 0, len(t.Rows)+1)
	out = append(out, append([]string(nil), t.Columns...))
	for _, row := range t.Rows {
		out = append(out, append([]string(nil), row...))
	}
	return out
}

func clamp(start, end, n int) (int, int) {
	if start < 0 {
		start = 0
	}
	if start > n {
		start = n
	}
	if end > n {
		end = n
	}
	if end < start {
		end = start
	}
	return start, end
}
