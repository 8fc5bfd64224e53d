package table

import (
	"reflect"
	"strings"
	"testing"
)

func sample() *Table {
	return FromRecords([][]string{
		{"Report title", "", ""},
		{"Casino", "", "Handle"},
		{"Alpha", "Retail", "$1,000"},
		{"Alpha", "Online", "(25)"},
		{"Subtotal", "", "975"},
		{"Beta", "Retail", "10"},
		{"Subtotal", "", "10"},
		{"footnote", "", ""},
	}, 1)
}

func TestFromRecords(t *testing.T) {
	tbl := sample()

	wantCols := []string{"Casino", "Unnamed: 1", "Handle"}
	if !reflect.DeepEqual(tbl.Columns, wantCols) {
		t.Errorf("Columns = %v, want %v", tbl.Columns, wantCols)
	}
	if tbl.Len() != 6 {
		t.Errorf("Len() = %d, want 6", tbl.Len())
	}
	if got := tbl.Get(1, "Handle"); got != "(25)" {
		t.Errorf("Get(1, Handle) = %q", got)
	}
	if got := tbl.Get(1, "missing"); got != "" {
		t.Errorf("Get(missing) = %q, want empty", got)
	}
}

func TestFromRecords_Ragged(t *testing.T) {
	tbl := FromRecords([][]string{{"a"}, {"1", "2", "3"}}, -1)
	if tbl.Width() != 3 {
		t.Fatalf("Width() = %d, want 3", tbl.Width())
	}
	if got := tbl.Row(0); !reflect.DeepEqual(got, []string{"a", "", ""}) {
		t.Errorf("Row(0) = %v", got)
	}
}

func TestPromoteHeader(t *testing.T) {
	tbl := New([]string{"0", "1"}, [][]string{
		{"Provider", "Handle"},
		{"Alpha", "1"},
		{"Beta", "2"},
	})

	got := tbl.PromoteHeader()
	if !reflect.DeepEqual(got.Columns, []string{"Provider", "Handle"}) {
		t.Errorf("Columns = %v", got.Columns)
	}
	if got.Len() != 2 || got.Cell(0, 0) != "Alpha" {
		t.Errorf("Rows = %v", got.Rows)
	}
	if !reflect.DeepEqual(got.Index, []string{"0", "1"}) {
		t.Errorf("Index = %v", got.Index)
	}
}

func TestTranspose(t *testing.T) {
	tbl := New([]string{"Month", "Jan", "Feb"}, [][]string{
		{"Handle", "1", "2"},
		{"Revenue", "3", "4"},
	})

	got := tbl.Transpose().PromoteHeader()
	want := [][]string{{"Jan", "1", "3"}, {"Feb", "2", "4"}}
	if !reflect.DeepEqual(got.Columns, []string{"Month", "Handle", "Revenue"}) {
		t.Errorf("Columns = %v", got.Columns)
	}
	if !reflect.DeepEqual(got.Rows, want) {
		t.Errorf("Rows = %v, want %v", got.Rows, want)
	}
}

func TestSliceByMarker(t *testing.T) {
	tbl := sample()
	isSubtotal := func(s string) bool { return s == "Subtotal" }

	ranges := tbl.SliceByMarker(isSubtotal)
	want := []Range{{0, 3}, {3, 5}}
	if !reflect.DeepEqual(ranges, want) {
		t.Fatalf("SliceByMarker() = %v, want %v", ranges, want)
	}

	// one range per marker, contiguous from row 0
	markers := 0
	for _, v := range tbl.ColumnAt(0) {
		if isSubtotal(v) {
			markers++
		}
	}
	if len(ranges) != markers {
		t.Errorf("got %d ranges for %d markers", len(ranges), markers)
	}
	next := 0
	for _, rg := range ranges {
		if rg.Start != next {
			t.Errorf("range %v starts at %d, want %d", rg, rg.Start, next)
		}
		if !isSubtotal(tbl.Cell(rg.End-1, 0)) {
			t.Errorf("range %v does not end at a marker", rg)
		}
		next = rg.End
	}

	if got := tbl.SliceByMarker(func(string) bool { return false }); len(got) != 0 {
		t.Errorf("no markers: got %v", got)
	}
}

func TestSplitByRows(t *testing.T) {
	tbl := sample()
	parts := tbl.SplitByRows(tbl.SliceByMarker(func(s string) bool { return s == "Subtotal" }))
	if len(parts) != 2 {
		t.Fatalf("got %d parts", len(parts))
	}
	if parts[1].Len() != 2 || parts[1].Cell(0, 0) != "Beta" {
		t.Errorf("second part = %v", parts[1].Rows)
	}
	// original positions survive the split
	if parts[1].Index[0] != "3" {
		t.Errorf("Index = %v", parts[1].Index)
	}
}

func TestSplitByColumns(t *testing.T) {
	tbl := FromRecords([][]string{
		{"A", "B", "", "C", "D"},
		{"1", "", "", "x", "y"},
		{"", "", "", "", ""},
		{"2", "", "", "z", ""},
	}, -1)

	parts := tbl.SplitByColumns([]Range{{0, 3}, {3, 5}})
	if len(parts) != 2 {
		t.Fatalf("got %d parts", len(parts))
	}
	if parts[0].Width() != 2 {
		t.Errorf("left width = %d, want 2 (empty column dropped)", parts[0].Width())
	}
	if parts[0].Len() != 3 {
		t.Errorf("left rows = %d, want 3 (empty row dropped)", parts[0].Len())
	}
	if parts[1].Len() != 3 || parts[1].Cell(2, 0) != "z" {
		t.Errorf("right = %v", parts[1].Rows)
	}
}

func TestRepeatRows(t *testing.T) {
	tbl := New([]string{"Provider"}, [][]string{{"Alpha"}, {"Beta"}, {"Gamma"}})
	got := tbl.RepeatRows(func(row []string) bool { return row[0] == "Beta" })

	want := []string{"Alpha", "Beta", "Beta", "Gamma"}
	if !reflect.DeepEqual(got.ColumnAt(0), want) {
		t.Errorf("RepeatRows() = %v, want %v", got.ColumnAt(0), want)
	}
	if !reflect.DeepEqual(got.Index, []string{"0", "1", "2", "3"}) {
		t.Errorf("Index = %v", got.Index)
	}
}

func TestFillDown(t *testing.T) {
	tbl := New([]string{"Licensee", "Rate"}, [][]string{
		{"Alpha", "20%"},
		{"", ""},
		{"Beta", " "},
		{"", "25%"},
	})
	got := tbl.FillDown()

	if want := []string{"Alpha", "Alpha", "Beta", "Beta"}; !reflect.DeepEqual(got.ColumnAt(0), want) {
		t.Errorf("FillDown() column 0 = %v, want %v", got.ColumnAt(0), want)
	}
	if want := []string{"20%", "20%", "20%", "25%"}; !reflect.DeepEqual(got.ColumnAt(1), want) {
		t.Errorf("FillDown() column 1 = %v, want %v", got.ColumnAt(1), want)
	}
	if tbl.Cell(1, 0) != "" {
		t.Errorf("FillDown() modified its receiver")
	}
}

func TestDropSparse(t *testing.T) {
	tbl := FromRecords([][]string{
		{"a", "b", "c", ""},
		{"1", "", "", ""},
		{"1", "2", "3", ""},
	}, -1)

	if got := tbl.DropSparseRows(2).Len(); got != 2 {
		t.Errorf("DropSparseRows(2) kept %d rows, want 2", got)
	}
	if got := tbl.DropEmptyColumns().Width(); got != 3 {
		t.Errorf("DropEmptyColumns() width = %d, want 3", got)
	}
	if got := tbl.DropSparseColumns(3).Width(); got != 1 {
		t.Errorf("DropSparseColumns(3) width = %d, want 1", got)
	}
}

func TestSelectRenameMap(t *testing.T) {
	tbl := New([]string{"Casino", "Month", "GGR"}, [][]string{{"a", "Jan", "1"}})
	got := tbl.Select("GGR", "Casino", "nope").
		Rename(map[string]string{"Casino": "Provider"}).
		Map("Provider", strings.ToUpper)

	if !reflect.DeepEqual(got.Columns, []string{"GGR", "Provider"}) {
		t.Errorf("Columns = %v", got.Columns)
	}
	if got.Cell(0, 1) != "A" {
		t.Errorf("Map() = %v", got.Rows)
	}
	if tbl.Cell(0, 0) != "a" {
		t.Error("Map() mutated its receiver")
	}
}

func TestSliceRowsClamped(t *testing.T) {
	tbl := sample()
	if got := tbl.SliceRows(4, 100).Len(); got != 2 {
		t.Errorf("SliceRows(4, 100).Len() = %d, want 2", got)
	}
	if got := tbl.SliceRows(100, 200).Len(); got != 0 {
		t.Errorf("SliceRows past end = %d rows", got)
	}
}
