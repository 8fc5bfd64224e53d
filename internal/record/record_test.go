package record

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

var testSchema = &Schema{
	Name:        "Testland (OSB)",
	State:       "Testland",
	Category:    CategoryOSB,
	SubCategory: true,
	Labels:      []string{"Sport Level"},
	Amounts:     []string{"Handle", "Revenue"},
	SortBy:      []string{"Sport Level", ColSubCategory},
	Orders: map[string][]string{
		"Sport Level":  {"Professional", "College"},
		ColSubCategory: {Retail, Online, Total},
	},
}

func month(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func TestNew_FirstOfMonth(t *testing.T) {
	r := New(testSchema, time.Date(2023, 3, 17, 15, 0, 0, 0, time.UTC), "  BetMGM ")
	if !r.Date.Equal(month(2023, time.March)) {
		t.Errorf("Date = %v", r.Date)
	}
	if r.Provider != "BetMGM" || r.State != "Testland" || r.Category != CategoryOSB {
		t.Errorf("record = %+v", r)
	}
}

func TestSetAmount(t *testing.T) {
	r := New(testSchema, month(2023, 1), "A")
	r.SetAmount("Handle", "$(1,234.50)")
	r.SetAmount("Revenue", "n/a")

	if v, ok := r.Amount("Handle"); !ok || v != -1234.5 {
		t.Errorf("Handle = %v, %v", v, ok)
	}
	if _, ok := r.Amount("Revenue"); ok {
		t.Error("Revenue should be missing")
	}
	if got := r.Fields(); !reflect.DeepEqual(got, []string{"Handle", "Revenue"}) {
		t.Errorf("Fields() = %v", got)
	}
}

func TestNormalizeAndEmpty(t *testing.T) {
	r := New(testSchema, month(2023, 1), "A")
	r.SetValue("Handle", 0)
	r.SetValue("Revenue", 10.004)

	n := r.Normalize(testSchema)
	if _, ok := n.Amount("Handle"); ok {
		t.Error("zero Handle should become missing")
	}
	if v, _ := n.Amount("Revenue"); v != 10 {
		t.Errorf("Revenue = %v, want 10", v)
	}
	if n.Empty(testSchema) {
		t.Error("record with Revenue should not be empty")
	}
	if _, ok := r.Amount("Handle"); !ok {
		t.Error("Normalize mutated its receiver")
	}

	blank := New(testSchema, month(2023, 1), "B")
	blank.SetValue("Handle", 0)
	if !blank.Normalize(testSchema).Empty(testSchema) {
		t.Error("all-zero record should be empty")
	}
}

func TestNormalize_KeepProviders(t *testing.T) {
	s := &Schema{State: "NY", Category: CategoryOSB, Amounts: []string{"GGR"},
		KeepProviders: []string{"BetMGM", "FanDuel"}}

	a := New(s, month(2023, 1), "FanDuel").Normalize(s)
	b := New(s, month(2023, 1), "Resorts World").Normalize(s)
	if a.Provider != "FanDuel" || b.Provider != Others {
		t.Errorf("providers = %q, %q", a.Provider, b.Provider)
	}
}

func TestKey(t *testing.T) {
	cols := testSchema.Columns(nil)
	a := New(testSchema, month(2023, 1), "A")
	a.SetValue("Handle", 100)
	b := New(testSchema, month(2023, 1), "A")
	b.SetValue("Handle", 100.0)
	c := New(testSchema, month(2023, 1), "A")
	c.SetValue("Handle", 100.01)

	if a.Key(cols) != b.Key(cols) {
		t.Error("identical rows should share a key")
	}
	if a.Key(cols) == c.Key(cols) {
		t.Error("different amounts should not share a key")
	}
}

func TestColumns(t *testing.T) {
	want := []string{"Index", "State", "Category", "Sub-Category", "Date", "Provider", "Sport Level", "Handle", "Revenue"}
	if got := testSchema.Columns(nil); !reflect.DeepEqual(got, want) {
		t.Errorf("Columns() = %v, want %v", got, want)
	}

	dynamic := &Schema{State: "Iowa", Category: CategoryOSB, SubProvider: true}
	r1 := New(dynamic, month(2023, 1), "A")
	r1.SetValue("Net Receipts", 1)
	r2 := New(dynamic, month(2023, 1), "B")
	r2.SetValue("Handle", 2)
	r2.SetValue("Net Receipts", 3)
	want = []string{"Index", "State", "Category", "Date", "Provider", "Sub-Provider", "Net Receipts", "Handle"}
	if got := dynamic.Columns([]Record{r1, r2}); !reflect.DeepEqual(got, want) {
		t.Errorf("dynamic Columns() = %v, want %v", got, want)
	}
}

func TestSort(t *testing.T) {
	mk := func(m time.Month, provider, level, sub string) Record {
		r := New(testSchema, month(2023, m), provider)
		r.SubCategory = sub
		r.SetLabel("Sport Level", level)
		return r
	}
	records := []Record{
		mk(2, "A", "College", Online),
		mk(1, "B", "Professional", Total),
		mk(1, "A", "College", Total),
		mk(1, "A", "Professional", Online),
		mk(1, "A", "Professional", Retail),
		mk(1, "A", "Professional", "Adjustments"),
	}
	Sort(records, testSchema)

	type key struct {
		m       time.Month
		p, l, s string
	}
	var got []key
	for _, r := range records {
		got = append(got, key{r.Date.Month(), r.Provider, r.Labels["Sport Level"], r.SubCategory})
	}
	want := []key{
		{1, "A", "Professional", Retail},
		{1, "A", "Professional", Online},
		{1, "A", "Professional", "Adjustments"},
		{1, "A", "College", Total},
		{1, "B", "Professional", Total},
		{2, "A", "College", Online},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Sort() = %v\nwant %v", got, want)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2023-01-15", time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"01/31/2023", time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC)},
		{"January 2023", month(2023, 1)},
		{"JANUARY 2023", month(2023, 1)},
		{"Mar 2022", month(2022, 3)},
		{"September-2021", month(2021, 9)},
		{"2021-09", month(2021, 9)},
		{"44927", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if err != nil {
				t.Fatalf("ParseDate(%q) error = %v", tt.in, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	_, err := ParseDate("Fiscal Year Total")
	var invalid *InvalidExtraction
	if !errors.As(err, &invalid) {
		t.Fatalf("ParseDate(bad) error = %v, want InvalidExtraction", err)
	}
	if invalid.Text != "Fiscal Year Total" {
		t.Errorf("Text = %q", invalid.Text)
	}
}

func TestParseMonth(t *testing.T) {
	got, err := ParseMonth("Jul 2021", "Jan 2006")
	if err != nil || !got.Equal(month(2021, 7)) {
		t.Errorf("ParseMonth() = %v, %v", got, err)
	}
	if _, err := ParseMonth("2021 Jul", "Jan 2006"); err == nil {
		t.Error("expected error")
	}
}

func TestMonths(t *testing.T) {
	got := Months(time.Date(2022, 11, 20, 0, 0, 0, 0, time.UTC), month(2023, 2))
	want := []time.Time{month(2022, 11), month(2022, 12), month(2023, 1), month(2023, 2)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Months() = %v", got)
	}
	if got := Months(month(2023, 3), month(2023, 1)); len(got) != 0 {
		t.Errorf("reversed range = %v", got)
	}
}
