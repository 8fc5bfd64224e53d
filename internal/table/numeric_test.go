package table

import (
	"reflect"
	"sort"
	"testing"
)

func TestToNumeric(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"$(1,234.50)", -1234.50, true},
		{"($1,234.50)", -1234.50, true},
		{"$2,000", 2000, true},
		{"  17 ", 17, true},
		{"-42.126", -42.13, true},
		{"1,234)", -1234, true},
		{"0", 0, true},
		{"", 0, false},
		{"-", 0, false},
		{"n/a", 0, false},
		{"$", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ToNumeric(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("ToNumeric(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ToNumeric(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(0.1 + 0.2); got != 0.3 {
		t.Errorf("Round2() = %v, want 0.3", got)
	}
	if got := Round2(1.005e3); got != 1005 {
		t.Errorf("Round2() = %v", got)
	}
}

func TestCategoryOrder(t *testing.T) {
	rank := CategoryOrder([]string{"Retail", "Online", "Total"})

	labels := []string{"Total", "Other", "Online", "Retail", "Adjustments", "Online"}
	sort.SliceStable(labels, func(i, j int) bool {
		return rank(labels[i]) < rank(labels[j])
	})

	want := []string{"Retail", "Online", "Online", "Total", "Other", "Adjustments"}
	if !reflect.DeepEqual(labels, want) {
		t.Errorf("sorted = %v, want %v", labels, want)
	}
}

func TestFixWhitespace(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "clean names",
			in:   []string{"Ameristar", "Casino Queen"},
			want: []string{"Ameristar", "Casino Queen"},
		},
		{
			name: "double space carries to next row",
			in:   []string{"Diamond Jo  Worth", "Casino"},
			want: []string{"Diamond Jo", "Worth Casino"},
		},
		{
			name: "empty cell takes head of next",
			in:   []string{"", "Harrah's  Council Bluffs"},
			want: []string{"Harrah's", "Council Bluffs"},
		},
		{
			name: "newline becomes space",
			in:   []string{"Wild Rose\nEmmetsburg"},
			want: []string{"Wild Rose Emmetsburg"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FixWhitespace(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FixWhitespace(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
