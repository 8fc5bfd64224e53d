package record

import (
	"sort"

	"github.com/pfrederiksen/gaming-revenue/internal/table"
)

// Schema describes one output workbook: which columns exist, in which order,
// and how rows sort
type Schema struct {
	// Name is the workbook stem, e.g. "Arizona (OSB)"
	Name     string
	State    string
	Category string

	SubCategory bool
	SubProvider bool
	// Labels are extra text columns written after Provider
	Labels []string
	// Amounts are the numeric columns in output order. Nil means the columns
	// are discovered from the records in first-seen order.
	Amounts []string

	// SortBy lists the columns ranked after Date and Provider
	SortBy []string
	// Orders gives a fixed label ordering for SortBy columns
	Orders map[string][]string

	// KeepProviders, when set, folds every other provider into Others
	KeepProviders []string
	// Aggregate sums freshly scraped rows that share every text column
	Aggregate bool
}

// FileName returns the workbook file name
func (s *Schema) FileName() string {
	return s.Name + ".xlsx"
}

// AmountColumns returns the numeric columns for a set of records
func (s *Schema) AmountColumns(records []Record) []string {
	if s.Amounts != nil {
		return append([]string(nil), s.Amounts...)
	}
	var cols []string
	seen := make(map[string]bool)
	for _, r := range records {
		for _, f := range r.fields {
			if !seen[f] {
				seen[f] = true
				cols = append(cols, f)
			}
		}
	}
	return cols
}

// TextColumns returns the leading non-numeric output columns
func (s *Schema) TextColumns() []string {
	cols := []string{ColState, ColCategory}
	if s.SubCategory {
		cols = append(cols, ColSubCategory)
	}
	cols = append(cols, ColDate, ColProvider)
	if s.SubProvider {
		cols = append(cols, ColSubProvider)
	}
	return append(cols, s.Labels...)
}

// Columns returns the full output header, starting with Index
func (s *Schema) Columns(records []Record) []string {
	cols := append([]string{ColIndex}, s.TextColumns()...)
	return append(cols, s.AmountColumns(records)...)
}

// IsAmount reports whether column is numeric under this schema
func (s *Schema) IsAmount(column string, records []Record) bool {
	for _, c := range s.AmountColumns(records) {
		if c == column {
			return true
		}
	}
	return false
}

// Sort orders records by Date, Provider and then each SortBy column. Columns
// with a fixed ordering rank labels by it; others compare as text.
func Sort(records []Record, schema *Schema) {
	ranks := make(map[string]func(string) int, len(schema.Orders))
	for col, order := range schema.Orders {
		ranks[col] = table.CategoryOrder(order)
	}

	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Provider != b.Provider {
			return a.Provider < b.Provider
		}
		for _, col := range schema.SortBy {
			av, bv := a.Value(col), b.Value(col)
			if av == bv {
				continue
			}
			if rank, ok := ranks[col]; ok {
				if ra, rb := rank(av), rank(bv); ra != rb {
					return ra < rb
				}
			}
			return av < bv
		}
		return false
	})
}
