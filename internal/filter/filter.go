// Package filter narrows revenue records for display.
//
// A filter can combine several criteria:
//   - Month range (from/to, inclusive, compared at month granularity)
//   - Providers (substring matching, case-insensitive)
//   - Sub-categories such as Retail or Online (exact, case-insensitive)
//   - States (exact, case-insensitive)
//
// Example usage:
//
//	f := filter.NewFilter()
//	f.Providers = []string{"draftkings"}
//	f.SubCategories = []string{"Online"}
//	rows := f.Apply(records)
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/gaming-revenue/internal/record"
)

// Filter represents record filtering criteria
type Filter struct {
	// Month range; either end may be open
	DateFrom *time.Time `json:"date_from,omitempty"`
	DateTo   *time.Time `json:"date_to,omitempty"`

	// Provider filtering (case-insensitive substring match)
	Providers []string `json:"providers,omitempty"`

	// Sub-category filtering (case-insensitive exact match)
	SubCategories []string `json:"sub_categories,omitempty"`

	// State filtering (case-insensitive exact match)
	States []string `json:"states,omitempty"`
}

// NewFilter creates a new empty filter with no active criteria.
// The filter will match all records until criteria are added.
func NewFilter() *Filter {
	return &Filter{
		Providers:     []string{},
		SubCategories: []string{},
		States:        []string{},
	}
}

// IsEmpty checks if the filter has any active criteria
func (f *Filter) IsEmpty() bool {
	return f.DateFrom == nil &&
		f.DateTo == nil &&
		len(f.Providers) == 0 &&
		len(f.SubCategories) == 0 &&
		len(f.States) == 0
}

// Matches checks if a record matches all active filter criteria.
// An empty filter matches all records.
//
// Matching logic:
//   - Date range: the record's month must fall within the months of DateFrom and DateTo
//   - Providers: Provider or Sub-Provider must contain at least one name
//   - SubCategories: Sub-Category must equal one of the labels
//   - States: State must equal one of the names
func (f *Filter) Matches(r record.Record) bool {
	if f.IsEmpty() {
		return true
	}

	month := record.FirstOfMonth(r.Date)
	if f.DateFrom != nil && month.Before(record.FirstOfMonth(*f.DateFrom)) {
		return false
	}
	if f.DateTo != nil && month.After(record.FirstOfMonth(*f.DateTo)) {
		return false
	}

	if len(f.Providers) > 0 {
		matched := false
		provider := strings.ToLower(r.Provider)
		sub := strings.ToLower(r.SubProvider)
		for _, p := range f.Providers {
			p = strings.ToLower(p)
			if strings.Contains(provider, p) || (sub != "" && strings.Contains(sub, p)) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if len(f.SubCategories) > 0 && !containsFold(f.SubCategories, r.SubCategory) {
		return false
	}

	if len(f.States) > 0 && !containsFold(f.States, r.State) {
		return false
	}

	return true
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// Apply returns the records that match. An empty filter returns the input unchanged.
func (f *Filter) Apply(records []record.Record) []record.Record {
	if f.IsEmpty() {
		return records
	}

	var filtered []record.Record
	for _, r := range records {
		if f.Matches(r) {
			filtered = append(filtered, r)
		}
	}

	return filtered
}

// String returns a human-readable description of the active filter criteria.
// Format: "From: Jan 2023 | To: Mar 2023 | Providers: FanDuel"
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "No active filters"
	}

	var parts []string

	if f.DateFrom != nil {
		parts = append(parts, fmt.Sprintf("From: %s", f.DateFrom.Format("Jan 2006")))
	}

	if f.DateTo != nil {
		parts = append(parts, fmt.Sprintf("To: %s", f.DateTo.Format("Jan 2006")))
	}

	if len(f.Providers) > 0 {
		parts = append(parts, fmt.Sprintf("Providers: %s", strings.Join(f.Providers, ", ")))
	}

	if len(f.SubCategories) > 0 {
		parts = append(parts, fmt.Sprintf("Sub-categories: %s", strings.Join(f.SubCategories, ", ")))
	}

	if len(f.States) > 0 {
		parts = append(parts, fmt.Sprintf("States: %s", strings.Join(f.States, ", ")))
	}

	return strings.Join(parts, " | ")
}

// Clone creates a deep copy of the filter
func (f *Filter) Clone() *Filter {
	clone := &Filter{
		Providers:     append([]string{}, f.Providers...),
		SubCategories: append([]string{}, f.SubCategories...),
		States:        append([]string{}, f.States...),
	}

	if f.DateFrom != nil {
		df := *f.DateFrom
		clone.DateFrom = &df
	}

	if f.DateTo != nil {
		dt := *f.DateTo
		clone.DateTo = &dt
	}

	return clone
}
