package record

import (
	"strconv"
	"strings"
	"time"

	"github.com/pfrederiksen/gaming-revenue/internal/table"
)

// Categories
const (
	CategoryOSB     = "Online Sports Betting (OSB)"
	CategoryIGaming = "iGaming"
	CategoryCasino  = "Casino Gaming"
)

// Common sub-category labels
const (
	Retail = "Retail"
	Online = "Online"
	Total  = "Total"
)

// Fixed output columns
const (
	ColIndex       = "Index"
	ColState       = "State"
	ColCategory    = "Category"
	ColSubCategory = "Sub-Category"
	ColDate        = "Date"
	ColProvider    = "Provider"
	ColSubProvider = "Sub-Provider"
)

// Others is the provider name folded providers are reported under
const Others = "Others"

// Record is one revenue observation: a jurisdiction, month, operator and
// optional sub-category with its reported amounts
type Record struct {
	State       string
	Category    string
	SubCategory string
	Date        time.Time
	Provider    string
	SubProvider string

	// Labels holds extra text columns such as "Sport Level"
	Labels map[string]string
	// Amounts holds numeric columns; an absent key is a missing value
	Amounts map[string]float64

	// order of first assignment, used when a schema discovers its amount columns
	fields []string
}

// New creates a record for the schema's state and category
func New(schema *Schema, date time.Time, provider string) Record {
	return Record{
		State:    schema.State,
		Category: schema.Category,
		Date:     FirstOfMonth(date),
		Provider: strings.TrimSpace(provider),
		Labels:   make(map[string]string),
		Amounts:  make(map[string]float64),
	}
}

// SetValue stores an amount
func (r *Record) SetValue(name string, v float64) {
	if r.Amounts == nil {
		r.Amounts = make(map[string]float64)
	}
	if _, ok := r.Amounts[name]; !ok {
		r.fields = append(r.fields, name)
	}
	r.Amounts[name] = v
}

// SetAmount coerces printed text into an amount. Unparseable text leaves the
// amount missing.
func (r *Record) SetAmount(name, raw string) {
	v, ok := table.ToNumeric(raw)
	if !ok {
		r.noteField(name)
		return
	}
	r.SetValue(name, v)
}

func (r *Record) noteField(name string) {
	for _, f := range r.fields {
		if f == name {
			return
		}
	}
	r.fields = append(r.fields, name)
}

// AddValue adds v to an amount, treating a missing amount as zero
func (r *Record) AddValue(name string, v float64) {
	r.SetValue(name, r.Amounts[name]+v)
}

// Amount returns an amount and whether it is present
func (r Record) Amount(name string) (float64, bool) {
	v, ok := r.Amounts[name]
	return v, ok
}

// SetLabel stores an extra text column
func (r *Record) SetLabel(name, v string) {
	if r.Labels == nil {
		r.Labels = make(map[string]string)
	}
	r.Labels[name] = strings.TrimSpace(v)
}

// Fields returns amount names in the order they were first assigned
func (r Record) Fields() []string {
	return append([]string(nil), r.fields...)
}

// Value returns the text form of any output column, as written to a workbook
func (r Record) Value(column string) string {
	switch column {
	case ColState:
		return r.State
	case ColCategory:
		return r.Category
	case ColSubCategory:
		return r.SubCategory
	case ColDate:
		if r.Date.IsZero() {
			return ""
		}
		return r.Date.Format("2006-01-02")
	case ColProvider:
		return r.Provider
	case ColSubProvider:
		return r.SubProvider
	}
	if v, ok := r.Labels[column]; ok {
		return v
	}
	if v, ok := r.Amounts[column]; ok {
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
	return ""
}

// Normalize applies the output rules: the date is the first of its month,
// zero amounts are missing, amounts are rounded to cents and providers outside
// the schema's allow-list are folded into Others.
func (r Record) Normalize(schema *Schema) Record {
	out := r
	out.Date = FirstOfMonth(r.Date)
	out.Provider = strings.TrimSpace(r.Provider)
	out.SubProvider = strings.TrimSpace(r.SubProvider)
	out.Amounts = make(map[string]float64, len(r.Amounts))
	for k, v := range r.Amounts {
		v = table.Round2(v)
		if v == 0 {
			continue
		}
		out.Amounts[k] = v
	}
	out.Labels = make(map[string]string, len(r.Labels))
	for k, v := range r.Labels {
		out.Labels[k] = v
	}
	out.fields = append([]string(nil), r.fields...)
	if schema.KeepProviders != nil && !contains(schema.KeepProviders, out.Provider) {
		out.Provider = Others
	}
	return out
}

// Empty reports whether every amount column of the schema is missing
func (r Record) Empty(schema *Schema) bool {
	for _, name := range schema.AmountColumns([]Record{r}) {
		if _, ok := r.Amounts[name]; ok {
			return false
		}
	}
	return true
}

// Key is the canonical text of every output column except Index, used to
// detect exact duplicates
func (r Record) Key(columns []string) string {
	var b strings.Builder
	for i, c := range columns {
		if c == ColIndex {
			continue
		}
		if i > 0 {
			b.WriteByte(0x1f)
		}
		b.WriteString(r.Value(c))
	}
	return b.String()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
