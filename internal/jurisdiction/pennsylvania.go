package jurisdiction

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/gaming-revenue/internal/record"
	"github.com/pfrederiksen/gaming-revenue/internal/table"
)

const (
	pennsylvaniaURL = "https://gamingcontrolboard.pa.gov/files/revenue/Gaming_Revenue_Monthly_%s_FY%d%d.xlsx"
	// rows above the month header
	pennsylvaniaPreamble = 3
	// first fiscal year (July to June) with sports and interactive reports
	pennsylvaniaFirstFY = 2019
)

// pennsylvaniaLayout describes a fiscal-year workbook. Each operator has a
// block of rows ending with the key row and is named by the row above it.
// The rows whose label is one of parse carry the figures; read month by month
// they give stride values per operator. picks maps each amount to the value
// position used for each sub-category, -1 where it is not reported.
type pennsylvaniaLayout struct {
	schema   *record.Schema
	report   string
	key      string
	parse    []string
	trailing int
	stride   int
	subs     []string
	picks    map[string][]int
}

var pennsylvaniaOSBSchema = &record.Schema{
	Name:        "Pennsylvania (OSB)",
	State:       "Pennsylvania",
	Category:    record.CategoryOSB,
	SubCategory: true,
	Amounts:     []string{"Handle", "Revenue", "Promotional Credits", "Gross Revenue"},
	SortBy:      []string{record.ColSubCategory},
	Orders:      subCategoryOrder,
}

var pennsylvaniaIGamingSchema = &record.Schema{
	Name:        "Pennsylvania (iGaming)",
	State:       "Pennsylvania",
	Category:    record.CategoryIGaming,
	SubCategory: true,
	Amounts:     []string{"Wagers Received", "Amount Won", "Gross Revenue"},
	SortBy:      []string{record.ColSubCategory},
	Orders: map[string][]string{
		record.ColSubCategory: {"Interactive Slots", "Banking Tables", "Non-Banking Tables (Poker)"},
	},
}

// Sports values per operator: total handle, revenue, promotions and gross
// revenue; retail handle and gross revenue; online handle, revenue,
// promotions and gross revenue. Retail revenue is only printed as gross.
var pennsylvaniaSports = pennsylvaniaLayout{
	schema:   pennsylvaniaOSBSchema,
	report:   "Sports_Wagering",
	key:      "Total Sports Wagering",
	parse:    []string{"Handle", "Revenue", "Promotional Credits", "Gross Revenue (Taxable)"},
	trailing: 3,
	stride:   10,
	subs:     []string{record.Total, record.Retail, record.Online},
	picks: map[string][]int{
		"Handle":              {0, 4, 6},
		"Revenue":             {1, 5, 7},
		"Promotional Credits": {2, -1, 8},
		"Gross Revenue":       {3, 5, 9},
	},
}

// Interactive values per operator: slots wagers, won and revenue; banking
// table wagers and revenue; poker revenue.
var pennsylvaniaInteractive = pennsylvaniaLayout{
	schema:   pennsylvaniaIGamingSchema,
	report:   "Interactive_Gaming",
	key:      "Interactive Slots",
	parse:    []string{"Wagers Received", "Amount Won", "Gross Revenue", "Revenue (Rake & Tournament Fees)"},
	trailing: 1,
	stride:   6,
	subs:     []string{"Interactive Slots", "Banking Tables", "Non-Banking Tables (Poker)"},
	picks: map[string][]int{
		"Wagers Received": {0, 3, -1},
		"Amount Won":      {1, -1, -1},
		"Gross Revenue":   {2, 4, 5},
	},
}

var pennsylvaniaOSB = Driver{
	Key:    "pennsylvania-osb",
	Schema: pennsylvaniaOSBSchema,
	Sources: func(ctx context.Context, env *Env) ([]Extractor, error) {
		return pennsylvaniaSources(env, pennsylvaniaSports), nil
	},
}

var pennsylvaniaIGaming = Driver{
	Key:    "pennsylvania-igaming",
	Schema: pennsylvaniaIGamingSchema,
	Sources: func(ctx context.Context, env *Env) ([]Extractor, error) {
		return pennsylvaniaSources(env, pennsylvaniaInteractive), nil
	},
}

// pennsylvaniaSources lists one workbook per fiscal year through the current one
func pennsylvaniaSources(env *Env, layout pennsylvaniaLayout) []Extractor {
	now := env.now()
	last := now.Year()
	if now.Month() < time.July {
		last--
	}
	var out []Extractor
	for fy := pennsylvaniaFirstFY; fy <= last; fy++ {
		link := fmt.Sprintf(pennsylvaniaURL, layout.report, fy, fy+1)
		out = append(out, newSource(link, func(ctx context.Context) ([]record.Record, error) {
			body, err := env.Fetch.Get(ctx, link)
			if err != nil {
				return nil, err
			}
			f, err := openWorkbook(body)
			if err != nil {
				return nil, err
			}
			defer f.Close() // nolint:errcheck

			sheet, err := sheetAt(f, 0)
			if err != nil {
				return nil, err
			}
			rows, err := sheetRows(f, sheet)
			if err != nil {
				return nil, err
			}
			return parsePennsylvania(table.FromRecords(rows, pennsylvaniaPreamble), layout)
		}))
	}
	return out
}

// parsePennsylvania reads a fiscal-year sheet with one column per month
func parsePennsylvania(t *table.Table, layout pennsylvaniaLayout) ([]record.Record, error) {
	t = t.Clone()
	for r := range t.Rows {
		if len(t.Rows[r]) > 0 {
			t.Rows[r][0] = strings.TrimSpace(strings.TrimRight(t.Rows[r][0], "*"))
		}
	}

	var providers []string
	for r := 1; r < t.Len(); r++ {
		if t.Cell(r, 0) == layout.key {
			providers = append(providers, t.Cell(r-1, 0))
		}
	}
	if len(providers) == 0 {
		return nil, record.Invalid(strings.Join(t.ColumnAt(0), " | "), "operator blocks ending in "+layout.key)
	}

	wanted := make(map[string]bool, len(layout.parse))
	for _, p := range layout.parse {
		wanted[p] = true
	}
	body := t.Filter(func(row []string) bool {
		for _, v := range row {
			if wanted[v] {
				return true
			}
		}
		return false
	}).DropEmptyColumns()

	months := body.Transpose()
	first, end := 1, months.Len()-layout.trailing
	if end <= first {
		return nil, record.Invalid(strings.Join(body.Columns, ", "), "a label column, month columns and fiscal year totals")
	}
	if months.Width() < layout.stride*len(providers) {
		return nil, record.Invalid(fmt.Sprint(months.Width()), fmt.Sprintf("%d figures for %d operators", layout.stride*len(providers), len(providers)))
	}

	var out []record.Record
	for m := first; m < end; m++ {
		date, err := record.ParseDate(months.Index[m])
		if err != nil {
			return nil, err
		}
		values := months.Row(m)
		for p, provider := range providers {
			group := values[p*layout.stride : (p+1)*layout.stride]
			for s, sub := range layout.subs {
				r := record.New(layout.schema, date, provider)
				r.SubCategory = sub
				for _, name := range layout.schema.Amounts {
					if i := layout.picks[name][s]; i >= 0 {
						r.SetAmount(name, group[i])
					}
				}
				out = append(out, r)
			}
		}
	}
	return out, nil
}
