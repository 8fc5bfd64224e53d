package jurisdiction

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/pfrederiksen/gaming-revenue/internal/fetch"
	"github.com/pfrederiksen/gaming-revenue/internal/pdftext"
	"github.com/pfrederiksen/gaming-revenue/internal/record"
	"github.com/pfrederiksen/gaming-revenue/internal/table"
)

const kansasListing = "https://kslottery.com/publications/sports-monthly-revenues/"

var kansasDatePattern = regexp.MustCompile(`\d{4}-\d{2}`)

var kansasSchema = &record.Schema{
	Name:        "Kansas (OSB)",
	State:       "Kansas",
	Category:    record.CategoryOSB,
	SubCategory: true,
	SubProvider: true,
	Amounts:     []string{"Settled Wagers", "Revenues", "State Share"},
	SortBy:      []string{record.ColSubCategory, record.ColSubProvider},
	Orders:      subCategoryOrder,
}

var kansasOSB = Driver{
	Key:    "kansas-osb",
	Schema: kansasSchema,
	Sources: func(ctx context.Context, env *Env) ([]Extractor, error) {
		links, err := findLinks(ctx, env, kansasListing, []string{"media", "revenue"}, nil)
		if err != nil {
			return nil, err
		}
		out := make([]Extractor, 0, len(links))
		for _, link := range links {
			out = append(out, newSource(link, func(ctx context.Context) ([]record.Record, error) {
				date, err := fetch.DateFromURL(link, kansasDatePattern, "2006-01")
				if err != nil {
					return nil, err
				}
				pages, err := downloadPages(ctx, env, link)
				if err != nil {
					return nil, err
				}
				if len(pages) == 0 {
					return nil, record.Invalid(link, "a report page")
				}
				// the first page is the reported month
				grids, err := pages[0].Grids(pdftext.DefaultGridOptions)
				if err != nil {
					return nil, err
				}
				return parseKansas(grids[0], date)
			}))
		}
		return out, nil
	},
}

// parseKansas reads the monthly grid: a header row, retail casinos through a
// Subtotal row, online providers through a second Subtotal row and a final
// cell that packs the grand totals onto separate lines
func parseKansas(grid *table.Table, date time.Time) ([]record.Record, error) {
	t := grid.DropEmptyRows().PromoteHeader()
	if err := requireColumns(t, append([]string{"Casino", "Provider"}, kansasSchema.Amounts...)...); err != nil {
		return nil, err
	}
	ranges := t.SliceByMarker(func(label string) bool {
		return strings.Contains(label, "Subtotal")
	})
	if len(ranges) != 2 {
		return nil, record.Invalid(strings.Join(t.ColumnAt(0), " | "), "retail and online sections each ending in Subtotal")
	}

	var out []record.Record
	for i, part := range t.SplitByRows(ranges) {
		sub := record.Retail
		if i == 1 {
			sub = record.Online
		}
		for r := 0; r < part.Len(); r++ {
			rec := record.New(kansasSchema, date, part.Get(r, "Casino"))
			rec.SubCategory = sub
			rec.SubProvider = part.Get(r, "Provider")
			for _, name := range kansasSchema.Amounts {
				rec.SetAmount(name, part.Get(r, name))
			}
			out = append(out, rec)
		}
	}

	var totals []string
	for _, line := range strings.Split(t.Cell(t.Len()-1, 0), "\n") {
		totals = append(totals, strings.TrimSpace(line))
	}
	if len(totals) < 5 {
		return nil, record.Invalid(t.Cell(t.Len()-1, 0), "a totals cell with five lines")
	}
	total := record.New(kansasSchema, date, "Totals")
	total.SubCategory = record.Total
	for i, name := range kansasSchema.Amounts {
		total.SetAmount(name, totals[2+i])
	}
	return append(out, total), nil
}
