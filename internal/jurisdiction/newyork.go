package jurisdiction

import (
	"context"
	"math"
	"path"
	"strings"

	"github.com/pfrederiksen/gaming-revenue/internal/fetch"
	"github.com/pfrederiksen/gaming-revenue/internal/record"
	"github.com/pfrederiksen/gaming-revenue/internal/table"
	"github.com/xuri/excelize/v2"
)

const newYorkListing = "https://www.gaming.ny.gov/gaming/index.php?ID=4"

// Weekly rows are summed into months and every operator outside the four
// largest is reported as Others.
var newYorkSchema = &record.Schema{
	Name:          "New York (OSB)",
	State:         "New York",
	Category:      record.CategoryOSB,
	Amounts:       []string{"GGR"},
	KeepProviders: []string{"BetMGM", "FanDuel", "Caesars", "DraftKings"},
	Aggregate:     true,
}

var newYorkOSB = Driver{
	Key:    "newyork-osb",
	Schema: newYorkSchema,
	Sources: func(ctx context.Context, env *Env) ([]Extractor, error) {
		links, err := findLinks(ctx, env, newYorkListing, []string{"Monthly Mobile Sports Wagering Report", ".xlsx"}, nil)
		if err != nil {
			return nil, err
		}
		out := make([]Extractor, 0, len(links))
		for _, link := range links {
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
				return parseNewYork(f, newYorkProvider(link))
			}))
		}
		return out, nil
	},
}

// newYorkProvider is the last word of the report's file name, e.g.
// "Monthly Mobile Sports Wagering Report FanDuel.xlsx"
func newYorkProvider(link string) string {
	name := fetch.FileName(link)
	fields := strings.Fields(strings.TrimSuffix(name, path.Ext(name)))
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// parseNewYork reads every sheet of an operator's workbook. Sheets list weeks
// with the week ending date in the first column and GGR in the fourth.
func parseNewYork(f *excelize.File, provider string) ([]record.Record, error) {
	var out []record.Record
	for _, sheet := range f.GetSheetList() {
		rows, err := sheetRows(f, sheet)
		if err != nil {
			return nil, err
		}
		out = append(out, parseNewYorkSheet(table.FromRecords(rows, -1), provider)...)
	}
	if len(out) == 0 {
		return nil, record.Invalid(strings.Join(f.GetSheetList(), ", "), "a sheet with dated GGR rows")
	}
	return out, nil
}

func parseNewYorkSheet(t *table.Table, provider string) []record.Record {
	const dateCol, ggrCol = 0, 3
	if t.FindRow(ggrCol, func(v string) bool { return strings.Contains(v, "GGR") }) < 0 {
		return nil
	}

	var out []record.Record
	for r := 0; r < t.Len(); r++ {
		date, err := record.ParseDate(t.Cell(r, dateCol))
		// small serials are week numbers, not dates
		if err != nil || date.Year() < 2000 {
			continue
		}
		ggr, ok := table.ToNumeric(t.Cell(r, ggrCol))
		if !ok {
			continue
		}
		rec := record.New(newYorkSchema, date, provider)
		rec.SetValue("GGR", math.Trunc(ggr))
		out = append(out, rec)
	}
	return out
}
