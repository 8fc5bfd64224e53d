package jurisdiction

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/pfrederiksen/gaming-revenue/internal/pdftext"
	"github.com/pfrederiksen/gaming-revenue/internal/record"
	"github.com/pfrederiksen/gaming-revenue/internal/table"
)

const michiganListing = "https://www.michigan.gov/mgcb/detroit-casinos/resources/revenues-and-wagering-tax-information"

const michiganCityTax = "City Wagering Taxes"

var michiganOSBSchema = &record.Schema{
	Name:        "Michigan (OSB)",
	State:       "Michigan",
	Category:    record.CategoryOSB,
	SubCategory: true,
	SubProvider: true,
	Amounts: []string{"Total Handle", "Gross Sports Betting Receipts", "Adjusted Gross Sports Betting Receipts",
		"Internet Sports Betting State Tax", michiganCityTax},
}

var michiganIGamingSchema = &record.Schema{
	Name:        "Michigan (iGaming)",
	State:       "Michigan",
	Category:    record.CategoryIGaming,
	SubCategory: true,
	SubProvider: true,
	Amounts: []string{"Total Handle", "Gross Internet Gaming Receipts", "Adjusted Gross Internet Gaming Receipts",
		"Internet Gaming State Tax", michiganCityTax},
}

var michiganRetailSchema = &record.Schema{
	Name:        "Michigan Retail (OSB)",
	State:       "Michigan",
	Category:    record.CategoryOSB,
	SubCategory: true,
	Amounts:     []string{"Total Handle", "Gross Receipts", "State Tax", "City Wagering Tax"},
}

var michiganOSB = Driver{
	Key:    "michigan-osb",
	Schema: michiganOSBSchema,
	Sources: func(ctx context.Context, env *Env) ([]Extractor, error) {
		return michiganWorkbooks(ctx, env, "Internet Sports Betting", michiganOSBSchema)
	},
}

var michiganIGaming = Driver{
	Key:    "michigan-igaming",
	Schema: michiganIGamingSchema,
	Sources: func(ctx context.Context, env *Env) ([]Extractor, error) {
		return michiganWorkbooks(ctx, env, "Internet Gaming", michiganIGamingSchema)
	},
}

var michiganRetailOSB = Driver{
	Key:    "michigan-retail-osb",
	Schema: michiganRetailSchema,
	Sources: func(ctx context.Context, env *Env) ([]Extractor, error) {
		links, err := findLinks(ctx, env, michiganListing, []string{".pdf"}, []string{"Retail Sports Betting"})
		if err != nil {
			return nil, err
		}
		out := make([]Extractor, 0, len(links))
		for _, link := range links {
			out = append(out, newSource(link, func(ctx context.Context) ([]record.Record, error) {
				pages, err := downloadPages(ctx, env, link)
				if err != nil {
					return nil, err
				}
				var records []record.Record
				for _, p := range pages {
					rs, err := parseMichiganRetail(p)
					if err != nil {
						return nil, err
					}
					records = append(records, rs...)
				}
				return records, nil
			}))
		}
		return out, nil
	},
}

func michiganWorkbooks(ctx context.Context, env *Env, text string, schema *record.Schema) ([]Extractor, error) {
	links, err := findLinks(ctx, env, michiganListing, nil, []string{text})
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

			sheet, err := sheetAt(f, 0)
			if err != nil {
				return nil, err
			}
			rows, err := sheetRows(f, sheet)
			if err != nil {
				return nil, err
			}
			return parseMichigan(table.FromRecords(rows, 0), schema)
		}))
	}
	return out, nil
}

var yearPattern = regexp.MustCompile(`\d{4}`)

// michiganStride is the number of columns each operator has per month
const michiganStride = 4

// parseMichigan reads a calendar-year workbook. The second header cell names
// the year. The first three rows name each operator (casino, then platform
// provider) once per four-column group. Rows 5 to 18 hold one month each
// with the operators' four figures side by side and a final city tax column.
// The last month row is the year total and is skipped.
func parseMichigan(t *table.Table, schema *record.Schema) ([]record.Record, error) {
	if t.Width() < 2 {
		return nil, record.Invalid(strings.Join(t.Columns, ", "), "a year in the second header cell")
	}
	year := yearPattern.FindString(t.Columns[1])
	if year == "" {
		return nil, record.Invalid(t.Columns[1], "a year in the second header cell")
	}

	operators := t.SliceRows(0, 3).DropEmptyColumns().Transpose().PromoteHeader()

	body := t.SliceRows(4, 18)
	for r := range body.Rows {
		for c, v := range body.Rows[r] {
			if n, ok := table.ToNumeric(v); ok && n == 0 {
				body.Rows[r][c] = ""
			}
		}
	}
	body = body.DropSparseRows(4).PromoteHeader()
	if body.Len() == 0 {
		return nil, nil
	}

	groups := (body.Width() - 2) / michiganStride
	if (body.Width()-2)%michiganStride != 0 {
		return nil, record.Invalid(fmt.Sprint(body.Width()), "a month column, four columns per operator and a city tax column")
	}
	if operators.Len() < groups+1 {
		return nil, record.Invalid(fmt.Sprint(operators.Len()), fmt.Sprintf("%d operators and a city row", groups))
	}

	amounts := schema.Amounts[:michiganStride]
	var out []record.Record
	for r := 0; r < body.Len()-1; r++ {
		row := body.Row(r)
		date, err := record.ParseMonth(row[0]+" "+year, "January 2006")
		if err != nil {
			return nil, err
		}
		values := row[1:]
		for g := 0; g < groups; g++ {
			rec := michiganRecord(schema, date, operators.Row(g))
			for i, name := range amounts {
				rec.SetAmount(name, values[g*michiganStride+i])
			}
			out = append(out, rec)
		}
		city := michiganRecord(schema, date, operators.Row(operators.Len()-1))
		city.SetAmount(michiganCityTax, values[len(values)-1])
		out = append(out, city)
	}
	return out, nil
}

func michiganRecord(schema *record.Schema, date time.Time, operator []string) record.Record {
	r := record.New(schema, date, cellAt(operator, 0))
	r.SubCategory = "Internet"
	r.SubProvider = cellAt(operator, 1)
	return r
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

var monthPattern = regexp.MustCompile(`(` + monthNames + `),? \d{4}`)

// parseMichiganRetail reads one page of the retail sports betting report: a
// title naming the month and a grid with one row per casino ending in a
// total row
func parseMichiganRetail(p *pdftext.Page) ([]record.Record, error) {
	m := monthPattern.FindString(p.Text())
	if m == "" {
		return nil, record.Invalid(p.Text(), "a month and year in the page title")
	}
	date, err := record.ParseMonth(strings.Replace(m, ",", "", 1), "January 2006")
	if err != nil {
		return nil, err
	}

	grids, err := p.Grids(pdftext.DefaultGridOptions)
	if err != nil {
		return nil, err
	}
	t := grids[0].DropEmptyRows().PromoteHeader()
	for i, c := range t.Columns {
		t.Columns[i] = strings.Join(strings.Fields(c), " ")
	}
	if err := requireColumns(t, michiganRetailSchema.Amounts...); err != nil {
		return nil, err
	}

	end := t.Len()
	if ranges := t.SliceByMarker(func(v string) bool { return strings.HasPrefix(v, "Total") }); len(ranges) > 0 {
		end = ranges[0].End
	}

	var out []record.Record
	for r := 0; r < end; r++ {
		name := strings.Join(strings.Fields(t.Cell(r, 0)), " ")
		if name == "" {
			continue
		}
		rec := record.New(michiganRetailSchema, date, name)
		rec.SubCategory = record.Retail
		for _, a := range michiganRetailSchema.Amounts {
			rec.SetAmount(a, t.Get(r, a))
		}
		out = append(out, rec)
	}
	return out, nil
}
