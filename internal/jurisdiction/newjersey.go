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

const (
	newJerseyIGamingListing = "https://www.njoag.gov/about/divisions-and-offices/division-of-gaming-enforcement-home/financial-and-statistical-information/monthly-internet-gross-revenue-reports/"
	newJerseyOSBListing     = "https://www.njoag.gov/about/divisions-and-offices/division-of-gaming-enforcement-home/financial-and-statistical-information/monthly-sports-wagering-reports/"
)

// Casino names are printed above a heading whose height changed over the
// years. Bounds are tried from the top of the page down until one yields a name.
const (
	newJerseyTopBound    = 835
	newJerseyBottomBound = 600
	newJerseyBoundStep   = 5
)

var newJerseyDatePattern = regexp.MustCompile(`(` + monthNames + `)\d{4}`)

var newJerseyIGamingSchema = &record.Schema{
	Name:     "New Jersey (iGaming)",
	State:    "New Jersey",
	Category: record.CategoryIGaming,
	Amounts:  []string{"Online Poker", "Online Casino", "Total"},
}

var newJerseyOSBSchema = &record.Schema{
	Name:        "New Jersey (OSB)",
	State:       "New Jersey",
	Category:    record.CategoryOSB,
	SubCategory: true,
	Amounts:     []string{"Gross Revenue"},
	SortBy:      []string{record.ColSubCategory},
	Orders:      subCategoryOrder,
}

var newJerseyIGaming = Driver{
	Key:    "newjersey-igaming",
	Schema: newJerseyIGamingSchema,
	Sources: func(ctx context.Context, env *Env) ([]Extractor, error) {
		return newJerseyReports(ctx, env, newJerseyIGamingListing, "IGRTaxReturns", parseNewJerseyIGaming)
	},
}

var newJerseyOSB = Driver{
	Key:    "newjersey-osb",
	Schema: newJerseyOSBSchema,
	Sources: func(ctx context.Context, env *Env) ([]Extractor, error) {
		return newJerseyReports(ctx, env, newJerseyOSBListing, "SWRTaxReturns", parseNewJerseyOSB)
	},
}

type pagesParser func(pages []*pdftext.Page, date time.Time) ([]record.Record, error)

func newJerseyReports(ctx context.Context, env *Env, listing, key string, parse pagesParser) ([]Extractor, error) {
	links, err := findLinks(ctx, env, listing, []string{key}, nil)
	if err != nil {
		return nil, err
	}
	out := make([]Extractor, 0, len(links))
	for _, link := range links {
		out = append(out, newSource(link, func(ctx context.Context) ([]record.Record, error) {
			// file names run the month into the year, e.g. IGRTaxReturnsMarch2023.pdf
			date, err := fetch.DateFromURL(link, newJerseyDatePattern, "January2006")
			if err != nil {
				return nil, err
			}
			pages, err := downloadPages(ctx, env, link)
			if err != nil {
				return nil, err
			}
			return parse(pages, date)
		}))
	}
	return out, nil
}

// parseNewJerseyIGaming reads one casino per page: its name from the page
// heading and poker, casino and total win from the last column of the first grid
func parseNewJerseyIGaming(pages []*pdftext.Page, date time.Time) ([]record.Record, error) {
	out := make([]record.Record, 0, len(pages))
	for _, p := range pages {
		casino, err := newJerseyCasino(p)
		if err != nil {
			return nil, err
		}
		grids, err := p.Grids(pdftext.DefaultGridOptions)
		if err != nil {
			return nil, err
		}
		win, err := newJerseyWin(grids[0])
		if err != nil {
			return nil, err
		}
		r := record.New(newJerseyIGamingSchema, date, casino)
		for i, name := range newJerseyIGamingSchema.Amounts {
			r.SetAmount(name, win[i])
		}
		out = append(out, r)
	}
	return out, nil
}

// newJerseyCasino extracts the casino name between the report heading and
// the word MONTHLY, lowering the bound until some text is found
func newJerseyCasino(p *pdftext.Page) (string, error) {
	for bound := float64(newJerseyTopBound); bound >= newJerseyBottomBound; bound -= newJerseyBoundStep {
		text := p.TextAbove(bound)
		text = strings.TrimPrefix(text, "INTERNET WIN - CURRENT MONTH")
		text, _, _ = strings.Cut(text, "MONTHLY")
		name := strings.Join(strings.Fields(text), " ")
		if name != "" {
			return name, nil
		}
	}
	return "", record.Invalid(p.Text(), "a casino name in the page heading")
}

// newJerseyWin returns rows one through three of the grid's last column with
// currency marks removed
func newJerseyWin(grid *table.Table) ([]string, error) {
	if grid.Len() < 4 || grid.Width() == 0 {
		return nil, record.Invalid(strings.Join(grid.ColumnAt(0), " | "), "a win grid with poker, casino and total rows")
	}
	last := grid.Width() - 1
	clean := strings.NewReplacer("$", "", " ", "", "\n", "")
	out := make([]string, 0, 3)
	for r := 1; r <= 3; r++ {
		out = append(out, strings.TrimRight(clean.Replace(grid.Cell(r, last)), "-"))
	}
	return out, nil
}

// parseNewJerseyOSB reads the sports wagering summary lines. After the title,
// each line is an operator followed by retail, online and total gross revenue.
// The first line without an operator name ends a page.
func parseNewJerseyOSB(pages []*pdftext.Page, date time.Time) ([]record.Record, error) {
	var out []record.Record
	for _, p := range pages {
		lines := p.Lines()
		if len(lines) < 2 {
			continue
		}
		for _, line := range lines[1:] {
			provider, values := splitLine(line)
			if provider == "" {
				break
			}
			if len(values) < 3 {
				return nil, record.Invalid(line, "an operator followed by retail, online and total revenue")
			}
			for i, sub := range []string{record.Retail, record.Online, record.Total} {
				r := record.New(newJerseyOSBSchema, date, provider)
				r.SubCategory = sub
				r.SetValue("Gross Revenue", values[i])
				out = append(out, r)
			}
		}
	}
	return out, nil
}
