package jurisdiction

import (
	"context"
	"net/url"
	"regexp"
	"time"

	"github.com/pfrederiksen/gaming-revenue/internal/record"
)

const arizonaListing = "https://gaming.az.gov/resources/reports"

var arizonaSchema = &record.Schema{
	Name:        "Arizona (OSB)",
	State:       "Arizona",
	Category:    record.CategoryOSB,
	SubCategory: true,
	Amounts:     []string{"Gross Wagering Receipts", "Amount Won", "Adjusted Gross Wagering Receipts", "Promotional Credits"},
	SortBy:      []string{record.ColSubCategory},
	Orders:      subCategoryOrder,
}

var arizonaOSB = Driver{
	Key:    "arizona-osb",
	Schema: arizonaSchema,
	Sources: func(ctx context.Context, env *Env) ([]Extractor, error) {
		links, err := findLinks(ctx, env, arizonaListing, []string{"EW", ".pdf"}, nil)
		if err != nil {
			return nil, err
		}
		out := make([]Extractor, 0, len(links))
		for _, link := range links {
			out = append(out, newSource(link, func(ctx context.Context) ([]record.Record, error) {
				date, err := arizonaDate(link)
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
				return parseArizona(pages[0].Lines(), date)
			}))
		}
		return out, nil
	},
}

var arizonaDatePattern = regexp.MustCompile(`\w+ \d{4}`)

// arizonaDate reads names like "EW Website Report - Sept 2021.pdf". Month
// spellings vary, so only the first three letters are used.
func arizonaDate(link string) (time.Time, error) {
	text := link
	if u, err := url.PathUnescape(link); err == nil {
		text = u
	}
	m := arizonaDatePattern.FindString(text)
	if len(m) < 8 {
		return time.Time{}, record.Invalid(link, "a month and year such as Sept 2021")
	}
	return record.ParseMonth(m[:3]+" "+m[len(m)-4:], "Jan 2006")
}

// parseArizona reads the first page of an event wagering report. After the
// title, each line is a provider followed by retail and online pairs for four
// figures. The first line without a provider ends the table.
func parseArizona(lines []string, date time.Time) ([]record.Record, error) {
	if len(lines) < 2 {
		return nil, nil
	}
	var out []record.Record
	for _, line := range lines[1:] {
		provider, values := splitLine(line)
		if provider == "" {
			break
		}
		if len(values) < 8 {
			return nil, record.Invalid(line, "a provider followed by eight figures")
		}
		for i, sub := range []string{record.Retail, record.Online} {
			r := record.New(arizonaSchema, date, provider)
			r.SubCategory = sub
			for j, name := range arizonaSchema.Amounts {
				r.SetValue(name, values[2*j+i])
			}
			out = append(out, r)
		}
	}
	return out, nil
}
