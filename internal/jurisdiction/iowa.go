package jurisdiction

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/pfrederiksen/gaming-revenue/internal/logger"
	"github.com/pfrederiksen/gaming-revenue/internal/pdftext"
	"github.com/pfrederiksen/gaming-revenue/internal/record"
	"github.com/pfrederiksen/gaming-revenue/internal/table"
)

const iowaListing = "https://irgc.iowa.gov/publications-reports/sports-wagering-revenue/archived-sports-revenue"

// iowaSchema discovers its amount columns: the row labels change between
// report years
var iowaSchema = &record.Schema{
	Name:        "Iowa (OSB)",
	State:       "Iowa",
	Category:    record.CategoryOSB,
	SubCategory: true,
	SortBy:      []string{record.ColSubCategory},
	Orders:      subCategoryOrder,
}

// iowaLayout ties a page title to the label of the last row in each casino group
type iowaLayout struct {
	title       string
	subCategory string
	marker      string
}

// online is checked first since its title also mentions sports wagering
var iowaLayouts = []iowaLayout{
	{title: "ONLINE SPORTS WAGERING", subCategory: record.Online, marker: "INTERNET PAYOUTS"},
	{title: "SPORTS WAGERING REVENUE", subCategory: record.Total, marker: "STATE TAX"},
}

// errFiscalYear marks year-to-date pages, which are not collected
var errFiscalYear = errors.New("fiscal year summary page")

var iowaOSB = Driver{
	Key:    "iowa-osb",
	Schema: iowaSchema,
	Sources: func(ctx context.Context, env *Env) ([]Extractor, error) {
		links, err := findLinks(ctx, env, iowaListing, []string{"media"}, nil)
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
				return parseIowa(pages, link), nil
			}))
		}
		return out, nil
	},
}

// parseIowa parses every page on its own; a page that does not parse is
// logged and skipped
func parseIowa(pages []*pdftext.Page, link string) []record.Record {
	var out []record.Record
	for _, p := range pages {
		records, err := parseIowaPage(p)
		if errors.Is(err, errFiscalYear) {
			continue
		}
		if err != nil {
			logger.Warn("Unable to parse page", logger.Fields{"url": link, "page": p.Number, "error": err.Error()})
			continue
		}
		out = append(out, records...)
	}
	return out
}

func parseIowaPage(p *pdftext.Page) ([]record.Record, error) {
	title, err := iowaTitle(p.Lines())
	if err != nil {
		return nil, err
	}
	heading, period, ok := strings.Cut(title, " - ")
	if !ok {
		return nil, record.Invalid(title, "a title such as SPORTS WAGERING REVENUE - June 2020")
	}
	if strings.Contains(period, "FY") {
		return nil, errFiscalYear
	}
	date, err := record.ParseMonth(period, "January 2006")
	if err != nil {
		return nil, err
	}

	var layout *iowaLayout
	for i := range iowaLayouts {
		if strings.Contains(heading, iowaLayouts[i].title) {
			layout = &iowaLayouts[i]
			break
		}
	}
	if layout == nil {
		return nil, record.Invalid(heading, "an online or retail sports wagering title")
	}

	grids, err := p.Grids(pdftext.DefaultGridOptions)
	if err != nil {
		return nil, err
	}
	return parseIowaGrid(grids[0], *layout, date)
}

// iowaTitle is the first line naming a report; stray leading "$0." and
// doubled dashes are cleaned up
func iowaTitle(lines []string) (string, error) {
	for _, line := range lines {
		line = strings.TrimLeft(line, "$0.")
		for _, l := range iowaLayouts {
			if strings.Contains(line, l.title) {
				return strings.TrimSpace(strings.ReplaceAll(line, "--", "-")), nil
			}
		}
	}
	return "", record.Invalid(strings.Join(lines, " | "), "a sports wagering page title")
}

// parseIowaGrid reads a grid of casino groups. Each group is a block of rows
// ending with the marker row, with one column per casino: the first row holds
// casino names and the first column the figure labels.
func parseIowaGrid(grid *table.Table, layout iowaLayout, date time.Time) ([]record.Record, error) {
	// the extractor reads a capital I in some fonts as a backslash
	grid = grid.Clone()
	for r := range grid.Rows {
		if len(grid.Rows[r]) > 0 {
			grid.Rows[r][0] = strings.ReplaceAll(grid.Rows[r][0], `\`, "I")
		}
	}

	ranges := grid.SliceByMarker(func(label string) bool {
		return strings.EqualFold(strings.TrimSpace(label), layout.marker)
	})
	if len(ranges) == 0 {
		return nil, record.Invalid(strings.Join(grid.ColumnAt(0), " | "), "a "+layout.marker+" row")
	}

	var (
		providers []string
		rows      []record.Record
	)
	for _, part := range grid.SplitByRows(ranges) {
		casinos := part.Transpose().PromoteHeader()
		for i := 0; i < casinos.Len(); i++ {
			row := casinos.Row(i)
			if filledCells(row) == 0 || strings.TrimSpace(row[0]) == "" {
				continue
			}
			r := record.New(iowaSchema, date, "")
			r.SubCategory = layout.subCategory
			for c := 1; c < casinos.Width(); c++ {
				label := strings.Join(strings.Fields(casinos.Columns[c]), " ")
				if label == "" {
					continue
				}
				r.SetAmount(label, row[c])
			}
			providers = append(providers, row[0])
			rows = append(rows, r)
		}
	}

	for i, name := range table.FixWhitespace(providers) {
		rows[i].Provider = strings.TrimSpace(name)
	}
	return rows, nil
}

func filledCells(row []string) int {
	n := 0
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			n++
		}
	}
	return n
}
