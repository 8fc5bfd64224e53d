package jurisdiction

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pfrederiksen/gaming-revenue/internal/logger"
	"github.com/pfrederiksen/gaming-revenue/internal/record"
	"github.com/pfrederiksen/gaming-revenue/internal/table"
	"github.com/xuri/excelize/v2"
)

const westVirginiaListing = "https://wvlottery.com/requests/2020-06-15-1110/?report=new"

// West Virginia reports weeks; rows are summed into months at merge time.
var westVirginiaOSBSchema = &record.Schema{
	Name:        "West Virginia (OSB)",
	State:       "West Virginia",
	Category:    record.CategoryOSB,
	SubCategory: true,
	Amounts:     []string{"Gross Tickets Written", "Voids", "Tickets Cashed", "Total Taxable Receipts"},
	SortBy:      []string{record.ColSubCategory},
	Orders:      subCategoryOrder,
	Aggregate:   true,
}

var westVirginiaIGamingSchema = &record.Schema{
	Name:      "West Virginia (iGaming)",
	State:     "West Virginia",
	Category:  record.CategoryIGaming,
	Amounts:   []string{"Wagers", "Amount Won", "Revenue"},
	Aggregate: true,
}

// westVirginiaLayout is one workbook layout: the licensee sheets and the
// parser for one sheet's rows
type westVirginiaLayout struct {
	linkText string
	sheets   []string
	header   int
	parse    func(t *table.Table, provider string) ([]record.Record, error)
}

var westVirginiaSports = westVirginiaLayout{
	linkText: "Sports Wagering",
	sheets:   []string{"Mountaineer", "Wheeling", "Mardi Gras", "Charles Town", "Greenbrier"},
	header:   3,
	parse:    parseWestVirginiaSports,
}

var westVirginiaInteractive = westVirginiaLayout{
	linkText: "iGaming",
	sheets:   []string{"Mountaineer", "Charles Town", "Greenbrier"},
	header:   2,
	parse:    parseWestVirginiaIGaming,
}

var westVirginiaOSB = Driver{
	Key:    "westvirginia-osb",
	Schema: westVirginiaOSBSchema,
	Sources: func(ctx context.Context, env *Env) ([]Extractor, error) {
		return westVirginiaSources(ctx, env, westVirginiaSports)
	},
}

var westVirginiaIGaming = Driver{
	Key:    "westvirginia-igaming",
	Schema: westVirginiaIGamingSchema,
	Sources: func(ctx context.Context, env *Env) ([]Extractor, error) {
		return westVirginiaSources(ctx, env, westVirginiaInteractive)
	},
}

// westVirginiaSources uses the first archive linked under the layout's text.
// The lottery site only serves browsers.
func westVirginiaSources(ctx context.Context, env *Env, layout westVirginiaLayout) ([]Extractor, error) {
	links, err := env.Fetch.FindLinksAsBrowser(ctx, westVirginiaListing, nil, []string{layout.linkText})
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return nil, record.Invalid(westVirginiaListing, "a link to the "+layout.linkText+" archive")
	}
	link := links[0]
	return []Extractor{newSource(link, func(ctx context.Context) ([]record.Record, error) {
		body, err := env.Fetch.GetAsBrowser(ctx, link)
		if err != nil {
			return nil, err
		}
		return parseWestVirginiaArchive(body, layout)
	})}, nil
}

// parseWestVirginiaArchive reads every workbook in the archive and every
// licensee sheet in each. Sheets missing from a year's workbook are skipped.
func parseWestVirginiaArchive(data []byte, layout westVirginiaLayout) ([]record.Record, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}

	var out []record.Record
	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() {
			continue
		}
		records, err := parseWestVirginiaWorkbook(zf, layout)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", zf.Name, err)
		}
		out = append(out, records...)
	}
	return out, nil
}

func parseWestVirginiaWorkbook(zf *zip.File, layout westVirginiaLayout) ([]record.Record, error) {
	rc, err := zf.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close() // nolint:errcheck

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	f, err := openWorkbook(data)
	if err != nil {
		return nil, err
	}
	defer f.Close() // nolint:errcheck

	var out []record.Record
	for _, sheet := range layout.sheets {
		if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
			logger.Debug("Sheet not in workbook", logger.Fields{"workbook": zf.Name, "sheet": sheet})
			continue
		}
		t, err := westVirginiaSheet(f, sheet, layout.header)
		if err != nil {
			return nil, err
		}
		records, err := layout.parse(t, sheet)
		if err != nil {
			return nil, fmt.Errorf("sheet %s: %w", sheet, err)
		}
		out = append(out, records...)
	}
	return out, nil
}

var westVirginiaNoise = strings.NewReplacer("*", "", " ", "")

// westVirginiaSheet loads a sheet with footnote stars and spaces stripped from
// the cells and trailing stars stripped from the labels
func westVirginiaSheet(f *excelize.File, sheet string, header int) (*table.Table, error) {
	rows, err := sheetRows(f, sheet)
	if err != nil {
		return nil, err
	}
	t := table.FromRecords(rows, header)
	for i, c := range t.Columns {
		t.Columns[i] = strings.TrimRight(c, "* ")
	}
	for r := range t.Rows {
		for c, v := range t.Rows[r] {
			t.Rows[r][c] = westVirginiaNoise.Replace(v)
		}
	}
	return t, nil
}

var westVirginiaIGamingColumns = map[string]string{
	"Week Ending": record.ColDate,
	"Paids":       "Amount Won",
}

// parseWestVirginiaIGaming reads weekly wagers, paids and revenue
func parseWestVirginiaIGaming(t *table.Table, provider string) ([]record.Record, error) {
	t = t.Rename(westVirginiaIGamingColumns)
	if err := requireColumns(t, append([]string{record.ColDate}, westVirginiaIGamingSchema.Amounts...)...); err != nil {
		return nil, err
	}

	var out []record.Record
	for r := 0; r < t.Len(); r++ {
		date, err := record.ParseDate(t.Get(r, record.ColDate))
		if err != nil {
			continue
		}
		rec := record.New(westVirginiaIGamingSchema, date, provider)
		for _, name := range westVirginiaIGamingSchema.Amounts {
			rec.SetAmount(name, t.Get(r, name))
		}
		out = append(out, rec)
	}
	return out, nil
}

// parseWestVirginiaSports reads weekly rows of a date followed by four
// figures each for retail, online and total. Incomplete rows are skipped.
func parseWestVirginiaSports(t *table.Table, provider string) ([]record.Record, error) {
	t = t.DropEmptyColumns()
	if t.Width() < 13 {
		return nil, record.Invalid(strings.Join(t.Columns, ", "), "a date and four columns each for retail, online and total")
	}

	var out []record.Record
rows:
	for r := 0; r < t.Len(); r++ {
		date, err := record.ParseDate(t.Cell(r, 0))
		if err != nil {
			continue
		}
		for c := 1; c < 13; c++ {
			if t.Cell(r, c) == "" {
				continue rows
			}
		}
		for i, sub := range []string{record.Retail, record.Online, record.Total} {
			rec := record.New(westVirginiaOSBSchema, date, provider)
			rec.SubCategory = sub
			for j, name := range westVirginiaOSBSchema.Amounts {
				rec.SetAmount(name, t.Cell(r, 1+4*i+j))
			}
			out = append(out, rec)
		}
	}
	return out, nil
}
