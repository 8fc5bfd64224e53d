package jurisdiction

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pfrederiksen/gaming-revenue/internal/fetch"
	"github.com/pfrederiksen/gaming-revenue/internal/logger"
	"github.com/pfrederiksen/gaming-revenue/internal/record"
	"github.com/pfrederiksen/gaming-revenue/internal/table"
)

const (
	marylandURL = "https://www.mdgaming.com/wp-content/uploads/%s/%s-Sports-Wagering-Data.xlsx"
	// rows above the header of the report sheet
	marylandPreamble = 3
)

var (
	marylandFirstMonth = time.Date(2022, time.May, 1, 0, 0, 0, 0, time.UTC)
	// reports from this month on split retail and online and renamed columns
	marylandOnlineStart = time.Date(2022, time.September, 1, 0, 0, 0, 0, time.UTC)
)

var marylandSchema = &record.Schema{
	Name:        "Maryland (OSB)",
	State:       "Maryland",
	Category:    record.CategoryOSB,
	SubCategory: true,
	Amounts:     []string{"Handle", "Amount Won", "Promotion Play", "Other Deductions", "Adjusted Gross Revenue"},
	SortBy:      []string{record.ColSubCategory},
	Orders:      subCategoryOrder,
}

var marylandEarlyColumns = map[string]string{
	"Prizes Paid": "Amount Won",
	"Taxable Win": "Adjusted Gross Revenue",
}

var marylandColumns = map[string]string{
	"Unnamed: 2": "Handle",
	"Unnamed: 3": "Amount Won",
	"Promotion":  "Promotion Play",
	"Other":      "Other Deductions",
	"Unnamed: 7": "Adjusted Gross Revenue",
}

var marylandOSB = Driver{
	Key:    "maryland-osb",
	Schema: marylandSchema,
	Sources: func(ctx context.Context, env *Env) ([]Extractor, error) {
		// a month's report is uploaded during the following month
		months := record.Months(marylandFirstMonth, record.FirstOfMonth(env.now()).AddDate(0, -1, 0))
		out := make([]Extractor, 0, len(months))
		for _, m := range months {
			link := marylandLink(m)
			out = append(out, newSource(link, func(ctx context.Context) ([]record.Record, error) {
				body, err := marylandReport(ctx, env, link)
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
				return parseMaryland(table.FromRecords(rows, marylandPreamble), m)
			}))
		}
		return out, nil
	},
}

func marylandLink(month time.Time) string {
	upload := month.AddDate(0, 1, 0).Format("2006/01")
	return fmt.Sprintf(marylandURL, upload, month.Format("January-2006"))
}

// marylandReport fetches a report, retrying under the abbreviated file name
// some months are published with
func marylandReport(ctx context.Context, env *Env, link string) ([]byte, error) {
	body, err := env.Fetch.Get(ctx, link)
	var status *fetch.StatusError
	if errors.As(err, &status) && status.Code == http.StatusNotFound {
		alt := strings.Replace(link, "Sports-Wagering", "SW", 1)
		logger.Debug("Trying abbreviated report name", logger.Fields{"url": alt})
		return env.Fetch.Get(ctx, alt)
	}
	return body, err
}

// parseMaryland reads the licensee table. A "Combined" row closes the retail
// section and, from September 2022, a second one closes the online section
// whose first row repeats the header.
func parseMaryland(t *table.Table, month time.Time) ([]record.Record, error) {
	if err := requireColumns(t, "Licensee"); err != nil {
		return nil, err
	}
	t = t.DropSparseColumns(5)
	lic := t.ColumnIndex("Licensee")
	if lic < 0 {
		return nil, record.Invalid(strings.Join(t.Columns, ", "), "a filled Licensee column")
	}
	t = t.Filter(func(row []string) bool { return row[lic] != "" }).DropSparseRows(5).ResetIndex()

	ranges := t.SelectAt(lic).SliceByMarker(func(v string) bool { return v == "Combined" })
	if len(ranges) == 0 {
		return nil, record.Invalid(strings.Join(t.Column("Licensee"), " | "), "a Combined row")
	}

	mapping := marylandColumns
	if month.Before(marylandOnlineStart) {
		mapping = marylandEarlyColumns
		ranges = ranges[:1]
	} else if len(ranges) > 2 {
		return nil, record.Invalid(fmt.Sprint(len(ranges)), "at most retail and online sections")
	}
	t = t.Rename(mapping)

	var out []record.Record
	for i, part := range t.SplitByRows(ranges) {
		sub := record.Retail
		if i == 1 {
			sub = record.Online
			part = part.SliceRows(1, part.Len())
		}
		for r := 0; r < part.Len(); r++ {
			rec := record.New(marylandSchema, month, part.Get(r, "Licensee"))
			rec.SubCategory = sub
			for _, name := range marylandSchema.Amounts {
				rec.SetAmount(name, part.Get(r, name))
			}
			out = append(out, rec)
		}
	}
	return out, nil
}
