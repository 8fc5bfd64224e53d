package jurisdiction

import (
	"context"
	"fmt"
	"time"

	"github.com/pfrederiksen/gaming-revenue/internal/logger"
	"github.com/pfrederiksen/gaming-revenue/internal/record"
	"github.com/pfrederiksen/gaming-revenue/internal/table"
)

const (
	illinoisURL      = "https://www.igb.illinois.gov/SportsReports.aspx"
	illinoisDownload = "AllActivityDetail.csv"
	// rows above the CSV header
	illinoisPreamble = 3
)

// illinoisFirstMonth is the first month sports wagering was reported
var illinoisFirstMonth = time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC)

var illinoisSchema = &record.Schema{
	Name:        "Illinois (OSB)",
	State:       "Illinois",
	Category:    record.CategoryOSB,
	SubCategory: true,
	Labels:      []string{"Sport Level"},
	Amounts:     []string{"Tier 1 Wagers", "Tier 1 Handle", "Tier 2 Wagers", "Tier 2 Handle"},
	SortBy:      []string{"Sport Level", record.ColSubCategory},
	Orders: map[string][]string{
		"Sport Level":         {"Professional", "College", "Motor Race"},
		record.ColSubCategory: {record.Retail, record.Online, record.Total},
	},
}

var illinoisOSB = Driver{
	Key:    "illinois-osb",
	Schema: illinoisSchema,
	Sources: func(ctx context.Context, env *Env) ([]Extractor, error) {
		months, err := illinoisMonths(env)
		if err != nil {
			return nil, err
		}
		form := &illinoisForm{env: env}
		out := make([]Extractor, 0, len(months))
		for _, m := range months {
			name := fmt.Sprintf("%s#%s", illinoisURL, m.Format("2006-01"))
			out = append(out, newSource(name, func(ctx context.Context) ([]record.Record, error) {
				data, err := form.report(ctx, m)
				if err != nil {
					return nil, err
				}
				rows, err := readCSV(data)
				if err != nil {
					return nil, err
				}
				return parseIllinois(table.FromRecords(rows, illinoisPreamble), m)
			}))
		}
		return out, nil
	},
}

// illinoisMonths starts the month after the newest prior row and stops three
// months before the current one, since recent reports are still revised
func illinoisMonths(env *Env) ([]time.Time, error) {
	start := illinoisFirstMonth
	latest, err := env.Store.LatestDate(illinoisSchema)
	if err != nil {
		return nil, err
	}
	if !latest.IsZero() {
		start = latest.AddDate(0, 1, 0)
	}
	end := record.FirstOfMonth(env.now()).AddDate(0, -3, 0)
	if start.After(end) {
		logger.Info("Illinois is up to date", logger.Fields{"latest": latest.Format("2006-01")})
		return nil, nil
	}
	return record.Months(start, end), nil
}

// illinoisForm drives the report form. The browser starts on first use and
// is released with the driver's Env.
type illinoisForm struct {
	env     *Env
	browser FormBrowser
}

func (f *illinoisForm) session(ctx context.Context) (FormBrowser, error) {
	if f.browser != nil {
		return f.browser, nil
	}
	if f.env.Browser == nil {
		return nil, ErrNoBrowser
	}
	b, err := f.env.Browser(ctx)
	if err != nil {
		return nil, err
	}
	f.env.track(b)
	if err := b.Navigate(illinoisURL); err != nil {
		return nil, err
	}
	f.browser = b
	return b, nil
}

// report selects month as both ends of the date range and downloads the CSV
func (f *illinoisForm) report(ctx context.Context, month time.Time) ([]byte, error) {
	b, err := f.session(ctx)
	if err != nil {
		return nil, err
	}
	if err := b.ResetDownloads(); err != nil {
		return nil, err
	}
	name, year := month.Format("January"), month.Format("2006")
	for i, text := range []string{name, year, name, year} {
		if err := b.SelectOption(".interactiveDateData", i, text); err != nil {
			return nil, err
		}
	}
	if err := b.Click(`input[value="ViewCSV"]`); err != nil {
		return nil, err
	}
	if err := b.Click(".button"); err != nil {
		return nil, err
	}
	return b.Download(illinoisDownload)
}

var illinoisLocations = map[string]string{
	"In-Person Wagering": record.Retail,
	"Online Wagering":    record.Online,
}

// parseIllinois maps the activity detail export for one month
func parseIllinois(t *table.Table, month time.Time) ([]record.Record, error) {
	t = t.DropEmptyColumns()
	if err := requireColumns(t, append([]string{"Location Type", "Licensee", "Sport Level"}, illinoisSchema.Amounts...)...); err != nil {
		return nil, err
	}

	out := make([]record.Record, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		licensee := t.Get(i, "Licensee")
		if licensee == "" {
			continue
		}
		r := record.New(illinoisSchema, month, licensee)
		r.SubCategory = t.Get(i, "Location Type")
		if sub, ok := illinoisLocations[r.SubCategory]; ok {
			r.SubCategory = sub
		}
		r.SetLabel("Sport Level", t.Get(i, "Sport Level"))
		for _, name := range illinoisSchema.Amounts {
			r.SetAmount(name, t.Get(i, name))
		}
		out = append(out, r)
	}
	return out, nil
}
