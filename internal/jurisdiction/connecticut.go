package jurisdiction

import (
	"context"
	"fmt"

	"github.com/pfrederiksen/gaming-revenue/internal/record"
	"github.com/pfrederiksen/gaming-revenue/internal/table"
)

const connecticutCSV = "https://data.ct.gov/api/views/%s/rows.csv?accessType=DOWNLOAD&bom=true&format=true"

// Open data dataset ids
const (
	connecticutIGamingID = "imqd-at3c"
	connecticutRetailID  = "yb54-t38r"
	connecticutOnlineID  = "xf6g-659c"
)

var connecticutOSBSchema = &record.Schema{
	Name:        "Connecticut (OSB)",
	State:       "Connecticut",
	Category:    record.CategoryOSB,
	SubCategory: true,
	Amounts:     []string{"Wagers", "Amount Won", "Online Sports Wagering", "Gross Gaming Revenue", "Promotional Credits", "Adjusted Revenue"},
	SortBy:      []string{record.ColSubCategory},
	Orders:      subCategoryOrder,
}

var connecticutIGamingSchema = &record.Schema{
	Name:     "Connecticut (iGaming)",
	State:    "Connecticut",
	Category: record.CategoryIGaming,
	Amounts:  []string{"Wagers", "Amount Won", "Gross Gaming Revenue", "Promotional Credits", "Adjusted Revenue"},
}

// column maps a published column to an output amount
type column struct {
	from, to string
}

var connecticutOSBColumns = []column{
	{"Wagers", "Wagers"},
	{"Patron Winnings", "Amount Won"},
	{"Online Sports Wagering Win/(Loss)", "Online Sports Wagering"},
	{"Unadjusted Monthly Gaming Revenue", "Gross Gaming Revenue"},
	{"Promotional Coupons or Credits Wagered (5)", "Promotional Credits"},
	{"Total Gross Gaming Revenue", "Adjusted Revenue"},
}

var connecticutIGamingColumns = []column{
	{"Wagers", "Wagers"},
	{"Patron Winnings", "Amount Won"},
	{"Online Casino Gaming Win/(Loss)", "Gross Gaming Revenue"},
	{"Promotional Coupons or Credits Wagered (3)", "Promotional Credits"},
	{"Total Gross Gaming Revenue", "Adjusted Revenue"},
}

var connecticutOSB = Driver{
	Key:    "connecticut-osb",
	Schema: connecticutOSBSchema,
	Sources: func(ctx context.Context, env *Env) ([]Extractor, error) {
		return []Extractor{
			connecticutSource(env, connecticutRetailID, connecticutOSBSchema, connecticutOSBColumns, record.Retail),
			connecticutSource(env, connecticutOnlineID, connecticutOSBSchema, connecticutOSBColumns, record.Online),
		}, nil
	},
}

var connecticutIGaming = Driver{
	Key:    "connecticut-igaming",
	Schema: connecticutIGamingSchema,
	Sources: func(ctx context.Context, env *Env) ([]Extractor, error) {
		return []Extractor{
			connecticutSource(env, connecticutIGamingID, connecticutIGamingSchema, connecticutIGamingColumns, ""),
		}, nil
	},
}

func connecticutSource(env *Env, id string, schema *record.Schema, columns []column, sub string) Extractor {
	link := fmt.Sprintf(connecticutCSV, id)
	return newSource(link, func(ctx context.Context) ([]record.Record, error) {
		body, err := env.Fetch.Get(ctx, link)
		if err != nil {
			return nil, err
		}
		rows, err := readCSV(body)
		if err != nil {
			return nil, err
		}
		return parseConnecticut(table.FromRecords(rows, 0), schema, columns, sub)
	})
}

// parseConnecticut maps a monthly licensee export onto records. Month Ending
// dates are moved to the first of their month.
func parseConnecticut(t *table.Table, schema *record.Schema, columns []column, sub string) ([]record.Record, error) {
	need := []string{"Month Ending", "Licensee"}
	for _, c := range columns {
		need = append(need, c.from)
	}
	if err := requireColumns(t, need...); err != nil {
		return nil, err
	}

	out := make([]record.Record, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		raw := t.Get(i, "Month Ending")
		if raw == "" {
			continue
		}
		date, err := record.ParseDate(raw)
		if err != nil {
			return nil, err
		}
		r := record.New(schema, date, t.Get(i, "Licensee"))
		r.SubCategory = sub
		for _, c := range columns {
			r.SetAmount(c.to, t.Get(i, c.from))
		}
		out = append(out, r)
	}
	return out, nil
}
