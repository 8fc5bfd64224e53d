package jurisdiction

import (
	"context"
	"testing"
	"time"

	"github.com/pfrederiksen/gaming-revenue/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewYorkProvider(t *testing.T) {
	assert.Equal(t, "FanDuel", newYorkProvider("https://www.gaming.ny.gov/pdf/Monthly%20Mobile%20Sports%20Wagering%20Report%20FanDuel.xlsx"))
	assert.Equal(t, "", newYorkProvider("https://www.gaming.ny.gov/pdf/"))
}

func TestNewYorkOSB_Sources(t *testing.T) {
	listing := `<html><body>
<a href="/gaming/docs/Monthly Mobile Sports Wagering Report FanDuel.xlsx">FanDuel</a>
<a href="/gaming/docs/Weekly Mobile Sports Wagering Report FanDuel.xlsx">Weekly</a>
<a href="/gaming/docs/Monthly Mobile Sports Wagering Report FanDuel.pdf">PDF</a>
</body></html>`
	report := testutil.WorkbookBytes(t,
		testutil.Sheet{Name: "FanDuel", Rows: [][]interface{}{
			testutil.Row("Week Ending", "Handle", "Gross", "GGR"),
			testutil.Row(time.Date(2023, time.January, 8, 0, 0, 0, 0, time.UTC), 10000, 1200, 1000.75),
			testutil.Row(time.Date(2023, time.January, 15, 0, 0, 0, 0, time.UTC), 9000, 600, 500.2),
			testutil.Row(1, 1, 1, 1),
			testutil.Row("Total", 19000, 1800, 1500.95),
		}},
		testutil.Sheet{Name: "Notes", Rows: [][]interface{}{testutil.Row("Figures are unaudited")}},
	)

	routes := fixtures{}
	routes.add(newYorkListing, []byte(listing))
	link := "https://www.gaming.ny.gov/gaming/docs/Monthly%20Mobile%20Sports%20Wagering%20Report%20FanDuel.xlsx"
	routes.add(link, report)
	env := newEnv(t, routes, month(2023, time.March))

	extractors, err := newYorkOSB.Sources(context.Background(), env)
	require.NoError(t, err)
	require.Len(t, extractors, 1)
	assert.Equal(t, link, extractors[0].Source())

	records := produceAll(t, extractors)
	require.Len(t, records, 2)
	for _, r := range records {
		assert.Equal(t, "FanDuel", r.Provider)
		assert.Equal(t, month(2023, time.January), r.Date)
	}
	assert.Equal(t, 1000.0, amount(t, records[0], "GGR"))
	assert.Equal(t, 500.0, amount(t, records[1], "GGR"))
}

func TestParseNewYork_NoGGR(t *testing.T) {
	data := testutil.WorkbookBytes(t, testutil.Sheet{Name: "Sheet", Rows: [][]interface{}{testutil.Row("Week", "Handle")}})
	f, err := openWorkbook(data)
	require.NoError(t, err)
	defer f.Close() // nolint:errcheck

	_, err = parseNewYork(f, "FanDuel")
	assertInvalid(t, err)
}
