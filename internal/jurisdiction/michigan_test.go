package jurisdiction

import (
	"testing"
	"time"

	"github.com/pfrederiksen/gaming-revenue/internal/pdftext"
	"github.com/pfrederiksen/gaming-revenue/internal/record"
	"github.com/pfrederiksen/gaming-revenue/internal/table"
	"github.com/pfrederiksen/gaming-revenue/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func michiganRows() [][]string {
	return [][]string{
		{"Internet Sports Betting", "Calendar Year 2023", "", "", "", "", "", "", "", ""},
		{"Casino", "MGM Grand Detroit", "", "", "", "MotorCity", "", "", "", "City of Detroit"},
		{"Provider", "BetMGM", "", "", "", "FanDuel", "", "", "", ""},
		{"", "", "", "", "", "", "", "", "", ""},
		{"", "", "", "", "", "", "", "", "", ""},
		{"Month", "Total Handle", "Gross", "Adjusted", "State Tax", "Total Handle", "Gross", "Adjusted", "State Tax", "City Tax"},
		{"January", "1,000", "100", "90", "8", "2,000", "200", "180", "16", "30"},
		{"February", "1,100", "110", "99", "9", "0", "0", "0", "0", "10"},
		{"March", "0", "0", "0", "0", "0", "0", "0", "0", "0"},
		{"Total", "2,100", "210", "189", "17", "2,000", "200", "180", "16", "40"},
	}
}

func TestParseMichigan(t *testing.T) {
	records, err := parseMichigan(table.FromRecords(michiganRows(), 0), michiganOSBSchema)
	require.NoError(t, err)
	require.Len(t, records, 6)

	mgm := records[0]
	assert.Equal(t, month(2023, time.January), mgm.Date)
	assert.Equal(t, "MGM Grand Detroit", mgm.Provider)
	assert.Equal(t, "BetMGM", mgm.SubProvider)
	assert.Equal(t, "Internet", mgm.SubCategory)
	assert.Equal(t, 1000.0, amount(t, mgm, "Total Handle"))
	assert.Equal(t, 90.0, amount(t, mgm, "Adjusted Gross Sports Betting Receipts"))
	assert.Equal(t, 8.0, amount(t, mgm, "Internet Sports Betting State Tax"))

	assert.Equal(t, "MotorCity", records[1].Provider)
	assert.Equal(t, 2000.0, amount(t, records[1], "Total Handle"))

	city := records[2]
	assert.Equal(t, "City of Detroit", city.Provider)
	assert.Equal(t, 30.0, amount(t, city, michiganCityTax))

	feb := records[4]
	assert.Equal(t, month(2023, time.February), feb.Date)
	_, ok := feb.Amount("Total Handle")
	assert.False(t, ok, "zero figures are blanked")
}

func TestParseMichigan_NoYear(t *testing.T) {
	rows := michiganRows()
	rows[0][1] = "Calendar Year"
	_, err := parseMichigan(table.FromRecords(rows, 0), michiganIGamingSchema)
	assertInvalid(t, err)
}

func TestParseMichigan_RaggedColumns(t *testing.T) {
	rows := michiganRows()
	for i := range rows {
		rows[i] = append(rows[i], "x")
	}
	_, err := parseMichigan(table.FromRecords(rows, 0), michiganOSBSchema)
	assertInvalid(t, err)
}

func TestParseMichiganRetail(t *testing.T) {
	doc := testutil.NewPDF()
	doc.AddPage(792, 612).
		Text(50, 570, 10, "Retail Sports Betting Report - March, 2023").
		Grid(50, 520, []float64{120, 90, 90, 90, 90}, 24, 8, [][]string{
			{"Casino", "Total\nHandle", "Gross\nReceipts", "State Tax", "City Wagering\nTax"},
			{"MGM Grand\nDetroit", "$1,000", "$100", "$4", "$5"},
			{"MotorCity", "$2,000", "($50)", "$0", "$0"},
			{"Total", "$3,000", "$50", "$4", "$5"},
			{"Prior Month", "$2,500", "$40", "$3", "$4"},
		})

	pages, err := pdftext.ReadPages(doc.WriteFile(t, t.TempDir(), "retail.pdf"))
	require.NoError(t, err)

	records, err := parseMichiganRetail(pages[0])
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "MGM Grand Detroit", records[0].Provider)
	assert.Equal(t, month(2023, time.March), records[0].Date)
	assert.Equal(t, record.Retail, records[0].SubCategory)
	assert.Equal(t, 1000.0, amount(t, records[0], "Total Handle"))
	assert.Equal(t, 5.0, amount(t, records[0], "City Wagering Tax"))
	assert.Equal(t, -50.0, amount(t, records[1], "Gross Receipts"))
	assert.Equal(t, "Total", records[2].Provider)
}
