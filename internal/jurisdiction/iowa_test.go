package jurisdiction

import (
	"testing"
	"time"

	"github.com/pfrederiksen/gaming-revenue/internal/pdftext"
	"github.com/pfrederiksen/gaming-revenue/internal/record"
	"github.com/pfrederiksen/gaming-revenue/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIowaTitle(t *testing.T) {
	title, err := iowaTitle([]string{"IOWA RACING AND GAMING COMMISSION", "$0.SPORTS WAGERING REVENUE -- June 2020"})
	require.NoError(t, err)
	assert.Equal(t, "SPORTS WAGERING REVENUE - June 2020", title)

	_, err = iowaTitle([]string{"CASINO REVENUE - June 2020"})
	assertInvalid(t, err)
}

func TestParseIowaGrid(t *testing.T) {
	g := grid(
		[]string{"", "Casino A", "Casino B"},
		[]string{"NET  RECEIPTS", "1,000", "2,000"},
		[]string{"STATE TAX", "67", "134"},
		[]string{"", "Casino C", ""},
		[]string{"NET RECEIPTS", "500", ""},
		[]string{"State Tax", "33", ""},
		[]string{"Notes", "", ""},
	)
	records, err := parseIowaGrid(g, iowaLayouts[1], month(2020, time.June))
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"Casino A", "Casino B", "Casino C"},
		[]string{records[0].Provider, records[1].Provider, records[2].Provider})
	for _, r := range records {
		assert.Equal(t, record.Total, r.SubCategory)
	}
	assert.Equal(t, 2000.0, amount(t, records[1], "NET RECEIPTS"))
	assert.Equal(t, 33.0, amount(t, records[2], "State Tax"))
	assert.Equal(t, []string{"NET RECEIPTS", "STATE TAX"}, records[0].Fields())
}

func TestParseIowaGrid_BackslashLabels(t *testing.T) {
	g := grid(
		[]string{"", "Casino A"},
		[]string{"HANDLE", "9,000"},
		[]string{`\NTERNET PAYOUTS`, "8,000"},
	)
	records, err := parseIowaGrid(g, iowaLayouts[0], month(2020, time.June))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, record.Online, records[0].SubCategory)
	assert.Equal(t, 8000.0, amount(t, records[0], "INTERNET PAYOUTS"))
}

func TestParseIowaGrid_NoMarker(t *testing.T) {
	_, err := parseIowaGrid(grid([]string{"", "Casino A"}, []string{"HANDLE", "1"}), iowaLayouts[1], month(2020, time.June))
	assertInvalid(t, err)
}

func TestParseIowa_Pages(t *testing.T) {
	doc := testutil.NewPDF()
	doc.AddPage(612, 792).
		Text(50, 750, 10, "SPORTS WAGERING REVENUE - June 2020").
		Grid(50, 700, []float64{120, 100, 100}, 20, 8, [][]string{
			{"", "Casino A", "Casino B"},
			{"NET RECEIPTS", "1,000", "2,000"},
			{"STATE TAX", "67", "134"},
		})
	doc.AddPage(612, 792).
		Text(50, 750, 10, "SPORTS WAGERING REVENUE - FY 2020").
		Grid(50, 700, []float64{120, 100}, 20, 8, [][]string{
			{"", "Casino A"},
			{"STATE TAX", "900"},
		})
	// no grid on this page, so it is skipped
	doc.AddPage(612, 792).Text(50, 750, 10, "ONLINE SPORTS WAGERING - June 2020")

	pages, err := pdftext.ReadPages(doc.WriteFile(t, t.TempDir(), "iowa.pdf"))
	require.NoError(t, err)

	records := parseIowa(pages, "https://irgc.iowa.gov/media/june-2020.pdf")
	require.Len(t, records, 2)
	assert.Equal(t, month(2020, time.June), records[0].Date)
	assert.Equal(t, "Casino A", records[0].Provider)
	assert.Equal(t, 67.0, amount(t, records[0], "STATE TAX"))
	assert.Equal(t, "Iowa", records[1].State)
}
