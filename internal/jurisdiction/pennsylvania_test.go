package jurisdiction

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/pfrederiksen/gaming-revenue/internal/record"
	"github.com/pfrederiksen/gaming-revenue/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPennsylvania_Sources(t *testing.T) {
	tests := []struct {
		now  time.Time
		want int
	}{
		{time.Date(2023, time.August, 15, 0, 0, 0, 0, time.UTC), 5},
		{time.Date(2023, time.March, 15, 0, 0, 0, 0, time.UTC), 4},
	}
	for _, tt := range tests {
		env := newEnv(t, fixtures{}, tt.now)
		extractors, err := pennsylvaniaOSB.Sources(context.Background(), env)
		require.NoError(t, err)
		require.Len(t, extractors, tt.want)
		assert.Equal(t, fmt.Sprintf(pennsylvaniaURL, "Sports_Wagering", 2019, 2020), extractors[0].Source())
	}
}

func pennsylvaniaSportsSheet() *table.Table {
	return table.FromRecords([][]string{
		{"", "July 2022", "August 2022", "", "FY 2022/2023", "FY 2021/2022", "% Change"},
		{"Valley Forge*", "", "", "", "", "", ""},
		{"Total Sports Wagering", "", "", "", "", "", ""},
		{"Handle", "1,000", "2,000", "", "3,000", "2,500", "20%"},
		{"Revenue", "100", "200", "", "300", "250", "20%"},
		{"Promotional Credits", "10", "20", "", "30", "25", "20%"},
		{"Gross Revenue (Taxable)", "90", "180", "", "270", "225", "20%"},
		{"Retail Sports Wagering", "", "", "", "", "", ""},
		{"Handle", "400", "800", "", "1,200", "1,000", "20%"},
		{"Gross Revenue (Taxable)", "40", "80", "", "120", "100", "20%"},
		{"Online Sports Wagering", "", "", "", "", "", ""},
		{"Handle", "600", "1,200", "", "1,800", "1,500", "20%"},
		{"Revenue", "60", "120", "", "180", "150", "20%"},
		{"Promotional Credits", "10", "20", "", "30", "25", "20%"},
		{"Gross Revenue (Taxable)", "50", "100", "", "150", "125", "20%"},
	}, 0)
}

func TestParsePennsylvania_Sports(t *testing.T) {
	records, err := parsePennsylvania(pennsylvaniaSportsSheet(), pennsylvaniaSports)
	require.NoError(t, err)
	require.Len(t, records, 6)

	total, retail, online := records[0], records[1], records[2]
	assert.Equal(t, "Valley Forge", total.Provider)
	assert.Equal(t, month(2022, time.July), total.Date)
	assert.Equal(t, record.Total, total.SubCategory)
	assert.Equal(t, 1000.0, amount(t, total, "Handle"))
	assert.Equal(t, 100.0, amount(t, total, "Revenue"))
	assert.Equal(t, 10.0, amount(t, total, "Promotional Credits"))
	assert.Equal(t, 90.0, amount(t, total, "Gross Revenue"))

	assert.Equal(t, record.Retail, retail.SubCategory)
	assert.Equal(t, 400.0, amount(t, retail, "Handle"))
	assert.Equal(t, 40.0, amount(t, retail, "Gross Revenue"))
	_, ok := retail.Amount("Promotional Credits")
	assert.False(t, ok)

	assert.Equal(t, record.Online, online.SubCategory)
	assert.Equal(t, 50.0, amount(t, online, "Gross Revenue"))

	assert.Equal(t, month(2022, time.August), records[3].Date)
	assert.Equal(t, 2000.0, amount(t, records[3], "Handle"))
}

func TestParsePennsylvania_Interactive(t *testing.T) {
	sheet := table.FromRecords([][]string{
		{"", "July 2022", "FY 2022/2023"},
		{"Rivers Casino", "", ""},
		{"Interactive Slots", "", ""},
		{"Wagers Received", "5,000", "5,000"},
		{"Amount Won", "4,500", "4,500"},
		{"Gross Revenue", "500", "500"},
		{"Interactive Banking Tables", "", ""},
		{"Wagers Received", "1,000", "1,000"},
		{"Gross Revenue", "80", "80"},
		{"Interactive Non-Banking Tables", "", ""},
		{"Revenue (Rake & Tournament Fees)", "30", "30"},
	}, 0)
	records, err := parsePennsylvania(sheet, pennsylvaniaInteractive)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "Rivers Casino", records[0].Provider)
	assert.Equal(t, "Interactive Slots", records[0].SubCategory)
	assert.Equal(t, 4500.0, amount(t, records[0], "Amount Won"))
	assert.Equal(t, 1000.0, amount(t, records[1], "Wagers Received"))
	assert.Equal(t, 80.0, amount(t, records[1], "Gross Revenue"))
	assert.Equal(t, "Non-Banking Tables (Poker)", records[2].SubCategory)
	assert.Equal(t, 30.0, amount(t, records[2], "Gross Revenue"))
}

func TestParsePennsylvania_NoOperators(t *testing.T) {
	sheet := table.FromRecords([][]string{
		{"", "July 2022", "FY"},
		{"Handle", "1", "1"},
	}, 0)
	_, err := parsePennsylvania(sheet, pennsylvaniaSports)
	assertInvalid(t, err)
}
