package cli

import (
	"sort"
	"strings"

	"github.com/pfrederiksen/gaming-revenue/internal/record"
)

// SortOrder represents the available sorting options for the show command
type SortOrder string

const (
	SortByDate     SortOrder = "date"
	SortByProvider SortOrder = "provider"
	SortByAmount   SortOrder = "amount"
)

// sortRecords sorts records for display. SortByDate keeps the workbook order;
// SortByAmount ranks by column, largest first, with missing values last.
func sortRecords(records []record.Record, schema *record.Schema, order SortOrder, column string) {
	switch order {
	case SortByDate:
		record.Sort(records, schema)
	case SortByProvider:
		sort.SliceStable(records, func(i, j int) bool {
			pi, pj := strings.ToLower(records[i].Provider), strings.ToLower(records[j].Provider)
			if pi != pj {
				return pi < pj
			}
			// If providers are equal, sort by date
			return records[i].Date.Before(records[j].Date)
		})
	case SortByAmount:
		sort.SliceStable(records, func(i, j int) bool {
			vi, oki := records[i].Amount(column)
			vj, okj := records[j].Amount(column)
			if oki != okj {
				// Present values come first
				return oki
			}
			if vi != vj {
				return vi > vj
			}
			return records[i].Date.Before(records[j].Date)
		})
	}
}
