package record

import (
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order by ParseDate
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"01/02/2006",
	"1/2/2006",
	"1/2/06",
	"01-02-06",
	"1-2-06",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2006",
	"Jan 2006",
	"January-2006",
	"Jan-2006",
	"January, 2006",
	"January2006",
	"Jan-06",
	"2006-01",
	"01/2006",
	"1/2006",
}

// excelEpoch is day zero of spreadsheet serial dates
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// ParseDate parses the many date spellings found in published reports,
// including spreadsheet serial numbers. The result is in UTC.
func ParseDate(text string) (time.Time, error) {
	s := strings.Join(strings.Fields(text), " ")
	if s == "" {
		return time.Time{}, &InvalidExtraction{Text: text, Expected: "a date"}
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial > 0 && serial < 2958466 {
			days := int(serial)
			return excelEpoch.AddDate(0, 0, days), nil
		}
		return time.Time{}, &InvalidExtraction{Text: text, Expected: "a date"}
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, &InvalidExtraction{Text: text, Expected: "a date"}
}

// ParseMonth parses text with layout and returns the first of that month
func ParseMonth(text, layout string) (time.Time, error) {
	t, err := time.Parse(layout, strings.TrimSpace(text))
	if err != nil {
		return time.Time{}, &InvalidExtraction{Text: text, Expected: layout}
	}
	return FirstOfMonth(t), nil
}

// FirstOfMonth truncates t to midnight UTC on the first of its month
func FirstOfMonth(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Months returns the first of every month from start through end inclusive
func Months(start, end time.Time) []time.Time {
	start, end = FirstOfMonth(start), FirstOfMonth(end)
	var out []time.Time
	for m := start; !m.After(end); m = m.AddDate(0, 1, 0) {
		out = append(out, m)
	}
	return out
}
