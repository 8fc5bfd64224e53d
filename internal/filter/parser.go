package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	monthNamePattern  = regexp.MustCompile(`(?i)^([a-z]+)\.?\s+(\d{4})$`)
	monthNumPattern   = regexp.MustCompile(`^(\d{4})-(\d{1,2})$`)
	monthSlashPattern = regexp.MustCompile(`^(\d{1,2})/(\d{4})$`)
	yearPattern       = regexp.MustCompile(`^(\d{4})$`)
	rangePattern      = regexp.MustCompile(`^(.+?)\s+(?:-|to)\s+(.+)$`)
)

// ParseMonth parses a single reporting month.
//
// Supported formats:
//   - "2023-03"
//   - "03/2023"
//   - "Mar 2023" or "March 2023"
//
// The result is the first day of the month in UTC.
func ParseMonth(input string) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, fmt.Errorf("month cannot be empty")
	}

	if m := monthNumPattern.FindStringSubmatch(input); m != nil {
		return monthOf(m[1], m[2])
	}

	if m := monthSlashPattern.FindStringSubmatch(input); m != nil {
		return monthOf(m[2], m[1])
	}

	if m := monthNamePattern.FindStringSubmatch(input); m != nil {
		month := parseMonth(m[1])
		if month == 0 {
			return time.Time{}, fmt.Errorf("invalid month: %s", m[1])
		}
		year, _ := strconv.Atoi(m[2])
		return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC), nil
	}

	return time.Time{}, fmt.Errorf("invalid month %q. Use '2023-03', '03/2023', or 'March 2023'", input)
}

func monthOf(yearText, monthText string) (time.Time, error) {
	year, _ := strconv.Atoi(yearText)
	month, err := strconv.Atoi(monthText)
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("invalid month: %s", monthText)
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), nil
}

// ParseDateRange parses a month range string into start and end months.
//
// Supported formats:
//   - "Mar 2023 - May 2023" or "2023-03 to 2023-05" - Inclusive month range
//   - "March 2023" - Single month
//   - "2023" - Calendar year
//
// Returns (dateFrom, dateTo, error). Both are first-of-month UTC times.
func ParseDateRange(input string) (*time.Time, *time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil, fmt.Errorf("date range cannot be empty")
	}

	if m := yearPattern.FindStringSubmatch(input); m != nil {
		year, _ := strconv.Atoi(m[1])
		from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(year, time.December, 1, 0, 0, 0, 0, time.UTC)
		return &from, &to, nil
	}

	if m := rangePattern.FindStringSubmatch(input); m != nil {
		from, err := ParseMonth(m[1])
		if err != nil {
			return nil, nil, err
		}
		to, err := ParseMonth(m[2])
		if err != nil {
			return nil, nil, err
		}
		if from.After(to) {
			return nil, nil, fmt.Errorf("start month must not be after end month")
		}
		return &from, &to, nil
	}

	month, err := ParseMonth(input)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid date range format. Use 'Mar 2023 - May 2023', 'March 2023', or '2023'")
	}
	to := month
	return &month, &to, nil
}

// parseMonth converts a month name to time.Month
func parseMonth(name string) time.Month {
	name = strings.ToLower(strings.TrimSpace(name))

	months := map[string]time.Month{
		"jan": time.January, "january": time.January,
		"feb": time.February, "february": time.February,
		"mar": time.March, "march": time.March,
		"apr": time.April, "april": time.April,
		"may": time.May,
		"jun": time.June, "june": time.June,
		"jul": time.July, "july": time.July,
		"aug": time.August, "august": time.August,
		"sep": time.September, "sept": time.September, "september": time.September,
		"oct": time.October, "october": time.October,
		"nov": time.November, "november": time.November,
		"dec": time.December, "december": time.December,
	}

	return months[name]
}
