package table

import (
	"strings"

	"github.com/shopspring/decimal"
)

var numericReplacer = strings.NewReplacer("$", "", ",", "", " ", "", "\u00a0", "", "\n", "")

// ToNumeric parses a printed money amount. Currency symbols, thousands
// separators and whitespace are removed; a parenthesized amount is negative.
// The result is rounded to 2 decimals. ok is false for blank or unparseable text.
func ToNumeric(text string) (value float64, ok bool) {
	s := numericReplacer.Replace(strings.TrimSpace(text))
	if s == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "(") || strings.HasSuffix(s, ")") {
		negative = true
		s = strings.Trim(s, "()")
	}
	// "-$5" and "$-5" both reduce to a leading minus after the replacer
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	if negative {
		d = d.Neg()
	}
	return d.Round(2).InexactFloat64(), true
}

// Round2 rounds a computed amount to cents
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// CategoryOrder returns a rank function for a fixed label ordering. Labels in
// order rank by position; every other label ranks after all of them.
func CategoryOrder(order []string) func(label string) int {
	ranks := make(map[string]int, len(order))
	for i, label := range order {
		if _, seen := ranks[label]; !seen {
			ranks[label] = i
		}
	}
	return func(label string) int {
		if r, ok := ranks[label]; ok {
			return r
		}
		return len(order)
	}
}

// FixWhitespace repairs provider names that a PDF grid spilled across cells.
// A double space marks where the tail of a cell belongs to the next row; an
// empty cell takes the head of the following one. Newlines become spaces.
func FixWhitespace(values []string) []string {
	out := append([]string(nil), values...)
	carry := ""
	for i := range out {
		entry := out[i]
		if strings.TrimSpace(entry) == "" && i+1 < len(out) {
			if head, tail, ok := strings.Cut(out[i+1], "  "); ok {
				entry = head
				out[i+1] = tail
			}
		}
		if carry != "" {
			entry = carry + " " + entry
			carry = ""
		}
		if head, tail, ok := strings.Cut(entry, "  "); ok {
			entry, carry = head, tail
		}
		entry = strings.ReplaceAll(entry, "\n", " ")
		out[i] = strings.ReplaceAll(entry, "  ", " ")
	}
	return out
}
