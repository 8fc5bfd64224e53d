package jurisdiction

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/gaming-revenue/internal/record"
	"github.com/pfrederiksen/gaming-revenue/internal/table"
	"github.com/xuri/excelize/v2"
)

const (
	indianaURL = "https://www.in.gov/igc/files/%s-Revenue.xlsx"
	// rows above the header of each revenue sheet
	indianaPreamble = 3
)

// indianaFirstMonth is the first month sports wagering was reported. Casino
// figures are read from the same workbooks.
var indianaFirstMonth = time.Date(2019, time.September, 1, 0, 0, 0, 0, time.UTC)

// indianaBlocks are the three side-by-side operator columns of the sheet
var indianaBlocks = []table.Range{{Start: 0, End: 4}, {Start: 5, End: 9}, {Start: 10, End: 14}}

var indianaSchema = &record.Schema{
	Name:        "Indiana (OSB)",
	State:       "Indiana",
	Category:    record.CategoryOSB,
	SubProvider: true,
	Amounts:     []string{"Handle", "AGR"},
}

var indianaOSB = Driver{
	Key:    "indiana-osb",
	Schema: indianaSchema,
	Sources: func(ctx context.Context, env *Env) ([]Extractor, error) {
		return indianaSources(env, func(f *excelize.File, m time.Time) ([]record.Record, error) {
			// sports wagering is the last sheet
			sheet, err := sheetAt(f, -1)
			if err != nil {
				return nil, err
			}
			rows, err := sheetRows(f, sheet)
			if err != nil {
				return nil, err
			}
			return parseIndiana(table.FromRecords(rows, indianaPreamble), m)
		}), nil
	},
}

var indianaCasinoSchema = &record.Schema{
	Name:     "Indiana (Casino)",
	State:    "Indiana",
	Category: record.CategoryCasino,
}

var indianaCasino = Driver{
	Key:    "indiana-casino",
	Schema: indianaCasinoSchema,
	Sources: func(ctx context.Context, env *Env) ([]Extractor, error) {
		return indianaSources(env, func(f *excelize.File, m time.Time) ([]record.Record, error) {
			// casinos are the first sheet
			sheet, err := sheetAt(f, 0)
			if err != nil {
				return nil, err
			}
			rows, err := sheetRows(f, sheet)
			if err != nil {
				return nil, err
			}
			return parseIndianaCasino(table.FromRecords(rows, indianaPreamble), m)
		}), nil
	},
}

// indianaSources lists the monthly revenue workbooks newest first, skipping
// the current month which is not yet published
func indianaSources(env *Env, parse func(f *excelize.File, m time.Time) ([]record.Record, error)) []Extractor {
	months := record.Months(indianaFirstMonth, env.now())
	out := make([]Extractor, 0, len(months))
	for i := len(months) - 2; i >= 0; i-- {
		m := months[i]
		link := fmt.Sprintf(indianaURL, m.Format("2006-01"))
		out = append(out, newSource(link, func(ctx context.Context) ([]record.Record, error) {
			body, err := env.Fetch.Get(ctx, link)
			if err != nil {
				return nil, err
			}
			f, err := openWorkbook(body)
			if err != nil {
				return nil, err
			}
			defer f.Close() // nolint:errcheck

			return parse(f, m)
		}))
	}
	return out
}

const (
	indianaCasinoMarker = "TOTAL"
	// the report prints this casino once in the last section but twice in
	// the first, so its row is doubled to keep the sections aligned
	indianaRepeatedCasino = "Hard Rock Casino Northern Indiana"
)

// parseIndianaCasino reads the casino sheet. It holds three sections stacked
// vertically, each ending in a TOTAL row. The first carries the casino names
// under TOTAL TAX, the other two have their own header rows. Row i of every
// section belongs to the same casino, so the sections are joined side by side.
func parseIndianaCasino(t *table.Table, month time.Time) ([]record.Record, error) {
	t = t.DropEmptyColumns().Filter(func(row []string) bool {
		return len(row) > 1 && filledCells(row[1:]) > 0
	})
	if t.Width() == 0 || t.Columns[0] != "TOTAL TAX" {
		return nil, record.Invalid(strings.Join(t.Columns, ", "), "a TOTAL TAX first column")
	}

	ranges := t.SliceByMarker(func(s string) bool { return strings.TrimSpace(s) == indianaCasinoMarker })
	if len(ranges) != 3 {
		return nil, record.Invalid(fmt.Sprint(len(ranges)), "three sections ending in TOTAL")
	}
	parts := t.SplitByRows(ranges)

	casinos := parts[0]
	casinoAmounts := casinos.SliceColumns(1, casinos.Width())
	admissions := parts[1].PromoteHeader()
	admissions = admissions.SliceColumns(2, admissions.Width()).FillDown()
	wagering := parts[2].PromoteHeader()
	col := wagering.ColumnIndex("WAGERING TAX")
	if col < 0 {
		return nil, record.Invalid(strings.Join(wagering.Columns, ", "), "a WAGERING TAX column")
	}
	wagering = wagering.RepeatRows(func(row []string) bool {
		return strings.TrimSpace(row[col]) == indianaRepeatedCasino
	})
	// drop the marker and casino name columns
	var keep []int
	for c := 1; c < wagering.Width(); c++ {
		if c != col {
			keep = append(keep, c)
		}
	}
	wagering = wagering.SelectAt(keep...)

	out := make([]record.Record, 0, casinos.Len())
	for i := 0; i < casinos.Len(); i++ {
		provider := strings.TrimSpace(casinos.Cell(i, 0))
		if provider == "" {
			continue
		}
		r := record.New(indianaCasinoSchema, month, provider)
		setIndianaAmounts(&r, casinoAmounts, i)
		setIndianaAmounts(&r, admissions, i)
		setIndianaAmounts(&r, wagering, i)
		out = append(out, r)
	}
	return out, nil
}

// setIndianaAmounts copies row i of a section into r, one amount per labeled
// column. Sections shorter than the casino list leave the rest missing.
func setIndianaAmounts(r *record.Record, section *table.Table, i int) {
	if i >= section.Len() {
		return
	}
	for c, name := range section.Columns {
		name = strings.TrimSpace(name)
		if name == "" || strings.HasPrefix(name, "Unnamed: ") {
			continue
		}
		r.SetAmount(name, section.Cell(i, c))
	}
}

// parseIndiana splits the sheet into its operator blocks and walks each one
func parseIndiana(t *table.Table, month time.Time) ([]record.Record, error) {
	var out []record.Record
	for _, block := range t.SplitByColumns(indianaBlocks) {
		if block.Len() == 0 {
			continue
		}
		if block.Width() != 3 {
			return nil, record.Invalid(fmt.Sprint(block.Columns), "operator blocks of label, handle and AGR columns")
		}
		out = append(out, walkIndianaBlock(block, month)...)
	}
	return out, nil
}

type indianaState int

const (
	indianaIdle indianaState = iota
	indianaAccumulating
)

// walkIndianaBlock reads rows of (sub-provider, handle, AGR). A row whose
// handle cell reads "Handle" starts an operator. Its skins follow, each adding
// to a running handle, until the "Taxable AGR" row, which is emitted as the
// operator's Total with the summed handle. Adjustments rows are passed through
// without touching the sum.
func walkIndianaBlock(block *table.Table, month time.Time) []record.Record {
	var (
		out      []record.Record
		state    = indianaIdle
		provider string
		total    float64
	)
	for i := 0; i < block.Len(); i++ {
		sub, handle, agr := block.Cell(i, 0), block.Cell(i, 1), block.Cell(i, 2)
		if handle == "Handle" {
			provider = sub
			state = indianaAccumulating
			continue
		}
		if state != indianaAccumulating {
			continue
		}

		r := record.New(indianaSchema, month, provider)
		r.SetAmount("AGR", agr)
		switch sub {
		case "Adjustments":
			r.SubProvider = sub
			r.SetAmount("Handle", handle)
		case "Taxable AGR":
			r.SubProvider = record.Total
			r.SetValue("Handle", total)
			total = 0
			state = indianaIdle
		default:
			r.SubProvider = sub
			r.SetAmount("Handle", handle)
			if v, ok := table.ToNumeric(handle); ok {
				total += v
			}
		}
		out = append(out, r)
	}
	return out
}
