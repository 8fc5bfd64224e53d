// Package workbook persists revenue records as one xlsx file per jurisdiction
// and category, merging each run into the prior published output.
package workbook

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfrederiksen/gaming-revenue/internal/logger"
	"github.com/pfrederiksen/gaming-revenue/internal/record"
	"github.com/xuri/excelize/v2"
)

// ErrAmbiguousPrior means more than one prior workbook matches a schema. The
// merge cannot pick one, so the run stops.
var ErrAmbiguousPrior = errors.New("more than one prior workbook found")

const sheetName = "Sheet1"

// Store reads prior workbooks from priorDir and writes merged ones to outDir
type Store struct {
	outDir   string
	priorDir string
}

// New creates a Store, creating outDir when needed
func New(outDir, priorDir string) (*Store, error) {
	outDir, err := expand(outDir)
	if err != nil {
		return nil, err
	}
	priorDir, err = expand(priorDir)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &Store{outDir: outDir, priorDir: priorDir}, nil
}

func expand(dir string) (string, error) {
	if strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		return filepath.Join(home, dir[2:]), nil
	}
	return dir, nil
}

// OutputPath returns where the schema's workbook is written
func (s *Store) OutputPath(schema *record.Schema) string {
	return filepath.Join(s.outDir, schema.FileName())
}

// FindPrior searches the prior directory tree for the schema's workbook. It
// returns "" when there is none and ErrAmbiguousPrior when there are several.
func (s *Store) FindPrior(schema *record.Schema) (string, error) {
	if s.priorDir == "" {
		return "", nil
	}
	if _, err := os.Stat(s.priorDir); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("reading prior directory: %w", err)
	}

	want := schema.FileName()
	var matches []string
	err := filepath.WalkDir(s.priorDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == want {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("searching prior directory: %w", err)
	}

	switch len(matches) {
	case 0:
		return "", nil
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: %s matches %s", ErrAmbiguousPrior, want, strings.Join(matches, ", "))
	}
}

// LatestDate returns the newest Date in the prior workbook, or the zero time
// when there is no prior output
func (s *Store) LatestDate(schema *record.Schema) (time.Time, error) {
	path, err := s.FindPrior(schema)
	if err != nil || path == "" {
		return time.Time{}, err
	}
	records, _, err := Load(path, schema)
	if err != nil {
		return time.Time{}, err
	}
	var latest time.Time
	for _, r := range records {
		if r.Date.After(latest) {
			latest = r.Date
		}
	}
	return latest, nil
}

// MergeResult summarizes one merge
type MergeResult struct {
	Path    string
	Prior   int // distinct rows in the prior workbook
	Scraped int // non-empty rows from this run
	Added   int // rows not already present, including replaced monthly totals
	Total   int
}

// MergeAndSave normalizes the scraped records, drops empty ones, appends them
// to the prior workbook, removes exact duplicates, sorts and rewrites the whole
// output file. For aggregated schemas a fresh monthly row replaces any prior
// row with the same text columns.
func (s *Store) MergeAndSave(scraped []record.Record, schema *record.Schema) (*MergeResult, error) {
	fresh := make([]record.Record, 0, len(scraped))
	for _, r := range scraped {
		n := r.Normalize(schema)
		if n.Empty(schema) {
			continue
		}
		fresh = append(fresh, n)
	}
	if schema.Aggregate {
		fresh = aggregate(fresh, schema)
	}

	var prior []record.Record
	path, err := s.FindPrior(schema)
	if err != nil {
		return nil, err
	}
	if path != "" {
		logger.Info("Combining with prior workbook", logger.Fields{"path": path})
		loaded, _, err := Load(path, schema)
		if err != nil {
			return nil, fmt.Errorf("loading prior workbook: %w", err)
		}
		for _, r := range loaded {
			prior = append(prior, r.Normalize(schema))
		}
	} else {
		logger.Info("No prior workbook found", logger.Fields{"workbook": schema.FileName()})
	}

	columns := schema.Columns(append(append([]record.Record(nil), prior...), fresh...))
	prior = dedupe(prior, columns)
	priorCount := len(prior)
	if schema.Aggregate {
		// a month re-aggregated from a longer weekly file supersedes its
		// earlier partial total
		prior = dropSuperseded(prior, fresh, schema.TextColumns())
	}
	combined := dedupe(append(append([]record.Record(nil), prior...), fresh...), columns)
	record.Sort(combined, schema)

	result := &MergeResult{
		Path:    s.OutputPath(schema),
		Prior:   priorCount,
		Scraped: len(fresh),
		Added:   len(combined) - len(prior),
		Total:   len(combined),
	}
	if err := Save(result.Path, combined, schema); err != nil {
		return nil, err
	}
	return result, nil
}

func dedupe(records []record.Record, columns []string) []record.Record {
	seen := make(map[string]bool, len(records))
	out := make([]record.Record, 0, len(records))
	for _, r := range records {
		k := r.Key(columns)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}

// dropSuperseded removes prior rows whose text columns match a fresh row
func dropSuperseded(prior, fresh []record.Record, text []string) []record.Record {
	replaced := make(map[string]bool, len(fresh))
	for _, r := range fresh {
		replaced[r.Key(text)] = true
	}
	out := prior[:0]
	for _, r := range prior {
		if replaced[r.Key(text)] {
			continue
		}
		out = append(out, r)
	}
	return out
}

// aggregate sums rows sharing every text column, keeping first-seen order
func aggregate(records []record.Record, schema *record.Schema) []record.Record {
	text := schema.TextColumns()
	index := make(map[string]int)
	var out []record.Record
	for _, r := range records {
		k := r.Key(text)
		i, ok := index[k]
		if !ok {
			index[k] = len(out)
			out = append(out, r)
			continue
		}
		for _, name := range r.Fields() {
			if v, ok := r.Amount(name); ok {
				out[i].AddValue(name, v)
			}
		}
	}
	return out
}

// Save writes records to path with a fresh zero-based Index column. The file
// is written to a temporary name and renamed into place.
func Save(path string, records []record.Record, schema *record.Schema) error {
	f := excelize.NewFile()
	defer f.Close() // nolint:errcheck

	columns := schema.Columns(records)
	amounts := make(map[string]bool)
	for _, col := range schema.AmountColumns(records) {
		amounts[col] = true
	}
	if err := f.SetSheetRow(sheetName, "A1", &columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, r := range records {
		row := make([]interface{}, len(columns))
		for c, col := range columns {
			switch {
			case col == record.ColIndex:
				row[c] = i
			case col == record.ColDate:
				row[c] = r.Date
			case amounts[col]:
				if v, ok := r.Amount(col); ok {
					row[c] = v
				}
			default:
				row[c] = r.Value(col)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}

	if err := styleSheet(f, columns, amounts, len(records)); err != nil {
		return err
	}

	tmp := strings.TrimSuffix(path, ".xlsx") + ".tmp.xlsx"
	if err := f.SaveAs(tmp); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp) // nolint:errcheck
		return fmt.Errorf("replacing workbook: %w", err)
	}
	return nil
}

func styleSheet(f *excelize.File, columns []string, amounts map[string]bool, rows int) error {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	dateFmt := "yyyy-mm-dd"
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	if err != nil {
		return err
	}
	amountFmt := "#,##0.00"
	amountStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &amountFmt})
	if err != nil {
		return err
	}

	last, err := excelize.ColumnNumberToName(len(columns))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", last+"1", bold); err != nil {
		return err
	}

	for c, col := range columns {
		name, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return err
		}
		width := 16.0
		switch col {
		case record.ColIndex:
			width = 8
		case record.ColProvider, record.ColSubProvider, record.ColCategory:
			width = 28
		}
		if err := f.SetColWidth(sheetName, name, name, width); err != nil {
			return err
		}
		if rows == 0 {
			continue
		}

		from, to := fmt.Sprintf("%s2", name), fmt.Sprintf("%s%d", name, rows+1)
		switch {
		case col == record.ColDate:
			err = f.SetCellStyle(sheetName, from, to, dateStyle)
		case amounts[col]:
			err = f.SetCellStyle(sheetName, from, to, amountStyle)
		}
		if err != nil {
			return err
		}
	}
	return f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}
