package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/pfrederiksen/gaming-revenue/internal/jurisdiction"
	"github.com/pfrederiksen/gaming-revenue/internal/record"
	"github.com/pfrederiksen/gaming-revenue/internal/runner"
	"github.com/pfrederiksen/gaming-revenue/internal/storage"
	"github.com/shopspring/decimal"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText     OutputFormat = "text"
	FormatJSON     OutputFormat = "json"
	FormatCSV      OutputFormat = "csv"
	FormatMarkdown OutputFormat = "markdown"
)

// parseFormat validates a --format value against the allowed formats
func parseFormat(value string, allowed ...OutputFormat) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(strings.TrimSpace(value)))
	names := make([]string, 0, len(allowed))
	for _, a := range allowed {
		if format == a {
			return format, nil
		}
		names = append(names, "'"+string(a)+"'")
	}
	return "", fmt.Errorf("invalid format: %s (must be %s)", value, strings.Join(names, " or "))
}

// newTable creates a table writer rendering to w
func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

// render writes t in the requested format
func render(t table.Writer, format OutputFormat) {
	switch format {
	case FormatCSV:
		t.RenderCSV()
	case FormatMarkdown:
		t.RenderMarkdown()
	default:
		t.Render()
	}
}

// writeJSON outputs v as indented JSON
func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// writeSummaries prints one line per driver run
func writeSummaries(w io.Writer, summaries []*runner.Summary) error {
	if len(summaries) == 0 {
		_, err := fmt.Fprintln(w, "No drivers ran.")
		return err
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"Driver", "Documents", "Skipped", "Added", "Total", "Time", "Result"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})

	var documents, skipped, added int
	for _, s := range summaries {
		result := s.Workbook
		if !s.OK() {
			result = "failed: " + s.Err.Error()
		}
		t.AppendRow(table.Row{s.Driver, s.Documents, len(s.Skipped), s.Added, s.Total, s.Duration.Round(time.Second), result})
		documents += s.Documents
		skipped += len(s.Skipped)
		added += s.Added
	}
	t.AppendFooter(table.Row{"", documents, skipped, added, "", "", ""})
	t.Render()

	for _, s := range summaries {
		for _, f := range s.Skipped {
			if _, err := fmt.Fprintf(w, "skipped %s: %s\n", f.Source, f.Err); err != nil {
				return err
			}
		}
	}
	return nil
}

// driverRow is the list command's view of a driver
type driverRow struct {
	Key         string     `json:"key"`
	State       string     `json:"state"`
	Category    string     `json:"category"`
	Workbook    string     `json:"workbook"`
	LastRun     *time.Time `json:"last_run,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
	LastSuccess *time.Time `json:"last_success,omitempty"`
	Rows        int        `json:"rows,omitempty"`
}

// writeDrivers prints the driver catalogue with each driver's latest run
// from history, which may be nil
func writeDrivers(w io.Writer, drivers []jurisdiction.Driver, history *storage.History, format OutputFormat) error {
	rows := make([]driverRow, 0, len(drivers))
	for _, d := range drivers {
		row := driverRow{
			Key:      d.Key,
			State:    d.Schema.State,
			Category: d.Schema.Category,
			Workbook: d.Schema.FileName(),
		}
		if history != nil {
			if run, ok := history.Runs[d.Key]; ok {
				finished := run.Finished
				row.LastRun = &finished
				row.LastError = run.Error
			}
			if run, ok := history.LastSuccess[d.Key]; ok {
				finished := run.Finished
				row.LastSuccess = &finished
				row.Rows = run.Total
			}
		}
		rows = append(rows, row)
	}

	if format == FormatJSON {
		return writeJSON(w, rows)
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"Driver", "State", "Category", "Workbook", "Last Run", "Last Success", "Rows"})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 7, Align: text.AlignRight}})
	for _, r := range rows {
		lastRun := stamp(r.LastRun)
		if r.LastError != "" {
			lastRun += " (failed)"
		}
		rowCount := ""
		if r.LastSuccess != nil {
			rowCount = fmt.Sprint(r.Rows)
		}
		t.AppendRow(table.Row{r.Key, r.State, r.Category, r.Workbook, lastRun, stamp(r.LastSuccess), rowCount})
	}
	render(t, format)
	return nil
}

func stamp(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// writeLinks prints discovered links, one per line in text mode
func writeLinks(w io.Writer, links []string, format OutputFormat) error {
	if format == FormatJSON {
		if links == nil {
			links = []string{}
		}
		return writeJSON(w, struct {
			Count int      `json:"count"`
			Links []string `json:"links"`
		}{len(links), links})
	}

	if len(links) == 0 {
		_, err := fmt.Fprintln(w, "No links found.")
		return err
	}
	for _, link := range links {
		if _, err := fmt.Fprintln(w, link); err != nil {
			return err
		}
	}
	return nil
}

// writeRecords prints records with the schema's column layout
func writeRecords(w io.Writer, records []record.Record, schema *record.Schema, format OutputFormat) error {
	amounts := schema.AmountColumns(records)
	columns := append(schema.TextColumns(), amounts...)
	isAmount := make(map[string]bool, len(amounts))
	for _, c := range amounts {
		isAmount[c] = true
	}

	if format == FormatJSON {
		rows := make([]map[string]interface{}, 0, len(records))
		for _, r := range records {
			row := make(map[string]interface{}, len(columns))
			for _, c := range columns {
				switch v, ok := r.Amounts[c]; {
				case ok:
					row[c] = v
				case isAmount[c]:
					row[c] = nil
				default:
					row[c] = r.Value(c)
				}
			}
			rows = append(rows, row)
		}
		return writeJSON(w, rows)
	}

	t := newTable(w)
	header := table.Row{"#"}
	configs := []table.ColumnConfig{{Number: 1, Align: text.AlignRight}}
	for i, c := range columns {
		header = append(header, c)
		if isAmount[c] {
			configs = append(configs, table.ColumnConfig{Number: i + 2, Align: text.AlignRight})
		}
	}
	t.AppendHeader(header)
	t.SetColumnConfigs(configs)

	for i, r := range records {
		row := table.Row{i + 1}
		for _, c := range columns {
			if v, ok := r.Amounts[c]; ok {
				row = append(row, formatAmount(v))
			} else {
				row = append(row, r.Value(c))
			}
		}
		t.AppendRow(row)
	}
	if format == FormatText {
		t.SetCaption("%d rows", len(records))
	}
	render(t, format)
	return nil
}

// formatAmount renders an amount with two decimals
func formatAmount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
