package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pfrederiksen/gaming-revenue/internal/filter"
	"github.com/pfrederiksen/gaming-revenue/internal/jurisdiction"
	"github.com/pfrederiksen/gaming-revenue/internal/logger"
	"github.com/pfrederiksen/gaming-revenue/internal/record"
	"github.com/pfrederiksen/gaming-revenue/internal/workbook"
	"github.com/spf13/cobra"
)

var (
	flagProviders     []string
	flagSubCategories []string
	flagFrom          string
	flagTo            string
	flagMonths        string
	flagSort          string
	flagSortColumn    string
	flagLimit         int
	flagShowFormat    string
)

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <workbook.xlsx>",
		Short: "Print the rows of an output workbook",
		Long: `Print an output workbook as a table, optionally narrowed to providers,
sub-categories and a month range. Workbooks named after a driver use that
driver's column layout; any other workbook has its layout inferred.`,
		Example: `  gaming-revenue show "Arizona (OSB).xlsx" --provider fanduel --from 2023-01
  gaming-revenue show "Illinois (OSB).xlsx" --months "Jan 2023 - Jun 2023" --sub-category Online
  gaming-revenue show "New York (OSB).xlsx" --sort amount --sort-column GGR --limit 10`,
		Args: cobra.ExactArgs(1),
		RunE: runShow,
	}

	cmd.Flags().StringSliceVar(&flagProviders, "provider", nil, "Only providers containing this text (repeatable)")
	cmd.Flags().StringSliceVar(&flagSubCategories, "sub-category", nil, "Only this sub-category, e.g. Retail or Online (repeatable)")
	cmd.Flags().StringVar(&flagFrom, "from", "", "First month, e.g. 2023-01 or 'Jan 2023'")
	cmd.Flags().StringVar(&flagTo, "to", "", "Last month, e.g. 2023-06 or 'Jun 2023'")
	cmd.Flags().StringVar(&flagMonths, "months", "", "Month range, e.g. 'Jan 2023 - Jun 2023' or '2023'")
	cmd.Flags().StringVar(&flagSort, "sort", "date", "Sort order: date, provider or amount")
	cmd.Flags().StringVar(&flagSortColumn, "sort-column", "", "Amount column used by --sort amount (default: last amount column)")
	cmd.Flags().IntVar(&flagLimit, "limit", 0, "Print at most this many rows (0 prints all)")
	cmd.Flags().StringVar(&flagShowFormat, "format", "text", "Output format: text, json, csv or markdown")

	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(flagShowFormat, FormatText, FormatJSON, FormatCSV, FormatMarkdown)
	if err != nil {
		return err
	}

	order := SortOrder(strings.ToLower(flagSort))
	if order != SortByDate && order != SortByProvider && order != SortByAmount {
		return fmt.Errorf("invalid sort order: %s (must be 'date', 'provider' or 'amount')", flagSort)
	}

	f, err := buildFilter()
	if err != nil {
		return err
	}

	path := args[0]
	records, schema, err := workbook.Load(path, schemaFor(path))
	if err != nil {
		return fmt.Errorf("loading workbook: %w", err)
	}
	logger.Debug("Workbook loaded", logger.Fields{"path": path, "rows": len(records), "filter": f.String()})

	records = f.Apply(records)

	column := flagSortColumn
	if order == SortByAmount && len(records) > 0 {
		amounts := schema.AmountColumns(records)
		if column == "" && len(amounts) > 0 {
			column = amounts[len(amounts)-1]
		}
		if !schema.IsAmount(column, records) {
			return fmt.Errorf("unknown amount column: %q", column)
		}
	}
	sortRecords(records, schema, order, column)

	if flagLimit > 0 && len(records) > flagLimit {
		records = records[:flagLimit]
	}

	return writeRecords(cmd.OutOrStdout(), records, schema, format)
}

// buildFilter turns the show flags into a filter
func buildFilter() (*filter.Filter, error) {
	f := filter.NewFilter()
	f.Providers = append(f.Providers, flagProviders...)
	f.SubCategories = append(f.SubCategories, flagSubCategories...)

	if flagMonths != "" {
		if flagFrom != "" || flagTo != "" {
			return nil, fmt.Errorf("--months cannot be combined with --from or --to")
		}
		from, to, err := filter.ParseDateRange(flagMonths)
		if err != nil {
			return nil, err
		}
		f.DateFrom, f.DateTo = from, to
	}

	if flagFrom != "" {
		from, err := filter.ParseMonth(flagFrom)
		if err != nil {
			return nil, fmt.Errorf("--from: %w", err)
		}
		f.DateFrom = &from
	}
	if flagTo != "" {
		to, err := filter.ParseMonth(flagTo)
		if err != nil {
			return nil, fmt.Errorf("--to: %w", err)
		}
		f.DateTo = &to
	}
	if f.DateFrom != nil && f.DateTo != nil && f.DateFrom.After(*f.DateTo) {
		return nil, fmt.Errorf("--from must not be after --to")
	}

	return f, nil
}

// schemaFor returns the driver schema whose workbook has this file name, or
// nil to infer the layout
func schemaFor(path string) *record.Schema {
	name := filepath.Base(path)
	for _, d := range jurisdiction.All() {
		if d.Schema.FileName() == name {
			return d.Schema
		}
	}
	return nil
}
