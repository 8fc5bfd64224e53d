package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/gaming-revenue/internal/browser"
	"github.com/pfrederiksen/gaming-revenue/internal/config"
	"github.com/pfrederiksen/gaming-revenue/internal/jurisdiction"
	"github.com/pfrederiksen/gaming-revenue/internal/logger"
	"github.com/pfrederiksen/gaming-revenue/internal/runner"
	"github.com/pfrederiksen/gaming-revenue/internal/storage"
	"github.com/pfrederiksen/gaming-revenue/internal/workbook"
	"github.com/spf13/cobra"
)

var (
	flagAll       bool
	flagOutDir    string
	flagPriorDir  string
	flagNoBrowser bool
)

func newScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape [driver-or-state ...]",
		Short: "Scrape revenue reports and update the workbooks",
		Long: `Scrape the named drivers, e.g. "michigan-igaming", or every driver of a
state, e.g. "michigan". Use --all to run every driver. Each driver's records
are merged into its prior workbook and written to the output directory.`,
		Example: `  gaming-revenue scrape arizona newjersey-osb
  gaming-revenue scrape --all --out-dir out --prior-dir "Finished States"`,
		RunE: runScrape,
	}

	cmd.Flags().BoolVar(&flagAll, "all", false, "Run every driver")
	cmd.Flags().StringVar(&flagOutDir, "out-dir", "", "Directory for written workbooks (overrides config)")
	cmd.Flags().StringVar(&flagPriorDir, "prior-dir", "", "Directory searched for prior workbooks (overrides config)")
	cmd.Flags().BoolVar(&flagNoBrowser, "no-browser", false, "Skip launching Chrome; form-driven reports are skipped")

	return cmd
}

// runScrape is the main command logic
func runScrape(cmd *cobra.Command, args []string) error {
	drivers, err := selectDrivers(args, flagAll)
	if err != nil {
		return err
	}

	outDir := cfg.OutputDir
	if flagOutDir != "" {
		outDir = flagOutDir
	}
	priorDir := cfg.PriorDir
	if flagPriorDir != "" {
		priorDir = flagPriorDir
	}

	store, err := workbook.New(outDir, priorDir)
	if err != nil {
		return fmt.Errorf("initializing output: %w", err)
	}

	client := newFetchClient(cfg)

	newEnv := func() *jurisdiction.Env {
		env := &jurisdiction.Env{Fetch: client, Store: store}
		if !flagNoBrowser {
			env.Browser = browserFactory(cfg)
		}
		return env
	}

	logger.Info("Starting run", logger.Fields{
		"drivers":   len(drivers),
		"out_dir":   outDir,
		"prior_dir": priorDir,
	})

	start := time.Now()
	r := runner.New(store, newEnv)
	summaries, runErr := r.Run(cmd.Context(), drivers)
	logger.RecordTiming("run", time.Since(start))

	if err := writeSummaries(cmd.OutOrStdout(), summaries); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	if err := recordHistory(summaries); err != nil {
		logger.Warn("Failed to record run history", logger.Fields{"data_dir": cfg.DataDir, "error": err.Error()})
	}
	for _, line := range logger.DefaultMetrics().Lines() {
		logger.Debug("Metric", logger.Fields{"metric": line})
	}

	if runErr != nil {
		return runErr
	}
	for _, s := range summaries {
		if !s.OK() {
			exitCode = ExitPartial
		}
	}
	return nil
}

// recordHistory stores the outcome of each driver in the run history
func recordHistory(summaries []*runner.Summary) error {
	if len(summaries) == 0 {
		return nil
	}
	store, err := storage.New(cfg.DataDir)
	if err != nil {
		return err
	}

	finished := time.Now().UTC()
	runs := make([]*storage.Run, 0, len(summaries))
	for _, s := range summaries {
		run := &storage.Run{
			Driver:    s.Driver,
			Workbook:  s.Workbook,
			Finished:  finished,
			Documents: s.Documents,
			Added:     s.Added,
			Total:     s.Total,
		}
		for _, f := range s.Skipped {
			run.Skipped = append(run.Skipped, f.Source)
		}
		if s.Err != nil {
			run.Error = s.Err.Error()
		}
		runs = append(runs, run)
	}
	return store.Record(runs...)
}

// selectDrivers resolves the command arguments to drivers
func selectDrivers(args []string, all bool) ([]jurisdiction.Driver, error) {
	if all {
		if len(args) > 0 {
			return nil, fmt.Errorf("--all cannot be combined with driver names")
		}
		return jurisdiction.All(), nil
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("name at least one driver or state, or use --all (see 'gaming-revenue list')")
	}

	var names []string
	for _, arg := range args {
		for _, name := range strings.Split(arg, ",") {
			if strings.TrimSpace(name) != "" {
				names = append(names, name)
			}
		}
	}
	return jurisdiction.Lookup(names...)
}

// browserFactory starts Chrome lazily, the first time a driver asks for it
func browserFactory(c *config.Config) func(ctx context.Context) (jurisdiction.FormBrowser, error) {
	return func(ctx context.Context) (jurisdiction.FormBrowser, error) {
		session, err := browser.Start(ctx, browser.Options{
			Headless:  c.Browser.Headless,
			ExecPath:  c.Browser.ExecPath,
			UserAgent: c.HTTP.BrowserUserAgent,
			Settle:    c.Browser.Settle,
		})
		if err != nil {
			return nil, err
		}
		return session, nil
	}
}
