package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/pfrederiksen/gaming-revenue/internal/config"
	"github.com/pfrederiksen/gaming-revenue/internal/logger"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1
	// ExitPartial means the run finished but at least one driver failed
	ExitPartial = 2
)

var (
	flagConfig    string
	flagVerbose   bool
	flagLogFormat string
	flagDataDir   string
)

// cfg is loaded once per invocation by the root command's pre-run hook
var cfg *config.Config

// exitCode lets a command report a non-error outcome such as a partial run
var exitCode = ExitSuccess

// NewRootCmd creates the root command with every subcommand attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gaming-revenue",
		Short: "Scrape US state gambling revenue reports into Excel workbooks",
		Long: `A CLI tool that downloads monthly sports betting and iGaming revenue
reports published by state regulators, normalizes them into one table per
state and category, and merges each run into the previously published workbook.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default: ./gaming-revenue.yaml or ~/.config/gaming-revenue/gaming-revenue.yaml)")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "Log format: text or json (overrides config)")
	cmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "Directory for the run history (overrides config)")

	cmd.AddCommand(
		newScrapeCmd(),
		newListCmd(),
		newLinksCmd(),
		newShowCmd(),
	)

	return cmd
}

// setup loads the configuration and installs the default logger
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg = loaded

	level := logger.ParseLevel(cfg.Log.Level)
	if flagVerbose {
		level = logger.LevelDebug
	}

	format := cfg.Log.Format
	if flagLogFormat != "" {
		format = flagLogFormat
	}
	format = strings.ToLower(format)
	if format != string(logger.FormatText) && format != string(logger.FormatJSON) {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", format)
	}

	logger.SetDefault(logger.New(level, logger.Format(format), cmd.ErrOrStderr()))

	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	return nil
}

// Execute runs the CLI and returns the process exit code
func Execute() int {
	return run(os.Args[1:], os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) int {
	exitCode = ExitSuccess

	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitError
	}
	return exitCode
}
