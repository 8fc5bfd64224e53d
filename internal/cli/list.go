package cli

import (
	"github.com/pfrederiksen/gaming-revenue/internal/jurisdiction"
	"github.com/pfrederiksen/gaming-revenue/internal/logger"
	"github.com/pfrederiksen/gaming-revenue/internal/storage"
	"github.com/spf13/cobra"
)

var flagListFormat string

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [state ...]",
		Short: "List the available drivers and their last runs",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(flagListFormat, FormatText, FormatJSON, FormatCSV, FormatMarkdown)
			if err != nil {
				return err
			}

			drivers := jurisdiction.All()
			if len(args) > 0 {
				if drivers, err = jurisdiction.Lookup(args...); err != nil {
					return err
				}
			}
			return writeDrivers(cmd.OutOrStdout(), drivers, loadHistory(), format)
		},
	}

	cmd.Flags().StringVar(&flagListFormat, "format", "text", "Output format: text, json, csv or markdown")
	return cmd
}

// loadHistory reads the run history; a history that cannot be read is
// logged and treated as empty
func loadHistory() *storage.History {
	store, err := storage.New(cfg.DataDir)
	if err == nil {
		history, loadErr := store.Load()
		if loadErr == nil {
			return history
		}
		err = loadErr
	}
	logger.Warn("Run history unavailable", logger.Fields{"data_dir": cfg.DataDir, "error": err.Error()})
	return nil
}
