package cli

import (
	"fmt"
	"net/http"

	"github.com/pfrederiksen/gaming-revenue/internal/config"
	"github.com/pfrederiksen/gaming-revenue/internal/fetch"
	"github.com/pfrederiksen/gaming-revenue/internal/logger"
	"github.com/spf13/cobra"
)

var (
	flagHrefKeys    []string
	flagTextKeys    []string
	flagAsBrowser   bool
	flagLinksFormat string
)

// transport overrides the HTTP transport of every fetch client; tests point it at fixtures
var transport http.RoundTripper

// newFetchClient builds the document client from the HTTP settings
func newFetchClient(c *config.Config) *fetch.Client {
	return fetch.New(fetch.Options{
		Timeout:          c.HTTP.Timeout,
		UserAgent:        c.HTTP.UserAgent,
		BrowserUserAgent: c.HTTP.BrowserUserAgent,
		Transport:        transport,
	})
}

func newLinksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "links <listing-url>",
		Short: "Show the report links a listing page offers",
		Long: `Fetch a listing page and print every link whose href contains all --href
keys and whose text contains all --text keys. Useful for checking what a
driver will find before running it.`,
		Example: `  gaming-revenue links https://kslottery.com/publications/sports-monthly-revenues/ --href .pdf`,
		Args:    cobra.ExactArgs(1),
		RunE:    runLinks,
	}

	cmd.Flags().StringSliceVar(&flagHrefKeys, "href", nil, "Substring the link href must contain (repeatable)")
	cmd.Flags().StringSliceVar(&flagTextKeys, "text", nil, "Substring the link text must contain (repeatable)")
	cmd.Flags().BoolVar(&flagAsBrowser, "as-browser", false, "Send a desktop browser User-Agent")
	cmd.Flags().StringVar(&flagLinksFormat, "format", "text", "Output format: text or json")

	return cmd
}

func runLinks(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(flagLinksFormat, FormatText, FormatJSON)
	if err != nil {
		return err
	}

	client := newFetchClient(cfg)
	find := client.FindLinks
	if flagAsBrowser {
		find = client.FindLinksAsBrowser
	}

	listing := args[0]
	links, err := find(cmd.Context(), listing, flagHrefKeys, flagTextKeys)
	if err != nil {
		return fmt.Errorf("finding links: %w", err)
	}
	logger.Debug("Links found", logger.Fields{"listing": listing, "count": len(links)})

	return writeLinks(cmd.OutOrStdout(), links, format)
}
