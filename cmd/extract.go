package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"crashwire/internal/scrape"
	"crashwire/internal/source"

	"github.com/spf13/cobra"
)

// extractCmd runs one extractor's discovery and prints the candidates, for
// checking selectors against live markup without touching the store or LLM.
var extractCmd = &cobra.Command{
	Use:   "extract <source>",
	Short: "Debug: run one source's discovery and print candidates",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		timeout, err := time.ParseDuration(cfg.Scrape.Timeout)
		if err != nil {
			return fmt.Errorf("invalid scrape.timeout: %w", err)
		}
		fetcher := scrape.New(cfg.Scrape.ProxyKey, cfg.Scrape.UserAgent, timeout)
		srcs, err := source.ByName(fetcher, cfg.Sources.PageLimit, args[:1])
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		cands, err := srcs[0].Discover(ctx)
		if err != nil {
			return err
		}
		for _, c := range cands {
			fmt.Fprintf(os.Stdout, "%s\t%s\n", c.NewsURL, c.Title)
		}
		fmt.Fprintf(os.Stdout, "candidates: %d\n", len(cands))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
}
