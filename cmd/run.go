package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crashwire/internal/ai"
	"crashwire/internal/classify"
	"crashwire/internal/index"
	"crashwire/internal/pinecone"
	"crashwire/internal/pipeline"
	"crashwire/internal/redisclient"
	"crashwire/internal/rewrite"
	"crashwire/internal/scrape"
	"crashwire/internal/source"
	"crashwire/internal/storage"
	"crashwire/internal/webhook"

	"github.com/spf13/cobra"
)

// runCmd executes the full pipeline once. It is the entry point an external
// scheduler invokes; scheduling itself lives outside this binary.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scrape pipeline once over all configured sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg.OpenAI.APIKey == "" {
			return fmt.Errorf("openai config missing: set openai.api_key in config.yaml")
		}

		rdb := redisclient.New(cfg.Redis)
		defer rdb.Close()
		if _, err := redisclient.Check(cmd.Context(), rdb); err != nil {
			return fmt.Errorf("redis unreachable at %s: %w", cfg.Redis.Addr, err)
		}
		store := storage.NewArticleStore(rdb)

		aiClient := ai.NewOpenAI(ai.Config{
			APIKey:         cfg.OpenAI.APIKey,
			Model:          cfg.OpenAI.Model,
			EmbeddingModel: cfg.OpenAI.EmbeddingModel,
			BaseURL:        cfg.OpenAI.BaseURL,
		})

		timeout, err := time.ParseDuration(cfg.Scrape.Timeout)
		if err != nil {
			return fmt.Errorf("invalid scrape.timeout: %w", err)
		}
		fetcher := scrape.New(cfg.Scrape.ProxyKey, cfg.Scrape.UserAgent, timeout)

		srcs, err := source.ByName(fetcher, cfg.Sources.PageLimit, cfg.Sources.Enabled)
		if err != nil {
			return err
		}

		cls := &classify.Classifier{AI: aiClient, Threshold: cfg.Pinecone.SimilarityThreshold}
		p := &pipeline.Pipeline{
			Sources:    srcs,
			Store:      store,
			Classifier: cls,
			Rewriter:   &rewrite.Rewriter{AI: aiClient},
		}
		if cfg.Pinecone.BaseURL != "" {
			pc := pinecone.New(cfg.Pinecone.BaseURL, cfg.Pinecone.APIKey, cfg.Pinecone.Namespace, 20*time.Second)
			cls.Search = pc
			p.Indexer = &index.Indexer{AI: aiClient, Store: pc}
		}
		if cfg.Webhook.Endpoint != "" {
			p.Notifier = webhook.New(cfg.Webhook.Endpoint, cfg.Webhook.Token, 20*time.Second)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			s := <-sigc
			slog.Info("received signal, shutting down", "signal", s.String())
			cancel()
		}()

		sum, err := p.Run(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(),
			"discovered=%d accepted=%d skipped_duplicate_url=%d skipped_not_related=%d failed=%d notified=%v\n",
			sum.Discovered, sum.Accepted, sum.SkippedDuplicateURL, sum.SkippedNotRelated, sum.Failed, sum.Notified)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
