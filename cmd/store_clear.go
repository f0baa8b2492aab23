package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crashwire/internal/redisclient"
	"crashwire/internal/storage"

	"github.com/spf13/cobra"
)

var clearYes bool

// clearCmd wipes the article store. Maintenance only; the pipeline itself
// never deletes records.
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every stored article",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearYes {
			return errors.New("refusing to clear without --yes")
		}
		cfg := GetConfig()

		rdb := redisclient.New(cfg.Redis)
		defer rdb.Close()
		store := storage.NewArticleStore(rdb)

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		n, err := store.ClearAll(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %d articles\n", n)
		return nil
	},
}

func init() {
	clearCmd.Flags().BoolVar(&clearYes, "yes", false, "confirm deletion")
	storeCmd.AddCommand(clearCmd)
}
