package cmd

import (
	"context"
	"time"

	"crashwire/internal/redisclient"
	"crashwire/internal/storage"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// exportCmd dumps every related article as YAML for operator inspection.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print all related articles as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		rdb := redisclient.New(cfg.Redis)
		defer rdb.Close()
		store := storage.NewArticleStore(rdb)

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		arts, err := store.AllRelated(ctx)
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		defer enc.Close()
		return enc.Encode(arts)
	},
}

func init() {
	storeCmd.AddCommand(exportCmd)
}
