package cmd

import "github.com/spf13/cobra"

// storeCmd groups article-store subcommands.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Article store utilities",
}

func init() {
	rootCmd.AddCommand(storeCmd)
}
