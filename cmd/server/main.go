package main

import (
	"fmt"
	"os"

	"github.com/fekuna/omnipos-catalog-service/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "catalog",
	Short: "OmniPOS catalog service: products, variants, stock and their derived views",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
		cfg = config.LoadEnv()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(newServeCmd(), newSuggestCmd(), newAnalyzeCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
