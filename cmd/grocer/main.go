package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "grocer",
		Short:         "Operator tools for the grocery assistant",
		SilenceUsage:  true,
		SilenceErrors: false,
		Long: `grocer inspects the data the grocery assistant runs on: the price
catalog, how messages are classified, and saved session snapshots.`,
	}

	root.PersistentFlags().String("prices", envOr("GROCERY_PRICES_FILE", "grocery_prices.json"), "Price file path")

	root.AddCommand(
		newPricesCmd(),
		newLookupCmd(),
		newClassifyCmd(),
		newSnapshotCmd(),
	)
	return root
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
