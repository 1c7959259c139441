// Package commands implements the mscal CLI.
package commands

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mscal",
	Short: "Magic Stocks Calendar - seasonal stock signal service",
	Long: `Magic Stocks Calendar

Builds a 366-day seasonal BUY/SELL/HOLD calendar from historical daily
prices across the US equity and commodity universe, retrains it on a
daily schedule and serves it over a small read API.

Examples:
  mscal api
  mscal retrain --limit 100
  mscal retrain --symbols AAPL,MSFT,GC=F
  mscal scheduler start
  mscal universe`,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}
