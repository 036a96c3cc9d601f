package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "autotrader",
	Short: "An automated trading client for broker-terminal style venues",
	Long: `Autotrader executes trading signals against a broker venue.

It provides:
  - Connection management with bounded retry
  - Risk-based position sizing from account balance and stop distance
  - An ordered guard pipeline (hours, news, connectivity, validity,
    re-entry interval, spread ceiling)
  - A signal ledger persisted to SQLite with dedupe and outcome notes
  - Auto-close of all positions once a floating profit target is reached
  - An order/equity journal in SQLite or CSV`,
}

var verbose bool

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
