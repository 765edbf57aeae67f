package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stockpulse",
	Short: "StockPulse - NSE stock health scoring backend",
	Long: `StockPulse Unified CLI

Scores NIFTY stocks from daily price action and news sentiment,
and serves the results over a REST API.

Usage:
  go run ./cmd/stockpulse [command]

Examples:
  go run ./cmd/stockpulse api
  go run ./cmd/stockpulse ingest prices --limit 10
  go run ./cmd/stockpulse ingest news
  go run ./cmd/stockpulse scheduler start
  go run ./cmd/stockpulse dbcheck`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
