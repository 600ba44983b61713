package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	paramsFile string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "scan",
	Short: "Options contract exploration and promotion engine",
	Long: `optionscan CLI

Explores option chains for a worklist of (ticker, strategy, bias,
as-of date) items, grades candidate structures, and promotes the best
one per item.

Usage:
  go run ./cmd/scan [command]

Examples:
  go run ./cmd/scan run --worklist worklist.yaml
  go run ./cmd/scan cache stats
  go run ./cmd/scan api
  go run ./cmd/scan scheduler`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&paramsFile, "params", "", "scan parameter file (default scan.yaml if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
