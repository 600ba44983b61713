package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// cacheCmd represents the cache command group
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the chain cache",
}

// cacheStatsCmd reports cache entry counts and sizes
var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache entry counts and sizes",
	RunE:  runCacheStats,
}

// cacheClearCmd removes cached chains
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear cached chains for one ticker or for all",
	Long: `Removes cached chain snapshots.

Example:
  go run ./cmd/scan cache clear
  go run ./cmd/scan cache clear --ticker AAPL`,
	RunE: runCacheClear,
}

var cacheClearTicker string

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	cacheClearCmd.Flags().StringVar(&cacheClearTicker, "ticker", "", "clear only this ticker")
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	stack, err := buildStack()
	if err != nil {
		return err
	}

	if !stack.cache.Enabled() {
		fmt.Println("Cache is disabled (set CACHE_ENABLED=true)")
		return nil
	}

	stats, err := stack.cache.Stats()
	if err != nil {
		return fmt.Errorf("read cache stats: %w", err)
	}

	fmt.Printf("Entries: %d\n", stats.EntryCount)
	fmt.Printf("Size:    %d bytes\n", stats.TotalBytes)
	fmt.Printf("Tickers: %d\n", len(stats.Tickers))
	for _, ticker := range stats.Tickers {
		fmt.Printf("  %s\n", ticker)
	}

	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	stack, err := buildStack()
	if err != nil {
		return err
	}

	removed, err := stack.cache.Clear(cacheClearTicker)
	if err != nil {
		return err
	}

	if cacheClearTicker != "" {
		fmt.Printf("Cleared cache for %s (%d directories removed)\n", cacheClearTicker, removed)
	} else {
		fmt.Printf("Cleared cache (%d ticker directories removed)\n", removed)
	}

	return nil
}
