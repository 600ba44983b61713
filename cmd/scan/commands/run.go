package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/strikelab/optionscan/internal/contracts"
	"github.com/strikelab/optionscan/internal/report"
	"github.com/strikelab/optionscan/internal/worklist"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a scan over a worklist",
	Long: `Runs the full exploration pipeline over a worklist file and
writes a JSON report.

Each worklist item produces exactly one output record. Items that
cannot be explored still appear, carrying the reason they stopped.

Example:
  go run ./cmd/scan run --worklist worklist.yaml
  go run ./cmd/scan run --worklist worklist.yaml --as-of 2026-08-28
  go run ./cmd/scan run --tickers AAPL,MSFT --strategy debit_spread --bias bullish
  go run ./cmd/scan run --worklist worklist.yaml --dump-candidates`,
	RunE: runScan,
}

var (
	runWorklist       string
	runAsOf           string
	runTickers        []string
	runStrategy       string
	runBias           string
	runDumpCandidates bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runWorklist, "worklist", "", "worklist file (default from SCAN_WORKLIST_PATH)")
	runCmd.Flags().StringVar(&runAsOf, "as-of", "", "evaluation date override (YYYY-MM-DD)")
	runCmd.Flags().StringSliceVar(&runTickers, "tickers", nil, "inline tickers instead of a worklist file")
	runCmd.Flags().StringVar(&runStrategy, "strategy", "", "strategy for inline tickers")
	runCmd.Flags().StringVar(&runBias, "bias", "", "bias for inline tickers")
	runCmd.Flags().BoolVar(&runDumpCandidates, "dump-candidates", false, "retain every candidate on each record")
}

// inlineWorkItems expands --tickers into one item per ticker, all
// sharing the flag strategy and bias
func inlineWorkItems() ([]contracts.WorkItem, error) {
	if runStrategy == "" || runBias == "" {
		return nil, fmt.Errorf("--tickers requires --strategy and --bias")
	}

	asOf := runAsOf
	if asOf == "" {
		asOf = time.Now().UTC().Format(contracts.DateLayout)
	}

	file := worklist.File{AsOf: asOf}
	for _, ticker := range runTickers {
		file.Items = append(file.Items, worklist.Entry{
			Ticker:   ticker,
			Strategy: runStrategy,
			Bias:     runBias,
		})
	}
	return worklist.Resolve(file)
}

func loadWorklistItems(defaultPath string) ([]contracts.WorkItem, error) {
	path := runWorklist
	if path == "" {
		path = defaultPath
	}
	if path == "" {
		return nil, fmt.Errorf("no worklist: pass --worklist, --tickers, or set SCAN_WORKLIST_PATH")
	}

	if runAsOf != "" {
		asOf, err := time.Parse(contracts.DateLayout, runAsOf)
		if err != nil {
			return nil, fmt.Errorf("invalid --as-of %q: %w", runAsOf, err)
		}
		return worklist.LoadForDate(path, asOf)
	}
	return worklist.Load(path)
}

func runScan(cmd *cobra.Command, args []string) error {
	stack, err := buildStack()
	if err != nil {
		return err
	}
	if runDumpCandidates {
		stack.orchestrator.WithCandidateRetention()
	}

	var items []contracts.WorkItem
	if len(runTickers) > 0 {
		items, err = inlineWorkItems()
	} else {
		items, err = loadWorklistItems(stack.config.Scan.WorklistPath)
	}
	if err != nil {
		return err
	}

	// Ctrl+C cancels the scan; items not yet finished still get
	// terminal records
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	records := stack.orchestrator.Run(ctx, items)

	rep := report.Build(records, stack.configHash)
	reportPath, err := stack.writer.Write(rep)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	fmt.Printf("\n=== Scan %s ===\n", rep.RunID)
	fmt.Printf("Items:    %d\n", rep.ItemCount)
	fmt.Printf("Duration: %s\n", time.Since(start).Round(time.Millisecond))
	for _, status := range []contracts.Status{
		contracts.StatusSuccess,
		contracts.StatusLowLiquidity,
		contracts.StatusNoStrikes,
		contracts.StatusFastReject,
		contracts.StatusNoExpirations,
		contracts.StatusProviderError,
	} {
		if n := rep.Counts[status]; n > 0 {
			fmt.Printf("  %-22s %d\n", status, n)
		}
	}
	fmt.Printf("Report:   %s\n", reportPath)

	return nil
}
