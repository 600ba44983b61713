package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/strikelab/optionscan/internal/scheduler"
	"github.com/strikelab/optionscan/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Start the scan scheduler",
	Long: `Starts the cron scheduler with the nightly scan job.

The nightly scan runs the configured worklist after the close and
writes a report per run.

Example:
  go run ./cmd/scan scheduler
  go run ./cmd/scan scheduler --now`,
	RunE: runScheduler,
}

var schedulerRunNow bool

func init() {
	rootCmd.AddCommand(schedulerCmd)

	schedulerCmd.Flags().BoolVar(&schedulerRunNow, "now", false, "also run the nightly scan immediately")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	stack, err := buildStack()
	if err != nil {
		return err
	}

	if stack.config.Scan.WorklistPath == "" {
		return fmt.Errorf("scheduler requires SCAN_WORKLIST_PATH")
	}

	sched := scheduler.New(stack.logger)

	nightly := jobs.NewNightlyScanJob(
		stack.orchestrator,
		stack.writer,
		stack.config.Scan.WorklistPath,
		stack.configHash,
		stack.logger,
	)
	if err := sched.AddJob(nightly); err != nil {
		return fmt.Errorf("register nightly scan: %w", err)
	}

	sched.Start()
	defer sched.Stop()

	if schedulerRunNow {
		if err := sched.RunJob(nightly.Name()); err != nil {
			return err
		}
	}

	fmt.Println("Scheduler running. Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	return nil
}
