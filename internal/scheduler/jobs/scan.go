// Package jobs holds the concrete scheduled jobs.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/strikelab/optionscan/internal/pipeline"
	"github.com/strikelab/optionscan/internal/report"
	"github.com/strikelab/optionscan/internal/worklist"
	"github.com/strikelab/optionscan/pkg/logger"
)

// NightlyScanJob runs the full worklist after the close, against the
// just-ended session's chains
type NightlyScanJob struct {
	orchestrator *pipeline.Orchestrator
	writer       *report.Writer
	worklistPath string
	configHash   string
	logger       *logger.Logger
}

// NewNightlyScanJob creates a new nightly scan job
func NewNightlyScanJob(
	orch *pipeline.Orchestrator,
	writer *report.Writer,
	worklistPath string,
	configHash string,
	log *logger.Logger,
) *NightlyScanJob {
	return &NightlyScanJob{
		orchestrator: orch,
		writer:       writer,
		worklistPath: worklistPath,
		configHash:   configHash,
		logger:       log,
	}
}

// Name returns the job name
func (j *NightlyScanJob) Name() string {
	return "nightly_scan"
}

// Schedule returns the cron schedule (6 PM ET on weekdays, with
// seconds)
func (j *NightlyScanJob) Schedule() string {
	return "0 0 18 * * 1-5"
}

// Run executes the nightly scan
func (j *NightlyScanJob) Run(ctx context.Context) error {
	j.logger.Info("Starting nightly scan")

	items, err := worklist.LoadForDate(j.worklistPath, time.Now())
	if err != nil {
		return fmt.Errorf("load worklist: %w", err)
	}

	records := j.orchestrator.Run(ctx, items)

	rep := report.Build(records, j.configHash)
	path, err := j.writer.Write(rep)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id": rep.RunID,
		"items":  rep.ItemCount,
		"path":   path,
	}).Info("Nightly scan complete")

	return nil
}
