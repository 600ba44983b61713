// Package report assembles and persists scan run reports.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/strikelab/optionscan/internal/contracts"
	"github.com/strikelab/optionscan/pkg/logger"
)

// Report is one scan run's full output: the status tally plus every
// record, one per work item.
type Report struct {
	RunID       string                   `json:"run_id"`
	GeneratedAt time.Time                `json:"generated_at"`
	ConfigHash  string                   `json:"config_hash"`
	ItemCount   int                      `json:"item_count"`
	Counts      map[contracts.Status]int `json:"counts"`
	Records     []contracts.OutputRecord `json:"records"`
}

// Build assembles a report from scan records
func Build(records []contracts.OutputRecord, configHash string) *Report {
	counts := make(map[contracts.Status]int)
	for _, r := range records {
		counts[r.Status]++
	}
	now := time.Now().UTC()
	return &Report{
		RunID:       fmt.Sprintf("scan-%s", now.Format("20060102-150405")),
		GeneratedAt: now,
		ConfigHash:  configHash,
		ItemCount:   len(records),
		Counts:      counts,
		Records:     records,
	}
}

// Writer persists reports under a run directory
type Writer struct {
	dir    string
	logger *logger.Logger
}

// NewWriter creates a report writer rooted at dir
func NewWriter(dir string, log *logger.Logger) *Writer {
	return &Writer{dir: dir, logger: log}
}

// Write stores the report as <run_id>.json and refreshes latest.json.
// Returns the report path.
func (w *Writer) Write(report *Report) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}

	path := filepath.Join(w.dir, report.RunID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	// latest.json is a convenience copy for the API; failing to
	// refresh it does not fail the run
	latest := filepath.Join(w.dir, "latest.json")
	if err := os.WriteFile(latest, data, 0o644); err != nil {
		w.logger.WithError(err).Warn("Failed to refresh latest report")
	}

	w.logger.WithFields(map[string]interface{}{
		"run_id": report.RunID,
		"path":   path,
		"items":  report.ItemCount,
	}).Info("Report written")

	return path, nil
}

// LoadLatest reads the most recent report from dir
func LoadLatest(dir string) (*Report, error) {
	data, err := os.ReadFile(filepath.Join(dir, "latest.json"))
	if err != nil {
		return nil, fmt.Errorf("read latest report: %w", err)
	}
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parse latest report: %w", err)
	}
	return &report, nil
}
