package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/strikelab/optionscan/internal/pipeline"
	"github.com/strikelab/optionscan/internal/report"
	"github.com/strikelab/optionscan/internal/worklist"
	"github.com/strikelab/optionscan/pkg/logger"
)

// ScanHandler handles scan-related API endpoints
type ScanHandler struct {
	orchestrator *pipeline.Orchestrator
	writer       *report.Writer
	reportDir    string
	configHash   string
	logger       *logger.Logger
}

// NewScanHandler creates a new scan handler
func NewScanHandler(
	orch *pipeline.Orchestrator,
	writer *report.Writer,
	reportDir string,
	configHash string,
	log *logger.Logger,
) *ScanHandler {
	return &ScanHandler{
		orchestrator: orch,
		writer:       writer,
		reportDir:    reportDir,
		configHash:   configHash,
		logger:       log,
	}
}

// ScanRequest carries an inline worklist. A request-level as_of
// applies to every item that does not set its own.
type ScanRequest struct {
	AsOf  string           `json:"as_of,omitempty"`
	Items []worklist.Entry `json:"items"`
}

// ScanResponse summarizes a completed scan
type ScanResponse struct {
	RunID  string         `json:"run_id"`
	Items  int            `json:"items"`
	Counts map[string]int `json:"counts"`
	Path   string         `json:"path"`
}

// Run executes a scan over an inline worklist
// POST /api/scan
func (h *ScanHandler) Run(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Items) == 0 {
		respondError(w, http.StatusBadRequest, "Worklist is empty")
		return
	}

	items, err := worklist.Resolve(worklist.File{AsOf: req.AsOf, Items: req.Items})
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	records := h.orchestrator.Run(ctx, items)
	rep := report.Build(records, h.configHash)

	path, err := h.writer.Write(rep)
	if err != nil {
		h.logger.WithError(err).Error("Failed to write scan report")
		respondError(w, http.StatusInternalServerError, "Failed to persist scan report")
		return
	}

	counts := make(map[string]int, len(rep.Counts))
	for status, n := range rep.Counts {
		counts[string(status)] = n
	}

	respondJSON(w, http.StatusOK, ScanResponse{
		RunID:  rep.RunID,
		Items:  rep.ItemCount,
		Counts: counts,
		Path:   path,
	})
}

// GetResults returns the most recent scan report
// GET /api/scan/results
func (h *ScanHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	rep, err := report.LoadLatest(h.reportDir)
	if err != nil {
		h.logger.WithError(err).Warn("No scan report available")
		respondError(w, http.StatusNotFound, "No scan report available")
		return
	}

	respondJSON(w, http.StatusOK, rep)
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
