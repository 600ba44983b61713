package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/strikelab/optionscan/internal/chaincache"
	"github.com/strikelab/optionscan/pkg/logger"
)

// CacheHandler handles chain cache API endpoints
type CacheHandler struct {
	store  *chaincache.Store
	logger *logger.Logger
}

// NewCacheHandler creates a new cache handler
func NewCacheHandler(store *chaincache.Store, log *logger.Logger) *CacheHandler {
	return &CacheHandler{store: store, logger: log}
}

// GetStats returns cache entry counts and sizes
// GET /api/cache/stats
func (h *CacheHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats()
	if err != nil {
		h.logger.WithError(err).Error("Failed to read cache stats")
		respondError(w, http.StatusInternalServerError, "Failed to read cache stats")
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// ClearRequest selects what to clear. An empty ticker clears
// everything.
type ClearRequest struct {
	Ticker string `json:"ticker,omitempty"`
}

// Clear removes cached chains for one ticker or for all
// POST /api/cache/clear
func (h *CacheHandler) Clear(w http.ResponseWriter, r *http.Request) {
	var req ClearRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	removed, err := h.store.Clear(req.Ticker)
	if err != nil {
		h.logger.WithError(err).Error("Failed to clear cache")
		respondError(w, http.StatusInternalServerError, "Failed to clear cache")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"ticker":  req.Ticker,
		"removed": removed,
	})
}
