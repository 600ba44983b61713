// Package explore implements the staged viability narrowing of a
// ticker's option universe: preflight (expirations only), Phase 1
// (single-expiration sample) and Phase 2 (full chain fetch and
// candidate construction).
//
// Each stage is deterministic given provider behavior and the scan
// parameter set, and consults the chain cache before any fetch.
package explore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/strikelab/optionscan/internal/contracts"
	"github.com/strikelab/optionscan/pkg/logger"
)

// Preflight is the cheapest possible viability probe: an expirations
// listing, no strike-level data. It exists purely to avoid Phase 1/2
// cost when a ticker trivially has no usable expiration.
type Preflight struct {
	source contracts.MarketData
	logger *logger.Logger
}

// NewPreflight creates the preflight stage
func NewPreflight(source contracts.MarketData, log *logger.Logger) *Preflight {
	return &Preflight{source: source, logger: log}
}

// Preflight lists expirations and keeps those inside the DTE window.
// Provider failures surface as errors for the orchestrator to classify;
// an empty window result is a non-viable (not failed) outcome.
func (p *Preflight) Preflight(ctx context.Context, ticker string, window contracts.DTEWindow, asOf time.Time) (*contracts.PreflightResult, error) {
	expirations, err := p.source.ListExpirations(ctx, ticker, asOf)
	if err != nil {
		return nil, err
	}

	var viable []time.Time
	for _, exp := range expirations {
		if window.Contains(contracts.DaysBetween(asOf, exp)) {
			viable = append(viable, exp)
		}
	}

	sort.Slice(viable, func(i, j int) bool { return viable[i].Before(viable[j]) })

	if len(viable) == 0 {
		p.logger.WithFields(map[string]interface{}{
			"ticker": ticker,
			"window": window.String(),
			"listed": len(expirations),
		}).Debug("Preflight found no viable expirations")

		return &contracts.PreflightResult{
			Viable: false,
			Reason: fmt.Sprintf("no expirations within %s window", window),
		}, nil
	}

	return &contracts.PreflightResult{
		Viable:      true,
		Expirations: viable,
	}, nil
}
