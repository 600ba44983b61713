// Package pipeline drives work items through preflight, sampling,
// deep exploration and promotion, guaranteeing exactly one output
// record per input item regardless of failure mode.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/strikelab/optionscan/internal/contracts"
	"github.com/strikelab/optionscan/internal/executor"
	"github.com/strikelab/optionscan/internal/promote"
	"github.com/strikelab/optionscan/internal/provider"
	"github.com/strikelab/optionscan/internal/scanconfig"
	"github.com/strikelab/optionscan/pkg/logger"
)

// Orchestrator runs the per-item state machine over a worker pool.
// Each item's stage sequence runs to completion on a single worker;
// parallelism exists only across items.
type Orchestrator struct {
	preflight contracts.Preflighter
	sampler   contracts.Sampler
	explorer  contracts.Explorer
	promoter  contracts.Promoter
	pool      *executor.Pool
	params    *scanconfig.Config
	logger    *logger.Logger

	// retainCandidates keeps the full Phase 2 dump on each record,
	// for debugging and audit only
	retainCandidates bool
}

// New creates an orchestrator
func New(
	preflight contracts.Preflighter,
	sampler contracts.Sampler,
	explorer contracts.Explorer,
	promoter contracts.Promoter,
	pool *executor.Pool,
	params *scanconfig.Config,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		preflight: preflight,
		sampler:   sampler,
		explorer:  explorer,
		promoter:  promoter,
		pool:      pool,
		params:    params,
		logger:    log,
	}
}

// WithCandidateRetention keeps every item's candidate list on its
// output record
func (o *Orchestrator) WithCandidateRetention() *Orchestrator {
	o.retainCandidates = true
	return o
}

// Run processes the worklist and returns one OutputRecord per item,
// in input order. Cancellation converts unfinished items to
// ProviderError records; nothing is ever dropped.
func (o *Orchestrator) Run(ctx context.Context, items []contracts.WorkItem) []contracts.OutputRecord {
	// Index-based keys keep duplicate work items distinct so the
	// row-preservation invariant holds even for a degenerate worklist
	tasks := make([]executor.Task[contracts.OutputRecord], len(items))
	for i, item := range items {
		item := item
		tasks[i] = executor.Task[contracts.OutputRecord]{
			Key: strconv.Itoa(i),
			Run: func(ctx context.Context) (contracts.OutputRecord, error) {
				return o.process(ctx, item), nil
			},
		}
	}

	outcomes := executor.Run(ctx, o.pool, tasks)

	records := make([]contracts.OutputRecord, len(items))
	for i, item := range items {
		outcome, ok := outcomes[strconv.Itoa(i)]
		switch {
		case !ok:
			// Should be unreachable: the pool emits one outcome per
			// task. Fail closed instead of dropping the row.
			records[i] = terminal(item, contracts.StatusProviderError, "executor returned no outcome")
		case outcome.Err != nil:
			records[i] = terminal(item, contracts.StatusProviderError,
				fmt.Sprintf("scan aborted: %v", outcome.Err))
		default:
			records[i] = outcome.Value
		}
	}

	counts := make(map[contracts.Status]int)
	for _, r := range records {
		counts[r.Status]++
	}
	o.logger.WithFields(map[string]interface{}{
		"items":  len(items),
		"counts": counts,
	}).Info("Scan complete")

	return records
}

// process runs one item through the stage machine. It never returns
// an error: every failure maps to a terminal status.
func (o *Orchestrator) process(ctx context.Context, item contracts.WorkItem) contracts.OutputRecord {
	stage := contracts.StageQueued

	if err := item.Validate(); err != nil {
		return terminal(item, contracts.StatusProviderError, fmt.Sprintf("invalid work item: %v", err))
	}

	// Preflighting
	stage = o.advance(item, stage, contracts.StagePreflighting)
	window := o.params.Windows.ForStrategy(item.Strategy)

	pre, err := o.preflight.Preflight(ctx, item.Ticker, window, item.AsOf)
	if err != nil {
		return terminal(item, providerStatus(err), fmt.Sprintf("preflight failed: %v", err))
	}
	if !pre.Viable {
		return terminal(item, contracts.StatusNoExpirations, pre.Reason)
	}

	// Sampling
	stage = o.advance(item, stage, contracts.StageSampling)

	sample, err := o.sampler.Sample(ctx, item, pre.Expirations)
	if err != nil {
		return terminal(item, providerStatus(err), fmt.Sprintf("sampling failed: %v", err))
	}

	record := contracts.OutputRecord{Item: item, Sample: sample}

	switch sample.Outcome {
	case contracts.SampleNoViableExpiries:
		record.Status = contracts.StatusNoExpirations
		record.Reason = sample.Reason
		return record
	case contracts.SampleFastReject:
		o.advance(item, stage, contracts.StageSkipped)
		record.Status = contracts.StatusFastReject
		record.Reason = sample.Reason
		return record
	}

	// Deep exploring
	stage = o.advance(item, stage, contracts.StageDeepExploring)

	result, err := o.explorer.Explore(ctx, item, pre.Expirations)
	if err != nil {
		record.Status = contracts.StatusProviderError
		record.Reason = fmt.Sprintf("deep exploration failed: %v", err)
		return record
	}
	if o.retainCandidates {
		record.Candidates = result.Candidates
	}
	if len(result.Candidates) == 0 {
		record.Status = contracts.StatusNoStrikes
		record.Reason = "no candidate met the minimum liquidity floor"
		return record
	}

	// Promoting
	o.advance(item, stage, contracts.StagePromoting)

	selection, err := o.promoter.Promote(item, result.Candidates, result.UnderlyingPrice)
	if err != nil {
		if errors.Is(err, promote.ErrNoSuitableStrikes) {
			record.Status = contracts.StatusNoStrikes
			record.Reason = "every candidate was excluded from ranking (missing Greeks or failed floor)"
			return record
		}
		record.Status = contracts.StatusProviderError
		record.Reason = fmt.Sprintf("promotion failed: %v", err)
		return record
	}

	record.Selection = selection
	record.Reason = selection.Rationale
	if selection.Grade == contracts.GradePoor {
		record.Status = contracts.StatusLowLiquidity
	} else {
		record.Status = contracts.StatusSuccess
	}
	return record
}

// advance moves the stage machine, logging any illegal transition as
// a bug instead of corrupting the run
func (o *Orchestrator) advance(item contracts.WorkItem, from, to contracts.Stage) contracts.Stage {
	if !contracts.CanTransition(from, to) {
		o.logger.WithFields(map[string]interface{}{
			"item": item.Key(),
			"from": from,
			"to":   to,
		}).Error("Illegal stage transition")
	}
	return to
}

// providerStatus maps a provider failure to its terminal status:
// permanent failures (no options, bad symbol) are a viability outcome,
// transient ones are provider errors
func providerStatus(err error) contracts.Status {
	if provider.IsPermanent(err) {
		return contracts.StatusNoExpirations
	}
	return contracts.StatusProviderError
}

// terminal builds a terminal record
func terminal(item contracts.WorkItem, status contracts.Status, reason string) contracts.OutputRecord {
	return contracts.OutputRecord{Item: item, Status: status, Reason: reason}
}
