// Package promote reduces a strategy's candidate set to exactly one
// executable selection.
//
// Exploration is range-based, promotion is a deterministic reduction:
// every ranker applies a strict ordering (primary criterion, defined
// tie-break, then a total fallback over strikes) so repeated calls on
// the same candidate set always pick the same structure.
//
// Rankers are registered per strategy type; adding a strategy means
// registering a new implementation, never editing a central
// conditional.
package promote

import (
	"errors"
	"fmt"

	"github.com/strikelab/optionscan/internal/contracts"
	"github.com/strikelab/optionscan/internal/scanconfig"
	"github.com/strikelab/optionscan/pkg/logger"
)

// ErrNoSuitableStrikes means no candidate survived exclusion and
// ranking
var ErrNoSuitableStrikes = errors.New("no suitable strikes")

// Ranker scores and orders candidates for one strategy family
type Ranker interface {
	// Score returns the primary ranking metric. ok=false excludes the
	// candidate (failed floor, undefined metric), which is different
	// from a low score.
	Score(c contracts.Candidate, spot float64) (float64, bool)

	// Better reports whether a strictly beats b. Implementations
	// resolve primary-metric ties with their family tie-break and
	// fall through to a total strike ordering.
	Better(a, b contracts.Candidate, spot float64) bool

	// Rationale describes why the winner won, for the audit trail
	Rationale(c contracts.Candidate, spot float64) string
}

// Engine holds the ranker registry and grading thresholds
type Engine struct {
	params  *scanconfig.Config
	logger  *logger.Logger
	rankers map[contracts.StrategyType]Ranker
}

// NewEngine creates a promotion engine with the default registry
func NewEngine(params *scanconfig.Config, log *logger.Logger) *Engine {
	e := &Engine{
		params:  params,
		logger:  log,
		rankers: make(map[contracts.StrategyType]Ranker),
	}

	single := &singleLegRanker{}
	vol := &volatilityRanker{minVega: params.Promotion.MinVega}
	debit := &debitSpreadRanker{}

	e.Register(contracts.StrategyLongCall, single)
	e.Register(contracts.StrategyLongPut, single)
	e.Register(contracts.StrategyCashSecuredPut, single)
	e.Register(contracts.StrategyCoveredCall, single)
	e.Register(contracts.StrategyLeapCall, single)
	e.Register(contracts.StrategyLeapPut, single)
	e.Register(contracts.StrategyCreditSpread, &creditSpreadRanker{})
	e.Register(contracts.StrategyDebitSpread, debit)
	e.Register(contracts.StrategyStraddle, vol)
	e.Register(contracts.StrategyStrangle, vol)
	e.Register(contracts.StrategyCalendar, vol)
	e.Register(contracts.StrategyIronCondor, &condorRanker{})
	e.Register(contracts.StrategyPMCC, debit)

	return e
}

// Register binds a ranker to a strategy type
func (e *Engine) Register(s contracts.StrategyType, r Ranker) {
	e.rankers[s] = r
}

// Promote picks exactly one selection from the candidate set.
// Candidates missing Greeks are excluded up front, never defaulted to
// zero; when exclusion empties the set the result is
// ErrNoSuitableStrikes.
func (e *Engine) Promote(item contracts.WorkItem, candidates []contracts.Candidate, underlyingPrice float64) (*contracts.PromotedSelection, error) {
	ranker, ok := e.rankers[item.Strategy]
	if !ok {
		return nil, fmt.Errorf("no ranker registered for strategy %s", item.Strategy)
	}

	var best *contracts.Candidate
	var bestScore float64
	excluded := 0

	for i := range candidates {
		c := candidates[i]

		if !c.HasGreeks() {
			excluded++
			continue
		}

		score, ok := ranker.Score(c, underlyingPrice)
		if !ok {
			excluded++
			continue
		}

		if best == nil || ranker.Better(c, *best, underlyingPrice) {
			best = &candidates[i]
			bestScore = score
		}
	}

	if best == nil {
		e.logger.WithFields(map[string]interface{}{
			"ticker":   item.Ticker,
			"strategy": item.Strategy,
			"total":    len(candidates),
			"excluded": excluded,
		}).Debug("Promotion excluded every candidate")
		return nil, ErrNoSuitableStrikes
	}

	return &contracts.PromotedSelection{
		Candidate: *best,
		Score:     bestScore,
		Grade:     e.grade(*best),
		Rationale: ranker.Rationale(*best, underlyingPrice),
	}, nil
}

// grade classifies the selection's liquidity from its thinnest leg
func (e *Engine) grade(c contracts.Candidate) contracts.QualityGrade {
	oi := c.MinOpenInterest()
	switch {
	case oi < e.params.Promotion.PoorOpenInterest:
		return contracts.GradePoor
	case oi < e.params.Promotion.MarginalOpenInterest:
		return contracts.GradeMarginal
	default:
		return contracts.GradeGood
	}
}

// lessStrikes is the total fallback ordering used by every ranker
// when primary and tie-break metrics are equal: lexicographic on the
// sorted strike list, then on leg count. It makes promotion fully
// deterministic.
func lessStrikes(a, b contracts.Candidate) bool {
	as, bs := a.Strikes(), b.Strikes()
	for i := 0; i < len(as) && i < len(bs); i++ {
		if as[i] != bs[i] {
			return as[i] < bs[i]
		}
	}
	return len(as) < len(bs)
}
