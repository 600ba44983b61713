package explore

import (
	"context"
	"sort"
	"time"

	"github.com/strikelab/optionscan/internal/contracts"
	"github.com/strikelab/optionscan/internal/scanconfig"
	"github.com/strikelab/optionscan/pkg/logger"
)

// Explorer runs Phase 2: the full chain fetch across every expiration
// relevant to the strategy's DTE policy, then candidate construction
// for the strategy family.
//
// Marginal-liquidity candidates are returned, not filtered; grading
// happens at promotion time. Only candidates below the hard floor
// (open interest, spread ceiling) are dropped here.
type Explorer struct {
	source contracts.MarketData
	params *scanconfig.Config
	logger *logger.Logger
}

// NewExplorer creates the Phase 2 stage
func NewExplorer(source contracts.MarketData, params *scanconfig.Config, log *logger.Logger) *Explorer {
	return &Explorer{source: source, params: params, logger: log}
}

// Explore builds the candidate set for one work item. expirations is
// the preflight's viable list for the strategy's primary window;
// two-expiration strategies re-list to find their back window.
func (e *Explorer) Explore(ctx context.Context, item contracts.WorkItem, expirations []time.Time) (*contracts.ExploreResult, error) {
	if item.Strategy.Family() == contracts.FamilyCalendar {
		return e.exploreTwoExpiration(ctx, item)
	}

	result := &contracts.ExploreResult{}

	for _, expiration := range expirations {
		chain, err := e.source.FetchChain(ctx, item.Ticker, expiration, item.AsOf)
		if err != nil {
			return nil, err
		}
		if result.UnderlyingPrice == 0 {
			result.UnderlyingPrice = chain.UnderlyingPrice
		}

		result.Candidates = append(result.Candidates, e.buildForChain(item, chain)...)
	}

	result.Candidates = e.applyLiquidityFloor(result.Candidates)

	e.logger.WithFields(map[string]interface{}{
		"ticker":      item.Ticker,
		"strategy":    item.Strategy,
		"expirations": len(expirations),
		"candidates":  len(result.Candidates),
	}).Debug("Deep exploration complete")

	return result, nil
}

// buildForChain dispatches to the family's leg builder
func (e *Explorer) buildForChain(item contracts.WorkItem, chain *contracts.ChainSnapshot) []contracts.Candidate {
	switch item.Strategy.Family() {
	case contracts.FamilySingle:
		return e.buildSingleLegs(item, chain)
	case contracts.FamilyVertical:
		return e.buildVerticals(item, chain)
	case contracts.FamilyVolatility:
		return e.buildVolatility(item, chain)
	case contracts.FamilyCondor:
		return e.buildCondors(item, chain)
	default:
		return nil
	}
}

// exploreTwoExpiration handles calendar-class strategies, which need
// one coordinated (front, back) expiration pair instead of a single
// window
func (e *Explorer) exploreTwoExpiration(ctx context.Context, item contracts.WorkItem) (*contracts.ExploreResult, error) {
	frontWin := e.params.Windows.CalendarFront
	backWin := e.params.Windows.CalendarBack
	if item.Strategy == contracts.StrategyPMCC {
		frontWin = e.params.Windows.Standard
		backWin = e.params.Windows.Leap
	}

	// The expirations index is cached, so re-listing costs nothing
	// beyond the preflight fetch
	all, err := e.source.ListExpirations(ctx, item.Ticker, item.AsOf)
	if err != nil {
		return nil, err
	}

	fronts := filterWindow(all, item.AsOf, frontWin)
	backs := filterWindow(all, item.AsOf, backWin)
	if len(fronts) == 0 || len(backs) == 0 {
		return &contracts.ExploreResult{}, nil
	}

	front := closestToTarget(fronts, item.AsOf, frontWin.Target)
	back := closestToTarget(backs, item.AsOf, backWin.Target)

	frontChain, err := e.source.FetchChain(ctx, item.Ticker, front, item.AsOf)
	if err != nil {
		return nil, err
	}
	backChain, err := e.source.FetchChain(ctx, item.Ticker, back, item.AsOf)
	if err != nil {
		return nil, err
	}

	result := &contracts.ExploreResult{UnderlyingPrice: frontChain.UnderlyingPrice}

	if item.Strategy == contracts.StrategyPMCC {
		result.Candidates = e.buildPMCC(item, frontChain, backChain)
	} else {
		result.Candidates = e.buildCalendars(item, frontChain, backChain)
	}

	result.Candidates = e.applyLiquidityFloor(result.Candidates)
	return result, nil
}

// applyLiquidityFloor drops candidates below the hard minimums. When
// nothing survives, the orchestrator assigns NoSuitableStrikes.
func (e *Explorer) applyLiquidityFloor(candidates []contracts.Candidate) []contracts.Candidate {
	floor := e.params.Liquidity
	out := candidates[:0]
	for _, c := range candidates {
		if c.MinOpenInterest() < floor.MinOpenInterest {
			continue
		}
		if c.WorstSpreadPct() > floor.MaxSpreadPct {
			continue
		}
		out = append(out, c)
	}
	return out
}

// quotesOfType returns the chain's quotes of one type, sorted by strike
func quotesOfType(chain *contracts.ChainSnapshot, t contracts.OptionType) []contracts.OptionQuote {
	var out []contracts.OptionQuote
	for _, q := range chain.Quotes {
		if q.Type == t {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Strike < out[j].Strike })
	return out
}

// filterWindow keeps expirations inside a DTE window, sorted ascending
func filterWindow(expirations []time.Time, asOf time.Time, window contracts.DTEWindow) []time.Time {
	var out []time.Time
	for _, exp := range expirations {
		if window.Contains(contracts.DaysBetween(asOf, exp)) {
			out = append(out, exp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// inDeltaBand reports whether |delta| falls inside the configured
// band around the target. Quotes without Greeks never qualify.
func (e *Explorer) inDeltaBand(q contracts.OptionQuote) bool {
	if !q.HasGreeks {
		return false
	}
	target := e.params.Legs.DeltaTarget
	band := e.params.Legs.DeltaBand
	d := q.Delta
	if d < 0 {
		d = -d
	}
	return d >= target-band && d <= target+band
}
