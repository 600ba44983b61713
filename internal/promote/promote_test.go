package promote

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strikelab/optionscan/internal/contracts"
	"github.com/strikelab/optionscan/internal/scanconfig"
	"github.com/strikelab/optionscan/pkg/logger"
)

var promoteAsOf = time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

func promoteItem(strategy contracts.StrategyType) contracts.WorkItem {
	return contracts.WorkItem{
		Ticker:   "TEST",
		Strategy: strategy,
		Bias:     contracts.BiasBullish,
		AsOf:     promoteAsOf,
	}
}

func leg(side contracts.LegSide, q contracts.OptionQuote) contracts.CandidateLeg {
	return contracts.CandidateLeg{Side: side, Expiration: promoteAsOf.AddDate(0, 0, 45), Quote: q}
}

func quote(t contracts.OptionType, strike, bid, ask, delta, theta, vega float64, oi int64) contracts.OptionQuote {
	return contracts.OptionQuote{
		Type: t, Strike: strike, Bid: bid, Ask: ask,
		OpenInterest: oi, HasGreeks: true,
		Delta: delta, Theta: theta, Vega: vega,
	}
}

func debitSpread(lowStrike, highStrike, netDelta, netTheta float64, oi int64) contracts.Candidate {
	// Split the net Greeks across the two legs; only the net matters
	// to the ranker
	return contracts.Candidate{
		Ticker:   "TEST",
		Strategy: contracts.StrategyDebitSpread,
		Legs: []contracts.CandidateLeg{
			leg(contracts.Buy, quote(contracts.Call, lowStrike, 3.00, 3.20, netDelta+0.20, netTheta-0.01, 0.10, oi)),
			leg(contracts.Sell, quote(contracts.Call, highStrike, 1.00, 1.10, 0.20, -0.01, 0.05, oi)),
		},
	}
}

func TestPromote_PicksBestDebitSpread(t *testing.T) {
	engine := NewEngine(scanconfig.Default(), logger.NewNop())

	// delta/theta ratios: a = 0.40/0.02 = 20, b = 0.30/0.01 = 30
	a := debitSpread(100, 105, 0.40, -0.02, 500)
	b := debitSpread(100, 110, 0.30, -0.01, 500)

	selection, err := engine.Promote(promoteItem(contracts.StrategyDebitSpread),
		[]contracts.Candidate{a, b}, 102)
	require.NoError(t, err)

	assert.Equal(t, 110.0, selection.Candidate.Legs[1].Quote.Strike, "higher delta-per-theta wins")
	assert.InDelta(t, 30.0, selection.Score, 0.01)
	assert.Equal(t, contracts.GradeGood, selection.Grade)
	assert.NotEmpty(t, selection.Rationale)
}

func TestPromote_IsDeterministic(t *testing.T) {
	engine := NewEngine(scanconfig.Default(), logger.NewNop())

	candidates := []contracts.Candidate{
		debitSpread(100, 105, 0.40, -0.02, 500),
		debitSpread(95, 100, 0.40, -0.02, 500),
		debitSpread(100, 110, 0.40, -0.02, 500),
	}
	item := promoteItem(contracts.StrategyDebitSpread)

	first, err := engine.Promote(item, candidates, 102)
	require.NoError(t, err)

	// Same set in a different order must pick the same structure
	reordered := []contracts.Candidate{candidates[2], candidates[0], candidates[1]}
	second, err := engine.Promote(item, reordered, 102)
	require.NoError(t, err)

	assert.Equal(t, first.Candidate.Strikes(), second.Candidate.Strikes())
	assert.Equal(t, first.Score, second.Score)
}

func TestPromote_TiesFallBackToStrikeOrder(t *testing.T) {
	engine := NewEngine(scanconfig.Default(), logger.NewNop())

	// Identical metrics everywhere; only the strikes differ
	a := debitSpread(100, 105, 0.40, -0.02, 500)
	b := debitSpread(95, 100, 0.40, -0.02, 500)

	selection, err := engine.Promote(promoteItem(contracts.StrategyDebitSpread),
		[]contracts.Candidate{a, b}, 102)
	require.NoError(t, err)

	assert.Equal(t, []float64{95, 100}, selection.Candidate.Strikes(),
		"full tie resolves to the lexicographically smaller strike set")
}

func TestPromote_MissingGreeksExcluded(t *testing.T) {
	engine := NewEngine(scanconfig.Default(), logger.NewNop())

	blind := debitSpread(100, 105, 0.40, -0.02, 500)
	blind.Legs[0].Quote.HasGreeks = false

	sighted := debitSpread(100, 110, 0.10, -0.05, 500)

	selection, err := engine.Promote(promoteItem(contracts.StrategyDebitSpread),
		[]contracts.Candidate{blind, sighted}, 102)
	require.NoError(t, err)

	assert.Equal(t, 110.0, selection.Candidate.Legs[1].Quote.Strike,
		"candidate with missing Greeks loses even to a worse-scoring one")
}

func TestPromote_AllExcludedIsNoSuitableStrikes(t *testing.T) {
	engine := NewEngine(scanconfig.Default(), logger.NewNop())

	blind := debitSpread(100, 105, 0.40, -0.02, 500)
	blind.Legs[0].Quote.HasGreeks = false

	zeroTheta := debitSpread(100, 110, 0.40, 0, 500)

	_, err := engine.Promote(promoteItem(contracts.StrategyDebitSpread),
		[]contracts.Candidate{blind, zeroTheta}, 102)
	require.ErrorIs(t, err, ErrNoSuitableStrikes)
}

func TestPromote_EmptySetIsNoSuitableStrikes(t *testing.T) {
	engine := NewEngine(scanconfig.Default(), logger.NewNop())

	_, err := engine.Promote(promoteItem(contracts.StrategyDebitSpread), nil, 102)
	require.ErrorIs(t, err, ErrNoSuitableStrikes)
}

func TestPromote_UnknownStrategyFails(t *testing.T) {
	engine := NewEngine(scanconfig.Default(), logger.NewNop())

	item := promoteItem("butterfly")
	_, err := engine.Promote(item, []contracts.Candidate{debitSpread(100, 105, 0.4, -0.02, 500)}, 102)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSuitableStrikes)
}

func TestPromote_GradesFromThinnestLeg(t *testing.T) {
	engine := NewEngine(scanconfig.Default(), logger.NewNop())
	item := promoteItem(contracts.StrategyDebitSpread)

	// Poor: below 25
	selection, err := engine.Promote(item,
		[]contracts.Candidate{debitSpread(100, 105, 0.40, -0.02, 10)}, 102)
	require.NoError(t, err)
	assert.Equal(t, contracts.GradePoor, selection.Grade)

	// Marginal: below 100
	selection, err = engine.Promote(item,
		[]contracts.Candidate{debitSpread(100, 105, 0.40, -0.02, 60)}, 102)
	require.NoError(t, err)
	assert.Equal(t, contracts.GradeMarginal, selection.Grade)
}

func TestPromote_CreditSpreadPrefersReturnOnRisk(t *testing.T) {
	engine := NewEngine(scanconfig.Default(), logger.NewNop())

	creditSpread := func(shortStrike, longStrike, shortMid, longMid float64) contracts.Candidate {
		return contracts.Candidate{
			Ticker:   "TEST",
			Strategy: contracts.StrategyCreditSpread,
			Legs: []contracts.CandidateLeg{
				leg(contracts.Sell, quote(contracts.Put, shortStrike, shortMid-0.05, shortMid+0.05, -0.30, -0.02, 0.08, 500)),
				leg(contracts.Buy, quote(contracts.Put, longStrike, longMid-0.05, longMid+0.05, -0.20, -0.01, 0.06, 500)),
			},
		}
	}

	// a: credit 1.00 on width 5 -> 1.00/4.00 = 0.25
	// b: credit 1.50 on width 5 -> 1.50/3.50 = 0.43
	a := creditSpread(95, 90, 1.80, 0.80)
	b := creditSpread(97, 92, 2.50, 1.00)

	selection, err := engine.Promote(promoteItem(contracts.StrategyCreditSpread),
		[]contracts.Candidate{a, b}, 100)
	require.NoError(t, err)

	assert.Equal(t, []float64{97, 92}, selection.Candidate.Strikes())
	assert.InDelta(t, 0.428, selection.Score, 0.01)
}

func TestPromote_VolatilityFloorExcludesLowVega(t *testing.T) {
	params := scanconfig.Default()
	params.Promotion.MinVega = 0.15
	engine := NewEngine(params, logger.NewNop())

	straddle := func(strike, vegaEach float64) contracts.Candidate {
		return contracts.Candidate{
			Ticker:   "TEST",
			Strategy: contracts.StrategyStraddle,
			Legs: []contracts.CandidateLeg{
				leg(contracts.Buy, quote(contracts.Call, strike, 3.0, 3.2, 0.50, -0.03, vegaEach, 500)),
				leg(contracts.Buy, quote(contracts.Put, strike, 2.8, 3.0, -0.50, -0.03, vegaEach, 500)),
			},
		}
	}

	// 2 * 0.05 = 0.10 net vega, below the 0.15 floor
	low := straddle(100, 0.05)
	high := straddle(102, 0.10)

	selection, err := engine.Promote(promoteItem(contracts.StrategyStraddle),
		[]contracts.Candidate{low, high}, 101)
	require.NoError(t, err)
	assert.Equal(t, []float64{102, 102}, selection.Candidate.Strikes())

	_, err = engine.Promote(promoteItem(contracts.StrategyStraddle),
		[]contracts.Candidate{low}, 101)
	require.ErrorIs(t, err, ErrNoSuitableStrikes)
}
