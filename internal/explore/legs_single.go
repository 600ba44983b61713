package explore

import (
	"github.com/strikelab/optionscan/internal/contracts"
)

// buildSingleLegs enumerates one candidate per strike inside the delta
// band for single-leg strategies (long call/put, CSP, covered call,
// LEAPs).
func (e *Explorer) buildSingleLegs(item contracts.WorkItem, chain *contracts.ChainSnapshot) []contracts.Candidate {
	optType, side := singleLegShape(item.Strategy)

	var out []contracts.Candidate
	for _, q := range quotesOfType(chain, optType) {
		if !e.inDeltaBand(q) {
			continue
		}
		out = append(out, contracts.Candidate{
			Ticker:   item.Ticker,
			Strategy: item.Strategy,
			Legs: []contracts.CandidateLeg{
				{Side: side, Expiration: chain.Expiration, Quote: q},
			},
		})
	}
	return out
}

// singleLegShape maps a single-leg strategy to its contract type and
// direction
func singleLegShape(s contracts.StrategyType) (contracts.OptionType, contracts.LegSide) {
	switch s {
	case contracts.StrategyLongPut, contracts.StrategyLeapPut:
		return contracts.Put, contracts.Buy
	case contracts.StrategyCashSecuredPut:
		return contracts.Put, contracts.Sell
	case contracts.StrategyCoveredCall:
		return contracts.Call, contracts.Sell
	default:
		// long_call, leap_call
		return contracts.Call, contracts.Buy
	}
}
