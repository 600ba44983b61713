package explore

import (
	"math"

	"github.com/strikelab/optionscan/internal/contracts"
)

// buildCondors enumerates iron condor candidates: a short put and a
// short call in the delta band on either side of spot, each protected
// by a wing one configured width further out.
func (e *Explorer) buildCondors(item contracts.WorkItem, chain *contracts.ChainSnapshot) []contracts.Candidate {
	spot := chain.UnderlyingPrice
	if spot <= 0 {
		return nil
	}

	puts := quotesOfType(chain, contracts.Put)
	calls := quotesOfType(chain, contracts.Call)

	var shortPuts, shortCalls []contracts.OptionQuote
	for _, q := range puts {
		if q.Strike < spot && e.inDeltaBand(q) {
			shortPuts = append(shortPuts, q)
		}
	}
	for _, q := range calls {
		if q.Strike > spot && e.inDeltaBand(q) {
			shortCalls = append(shortCalls, q)
		}
	}

	wing := e.params.Legs.CondorWingWidth

	var out []contracts.Candidate
	for _, shortPut := range shortPuts {
		longPut, ok := closestStrike(puts, shortPut.Strike-wing)
		if !ok || longPut.Strike >= shortPut.Strike {
			continue
		}
		for _, shortCall := range shortCalls {
			longCall, ok := closestStrike(calls, shortCall.Strike+wing)
			if !ok || longCall.Strike <= shortCall.Strike {
				continue
			}
			out = append(out, contracts.Candidate{
				Ticker:   item.Ticker,
				Strategy: item.Strategy,
				Legs: []contracts.CandidateLeg{
					{Side: contracts.Sell, Expiration: chain.Expiration, Quote: shortPut},
					{Side: contracts.Buy, Expiration: chain.Expiration, Quote: longPut},
					{Side: contracts.Sell, Expiration: chain.Expiration, Quote: shortCall},
					{Side: contracts.Buy, Expiration: chain.Expiration, Quote: longCall},
				},
			})
		}
	}
	return out
}

// closestStrike returns the quote whose strike is nearest the target
func closestStrike(quotes []contracts.OptionQuote, target float64) (contracts.OptionQuote, bool) {
	if len(quotes) == 0 {
		return contracts.OptionQuote{}, false
	}
	best := quotes[0]
	bestDist := math.Abs(best.Strike - target)
	for _, q := range quotes[1:] {
		if dist := math.Abs(q.Strike - target); dist < bestDist {
			best = q
			bestDist = dist
		}
	}
	return best, true
}
