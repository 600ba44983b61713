package explore

import (
	"math"

	"github.com/strikelab/optionscan/internal/contracts"
)

// buildVolatility enumerates straddle or strangle candidates around
// the underlying price.
func (e *Explorer) buildVolatility(item contracts.WorkItem, chain *contracts.ChainSnapshot) []contracts.Candidate {
	if chain.UnderlyingPrice <= 0 {
		return nil
	}
	if item.Strategy == contracts.StrategyStraddle {
		return e.buildStraddles(item, chain)
	}
	return e.buildStrangles(item, chain)
}

// buildStraddles pairs a call and a put at the same strike inside the
// ATM band
func (e *Explorer) buildStraddles(item contracts.WorkItem, chain *contracts.ChainSnapshot) []contracts.Candidate {
	spot := chain.UnderlyingPrice
	lo := spot * (1 - e.params.Sampling.ATMBandPct)
	hi := spot * (1 + e.params.Sampling.ATMBandPct)

	puts := make(map[float64]contracts.OptionQuote)
	for _, q := range quotesOfType(chain, contracts.Put) {
		puts[q.Strike] = q
	}

	var out []contracts.Candidate
	for _, call := range quotesOfType(chain, contracts.Call) {
		if call.Strike < lo || call.Strike > hi {
			continue
		}
		put, ok := puts[call.Strike]
		if !ok {
			continue
		}
		out = append(out, contracts.Candidate{
			Ticker:   item.Ticker,
			Strategy: item.Strategy,
			Legs: []contracts.CandidateLeg{
				{Side: contracts.Buy, Expiration: chain.Expiration, Quote: call},
				{Side: contracts.Buy, Expiration: chain.Expiration, Quote: put},
			},
		})
	}
	return out
}

// buildStrangles pairs an OTM put below spot with an OTM call above
// spot at roughly symmetric offsets around the configured band
func (e *Explorer) buildStrangles(item contracts.WorkItem, chain *contracts.ChainSnapshot) []contracts.Candidate {
	spot := chain.UnderlyingPrice
	target := spot * e.params.Legs.StrangleOTMPct

	// Accept offsets between half and double the target band, and
	// require the two offsets to match within a quarter of the target
	minOff, maxOff := target/2, target*2
	tolerance := target / 4

	var putLegs, callLegs []contracts.OptionQuote
	for _, q := range quotesOfType(chain, contracts.Put) {
		if off := spot - q.Strike; off >= minOff && off <= maxOff {
			putLegs = append(putLegs, q)
		}
	}
	for _, q := range quotesOfType(chain, contracts.Call) {
		if off := q.Strike - spot; off >= minOff && off <= maxOff {
			callLegs = append(callLegs, q)
		}
	}

	var out []contracts.Candidate
	for _, put := range putLegs {
		for _, call := range callLegs {
			putOff := spot - put.Strike
			callOff := call.Strike - spot
			if math.Abs(putOff-callOff) > tolerance {
				continue
			}
			out = append(out, contracts.Candidate{
				Ticker:   item.Ticker,
				Strategy: item.Strategy,
				Legs: []contracts.CandidateLeg{
					{Side: contracts.Buy, Expiration: chain.Expiration, Quote: call},
					{Side: contracts.Buy, Expiration: chain.Expiration, Quote: put},
				},
			})
		}
	}
	return out
}
