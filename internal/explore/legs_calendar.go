package explore

import (
	"github.com/strikelab/optionscan/internal/contracts"
)

// buildCalendars pairs a short front-expiration contract with a long
// back-expiration contract at the same strike inside the ATM band.
// Bias picks the contract type: puts for bearish, calls otherwise.
func (e *Explorer) buildCalendars(item contracts.WorkItem, front, back *contracts.ChainSnapshot) []contracts.Candidate {
	spot := front.UnderlyingPrice
	if spot <= 0 {
		return nil
	}

	optType := contracts.Call
	if item.Bias == contracts.BiasBearish {
		optType = contracts.Put
	}

	lo := spot * (1 - e.params.Sampling.ATMBandPct)
	hi := spot * (1 + e.params.Sampling.ATMBandPct)

	backByStrike := make(map[float64]contracts.OptionQuote)
	for _, q := range quotesOfType(back, optType) {
		backByStrike[q.Strike] = q
	}

	var out []contracts.Candidate
	for _, frontQ := range quotesOfType(front, optType) {
		if frontQ.Strike < lo || frontQ.Strike > hi {
			continue
		}
		backQ, ok := backByStrike[frontQ.Strike]
		if !ok {
			continue
		}
		out = append(out, contracts.Candidate{
			Ticker:   item.Ticker,
			Strategy: item.Strategy,
			Legs: []contracts.CandidateLeg{
				{Side: contracts.Sell, Expiration: front.Expiration, Quote: frontQ},
				{Side: contracts.Buy, Expiration: back.Expiration, Quote: backQ},
			},
		})
	}
	return out
}

// buildPMCC pairs a deep-in-the-money long LEAP call with a short
// near-term call above it (poor man's covered call)
func (e *Explorer) buildPMCC(item contracts.WorkItem, front, back *contracts.ChainSnapshot) []contracts.Candidate {
	var longs []contracts.OptionQuote
	for _, q := range quotesOfType(back, contracts.Call) {
		if q.HasGreeks && q.Delta >= e.params.Legs.PMCCLongDelta {
			longs = append(longs, q)
		}
	}

	var shorts []contracts.OptionQuote
	for _, q := range quotesOfType(front, contracts.Call) {
		if e.inDeltaBand(q) {
			shorts = append(shorts, q)
		}
	}

	var out []contracts.Candidate
	for _, long := range longs {
		for _, short := range shorts {
			// The short strike must sit above the long strike or the
			// structure carries assignment risk it cannot cover
			if short.Strike <= long.Strike {
				continue
			}
			out = append(out, contracts.Candidate{
				Ticker:   item.Ticker,
				Strategy: item.Strategy,
				Legs: []contracts.CandidateLeg{
					{Side: contracts.Buy, Expiration: back.Expiration, Quote: long},
					{Side: contracts.Sell, Expiration: front.Expiration, Quote: short},
				},
			})
		}
	}
	return out
}
