package explore

import (
	"github.com/strikelab/optionscan/internal/contracts"
)

// buildVerticals enumerates two-leg spread candidates at strike pairs
// satisfying the minimum width and the maximum width-to-underlying
// ratio.
func (e *Explorer) buildVerticals(item contracts.WorkItem, chain *contracts.ChainSnapshot) []contracts.Candidate {
	if chain.UnderlyingPrice <= 0 {
		return nil
	}

	minWidth := e.params.Legs.MinStrikeWidth
	maxWidth := e.params.Legs.MaxWidthToSpotPct * chain.UnderlyingPrice

	optType, shortLow := verticalShape(item.Strategy, item.Bias)
	quotes := quotesOfType(chain, optType)

	var out []contracts.Candidate
	for i := 0; i < len(quotes); i++ {
		for j := i + 1; j < len(quotes); j++ {
			low, high := quotes[i], quotes[j]
			width := high.Strike - low.Strike
			if width < minWidth || width > maxWidth {
				continue
			}

			short, long := high, low
			if shortLow {
				short, long = low, high
			}

			out = append(out, contracts.Candidate{
				Ticker:   item.Ticker,
				Strategy: item.Strategy,
				Legs: []contracts.CandidateLeg{
					{Side: contracts.Sell, Expiration: chain.Expiration, Quote: short},
					{Side: contracts.Buy, Expiration: chain.Expiration, Quote: long},
				},
			})
		}
	}
	return out
}

// verticalShape resolves the spread's contract type and which strike
// carries the short leg:
//
//	credit + bullish  → bull put  (sell the higher put, buy the lower)
//	credit + bearish  → bear call (sell the lower call, buy the higher)
//	debit  + bullish  → bull call (buy the lower call, sell the higher)
//	debit  + bearish  → bear put  (buy the higher put, sell the lower)
//
// A neutral bias defaults to the premium-selling shape of the family.
func verticalShape(s contracts.StrategyType, bias contracts.Bias) (contracts.OptionType, bool) {
	credit := s == contracts.StrategyCreditSpread

	if credit {
		if bias == contracts.BiasBullish {
			return contracts.Put, false // short the higher strike
		}
		return contracts.Call, true // short the lower strike
	}

	if bias == contracts.BiasBearish {
		return contracts.Put, true // long the higher strike, short the lower
	}
	return contracts.Call, false // long the lower strike, short the higher
}
