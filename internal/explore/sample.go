package explore

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/strikelab/optionscan/internal/contracts"
	"github.com/strikelab/optionscan/internal/scanconfig"
	"github.com/strikelab/optionscan/pkg/logger"
)

// Sampler runs Phase 1: one representative expiration, one chain, two
// cheap checks. It trades a small false-negative risk for an
// order-of-magnitude cut in full-chain fetches, since most illiquid
// names fail the sample outright.
type Sampler struct {
	source contracts.MarketData
	params *scanconfig.Config
	logger *logger.Logger
}

// NewSampler creates the Phase 1 stage
func NewSampler(source contracts.MarketData, params *scanconfig.Config, log *logger.Logger) *Sampler {
	return &Sampler{source: source, params: params, logger: log}
}

// Sample fetches the expiration closest to the strategy's target DTE
// and grades its near-the-money liquidity.
func (s *Sampler) Sample(ctx context.Context, item contracts.WorkItem, expirations []time.Time) (*contracts.SampleResult, error) {
	if len(expirations) == 0 {
		return &contracts.SampleResult{
			Outcome: contracts.SampleNoViableExpiries,
			Reason:  "no viable expirations to sample",
		}, nil
	}

	window := s.params.Windows.ForStrategy(item.Strategy)
	expiration := closestToTarget(expirations, item.AsOf, window.Target)
	dte := contracts.DaysBetween(item.AsOf, expiration)

	chain, err := s.source.FetchChain(ctx, item.Ticker, expiration, item.AsOf)
	if err != nil {
		return nil, err
	}

	result := &contracts.SampleResult{
		Expiration: expiration,
		DTE:        dte,
	}

	if chain.UnderlyingPrice <= 0 {
		result.Outcome = contracts.SampleFastReject
		result.Grade = contracts.GradePoor
		result.Reason = "sample chain carries no underlying price"
		return result, nil
	}

	inBand, liquid := s.bandCounts(chain)

	if inBand == 0 {
		result.Outcome = contracts.SampleFastReject
		result.Grade = contracts.GradePoor
		result.Reason = fmt.Sprintf("no strikes within %.0f%% of underlying %.2f",
			s.params.Sampling.ATMBandPct*100, chain.UnderlyingPrice)
		return result, nil
	}

	if liquid == 0 {
		result.Outcome = contracts.SampleFastReject
		result.Grade = contracts.GradePoor
		result.Reason = "no near-the-money strike with open interest and a live bid"
		return result, nil
	}

	result.Outcome = contracts.SampleDeepRequired
	result.Grade = s.grade(inBand, liquid)
	result.Reason = fmt.Sprintf("%d of %d near-the-money strikes liquid at %d DTE", liquid, inBand, dte)

	s.logger.WithFields(map[string]interface{}{
		"ticker":  item.Ticker,
		"dte":     dte,
		"in_band": inBand,
		"liquid":  liquid,
		"grade":   result.Grade,
	}).Debug("Sample passed, deep exploration required")

	return result, nil
}

// bandCounts counts strikes inside the ATM band and how many of them
// pass the basic liquidity check (nonzero open interest, nonzero bid)
func (s *Sampler) bandCounts(chain *contracts.ChainSnapshot) (inBand, liquid int) {
	lo := chain.UnderlyingPrice * (1 - s.params.Sampling.ATMBandPct)
	hi := chain.UnderlyingPrice * (1 + s.params.Sampling.ATMBandPct)

	for _, q := range chain.Quotes {
		if q.Strike < lo || q.Strike > hi {
			continue
		}
		inBand++
		if q.OpenInterest >= s.params.Sampling.MinOpenInterest && q.Bid > 0 {
			liquid++
		}
	}
	return inBand, liquid
}

// grade converts the liquid-strike ratio into a quality grade
func (s *Sampler) grade(inBand, liquid int) contracts.QualityGrade {
	ratio := float64(liquid) / float64(inBand)
	switch {
	case ratio >= s.params.Sampling.GoodRatio:
		return contracts.GradeGood
	case ratio >= s.params.Sampling.MarginalRatio:
		return contracts.GradeMarginal
	default:
		return contracts.GradePoor
	}
}

// closestToTarget picks the expiration whose DTE is nearest the
// target, preferring the earlier date on ties so the choice is
// deterministic.
func closestToTarget(expirations []time.Time, asOf time.Time, targetDTE int) time.Time {
	best := expirations[0]
	bestDist := math.Abs(float64(contracts.DaysBetween(asOf, best) - targetDTE))

	for _, exp := range expirations[1:] {
		dist := math.Abs(float64(contracts.DaysBetween(asOf, exp) - targetDTE))
		if dist < bestDist || (dist == bestDist && exp.Before(best)) {
			best = exp
			bestDist = dist
		}
	}
	return best
}
