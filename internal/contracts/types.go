package contracts

import (
	"fmt"
	"time"
)

// DateLayout is the canonical calendar-date format used in cache keys,
// file names and reports.
const DateLayout = "2006-01-02"

// StrategyType identifies one option strategy family member
type StrategyType string

const (
	StrategyLongCall       StrategyType = "long_call"
	StrategyLongPut        StrategyType = "long_put"
	StrategyCashSecuredPut StrategyType = "cash_secured_put"
	StrategyCoveredCall    StrategyType = "covered_call"
	StrategyCreditSpread   StrategyType = "credit_spread"
	StrategyDebitSpread    StrategyType = "debit_spread"
	StrategyStraddle       StrategyType = "straddle"
	StrategyStrangle       StrategyType = "strangle"
	StrategyIronCondor     StrategyType = "iron_condor"
	StrategyCalendar       StrategyType = "calendar"
	StrategyPMCC           StrategyType = "pmcc"
	StrategyLeapCall       StrategyType = "leap_call"
	StrategyLeapPut        StrategyType = "leap_put"
)

// AllStrategies returns every supported strategy type
func AllStrategies() []StrategyType {
	return []StrategyType{
		StrategyLongCall,
		StrategyLongPut,
		StrategyCashSecuredPut,
		StrategyCoveredCall,
		StrategyCreditSpread,
		StrategyDebitSpread,
		StrategyStraddle,
		StrategyStrangle,
		StrategyIronCondor,
		StrategyCalendar,
		StrategyPMCC,
		StrategyLeapCall,
		StrategyLeapPut,
	}
}

// IsValidStrategy checks if a strategy string is supported
func IsValidStrategy(s string) bool {
	for _, st := range AllStrategies() {
		if string(st) == s {
			return true
		}
	}
	return false
}

// StrategyFamily groups strategies that share leg structure and
// promotion logic
type StrategyFamily string

const (
	FamilySingle     StrategyFamily = "single"
	FamilyVertical   StrategyFamily = "vertical"
	FamilyVolatility StrategyFamily = "volatility"
	FamilyCondor     StrategyFamily = "condor"
	FamilyCalendar   StrategyFamily = "calendar"
)

// Family returns the structural family of a strategy
func (s StrategyType) Family() StrategyFamily {
	switch s {
	case StrategyCreditSpread, StrategyDebitSpread:
		return FamilyVertical
	case StrategyStraddle, StrategyStrangle:
		return FamilyVolatility
	case StrategyIronCondor:
		return FamilyCondor
	case StrategyCalendar, StrategyPMCC:
		return FamilyCalendar
	default:
		return FamilySingle
	}
}

// IsLEAP reports whether the strategy uses long-dated contracts
func (s StrategyType) IsLEAP() bool {
	return s == StrategyLeapCall || s == StrategyLeapPut
}

// Bias is the directional assumption behind a work item
type Bias string

const (
	BiasBullish Bias = "bullish"
	BiasBearish Bias = "bearish"
	BiasNeutral Bias = "neutral"
)

// IsValidBias checks if a bias string is supported
func IsValidBias(b string) bool {
	return b == string(BiasBullish) || b == string(BiasBearish) || b == string(BiasNeutral)
}

// WorkItem is one (ticker, strategy, bias, as-of date) tuple to explore.
// Immutable once enqueued; the pipeline must emit exactly one
// OutputRecord for it no matter what fails along the way.
type WorkItem struct {
	Ticker   string       `json:"ticker"`
	Strategy StrategyType `json:"strategy"`
	Bias     Bias         `json:"bias"`
	AsOf     time.Time    `json:"as_of"`
}

// Key returns the identity string used to match results back to items
func (w WorkItem) Key() string {
	return fmt.Sprintf("%s|%s|%s|%s", w.Ticker, w.Strategy, w.Bias, w.AsOf.Format(DateLayout))
}

// Validate checks that the item is well formed
func (w WorkItem) Validate() error {
	if w.Ticker == "" {
		return fmt.Errorf("work item missing ticker")
	}
	if !IsValidStrategy(string(w.Strategy)) {
		return fmt.Errorf("unknown strategy type: %s", w.Strategy)
	}
	if !IsValidBias(string(w.Bias)) {
		return fmt.Errorf("unknown bias: %s", w.Bias)
	}
	if w.AsOf.IsZero() {
		return fmt.Errorf("work item missing as-of date")
	}
	return nil
}

// DTEWindow bounds acceptable days-to-expiration for a strategy
type DTEWindow struct {
	Min    int `yaml:"min" json:"min"`
	Max    int `yaml:"max" json:"max"`
	Target int `yaml:"target" json:"target"`
}

// Contains reports whether a DTE falls inside the window
func (w DTEWindow) Contains(dte int) bool {
	return dte >= w.Min && dte <= w.Max
}

// String formats the window for status reasons
func (w DTEWindow) String() string {
	return fmt.Sprintf("%d-%d DTE", w.Min, w.Max)
}

// OptionType distinguishes calls from puts
type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

// OptionQuote is one contract's market state inside a chain snapshot
type OptionQuote struct {
	Type         OptionType `json:"type"`
	Strike       float64    `json:"strike"`
	Bid          float64    `json:"bid"`
	Ask          float64    `json:"ask"`
	Last         float64    `json:"last,omitempty"`
	Volume       int64      `json:"volume"`
	OpenInterest int64      `json:"open_interest"`
	IV           float64    `json:"iv,omitempty"`

	// Greeks. HasGreeks is false when the provider omitted them; such
	// quotes are excluded from ranking rather than defaulted to zero.
	Delta     float64 `json:"delta,omitempty"`
	Gamma     float64 `json:"gamma,omitempty"`
	Theta     float64 `json:"theta,omitempty"`
	Vega      float64 `json:"vega,omitempty"`
	HasGreeks bool    `json:"has_greeks"`
}

// Mid returns the bid/ask midpoint
func (q OptionQuote) Mid() float64 {
	return (q.Bid + q.Ask) / 2
}

// SpreadPct returns the bid-ask spread as a fraction of mid.
// A quote with no mid is maximally wide.
func (q OptionQuote) SpreadPct() float64 {
	mid := q.Mid()
	if mid <= 0 {
		return 1
	}
	return (q.Ask - q.Bid) / mid
}

// ChainSnapshot is the raw contract set for one (ticker, expiration)
// as observed at the as-of date. Immutable after capture.
type ChainSnapshot struct {
	Ticker          string        `json:"ticker"`
	Expiration      time.Time     `json:"expiration"`
	AsOf            time.Time     `json:"as_of"`
	UnderlyingPrice float64       `json:"underlying_price"`
	FetchedAt       time.Time     `json:"fetched_at"`
	Quotes          []OptionQuote `json:"quotes"`
}

// DTE returns days to expiration relative to the as-of date
func (s *ChainSnapshot) DTE() int {
	return DaysBetween(s.AsOf, s.Expiration)
}

// DaysBetween returns whole calendar days from a to b
func DaysBetween(a, b time.Time) int {
	a = a.Truncate(24 * time.Hour)
	b = b.Truncate(24 * time.Hour)
	return int(b.Sub(a).Hours() / 24)
}

// QualityGrade grades a sample's or selection's liquidity
type QualityGrade string

const (
	GradeGood     QualityGrade = "good"
	GradeMarginal QualityGrade = "marginal"
	GradePoor     QualityGrade = "poor"
)

// SampleOutcome is the terminal decision of the Phase 1 sample
type SampleOutcome string

const (
	SampleDeepRequired     SampleOutcome = "deep_required"
	SampleFastReject       SampleOutcome = "fast_reject"
	SampleNoViableExpiries SampleOutcome = "no_viable_expirations"
)

// SampleResult is the per-item output of Phase 1. Produced once,
// never mutated.
type SampleResult struct {
	Outcome    SampleOutcome `json:"outcome"`
	Expiration time.Time     `json:"expiration,omitempty"`
	DTE        int           `json:"dte,omitempty"`
	Grade      QualityGrade  `json:"grade,omitempty"`
	Reason     string        `json:"reason,omitempty"`
}

// PreflightResult is the output of the expirations-only viability probe
type PreflightResult struct {
	Viable      bool        `json:"viable"`
	Expirations []time.Time `json:"expirations,omitempty"`
	Reason      string      `json:"reason,omitempty"`
}

// LegSide is the direction of one leg
type LegSide string

const (
	Buy  LegSide = "buy"
	Sell LegSide = "sell"
)

// CandidateLeg is one contract inside a candidate structure
type CandidateLeg struct {
	Side       LegSide     `json:"side"`
	Expiration time.Time   `json:"expiration"`
	Quote      OptionQuote `json:"quote"`
	Ratio      int         `json:"ratio,omitempty"`
}

// Candidate is one fully priced, Greek-annotated structure considered
// for a strategy. Ephemeral: built in Phase 2, consumed by promotion.
type Candidate struct {
	Ticker   string         `json:"ticker"`
	Strategy StrategyType   `json:"strategy"`
	Legs     []CandidateLeg `json:"legs"`
}

// HasGreeks reports whether every leg carries a full Greek set
func (c Candidate) HasGreeks() bool {
	for _, leg := range c.Legs {
		if !leg.Quote.HasGreeks {
			return false
		}
	}
	return len(c.Legs) > 0
}

// NetPremium returns premium received minus premium paid at mid.
// Positive values are net credit structures.
func (c Candidate) NetPremium() float64 {
	var net float64
	for _, leg := range c.Legs {
		qty := float64(max(leg.Ratio, 1))
		if leg.Side == Sell {
			net += leg.Quote.Mid() * qty
		} else {
			net -= leg.Quote.Mid() * qty
		}
	}
	return net
}

// NetDelta returns the position delta (sold legs contribute negatively)
func (c Candidate) NetDelta() float64 {
	return c.netGreek(func(q OptionQuote) float64 { return q.Delta })
}

// NetVega returns the position vega
func (c Candidate) NetVega() float64 {
	return c.netGreek(func(q OptionQuote) float64 { return q.Vega })
}

// NetTheta returns the position theta
func (c Candidate) NetTheta() float64 {
	return c.netGreek(func(q OptionQuote) float64 { return q.Theta })
}

func (c Candidate) netGreek(f func(OptionQuote) float64) float64 {
	var net float64
	for _, leg := range c.Legs {
		qty := float64(max(leg.Ratio, 1))
		v := f(leg.Quote) * qty
		if leg.Side == Sell {
			net -= v
		} else {
			net += v
		}
	}
	return net
}

// Width returns the distance between the highest and lowest strike
func (c Candidate) Width() float64 {
	if len(c.Legs) == 0 {
		return 0
	}
	lo, hi := c.Legs[0].Quote.Strike, c.Legs[0].Quote.Strike
	for _, leg := range c.Legs[1:] {
		if leg.Quote.Strike < lo {
			lo = leg.Quote.Strike
		}
		if leg.Quote.Strike > hi {
			hi = leg.Quote.Strike
		}
	}
	return hi - lo
}

// WorstSpreadPct returns the widest bid-ask spread across legs
func (c Candidate) WorstSpreadPct() float64 {
	var worst float64
	for _, leg := range c.Legs {
		if p := leg.Quote.SpreadPct(); p > worst {
			worst = p
		}
	}
	return worst
}

// MinOpenInterest returns the thinnest leg's open interest
func (c Candidate) MinOpenInterest() int64 {
	if len(c.Legs) == 0 {
		return 0
	}
	oi := c.Legs[0].Quote.OpenInterest
	for _, leg := range c.Legs[1:] {
		if leg.Quote.OpenInterest < oi {
			oi = leg.Quote.OpenInterest
		}
	}
	return oi
}

// ShortLegs returns the sold legs of the structure
func (c Candidate) ShortLegs() []CandidateLeg {
	var out []CandidateLeg
	for _, leg := range c.Legs {
		if leg.Side == Sell {
			out = append(out, leg)
		}
	}
	return out
}

// Strikes returns the strikes of every leg in order
func (c Candidate) Strikes() []float64 {
	out := make([]float64, 0, len(c.Legs))
	for _, leg := range c.Legs {
		out = append(out, leg.Quote.Strike)
	}
	return out
}

// ExploreResult is the Phase 2 output: the candidate set plus the
// underlying price observed in the fetched chains, which promotion
// ranking needs
type ExploreResult struct {
	Candidates      []Candidate `json:"candidates"`
	UnderlyingPrice float64     `json:"underlying_price"`
}

// PromotedSelection is the single structure chosen to represent a
// strategy for execution. Immutable once created.
type PromotedSelection struct {
	Candidate Candidate    `json:"candidate"`
	Score     float64      `json:"score"`
	Grade     QualityGrade `json:"grade"`
	Rationale string       `json:"rationale"`
}

// Status is a terminal, mutually exclusive pipeline outcome
type Status string

const (
	StatusSuccess       Status = "success"
	StatusLowLiquidity  Status = "low_liquidity"
	StatusNoStrikes     Status = "no_suitable_strikes"
	StatusFastReject    Status = "fast_reject"
	StatusNoExpirations Status = "no_viable_expirations"
	StatusProviderError Status = "provider_error"
)

// OutputRecord is the terminal artifact for one work item.
// Exactly one exists per item that entered the pipeline.
type OutputRecord struct {
	Item      WorkItem           `json:"item"`
	Status    Status             `json:"status"`
	Reason    string             `json:"reason"`
	Selection *PromotedSelection `json:"selection,omitempty"`
	Sample    *SampleResult      `json:"sample,omitempty"`

	// Candidates is the full Phase 2 candidate dump. Populated only
	// when the scan runs with candidate retention enabled.
	Candidates []Candidate `json:"candidates,omitempty"`
}
