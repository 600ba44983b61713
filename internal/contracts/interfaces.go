package contracts

import (
	"context"
	"time"
)

// MarketData supplies expirations and chain snapshots. Implemented by
// the live provider client and by the cache-backed read-through source;
// both may fail with transient or permanent errors.
type MarketData interface {
	// ListExpirations returns all listed expirations for a ticker
	ListExpirations(ctx context.Context, ticker string, asOf time.Time) ([]time.Time, error)

	// FetchChain returns the full chain for one (ticker, expiration, as-of)
	FetchChain(ctx context.Context, ticker string, expiration, asOf time.Time) (*ChainSnapshot, error)
}

// Preflighter runs the cheap expirations-only viability probe
type Preflighter interface {
	Preflight(ctx context.Context, ticker string, window DTEWindow, asOf time.Time) (*PreflightResult, error)
}

// Sampler runs the Phase 1 single-expiration viability sample
type Sampler interface {
	Sample(ctx context.Context, item WorkItem, expirations []time.Time) (*SampleResult, error)
}

// Explorer runs Phase 2: full chain fetch and candidate construction
type Explorer interface {
	Explore(ctx context.Context, item WorkItem, expirations []time.Time) (*ExploreResult, error)
}

// Promoter reduces a candidate set to exactly one selection
type Promoter interface {
	Promote(item WorkItem, candidates []Candidate, underlyingPrice float64) (*PromotedSelection, error)
}
