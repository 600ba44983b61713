package explore

import (
	"context"
	"time"

	"github.com/strikelab/optionscan/internal/contracts"
)

// fakeSource is a scripted MarketData that counts calls, so tests can
// assert which fetches each stage performs
type fakeSource struct {
	expirations []time.Time
	chains      map[string]*contracts.ChainSnapshot
	listErr     error
	chainErr    error

	listCalls  int
	chainCalls []time.Time
}

func (f *fakeSource) ListExpirations(ctx context.Context, ticker string, asOf time.Time) ([]time.Time, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.expirations, nil
}

func (f *fakeSource) FetchChain(ctx context.Context, ticker string, expiration, asOf time.Time) (*contracts.ChainSnapshot, error) {
	f.chainCalls = append(f.chainCalls, expiration)
	if f.chainErr != nil {
		return nil, f.chainErr
	}
	chain, ok := f.chains[expiration.Format(contracts.DateLayout)]
	if !ok {
		return &contracts.ChainSnapshot{Ticker: ticker, Expiration: expiration, AsOf: asOf}, nil
	}
	return chain, nil
}

var testAsOf = time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

// expAt returns an expiration at the given DTE from testAsOf
func expAt(dte int) time.Time {
	return testAsOf.AddDate(0, 0, dte)
}

// liquidQuote builds a quote that passes the default liquidity floor
func liquidQuote(t contracts.OptionType, strike, delta float64) contracts.OptionQuote {
	return contracts.OptionQuote{
		Type:         t,
		Strike:       strike,
		Bid:          1.00,
		Ask:          1.10,
		OpenInterest: 500,
		Volume:       100,
		HasGreeks:    true,
		Delta:        delta,
		Theta:        -0.02,
		Vega:         0.10,
	}
}

func chainWith(expiration time.Time, spot float64, quotes ...contracts.OptionQuote) *contracts.ChainSnapshot {
	return &contracts.ChainSnapshot{
		Ticker:          "TEST",
		Expiration:      expiration,
		AsOf:            testAsOf,
		UnderlyingPrice: spot,
		Quotes:          quotes,
	}
}
