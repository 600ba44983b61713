package provider

import (
	"context"
	"time"

	"github.com/strikelab/optionscan/internal/chaincache"
	"github.com/strikelab/optionscan/internal/contracts"
	"github.com/strikelab/optionscan/pkg/logger"
)

// CachedSource is a read-through composition of the chain cache and a
// live client. Every stage that would otherwise hit the provider goes
// through this type, so cache semantics live in exactly one place.
type CachedSource struct {
	client contracts.MarketData
	cache  *chaincache.Store
	logger *logger.Logger
}

// NewCachedSource wraps a live client with the cache store
func NewCachedSource(client contracts.MarketData, cache *chaincache.Store, log *logger.Logger) *CachedSource {
	return &CachedSource{
		client: client,
		cache:  cache,
		logger: log,
	}
}

// ListExpirations reads the expirations index through the cache
func (s *CachedSource) ListExpirations(ctx context.Context, ticker string, asOf time.Time) ([]time.Time, error) {
	if expirations, ok := s.cache.GetExpirations(ticker, asOf); ok {
		return expirations, nil
	}

	expirations, err := s.client.ListExpirations(ctx, ticker, asOf)
	if err != nil {
		return nil, err
	}

	if err := s.cache.PutExpirations(ticker, asOf, expirations); err != nil {
		// A failed write never fails the scan; next run refetches
		s.logger.WithError(err).WithField("ticker", ticker).Warn("Expirations cache write failed")
	}

	return expirations, nil
}

// FetchChain reads a chain snapshot through the cache
func (s *CachedSource) FetchChain(ctx context.Context, ticker string, expiration, asOf time.Time) (*contracts.ChainSnapshot, error) {
	key := chaincache.Key{Ticker: ticker, Expiration: expiration, AsOf: asOf}

	if snap, ok := s.cache.Get(key); ok {
		return snap, nil
	}

	snap, err := s.client.FetchChain(ctx, ticker, expiration, asOf)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Put(key, snap); err != nil {
		s.logger.WithError(err).WithField("key", key.String()).Warn("Chain cache write failed")
	}

	return snap, nil
}
