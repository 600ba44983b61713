package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strikelab/optionscan/pkg/config"
	"github.com/strikelab/optionscan/pkg/logger"
)

func newClient(baseURL string) *HTTPClient {
	return NewHTTPClient(config.ProviderConfig{
		BaseURL:        baseURL,
		APIKey:         "test-key",
		Timeout:        2 * time.Second,
		RequestsPerSec: 100,
		Burst:          100,
		MaxRetries:     2,
		RetryDelay:     10 * time.Millisecond,
	}, logger.NewNop())
}

var clientAsOf = time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

func TestListExpirations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/options/AAPL/expirations", r.URL.Path)
		assert.Equal(t, "2026-08-28", r.URL.Query().Get("as_of"))
		assert.Equal(t, "test-key", r.URL.Query().Get("apiKey"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"OK","results":["2026-09-18","2026-10-16","not-a-date"]}`))
	}))
	defer server.Close()

	expirations, err := newClient(server.URL).ListExpirations(context.Background(), "AAPL", clientAsOf)
	require.NoError(t, err)

	// The unparseable entry is skipped, not fatal
	require.Len(t, expirations, 2)
	assert.Equal(t, time.Date(2026, 9, 18, 0, 0, 0, 0, time.UTC), expirations[0])
}

func TestListExpirations_EmptyIsPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"OK","results":[]}`))
	}))
	defer server.Close()

	_, err := newClient(server.URL).ListExpirations(context.Background(), "NOPT", clientAsOf)
	require.Error(t, err)
	assert.True(t, IsPermanent(err), "a ticker with no options is a permanent condition")
	assert.ErrorIs(t, err, ErrNoOptions)
}

func TestListExpirations_NotFoundIsPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newClient(server.URL).ListExpirations(context.Background(), "ZZZZ", clientAsOf)
	require.Error(t, err)
	assert.True(t, IsPermanent(err))
	assert.ErrorIs(t, err, ErrInvalidTicker)
}

func TestListExpirations_ServerErrorRetriesThenTransient(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newClient(server.URL).ListExpirations(context.Background(), "AAPL", clientAsOf)
	require.Error(t, err)
	assert.True(t, IsTransient(err), "5xx after retries stays transient")
	assert.Equal(t, int32(3), calls.Load(), "initial attempt plus two retries")
}

func TestListExpirations_RecoversMidRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"status":"OK","results":["2026-09-18"]}`))
	}))
	defer server.Close()

	expirations, err := newClient(server.URL).ListExpirations(context.Background(), "AAPL", clientAsOf)
	require.NoError(t, err)
	assert.Len(t, expirations, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchChain(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/options/AAPL/chain", r.URL.Path)
		assert.Equal(t, "2026-10-16", r.URL.Query().Get("expiration"))

		w.Write([]byte(`{
			"status": "OK",
			"underlying_price": 230.5,
			"results": [
				{"contract_type":"call","strike_price":230,"bid":5.1,"ask":5.3,"volume":800,"open_interest":1200,
				 "implied_volatility":0.31,"greeks":{"delta":0.51,"gamma":0.02,"theta":-0.08,"vega":0.25}},
				{"contract_type":"put","strike_price":230,"bid":4.8,"ask":5.0,"volume":500,"open_interest":900}
			]
		}`))
	}))
	defer server.Close()

	expiration := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	snap, err := newClient(server.URL).FetchChain(context.Background(), "AAPL", expiration, clientAsOf)
	require.NoError(t, err)

	assert.Equal(t, "AAPL", snap.Ticker)
	assert.Equal(t, expiration, snap.Expiration)
	assert.Equal(t, 230.5, snap.UnderlyingPrice)
	require.Len(t, snap.Quotes, 2)

	withGreeks := snap.Quotes[0]
	assert.True(t, withGreeks.HasGreeks)
	assert.Equal(t, 0.51, withGreeks.Delta)
	assert.Equal(t, 0.25, withGreeks.Vega)

	// The provider omitted Greeks on the put: flagged, never zero-filled
	// silently
	withoutGreeks := snap.Quotes[1]
	assert.False(t, withoutGreeks.HasGreeks)
}

func TestFetchChain_MalformedBodyIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"OK","underlying`))
	}))
	defer server.Close()

	_, err := newClient(server.URL).FetchChain(context.Background(), "AAPL",
		time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC), clientAsOf)
	require.Error(t, err)
	assert.True(t, IsTransient(err))
}
