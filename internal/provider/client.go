package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/strikelab/optionscan/internal/contracts"
	"github.com/strikelab/optionscan/pkg/config"
	"github.com/strikelab/optionscan/pkg/httputil"
	"github.com/strikelab/optionscan/pkg/logger"
)

// HTTPClient fetches expirations and chain snapshots from the market
// data provider. All traffic shares one rate-limited, circuit-broken
// HTTP client so the global request ceiling holds across workers.
type HTTPClient struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	apiKey     string
}

// expirationsResp models the expirations listing endpoint
type expirationsResp struct {
	Status  string   `json:"status"`
	Results []string `json:"results"`
}

// chainResp models the chain snapshot endpoint
type chainResp struct {
	Status          string       `json:"status"`
	UnderlyingPrice float64      `json:"underlying_price"`
	Results         []chainQuote `json:"results"`
}

type chainQuote struct {
	ContractType string       `json:"contract_type"`
	StrikePrice  float64      `json:"strike_price"`
	Bid          float64      `json:"bid"`
	Ask          float64      `json:"ask"`
	LastPrice    float64      `json:"last_price"`
	Volume       int64        `json:"volume"`
	OpenInterest int64        `json:"open_interest"`
	IV           float64      `json:"implied_volatility"`
	Greeks       *quoteGreeks `json:"greeks,omitempty"`
}

type quoteGreeks struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Theta float64 `json:"theta"`
	Vega  float64 `json:"vega"`
}

// NewHTTPClient creates a provider client from config
func NewHTTPClient(cfg config.ProviderConfig, log *logger.Logger) *HTTPClient {
	httpClient := httputil.New(log, cfg.Timeout).
		WithRetry(cfg.MaxRetries, cfg.RetryDelay).
		WithRateLimiter(rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), cfg.Burst)).
		WithCircuitBreaker("market-data")

	return &HTTPClient{
		httpClient: httpClient,
		logger:     log,
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
	}
}

// ListExpirations returns all listed expirations for a ticker
func (c *HTTPClient) ListExpirations(ctx context.Context, ticker string, asOf time.Time) ([]time.Time, error) {
	params := url.Values{}
	params.Set("as_of", asOf.Format(contracts.DateLayout))

	body, err := c.get(ctx, "expirations", ticker, fmt.Sprintf("/v1/options/%s/expirations", ticker), params)
	if err != nil {
		return nil, err
	}

	var resp expirationsResp
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, Transient("expirations", ticker, fmt.Errorf("decode failed: %w", err))
	}

	if len(resp.Results) == 0 {
		return nil, Permanent("expirations", ticker, ErrNoOptions)
	}

	expirations := make([]time.Time, 0, len(resp.Results))
	for _, s := range resp.Results {
		exp, err := time.Parse(contracts.DateLayout, s)
		if err != nil {
			c.logger.WithFields(map[string]interface{}{
				"ticker":     ticker,
				"expiration": s,
			}).Warn("Skipping unparseable expiration")
			continue
		}
		expirations = append(expirations, exp)
	}

	return expirations, nil
}

// FetchChain returns the full chain for one (ticker, expiration, as-of)
func (c *HTTPClient) FetchChain(ctx context.Context, ticker string, expiration, asOf time.Time) (*contracts.ChainSnapshot, error) {
	params := url.Values{}
	params.Set("expiration", expiration.Format(contracts.DateLayout))
	params.Set("as_of", asOf.Format(contracts.DateLayout))

	body, err := c.get(ctx, "chain", ticker, fmt.Sprintf("/v1/options/%s/chain", ticker), params)
	if err != nil {
		return nil, err
	}

	var resp chainResp
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, Transient("chain", ticker, fmt.Errorf("decode failed: %w", err))
	}

	snap := &contracts.ChainSnapshot{
		Ticker:          ticker,
		Expiration:      expiration,
		AsOf:            asOf,
		UnderlyingPrice: resp.UnderlyingPrice,
		FetchedAt:       time.Now().UTC(),
		Quotes:          make([]contracts.OptionQuote, 0, len(resp.Results)),
	}

	for _, q := range resp.Results {
		quote := contracts.OptionQuote{
			Type:         contracts.OptionType(q.ContractType),
			Strike:       q.StrikePrice,
			Bid:          q.Bid,
			Ask:          q.Ask,
			Last:         q.LastPrice,
			Volume:       q.Volume,
			OpenInterest: q.OpenInterest,
			IV:           q.IV,
		}
		if q.Greeks != nil {
			quote.Delta = q.Greeks.Delta
			quote.Gamma = q.Greeks.Gamma
			quote.Theta = q.Greeks.Theta
			quote.Vega = q.Greeks.Vega
			quote.HasGreeks = true
		}
		snap.Quotes = append(snap.Quotes, quote)
	}

	return snap, nil
}

// get performs a provider call and classifies failures
func (c *HTTPClient) get(ctx context.Context, op, ticker, path string, params url.Values) ([]byte, error) {
	params.Set("apiKey", c.apiKey)
	fullURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		// Network failures and tripped breakers are retryable at the
		// next scan, not permanent symbol problems
		return nil, Transient(op, ticker, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, Permanent(op, ticker, ErrInvalidTicker)
	case resp.StatusCode == http.StatusBadRequest:
		return nil, Permanent(op, ticker, fmt.Errorf("bad request"))
	case httputil.IsRetryableStatus(resp.StatusCode):
		return nil, Transient(op, ticker, fmt.Errorf("status %d after retries", resp.StatusCode))
	default:
		return nil, Permanent(op, ticker, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Transient(op, ticker, fmt.Errorf("read body: %w", err))
	}

	return body, nil
}
