// Package quote fetches the ETH/USD price used to convert donations.
package quote

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ethpkg/donate/internal/chain"
	"github.com/ethpkg/donate/internal/metrics"
	donateerr "github.com/ethpkg/donate/pkg/errors"
)

const (
	// DefaultBaseURL is the Coinbase API base URL.
	DefaultBaseURL = "https://api.coinbase.com"

	// DefaultPair is the currency pair donations are priced in.
	DefaultPair = "ETH-USD"

	// httpTimeout is the default HTTP request timeout.
	httpTimeout = 15 * time.Second

	// maxResponseBody is the maximum response body size to read (64 KB).
	maxResponseBody = 64 << 10
)

// ErrQuoteUnavailable indicates the price could not be fetched or parsed.
var ErrQuoteUnavailable = &donateerr.DonateError{
	Code:       "QUOTE_UNAVAILABLE",
	Message:    "ETH price quote is unavailable",
	Suggestion: "pass a price with --price to donate without a live quote",
	ExitCode:   donateerr.ExitGeneral,
}

// Quote is a price for one unit of the base currency.
type Quote struct {
	Base      string          `json:"base"`
	Currency  string          `json:"currency"`
	Amount    decimal.Decimal `json:"amount"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// priceResponse is the Coinbase prices payload.
type priceResponse struct {
	Data struct {
		Base     string          `json:"base"`
		Currency string          `json:"currency"`
		Amount   decimal.Decimal `json:"amount"`
	} `json:"data"`
}

// ClientOptions configures the quote client.
type ClientOptions struct {
	// BaseURL overrides the default Coinbase URL (useful for testing).
	BaseURL string
	// HTTPClient overrides the default HTTP client.
	HTTPClient *http.Client
	// RateLimiter overrides the default limiter.
	RateLimiter *chain.RateLimiter
	// Retry overrides the default retry configuration.
	Retry *chain.RetryConfig
}

// Client fetches prices from the Coinbase API.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *chain.RateLimiter
	retry       chain.RetryConfig
}

// NewClient creates a quote client.
func NewClient(opts *ClientOptions) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: httpTimeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
			},
		},
		rateLimiter: chain.DefaultRateLimiter(),
		retry:       chain.DefaultRetryConfig(),
	}

	if opts != nil {
		if opts.BaseURL != "" {
			c.baseURL = strings.TrimRight(opts.BaseURL, "/")
		}
		if opts.HTTPClient != nil {
			c.httpClient = opts.HTTPClient
		}
		if opts.RateLimiter != nil {
			c.rateLimiter = opts.RateLimiter
		}
		if opts.Retry != nil {
			c.retry = *opts.Retry
		}
	}
	return c
}

// BuyPrice returns the current buy price for pair, e.g. "ETH-USD".
func (c *Client) BuyPrice(ctx context.Context, pair string) (*Quote, error) {
	if pair == "" {
		pair = DefaultPair
	}
	endpoint := fmt.Sprintf("%s/v2/prices/%s/buy", c.baseURL, pair)

	q, err := chain.RetryWithConfig(ctx, c.retry, func() (*Quote, error) {
		return c.fetch(ctx, endpoint)
	})
	metrics.Global.RecordAPIRequest("quote", err)
	if err != nil {
		if donateerr.Is(err, donateerr.ErrInvalidQuote) {
			return nil, err
		}
		return nil, donateerr.WithCause(ErrQuoteUnavailable, err)
	}
	return q, nil
}

func (c *Client) fetch(ctx context.Context, endpoint string) (*Quote, error) {
	if err := c.rateLimiter.Wait(ctx, endpoint); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req) //nolint:gosec // G704: URL is built from config
	if err != nil {
		return nil, chain.WrapRetryable(fmt.Errorf("sending request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if err := chain.CheckHTTPStatus(resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var payload priceResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	if payload.Data.Amount.Sign() <= 0 {
		return nil, donateerr.WithDetails(donateerr.ErrInvalidQuote, map[string]string{
			"amount": payload.Data.Amount.String(),
		})
	}

	return &Quote{
		Base:      payload.Data.Base,
		Currency:  payload.Data.Currency,
		Amount:    payload.Data.Amount,
		FetchedAt: time.Now().UTC(),
	}, nil
}
