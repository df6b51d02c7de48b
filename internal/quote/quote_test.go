package quote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethpkg/donate/internal/chain"
	donateerr "github.com/ethpkg/donate/pkg/errors"
)

func fastRetry() *chain.RetryConfig {
	return &chain.RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		c := NewClient(nil)
		assert.Equal(t, DefaultBaseURL, c.baseURL)
		assert.Equal(t, chain.DefaultRetryConfig(), c.retry)
	})

	t.Run("options", func(t *testing.T) {
		t.Parallel()
		httpClient := &http.Client{Timeout: time.Second}
		c := NewClient(&ClientOptions{BaseURL: "https://example.test/", HTTPClient: httpClient, Retry: fastRetry()})
		assert.Equal(t, "https://example.test", c.baseURL)
		assert.Equal(t, httpClient, c.httpClient)
		assert.Equal(t, 3, c.retry.MaxAttempts)
	})
}

func TestBuyPrice(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v2/prices/ETH-USD/buy", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"base":"ETH","currency":"USD","amount":"1523.47"}}`))
	}))
	defer server.Close()

	c := NewClient(&ClientOptions{BaseURL: server.URL, Retry: fastRetry()})
	q, err := c.BuyPrice(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "ETH", q.Base)
	assert.Equal(t, "USD", q.Currency)
	assert.Equal(t, "1523.47", q.Amount.String())
	assert.False(t, q.FetchedAt.IsZero())
}

func TestBuyPrice_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"data":{"base":"ETH","currency":"USD","amount":"1500"}}`))
	}))
	defer server.Close()

	c := NewClient(&ClientOptions{BaseURL: server.URL, Retry: fastRetry()})
	q, err := c.BuyPrice(context.Background(), DefaultPair)
	require.NoError(t, err)
	assert.Equal(t, "1500", q.Amount.String())
	assert.Equal(t, int32(3), calls.Load())
}

func TestBuyPrice_RetriesRateLimit(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"data":{"amount":"1500"}}`))
	}))
	defer server.Close()

	c := NewClient(&ClientOptions{BaseURL: server.URL, Retry: fastRetry()})
	_, err := c.BuyPrice(context.Background(), DefaultPair)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestBuyPrice_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
		calls    int32
	}{
		{"client error is not retried", http.StatusNotFound, `{}`, ErrQuoteUnavailable, 1},
		{"server error exhausts retries", http.StatusServiceUnavailable, ``, ErrQuoteUnavailable, 3},
		{"malformed body", http.StatusOK, `not json`, ErrQuoteUnavailable, 1},
		{"zero price", http.StatusOK, `{"data":{"amount":"0"}}`, donateerr.ErrInvalidQuote, 1},
		{"missing price", http.StatusOK, `{"data":{}}`, donateerr.ErrInvalidQuote, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := NewClient(&ClientOptions{BaseURL: server.URL, Retry: fastRetry()})
			q, err := c.BuyPrice(context.Background(), DefaultPair)
			require.ErrorIs(t, err, tt.sentinel)
			assert.Nil(t, q)
			assert.Equal(t, tt.calls, calls.Load())
		})
	}
}

func TestBuyPrice_RateLimited(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"amount":"1500"}}`))
	}))
	defer server.Close()

	limiter := chain.NewRateLimiter(0.001, 1)
	c := NewClient(&ClientOptions{BaseURL: server.URL, RateLimiter: limiter, Retry: &chain.RetryConfig{MaxAttempts: 1}})

	_, err := c.BuyPrice(context.Background(), DefaultPair)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.BuyPrice(ctx, DefaultPair)
	require.ErrorIs(t, err, ErrQuoteUnavailable)
}
