package chain_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethpkg/donate/internal/chain"
	donateerr "github.com/ethpkg/donate/pkg/errors"
)

//nolint:gochecknoglobals // shared fast retry config for tests
var fastRetry = chain.RetryConfig{
	MaxAttempts: 4,
	BaseDelay:   time.Millisecond,
	MaxDelay:    5 * time.Millisecond,
}

func TestRetry_SuccessFirstAttempt(t *testing.T) {
	t.Parallel()
	attempts := 0
	result, err := chain.RetryWithConfig(context.Background(), fastRetry, func() (string, error) {
		attempts++
		return "success", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "success", result)
	assert.Equal(t, 1, attempts)
}

func TestRetry_SuccessAfterRetry(t *testing.T) {
	t.Parallel()
	attempts := 0
	result, err := chain.RetryWithConfig(context.Background(), fastRetry, func() (string, error) {
		attempts++
		if attempts < 3 {
			return "", chain.ErrRetryable
		}
		return "success", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "success", result)
	assert.Equal(t, 3, attempts)
}

var errNonRetryable = errors.New("non-retryable error")

func TestRetry_NonRetryableError(t *testing.T) {
	t.Parallel()
	attempts := 0

	_, err := chain.RetryWithConfig(context.Background(), fastRetry, func() (string, error) {
		attempts++
		return "", errNonRetryable
	})

	require.ErrorIs(t, err, errNonRetryable)
	assert.Equal(t, 1, attempts)
}

func TestRetry_MaxAttempts(t *testing.T) {
	t.Parallel()
	attempts := 0

	_, err := chain.RetryWithConfig(context.Background(), fastRetry, func() (string, error) {
		attempts++
		return "", chain.ErrRateLimited
	})

	require.ErrorIs(t, err, chain.ErrRateLimited)
	assert.Equal(t, 4, attempts)
}

func TestRetry_ZeroAttemptsRunsOnce(t *testing.T) {
	t.Parallel()
	attempts := 0

	_, err := chain.RetryWithConfig(context.Background(), chain.RetryConfig{}, func() (int, error) {
		attempts++
		return 0, chain.ErrRetryable
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetry_ContextCancellation(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	_, err := chain.RetryWithConfig(ctx, chain.RetryConfig{
		MaxAttempts: 5,
		BaseDelay:   time.Second,
		MaxDelay:    time.Second,
	}, func() (string, error) {
		attempts++
		return "", chain.ErrRetryable
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()
	assert.True(t, chain.IsRetryable(chain.ErrRetryable))
	assert.True(t, chain.IsRetryable(chain.ErrTimeout))
	assert.True(t, chain.IsRetryable(chain.ErrRateLimited))
	assert.True(t, chain.IsRetryable(context.DeadlineExceeded))
	assert.True(t, chain.IsRetryable(chain.WrapRetryable(errNonRetryable)))

	assert.False(t, chain.IsRetryable(errNonRetryable))
	assert.False(t, chain.IsRetryable(nil))
	assert.NoError(t, chain.WrapRetryable(nil))
}

func TestCheckHTTPStatus(t *testing.T) {
	t.Parallel()

	newResp := func(code int, retryAfter string) *http.Response {
		h := http.Header{}
		if retryAfter != "" {
			h.Set("Retry-After", retryAfter)
		}
		return &http.Response{StatusCode: code, Header: h}
	}

	require.NoError(t, chain.CheckHTTPStatus(newResp(http.StatusOK, "")))

	err := chain.CheckHTTPStatus(newResp(http.StatusTooManyRequests, "2"))
	require.ErrorIs(t, err, chain.ErrRateLimited)
	assert.True(t, chain.IsRetryable(err))
	var de *donateerr.DonateError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "retry after 2s", de.Suggestion)

	err = chain.CheckHTTPStatus(newResp(http.StatusBadGateway, ""))
	require.ErrorIs(t, err, donateerr.ErrNetworkError)
	assert.True(t, chain.IsRetryable(err))

	err = chain.CheckHTTPStatus(newResp(http.StatusNotFound, ""))
	require.ErrorIs(t, err, donateerr.ErrNetworkError)
	assert.False(t, chain.IsRetryable(err))
}

func TestParseRetryAfter(t *testing.T) {
	t.Parallel()
	tests := []struct {
		header   string
		expected time.Duration
	}{
		{"5", 5 * time.Second},
		{"120", 120 * time.Second},
		{"0", 0},
		{"", 0},
		{"invalid", 0},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, chain.ParseRetryAfter(tt.header))
		})
	}
}
