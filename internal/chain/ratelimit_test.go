package chain_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethpkg/donate/internal/chain"
)

func TestRateLimiter_Allow(t *testing.T) {
	t.Parallel()
	rl := chain.NewRateLimiter(10, 10)

	for i := 0; i < 10; i++ {
		assert.True(t, rl.Allow("https://api.coinbase.com/v2/prices"), "should allow request %d in burst", i)
	}
	assert.False(t, rl.Allow("https://api.coinbase.com/v2/prices"), "should deny request after burst exhausted")
}

func TestRateLimiter_SharesBucketPerHost(t *testing.T) {
	t.Parallel()
	rl := chain.NewRateLimiter(1, 2)

	assert.True(t, rl.Allow("https://api.ethpkg.org/verify/npm/a"))
	assert.True(t, rl.Allow("https://api.ethpkg.org/verify/npm/b"))
	assert.False(t, rl.Allow("https://api.ethpkg.org/badge/npm/c"))

	// A different host has its own bucket
	assert.True(t, rl.Allow("https://api.coinbase.com/v2/prices/ETH-USD/buy"))
}

func TestRateLimiter_NonURLKey(t *testing.T) {
	t.Parallel()
	rl := chain.NewRateLimiter(1, 1)
	assert.True(t, rl.Allow("endpoint1"))
	assert.False(t, rl.Allow("endpoint1"))
	assert.True(t, rl.Allow("endpoint2"))
}

func TestRateLimiter_Wait(t *testing.T) {
	t.Parallel()
	rl := chain.NewRateLimiter(100, 1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, rl.Wait(ctx, "test"))

	start := time.Now()
	require.NoError(t, rl.Wait(ctx, "test"))
	assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)
}

func TestRateLimiter_WaitCanceled(t *testing.T) {
	t.Parallel()
	rl := chain.NewRateLimiter(0.001, 1)
	require.True(t, rl.Allow("slow"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, rl.Wait(ctx, "slow"))
}

func TestRateLimiter_BurstFloor(t *testing.T) {
	t.Parallel()
	rl := chain.NewRateLimiter(1, 0)
	assert.True(t, rl.Allow("x"))
}

func TestDefaultRateLimiter(t *testing.T) {
	t.Parallel()
	rl := chain.DefaultRateLimiter()
	for i := 0; i < 10; i++ {
		assert.True(t, rl.Allow("burst"))
	}
}
