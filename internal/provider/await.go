package provider

import (
	"context"
	"sync"
	"time"

	"github.com/ethpkg/donate/internal/metrics"
)

type callResult struct {
	resp *Response
	err  error
}

// Await issues req and blocks until the provider answers or ctx is done.
// Only the first callback invocation counts. No deadline is imposed here:
// a provider that never answers blocks until ctx is cancelled.
func Await(ctx context.Context, p Provider, req *Request) (*Response, error) {
	start := time.Now()
	results := make(chan callResult, 1)

	var once sync.Once
	p.SendAsync(ctx, req, func(resp *Response, err error) {
		once.Do(func() {
			results <- callResult{resp: resp, err: err}
		})
	})

	select {
	case r := <-results:
		metrics.Global.RecordProviderRequest(req.Method, time.Since(start), resultLabel(r))
		return r.resp, r.err
	case <-ctx.Done():
		metrics.Global.RecordProviderRequest(req.Method, time.Since(start), metrics.ResultError)
		return nil, ctx.Err()
	}
}

func resultLabel(r callResult) string {
	switch {
	case r.err != nil:
		return metrics.ResultError
	case r.resp != nil && r.resp.Error != nil:
		return metrics.ResultRPCError
	default:
		return metrics.ResultOK
	}
}
