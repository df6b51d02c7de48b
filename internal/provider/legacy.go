package provider

import (
	"context"
	"net/http"

	"github.com/ethpkg/donate/internal/rpc"
)

// Legacy wraps the current provider of a web3 namespace. It only offers
// the raw request channel, so account retrieval goes through eth_accounts.
type Legacy struct {
	units
	sender AsyncSender
}

// NewLegacy wraps an AsyncSender.
func NewLegacy(sender AsyncSender) *Legacy {
	return &Legacy{sender: sender}
}

// Kind returns KindLegacy.
func (l *Legacy) Kind() Kind {
	return KindLegacy
}

// SendAsync forwards to the legacy channel. Once issued a legacy request
// cannot be cancelled, so ctx is not propagated.
func (l *Legacy) SendAsync(_ context.Context, req *Request, cb Callback) {
	l.sender.SendAsync(req, cb)
}

// NetworkVersion queries net_version through the raw channel.
func (l *Legacy) NetworkVersion(ctx context.Context) string {
	resp, err := Await(ctx, l, &Request{Method: "net_version"})
	if err != nil || resp == nil || resp.Error != nil || !resp.HasResult() {
		return ""
	}
	return decodeNetworkVersion(resp.Result)
}

// HTTPProvider is a callback-style sender over a JSON-RPC HTTP endpoint.
type HTTPProvider struct {
	client *rpc.Client
}

// NewHTTPProvider creates a legacy sender for url.
func NewHTTPProvider(url string, httpClient *http.Client) (*HTTPProvider, error) {
	client, err := rpc.NewClient(url, &rpc.ClientOptions{HTTPClient: httpClient})
	if err != nil {
		return nil, err
	}
	return &HTTPProvider{client: client}, nil
}

// SendAsync performs the request on its own goroutine.
func (h *HTTPProvider) SendAsync(req *Request, cb Callback) {
	go func() {
		resp, err := h.client.Do(context.Background(), req.Method, req.Params)
		cb(resp, err)
	}()
}

// Web3Namespace is a web3 global exposing a current provider.
type Web3Namespace struct {
	Provider AsyncSender
}

// CurrentProvider returns the wrapped sender.
func (w *Web3Namespace) CurrentProvider() AsyncSender {
	if w == nil {
		return nil
	}
	return w.Provider
}
