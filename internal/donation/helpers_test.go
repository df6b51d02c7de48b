package donation_test

import (
	"context"
	"encoding/json"
	"math/big"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/ethpkg/donate/internal/provider"
	"github.com/ethpkg/donate/internal/rpc"
)

type handler func(params []any) (*provider.Response, error)

// stubProvider answers raw requests from a method table and records calls.
type stubProvider struct {
	network  string
	handlers map[string]handler

	mu    sync.Mutex
	calls []string
}

func newStub(network string, handlers map[string]handler) *stubProvider {
	if handlers == nil {
		handlers = map[string]handler{}
	}
	return &stubProvider{network: network, handlers: handlers}
}

func (s *stubProvider) record(method string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, method)
}

func (s *stubProvider) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *stubProvider) Kind() provider.Kind { return provider.KindLegacy }

func (s *stubProvider) SendAsync(_ context.Context, req *provider.Request, cb provider.Callback) {
	s.record(req.Method)
	h := s.lookup(req.Method)
	go func() {
		resp, err := h(req.Params)
		cb(resp, err)
	}()
}

// lookup returns the handler for method. net_version falls back to the
// stub's network, unknown methods answer "method not found".
func (s *stubProvider) lookup(method string) handler {
	if h, ok := s.handlers[method]; ok {
		return h
	}
	if method == "net_version" && s.network != "" {
		return result(s.network)
	}
	return rpcError(-32601, "method not found")
}

func (s *stubProvider) NetworkVersion(context.Context) string {
	s.record("net_version")
	return s.network
}

func (s *stubProvider) ToWei(ether decimal.Decimal) *big.Int { return provider.ToWei(ether) }

func (s *stubProvider) FromWei(wei *big.Int) decimal.Decimal { return provider.FromWei(wei) }

// fullProvider also offers Enable and RequestAccounts.
type fullProvider struct {
	*stubProvider

	enable          func() ([]string, error)
	requestAccounts func() ([]string, error)
}

func (f *fullProvider) Enable(context.Context) ([]string, error) {
	f.record("enable")
	return f.enable()
}

func (f *fullProvider) RequestAccounts(context.Context) ([]string, error) {
	f.record("eth_requestAccounts")
	return f.requestAccounts()
}

// requestingProvider only adds RequestAccounts.
type requestingProvider struct {
	*stubProvider

	requestAccounts func() ([]string, error)
}

func (r *requestingProvider) RequestAccounts(context.Context) ([]string, error) {
	r.record("eth_requestAccounts")
	return r.requestAccounts()
}

func result(v any) handler {
	return func([]any) (*provider.Response, error) {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return &provider.Response{JSONRPC: "2.0", Result: raw}, nil
	}
}

func rpcError(code int, msg string) handler {
	return func([]any) (*provider.Response, error) {
		return &provider.Response{JSONRPC: "2.0", Error: &rpc.Error{Code: code, Message: msg}}, nil
	}
}

// never blocks forever, like a wallet that never calls back.
func never([]any) (*provider.Response, error) {
	select {}
}

func transportError(err error) handler {
	return func([]any) (*provider.Response, error) {
		return nil, err
	}
}

// stubSender exposes a stub as a legacy web3 channel.
type stubSender struct{ p *stubProvider }

func (s stubSender) SendAsync(req *provider.Request, cb provider.Callback) {
	s.p.SendAsync(context.Background(), req, cb)
}

// enablingInjected exposes a fullProvider as a modern injected object
// with the deprecated enable call.
type enablingInjected struct {
	fp *fullProvider
}

func (e *enablingInjected) Request(_ context.Context, method string, params ...any) (json.RawMessage, error) {
	e.fp.record(method)
	resp, err := e.fp.lookup(method)(params)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	return resp.Result, nil
}

func (e *enablingInjected) Enable(ctx context.Context) ([]string, error) {
	return e.fp.Enable(ctx)
}
